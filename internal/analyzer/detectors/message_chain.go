package detectors

import (
	"excavator/internal/ast"
	actx "excavator/internal/context"
	"excavator/internal/models"
)

// MessageChainDetector finds the deepest chain of attribute applications
// in a function, e.g. s.strip().upper() has depth 2.
type MessageChainDetector struct{}

func NewMessageChainDetector() *MessageChainDetector {
	return &MessageChainDetector{}
}

func (d *MessageChainDetector) Name() string {
	return "Message Chain Detector"
}

func (d *MessageChainDetector) Detect(fn *ast.Node, _ *actx.AnalysisContext, m *models.FunctionMetrics) error {
	depth, err := MaxChainDepth(fn.Body)
	if err != nil {
		return err
	}
	m.MaxChainDepth = depth
	return nil
}

// MaxChainDepth returns the longest chain found in any expression of body.
// Call arguments are expressions of their own and start new chains.
func MaxChainDepth(body []*ast.Node) (int, error) {
	var (
		maxDepth int
		err      error
	)
	ast.InspectBody(body, func(n *ast.Node) bool {
		if err != nil {
			return false
		}
		switch n.Kind {
		case ast.KindAttribute, ast.KindCall:
			depth, derr := chainDepth(n)
			if derr != nil {
				err = derr
				return false
			}
			maxDepth = max(maxDepth, depth)
		}
		return true
	})
	return maxDepth, err
}

// chainDepth counts the attribute applications that feed directly into n.
// A call passes its callee's depth through.
func chainDepth(n *ast.Node) (int, error) {
	depth := 0
	for cur := n; cur != nil; {
		switch cur.Kind {
		case ast.KindAttribute:
			if cur.Value == nil {
				return 0, models.Malformed(cur, "attribute without receiver")
			}
			depth++
			cur = cur.Value
		case ast.KindCall:
			if cur.Value == nil {
				return 0, models.Malformed(cur, "call without callee")
			}
			cur = cur.Value
		default:
			return depth, nil
		}
	}
	return depth, nil
}
