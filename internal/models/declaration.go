package models

import (
	"fmt"

	"excavator/internal/ast"
)

type DeclKind string

const (
	DeclModule     DeclKind = "module"
	DeclClass      DeclKind = "class"
	DeclFunction   DeclKind = "function"
	DeclEnum       DeclKind = "enum"
	DeclEnumMember DeclKind = "enum_member"
	DeclConstant   DeclKind = "constant"
)

// Dispatch is how a function is bound when called.
type Dispatch string

const (
	DispatchInstance Dispatch = "instance"
	DispatchClass    Dispatch = "class"
	DispatchStatic   Dispatch = "static"
)

// ParseDispatch maps a configured marker target to a Dispatch.
func ParseDispatch(s string) (Dispatch, error) {
	switch Dispatch(s) {
	case DispatchInstance, DispatchClass, DispatchStatic:
		return Dispatch(s), nil
	default:
		return "", fmt.Errorf("unknown dispatch modifier %q", s)
	}
}

// DeclID indexes a declaration inside its Declarations arena.
type DeclID int

const NoParent DeclID = -1

type Declaration struct {
	ID            DeclID   `json:"-"`
	Parent        DeclID   `json:"-"`
	Children      []DeclID `json:"-"`
	Kind          DeclKind `json:"kind"`
	Name          string   `json:"name"`
	QualifiedName string   `json:"qualified_name"`
	Dispatch      Dispatch `json:"dispatch,omitempty"`
	Decorators    []string `json:"decorators,omitempty"`
	HasDocstring  bool     `json:"has_docstring"`
	Span          ast.Span `json:"span"`
	Value         string   `json:"value,omitempty"` // literal text as written
	ParamCount    int      `json:"param_count,omitempty"`
}

// Declarations is a flat arena of declarations with parent/child indices.
// Insertion order is pre-order because the extractor appends while walking.
type Declarations struct {
	items  []Declaration
	byName map[string]DeclID
	roots  []DeclID
}

func NewDeclarations() *Declarations {
	return &Declarations{byName: make(map[string]DeclID)}
}

// Add appends decl under parent and returns its id. Qualified names must be
// unique within one arena.
func (d *Declarations) Add(parent DeclID, decl Declaration) (DeclID, error) {
	if _, dup := d.byName[decl.QualifiedName]; dup {
		return NoParent, fmt.Errorf("%w: duplicate declaration %q at %s",
			ErrMalformedAst, decl.QualifiedName, decl.Span)
	}
	if parent != NoParent && (parent < 0 || int(parent) >= len(d.items)) {
		return NoParent, fmt.Errorf("%w: unknown parent %d for %q", ErrMalformedAst, parent, decl.QualifiedName)
	}

	id := DeclID(len(d.items))
	decl.ID = id
	decl.Parent = parent
	decl.Children = nil
	d.items = append(d.items, decl)
	d.byName[decl.QualifiedName] = id

	if parent == NoParent {
		d.roots = append(d.roots, id)
	} else {
		d.items[parent].Children = append(d.items[parent].Children, id)
	}
	return id, nil
}

func (d *Declarations) Len() int { return len(d.items) }

// Get returns a copy of the declaration with the given id.
func (d *Declarations) Get(id DeclID) Declaration {
	return d.items[id]
}

func (d *Declarations) Lookup(qualifiedName string) (Declaration, bool) {
	id, ok := d.byName[qualifiedName]
	if !ok {
		return Declaration{}, false
	}
	return d.items[id], true
}

// PreOrder returns every declaration id in lexical pre-order.
func (d *Declarations) PreOrder() []DeclID {
	out := make([]DeclID, 0, len(d.items))
	var visit func(id DeclID)
	visit = func(id DeclID) {
		out = append(out, id)
		for _, c := range d.items[id].Children {
			visit(c)
		}
	}
	for _, r := range d.roots {
		visit(r)
	}
	return out
}

// OfKind returns the ids of all declarations of kind k in pre-order.
func (d *Declarations) OfKind(k DeclKind) []DeclID {
	var out []DeclID
	for _, id := range d.PreOrder() {
		if d.items[id].Kind == k {
			out = append(out, id)
		}
	}
	return out
}
