// Package golden compares canonical reports against stored expected output.
package golden

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"excavator/internal/config"
	"excavator/internal/models"
)

// ErrMismatch means a computed report differs from its golden file.
var ErrMismatch = errors.New("report does not match golden file")

type Mode int

const (
	// ModeRead compares and never writes.
	ModeRead Mode = iota
	// ModeUpdate rewrites the golden file with the computed report.
	ModeUpdate
)

type Status int

const (
	StatusMatch Status = iota
	StatusMismatch
	StatusGoldenMissing
)

func (s Status) String() string {
	switch s {
	case StatusMatch:
		return "match"
	case StatusMismatch:
		return "mismatch"
	case StatusGoldenMissing:
		return "golden missing"
	default:
		return "unknown"
	}
}

// Result is the outcome of verifying one source.
type Result struct {
	SourceID   string
	GoldenPath string
	Status     Status
	Diff       string // unified diff, golden first; set on mismatch
	Updated    bool
}

// Err converts a failed result into an error; a match yields nil.
func (r Result) Err() error {
	switch r.Status {
	case StatusMatch:
		return nil
	case StatusGoldenMissing:
		return fmt.Errorf("%w: %s (run with update mode to create it)", models.ErrGoldenMissing, r.GoldenPath)
	default:
		return fmt.Errorf("%w: %s", ErrMismatch, r.GoldenPath)
	}
}

// Pipeline produces the canonical report for a source.
type Pipeline func(ctx context.Context, sourceID string) (string, error)

type Option func(*Harness)

// WithDir stores golden files in dir instead of next to each source.
func WithDir(dir string) Option {
	return func(h *Harness) {
		h.dir = dir
	}
}

// WithRoot sets the analyzed root. Under a golden directory each golden
// file keeps its source's path relative to root.
func WithRoot(root string) Option {
	return func(h *Harness) {
		h.root = root
	}
}

func WithSuffix(suffix string) Option {
	return func(h *Harness) {
		if suffix != "" {
			h.suffix = suffix
		}
	}
}

func WithMode(mode Mode) Option {
	return func(h *Harness) {
		h.mode = mode
	}
}

type Harness struct {
	dir    string
	root   string
	suffix string
	mode   Mode
}

func New(opts ...Option) *Harness {
	h := &Harness{suffix: ".golden", mode: ModeRead}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// NewFromConfig builds a harness from the golden settings. Update mode is
// never taken from configuration; it has to be asked for per run.
func NewFromConfig(cfg config.GoldenConfig, mode Mode) *Harness {
	return New(WithDir(cfg.Dir), WithRoot(cfg.Root), WithSuffix(cfg.Suffix), WithMode(mode))
}

func (h *Harness) Mode() Mode {
	return h.mode
}

// GoldenPath maps a source to its golden file, the source path with its
// extension replaced by the suffix. Without a golden directory the file sits
// next to the source; with one, it sits at the source's path relative to
// the root inside that directory.
func (h *Harness) GoldenPath(sourceID string) string {
	if h.dir == "" {
		return withSuffix(sourceID, h.suffix)
	}
	return filepath.Join(h.dir, withSuffix(h.relative(sourceID), h.suffix))
}

func withSuffix(path, suffix string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + suffix
}

// relative returns sourceID relative to the root, or its base name when it
// lies outside the root.
func (h *Harness) relative(sourceID string) string {
	root, src := h.root, sourceID
	if root == "" {
		root = "."
	}
	if filepath.IsAbs(root) != filepath.IsAbs(src) {
		var err error
		if root, err = filepath.Abs(root); err == nil {
			src, err = filepath.Abs(src)
		}
		if err != nil {
			return filepath.Base(sourceID)
		}
	}

	rel, err := filepath.Rel(root, src)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Base(sourceID)
	}
	return rel
}

// Verify runs pipeline on sourceID and compares its output with the golden
// file. Pipeline failures are returned as errors; comparison outcomes are
// reported through Result.
func (h *Harness) Verify(ctx context.Context, sourceID string, pipeline Pipeline) (Result, error) {
	res := Result{SourceID: sourceID, GoldenPath: h.GoldenPath(sourceID)}

	actual, err := pipeline(ctx, sourceID)
	if err != nil {
		return res, fmt.Errorf("%s: %w", sourceID, err)
	}

	if h.mode == ModeUpdate {
		if err := writeAtomic(res.GoldenPath, []byte(actual)); err != nil {
			return res, err
		}
		slog.Debug("golden file written", slog.String("path", res.GoldenPath))
		res.Status = StatusMatch
		res.Updated = true
		return res, nil
	}

	expected, err := os.ReadFile(res.GoldenPath)
	if errors.Is(err, fs.ErrNotExist) {
		res.Status = StatusGoldenMissing
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("failed to read golden file: %w", err)
	}

	if string(expected) == actual {
		res.Status = StatusMatch
		return res, nil
	}

	diff, err := Diff(string(expected), actual, res.GoldenPath)
	if err != nil {
		return res, err
	}
	res.Status = StatusMismatch
	res.Diff = diff
	return res, nil
}

// Diff returns a unified line diff from expected to actual.
func Diff(expected, actual, name string) (string, error) {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: name,
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff against %s: %w", name, err)
	}
	return diff, nil
}

// writeAtomic replaces path with data through a temp file in the same
// directory, so readers never see a partial golden file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync golden file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close golden file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set golden file mode: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace golden file: %w", err)
	}
	return nil
}
