// Package parser defines the contract every plan format parser implements
// and the helpers shared between formats: the run pipeline, the encoding
// fallback chain and the extension registry the dispatcher selects parsers
// from.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"vplan/internal/plan"
)

// Fatal parse conditions. Everything else is contained inside Parse() and
// reported through the diagnostics sink.
var (
	// ErrDecode means no configured or fallback encoding could decode the
	// source bytes.
	ErrDecode = errors.New("could not decode plan file")
	// ErrStructural means the enclosing document structure is broken
	// (malformed JSON/XML envelope, missing required top-level key).
	ErrStructural = errors.New("malformed plan structure")
	// ErrFilesTimeout means the Untis companion file set did not appear
	// within the configured timeout.
	ErrFilesTimeout = errors.New("plan file set incomplete after timeout")
)

// Parser is one format parser. The methods are called in the fixed order
// LoadFile, PreParse, Parse, PostParse, Result; each parse invocation
// constructs an entirely fresh entry and entity set.
type Parser interface {
	// LoadFile reads the raw source fully into memory and decodes it.
	LoadFile() error
	// PreParse performs any structural pre-pass (envelope decoding,
	// recording the parse timestamp). Idempotent and cheap.
	PreParse() error
	// Parse populates the internal change entries and entity registries.
	// Row-level problems are skipped with a diagnostic; only structural
	// failures return an error.
	Parse() error
	// PostParse is a reserved extension point for cross-cutting
	// post-processing.
	PostParse() error
	// Result returns the final envelope. Valid only after a successful
	// pipeline run.
	Result() *Result
}

// Result is the common output envelope of every parser. Sections that a
// format does not provide stay nil and are omitted from the JSON encoding.
type Result struct {
	// Stand is the Unix timestamp recorded when parsing started.
	Stand int64 `json:"stand"`
	// Plan is the flattened record list, concatenated per category in the
	// parser's fixed order.
	Plan []plan.Record `json:"plan"`
	// PlanType is the combined bitmask of plan categories observed.
	PlanType plan.PlanType `json:"ptype"`

	Classes    []map[string]any            `json:"class,omitempty"`
	Teachers   []map[string]any            `json:"teacher,omitempty"`
	Subjects   []map[string]any            `json:"subjects,omitempty"`
	Timeframes map[string][]map[string]any `json:"timeframes,omitempty"`
	// Hashes carries a content hash per serialized section so consumers can
	// detect master-data changes without diffing payloads.
	Hashes map[string]string `json:"hashes,omitempty"`
}

// Run executes the parse pipeline in its fixed order and returns the result.
// The first fatal error aborts the remaining steps.
func Run(p Parser) (*Result, error) {
	if err := p.LoadFile(); err != nil {
		return nil, err
	}
	if err := p.PreParse(); err != nil {
		return nil, err
	}
	if err := p.Parse(); err != nil {
		return nil, err
	}
	if err := p.PostParse(); err != nil {
		return nil, err
	}
	return p.Result(), nil
}

// Factory constructs a parser for one source file path.
type Factory func(path string) Parser

// Registry maps file extensions to parser factories. It is populated by the
// dispatcher at startup; lookup is a plain map access, no runtime
// introspection involved.
type Registry struct {
	byExt map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]Factory)}
}

// Register binds an extension (with leading dot, case-insensitive) to a
// factory. Re-registering an extension overwrites the previous binding.
func (r *Registry) Register(ext string, f Factory) {
	r.byExt[strings.ToLower(ext)] = f
}

// ForFile returns the factory responsible for the file's extension.
func (r *Registry) ForFile(path string) (Factory, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, ok := r.byExt[ext]
	if !ok {
		return nil, fmt.Errorf("no parser registered for extension %q", ext)
	}
	return f, nil
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []string {
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	return out
}

// CleanCell trims a raw source cell and maps whitespace-only content to the
// empty string.
func CleanCell(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return s
}

// HourRange splits "3.-5." style hour ranges, stripping dots; a bare hour
// yields an equal start and end.
func HourRange(hours string) (first, last int, err error) {
	parts := strings.Split(strings.TrimSpace(hours), "-")

	clean := func(s string) (int, error) {
		return strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(s, ".", "")))
	}

	if first, err = clean(parts[0]); err != nil {
		return 0, 0, err
	}
	last = first
	if len(parts) > 1 {
		if last, err = clean(parts[1]); err != nil {
			return 0, 0, err
		}
	}
	return first, last, nil
}
