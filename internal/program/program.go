package program

import (
	"encoding/json"
	"fmt"
)

// Program is an ordered sequence of operations producing one image
type Program struct {
	Canvas Dimensions `json:"canvas"`
	// Background fills the canvas when there is no Source
	Background string `json:"background,omitempty"`
	// Source is the base image the operations draw over
	Source string `json:"source,omitempty"`
	Output string `json:"output"`
	// Prelude programs render intermediate layers that Ops reference by
	// their Output path. They run first, in order.
	Prelude []*Program `json:"prelude,omitempty"`
	Ops     []Op       `json:"ops"`
}

// New creates an empty program for a canvas of the given size
func New(width, height float64) *Program {
	return &Program{
		Canvas:     Dimensions{Width: width, Height: height},
		Background: "black",
	}
}

// Add appends operations
func (p *Program) Add(ops ...Op) {
	p.Ops = append(p.Ops, ops...)
}

// Defer appends a placeholder to be filled once its metrics are known
func (p *Program) Defer(key string) {
	p.Ops = append(p.Ops, Placeholder{Key: key})
}

// Fill replaces the placeholder key with ops, keeping its position
func (p *Program) Fill(key string, ops ...Op) error {
	filled, ok := fill(p.Ops, key, ops)
	if !ok {
		return fmt.Errorf("no placeholder %q", key)
	}
	p.Ops = filled
	return nil
}

func fill(in []Op, key string, ops []Op) ([]Op, bool) {
	for i, op := range in {
		switch o := op.(type) {
		case Placeholder:
			if o.Key != key {
				continue
			}
			out := make([]Op, 0, len(in)-1+len(ops))
			out = append(out, in[:i]...)
			out = append(out, ops...)
			out = append(out, in[i+1:]...)
			return out, true
		case ApplyShadow:
			content, ok := fill(o.Content, key, ops)
			if ok {
				o.Content = content
				in[i] = o
				return in, true
			}
		}
	}
	return in, false
}

// Pending returns the keys of unfilled placeholders, including those in
// prelude programs.
func (p *Program) Pending() []string {
	var keys []string
	for _, pre := range p.Prelude {
		keys = append(keys, pre.Pending()...)
	}
	Walk(p.Ops, func(op Op) bool {
		if ph, ok := op.(Placeholder); ok {
			keys = append(keys, ph.Key)
		}
		return true
	})
	return keys
}

// Resolved reports whether every metric-dependent operation has its geometry.
// Unresolved programs must not be submitted to a rasterizer.
func (p *Program) Resolved() bool {
	return len(p.Pending()) == 0
}

// Intermediates returns the files written by prelude programs
func (p *Program) Intermediates() []string {
	var files []string
	for _, pre := range p.Prelude {
		files = append(files, pre.Intermediates()...)
		files = append(files, pre.Output)
	}
	return files
}

// Walk visits ops depth-first, descending into shadow content. Returning
// false from fn stops the walk.
func Walk(ops []Op, fn func(Op) bool) bool {
	for _, op := range ops {
		if !fn(op) {
			return false
		}
		if s, ok := op.(ApplyShadow); ok {
			if !Walk(s.Content, fn) {
				return false
			}
		}
	}
	return true
}

// Count returns how many operations of kind the program contains
func (p *Program) Count(kind Kind) int {
	n := 0
	Walk(p.Ops, func(op Op) bool {
		if op.Kind() == kind {
			n++
		}
		return true
	})
	return n
}

// Texts returns the text operations with the given role
func (p *Program) Texts(role Role) []AnnotateText {
	var out []AnnotateText
	Walk(p.Ops, func(op Op) bool {
		if t, ok := op.(AnnotateText); ok && t.Role == role {
			out = append(out, t)
		}
		return true
	})
	return out
}

type taggedOp struct {
	Kind Kind `json:"kind"`
	Op   Op   `json:"op"`
}

func tag(ops []Op) []taggedOp {
	out := make([]taggedOp, len(ops))
	for i, op := range ops {
		out[i] = taggedOp{Kind: op.Kind(), Op: op}
	}
	return out
}

// MarshalJSON tags every operation with its kind
func (p Program) MarshalJSON() ([]byte, error) {
	type alias Program
	return json.Marshal(struct {
		alias
		Ops []taggedOp `json:"ops"`
	}{alias: alias(p), Ops: tag(p.Ops)})
}

// MarshalJSON tags the shadow content operations with their kind
func (s ApplyShadow) MarshalJSON() ([]byte, error) {
	type alias ApplyShadow
	return json.Marshal(struct {
		alias
		Content []taggedOp `json:"content"`
	}{alias: alias(s), Content: tag(s.Content)})
}
