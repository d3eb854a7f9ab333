package program

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFill_KeepsPosition(t *testing.T) {
	p := New(3200, 1800)
	p.Add(ResizeCrop{Size: Dimensions{Width: 3200, Height: 1800}})
	p.Defer("box")
	p.Add(AnnotateText{Role: RoleTitle, Text: "Pilot"})

	if p.Resolved() {
		t.Fatal("Expected program with placeholder to be unresolved")
	}

	box := DrawShape{Shape: ShapeRectangle, Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}
	if err := p.Fill("box", box); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}

	if !p.Resolved() {
		t.Errorf("Expected program to be resolved, pending: %v", p.Pending())
	}
	if p.Ops[1].Kind() != KindDrawShape {
		t.Errorf("Expected shape at index 1, got %s", p.Ops[1].Kind())
	}
	if p.Ops[2].Kind() != KindAnnotateText {
		t.Errorf("Expected text at index 2, got %s", p.Ops[2].Kind())
	}
}

func TestFill_InsideShadow(t *testing.T) {
	p := New(100, 100)
	p.Add(ApplyShadow{Content: []Op{Placeholder{Key: "title"}}})

	if err := p.Fill("title", AnnotateText{Role: RoleTitle}); err != nil {
		t.Fatalf("Fill failed: %v", err)
	}
	if got := len(p.Texts(RoleTitle)); got != 1 {
		t.Errorf("Expected 1 title text inside shadow, got %d", got)
	}
	if err := p.Fill("missing"); err == nil {
		t.Error("Expected error for unknown placeholder")
	}
}

func TestPending_IncludesPrelude(t *testing.T) {
	pre := New(10, 10)
	pre.Defer("layer")
	p := New(10, 10)
	p.Prelude = append(p.Prelude, pre)

	if p.Resolved() {
		t.Error("Expected unresolved prelude to leave program unresolved")
	}
}

func TestCount(t *testing.T) {
	p := New(100, 100)
	p.Add(
		ResizeCrop{},
		ApplyShadow{Content: []Op{AnnotateText{Role: RoleTitle}, AnnotateText{Role: RoleIndex}}},
		AnnotateText{Role: RoleIndex},
	)

	if got := p.Count(KindAnnotateText); got != 3 {
		t.Errorf("Expected 3 text ops, got %d", got)
	}
	if got := p.Count(KindApplyShadow); got != 1 {
		t.Errorf("Expected 1 shadow op, got %d", got)
	}
	if got := len(p.Texts(RoleIndex)); got != 2 {
		t.Errorf("Expected 2 index texts, got %d", got)
	}
}

func TestMarshalJSON_TagsKinds(t *testing.T) {
	p := New(100, 100)
	p.Add(ApplyShadow{Content: []Op{AnnotateText{Role: RoleTitle, Text: "Pilot"}}})

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"kind":"apply_shadow"`, `"kind":"annotate_text"`, `"text":"Pilot"`} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %s in %s", want, out)
		}
	}
}

func TestScratch_Release(t *testing.T) {
	dir := t.TempDir()
	s := NewScratch(dir)

	a := s.Path(".png")
	b := s.Path(".png")
	if a == b {
		t.Fatal("Expected unique scratch paths")
	}
	if filepath.Dir(a) != dir {
		t.Errorf("Expected scratch path in %s, got %s", dir, a)
	}

	// Only one of the two is ever written
	if err := os.WriteFile(a, []byte("x"), 0644); err != nil {
		t.Fatalf("Failed to write scratch file: %v", err)
	}

	if err := s.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if _, err := os.Stat(a); !os.IsNotExist(err) {
		t.Errorf("Expected %s to be removed", a)
	}
	if len(s.Files()) != 0 {
		t.Errorf("Expected no tracked files after release, got %d", len(s.Files()))
	}
}
