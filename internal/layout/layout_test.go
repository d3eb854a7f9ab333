package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/thereceipt/titlecard-engine/internal/program"
)

func TestRect_Intersects(t *testing.T) {
	a := Rect{Left: 0, Top: 0, Right: 10, Bottom: 10}

	tests := []struct {
		name string
		b    Rect
		want bool
	}{
		{"overlapping", Rect{Left: 5, Top: 5, Right: 15, Bottom: 15}, true},
		{"contained", Rect{Left: 2, Top: 2, Right: 3, Bottom: 3}, true},
		{"touching edge", Rect{Left: 10, Top: 0, Right: 20, Bottom: 10}, false},
		{"disjoint", Rect{Left: 20, Top: 20, Right: 30, Bottom: 30}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(a); got != tt.want {
				t.Errorf("Intersects() is not symmetric: %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectFromCenter(t *testing.T) {
	r := RectFromCenter(program.Point{X: 100, Y: 50}, 40, 20)
	want := Rect{Left: 80, Top: 40, Right: 120, Bottom: 60}
	if r != want {
		t.Errorf("Expected %+v, got %+v", want, r)
	}
	if r.Width() != 40 || r.Height() != 20 {
		t.Errorf("Expected 40x20, got %gx%g", r.Width(), r.Height())
	}
	if !r.Inside(Canvas(program.Dimensions{Width: 200, Height: 100})) {
		t.Error("Expected rect inside canvas")
	}
	if r.Expand(100, 0).Inside(Canvas(program.Dimensions{Width: 200, Height: 100})) {
		t.Error("Expected expanded rect to leave canvas")
	}
}

func TestAnchor(t *testing.T) {
	canvas := program.Dimensions{Width: 3200, Height: 1800}
	size := program.Dimensions{Width: 1000, Height: 200}

	tests := []struct {
		name    string
		gravity program.Gravity
		offset  program.Point
		want    Rect
	}{
		{"center", program.GravityCenter, program.Point{}, Rect{Left: 1100, Top: 800, Right: 2100, Bottom: 1000}},
		{"center offset", program.GravityCenter, program.Point{X: 100, Y: -100}, Rect{Left: 1200, Top: 700, Right: 2200, Bottom: 900}},
		{"south", program.GravitySouth, program.Point{Y: 150}, Rect{Left: 1100, Top: 1450, Right: 2100, Bottom: 1650}},
		{"northwest", program.GravityNorthWest, program.Point{X: 50, Y: 60}, Rect{Left: 50, Top: 60, Right: 1050, Bottom: 260}},
		{"southeast", program.GravitySouthEast, program.Point{X: 50, Y: 60}, Rect{Left: 2150, Top: 1540, Right: 3150, Bottom: 1740}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Anchor(tt.gravity, tt.offset, size, canvas); got != tt.want {
				t.Errorf("Anchor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResizeChain(t *testing.T) {
	canvas := program.Dimensions{Width: 3200, Height: 1800}

	ops := ResizeChain(canvas, false, false)
	if len(ops) != 1 || ops[0].Kind() != program.KindResizeCrop {
		t.Fatalf("Expected a single resize op, got %v", ops)
	}

	ops = ResizeChain(canvas, true, true)
	if len(ops) != 2 {
		t.Fatalf("Expected resize and filter, got %d ops", len(ops))
	}
	filter, ok := ops[1].(program.StyleFilter)
	if !ok {
		t.Fatalf("Expected style filter, got %T", ops[1])
	}
	if filter.Blur != BlurSigma || !filter.Grayscale {
		t.Errorf("Unexpected filter %+v", filter)
	}
}

func TestDropShadow_StructuralIdempotence(t *testing.T) {
	for _, n := range []int{0, 1, 2, 7} {
		content := make([]program.Op, n)
		for i := range content {
			content[i] = program.AnnotateText{Role: program.RoleTitle}
		}

		p := program.New(100, 100)
		p.Add(DropShadow(content, DefaultShadow))

		if got := p.Count(program.KindApplyShadow); got != 1 {
			t.Errorf("n=%d: expected exactly 1 shadow op, got %d", n, got)
		}
		if got := p.Count(program.KindAnnotateText); got != n {
			t.Errorf("n=%d: expected %d wrapped ops, got %d", n, n, got)
		}
	}
}

func TestDropShadow_CopiesContent(t *testing.T) {
	content := []program.Op{program.AnnotateText{Text: "a"}}
	shadow := DropShadow(content, DefaultShadow)
	content[0] = program.AnnotateText{Text: "b"}

	if shadow.Content[0].(program.AnnotateText).Text != "a" {
		t.Error("Expected shadow content to be independent of the input slice")
	}
}

func TestFindMask_Priority(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "s01e01.jpg")
	touch(t, source)

	if _, ok := FindMask(source); ok {
		t.Fatal("Expected no mask in empty directory")
	}

	touch(t, filepath.Join(dir, GenericMask))
	if got, _ := FindMask(source); filepath.Base(got) != GenericMask {
		t.Errorf("Expected generic mask, got %s", got)
	}

	touch(t, filepath.Join(dir, "s01e01-alt-mask.png"))
	if got, _ := FindMask(source); filepath.Base(got) != "s01e01-alt-mask.png" {
		t.Errorf("Expected suffix pattern mask, got %s", got)
	}

	touch(t, filepath.Join(dir, "s01e01-mask.png"))
	if got, _ := FindMask(source); filepath.Base(got) != "s01e01-mask.png" {
		t.Errorf("Expected exact stem mask, got %s", got)
	}
}

func TestFindMask_LiteralStem(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "episode [1].jpg")
	touch(t, source)
	touch(t, filepath.Join(dir, "episode [1] v2-mask.png"))
	touch(t, filepath.Join(dir, "episode 1 v2-mask.png"))

	got, ok := FindMask(source)
	if !ok || filepath.Base(got) != "episode [1] v2-mask.png" {
		t.Errorf("Expected bracketed stem to match literally, got %q", got)
	}
}

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte{}, 0644); err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
}
