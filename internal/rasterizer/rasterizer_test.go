package rasterizer

import (
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/thereceipt/titlecard-engine/internal/program"
)

func fakeMagick(run runFunc) *Magick {
	m := NewMagick(Options{Timeout: time.Second})
	m.run = run
	return m
}

func TestRenderArgs_BlankCanvas(t *testing.T) {
	p := program.New(3200, 1800)
	p.Output = "out.png"
	p.Add(program.AnnotateText{Text: "Pilot", Size: 150, Color: "white", Gravity: program.GravitySouth, Offset: program.Point{Y: 150}})

	args := RenderArgs(p)
	if args[0] != "-size" || args[1] != "3200x1800" || args[2] != "xc:black" {
		t.Errorf("Expected blank canvas prefix, got %v", args[:3])
	}
	if args[len(args)-1] != "out.png" {
		t.Errorf("Expected output last, got %s", args[len(args)-1])
	}
	i := slices.Index(args, "-annotate")
	if i < 0 || args[i+1] != "+0+150" || args[i+2] != "Pilot" {
		t.Errorf("Expected annotate +0+150 Pilot, got %v", args)
	}
}

func TestLowerText_StrokeDrawsTwice(t *testing.T) {
	args := lowerText(program.AnnotateText{
		Text: "Title", Size: 100, Color: "white",
		StrokeColor: "black", StrokeWidth: 4, Rotation: -45,
		Offset: program.Point{X: 10, Y: -20},
	})

	count := 0
	for i, a := range args {
		if a == "-annotate" {
			count++
			if args[i+1] != "-45x-45+10-20" {
				t.Errorf("Expected rotated geometry, got %s", args[i+1])
			}
		}
	}
	if count != 2 {
		t.Errorf("Expected 2 annotate passes with stroke, got %d", count)
	}
}

func TestLowerShape(t *testing.T) {
	tests := []struct {
		name string
		op   program.DrawShape
		want string
	}{
		{"rectangle", program.DrawShape{Shape: program.ShapeRectangle, Points: []program.Point{{X: 1, Y: 2}, {X: 3, Y: 4}}}, "rectangle 1,2 3,4"},
		{"round", program.DrawShape{Shape: program.ShapeRoundRectangle, Radius: 5, Points: []program.Point{{}, {X: 10, Y: 10}}}, "roundrectangle 0,0 10,10 5,5"},
		{"line", program.DrawShape{Shape: program.ShapeLine, Points: []program.Point{{X: 0.5}, {X: 100}}}, "line 0.5,0 100,0"},
		{"polygon", program.DrawShape{Shape: program.ShapePolygon, Points: []program.Point{{}, {X: 1}, {Y: 1}}}, "polygon 0,0 1,0 0,1"},
		{"circle", program.DrawShape{Shape: program.ShapeCircle, Radius: 3, Points: []program.Point{{X: 5, Y: 5}}}, "circle 5,5 8,5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := lowerShape(tt.op)
			if got := args[len(args)-1]; got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
			if args[1] != "none" {
				t.Errorf("Expected empty fill to lower to none, got %s", args[1])
			}
		})
	}
}

func TestLowerComposite_MaskIsThirdImage(t *testing.T) {
	args := lowerComposite(program.CompositeImage{
		Path: "source.jpg", Mask: "source-mask.png",
		Size: program.Dimensions{Width: 3200, Height: 1800},
	})
	joined := strings.Join(args, " ")
	want := "( source.jpg -resize 3200x1800 ) ( source-mask.png -resize 3200x1800! ) -gravity northwest -geometry +0+0 -composite"
	if joined != want {
		t.Errorf("Expected %q, got %q", want, joined)
	}
}

func TestLowerComposite_Gradient(t *testing.T) {
	args := lowerComposite(program.CompositeImage{
		Path: "gradient:none-black", Size: program.Dimensions{Width: 3200, Height: 900}, Opacity: 0.5,
		Gravity: program.GravitySouth,
	})
	joined := strings.Join(args, " ")
	if !strings.HasPrefix(joined, "( -size 3200x900 gradient:none-black") {
		t.Errorf("Expected sized gradient, got %q", joined)
	}
	if !strings.Contains(joined, "-evaluate multiply 0.5") {
		t.Errorf("Expected opacity multiply, got %q", joined)
	}
}

func TestLowerShadow_ContentInsideLayer(t *testing.T) {
	canvas := program.Dimensions{Width: 3200, Height: 1800}
	args := lowerShadow(program.ApplyShadow{
		Color: "black", Opacity: 95, Sigma: 2, Offset: program.Point{X: 10, Y: 10},
		Content: []program.Op{program.AnnotateText{Text: "Pilot", Color: "white", Size: 10}},
	}, canvas)

	joined := strings.Join(args, " ")
	if !strings.Contains(joined, "-shadow 95x2+10+10") {
		t.Errorf("Expected shadow geometry, got %q", joined)
	}
	if strings.Index(joined, "Pilot") > strings.Index(joined, "+clone") {
		t.Error("Expected content to be drawn before the shadow clone")
	}
	if strings.Count(joined, "-layers merge") != 1 {
		t.Errorf("Expected a single merge, got %q", joined)
	}
}

func TestParseMetrics(t *testing.T) {
	out := []byte(`2024-01-01T00:00:00+00:00 0:00.010 0.000u 7.1.1 Annotate magick[1]: annotate.c/RenderFreetype/1460/Annotate
  Font /fonts/a.ttf; font-encoding none; text-encoding none; pointsize 150
2024-01-01T00:00:00+00:00 0:00.010 0.000u 7.1.1 Annotate magick[1]: annotate.c/GetTypeMetrics/1.../Annotate
  Metrics: text: Pilot; width: 412; height: 181; ascent: 139; descent: -39; max advance: 301; bounds: 0,-37  110,113; origin: 413,0; pixels per em: 150,150; underline position: -6.25; underline thickness: 3.125
  Metrics: text: Episode; width: 600.5; height: 181; ascent: 139
`)
	dims := ParseMetrics(out)
	if len(dims) != 2 {
		t.Fatalf("Expected 2 metrics, got %d", len(dims))
	}
	if dims[0].Width != 412 || dims[0].Height != 181 {
		t.Errorf("Expected 412x181, got %+v", dims[0])
	}
	if dims[1].Width != 600.5 {
		t.Errorf("Expected 600.5, got %v", dims[1].Width)
	}
}

func TestMagick_Measure(t *testing.T) {
	var gotArgs []string
	m := fakeMagick(func(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
		gotArgs = args
		return nil, []byte("Metrics: text: a; width: 10; height: 20;\n"), nil
	})

	dims, err := m.Measure(context.Background(), []program.AnnotateText{{Text: "a", Size: 10}})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if len(dims) != 1 || dims[0].Width != 10 || dims[0].Height != 20 {
		t.Errorf("Unexpected dims %+v", dims)
	}
	if gotArgs[0] != "-debug" || gotArgs[len(gotArgs)-1] != "null:" {
		t.Errorf("Expected metrics-only invocation, got %v", gotArgs)
	}
}

func TestMagick_RejectsUnresolved(t *testing.T) {
	called := false
	m := fakeMagick(func(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
		called = true
		return nil, nil, nil
	})

	p := program.New(100, 100)
	p.Defer("box")
	err := m.Render(context.Background(), p)
	if !errors.Is(err, ErrUnresolved) {
		t.Errorf("Expected ErrUnresolved, got %v", err)
	}
	if called {
		t.Error("Expected no subprocess for unresolved program")
	}
}

func TestMagick_RendersPreludeFirst(t *testing.T) {
	var outputs []string
	m := fakeMagick(func(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
		outputs = append(outputs, args[len(args)-1])
		return nil, nil, nil
	})

	layer := program.New(10, 10)
	layer.Output = "layer.png"
	p := program.New(10, 10)
	p.Output = "card.png"
	p.Prelude = append(p.Prelude, layer)

	if err := m.Render(context.Background(), p); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !slices.Equal(outputs, []string{"layer.png", "card.png"}) {
		t.Errorf("Expected prelude first, got %v", outputs)
	}
}

func TestMagick_Timeout(t *testing.T) {
	m := fakeMagick(func(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	})
	m.timeout = 10 * time.Millisecond

	_, err := m.Measure(context.Background(), []program.AnnotateText{{Text: "a"}})
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Expected ErrTimeout, got %v", err)
	}
}

func TestMagick_CancelledBeforeCall(t *testing.T) {
	called := false
	m := fakeMagick(func(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
		called = true
		return nil, nil, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Measure(ctx, []program.AnnotateText{{Text: "a"}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if called {
		t.Error("Expected no call after cancellation")
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"white", color.NRGBA{255, 255, 255, 255}, false},
		{"#EBB", color.NRGBA{0xee, 0xbb, 0xbb, 255}, false},
		{"#1a2B3c", color.NRGBA{0x1a, 0x2b, 0x3c, 255}, false},
		{"#00000080", color.NRGBA{0, 0, 0, 0x80}, false},
		{"rgba(0, 0, 0, 0.5)", color.NRGBA{0, 0, 0, 128}, false},
		{"rgb(10,20,30)", color.NRGBA{10, 20, 30, 255}, false},
		{"rgb(300,0,0)", color.NRGBA{}, true},
		{"#12", color.NRGBA{}, true},
		{"chartreuse-ish", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %v, expected %v", tt.in, got, tt.want)
		}
	}
}

func TestDraft_Render(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.png")
	if err := imaging.Save(imaging.New(640, 480, color.NRGBA{R: 200, A: 255}), source); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	p := program.New(320, 180)
	p.Source = source
	p.Output = filepath.Join(dir, "card.png")
	p.Add(
		program.ResizeCrop{Size: p.Canvas},
		program.StyleFilter{Grayscale: true},
		program.DrawShape{Shape: program.ShapeRectangle, Fill: "rgba(0,0,0,0.5)", Points: []program.Point{{X: 10, Y: 10}, {X: 100, Y: 50}}},
		program.ApplyShadow{Color: "black", Opacity: 90, Sigma: 1, Offset: program.Point{X: 2, Y: 2},
			Content: []program.Op{program.AnnotateText{Text: "Pilot", Size: 20, Color: "white", Gravity: program.GravitySouth}}},
		program.CompositeImage{Path: "gradient:none-black", Size: program.Dimensions{Width: 320, Height: 90}, Gravity: program.GravitySouth},
	)

	d := NewDraft(Options{Timeout: 30 * time.Second})
	if err := d.Render(context.Background(), p); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	out, err := imaging.Open(p.Output)
	if err != nil {
		t.Fatalf("Failed to open output: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".partial-card.png")); !os.IsNotExist(err) {
		t.Errorf("Expected partial file to be renamed away, got %v", err)
	}
	if b := out.Bounds(); b.Dx() != 320 || b.Dy() != 180 {
		t.Errorf("Expected 320x180 output, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestDraft_TimeoutWritesNothing(t *testing.T) {
	dir := t.TempDir()

	layer := program.New(3200, 1800)
	layer.Output = filepath.Join(dir, "layer.png")
	for i := 0; i < 8; i++ {
		layer.Add(program.StyleFilter{Blur: 20})
	}
	p := program.New(3200, 1800)
	p.Output = filepath.Join(dir, "card.png")
	p.Prelude = append(p.Prelude, layer)
	p.Add(program.CompositeImage{Path: layer.Output})

	d := NewDraft(Options{Timeout: 5 * time.Millisecond})
	err := d.Render(context.Background(), p)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("Expected ErrTimeout, got %v", err)
	}

	time.Sleep(200 * time.Millisecond)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	for _, e := range entries {
		t.Errorf("Expected no files after timeout, found %s", e.Name())
	}
}

func TestDraft_Measure(t *testing.T) {
	d := NewDraft(Options{})
	dims, err := d.Measure(context.Background(), []program.AnnotateText{
		{Text: "ab", Size: 20},
		{Text: "abcd\nab", Size: 20},
	})
	if err != nil {
		t.Fatalf("Measure failed: %v", err)
	}
	if len(dims) != 3 {
		t.Fatalf("Expected one dimension per line, got %d", len(dims))
	}
	if dims[1].Width <= dims[0].Width {
		t.Errorf("Expected wider line to measure wider: %v vs %v", dims[1].Width, dims[0].Width)
	}
	if dims[0].Height <= 0 {
		t.Errorf("Expected positive height, got %v", dims[0].Height)
	}
}

func TestNew(t *testing.T) {
	if _, err := New("magick", Options{}); err != nil {
		t.Errorf("Expected magick backend, got %v", err)
	}
	if _, err := New("draft", Options{}); err != nil {
		t.Errorf("Expected draft backend, got %v", err)
	}
	if _, err := New("cairo", Options{}); err == nil {
		t.Error("Expected error for unknown backend")
	}
}
