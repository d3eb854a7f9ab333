package rasterizer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thereceipt/titlecard-engine/internal/logger"
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// runFunc executes the binary and returns its stdout and stderr
type runFunc func(ctx context.Context, binary string, args []string) ([]byte, []byte, error)

// Magick drives the ImageMagick command line
type Magick struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
	run     runFunc
}

// NewMagick creates an ImageMagick backend
func NewMagick(opts Options) *Magick {
	binary := opts.Binary
	if binary == "" {
		binary = "magick"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Magick{binary: binary, timeout: timeout, logger: logger, run: execRun}
}

func execRun(ctx context.Context, binary string, args []string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// Render executes the prelude programs and then prog
func (m *Magick) Render(ctx context.Context, prog *program.Program) error {
	if !prog.Resolved() {
		return fmt.Errorf("%w: %v", ErrUnresolved, prog.Pending())
	}

	for _, pre := range prog.Prelude {
		if err := m.Render(ctx, pre); err != nil {
			return fmt.Errorf("prelude %s: %w", pre.Output, err)
		}
	}

	_, err := m.call(ctx, RenderArgs(prog))
	return err
}

// Measure runs a debug annotate pass and parses the reported metrics
func (m *Magick) Measure(ctx context.Context, ops []program.AnnotateText) ([]program.Dimensions, error) {
	if len(ops) == 0 {
		return nil, nil
	}

	stderr, err := m.call(ctx, MeasureArgs(ops))
	if err != nil {
		return nil, err
	}

	dims := ParseMetrics(stderr)
	if len(dims) == 0 {
		return nil, fmt.Errorf("no metrics reported for %d annotations", len(ops))
	}
	return dims, nil
}

func (m *Magick) call(ctx context.Context, args []string) ([]byte, error) {
	cctx, cancel, err := callContext(ctx, m.timeout)
	if err != nil {
		return nil, err
	}
	defer cancel()

	started := time.Now()
	_, stderr, err := m.run(cctx, m.binary, args)
	m.logger.Debug("magick call", "args", len(args), "duration", time.Since(started))
	logger.Trace(m.logger, "magick argv", "argv", strings.Join(args, " "))
	if err != nil {
		return stderr, timeoutError(cctx, fmt.Errorf("%s failed: %w: %s", m.binary, err, tail(stderr)))
	}
	return stderr, nil
}

func tail(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 400 {
		s = "..." + s[len(s)-400:]
	}
	return s
}

// RenderArgs lowers a program to an ImageMagick argument list
func RenderArgs(p *program.Program) []string {
	var args []string
	if p.Source != "" {
		args = append(args, p.Source)
	} else {
		bg := p.Background
		if bg == "" {
			bg = "black"
		}
		args = append(args, "-size", size(p.Canvas), "xc:"+bg)
	}
	args = append(args, lowerOps(p.Ops, p.Canvas)...)
	return append(args, p.Output)
}

// MeasureArgs lowers annotations to a metrics-only invocation
func MeasureArgs(ops []program.AnnotateText) []string {
	args := []string{"-debug", "annotate", "xc:"}
	for _, o := range ops {
		args = append(args, textStyle(o)...)
		if o.StrokeWidth > 0 {
			args = append(args, "-strokewidth", num(o.StrokeWidth))
		}
		args = append(args, "-annotate", "+0+0", o.Text)
	}
	return append(args, "null:")
}

var metricsLine = regexp.MustCompile(`Metrics:.*?width:\s*([0-9.]+);\s*height:\s*([0-9.]+)`)

// ParseMetrics extracts every reported line dimension from debug output
func ParseMetrics(out []byte) []program.Dimensions {
	var dims []program.Dimensions
	for _, m := range metricsLine.FindAllSubmatch(out, -1) {
		w, errW := strconv.ParseFloat(string(m[1]), 64)
		h, errH := strconv.ParseFloat(string(m[2]), 64)
		if errW != nil || errH != nil {
			continue
		}
		dims = append(dims, program.Dimensions{Width: w, Height: h})
	}
	return dims
}

func lowerOps(ops []program.Op, canvas program.Dimensions) []string {
	var args []string
	for _, op := range ops {
		switch o := op.(type) {
		case program.ResizeCrop:
			args = append(args,
				"-background", "black",
				"-gravity", "center",
				"-resize", size(o.Size)+"^",
				"-extent", size(o.Size),
			)
		case program.StyleFilter:
			if o.Blur > 0 {
				args = append(args, "-blur", "0x"+num(o.Blur))
			}
			if o.Grayscale {
				args = append(args, "-colorspace", "gray", "-set", "colorspace", "sRGB")
			}
		case program.AnnotateText:
			args = append(args, lowerText(o)...)
		case program.DrawShape:
			args = append(args, lowerShape(o)...)
		case program.CompositeImage:
			args = append(args, lowerComposite(o)...)
		case program.ApplyShadow:
			args = append(args, lowerShadow(o, canvas)...)
		}
	}
	return args
}

func textStyle(o program.AnnotateText) []string {
	args := []string{}
	if o.Font != "" {
		args = append(args, "-font", o.Font)
	}
	return append(args,
		"-pointsize", num(o.Size),
		"-kerning", num(o.Kerning),
		"-interline-spacing", num(o.InterlineSpacing),
		"-interword-spacing", num(o.InterwordSpacing),
	)
}

func lowerText(o program.AnnotateText) []string {
	args := textStyle(o)
	gravity := o.Gravity
	if gravity == "" {
		gravity = program.GravityCenter
	}
	args = append(args, "-gravity", string(gravity))
	geom := geometry(o.Rotation, o.Offset)

	if o.StrokeWidth > 0 && o.StrokeColor != "" {
		args = append(args,
			"-fill", o.StrokeColor,
			"-stroke", o.StrokeColor,
			"-strokewidth", num(o.StrokeWidth),
			"-annotate", geom, o.Text,
		)
	}
	return append(args,
		"-fill", o.Color,
		"-stroke", "none",
		"-strokewidth", "0",
		"-annotate", geom, o.Text,
	)
}

func lowerShape(o program.DrawShape) []string {
	fill, stroke := o.Fill, o.Stroke
	if fill == "" {
		fill = "none"
	}
	if stroke == "" {
		stroke = "none"
	}

	var primitive string
	pts := o.Points
	switch o.Shape {
	case program.ShapeRectangle:
		primitive = fmt.Sprintf("rectangle %s %s", pt(pts, 0), pt(pts, 1))
	case program.ShapeRoundRectangle:
		primitive = fmt.Sprintf("roundrectangle %s %s %s,%s", pt(pts, 0), pt(pts, 1), num(o.Radius), num(o.Radius))
	case program.ShapeLine:
		primitive = fmt.Sprintf("line %s %s", pt(pts, 0), pt(pts, 1))
	case program.ShapePolygon:
		coords := make([]string, len(pts))
		for i := range pts {
			coords[i] = pt(pts, i)
		}
		primitive = "polygon " + strings.Join(coords, " ")
	case program.ShapeCircle:
		c := program.Point{}
		if len(pts) > 0 {
			c = pts[0]
		}
		primitive = fmt.Sprintf("circle %s,%s %s,%s", num(c.X), num(c.Y), num(c.X+o.Radius), num(c.Y))
	default:
		return nil
	}

	return []string{
		"-fill", fill,
		"-stroke", stroke,
		"-strokewidth", num(o.StrokeWidth),
		"-draw", primitive,
	}
}

func lowerComposite(o program.CompositeImage) []string {
	args := []string{"("}
	if strings.HasPrefix(o.Path, "gradient:") {
		args = append(args, "-size", size(o.Size), o.Path)
	} else {
		args = append(args, o.Path)
		if o.Size.Width > 0 || o.Size.Height > 0 {
			args = append(args, "-resize", size(o.Size))
		}
	}
	if o.Rotate != 0 {
		args = append(args, "-background", "none", "-rotate", num(o.Rotate))
	}
	if o.Opacity > 0 && o.Opacity < 1 {
		args = append(args, "-alpha", "set", "-channel", "A", "-evaluate", "multiply", num(o.Opacity), "+channel")
	}
	args = append(args, ")")

	if o.Mask != "" {
		args = append(args, "(", o.Mask)
		if o.Size.Width > 0 && o.Size.Height > 0 {
			args = append(args, "-resize", size(o.Size)+"!")
		}
		args = append(args, ")")
	}

	gravity := o.Gravity
	if gravity == "" {
		gravity = program.GravityNorthWest
	}
	return append(args,
		"-gravity", string(gravity),
		"-geometry", geometry(0, o.Offset),
		"-composite",
	)
}

func lowerShadow(o program.ApplyShadow, canvas program.Dimensions) []string {
	args := []string{"(", "-size", size(canvas), "xc:none"}
	args = append(args, lowerOps(o.Content, canvas)...)
	args = append(args,
		"(", "+clone",
		"-background", colorOr(o.Color, "black"),
		"-shadow", fmt.Sprintf("%sx%s%s", num(o.Opacity), num(o.Sigma), offset(o.Offset)),
		")",
		"+swap",
		"-background", "none",
		"-layers", "merge",
		"-crop", size(canvas)+"+0+0",
		"+repage",
		")",
	)
	return append(args,
		"-gravity", "northwest",
		"-geometry", "+0+0",
		"-composite",
	)
}

func colorOr(c, fallback string) string {
	if c == "" {
		return fallback
	}
	return c
}

func size(d program.Dimensions) string {
	w, h := "", ""
	if d.Width > 0 {
		w = strconv.Itoa(int(math.Round(d.Width)))
	}
	if d.Height > 0 {
		h = strconv.Itoa(int(math.Round(d.Height)))
	}
	return w + "x" + h
}

func offset(p program.Point) string {
	return fmt.Sprintf("%+d%+d", int(math.Round(p.X)), int(math.Round(p.Y)))
}

func geometry(rotation float64, p program.Point) string {
	if rotation == 0 {
		return offset(p)
	}
	r := num(rotation)
	return r + "x" + r + offset(p)
}

func pt(pts []program.Point, i int) string {
	if i >= len(pts) {
		return "0,0"
	}
	return num(pts[i].X) + "," + num(pts[i].Y)
}

func num(f float64) string {
	return strconv.FormatFloat(math.Round(f*100)/100, 'f', -1, 64)
}
