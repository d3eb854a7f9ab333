package rasterizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// fallbackFonts are tried when an annotation's font cannot be loaded
var fallbackFonts = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/System/Library/Fonts/Helvetica.ttc",
	"/System/Library/Fonts/Supplemental/Arial.ttf",
}

// Draft renders programs in-process. Output is an approximation of the
// ImageMagick result: kerning and word spacing only affect measurement.
type Draft struct {
	timeout time.Duration
	logger  *slog.Logger
}

// NewDraft creates an in-process backend
func NewDraft(opts Options) *Draft {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Draft{timeout: timeout, logger: logger}
}

// Render executes the prelude programs and then prog. Each call checks its
// deadline between operations and only publishes an output file when it
// finished in time.
func (d *Draft) Render(ctx context.Context, prog *program.Program) error {
	if !prog.Resolved() {
		return fmt.Errorf("%w: %v", ErrUnresolved, prog.Pending())
	}

	for _, pre := range prog.Prelude {
		if err := d.Render(ctx, pre); err != nil {
			return fmt.Errorf("prelude %s: %w", pre.Output, err)
		}
	}

	return d.within(ctx, func(cctx context.Context) error {
		img, err := d.compose(cctx, prog)
		if err != nil {
			return err
		}
		return save(cctx, img, prog.Output)
	})
}

// Measure reports one dimension per rendered line
func (d *Draft) Measure(ctx context.Context, ops []program.AnnotateText) ([]program.Dimensions, error) {
	var dims []program.Dimensions
	err := d.within(ctx, func(cctx context.Context) error {
		dc := gg.NewContext(1, 1)
		for _, o := range ops {
			if err := cctx.Err(); err != nil {
				return err
			}
			d.loadFont(dc, o.Font, o.Size)
			for _, line := range strings.Split(o.Text, "\n") {
				w, _ := dc.MeasureString(line)
				if n := utf8.RuneCountInString(line); n > 1 {
					w += o.Kerning * float64(n-1)
				}
				w += o.InterwordSpacing * float64(strings.Count(line, " "))
				dims = append(dims, program.Dimensions{Width: w + o.StrokeWidth, Height: dc.FontHeight() + o.StrokeWidth})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return dims, nil
}

// within runs fn on the caller's goroutine so that nothing it started
// outlives the call.
func (d *Draft) within(ctx context.Context, fn func(context.Context) error) error {
	cctx, cancel, err := callContext(ctx, d.timeout)
	if err != nil {
		return err
	}
	defer cancel()

	err = fn(cctx)
	if err != nil && errors.Is(cctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, d.timeout)
	}
	return err
}

// save encodes img next to path and renames it into place
func save(ctx context.Context, img image.Image, path string) error {
	tmp := filepath.Join(filepath.Dir(path), ".partial-"+filepath.Base(path))
	if err := imaging.Save(img, tmp); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := ctx.Err(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (d *Draft) compose(ctx context.Context, p *program.Program) (*image.NRGBA, error) {
	var img *image.NRGBA
	if p.Source != "" {
		src, err := imaging.Open(p.Source)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		img = imaging.Clone(src)
	} else {
		bg, err := ParseColor(p.Background)
		if err != nil {
			bg = color.NRGBA{A: 255}
		}
		img = imaging.New(int(p.Canvas.Width), int(p.Canvas.Height), bg)
	}
	return d.apply(ctx, img, p.Ops)
}

func (d *Draft) apply(ctx context.Context, img *image.NRGBA, ops []program.Op) (*image.NRGBA, error) {
	var err error
	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch o := op.(type) {
		case program.ResizeCrop:
			img = imaging.Fill(img, int(o.Size.Width), int(o.Size.Height), imaging.Center, imaging.Lanczos)
		case program.StyleFilter:
			if o.Blur > 0 {
				img = imaging.Blur(img, o.Blur)
			}
			if o.Grayscale {
				img = imaging.Grayscale(img)
			}
		case program.AnnotateText:
			img = d.drawText(img, o)
		case program.DrawShape:
			img = drawShape(img, o)
		case program.CompositeImage:
			img, err = d.composite(img, o)
		case program.ApplyShadow:
			img, err = d.shadow(ctx, img, o)
		case program.Placeholder:
			err = fmt.Errorf("%w: %s", ErrUnresolved, o.Key)
		}
		if err != nil {
			return nil, err
		}
	}
	return img, nil
}

func (d *Draft) loadFont(dc *gg.Context, path string, size float64) {
	if path != "" {
		if err := dc.LoadFontFace(path, size); err == nil {
			return
		}
		d.logger.Debug("font unavailable, using fallback", "font", path)
	}
	for _, font := range fallbackFonts {
		if _, err := os.Stat(font); err == nil {
			if err := dc.LoadFontFace(font, size); err == nil {
				return
			}
		}
	}
}

func canvasOf(img image.Image) program.Dimensions {
	b := img.Bounds()
	return program.Dimensions{Width: float64(b.Dx()), Height: float64(b.Dy())}
}

func (d *Draft) drawText(img *image.NRGBA, o program.AnnotateText) *image.NRGBA {
	dc := gg.NewContextForImage(img)
	d.loadFont(dc, o.Font, o.Size)

	lines := strings.Split(o.Text, "\n")
	lineHeight := dc.FontHeight() + o.InterlineSpacing
	var width float64
	for _, line := range lines {
		if w, _ := dc.MeasureString(line); w > width {
			width = w
		}
	}
	height := lineHeight*float64(len(lines)) - o.InterlineSpacing

	gravity := o.Gravity
	if gravity == "" {
		gravity = program.GravityCenter
	}
	box := layout.Anchor(gravity, o.Offset, program.Dimensions{Width: width, Height: height}, canvasOf(img))
	center := box.Center()
	if o.Rotation != 0 {
		dc.RotateAbout(gg.Radians(o.Rotation), center.X, center.Y)
	}

	fill, err := ParseColor(o.Color)
	if err != nil {
		fill = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	stroke, strokeErr := ParseColor(o.StrokeColor)

	for i, line := range lines {
		y := box.Top + float64(i)*lineHeight
		if o.StrokeWidth > 0 && strokeErr == nil {
			dc.SetColor(stroke)
			r := o.StrokeWidth / 2
			for a := 0.0; a < 360; a += 30 {
				dx, dy := r*math.Cos(gg.Radians(a)), r*math.Sin(gg.Radians(a))
				dc.DrawStringAnchored(line, center.X+dx, y+dy, 0.5, 1)
			}
		}
		dc.SetColor(fill)
		dc.DrawStringAnchored(line, center.X, y, 0.5, 1)
	}
	return imaging.Clone(dc.Image())
}

func drawShape(img *image.NRGBA, o program.DrawShape) *image.NRGBA {
	dc := gg.NewContextForImage(img)
	p := func(i int) program.Point {
		if i < len(o.Points) {
			return o.Points[i]
		}
		return program.Point{}
	}

	switch o.Shape {
	case program.ShapeRectangle:
		a, b := p(0), p(1)
		dc.DrawRectangle(a.X, a.Y, b.X-a.X, b.Y-a.Y)
	case program.ShapeRoundRectangle:
		a, b := p(0), p(1)
		dc.DrawRoundedRectangle(a.X, a.Y, b.X-a.X, b.Y-a.Y, o.Radius)
	case program.ShapeLine:
		a, b := p(0), p(1)
		dc.DrawLine(a.X, a.Y, b.X, b.Y)
	case program.ShapePolygon:
		for i, pt := range o.Points {
			if i == 0 {
				dc.MoveTo(pt.X, pt.Y)
			} else {
				dc.LineTo(pt.X, pt.Y)
			}
		}
		dc.ClosePath()
	case program.ShapeCircle:
		c := p(0)
		dc.DrawCircle(c.X, c.Y, o.Radius)
	default:
		return img
	}

	fill, fillErr := ParseColor(o.Fill)
	stroke, strokeErr := ParseColor(o.Stroke)
	hasFill := fillErr == nil && fill.A > 0 && o.Shape != program.ShapeLine
	hasStroke := strokeErr == nil && stroke.A > 0 && o.StrokeWidth > 0

	if hasFill {
		dc.SetColor(fill)
		if hasStroke {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if hasStroke {
		dc.SetColor(stroke)
		dc.SetLineWidth(o.StrokeWidth)
		dc.Stroke()
	}
	dc.ClearPath()
	return imaging.Clone(dc.Image())
}

func (d *Draft) composite(img *image.NRGBA, o program.CompositeImage) (*image.NRGBA, error) {
	var layer *image.NRGBA
	if spec, ok := strings.CutPrefix(o.Path, "gradient:"); ok {
		layer = gradient(o.Size, spec)
	} else {
		src, err := imaging.Open(o.Path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", o.Path, err)
		}
		layer = imaging.Clone(src)
		if o.Size.Width > 0 || o.Size.Height > 0 {
			layer = imaging.Resize(layer, int(o.Size.Width), int(o.Size.Height), imaging.Lanczos)
		}
	}

	if o.Rotate != 0 {
		layer = imaging.Rotate(layer, -o.Rotate, color.Transparent)
	}

	if o.Mask != "" {
		mask, err := imaging.Open(o.Mask)
		if err != nil {
			return nil, fmt.Errorf("open mask %s: %w", o.Mask, err)
		}
		applyMask(layer, mask)
	}

	opacity := o.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}

	gravity := o.Gravity
	if gravity == "" {
		gravity = program.GravityNorthWest
	}
	box := layout.Anchor(gravity, o.Offset, canvasOf(layer), canvasOf(img))
	pos := image.Pt(int(math.Round(box.Left)), int(math.Round(box.Top)))
	return imaging.Overlay(img, layer, pos, opacity), nil
}

// applyMask scales layer's alpha by the mask's luminance
func applyMask(layer *image.NRGBA, mask image.Image) {
	b := layer.Bounds()
	gray := imaging.Grayscale(imaging.Resize(mask, b.Dx(), b.Dy(), imaging.Linear))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			i := layer.PixOffset(b.Min.X+x, b.Min.Y+y)
			lum := gray.Pix[gray.PixOffset(x, y)]
			layer.Pix[i+3] = uint8(uint16(layer.Pix[i+3]) * uint16(lum) / 255)
		}
	}
}

// gradient draws a vertical two-stop gradient such as "none-black"
func gradient(size program.Dimensions, spec string) *image.NRGBA {
	w, h := int(size.Width), int(size.Height)
	if w <= 0 || h <= 0 {
		return imaging.New(1, 1, color.Transparent)
	}

	from, to, _ := strings.Cut(spec, "-")
	top, err := ParseColor(from)
	if err != nil {
		top = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	bottom, err := ParseColor(to)
	if err != nil {
		bottom = color.NRGBA{A: 255}
	}

	dc := gg.NewContext(w, h)
	grad := gg.NewLinearGradient(0, 0, 0, float64(h))
	grad.AddColorStop(0, top)
	grad.AddColorStop(1, bottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(w), float64(h))
	dc.Fill()
	return imaging.Clone(dc.Image())
}

func (d *Draft) shadow(ctx context.Context, img *image.NRGBA, o program.ApplyShadow) (*image.NRGBA, error) {
	layer, err := d.apply(ctx, imaging.New(img.Bounds().Dx(), img.Bounds().Dy(), color.Transparent), o.Content)
	if err != nil {
		return nil, err
	}

	tint, err := ParseColor(o.Color)
	if err != nil {
		tint = color.NRGBA{A: 255}
	}
	strength := o.Opacity / 100
	if strength <= 0 || strength > 1 {
		strength = 1
	}

	cast := imaging.Clone(layer)
	for i := 0; i < len(cast.Pix); i += 4 {
		cast.Pix[i], cast.Pix[i+1], cast.Pix[i+2] = tint.R, tint.G, tint.B
		cast.Pix[i+3] = uint8(float64(cast.Pix[i+3]) * strength)
	}
	if o.Sigma > 0 {
		cast = imaging.Blur(cast, o.Sigma)
	}

	offset := image.Pt(int(math.Round(o.Offset.X)), int(math.Round(o.Offset.Y)))
	img = imaging.Overlay(img, cast, offset, 1)
	return imaging.Overlay(img, layer, image.Pt(0, 0), 1), nil
}
