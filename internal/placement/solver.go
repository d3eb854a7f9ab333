package placement

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
)

// MaxAttempts bounds the candidate search
const MaxAttempts = 50

// Measurer answers the solver's text measurements
type Measurer interface {
	Measure(ctx context.Context, ops []program.AnnotateText, agg metrics.Aggregation) (metrics.TextMetrics, error)
}

// Input describes one placement problem
type Input struct {
	// Lines is the numeral as displayed, one or two lines
	Lines []string
	// Scale is the numeral's render scale from RenderScale
	Scale  float64
	Canvas program.Dimensions
	// Title is the bounding box the secondary text must avoid
	Title layout.Rect
	// Glyph is the numeral's text style at BaseSize
	Glyph program.AnnotateText
	// Text is the secondary text to place
	Text   program.AnnotateText
	Logger *slog.Logger
}

// Result is the chosen placement. Offset is relative to the canvas center.
type Result struct {
	Candidate Candidate     `json:"candidate"`
	Offset    program.Point `json:"offset"`
	Rotation  float64       `json:"rotation"`
	Box       layout.Rect   `json:"box"`
	// Accepted is false when every attempt was rejected and the last
	// candidate was kept anyway
	Accepted bool `json:"accepted"`
	Attempts int  `json:"attempts"`
}

type occurrence struct {
	line  int
	index int
	char  rune
}

// Solve searches randomly for a candidate whose box lies inside the canvas
// and clear of the title. It never fails: measurement errors fall back to
// table estimates, and when the attempt budget runs out the last candidate
// is returned with Accepted set to false.
func Solve(ctx context.Context, in Input, m Measurer, rng *rand.Rand) Result {
	logger := in.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scale := in.Scale
	if scale <= 0 {
		scale = 1
	}

	var occs []occurrence
	for li, line := range in.Lines {
		for i, r := range []rune(line) {
			if _, ok := Placements[r]; ok {
				occs = append(occs, occurrence{line: li, index: i, char: r})
			}
		}
	}
	if len(occs) == 0 {
		return Result{}
	}

	textW, textH := measureText(ctx, in.Text, m, logger)
	canvas := layout.Canvas(in.Canvas)
	center := canvas.Center()

	var res Result
	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		occ := occs[rng.Intn(len(occs))]
		cands := Placements[occ.char]
		cand := cands[rng.Intn(len(cands))]

		lineY := 0.0
		if len(in.Lines) == 2 {
			lineY = LineSpacing / 2 * scale
			if occ.line == 0 {
				lineY = -lineY
			}
		}

		runes := []rune(in.Lines[occ.line])
		left := substringWidth(ctx, string(runes[:occ.index]), in.Glyph, scale, m, logger)
		right := substringWidth(ctx, string(runes[occ.index+1:]), in.Glyph, scale, m, logger)

		offset := program.Point{
			X: (left-right)/2 + cand.Offset.X*scale,
			Y: lineY + cand.Offset.Y*scale,
		}
		box := rotatedBox(program.Point{X: center.X + offset.X, Y: center.Y + offset.Y}, textW, textH, cand.Rotation)

		res = Result{Candidate: cand, Offset: offset, Rotation: cand.Rotation, Box: box, Attempts: attempt}
		if box.Inside(canvas) && !box.Intersects(in.Title) {
			res.Accepted = true
			return res
		}
	}

	logger.Warn("no clear placement found, keeping last candidate",
		"candidate", res.Candidate.Name, "attempts", res.Attempts)
	return res
}

// rotatedBox bounds text of size w x h rotated about center. Quarter turns
// swap the sides; other angles grow the box by half the side difference.
func rotatedBox(center program.Point, w, h, rotation float64) layout.Rect {
	r := math.Mod(math.Abs(rotation), 180)
	switch r {
	case 0:
		return layout.RectFromCenter(center, w, h)
	case 90:
		return layout.RectFromCenter(center, h, w)
	default:
		margin := math.Abs(w-h) / 2
		return layout.RectFromCenter(center, w, h).Expand(margin, margin)
	}
}

func measureText(ctx context.Context, op program.AnnotateText, m Measurer, logger *slog.Logger) (float64, float64) {
	tm, err := m.Measure(ctx, []program.AnnotateText{op}, metrics.Stacked)
	if err == nil && tm.Width > 0 {
		return tm.Width, tm.Height
	}
	logger.Debug("estimating secondary text size", "text", op.Text, "error", err)
	return float64(len([]rune(op.Text))) * op.Size * 0.6, op.Size
}

func substringWidth(ctx context.Context, s string, glyph program.AnnotateText, scale float64, m Measurer, logger *slog.Logger) float64 {
	if s == "" {
		return 0
	}
	glyph.Text = s
	glyph.Size *= scale
	tm, err := m.Measure(ctx, []program.AnnotateText{glyph}, metrics.Concatenated)
	if err == nil {
		return tm.Width
	}
	logger.Debug("estimating numeral width", "text", s, "error", err)
	return EstimateWidth(s) * scale
}
