package card

import (
	"context"
	"math"
	"strings"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/layout"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// DividerExtras are the styling knobs of the divider card
type DividerExtras struct {
	DividerColor string `json:"divider_color"`
	StrokeColor  string `json:"stroke_color"`
	TextPosition string `json:"text_position"`
	TitleAlign   string `json:"title_text_position"`
}

var dividerPositions = map[string]program.Gravity{
	"upper left":  program.GravityNorthWest,
	"upper right": program.GravityNorthEast,
	"left":        program.GravityWest,
	"center":      program.GravityCenter,
	"right":       program.GravityEast,
	"lower left":  program.GravitySouthWest,
	"lower right": program.GravitySouthEast,
}

const (
	dividerMargin = 120
	dividerGap    = 40
	dividerWidth  = 10
)

// Divider places the title and index text side by side, separated by a
// vertical line as tall as the taller of the two
type Divider struct {
	base
}

// NewDivider creates the divider variant
func NewDivider() *Divider {
	return &Divider{base{Metadata{
		Identifier:        "divider",
		ArchiveName:       "Divider Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 21, MaxLineCount: 2, Wrap: WrapBottom},
		FontCase:          CaseSource,
		DefaultFontFile:   "fonts/MyriadRegular.ttf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "Episode {episode_number}",
		FontExtras: map[string]any{
			"divider_color": "white",
			"stroke_color":  "black",
		},
		UsesSourceImage: true,
		UsesMask:        true,
	}}}
}

func (d *Divider) extras(spec cardformat.CardSpec) (DividerExtras, error) {
	e := DividerExtras{
		DividerColor: "white",
		StrokeColor:  "black",
		TextPosition: "lower right",
		TitleAlign:   "left",
	}
	if err := decodeExtras(spec.Extras, &e); err != nil {
		return e, err
	}
	if _, ok := dividerPositions[e.TextPosition]; !ok {
		return e, failure.New(failure.KindValidation, "extras text_position: unknown position %q", e.TextPosition)
	}
	if e.TitleAlign != "left" && e.TitleAlign != "right" {
		return e, failure.New(failure.KindValidation, "extras title_text_position: must be left or right, got %q", e.TitleAlign)
	}
	return e, nil
}

func (d *Divider) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := d.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	style := textStyle{Size: 115, Interline: -10, StrokeWidth: 8}
	title := annotate(d.meta, font, style, program.RoleTitle, prepareTitle(d.meta, spec.Title))
	title.StrokeColor = extras.StrokeColor
	index := annotate(d.meta, font, style, program.RoleIndex, strings.Join(indexParts(spec), "\n"))
	index.StrokeColor = extras.StrokeColor

	// Divider geometry is known only after both texts are measured.
	p.Defer("divider")

	texts := []program.AnnotateText{title}
	if index.Text != "" {
		texts = append(texts, index)
	}
	m, err := measureEach(ctx, env, texts...)
	if err != nil {
		return nil, err
	}
	titleM := m[0]
	var indexM metrics.TextMetrics
	if len(m) > 1 {
		indexM = m[1]
	}

	left, right := titleM, indexM
	if extras.TitleAlign == "right" {
		left, right = indexM, titleM
	}
	groupH := math.Max(titleM.Height, indexM.Height)
	groupW := left.Width + right.Width
	if index.Text != "" {
		groupW += 2*dividerGap + dividerWidth
	}

	group := layout.Anchor(dividerPositions[extras.TextPosition], program.Point{X: dividerMargin, Y: dividerMargin},
		program.Dimensions{Width: groupW, Height: groupH}, Canvas)
	cy := group.Center().Y

	leftOp, rightOp := &title, &index
	if extras.TitleAlign == "right" {
		leftOp, rightOp = &index, &title
	}
	leftOp.Gravity = program.GravityCenter
	leftOp.Offset = centerOffset(program.Point{X: group.Left + left.Width/2, Y: cy})
	rightOp.Gravity = program.GravityCenter
	rightOp.Offset = centerOffset(program.Point{X: group.Right - right.Width/2, Y: cy})
	title.Offset.Y += float64(font.VerticalShift)

	var divider []program.Op
	if index.Text != "" {
		x := group.Left + left.Width + dividerGap + dividerWidth/2
		divider = append(divider, program.DrawShape{
			Shape:       program.ShapeLine,
			Points:      []program.Point{{X: x, Y: group.Top}, {X: x, Y: group.Bottom}},
			Stroke:      extras.DividerColor,
			StrokeWidth: dividerWidth,
		})
	}
	if err := p.Fill("divider", divider...); err != nil {
		return nil, failure.Wrap(failure.KindRender, err)
	}

	p.Add(title)
	if index.Text != "" {
		p.Add(index)
	}
	addMask(p, env, d.meta, spec)
	return p, nil
}
