package card

import (
	"context"
	"strings"

	"github.com/thereceipt/titlecard-engine/internal/failure"
	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/placement"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// RomanNumeralExtras are the styling knobs of the roman numeral card
type RomanNumeralExtras struct {
	Background         string  `json:"background"`
	RomanNumeralColor  string  `json:"roman_numeral_color"`
	SeasonTextColor    string  `json:"season_text_color"`
	SeasonTextFontSize float64 `json:"season_text_font_size"`
}

// RomanNumeral draws the title over a large roman numeral of the episode
// number, with the season text tucked somewhere around the numeral
type RomanNumeral struct {
	base
}

// NewRomanNumeral creates the roman numeral variant
func NewRomanNumeral() *RomanNumeral {
	return &RomanNumeral{base{Metadata{
		Identifier:        "roman_numeral",
		Aliases:           []string{"roman"},
		ArchiveName:       "Roman Numeral Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 18, MaxLineCount: 3, Wrap: WrapBottom},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/flanker-griffo.otf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "{episode_number_cardinal}",
		FontExtras: map[string]any{
			"roman_numeral_color":   "#C1C1C1",
			"season_text_color":     "#C1C1C1",
			"season_text_font_size": 1.0,
		},
	}}}
}

func (r *RomanNumeral) extras(spec cardformat.CardSpec) (RomanNumeralExtras, error) {
	e := RomanNumeralExtras{
		Background:         "black",
		RomanNumeralColor:  "#C1C1C1",
		SeasonTextColor:    "#C1C1C1",
		SeasonTextFontSize: 1.0,
	}
	err := decodeExtras(spec.Extras, &e)
	return e, err
}

func (r *RomanNumeral) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := r.extras(spec)
	if err != nil {
		return nil, err
	}

	n := episodeNumber(spec)
	if n == 0 {
		return nil, failure.New(failure.KindValidation, "roman numeral card needs an episode number")
	}
	numeral, clamped := placement.ToRoman(n)
	if clamped {
		env.logger().Warn("episode number clamped for roman numeral", "episode", n, "numeral", numeral)
	}
	lines := placement.SplitNumeral(numeral)
	scale := placement.RenderScale(lines, Width)

	p := blankProgram(spec, extras.Background)

	glyph := program.AnnotateText{
		Role:    program.RoleDecoration,
		Font:    r.meta.DefaultFontFile,
		Size:    placement.BaseSize,
		Color:   extras.RomanNumeralColor,
		Gravity: program.GravityCenter,
	}
	for i, line := range lines {
		op := glyph
		op.Text = line
		op.Size = placement.BaseSize * scale
		if len(lines) == 2 {
			op.Offset.Y = placement.LineSpacing / 2 * scale
			if i == 0 {
				op.Offset.Y = -op.Offset.Y
			}
		}
		p.Add(op)
	}

	title := annotate(r.meta, font, textStyle{Size: 150, Kerning: 5, Interline: 10}, program.RoleTitle, prepareTitle(r.meta, spec.Title))
	title.Gravity = program.GravityCenter
	title.Offset = program.Point{Y: float64(font.VerticalShift)}
	titleMetrics, err := measure(ctx, env, metrics.Stacked, title)
	if err != nil {
		return nil, err
	}
	p.Add(title)

	if spec.HideSeasonText || spec.SeasonText == "" {
		return p, nil
	}

	season := program.AnnotateText{
		Role:    program.RoleSeason,
		Text:    strings.ToUpper(spec.SeasonText),
		Font:    title.Font,
		Size:    80 * extras.SeasonTextFontSize,
		Color:   extras.SeasonTextColor,
		Kerning: 2,
		Gravity: program.GravityCenter,
	}
	res := placement.Solve(ctx, placement.Input{
		Lines:  lines,
		Scale:  scale,
		Canvas: Canvas,
		Title:  textBox(title, titleMetrics).Expand(20, 20),
		Glyph:  glyph,
		Text:   season,
		Logger: env.logger(),
	}, env.Metrics, env.rand())

	season.Offset = res.Offset
	season.Rotation = res.Rotation
	p.Add(season)
	env.logger().Debug("placed season text",
		"candidate", res.Candidate.Name, "attempts", res.Attempts, "accepted", res.Accepted)

	return p, nil
}
