package card

import (
	"context"
	"strings"

	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// OlivierExtras are the styling knobs of the olivier card
type OlivierExtras struct {
	EpisodePrefix    string `json:"episode_prefix"`
	EpisodeTextColor string `json:"episode_text_color"`
	StrokeColor      string `json:"stroke_color"`
}

const olivierLeft = 325

// Olivier left-aligns the title with a spelled-out episode number above it
type Olivier struct {
	base
}

// NewOlivier creates the olivier variant
func NewOlivier() *Olivier {
	return &Olivier{base{Metadata{
		Identifier:        "olivier",
		ArchiveName:       "Olivier Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 16, MaxLineCount: 5, Wrap: WrapBottom},
		FontCase:          CaseSource,
		DefaultFontFile:   "fonts/Montserrat-Bold.ttf",
		DefaultFontColor:  "white",
		EpisodeTextFormat: "{episode_number_cardinal}",
		FontExtras: map[string]any{
			"episode_text_color": "white",
			"stroke_color":       "#121212",
		},
		UsesSourceImage: true,
		UsesMask:        true,
	}}}
}

func (o *Olivier) extras(spec cardformat.CardSpec) (OlivierExtras, error) {
	e := OlivierExtras{
		EpisodePrefix:    "EPISODE",
		EpisodeTextColor: "white",
		StrokeColor:      "#121212",
	}
	err := decodeExtras(spec.Extras, &e)
	return e, err
}

func (o *Olivier) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := o.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	title := annotate(o.meta, font, textStyle{Size: 161.4, Kerning: -7.4, Interline: -20, StrokeWidth: 8}, program.RoleTitle, prepareTitle(o.meta, spec.Title))
	title.StrokeColor = extras.StrokeColor
	title.Gravity = program.GravityWest
	title.Offset = program.Point{X: olivierLeft, Y: float64(font.VerticalShift)}
	p.Add(title)

	if spec.HideEpisodeText || spec.EpisodeText == "" {
		addMask(p, env, o.meta, spec)
		return p, nil
	}

	number := strings.ToUpper(spec.EpisodeText)
	if n := episodeNumber(spec); n > 0 {
		number = strings.ToUpper(spellNumber(n))
	}

	prefix := program.AnnotateText{
		Role:        program.RoleEpisode,
		Text:        extras.EpisodePrefix,
		Font:        "fonts/Montserrat-Medium.ttf",
		Size:        53,
		Color:       extras.EpisodeTextColor,
		Kerning:     19,
		StrokeColor: extras.StrokeColor,
		StrokeWidth: 5,
		Gravity:     program.GravityNorthWest,
	}
	episode := program.AnnotateText{
		Role:        program.RoleEpisode,
		Text:        number,
		Font:        title.Font,
		Size:        110,
		Color:       extras.EpisodeTextColor,
		Kerning:     -2,
		StrokeColor: extras.StrokeColor,
		StrokeWidth: 6,
		Gravity:     program.GravityNorthWest,
	}

	m, err := measureEach(ctx, env, title, prefix, episode)
	if err != nil {
		return nil, err
	}
	top := textBox(title, m[0]).Top
	prefixM, episodeM := m[1], m[2]

	baseline := top - 30 - episodeM.Height
	prefix.Offset = program.Point{X: olivierLeft, Y: baseline + episodeM.Height - prefixM.Height - 8}
	episode.Offset = program.Point{X: olivierLeft + prefixM.Width + 30, Y: baseline}
	p.Add(prefix, episode)

	addMask(p, env, o.meta, spec)
	return p, nil
}
