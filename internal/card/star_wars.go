package card

import (
	"context"
	"strings"

	"github.com/thereceipt/titlecard-engine/internal/metrics"
	"github.com/thereceipt/titlecard-engine/internal/program"
	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

// StarWarsExtras are the styling knobs of the star wars card
type StarWarsExtras struct {
	EpisodeTextColor string `json:"episode_text_color"`
	EpisodePrefix    string `json:"episode_prefix"`
}

const starWarsLeft = 320

// StarWars sets a gold title in the lower left with the episode number
// spelled out above it
type StarWars struct {
	base
}

// NewStarWars creates the star wars variant
func NewStarWars() *StarWars {
	return &StarWars{base{Metadata{
		Identifier:        "star_wars",
		Aliases:           []string{"star wars"},
		ArchiveName:       "Star Wars Style",
		TitleSplit:        TitleSplit{MaxLineWidth: 16, MaxLineCount: 3, Wrap: WrapBottom},
		FontCase:          CaseUpper,
		DefaultFontFile:   "fonts/Monstice-Base.ttf",
		DefaultFontColor:  "#DAC960",
		EpisodeTextFormat: "EPISODE {episode_number_cardinal}",
		FontExtras: map[string]any{
			"episode_text_color": "#AB8630",
		},
		UsesSourceImage: true,
	}}}
}

// IsCustomSeasonTitles is always false since star wars cards show no
// season text
func (s *StarWars) IsCustomSeasonTitles(customEpisodeMap bool, episodeTextFormat string) bool {
	return false
}

func (s *StarWars) extras(spec cardformat.CardSpec) (StarWarsExtras, error) {
	e := StarWarsExtras{
		EpisodeTextColor: "#AB8630",
		EpisodePrefix:    "EPISODE",
	}
	err := decodeExtras(spec.Extras, &e)
	return e, err
}

func (s *StarWars) Build(ctx context.Context, env *Env, spec cardformat.CardSpec, font cardformat.FontDescriptor) (*program.Program, error) {
	extras, err := s.extras(spec)
	if err != nil {
		return nil, err
	}

	p, err := newProgram(spec)
	if err != nil {
		return nil, err
	}

	p.Add(program.CompositeImage{
		Role:    program.RoleDecoration,
		Path:    "gradient:none-black",
		Size:    program.Dimensions{Width: Width, Height: Height * 0.6},
		Gravity: program.GravitySouth,
		Opacity: 0.9,
	})

	title := annotate(s.meta, font, textStyle{Size: 124, Kerning: 0.5, Interline: 20}, program.RoleTitle, prepareTitle(s.meta, spec.Title))
	title.Gravity = program.GravitySouthWest
	title.Offset = program.Point{X: starWarsLeft, Y: 350 - float64(font.VerticalShift)}
	p.Add(title)

	if spec.HideEpisodeText {
		return p, nil
	}

	number := strings.ToUpper(spec.EpisodeText)
	if n := episodeNumber(spec); n > 0 {
		number = extras.EpisodePrefix + " " + strings.ToUpper(spellNumber(n))
	}
	if number == "" {
		return p, nil
	}

	m, err := measure(ctx, env, metrics.Stacked, title)
	if err != nil {
		return nil, err
	}
	p.Add(program.AnnotateText{
		Role:    program.RoleEpisode,
		Text:    number,
		Font:    "fonts/HelveticaNeue.ttc",
		Size:    53,
		Color:   extras.EpisodeTextColor,
		Kerning: 10,
		Gravity: program.GravitySouthWest,
		Offset:  program.Point{X: starWarsLeft + 5, Y: Height - textBox(title, m).Top + 30},
	})
	return p, nil
}
