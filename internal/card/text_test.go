package card

import (
	"slices"
	"testing"
)

func TestSplitTitle(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		split TitleSplit
		want  []string
	}{
		{"fits", "Pilot", TitleSplit{10, 2, WrapTop}, []string{"Pilot"}},
		{"top heavy", "one two three four", TitleSplit{9, 3, WrapTop}, []string{"one two", "three", "four"}},
		{"bottom heavy", "one two three four", TitleSplit{10, 3, WrapBottom}, []string{"one two", "three four"}},
		{"bottom heavy short first", "a bb cc dd", TitleSplit{5, 3, WrapBottom}, []string{"a bb", "cc dd"}},
		{"even", "The Long Dark Night", TitleSplit{12, 3, WrapEven}, []string{"The Long", "Dark Night"}},
		{"forced even", "Two Words", TitleSplit{30, 2, WrapForcedEven}, []string{"Two", "Words"}},
		{"forced even single word", "Pilot", TitleSplit{30, 2, WrapForcedEven}, []string{"Pilot"}},
		{"line limit", "aa bb cc dd", TitleSplit{2, 2, WrapTop}, []string{"aa", "bb cc dd"}},
		{"line limit bottom", "aa bb cc dd", TitleSplit{2, 2, WrapBottom}, []string{"aa bb cc", "dd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitTitle(tt.text, tt.split); !slices.Equal(got, tt.want) {
				t.Errorf("splitTitle(%q) = %q, expected %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestApplyCase(t *testing.T) {
	tests := []struct {
		fc   FontCase
		want string
	}{
		{CaseBlank, ""},
		{CaseLower, "the end of it"},
		{CaseSource, "The end OF it"},
		{CaseTitle, "The End Of It"},
		{CaseUpper, "THE END OF IT"},
	}
	for _, tt := range tests {
		if got := applyCase("The end OF it", tt.fc); got != tt.want {
			t.Errorf("applyCase(%s) = %q, expected %q", tt.fc, got, tt.want)
		}
	}
}

func TestSubstitute(t *testing.T) {
	got := substitute("A [B] (C)…", NewStandard().Metadata().FontReplacements)
	if got != "A (B) [C]..." {
		t.Errorf("Unexpected substitution %q", got)
	}
}

func TestSpellNumber(t *testing.T) {
	tests := map[int]string{
		0:    "zero",
		7:    "seven",
		13:   "thirteen",
		40:   "forty",
		42:   "forty-two",
		100:  "one hundred",
		215:  "two hundred fifteen",
		1200: "1200",
	}
	for n, want := range tests {
		if got := spellNumber(n); got != want {
			t.Errorf("spellNumber(%d) = %q, expected %q", n, got, want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := map[string]int{
		"Episode 12":  12,
		"S01E05":      1,
		"Chapter Two": 0,
		"":            0,
	}
	for in, want := range tests {
		if got := parseNumber(in); got != want {
			t.Errorf("parseNumber(%q) = %d, expected %d", in, got, want)
		}
	}
}
