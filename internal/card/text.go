package card

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/thereceipt/titlecard-engine/pkg/cardformat"
)

var titleCaser = cases.Title(language.English)

// applyCase transforms text per the variant's font case
func applyCase(text string, fc FontCase) string {
	switch fc {
	case CaseBlank:
		return ""
	case CaseLower:
		return strings.ToLower(text)
	case CaseTitle:
		return titleCaser.String(text)
	case CaseUpper:
		return strings.ToUpper(text)
	default:
		return text
	}
}

// substitute replaces characters the variant's font cannot draw
func substitute(text string, replacements map[string]string) string {
	if len(replacements) == 0 {
		return text
	}
	var b strings.Builder
	for _, r := range text {
		if rep, ok := replacements[string(r)]; ok {
			b.WriteString(rep)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// prepareTitle cases, substitutes and line-breaks the title
func prepareTitle(meta Metadata, title string) string {
	text := substitute(applyCase(title, meta.FontCase), meta.FontReplacements)
	return strings.Join(splitTitle(text, meta.TitleSplit), "\n")
}

// splitTitle breaks text into at most split.MaxLineCount lines of roughly
// split.MaxLineWidth characters
func splitTitle(text string, split TitleSplit) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	length := utf8.RuneCountInString(strings.Join(words, " "))
	fits := length <= split.MaxLineWidth
	if fits && (split.Wrap != WrapForcedEven || len(words) < 2) {
		return []string{strings.Join(words, " ")}
	}

	var lines []string
	switch split.Wrap {
	case WrapBottom:
		lines = greedyFromEnd(words, split.MaxLineWidth)
	case WrapEven, WrapForcedEven:
		n := len(greedy(words, split.MaxLineWidth))
		if split.Wrap == WrapForcedEven && n < 2 {
			n = 2
		}
		lines = balance(words, n)
	default:
		lines = greedy(words, split.MaxLineWidth)
	}

	return limitLines(lines, split.MaxLineCount, split.Wrap == WrapBottom)
}

func greedy(words []string, width int) []string {
	var lines []string
	cur := ""
	for _, w := range words {
		switch {
		case cur == "":
			cur = w
		case utf8.RuneCountInString(cur)+1+utf8.RuneCountInString(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, cur)
			cur = w
		}
	}
	return append(lines, cur)
}

func greedyFromEnd(words []string, width int) []string {
	rev := make([]string, len(words))
	for i, w := range words {
		rev[len(words)-1-i] = w
	}
	lines := greedy(rev, width)

	out := make([]string, len(lines))
	for i, line := range lines {
		parts := strings.Fields(line)
		for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
			parts[l], parts[r] = parts[r], parts[l]
		}
		out[len(lines)-1-i] = strings.Join(parts, " ")
	}
	return out
}

// balance splits words into n lines of similar length
func balance(words []string, n int) []string {
	if n <= 1 || len(words) <= 1 {
		return []string{strings.Join(words, " ")}
	}
	if n > len(words) {
		n = len(words)
	}

	remaining := utf8.RuneCountInString(strings.Join(words, " "))
	lines := make([]string, 0, n)
	i := 0
	for line := 0; line < n-1; line++ {
		target := float64(remaining) / float64(n-line)
		cur := words[i]
		i++
		for i < len(words)-(n-line-1) {
			next := cur + " " + words[i]
			if absDiff(float64(utf8.RuneCountInString(next)), target) > absDiff(float64(utf8.RuneCountInString(cur)), target) {
				break
			}
			cur = next
			i++
		}
		lines = append(lines, cur)
		remaining -= utf8.RuneCountInString(cur) + 1
	}
	return append(lines, strings.Join(words[i:], " "))
}

// limitLines merges overflow into the last line, or the first when the
// title is bottom-heavy
func limitLines(lines []string, max int, fromEnd bool) []string {
	if len(lines) <= max {
		return lines
	}
	if fromEnd {
		head := strings.Join(lines[:len(lines)-max+1], " ")
		return append([]string{head}, lines[len(lines)-max+1:]...)
	}
	tail := strings.Join(lines[max-1:], " ")
	return append(lines[:max-1:max-1], tail)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

// indexParts returns the visible season and episode text
func indexParts(spec cardformat.CardSpec) []string {
	var parts []string
	if !spec.HideSeasonText && spec.SeasonText != "" {
		parts = append(parts, spec.SeasonText)
	}
	if !spec.HideEpisodeText && spec.EpisodeText != "" {
		parts = append(parts, spec.EpisodeText)
	}
	return parts
}

// indexText joins season and episode text with separator
func indexText(spec cardformat.CardSpec, separator string) string {
	return strings.Join(indexParts(spec), " "+separator+" ")
}

var digits = regexp.MustCompile(`\d+`)

// parseNumber returns the first integer in text, or 0
func parseNumber(text string) int {
	m := digits.FindString(text)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// episodeNumber prefers the explicit number over one parsed from the text
func episodeNumber(spec cardformat.CardSpec) int {
	if spec.EpisodeNumber > 0 {
		return spec.EpisodeNumber
	}
	return parseNumber(spec.EpisodeText)
}

var (
	ones = []string{"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine",
		"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen"}
	tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}
)

// spellNumber writes n in English words. Numbers of a thousand or more are
// returned as digits.
func spellNumber(n int) string {
	switch {
	case n < 0 || n >= 1000:
		return strconv.Itoa(n)
	case n < 20:
		return ones[n]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + "-" + ones[n%10]
	default:
		if n%100 == 0 {
			return ones[n/100] + " hundred"
		}
		return ones[n/100] + " hundred " + spellNumber(n%100)
	}
}
