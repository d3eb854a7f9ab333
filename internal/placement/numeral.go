// Package placement converts numbers to roman numerals and positions
// secondary text around a large numeral without covering the title.
package placement

import "strings"

const (
	// MaxNumeral is the largest number written without clamping
	MaxNumeral = 3999
	// SplitThreshold is the longest numeral kept on a single line
	SplitThreshold = 5
)

var romanPlaces = [4][10]string{
	{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX"},
	{"", "X", "XX", "XXX", "XL", "L", "LX", "LXX", "LXXX", "XC"},
	{"", "C", "CC", "CCC", "CD", "D", "DC", "DCC", "DCCC", "CM"},
	{"", "M", "MM", "MMM"},
}

// ToRoman writes n in subtractive notation. Values outside [1, MaxNumeral]
// are clamped into range and reported.
func ToRoman(n int) (string, bool) {
	clamped := false
	if n > MaxNumeral {
		n, clamped = MaxNumeral, true
	}
	if n < 1 {
		n, clamped = 1, true
	}

	var b strings.Builder
	for place := 3; place >= 0; place-- {
		div := 1
		for i := 0; i < place; i++ {
			div *= 10
		}
		b.WriteString(romanPlaces[place][(n/div)%10])
	}
	return b.String(), clamped
}

// SplitNumeral breaks numerals longer than SplitThreshold into two lines at
// the midpoint. The first line gets the extra character.
func SplitNumeral(numeral string) []string {
	runes := []rune(numeral)
	if len(runes) <= SplitThreshold {
		return []string{numeral}
	}
	mid := (len(runes) + 1) / 2
	return []string{string(runes[:mid]), string(runes[mid:])}
}
