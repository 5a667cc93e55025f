package engine

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LabelForField turns a field key into an axis title: "_" and "-" become
// spaces and each word's first letter is upper-cased.
//
//	"engine_size" → "Engine Size"
//	"city-mpg"    → "City Mpg"
func LabelForField(field string) string {
	words := strings.FieldsFunc(field, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// formatTick renders a tick value with the fewest digits that round-trip.
func formatTick(v float64) string {
	if v == 0 {
		return "0" // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
