package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)

// CleanValue trims a raw cell and maps the NULL token to an empty string.
func CleanValue(input string) string {
	s := strings.TrimSpace(input)
	if strings.EqualFold(s, "null") {
		return ""
	}
	return s
}

// ParseFrenchNumber reads "1 234,56" style numbers. Whitespace is dropped,
// the first comma becomes the decimal point and the longest numeric prefix
// is used. Anything unparseable or non-finite yields 0.
func ParseFrenchNumber(input string) float64 {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, input)
	if compact == "" {
		return 0
	}
	compact = strings.Replace(compact, ",", ".", 1)

	token := numberPrefix.FindString(compact)
	if token == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0
	}
	return Finite(parsed)
}

// ParseCatalogueNumber cleans a catalogue cell before parsing it.
func ParseCatalogueNumber(input string) float64 {
	cleaned := CleanValue(input)
	if cleaned == "" {
		return 0
	}
	return ParseFrenchNumber(cleaned)
}

func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// NonNegative clamps negative and non-finite values to 0.
func NonNegative(v float64) float64 {
	v = Finite(v)
	if v < 0 {
		return 0
	}
	return v
}

func Clamp(v, lo, hi float64) float64 {
	v = Finite(v)
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
