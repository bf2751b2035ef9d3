package winparse

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseNumber converts a loosely formatted amount ("14 500", "19.000", "1,234.56", "300р")
// into a decimal. Separator ambiguity is resolved by a fixed decision table:
//
//   - more than one '.': dots are thousands separators
//   - one '.' and any ',': commas are thousands separators, the dot is decimal
//   - more than one ',': commas are thousands separators
//   - one ',': decimal when at most two digits follow it, thousands otherwise
//   - one '.': thousands when exactly three digits follow it ("19.000"),
//     decimal when at most two follow ("19.00"), thousands otherwise
//
// Anything that is not a digit or the remaining decimal point is dropped.
// Unparseable input yields zero.
func ParseNumber(raw string) decimal.Decimal {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)

	dots := strings.Count(s, ".")
	commas := strings.Count(s, ",")

	switch {
	case dots > 1:
		s = strings.ReplaceAll(s, ".", "")
	case dots == 1 && commas >= 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas > 1:
		s = strings.ReplaceAll(s, ",", "")
	case commas == 1:
		if digitsAfter(s, ",") <= 2 {
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.Replace(s, ",", "", 1)
		}
	case dots == 1:
		segments := strings.Split(s, ".")
		after := digitsAfter(s, ".")
		switch {
		case after == 3 && len(segments) == 2:
			s = strings.Replace(s, ".", "", 1)
		case after <= 2:
		default:
			s = strings.Replace(s, ".", "", 1)
		}
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimRight(b.String(), ".")
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return decimal.Zero
	}
	if cleaned[0] == '.' {
		cleaned = "0" + cleaned
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// digitsAfter counts the digits in the segment that follows the last occurrence of sep.
func digitsAfter(s, sep string) int {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return 0
	}
	n := 0
	for _, r := range s[idx+len(sep):] {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
