package calc

import (
	"math"
	"strconv"
	"strings"
)

const (
	// MaxDisplayLength is the longest plain rendering shown before switching
	// to exponential notation.
	MaxDisplayLength = 16

	// ErrorMarker is shown in place of a value that cannot be displayed.
	ErrorMarker = "Error"
)

// FormatForDisplay renders v for a display: thousands separators in the
// integer part, at most Precision fractional digits (truncated, not rounded),
// and exponential notation with a Precision-digit mantissa when the plain
// rendering is longer than MaxDisplayLength.
//
//	FormatForDisplay(1234567)  == "1,234,567"
//	FormatForDisplay(0.000123) == "0.000123"
//	FormatForDisplay(1e20)     == "1.00000000e+20"
func FormatForDisplay(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ErrorMarker
	}
	return FormatLiteral(literal(v))
}

// FormatLiteral applies FormatForDisplay's rules to a numeric literal as
// typed, keeping a trailing decimal point or trailing zeros ("5.", "0.50").
func FormatLiteral(s string) string {
	if len(s) > MaxDisplayLength {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(v, 0) {
			return ErrorMarker
		}
		return strconv.FormatFloat(v, 'e', Precision, 64)
	}

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, hasDot := strings.Cut(s, ".")

	out := sign + groupThousands(intPart)
	if hasDot {
		if len(frac) > Precision {
			frac = frac[:Precision]
		}
		out += "." + frac
	}
	return out
}

// groupThousands inserts a comma every three digits from the right.
func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
