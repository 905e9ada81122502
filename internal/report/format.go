package report

import (
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Label capitalizes a group label for display: "mobile" -> "Mobile".
func Label(group string) string {
	r, size := utf8.DecodeRuneInString(group)
	if r == utf8.RuneError {
		return group
	}
	return string(unicode.ToUpper(r)) + group[size:]
}

// Percent formats a rate as a percentage with two decimals.
func Percent(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// Points formats a rate difference in percentage points.
func Points(diff float64) string {
	return fmt.Sprintf("%.2fpp", diff*100)
}

// Money formats whole dollars with thousands separators: "-$1,234".
func Money(v float64) string {
	rounded := int64(math.Round(math.Abs(v)))
	sign := ""
	if v < 0 && rounded != 0 {
		sign = "-"
	}
	return sign + "$" + humanize.Comma(rounded)
}

// Count formats an integer with thousands separators.
func Count(n int) string {
	return humanize.Comma(int64(n))
}

// Mean formats an auxiliary column mean, "-" when the column is absent.
func Mean(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.2f", v)
}
