package fidji

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// VALUE COERCION
// =============================================================================

// ParseDate parses an ISO calendar date (surrounding whitespace ignored).
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, strings.TrimSpace(s))
}

// ParseReal parses a decimal number.
func ParseReal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// ParseTruncatedInt parses a decimal number and truncates it toward zero,
// so "3.0" and "3.9" both yield 3.
func ParseTruncatedInt(s string) (int, error) {
	f, err := ParseReal(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// FormatDate renders a date in DateLayout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// FormatReal renders a real number the way the format's producers do.
// Magnitudes in [1e-3, 1e7) use plain notation with at least one decimal
// ("3.0", "2.5"); others use scientific notation ("1.0E7", "1.5E-4").
func FormatReal(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}

	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-3 && abs < 1e7) {
		return withFraction(strconv.FormatFloat(f, 'f', -1, 64))
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	n, _ := strconv.Atoi(exp)
	return withFraction(mantissa) + "E" + strconv.Itoa(n)
}

func withFraction(s string) string {
	if !strings.Contains(s, ".") {
		return s + ".0"
	}
	return s
}

// FormatInt renders an integer.
func FormatInt(i int) string {
	return strconv.Itoa(i)
}
