package engine

import (
	"math"
	"strconv"
	"strings"
)

// Number holds a JSON number exactly as it appeared in the source text.
// The lexeme has already been validated against the JSON number grammar and
// its magnitude fits in a float64.
type Number struct {
	lit string
}

// NumberFromLiteral wraps a lexeme that the caller has already validated.
func NumberFromLiteral(lit string) Number { return Number{lit: lit} }

// NumberFromInt64 returns the number for i.
func NumberFromInt64(i int64) Number { return Number{lit: strconv.FormatInt(i, 10)} }

// Literal returns the source lexeme.
func (n Number) Literal() string { return n.lit }

// IsInteger reports whether the lexeme has neither a fraction nor an exponent.
func (n Number) IsInteger() bool {
	return n.lit != "" && !strings.ContainsAny(n.lit, ".eE")
}

// IsIntegral reports whether the value is a whole number, whatever the lexeme
// looks like: 1, 1.0, 1e2 and 0.5e1 are integral, 1.5 is not.
func (n Number) IsIntegral() bool {
	d := n.Decimal()
	return d.Exp >= 0
}

// Float64 returns the nearest float64. Values beyond ±2^53 may lose precision.
func (n Number) Float64() float64 {
	f, _ := strconv.ParseFloat(n.lit, 64)
	return f
}

// Int64 returns the value as an int64 when it is integral and in range.
func (n Number) Int64() (int64, bool) {
	d := n.Decimal()
	if d.Exp < 0 {
		return 0, false
	}
	if len(d.Digits)+d.Exp > 19 {
		return 0, false
	}
	s := d.Digits + strings.Repeat("0", d.Exp)
	if d.Neg {
		s = "-" + s
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Decimal is an exact decomposition of a number: value = ±Digits × 10^Exp.
// Digits has no leading or trailing zeros; zero is represented by empty Digits.
type Decimal struct {
	Neg    bool
	Digits string
	Exp    int
}

// exponent values are clamped to this bound; anything larger is far outside
// float64 range and has been rejected (or collapses to zero) before use.
const maxExpMagnitude = 1 << 30

// Decimal decomposes the lexeme without any floating point arithmetic.
func (n Number) Decimal() Decimal {
	s := n.lit
	var d Decimal
	if strings.HasPrefix(s, "-") {
		d.Neg = true
		s = s[1:]
	}
	mant, expPart := s, ""
	if i := strings.IndexAny(s, "eE"); i >= 0 {
		mant, expPart = s[:i], s[i+1:]
	}
	intPart, fracPart := mant, ""
	if i := strings.IndexByte(mant, '.'); i >= 0 {
		intPart, fracPart = mant[:i], mant[i+1:]
	}
	digits := intPart + fracPart
	exp := parseClampedExp(expPart) - len(fracPart)

	digits = strings.TrimLeft(digits, "0")
	trimmed := strings.TrimRight(digits, "0")
	exp += len(digits) - len(trimmed)
	if trimmed == "" {
		return Decimal{}
	}
	d.Digits = trimmed
	d.Exp = exp
	return d
}

func parseClampedExp(s string) int {
	if s == "" {
		return 0
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	e := 0
	for i := 0; i < len(s); i++ {
		e = e*10 + int(s[i]-'0')
		if e > maxExpMagnitude {
			e = maxExpMagnitude
			break
		}
	}
	if neg {
		return -e
	}
	return e
}

// finite reports whether lit parses to a finite float64. Underflow to zero is
// accepted; overflow is not.
func finite(lit string) bool {
	f, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return !math.IsInf(f, 0)
		}
		return false
	}
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
