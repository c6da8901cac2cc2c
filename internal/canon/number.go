package canon

import (
	"bytes"
	"strconv"

	"github.com/reoring/driftcore/internal/engine"
)

// AppendNumber appends the canonical form of n.
//
// Integral values are written as plain decimal integers computed from the
// exact lexeme digits, so 1, 1.0, 10e-1 and 0.1e1 all become "1" and large
// integers keep every digit. Non-integral values are written as the shortest
// decimal that round-trips through float64 (see AppendFloat).
//
// A fractional lexeme can round to a whole float64, always so once
// |v| >= 2^53. That value is written as plain integer digits, which
// re-parse through the integral branch above to the same text.
func AppendNumber(dst []byte, n engine.Number) []byte {
	d := n.Decimal()
	if d.Digits == "" {
		return append(dst, '0')
	}
	if d.Exp >= 0 {
		if d.Neg {
			dst = append(dst, '-')
		}
		dst = append(dst, d.Digits...)
		for i := 0; i < d.Exp; i++ {
			dst = append(dst, '0')
		}
		return dst
	}
	return AppendFloat(dst, n.Float64())
}

// AppendFloat appends the shortest round-trip decimal form of f. f must be
// finite. Exponent notation is used only for |f| < 1e-6; everything else,
// including magnitudes of 1e21 and above, is written in fixed notation with
// trailing zeros padding the shortest digits.
func AppendFloat(dst []byte, f float64) []byte {
	if f == 0 {
		return append(dst, '0')
	}
	if f < 0 {
		dst = append(dst, '-')
		f = -f
	}

	// 'e' with precision -1 yields the shortest digits that round-trip,
	// formatted as d.ddde±XX regardless of platform or locale.
	var scratch [32]byte
	sci := strconv.AppendFloat(scratch[:0], f, 'e', -1, 64)
	ePos := bytes.IndexByte(sci, 'e')
	mant, expText := sci[:ePos], sci[ePos+1:]
	exp, _ := strconv.Atoi(string(expText))

	digits := make([]byte, 0, len(mant))
	for _, c := range mant {
		if c != '.' {
			digits = append(digits, c)
		}
	}

	if f < 1e-6 {
		dst = append(dst, digits[0])
		if len(digits) > 1 {
			dst = append(dst, '.')
			dst = append(dst, digits[1:]...)
		}
		dst = append(dst, 'e')
		if exp >= 0 {
			dst = append(dst, '+')
		}
		return strconv.AppendInt(dst, int64(exp), 10)
	}

	// Position of the decimal point relative to the first digit.
	point := exp + 1
	switch {
	case point <= 0:
		dst = append(dst, '0', '.')
		for i := 0; i < -point; i++ {
			dst = append(dst, '0')
		}
		dst = append(dst, digits...)
	case point >= len(digits):
		dst = append(dst, digits...)
		for i := len(digits); i < point; i++ {
			dst = append(dst, '0')
		}
	default:
		dst = append(dst, digits[:point]...)
		dst = append(dst, '.')
		dst = append(dst, digits[point:]...)
	}
	return dst
}
