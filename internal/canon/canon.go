// Package canon renders a parsed JSON value tree in its canonical textual
// form.
//
// The canonical form is a pure function of the value: object members are
// sorted byte-wise by the UTF-8 encoding of their keys, no insignificant
// whitespace is emitted, numbers are rendered in a single normalized form and
// strings are re-escaped with one fixed policy. Non-ASCII text passes through
// as raw UTF-8.
package canon

import (
	"fmt"
	"slices"
	"strings"

	"github.com/reoring/driftcore/internal/engine"
)

// Marshal returns the canonical bytes of v.
func Marshal(v *engine.Value) ([]byte, error) {
	return Append(nil, v)
}

// Append appends the canonical form of v to dst.
func Append(dst []byte, v *engine.Value) ([]byte, error) {
	switch v.Kind {
	case engine.KindNull:
		return append(dst, "null"...), nil
	case engine.KindBool:
		if v.Bool {
			return append(dst, "true"...), nil
		}
		return append(dst, "false"...), nil
	case engine.KindNumber:
		return AppendNumber(dst, v.Num), nil
	case engine.KindString:
		return AppendString(dst, v.Str), nil
	case engine.KindArray:
		dst = append(dst, '[')
		for i := range v.Elems {
			if i > 0 {
				dst = append(dst, ',')
			}
			var err error
			if dst, err = Append(dst, &v.Elems[i]); err != nil {
				return nil, err
			}
		}
		return append(dst, ']'), nil
	case engine.KindObject:
		dst = append(dst, '{')
		for i, m := range SortedMembers(v.Members) {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendString(dst, m.Key)
			dst = append(dst, ':')
			var err error
			if dst, err = Append(dst, &m.Value); err != nil {
				return nil, err
			}
		}
		return append(dst, '}'), nil
	default:
		return nil, fmt.Errorf("canon: unknown value kind %s", v.Kind)
	}
}

// SortedMembers returns pointers to members ordered by the byte-wise
// comparison of their keys. The input slice is not modified.
func SortedMembers(members []engine.Member) []*engine.Member {
	out := make([]*engine.Member, len(members))
	for i := range members {
		out[i] = &members[i]
	}
	slices.SortFunc(out, func(a, b *engine.Member) int {
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

// AppendString appends s as a quoted JSON string. Quote and backslash are
// escaped, the five control characters with short escapes use them, other
// characters below U+0020 become \u00xx; everything else is copied verbatim.
func AppendString(dst []byte, s string) []byte {
	dst = append(dst, '"')
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' {
			continue
		}
		dst = append(dst, s[start:i]...)
		switch c {
		case '"':
			dst = append(dst, '\\', '"')
		case '\\':
			dst = append(dst, '\\', '\\')
		case '\b':
			dst = append(dst, '\\', 'b')
		case '\f':
			dst = append(dst, '\\', 'f')
		case '\n':
			dst = append(dst, '\\', 'n')
		case '\r':
			dst = append(dst, '\\', 'r')
		case '\t':
			dst = append(dst, '\\', 't')
		default:
			dst = append(dst, '\\', 'u', '0', '0', hexDigits[c>>4], hexDigits[c&0x0F])
		}
		start = i + 1
	}
	dst = append(dst, s[start:]...)
	return append(dst, '"')
}

const hexDigits = "0123456789abcdef"
