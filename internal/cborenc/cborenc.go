// Package cborenc renders a JSON value tree as CBOR using Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer and float
// encodings, no indefinite-length items. The same tree always produces the
// same bytes.
//
// Integral numbers keep their exact value: those that fit in 64 bits are
// CBOR integers, larger ones are bignums. Non-integral numbers are floats.
package cborenc

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/fxamacker/cbor/v2"

	"github.com/reoring/driftcore/internal/engine"
)

var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("cborenc: CBOR encoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v.
func Marshal(v *engine.Value) ([]byte, error) {
	native, err := toNative(v)
	if err != nil {
		return nil, err
	}
	b, err := encMode.Marshal(native)
	if err != nil {
		return nil, fmt.Errorf("cborenc: %w", err)
	}
	return b, nil
}

func toNative(v *engine.Value) (any, error) {
	switch v.Kind {
	case engine.KindNull:
		return nil, nil
	case engine.KindBool:
		return v.Bool, nil
	case engine.KindNumber:
		return number(v.Num)
	case engine.KindString:
		return v.Str, nil
	case engine.KindArray:
		out := make([]any, len(v.Elems))
		for i := range v.Elems {
			e, err := toNative(&v.Elems[i])
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case engine.KindObject:
		out := make(map[string]any, len(v.Members))
		for i := range v.Members {
			e, err := toNative(&v.Members[i].Value)
			if err != nil {
				return nil, err
			}
			out[v.Members[i].Key] = e
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cborenc: unsupported value kind %s", v.Kind)
	}
}

func number(n engine.Number) (any, error) {
	if i, ok := n.Int64(); ok {
		return i, nil
	}
	d := n.Decimal()
	if d.Exp < 0 {
		return n.Float64(), nil
	}
	text := d.Digits + strings.Repeat("0", d.Exp)
	bi, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("cborenc: invalid integer %q", n.Literal())
	}
	if d.Neg {
		bi.Neg(bi)
	}
	return bi, nil
}
