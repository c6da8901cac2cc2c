// Package pbstruct maps JSON value trees onto the protobuf well-known
// google.protobuf.Struct / google.protobuf.Value messages and encodes them
// deterministically.
//
// Numbers become number_value doubles. Integers outside ±2^53 cannot be
// represented exactly by a double and are rounded to the nearest one.
package pbstruct

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/reoring/driftcore/internal/engine"
)

// ErrNotObject is returned by FieldCount for roots that are not objects.
var ErrNotObject = errors.New("field count undefined for non-object root")

// EncodeError reports a value that cannot be represented or marshaled.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("pbstruct: %s: %v", e.Path, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Map entries are written in sorted key order.
var marshalOptions = proto.MarshalOptions{Deterministic: true}

// FromValue converts v into a structpb.Value.
func FromValue(v *engine.Value) (*structpb.Value, error) {
	return fromValue(v, "/")
}

func fromValue(v *engine.Value, path string) (*structpb.Value, error) {
	switch v.Kind {
	case engine.KindNull:
		return structpb.NewNullValue(), nil
	case engine.KindBool:
		return structpb.NewBoolValue(v.Bool), nil
	case engine.KindNumber:
		f := v.Num.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &EncodeError{Path: path, Err: fmt.Errorf("number %s is not finite", v.Num.Literal())}
		}
		return structpb.NewNumberValue(f), nil
	case engine.KindString:
		return structpb.NewStringValue(v.Str), nil
	case engine.KindArray:
		list := &structpb.ListValue{Values: make([]*structpb.Value, 0, len(v.Elems))}
		for i := range v.Elems {
			elem, err := fromValue(&v.Elems[i], engine.JoinJSONPointer(path, fmt.Sprint(i)))
			if err != nil {
				return nil, err
			}
			list.Values = append(list.Values, elem)
		}
		return structpb.NewListValue(list), nil
	case engine.KindObject:
		s, err := fromObject(v, path)
		if err != nil {
			return nil, err
		}
		return structpb.NewStructValue(s), nil
	default:
		return nil, &EncodeError{Path: path, Err: fmt.Errorf("unsupported value kind %s", v.Kind)}
	}
}

func fromObject(v *engine.Value, path string) (*structpb.Struct, error) {
	s := &structpb.Struct{Fields: make(map[string]*structpb.Value, len(v.Members))}
	for i := range v.Members {
		m := &v.Members[i]
		fv, err := fromValue(&m.Value, engine.JoinJSONPointer(path, m.Key))
		if err != nil {
			return nil, err
		}
		s.Fields[m.Key] = fv
	}
	return s, nil
}

// ToStruct converts an object root into a Struct.
func ToStruct(v *engine.Value) (*structpb.Struct, error) {
	if v.Kind != engine.KindObject {
		return nil, ErrNotObject
	}
	return fromObject(v, "/")
}

// ObjectStruct converts v into a Struct, yielding an empty Struct for
// non-object roots.
func ObjectStruct(v *engine.Value) (*structpb.Struct, error) {
	if v.Kind != engine.KindObject {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
	}
	return fromObject(v, "/")
}

// Marshal encodes v. Object roots are encoded as a google.protobuf.Struct
// message; every other root as a google.protobuf.Value message.
func Marshal(v *engine.Value) ([]byte, error) {
	if v.Kind == engine.KindObject {
		s, err := fromObject(v, "/")
		if err != nil {
			return nil, err
		}
		return MarshalMessage(s)
	}
	pv, err := FromValue(v)
	if err != nil {
		return nil, err
	}
	return MarshalMessage(pv)
}

// MarshalValue always encodes v as a google.protobuf.Value message.
func MarshalValue(v *engine.Value) ([]byte, error) {
	pv, err := FromValue(v)
	if err != nil {
		return nil, err
	}
	return MarshalMessage(pv)
}

// MarshalMessage encodes m deterministically.
func MarshalMessage(m proto.Message) ([]byte, error) {
	b, err := marshalOptions.Marshal(m)
	if err != nil {
		return nil, &EncodeError{Path: "/", Err: err}
	}
	if b == nil {
		b = []byte{}
	}
	return b, nil
}

// FieldCount returns the number of immediate members of an object root.
func FieldCount(v *engine.Value) (int, error) {
	if v.Kind != engine.KindObject {
		return 0, fmt.Errorf("%w (root is %s)", ErrNotObject, v.Kind)
	}
	return len(v.Members), nil
}

// UnmarshalStruct decodes Struct bytes produced by Marshal.
func UnmarshalStruct(b []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if err := proto.Unmarshal(b, s); err != nil {
		return nil, fmt.Errorf("pbstruct: decode struct: %w", err)
	}
	return s, nil
}

// UnmarshalValue decodes Value bytes produced by Marshal or MarshalValue.
func UnmarshalValue(b []byte) (*structpb.Value, error) {
	pv := &structpb.Value{}
	if err := proto.Unmarshal(b, pv); err != nil {
		return nil, fmt.Errorf("pbstruct: decode value: %w", err)
	}
	return pv, nil
}
