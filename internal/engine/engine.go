package engine

import "strconv"

// Kind represents the six JSON value kinds. The set is closed: every switch
// over Kind in this module handles all six and rejects anything else.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a parsed JSON value. Only the field matching Kind is meaningful.
type Value struct {
	Kind    Kind
	Bool    bool
	Num     Number
	Str     string
	Elems   []Value  // KindArray
	Members []Member // KindObject, in first-seen order with unique keys
}

// Member is a key/value pair of an object.
type Member struct {
	Key   string
	Value Value
}

// Null returns a null value.
func Null() Value { return Value{Kind: KindNull} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

// String returns a string value.
func String(s string) Value { return Value{Kind: KindString, Str: s} }

// Array returns an array value holding elems.
func Array(elems ...Value) Value { return Value{Kind: KindArray, Elems: elems} }

// Object returns an object value holding members. Callers are responsible
// for key uniqueness.
func Object(members ...Member) Value { return Value{Kind: KindObject, Members: members} }

// Get returns the value stored under key when v is an object.
func (v *Value) Get(key string) (*Value, bool) {
	if v.Kind != KindObject {
		return nil, false
	}
	for i := range v.Members {
		if v.Members[i].Key == key {
			return &v.Members[i].Value, true
		}
	}
	return nil, false
}

// Set stores val under key, replacing an existing member in place or
// appending a new one. v must be an object.
func (v *Value) Set(key string, val Value) {
	for i := range v.Members {
		if v.Members[i].Key == key {
			v.Members[i].Value = val
			return
		}
	}
	v.Members = append(v.Members, Member{Key: key, Value: val})
}

// Clone returns a deep copy of v.
func (v *Value) Clone() Value {
	out := *v
	switch v.Kind {
	case KindArray:
		if v.Elems != nil {
			out.Elems = make([]Value, len(v.Elems))
			for i := range v.Elems {
				out.Elems[i] = v.Elems[i].Clone()
			}
		}
	case KindObject:
		if v.Members != nil {
			out.Members = make([]Member, len(v.Members))
			for i := range v.Members {
				out.Members[i] = Member{Key: v.Members[i].Key, Value: v.Members[i].Value.Clone()}
			}
		}
	}
	return out
}
