// Package schema infers a structural schema from a JSON value tree and
// applies per-field decoding rules ("merges") to export payloads.
package schema

import (
	"encoding/base64"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"github.com/reoring/driftcore/internal/canon"
	"github.com/reoring/driftcore/internal/engine"
)

// TypeCode identifies a value type in a generated schema.
type TypeCode int

const (
	TypeNumber      TypeCode = 1
	TypeString      TypeCode = 2
	TypeBoolean     TypeCode = 3
	TypeNull        TypeCode = 4
	TypeObject      TypeCode = 6
	TypeOrderedList TypeCode = 7
)

// Rule values understood by ApplyMerges.
const (
	EncodingBase64 = 1
	DecodedJSON    = 1
)

// MergeRule describes how a top-level payload field was encoded and how
// important it is when matching.
type MergeRule struct {
	Encoding        *int32   `json:"encoding"`
	DecodedType     *int32   `json:"decoded_type"`
	MatchImportance *float64 `json:"match_importance"`
}

// Merges maps top-level field names to their rules.
type Merges map[string]MergeRule

// ParseMerges decodes a JSON object of merge rules. A JSON null yields an
// empty set.
func ParseMerges(data []byte) (Merges, error) {
	var m Merges
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("schema: decode merges: %w", err)
	}
	if m == nil {
		m = Merges{}
	}
	return m, nil
}

// TypeOf returns the schema type code of v.
func TypeOf(v *engine.Value) (TypeCode, error) {
	switch v.Kind {
	case engine.KindNull:
		return TypeNull, nil
	case engine.KindBool:
		return TypeBoolean, nil
	case engine.KindNumber:
		return TypeNumber, nil
	case engine.KindString:
		return TypeString, nil
	case engine.KindArray:
		return TypeOrderedList, nil
	case engine.KindObject:
		return TypeObject, nil
	default:
		return 0, fmt.Errorf("schema: unsupported value kind %s", v.Kind)
	}
}

// ApplyMerges returns a copy of v with the rules applied to its top-level
// fields. Only object roots are affected. A rule that cannot be applied
// (not a string, bad base64, not JSON) leaves the field as it was.
func ApplyMerges(v *engine.Value, merges Merges, opts engine.Options) engine.Value {
	out := v.Clone()
	if out.Kind != engine.KindObject || len(merges) == 0 {
		return out
	}
	for i := range out.Members {
		rule, ok := merges[out.Members[i].Key]
		if !ok {
			continue
		}
		out.Members[i].Value = applyRule(out.Members[i].Value, rule, opts)
	}
	return out
}

func applyRule(v engine.Value, rule MergeRule, opts engine.Options) engine.Value {
	if rule.Encoding != nil && *rule.Encoding == EncodingBase64 && v.Kind == engine.KindString {
		if raw, err := base64.StdEncoding.DecodeString(v.Str); err == nil {
			v = engine.String(lossyUTF8(raw))
		}
	}
	if rule.DecodedType != nil && *rule.DecodedType == DecodedJSON && v.Kind == engine.KindString {
		if parsed, err := engine.Parse([]byte(v.Str), opts); err == nil {
			v = *parsed
		}
	}
	return v
}

// lossyUTF8 replaces each invalid byte with U+FFFD.
func lossyUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	out := make([]byte, 0, len(b)+8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			out = utf8.AppendRune(out, utf8.RuneError)
		} else {
			out = append(out, b[:size]...)
		}
		b = b[size:]
	}
	return string(out)
}

// Generate infers the schema of v. Arrays take their item schema from the
// first element. When merges is non-nil, properties of an object root are
// annotated with their rule fields.
func Generate(v *engine.Value, merges Merges) (engine.Value, error) {
	return generate(v, merges, true)
}

func generate(v *engine.Value, merges Merges, root bool) (engine.Value, error) {
	code, err := TypeOf(v)
	if err != nil {
		return engine.Value{}, err
	}
	node := engine.Object(
		engine.Member{Key: "type", Value: intValue(int64(code))},
		engine.Member{Key: "properties", Value: engine.Object()},
	)

	switch v.Kind {
	case engine.KindArray:
		if len(v.Elems) > 0 {
			items, err := generate(&v.Elems[0], nil, false)
			if err != nil {
				return engine.Value{}, err
			}
			node.Set("items", items)
		}
	case engine.KindObject:
		props := engine.Object()
		for i := range v.Members {
			m := &v.Members[i]
			child, err := generate(&m.Value, nil, false)
			if err != nil {
				return engine.Value{}, err
			}
			if root {
				if rule, ok := merges[m.Key]; ok {
					annotate(&child, rule)
				}
			}
			props.Set(m.Key, child)
		}
		node.Set("properties", props)
	}
	return node, nil
}

func annotate(node *engine.Value, rule MergeRule) {
	if rule.Encoding != nil {
		node.Set("encoding", intValue(int64(*rule.Encoding)))
	}
	if rule.DecodedType != nil {
		node.Set("decoded_type", intValue(int64(*rule.DecodedType)))
	}
	if rule.MatchImportance != nil {
		node.Set("match_importance", floatValue(*rule.MatchImportance))
	}
}

func intValue(i int64) engine.Value {
	return engine.Value{Kind: engine.KindNumber, Num: engine.NumberFromInt64(i)}
}

// floatValue stores f under its canonical lexeme, so a whole value renders
// the same way as an integer literal in the input would.
func floatValue(f float64) engine.Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return engine.Null()
	}
	n := engine.NumberFromLiteral(strconv.FormatFloat(f, 'g', -1, 64))
	return engine.Value{Kind: engine.KindNumber, Num: engine.NumberFromLiteral(string(canon.AppendNumber(nil, n)))}
}
