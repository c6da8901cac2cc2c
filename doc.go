// Package driftcore turns JSON text into deterministic artifacts:
//
// - a canonical JSON form (sorted keys, no whitespace, fixed number and string rendering)
// - a SHA-256 content address of that canonical form (64 lowercase hex characters)
// - a deterministic protobuf google.protobuf.Struct encoding
// - the field count of an object root
//
// Semantically equal documents produce byte-identical output, regardless of key
// order, whitespace or number spelling. Every function is pure and safe for
// concurrent use.
//
// Design policy:
// - Keep only public APIs in the root package; put detailed implementations under internal/.
// - All failures are *Error values with a Kind, a code and a JSON Pointer path.
//
// Typical usage:
//
//	normalized, hash, err := driftcore.NormalizeAndHash(`{"b":2,"a":1}`)
//	// normalized == `{"a":1,"b":2}`
//
//	doc, err := driftcore.Parse(text, driftcore.ParseOpt{MaxDepth: 64})
//	wire, err := doc.EncodeStruct()
package driftcore
