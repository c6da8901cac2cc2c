package driftcore

import (
	"github.com/reoring/driftcore/internal/canon"
	"github.com/reoring/driftcore/internal/cborenc"
	"github.com/reoring/driftcore/internal/digest"
	"github.com/reoring/driftcore/internal/engine"
	"github.com/reoring/driftcore/internal/pbstruct"
)

// Document is a parsed JSON document. It is immutable, and its methods may
// be called from multiple goroutines.
type Document struct {
	root *engine.Value
}

// Parse parses text once so that several artifacts can be derived from it.
func Parse(text string, opts ...ParseOpt) (*Document, error) {
	return ParseBytes([]byte(text), opts...)
}

// ParseBytes is Parse for byte input.
func ParseBytes(data []byte, opts ...ParseOpt) (*Document, error) {
	opt := normalizeOpt(opts)
	v, err := engine.Parse(data, opt.engineOptions())
	if err != nil {
		return nil, fromParse(data, err)
	}
	return &Document{root: v}, nil
}

// Kind reports the type of the root value.
func (d *Document) Kind() ValueKind {
	return ValueKind(d.root.Kind.String())
}

// Canonical returns the canonical JSON bytes. Each call returns a fresh slice.
func (d *Document) Canonical() ([]byte, error) {
	b, err := canon.Marshal(d.root)
	if err != nil {
		return nil, encodingError(err)
	}
	return b, nil
}

// Normalize returns the canonical form as a string.
func (d *Document) Normalize() (string, error) {
	b, err := d.Canonical()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Hash returns the SHA-256 hex digest of the canonical form.
func (d *Document) Hash() (string, error) {
	_, h, err := d.NormalizeAndHash()
	return h, err
}

// HashWith returns the hex digest of the canonical form under the named
// algorithm ("sha256" or "blake3"; empty selects sha256).
func (d *Document) HashWith(algorithm string) (string, error) {
	alg, err := digest.ParseAlgorithm(algorithm)
	if err != nil {
		return "", &Error{Kind: KindType, Code: CodeUnknownAlgorithm, Path: "/", Offset: -1, Message: "unsupported digest algorithm " + algorithm, Err: err}
	}
	b, err := d.Canonical()
	if err != nil {
		return "", err
	}
	sum, err := digest.Sum(alg, b)
	if err != nil {
		return "", &Error{Kind: KindType, Code: CodeUnknownAlgorithm, Path: "/", Offset: -1, Message: "unsupported digest algorithm " + algorithm, Err: err}
	}
	return sum.String(), nil
}

// NormalizeAndHash returns the canonical form and its SHA-256 hex digest.
// The digest is computed over exactly the returned bytes.
func (d *Document) NormalizeAndHash() (normalized, hash string, err error) {
	b, err := d.Canonical()
	if err != nil {
		return "", "", err
	}
	return string(b), digest.SumSHA256(b).String(), nil
}

// EncodeStruct returns the deterministic protobuf encoding. Object roots
// are encoded as google.protobuf.Struct, other roots as google.protobuf.Value.
func (d *Document) EncodeStruct() ([]byte, error) {
	b, err := pbstruct.Marshal(d.root)
	if err != nil {
		return nil, encodingError(err)
	}
	return b, nil
}

// FieldCount returns the number of immediate members of an object root.
func (d *Document) FieldCount() (int, error) {
	n, err := pbstruct.FieldCount(d.root)
	if err != nil {
		return 0, typeError("field count undefined for non-object root", err)
	}
	return n, nil
}

// EncodeCBOR returns the RFC 8949 core deterministic CBOR encoding.
func (d *Document) EncodeCBOR() ([]byte, error) {
	b, err := cborenc.Marshal(d.root)
	if err != nil {
		return nil, encodingError(err)
	}
	return b, nil
}
