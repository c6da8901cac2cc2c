package driftcore

import "github.com/reoring/driftcore/internal/engine"

// DefaultMaxDepth is the nesting limit used when ParseOpt.MaxDepth is zero.
const DefaultMaxDepth = engine.DefaultMaxDepth

// DuplicatePolicy controls how repeated object keys are handled.
type DuplicatePolicy int

const (
	DuplicateLastWins DuplicatePolicy = iota // Keep the last value (default).
	DuplicateError                           // Reject the document.
)

// ParseOpt bundles parsing options. The zero value selects the defaults.
type ParseOpt struct {
	MaxDepth       int   // 0 = DefaultMaxDepth; negative disables the check.
	MaxBytes       int64 // 0 = unlimited.
	OnDuplicateKey DuplicatePolicy
}

func normalizeOpt(opts []ParseOpt) ParseOpt {
	if len(opts) == 0 {
		return ParseOpt{}
	}
	return opts[0]
}

func (o ParseOpt) engineOptions() engine.Options {
	eo := engine.Options{MaxDepth: o.MaxDepth, MaxBytes: o.MaxBytes}
	if o.OnDuplicateKey == DuplicateError {
		eo.OnDuplicate = engine.DupError
	}
	return eo
}

// ValueKind names the type of a document's root value.
type ValueKind string

const (
	ValueNull   ValueKind = "null"
	ValueBool   ValueKind = "bool"
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
	ValueArray  ValueKind = "array"
	ValueObject ValueKind = "object"
)
