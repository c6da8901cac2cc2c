package driftcore

import (
	"errors"
	"fmt"

	"github.com/reoring/driftcore/internal/engine"
	"github.com/reoring/driftcore/internal/pbstruct"
)

// ErrorKind categorizes failures.
type ErrorKind string

const (
	// KindParse covers malformed or incomplete JSON: bad syntax, invalid
	// escapes, trailing data, NaN/Infinity literals, out-of-range numbers.
	KindParse ErrorKind = "parse"
	// KindDepthExceeded means nesting went beyond the configured limit.
	KindDepthExceeded ErrorKind = "depth_exceeded"
	// KindEncoding means a value could not be represented in the target
	// binary encoding.
	KindEncoding ErrorKind = "encoding"
	// KindType means an operation precondition on the value's type failed.
	KindType ErrorKind = "type"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeParseError       = engine.CodeParseError
	CodeUnexpectedEOF    = engine.CodeUnexpectedEOF
	CodeInvalidUTF8      = engine.CodeInvalidUTF8
	CodeInvalidEscape    = engine.CodeInvalidEscape
	CodeInvalidNumber    = engine.CodeInvalidNumber
	CodeNumberRange      = engine.CodeNumberRange
	CodeTrailingData     = engine.CodeTrailingData
	CodeTooLarge         = engine.CodeTooLarge
	CodeMaxDepth         = engine.CodeMaxDepth
	CodeDuplicateKey     = engine.CodeDuplicateKey
	CodeEncodeFailed     = "encode_failed"
	CodeInvalidType      = "invalid_type"
	CodeUnknownAlgorithm = "unknown_algorithm"
)

// Sentinels for errors.Is. Any *Error matches the sentinel of its Kind.
var (
	ErrParse         = &Error{Kind: KindParse}
	ErrDepthExceeded = &Error{Kind: KindDepthExceeded}
	ErrEncoding      = &Error{Kind: KindEncoding}
	ErrType          = &Error{Kind: KindType}
)

// Error is the single error type returned by this package.
type Error struct {
	Kind    ErrorKind
	Code    string
	Path    string // JSON Pointer of the offending value ("/" for the root).
	Offset  int64  // Byte offset in the input (-1 when not applicable).
	Line    int    // 1-based; 0 when not applicable.
	Column  int    // 1-based, in bytes; 0 when not applicable.
	Message string
	Err     error
}

// Error implements error interface
func (e *Error) Error() string {
	loc := ""
	if e.Line > 0 {
		loc = fmt.Sprintf(" at line %d column %d (offset %d)", e.Line, e.Column, e.Offset)
	}
	path := ""
	if e.Path != "" {
		path = " " + e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s%s%s: %v", e.Kind, e.Message, loc, path, e.Err)
	}
	return fmt.Sprintf("%s: %s%s%s", e.Kind, e.Message, loc, path)
}

// Unwrap returns wrapped error
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error of the same Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// AsError extracts an *Error from err using errors.As internally.
func AsError(err error) (*Error, bool) {
	if err == nil {
		return nil, false
	}
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// fromParse converts a parser failure into an *Error with line/column
// resolved against the input.
func fromParse(data []byte, err error) error {
	var ie engine.IssueError
	if !errors.As(err, &ie) {
		return &Error{Kind: KindParse, Code: CodeParseError, Path: "/", Offset: -1, Message: "invalid json", Err: err}
	}
	kind := KindParse
	if ie.DepthExceeded() {
		kind = KindDepthExceeded
	}
	line, col := engine.LineColumn(data, ie.Offset)
	return &Error{
		Kind:    kind,
		Code:    ie.Code,
		Path:    ie.Path,
		Offset:  ie.Offset,
		Line:    line,
		Column:  col,
		Message: ie.Message,
	}
}

func encodingError(err error) error {
	path := "/"
	var ee *pbstruct.EncodeError
	if errors.As(err, &ee) {
		path = ee.Path
	}
	return &Error{Kind: KindEncoding, Code: CodeEncodeFailed, Path: path, Offset: -1, Message: "value cannot be encoded", Err: err}
}

func typeError(msg string, err error) error {
	return &Error{Kind: KindType, Code: CodeInvalidType, Path: "/", Offset: -1, Message: msg, Err: err}
}

// UserMessage returns a one-line, user-facing description of err.
func UserMessage(err error) string {
	e, ok := AsError(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	switch e.Kind {
	case KindParse:
		if e.Line > 0 {
			return fmt.Sprintf("Invalid JSON at line %d, column %d: %s", e.Line, e.Column, e.Message)
		}
		return fmt.Sprintf("Invalid JSON: %s", e.Message)
	case KindDepthExceeded:
		return fmt.Sprintf("JSON nested too deeply at %s: %s", e.Path, e.Message)
	case KindEncoding:
		return fmt.Sprintf("Cannot encode value at %s: %v", e.Path, e.Err)
	case KindType:
		return fmt.Sprintf("Unsupported input: %s", e.Message)
	default:
		return fmt.Sprintf("Error: %s", e.Message)
	}
}
