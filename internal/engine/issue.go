package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// Issue codes produced by the parser.
const (
	CodeParseError    = "parse_error"
	CodeUnexpectedEOF = "unexpected_eof"
	CodeInvalidUTF8   = "invalid_utf8"
	CodeInvalidEscape = "invalid_escape"
	CodeInvalidNumber = "invalid_number"
	CodeNumberRange   = "number_out_of_range"
	CodeTrailingData  = "trailing_data"
	CodeTooLarge      = "too_large"
	CodeMaxDepth      = "max_depth"
	CodeDuplicateKey  = "duplicate_key"
)

// SimpleIssue is a minimal issue representation used by internal helpers.
// Offset is the byte offset into the input; Path is a JSON Pointer ("/" for
// the root).
type SimpleIssue struct {
	Code    string
	Path    string
	Message string
	Offset  int64
}

// IssueError is a lightweight error carrying a SimpleIssue.
type IssueError struct{ SimpleIssue }

func (e IssueError) Error() string {
	return fmt.Sprintf("%s at offset %d (%s)", e.Message, e.Offset, e.Path)
}

// DepthExceeded reports whether the issue was caused by the nesting limit.
func (e IssueError) DepthExceeded() bool { return e.Code == CodeMaxDepth }

// LineColumn converts a byte offset into a 1-based line and column. Columns
// count bytes, not runes.
func LineColumn(data []byte, offset int64) (line, col int) {
	line, col = 1, 1
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	for i := int64(0); i < offset; i++ {
		if data[i] == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// segment is one step of a JSON Pointer: an object key or an array index.
type segment struct {
	key   string
	index int
	isIdx bool
}

func renderPointer(segs []segment) string {
	if len(segs) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, s := range segs {
		if s.isIdx {
			b.WriteString("/" + strconv.Itoa(s.index))
			continue
		}
		b.WriteString("/" + escapeJSONPointerToken(s.key))
	}
	return b.String()
}

var jsonPointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func escapeJSONPointerToken(s string) string {
	return jsonPointerEscaper.Replace(s)
}

// JoinJSONPointer appends token to a JSON Pointer base.
func JoinJSONPointer(base, token string) string {
	if base == "" || base == "/" {
		return "/" + escapeJSONPointerToken(token)
	}
	return base + "/" + escapeJSONPointerToken(token)
}
