package engine

import (
	"fmt"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"
)

// DefaultMaxDepth is the nesting limit applied when Options.MaxDepth is zero.
const DefaultMaxDepth = 512

// Options controls parser limits.
type Options struct {
	// MaxDepth bounds object/array nesting. Zero selects DefaultMaxDepth;
	// a negative value disables the check.
	MaxDepth int
	// MaxBytes bounds the input size. Zero means unlimited.
	MaxBytes int64
	// OnDuplicate selects how repeated object keys are handled.
	OnDuplicate DuplicateStrictness
}

// DuplicateStrictness controls duplicate key handling.
type DuplicateStrictness int

const (
	// DupLastWins keeps the last value at the position of the first
	// occurrence.
	DupLastWins DuplicateStrictness = iota
	// DupError rejects the document with CodeDuplicateKey.
	DupError
)

func (o Options) maxDepth() int {
	switch {
	case o.MaxDepth == 0:
		return DefaultMaxDepth
	case o.MaxDepth < 0:
		return int(^uint(0) >> 1)
	default:
		return o.MaxDepth
	}
}

type parser struct {
	data     []byte
	pos      int
	depth    int
	maxDepth int
	onDup    DuplicateStrictness
	path     []segment
}

// Parse parses exactly one JSON value from data. The grammar is strict
// RFC 8259: no comments, trailing commas, unquoted keys, NaN/Infinity
// literals or trailing content. Duplicate object keys are collapsed with the
// last value winning unless opts.OnDuplicate is DupError. All failures are
// returned as IssueError.
func Parse(data []byte, opts Options) (*Value, error) {
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, IssueError{SimpleIssue{
			Code:    CodeTooLarge,
			Path:    "/",
			Message: fmt.Sprintf("input size %d exceeds maximum %d", len(data), opts.MaxBytes),
			Offset:  opts.MaxBytes,
		}}
	}
	if !utf8.Valid(data) {
		return nil, IssueError{SimpleIssue{
			Code:    CodeInvalidUTF8,
			Path:    "/",
			Message: "input is not valid UTF-8",
			Offset:  int64(firstInvalidUTF8(data)),
		}}
	}

	p := &parser{data: data, maxDepth: opts.maxDepth(), onDup: opts.OnDuplicate}
	p.skipWhitespace()
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	p.skipWhitespace()
	if p.pos != len(p.data) {
		return nil, p.fail(CodeTrailingData, "trailing data after JSON value")
	}
	return &v, nil
}

func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

func (p *parser) fail(code, msg string) error {
	return p.failAt(p.pos, code, msg)
}

func (p *parser) failAt(offset int, code, msg string) error {
	return IssueError{SimpleIssue{
		Code:    code,
		Path:    renderPointer(p.path),
		Message: msg,
		Offset:  int64(offset),
	}}
}

func (p *parser) skipWhitespace() {
	for p.pos < len(p.data) {
		switch p.data[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) eof(what string) error {
	return p.fail(CodeUnexpectedEOF, "unexpected end of input in "+what)
}

func (p *parser) push() error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.fail(CodeMaxDepth, fmt.Sprintf("nesting depth %d exceeds maximum %d", p.depth, p.maxDepth))
	}
	return nil
}

func (p *parser) parseValue() (Value, error) {
	if p.pos >= len(p.data) {
		return Value{}, p.eof("value")
	}
	switch c := p.data[p.pos]; {
	case c == '{':
		return p.parseObject()
	case c == '[':
		return p.parseArray()
	case c == '"':
		s, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		return String(s), nil
	case c == 't':
		if err := p.literal("true"); err != nil {
			return Value{}, err
		}
		return Bool(true), nil
	case c == 'f':
		if err := p.literal("false"); err != nil {
			return Value{}, err
		}
		return Bool(false), nil
	case c == 'n':
		if err := p.literal("null"); err != nil {
			return Value{}, err
		}
		return Null(), nil
	case c == '-' || (c >= '0' && c <= '9'):
		return p.parseNumber()
	default:
		return Value{}, p.fail(CodeParseError, fmt.Sprintf("unexpected character %s", quoteByte(c)))
	}
}

func quoteByte(c byte) string {
	if c < utf8.RuneSelf {
		return strconv.QuoteRune(rune(c))
	}
	return fmt.Sprintf("0x%02X", c)
}

func (p *parser) literal(word string) error {
	if len(p.data)-p.pos < len(word) || string(p.data[p.pos:p.pos+len(word)]) != word {
		return p.fail(CodeParseError, "invalid literal, expected "+word)
	}
	p.pos += len(word)
	return nil
}

func (p *parser) parseObject() (Value, error) {
	if err := p.push(); err != nil {
		return Value{}, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '{'
	p.skipWhitespace()
	obj := Value{Kind: KindObject, Members: []Member{}}
	if p.pos >= len(p.data) {
		return Value{}, p.eof("object")
	}
	if p.data[p.pos] == '}' {
		p.pos++
		return obj, nil
	}

	var index map[string]int
	for {
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return Value{}, p.eof("object")
		}
		if p.data[p.pos] != '"' {
			return Value{}, p.fail(CodeParseError, "expected string key in object")
		}
		keyStart := p.pos
		key, err := p.parseString()
		if err != nil {
			return Value{}, err
		}
		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return Value{}, p.eof("object")
		}
		if p.data[p.pos] != ':' {
			return Value{}, p.fail(CodeParseError, "expected ':' after object key")
		}
		p.pos++
		p.skipWhitespace()

		p.path = append(p.path, segment{key: key})
		val, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		p.path = p.path[:len(p.path)-1]

		if index == nil {
			index = make(map[string]int)
		}
		if i, dup := index[key]; dup {
			if p.onDup == DupError {
				p.path = append(p.path, segment{key: key})
				err := p.failAt(keyStart, CodeDuplicateKey, fmt.Sprintf("duplicate key %q", key))
				p.path = p.path[:len(p.path)-1]
				return Value{}, err
			}
			obj.Members[i].Value = val
		} else {
			index[key] = len(obj.Members)
			obj.Members = append(obj.Members, Member{Key: key, Value: val})
		}

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return Value{}, p.eof("object")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return obj, nil
		default:
			return Value{}, p.fail(CodeParseError, "expected ',' or '}' in object")
		}
	}
}

func (p *parser) parseArray() (Value, error) {
	if err := p.push(); err != nil {
		return Value{}, err
	}
	defer func() { p.depth-- }()

	p.pos++ // '['
	p.skipWhitespace()
	arr := Value{Kind: KindArray, Elems: []Value{}}
	if p.pos >= len(p.data) {
		return Value{}, p.eof("array")
	}
	if p.data[p.pos] == ']' {
		p.pos++
		return arr, nil
	}

	for i := 0; ; i++ {
		p.skipWhitespace()
		p.path = append(p.path, segment{index: i, isIdx: true})
		elem, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		p.path = p.path[:len(p.path)-1]
		arr.Elems = append(arr.Elems, elem)

		p.skipWhitespace()
		if p.pos >= len(p.data) {
			return Value{}, p.eof("array")
		}
		switch p.data[p.pos] {
		case ',':
			p.pos++
		case ']':
			p.pos++
			return arr, nil
		default:
			return Value{}, p.fail(CodeParseError, "expected ',' or ']' in array")
		}
	}
}

// parseString decodes a string token starting at the opening quote.
func (p *parser) parseString() (string, error) {
	start := p.pos
	p.pos++ // '"'

	// Fast path: no escapes.
	for i := p.pos; i < len(p.data); i++ {
		c := p.data[i]
		if c == '"' {
			s := string(p.data[p.pos:i])
			p.pos = i + 1
			return s, nil
		}
		if c == '\\' || c < 0x20 {
			break
		}
	}

	var buf []byte
	for {
		if p.pos >= len(p.data) {
			return "", p.failAt(start, CodeUnexpectedEOF, "unterminated string")
		}
		c := p.data[p.pos]
		switch {
		case c == '"':
			p.pos++
			return string(buf), nil
		case c == '\\':
			r, err := p.parseEscape()
			if err != nil {
				return "", err
			}
			buf = utf8.AppendRune(buf, r)
		case c < 0x20:
			return "", p.fail(CodeParseError, fmt.Sprintf("unescaped control character 0x%02X in string", c))
		default:
			buf = append(buf, c)
			p.pos++
		}
	}
}

func (p *parser) parseEscape() (rune, error) {
	escStart := p.pos
	p.pos++ // '\'
	if p.pos >= len(p.data) {
		return 0, p.failAt(escStart, CodeUnexpectedEOF, "unterminated escape sequence")
	}
	c := p.data[p.pos]
	p.pos++
	switch c {
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case '/':
		return '/', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
	default:
		return 0, p.failAt(escStart, CodeInvalidEscape, fmt.Sprintf("invalid escape character %s", quoteByte(c)))
	}

	r1, err := p.hex4(escStart)
	if err != nil {
		return 0, err
	}
	if !utf16.IsSurrogate(r1) {
		return r1, nil
	}
	if r1 >= 0xDC00 {
		return 0, p.failAt(escStart, CodeInvalidEscape, fmt.Sprintf("lone low surrogate U+%04X", r1))
	}
	if len(p.data)-p.pos < 2 || p.data[p.pos] != '\\' || p.data[p.pos+1] != 'u' {
		return 0, p.failAt(escStart, CodeInvalidEscape, fmt.Sprintf("lone high surrogate U+%04X", r1))
	}
	second := p.pos
	p.pos += 2
	r2, err := p.hex4(second)
	if err != nil {
		return 0, err
	}
	if r2 < 0xDC00 || r2 > 0xDFFF {
		return 0, p.failAt(second, CodeInvalidEscape, fmt.Sprintf("high surrogate U+%04X followed by U+%04X", r1, r2))
	}
	return utf16.DecodeRune(r1, r2), nil
}

func (p *parser) hex4(escStart int) (rune, error) {
	if len(p.data)-p.pos < 4 {
		return 0, p.failAt(escStart, CodeInvalidEscape, "incomplete \\u escape")
	}
	var r rune
	for _, c := range p.data[p.pos : p.pos+4] {
		r <<= 4
		switch {
		case c >= '0' && c <= '9':
			r |= rune(c - '0')
		case c >= 'a' && c <= 'f':
			r |= rune(c - 'a' + 10)
		case c >= 'A' && c <= 'F':
			r |= rune(c - 'A' + 10)
		default:
			return 0, p.failAt(escStart, CodeInvalidEscape, fmt.Sprintf("invalid hex in \\u escape: %q", p.data[p.pos:p.pos+4]))
		}
	}
	p.pos += 4
	return r, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (p *parser) parseNumber() (Value, error) {
	start := p.pos
	if p.data[p.pos] == '-' {
		p.pos++
	}
	if p.pos >= len(p.data) {
		return Value{}, p.eof("number")
	}
	switch c := p.data[p.pos]; {
	case c == '0':
		p.pos++
		if p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			return Value{}, p.failAt(start, CodeInvalidNumber, "leading zero in number")
		}
	case c >= '1' && c <= '9':
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	default:
		// Covers "-Infinity" and friends.
		return Value{}, p.failAt(start, CodeInvalidNumber, "expected digit after '-'")
	}

	if p.pos < len(p.data) && p.data[p.pos] == '.' {
		p.pos++
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, p.fail(CodeInvalidNumber, "expected digit after decimal point")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}

	if p.pos < len(p.data) && (p.data[p.pos] == 'e' || p.data[p.pos] == 'E') {
		p.pos++
		if p.pos < len(p.data) && (p.data[p.pos] == '+' || p.data[p.pos] == '-') {
			p.pos++
		}
		if p.pos >= len(p.data) || !isDigit(p.data[p.pos]) {
			return Value{}, p.fail(CodeInvalidNumber, "expected digit in exponent")
		}
		for p.pos < len(p.data) && isDigit(p.data[p.pos]) {
			p.pos++
		}
	}

	lit := string(p.data[start:p.pos])
	if !finite(lit) {
		return Value{}, p.failAt(start, CodeNumberRange, "number out of range: "+lit)
	}
	return Value{Kind: KindNumber, Num: Number{lit: lit}}, nil
}
