// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson

import (
	"bytes"
	"io"
	"strings"

	"go4.org/mem"
)

// A Terminal is a lexical token kind produced by a Lexer.
type Terminal int

// Constants defining the valid Terminal values.
const (
	TermInvalid Terminal = iota // invalid token

	LBrace  // "{"
	RBrace  // "}"
	LSquare // "["
	RSquare // "]"
	Comma   // ","
	Colon   // ":"
	Quote   // opening or closing quotation mark of a string

	CharSeq // the decoded body of a string, between its quotation marks
	Number  // a numeric lexeme, classified further by the Reader

	True  // constant: true
	False // constant: false
	Null  // constant: null

	LineComment  // comment: // ... <LF>
	BlockComment // comment: /* ... */
)

var terminalStr = [...]string{
	TermInvalid: "invalid token",
	LBrace:      `"{"`,
	RBrace:      `"}"`,
	LSquare:     `"["`,
	RSquare:     `"]"`,
	Comma:       `","`,
	Colon:       `":"`,
	Quote:       `quotation mark`,
	CharSeq:     "string characters",
	Number:      "number",
	True:        "true",
	False:       "false",
	Null:        "null",

	LineComment:  "line comment",
	BlockComment: "block comment",
}

func (t Terminal) String() string {
	v := int(t)
	if v < 0 || v >= len(terminalStr) {
		return terminalStr[TermInvalid]
	}
	return terminalStr[v]
}

// A Lexer reads lexical tokens from a character source. Each call to
// NextToken advances the lexer to the next token, or reports an error.
//
// A Lexer recognizes a JSON string as three separate terminals -- an opening
// Quote, a CharSeq carrying its decoded contents, and a closing Quote -- so
// that a caller (the Reader) can tell an object member's key apart from an
// ordinary string value without the Lexer knowing anything about grammar.
type Lexer struct {
	src CharSource

	allowComments   bool
	allowSingleQuot bool

	buf bytes.Buffer // accumulated string/number lexeme

	token Terminal
	err   error

	inString     bool // currently scanning the body of a quoted string
	pendingClose bool // the matching close quote is buffered, waiting to be read
	quoteChar    rune // the quote character ('"' or '\'') that opened the current string

	last    rune // most recently read rune, the only one unrune() can restore
	pending rune // one-character pushback buffer
	hasPend bool
	atEOF   bool
}

// NewLexer constructs a Lexer that consumes input from src.
//
// Comments and single-quoted strings are recognized by default; call
// AllowComments(false) or AllowSingleQuotedStrings(false) to reject them.
func NewLexer(src CharSource) *Lexer {
	return &Lexer{src: src, allowComments: true, allowSingleQuot: true}
}

// NewLexerFromReader constructs a Lexer reading from r.
func NewLexerFromReader(r io.Reader) *Lexer { return NewLexer(NewCharSource(r)) }

// AllowComments configures the lexer to recognize (true) or reject (false)
// line and block comments. Comments are a non-standard extension of JSON.
func (l *Lexer) AllowComments(ok bool) { l.allowComments = ok }

// AllowSingleQuotedStrings configures the lexer to recognize (true) or
// reject (false) strings delimited by a single quote rather than a double
// quote. This is a non-standard extension of JSON.
func (l *Lexer) AllowSingleQuotedStrings(ok bool) { l.allowSingleQuot = ok }

// Token returns the terminal kind most recently produced by NextToken.
func (l *Lexer) Token() Terminal { return l.token }

// StringValue returns the decoded text accumulated for the current token
// (the contents of a CharSeq, or the raw digits of a Number). The result is
// only valid until the next call to NextToken.
func (l *Lexer) StringValue() string { return l.buf.String() }

// EndOfInput reports whether the lexer has reached the end of its input.
func (l *Lexer) EndOfInput() bool { return l.atEOF }

// Err returns the last error reported by NextToken.
func (l *Lexer) Err() error { return l.err }

// NextToken advances the lexer to the next token of the input. It returns
// false at the end of input (with Err() == nil), or reports a lexical error.
func (l *Lexer) NextToken() (bool, error) {
	l.buf.Reset()
	l.token = TermInvalid
	l.err = nil

	if l.pendingClose {
		_, err := l.rune()
		if err != nil {
			return false, l.fail(err)
		}
		l.pendingClose = false
		l.token = Quote
		return true, nil
	}
	if l.inString {
		return l.scanStringBody()
	}

	for {
		ch, err := l.rune()
		if err == io.EOF {
			l.atEOF = true
			return false, nil
		} else if err != nil {
			return false, l.fail(err)
		}

		if isSpace(ch) {
			continue
		}
		if t, ok := selfDelim(ch); ok {
			l.token = t
			return true, nil
		}
		if ch == '"' || (ch == '\'' && l.allowSingleQuot) {
			l.token = Quote
			l.quoteChar = ch
			l.inString = true
			return true, nil
		}
		if isNumStart(ch) {
			return l.scanNumber(ch)
		}
		if ch == '/' && l.allowComments {
			return l.scanComment()
		}

		var want mem.RO
		switch ch {
		case 't':
			l.token = True
			want = mem.S("true")
		case 'f':
			l.token = False
			want = mem.S("false")
		case 'n':
			l.token = Null
			want = mem.S("null")
		default:
			return false, l.failRune(ch)
		}
		if err := l.scanName(ch); err != nil {
			return false, err
		}
		if got := mem.B(l.buf.Bytes()); !got.Equal(want) {
			return false, l.failf("unknown constant %q", l.buf.String())
		}
		return true, nil
	}
}

// scanStringBody consumes the decoded text of a string up to (but not
// including) its closing quote, which is left for the next call by way of
// the one-character pushback.
func (l *Lexer) scanStringBody() (bool, error) {
	for {
		ch, err := l.rune()
		if err != nil {
			return false, l.failf("unterminated string: %w", err)
		}
		if ch == l.quoteChar {
			l.unrune()
			l.token = CharSeq
			l.inString = false
			l.pendingClose = true
			return true, nil
		}
		if ch == '\\' {
			if err := l.scanEscape(); err != nil {
				return false, err
			}
			continue
		}
		if ch < 0x20 {
			return false, l.failf("unescaped control character %q in string", ch)
		}
		l.buf.WriteRune(ch)
	}
}

// scanEscape consumes a backslash escape sequence and appends its decoded
// rune to the accumulation buffer. The leading backslash has already been
// consumed.
func (l *Lexer) scanEscape() error {
	ch, err := l.rune()
	if err != nil {
		return l.failf("incomplete escape sequence: %w", err)
	}
	switch ch {
	case '"', '\\', '/', '\'':
		l.buf.WriteRune(ch)
	case 'b':
		l.buf.WriteByte('\b')
	case 'f':
		l.buf.WriteByte('\f')
	case 'n':
		l.buf.WriteByte('\n')
	case 'r':
		l.buf.WriteByte('\r')
	case 't':
		l.buf.WriteByte('\t')
	case 'u':
		v, err := l.readHex4()
		if err != nil {
			return l.failf("invalid Unicode escape: %w", err)
		}
		l.buf.WriteRune(rune(v))
	default:
		return l.failf("invalid escape %q", ch)
	}
	return nil
}

func (l *Lexer) readHex4() (int, error) {
	var v int
	for i := 0; i < 4; i++ {
		ch, err := l.rune()
		if err != nil {
			return 0, err
		} else if !isHexDigit(ch) {
			return 0, l.failf("not a hex digit: %q", ch)
		}
		v = v<<4 | hexVal(ch)
	}
	return v, nil
}

func (l *Lexer) scanNumber(start rune) (bool, error) {
	l.buf.WriteRune(start)

	if start == '-' {
		ch, err := l.require(isDigit, "digit")
		if err != nil {
			return false, err
		}
		l.buf.WriteRune(ch)
	}

	_, ch, err := l.readWhile(isDigit)
	if err != nil && err != io.EOF {
		return false, l.fail(err)
	}

	if hasExtraLeadingZeroes(l.buf.Bytes()) {
		return false, l.failf("extra leading zeroes")
	}

	if err == io.EOF {
		l.token = Number
		return true, nil
	}

	if ch == '.' {
		l.buf.WriteRune(ch)
		nr, next, err := l.readWhile(isDigit)
		if err != nil && err != io.EOF {
			return false, l.fail(err)
		} else if nr == 0 {
			return false, l.failf("no digits after decimal point")
		}
		ch = next
		if err == io.EOF {
			l.token = Number
			return true, nil
		}
	}

	if ch != 'e' && ch != 'E' {
		l.unrune()
		l.token = Number
		return true, nil
	}

	l.buf.WriteRune(ch)
	ch, err = l.require(isExpStart, "sign or digit")
	if err != nil {
		return false, err
	}
	l.buf.WriteRune(ch)
	nr, _, err := l.readWhile(isDigit)
	if nr == 0 && (ch == '-' || ch == '+') {
		return false, l.failf("missing exponent digits")
	} else if err == io.EOF {
		l.token = Number
		return true, nil
	} else if err != nil {
		return false, l.fail(err)
	}
	l.unrune()
	l.token = Number
	return true, nil
}

func (l *Lexer) scanComment() (bool, error) {
	ch, err := l.rune()
	if err != nil {
		return false, l.fail(err)
	}
	switch ch {
	case '/': // line comment to LF
		_, _, err := l.readWhile(isNotLF)
		if err != nil && err != io.EOF {
			return false, l.fail(err)
		}
		l.token = LineComment
		return true, nil

	case '*': // block comment
		for {
			_, _, err := l.readWhile(isNotStar)
			if err != nil {
				return false, l.failf("unterminated block comment: %w", err)
			}
			// We just stopped on a '*'; check whether it is followed by '/'.
			next, err := l.rune()
			if err != nil {
				return false, l.failf("unterminated block comment: %w", err)
			}
			if next == '/' {
				l.token = BlockComment
				return true, nil
			}
			// Otherwise next was not '/'. If it is itself '*' (as in "***/"),
			// push it back so that readWhile stops on it as the next
			// candidate end-star.
			if next == '*' {
				l.unrune()
			}
		}

	default:
		l.unrune()
		return false, l.failf("invalid %q in comment", ch)
	}
}

func (l *Lexer) scanName(first rune) error {
	l.buf.WriteRune(first)
	_, _, err := l.readWhile(isNameRune)
	if err == io.EOF {
		return nil
	} else if err != nil {
		return l.fail(err)
	}
	l.unrune()
	return nil
}

func (l *Lexer) rune() (rune, error) {
	if l.hasPend {
		l.hasPend = false
		l.last = l.pending
		return l.pending, nil
	}
	ch, err := l.src.Read()
	if err == nil {
		l.last = ch
	}
	return ch, err
}

// unrune pushes back the most recently read rune, so the next call to
// rune() returns it again. Only one rune of lookahead is available.
func (l *Lexer) unrune() {
	l.pending = l.last
	l.hasPend = true
}

// require reads a single rune matching f from the input, or fails naming the
// expected class.
func (l *Lexer) require(f func(rune) bool, label string) (rune, error) {
	ch, err := l.rune()
	if err != nil {
		return 0, l.failf("want %s, got error: %w", label, err)
	} else if !f(ch) {
		l.unrune()
		return 0, l.failf("got %q, want %s", ch, label)
	}
	return ch, nil
}

// readWhile consumes runes matching f from the input, accumulating them into
// the lexeme buffer, until EOF or a non-matching rune is found. The first
// non-matching rune (if any) is returned; it is the caller's responsibility
// to unrune() it if it should remain in the input.
func (l *Lexer) readWhile(f func(rune) bool) (int, rune, error) {
	var nr int
	for {
		ch, err := l.rune()
		if err != nil {
			return nr, 0, err
		} else if !f(ch) {
			return nr, ch, nil
		}
		l.buf.WriteRune(ch)
		nr++
	}
}

func (l *Lexer) fail(err error) error {
	e := wrapf(err, "lexical error")
	l.err = e
	return e
}

func (l *Lexer) failf(format string, args ...any) error {
	e := errorf(format, args...)
	l.err = e
	return e
}

func (l *Lexer) failRune(ch rune) error {
	e := errorFromRune(ch)
	l.err = e
	return e
}

func isSpace(ch rune) bool      { return ch == ' ' || (ch >= '\t' && ch <= '\r') }
func isNotStar(ch rune) bool    { return ch != '*' }
func isNotLF(ch rune) bool      { return ch != '\n' }
func isNumStart(ch rune) bool   { return ch == '-' || isDigit(ch) }
func isExpStart(ch rune) bool   { return ch == '-' || ch == '+' || isDigit(ch) }
func isDigit(ch rune) bool      { return '0' <= ch && ch <= '9' }
func isNameRune(ch rune) bool   { return ch >= 'a' && ch <= 'z' }

func isHexDigit(ch rune) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func hexVal(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

// hasExtraLeadingZeroes reports whether the representation of a number in
// buf has redundant leading zeroes, which the JSON grammar disallows.
//
// OK: 0, 0.1, -1.0, -0.1 are all fine. Bad: -01, 01.2, -01.0, 00.1.
func hasExtraLeadingZeroes(buf []byte) bool {
	if buf[0] == '-' {
		buf = buf[1:]
	}
	if buf[0] == '0' {
		return len(buf) > 1 && isDigit(rune(buf[1]))
	}
	return false
}

var selfDelimToks = [...]Terminal{LBrace, RBrace, LSquare, RSquare, Comma, Colon}

func selfDelim(ch rune) (Terminal, bool) {
	i := strings.IndexRune("{}[],:", ch)
	if i >= 0 {
		return selfDelimToks[i], true
	}
	return TermInvalid, false
}
