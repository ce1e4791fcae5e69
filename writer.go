// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson

import (
	"io"
	"runtime"
	"strconv"
	"strings"
	"unicode/utf8"
)

// A frame records the state of one open array or object, plus the root
// (unindexed, never popped) frame that wraps the top-level value.
type frame struct {
	inArray        bool
	inObject       bool
	expectingValue bool
	count          int
	padding        int
}

var lineBreak = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

// A Writer accepts value and structural calls and renders them to a
// character sink, validating their ordering against a stack of context
// frames along the way.
type Writer struct {
	sink CharSink

	ownsSink bool
	closer   io.Closer

	prettyPrint         bool
	indentValue         int
	validate            bool
	lowerCaseProperties bool

	stack         []frame
	hasReachedEnd bool
	err           error
}

// NewWriter constructs a Writer that renders to sink.
func NewWriter(sink CharSink) *Writer {
	return &Writer{
		sink:        sink,
		indentValue: 4,
		validate:    true,
		stack:       []frame{{}},
	}
}

// NewWriterToWriter constructs a Writer rendering to w. If w implements
// io.Closer, Close releases it.
func NewWriterToWriter(w io.Writer) *Writer {
	wr := NewWriter(NewCharSink(w))
	if c, ok := w.(io.Closer); ok {
		wr.ownsSink = true
		wr.closer = c
	}
	return wr
}

// NewWriterToString constructs a Writer that accumulates its output in
// memory; call String on the returned builder to retrieve it.
func NewWriterToString() (*Writer, *strings.Builder) {
	var sb strings.Builder
	return NewWriter(NewCharSink(&sb)), &sb
}

// PrettyPrint enables or disables indented, human-readable output.
func (w *Writer) PrettyPrint(ok bool) { w.prettyPrint = ok }

// IndentValue sets the number of spaces per indent step in pretty-print
// mode. The default is 4.
func (w *Writer) IndentValue(n int) { w.indentValue = n }

// Validate enables or disables the writer's call-ordering validation. When
// disabled, the writer trusts the caller and renders whatever it is told.
func (w *Writer) Validate(ok bool) { w.validate = ok }

// LowerCaseProperties enables or disables case-folding of property names to
// lower case before they are written.
func (w *Writer) LowerCaseProperties(ok bool) { w.lowerCaseProperties = ok }

// Sink returns the character sink this writer renders to, so a caller (e.g.
// a value that already holds pre-rendered JSON text) can splice raw content
// directly into the output stream via WriteRaw.
func (w *Writer) Sink() CharSink { return w.sink }

// Reset clears all writer state, including the has-reached-end latch,
// permitting the writer to be reused for a new document over the same sink.
func (w *Writer) Reset() {
	w.stack = w.stack[:0]
	w.stack = append(w.stack, frame{})
	w.hasReachedEnd = false
	w.err = nil
}

// Close releases the writer's owned sink, if any.
func (w *Writer) Close() error {
	if w.ownsSink && w.closer != nil {
		return w.closer.Close()
	}
	return nil
}

func (w *Writer) top() *frame { return &w.stack[len(w.stack)-1] }

func (w *Writer) raw(s string) error {
	if err := w.sink.WriteString(s); err != nil {
		w.err = err
		return err
	}
	return nil
}

// WriteRaw splices pre-rendered JSON text directly into the output at the
// current position, bypassing escaping (but not structural validation --
// callers are expected to have already run the value's own writer calls, or
// know the text is already a complete, valid value).
func (w *Writer) WriteRaw(s string) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if err := w.raw(s); err != nil {
		return err
	}
	w.finishValue()
	return nil
}

// WriteObjectStart begins a new object.
func (w *Writer) WriteObjectStart() error {
	if err := w.checkValue(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if err := w.raw("{"); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{inObject: true})
	return nil
}

// WriteObjectEnd closes the innermost open object.
func (w *Writer) WriteObjectEnd() error {
	if err := w.checkObjectEnd(); err != nil {
		return err
	}
	closed := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.prettyPrint && closed.count > 0 {
		if err := w.newlineIndent(); err != nil {
			return err
		}
	}
	if err := w.raw("}"); err != nil {
		return err
	}
	w.finishValue()
	return nil
}

// WriteArrayStart begins a new array.
func (w *Writer) WriteArrayStart() error {
	if err := w.checkValue(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if err := w.raw("["); err != nil {
		return err
	}
	w.stack = append(w.stack, frame{inArray: true})
	return nil
}

// WriteArrayEnd closes the innermost open array.
func (w *Writer) WriteArrayEnd() error {
	if err := w.checkArrayEnd(); err != nil {
		return err
	}
	closed := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	if w.prettyPrint && closed.count > 0 {
		if err := w.newlineIndent(); err != nil {
			return err
		}
	}
	if err := w.raw("]"); err != nil {
		return err
	}
	w.finishValue()
	return nil
}

// WriteProperty writes a property name, awaiting the paired value.
func (w *Writer) WriteProperty(name string) error {
	if err := w.checkProperty(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if w.lowerCaseProperties {
		name = strings.ToLower(name)
	}
	if err := w.writeQuoted(name); err != nil {
		return err
	}
	nlen := utf8.RuneCountInString(name)
	if nlen > top.padding {
		top.padding = nlen
	}
	if w.prettyPrint {
		pad := top.padding - nlen + 1
		if err := w.raw(strings.Repeat(" ", pad)); err != nil {
			return err
		}
		if err := w.raw(": "); err != nil {
			return err
		}
	} else if err := w.raw(":"); err != nil {
		return err
	}
	top.expectingValue = true
	return nil
}

// WriteBool writes a boolean scalar.
func (w *Writer) WriteBool(v bool) error {
	return w.writeScalar(strconv.FormatBool(v))
}

// WriteNull writes the null literal.
func (w *Writer) WriteNull() error {
	return w.writeScalar("null")
}

// WriteInt32 writes a signed 32-bit integer scalar.
func (w *Writer) WriteInt32(v int32) error {
	return w.writeScalar(strconv.FormatInt(int64(v), 10))
}

// WriteInt64 writes a signed 64-bit integer scalar.
func (w *Writer) WriteInt64(v int64) error {
	return w.writeScalar(strconv.FormatInt(v, 10))
}

// WriteUint64 writes an unsigned 64-bit integer scalar.
func (w *Writer) WriteUint64(v uint64) error {
	return w.writeScalar(strconv.FormatUint(v, 10))
}

// WriteFloat64 writes a floating-point scalar. If the locale-invariant
// rendering of v contains neither '.' nor 'E', a trailing ".0" is appended
// so the token unambiguously re-parses as a double.
func (w *Writer) WriteFloat64(v float64) error {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	s = strings.ToUpper(s)
	if !strings.ContainsAny(s, ".E") {
		s += ".0"
	}
	return w.writeScalar(s)
}

// WriteString writes a quoted, escaped string scalar.
func (w *Writer) WriteString(s string) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if err := w.writeQuoted(s); err != nil {
		return err
	}
	w.finishValue()
	return nil
}

func (w *Writer) writeScalar(text string) error {
	if err := w.checkValue(); err != nil {
		return err
	}
	top := w.top()
	if err := w.prefixChild(top); err != nil {
		return err
	}
	if err := w.raw(text); err != nil {
		return err
	}
	w.finishValue()
	return nil
}

// prefixChild emits the comma and (in pretty mode) the newline and
// indentation that precede a new child of the current container, and bumps
// its child counter. It is a no-op for the root frame and for a value being
// written immediately after a property name.
func (w *Writer) prefixChild(top *frame) error {
	if len(w.stack) == 1 {
		return nil
	}
	if !top.expectingValue {
		if top.count > 0 {
			if err := w.raw(","); err != nil {
				return err
			}
		}
		if w.prettyPrint {
			if err := w.newlineIndent(); err != nil {
				return err
			}
		}
		top.count++
	}
	return nil
}

// finishValue clears the expecting-value flag of the frame a just-written
// value belongs to, or latches has_reached_end when that value completed
// the top-level document.
func (w *Writer) finishValue() {
	if len(w.stack) == 1 {
		w.hasReachedEnd = true
		return
	}
	w.top().expectingValue = false
}

func (w *Writer) newlineIndent() error {
	if err := w.raw(lineBreak); err != nil {
		return err
	}
	depth := len(w.stack) - 1
	return w.raw(strings.Repeat(" ", depth*w.indentValue))
}

func (w *Writer) checkValue() error {
	if !w.validate {
		return nil
	}
	if w.hasReachedEnd {
		return errAlreadyWritten()
	}
	top := w.top()
	if top.inObject && !top.expectingValue {
		return errCantAddValue()
	}
	return nil
}

func (w *Writer) checkProperty() error {
	if !w.validate {
		return nil
	}
	if w.hasReachedEnd {
		return errAlreadyWritten()
	}
	top := w.top()
	if !top.inObject {
		return errExpectedProperty()
	}
	if top.expectingValue {
		return errCantAddProperty()
	}
	return nil
}

func (w *Writer) checkArrayEnd() error {
	if !w.validate {
		return nil
	}
	if w.hasReachedEnd {
		return errAlreadyWritten()
	}
	if !w.top().inArray {
		return errCantCloseArray()
	}
	return nil
}

func (w *Writer) checkObjectEnd() error {
	if !w.validate {
		return nil
	}
	if w.hasReachedEnd {
		return errAlreadyWritten()
	}
	top := w.top()
	if !top.inObject || top.expectingValue {
		return errCantCloseObject()
	}
	return nil
}

// writeQuoted writes s as a double-quoted, escaped JSON string token.
func (w *Writer) writeQuoted(s string) error {
	if err := w.raw(`"`); err != nil {
		return err
	}
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\f':
			b.WriteString(`\f`)
		case '\b':
			b.WriteString(`\b`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if ch >= 0x20 && ch <= 0x7E {
				b.WriteRune(ch)
			} else if ch > 0xFFFF {
				// Encode as a UTF-16 surrogate pair, each escaped in turn.
				r1, r2 := utf16Pair(ch)
				b.WriteString(escapedHex(r1))
				b.WriteString(escapedHex(r2))
			} else {
				b.WriteString(escapedHex(ch))
			}
		}
	}
	if err := w.raw(b.String()); err != nil {
		return err
	}
	return w.raw(`"`)
}

func escapedHex(v rune) string {
	const hex = "0123456789ABCDEF"
	return string([]byte{
		'\\', 'u',
		hex[(v>>12)&0xF],
		hex[(v>>8)&0xF],
		hex[(v>>4)&0xF],
		hex[v&0xF],
	})
}

// utf16Pair splits a code point outside the basic multilingual plane into
// its UTF-16 surrogate pair.
func utf16Pair(r rune) (rune, rune) {
	r -= 0x10000
	hi := 0xD800 + (r >> 10)
	lo := 0xDC00 + (r & 0x3FF)
	return hi, lo
}

func errAlreadyWritten() *Error {
	return errorf("A complete JSON symbol has already been written")
}

func errCantAddValue() *Error {
	return errorf("Can't add a value here")
}

func errExpectedProperty() *Error {
	return errorf("Expected a property")
}

func errCantAddProperty() *Error {
	return errorf("Can't add a property here")
}

func errCantCloseArray() *Error {
	return errorf("Can't close an array here")
}

func errCantCloseObject() *Error {
	return errorf("Can't close an object here")
}
