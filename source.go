// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson

import (
	"bufio"
	"io"
)

// A CharSource is the abstract character source consumed by a Lexer or
// Reader. Read returns the next Unicode code point, or the error io.EOF at
// end of input.
// This is the core's only touch point with the host environment's input side;
// the excluded reflection-mapper layer is expected to construct one of these
// from whatever concrete stream it is given.
type CharSource interface {
	Read() (rune, error) // returns io.EOF at end of input
}

// A CharSink is the abstract character sink consumed by a Writer. It mirrors
// CharSource on the output side: WriteRune emits a single code point, and
// WriteString emits a pre-rendered run of text (used to splice in already
// -rendered JSON, e.g. when a value has been pre-serialized upstream).
type CharSink interface {
	WriteRune(rune) error
	WriteString(string) error
}

// readerSource adapts an io.Reader to a CharSource, buffering as the teacher
// scanner does so callers may pass any io.Reader without pre-wrapping it.
type readerSource struct {
	r *bufio.Reader
}

// NewCharSource wraps r in a CharSource.
func NewCharSource(r io.Reader) CharSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &readerSource{r: br}
}

func (rs *readerSource) Read() (rune, error) {
	ch, _, err := rs.r.ReadRune()
	return ch, err
}

// writerSink adapts an io.Writer to a CharSink.
type writerSink struct {
	w io.Writer
}

// NewCharSink wraps w in a CharSink. If w already satisfies CharSink, it is
// returned unchanged.
func NewCharSink(w io.Writer) CharSink {
	if cs, ok := w.(CharSink); ok {
		return cs
	}
	return &writerSink{w: w}
}

func (ws *writerSink) WriteRune(ch rune) error {
	_, err := io.WriteString(ws.w, string(ch))
	return err
}

func (ws *writerSink) WriteString(s string) error {
	_, err := io.WriteString(ws.w, s)
	return err
}
