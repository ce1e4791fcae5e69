// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson

import (
	"io"
	"strconv"
	"strings"
)

// An Event identifies the kind of token most recently produced by a Reader.
type Event int

// Constants defining the valid Event values.
const (
	NoEvent Event = iota

	ObjectStart
	ObjectEnd
	ArrayStart
	ArrayEnd
	PropertyName

	StringValue
	IntValue
	LongValue
	DoubleValue
	BoolValue
	NullValue
)

var eventStr = [...]string{
	NoEvent:      "none",
	ObjectStart:  "ObjectStart",
	ObjectEnd:    "ObjectEnd",
	ArrayStart:   "ArrayStart",
	ArrayEnd:     "ArrayEnd",
	PropertyName: "PropertyName",
	StringValue:  "String",
	IntValue:     "Int",
	LongValue:    "Long",
	DoubleValue:  "Double",
	BoolValue:    "Boolean",
	NullValue:    "Null",
}

func (e Event) String() string {
	v := int(e)
	if v < 0 || v >= len(eventStr) {
		return "unknown"
	}
	return eventStr[v]
}

// symbol is a packed representation of the automaton's grammar symbols: a
// value below symBase is a Terminal (a lexer token); a value at or above
// symBase names one of the nonterminals below.
type symbol int

const symBase symbol = 1 << 8

const (
	symText symbol = symBase + iota
	symObject
	symObjectPrime
	symPair
	symPairRest
	symArray
	symArrayPrime
	symValue
	symValueRest
	symString
	symEnd
)

func termSym(t Terminal) symbol  { return symbol(t) }
func isTerminal(s symbol) bool   { return s < symBase }
func (s symbol) terminal() Terminal { return Terminal(s) }

// parseTable is T[nonterminal][terminal] from the grammar:
//
//	TEXT        -> VALUE
//	VALUE       -> OBJECT | ARRAY | STRING | NUMBER | TRUE | FALSE | NULL
//	STRING      -> '"' CHAR_SEQ '"'
//	OBJECT      -> '{' OBJECT'
//	OBJECT'     -> '}' | PAIR PAIR_REST
//	PAIR        -> STRING ':' VALUE
//	PAIR_REST   -> '}' | ',' PAIR PAIR_REST
//	ARRAY       -> '[' ARRAY'
//	ARRAY'      -> ']' | VALUE VALUE_REST
//	VALUE_REST  -> ']' | ',' VALUE VALUE_REST
var parseTable = map[symbol]map[Terminal][]symbol{
	symText: {
		LBrace:  {symValue},
		LSquare: {symValue},
		Quote:   {symValue},
		Number:  {symValue},
		True:    {symValue},
		False:   {symValue},
		Null:    {symValue},
	},
	symValue: {
		LBrace:  {symObject},
		LSquare: {symArray},
		Quote:   {symString},
		Number:  {termSym(Number)},
		True:    {termSym(True)},
		False:   {termSym(False)},
		Null:    {termSym(Null)},
	},
	symString: {
		Quote: {termSym(Quote), termSym(CharSeq), termSym(Quote)},
	},
	symObject: {
		LBrace: {termSym(LBrace), symObjectPrime},
	},
	symObjectPrime: {
		RBrace: {termSym(RBrace)},
		Quote:  {symPair, symPairRest},
	},
	symPair: {
		Quote: {symString, termSym(Colon), symValue},
	},
	symPairRest: {
		RBrace: {termSym(RBrace)},
		Comma:  {termSym(Comma), symPair, symPairRest},
	},
	symArray: {
		LSquare: {termSym(LSquare), symArrayPrime},
	},
	symArrayPrime: {
		RSquare: {termSym(RSquare)},
		LBrace:  {symValue, symValueRest},
		LSquare: {symValue, symValueRest},
		Quote:   {symValue, symValueRest},
		Number:  {symValue, symValueRest},
		True:    {symValue, symValueRest},
		False:   {symValue, symValueRest},
		Null:    {symValue, symValueRest},
	},
	symValueRest: {
		RSquare: {termSym(RSquare)},
		Comma:   {termSym(Comma), symValue, symValueRest},
	},
}

// A Reader is a pull parser that drives a Lexer through the JSON grammar,
// producing one token Event per call to Read.
type Reader struct {
	lex *Lexer

	ownsSource bool
	closer     io.Closer

	stack []symbol // automaton stack; nil means "awaiting reset for a new document"

	haveTerm bool
	curTerm  Terminal
	lexEOF   bool

	inStringCtx         bool
	pendingPropertyName bool

	endOfJSON   bool
	endOfInput  bool
	skipNonMem  bool

	event   Event
	strVal  string
	boolVal bool
	i32     int32
	i64     int64
	u64     uint64
	f64     float64
}

// NewReader constructs a Reader that pulls terminals from lex.
func NewReader(lex *Lexer) *Reader {
	return &Reader{lex: lex, stack: []symbol{symEnd, symText}, skipNonMem: true}
}

// NewReaderFromReader constructs a Reader over a freshly created Lexer
// reading from r. The Reader owns the resulting Lexer's source; if r
// implements io.Closer, Close releases it.
func NewReaderFromReader(r io.Reader) *Reader {
	rd := NewReader(NewLexerFromReader(r))
	rd.ownsSource = true
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

// NewReaderFromString constructs a Reader over the given JSON text.
func NewReaderFromString(s string) *Reader {
	rd := NewReaderFromReader(strings.NewReader(s))
	rd.ownsSource = true
	return rd
}

// AllowComments configures whether the underlying Lexer recognizes comments.
func (r *Reader) AllowComments(ok bool) { r.lex.AllowComments(ok) }

// AllowSingleQuotedStrings configures whether the underlying Lexer
// recognizes single-quoted strings.
func (r *Reader) AllowSingleQuotedStrings(ok bool) { r.lex.AllowSingleQuotedStrings(ok) }

// SkipNonMembers reports the current setting of the skip-non-members flag.
// The core parser never consults this flag itself; it exists purely so a
// reflection-based mapping layer built atop the Reader can decide whether to
// consume and discard an unrecognized subtree rather than failing.
func (r *Reader) SkipNonMembers() bool { return r.skipNonMem }

// SetSkipNonMembers sets the skip-non-members flag (default true).
func (r *Reader) SetSkipNonMembers(ok bool) { r.skipNonMem = ok }

// Event returns the kind of the token most recently produced by Read.
func (r *Reader) Event() Event { return r.event }

// StringValue returns the decoded value of a String or PropertyName event.
func (r *Reader) StringValue() string { return r.strVal }

// BoolValue returns the value of a BoolValue event.
func (r *Reader) BoolValue() bool { return r.boolVal }

// Int32Value returns the value of an IntValue event.
func (r *Reader) Int32Value() int32 { return r.i32 }

// Int64Value returns the value of a LongValue event backed by a signed
// 64-bit integer, or the truncating conversion of one backed by an
// unsigned 64-bit integer -- call Uint64Value to get the exact value in
// that case.
func (r *Reader) Int64Value() int64 { return r.i64 }

// Uint64Value returns the value of a LongValue event that did not fit in a
// signed 64-bit integer.
func (r *Reader) Uint64Value() uint64 { return r.u64 }

// Float64Value returns the value of a DoubleValue event.
func (r *Reader) Float64Value() float64 { return r.f64 }

// EndOfJSON reports whether the most recently completed document has been
// fully consumed.
func (r *Reader) EndOfJSON() bool { return r.endOfJSON }

// EndOfInput reports whether the underlying character source is exhausted.
func (r *Reader) EndOfInput() bool { return r.endOfInput }

// Close releases the reader's resources. If the Reader owns its character
// source (because it was constructed from a Reader or a string), Close
// releases it.
func (r *Reader) Close() error {
	r.endOfInput = true
	r.endOfJSON = true
	if r.ownsSource && r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// Read advances the parser by one token and reports whether a new token
// Event was produced. It returns false, without error, when the current
// document (or the whole input) is exhausted.
func (r *Reader) Read() (bool, error) {
	r.event = NoEvent
	r.strVal = ""
	r.boolVal = false

	if r.stack == nil {
		// The previous document ended; find out whether there is another one
		// before committing to a fresh parse (a clean end of input here is
		// not an error, unlike a truncation discovered mid-parse below).
		if err := r.ensureTerminal(); err != nil {
			return false, err
		}
		if r.lexEOF {
			r.endOfInput = true
			return false, nil
		}
		r.stack = []symbol{symEnd, symText}
		r.endOfJSON = false
	}

	for {
		if len(r.stack) == 0 {
			r.stack = nil
			r.endOfJSON = true
			return false, nil
		}
		top := r.stack[len(r.stack)-1]
		if top == symEnd {
			r.stack = nil
			r.endOfJSON = true
			return false, nil
		}

		if isTerminal(top) {
			want := top.terminal()
			if err := r.ensureTerminal(); err != nil {
				return false, err
			}
			if r.lexEOF {
				return false, errorf("input doesn't evaluate to proper JSON text")
			}
			if r.curTerm != want {
				return false, errorFromToken(r.curTerm, nil)
			}
			r.stack = r.stack[:len(r.stack)-1]
			r.haveTerm = false
			yield, err := r.consumeTerminal(want)
			if err != nil {
				return false, err
			}
			if yield {
				return true, nil
			}
			continue
		}

		// Nonterminal: pop it, run its side effects, and push its expansion.
		r.stack = r.stack[:len(r.stack)-1]
		if top == symPair {
			r.pendingPropertyName = true
		}
		if err := r.ensureTerminal(); err != nil {
			return false, err
		}
		if r.lexEOF {
			return false, errorf("input doesn't evaluate to proper JSON text")
		}
		prods, ok := parseTable[top]
		if !ok {
			return false, errorf("internal error: no table entry for nonterminal %d", top)
		}
		prod, ok := prods[r.curTerm]
		if !ok {
			return false, errorFromToken(r.curTerm, nil)
		}
		for i := len(prod) - 1; i >= 0; i-- {
			r.stack = append(r.stack, prod[i])
		}
	}
}

// ensureTerminal fetches the next grammar terminal from the lexer if one is
// not already latched, transparently discarding comment tokens.
func (r *Reader) ensureTerminal() error {
	if r.haveTerm {
		return nil
	}
	for {
		ok, err := r.lex.NextToken()
		if err != nil {
			return err
		}
		if !ok {
			r.lexEOF = true
			r.haveTerm = false
			return nil
		}
		t := r.lex.Token()
		if t == LineComment || t == BlockComment {
			continue
		}
		r.curTerm = t
		r.haveTerm = true
		r.lexEOF = false
		return nil
	}
}

// consumeTerminal applies the observable side effects of matching terminal
// t, and reports whether Read should yield to the caller now.
func (r *Reader) consumeTerminal(t Terminal) (bool, error) {
	switch t {
	case LBrace:
		r.event = ObjectStart
		return true, nil
	case RBrace:
		r.event = ObjectEnd
		return true, nil
	case LSquare:
		r.event = ArrayStart
		return true, nil
	case RSquare:
		r.event = ArrayEnd
		return true, nil
	case Comma, Colon:
		return false, nil
	case Quote:
		r.inStringCtx = !r.inStringCtx
		if r.inStringCtx {
			if r.event == NoEvent {
				if r.pendingPropertyName {
					r.event = PropertyName
				} else {
					r.event = StringValue
				}
			}
			return false, nil
		}
		r.pendingPropertyName = false
		return true, nil
	case CharSeq:
		r.strVal = r.lex.StringValue()
		return false, nil
	case True:
		r.event = BoolValue
		r.boolVal = true
		return true, nil
	case False:
		r.event = BoolValue
		r.boolVal = false
		return true, nil
	case Null:
		r.event = NullValue
		return true, nil
	case Number:
		if err := r.classifyNumber(r.lex.StringValue()); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, errorFromToken(t, nil)
	}
}

// classifyNumber inspects the text of a number lexeme and classifies it into
// the narrowest exact numeric representation: Double if it has a fraction
// or exponent, else the smallest of Int, Long (signed), or Long (unsigned)
// that can hold it exactly.
func (r *Reader) classifyNumber(text string) error {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return wrapf(err, "invalid number literal %q", text)
		}
		r.event = DoubleValue
		r.f64 = f
		return nil
	}
	if v, err := strconv.ParseInt(text, 10, 32); err == nil {
		r.event = IntValue
		r.i32 = int32(v)
		return nil
	}
	if v, err := strconv.ParseInt(text, 10, 64); err == nil {
		r.event = LongValue
		r.i64 = v
		return nil
	}
	if v, err := strconv.ParseUint(text, 10, 64); err == nil {
		r.event = LongValue
		r.u64 = v
		r.i64 = int64(v)
		return nil
	}
	return errorf("number literal %q exceeds supported numeric range", text)
}
