// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson_test

import (
	"strings"
	"testing"

	"github.com/corejson/corejson"
	"github.com/google/go-cmp/cmp"
)

func scanAll(t *testing.T, input string) []corejson.Terminal {
	t.Helper()
	lex := corejson.NewLexerFromReader(strings.NewReader(input))
	var got []corejson.Terminal
	for {
		ok, err := lex.NextToken()
		if err != nil {
			t.Fatalf("NextToken failed: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, lex.Token())
	}
	return got
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input string
		want  []corejson.Terminal
	}{
		// Empty inputs
		{"", nil},
		{"  ", nil},
		{"\n\n  \n", nil},
		{"\t  \r\n \t  \r\n", nil},

		// Constants
		{"true false null", []corejson.Terminal{corejson.True, corejson.False, corejson.Null}},

		// Punctuation
		{"{ [ ] } , :", []corejson.Terminal{
			corejson.LBrace, corejson.LSquare, corejson.RSquare, corejson.RBrace, corejson.Comma, corejson.Colon,
		}},

		// Strings (Quote, CharSeq, Quote for each string)
		{`""`, []corejson.Terminal{corejson.Quote, corejson.CharSeq, corejson.Quote}},
		{`"a b c"`, []corejson.Terminal{corejson.Quote, corejson.CharSeq, corejson.Quote}},

		// Numbers
		{`0 -1 5139 2.3 5e+9 3.6E+4 -0.001E-100`, []corejson.Terminal{
			corejson.Number, corejson.Number, corejson.Number,
			corejson.Number, corejson.Number, corejson.Number, corejson.Number,
		}},

		// Mixed types
		{`{true,"false":-15 null[]}`, []corejson.Terminal{
			corejson.LBrace, corejson.True, corejson.Comma,
			corejson.Quote, corejson.CharSeq, corejson.Quote, corejson.Colon,
			corejson.Number, corejson.Null, corejson.LSquare, corejson.RSquare, corejson.RBrace,
		}},
	}

	for _, test := range tests {
		got := scanAll(t, test.input)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestLexer_stringDecoding(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`""`, ""},
		{`"a\nb\tc"`, "a\nb\tc"},
		{`"\"\\\/\b\f\n\r\t"`, "\"\\/\b\f\n\r\t"},
		{`"Aé"`, "Aé"},
	}
	for _, test := range tests {
		lex := corejson.NewLexerFromReader(strings.NewReader(test.input))
		ok, err := lex.NextToken() // opening quote
		if err != nil || !ok || lex.Token() != corejson.Quote {
			t.Fatalf("input %#q: opening quote: ok=%v err=%v tok=%v", test.input, ok, err, lex.Token())
		}
		ok, err = lex.NextToken() // decoded body
		if err != nil || !ok || lex.Token() != corejson.CharSeq {
			t.Fatalf("input %#q: char sequence: ok=%v err=%v tok=%v", test.input, ok, err, lex.Token())
		}
		if got := lex.StringValue(); got != test.want {
			t.Errorf("input %#q: decoded %#q, want %#q", test.input, got, test.want)
		}
		ok, err = lex.NextToken() // closing quote
		if err != nil || !ok || lex.Token() != corejson.Quote {
			t.Fatalf("input %#q: closing quote: ok=%v err=%v tok=%v", test.input, ok, err, lex.Token())
		}
	}
}

func TestLexer_singleQuotedStrings(t *testing.T) {
	lex := corejson.NewLexerFromReader(strings.NewReader(`'it''s'`))
	var got []corejson.Terminal
	for {
		ok, err := lex.NextToken()
		if err != nil {
			t.Fatalf("NextToken failed: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, lex.Token())
	}
	want := []corejson.Terminal{
		corejson.Quote, corejson.CharSeq, corejson.Quote,
		corejson.Quote, corejson.CharSeq, corejson.Quote,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokens: (-want, +got)\n%s", diff)
	}

	lex2 := corejson.NewLexerFromReader(strings.NewReader(`'no'`))
	lex2.AllowSingleQuotedStrings(false)
	if _, err := lex2.NextToken(); err == nil {
		t.Errorf("NextToken: got no error for single-quoted string with the extension disabled")
	}
}

func TestLexer_comments(t *testing.T) {
	tests := []struct {
		input string
		want  []corejson.Terminal
	}{
		{"/* block comment */\n\n\n", []corejson.Terminal{corejson.BlockComment}},
		{"// line 1\n\n// line 2\n", []corejson.Terminal{corejson.LineComment, corejson.LineComment}},
		{"// line at EOF", []corejson.Terminal{corejson.LineComment}},
		{"/**\n*/", []corejson.Terminal{corejson.BlockComment}},
		{`/**/true/***/false/****/null`, []corejson.Terminal{
			corejson.BlockComment, corejson.True,
			corejson.BlockComment, corejson.False,
			corejson.BlockComment, corejson.Null,
		}},
	}
	for _, test := range tests {
		got := scanAll(t, test.input)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nTokens: (-want, +got)\n%s", test.input, diff)
		}
	}

	lex := corejson.NewLexerFromReader(strings.NewReader("/* x */ true"))
	lex.AllowComments(false)
	if _, err := lex.NextToken(); err == nil {
		t.Errorf("NextToken: got no error for comment with comments disabled")
	}
}

func TestLexer_numberErrors(t *testing.T) {
	tests := []string{
		"01", "-01", "01.2", "1.", "1.e5", "1e", "1e+", "--1",
	}
	for _, input := range tests {
		lex := corejson.NewLexerFromReader(strings.NewReader(input))
		if _, err := lex.NextToken(); err == nil {
			t.Errorf("input %#q: NextToken: got no error, want one", input)
		}
	}
}

func TestLexer_unterminatedString(t *testing.T) {
	lex := corejson.NewLexerFromReader(strings.NewReader(`"abc`))
	if _, err := lex.NextToken(); err != nil {
		t.Fatalf("opening quote: unexpected error %v", err)
	}
	if _, err := lex.NextToken(); err == nil {
		t.Errorf("char sequence: got no error for unterminated string")
	}
}
