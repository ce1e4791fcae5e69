// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package corejson implements a streaming JSON lexer, a pull-style parser,
// and a validating writer. It carries no dynamically-typed document model
// and performs no reflection; each piece is a small, independently usable
// building block for a higher-level JSON library to assemble.
//
// # Lexing
//
// The Lexer type implements a character-driven lexical scanner for JSON.
// Construct one from a CharSource and call NextToken to iterate over the
// token stream:
//
//	lex := corejson.NewLexerFromReader(input)
//	for {
//	  ok, err := lex.NextToken()
//	  if err != nil {
//	    log.Fatalf("Lexing failed: %v", err)
//	  } else if !ok {
//	    break
//	  }
//	  log.Printf("Next token: %v", lex.Token())
//	}
//
// A Lexer recognizes a JSON string as three terminals in sequence -- an
// opening Quote, a CharSeq carrying its already-decoded text, and a closing
// Quote -- rather than as a single monolithic string token, so a caller can
// tell an object member's key apart from an ordinary string value without
// the Lexer itself knowing anything about grammar.
//
// # Reading
//
// The Reader type implements a pull parser built on top of a Lexer: each
// call to Read advances an internal LL(1) automaton and returns a single
// token Event, or reports an error of concrete type *corejson.Error.
//
//	r := corejson.NewReaderFromReader(input)
//	for {
//	  ok, err := r.Read()
//	  if err != nil {
//	    log.Fatalf("Read failed: %v", err)
//	  } else if !ok {
//	    break
//	  }
//	  log.Printf("Event: %v", r.Event())
//	}
//
// Numbers are classified into the narrowest exact representation the Reader
// can produce: Int for values that fit in a signed 32-bit integer, Long for
// values that need a signed or unsigned 64-bit integer, and Double for any
// lexeme with a fraction or exponent.
//
// # Writing
//
// The Writer type renders value and structural calls to a CharSink,
// validating their ordering against a stack of context frames so that, for
// example, a value cannot be written where a property name was expected:
//
//	w := corejson.NewWriterToWriter(output)
//	w.WriteObjectStart()
//	w.WriteProperty("a")
//	w.WriteInt32(1)
//	w.WriteObjectEnd()
//
// Setting PrettyPrint(true) makes the Writer indent nested structure and
// align property-name colons within each object to the widest name seen so
// far in that object.
package corejson
