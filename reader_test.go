// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package corejson_test

import (
	"testing"

	"github.com/corejson/corejson"
	"github.com/google/go-cmp/cmp"
)

type ev struct {
	Event corejson.Event
	Str   string
}

func readAll(t *testing.T, input string) []ev {
	t.Helper()
	r := corejson.NewReaderFromString(input)
	var got []ev
	for {
		ok, err := r.Read()
		if err != nil {
			t.Fatalf("input %#q: Read failed: %v", input, err)
		}
		if !ok {
			break
		}
		e := ev{Event: r.Event()}
		switch r.Event() {
		case corejson.PropertyName, corejson.StringValue:
			e.Str = r.StringValue()
		}
		got = append(got, e)
	}
	return got
}

func TestReader(t *testing.T) {
	tests := []struct {
		input string
		want  []ev
	}{
		{`true`, []ev{{Event: corejson.BoolValue}}},
		{`false`, []ev{{Event: corejson.BoolValue}}},
		{`null`, []ev{{Event: corejson.NullValue}}},
		{`"hi"`, []ev{{Event: corejson.StringValue, Str: "hi"}}},
		{`[]`, []ev{{Event: corejson.ArrayStart}, {Event: corejson.ArrayEnd}}},
		{`{}`, []ev{{Event: corejson.ObjectStart}, {Event: corejson.ObjectEnd}}},
		{`[1,2,3]`, []ev{
			{Event: corejson.ArrayStart},
			{Event: corejson.IntValue}, {Event: corejson.IntValue}, {Event: corejson.IntValue},
			{Event: corejson.ArrayEnd},
		}},
		{`{"a":1,"b":"x"}`, []ev{
			{Event: corejson.ObjectStart},
			{Event: corejson.PropertyName, Str: "a"}, {Event: corejson.IntValue},
			{Event: corejson.PropertyName, Str: "b"}, {Event: corejson.StringValue, Str: "x"},
			{Event: corejson.ObjectEnd},
		}},
		{`{"a":[1,{"b":true}]}`, []ev{
			{Event: corejson.ObjectStart},
			{Event: corejson.PropertyName, Str: "a"},
			{Event: corejson.ArrayStart},
			{Event: corejson.IntValue},
			{Event: corejson.ObjectStart},
			{Event: corejson.PropertyName, Str: "b"}, {Event: corejson.BoolValue},
			{Event: corejson.ObjectEnd},
			{Event: corejson.ArrayEnd},
			{Event: corejson.ObjectEnd},
		}},
	}
	for _, test := range tests {
		got := readAll(t, test.input)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("Input: %#q\nEvents: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestReader_numberClassification(t *testing.T) {
	tests := []struct {
		input     string
		event     corejson.Event
		wantInt32 int32
		wantInt64 int64
		wantU64   uint64
		wantFloat float64
	}{
		{"5", corejson.IntValue, 5, 0, 0, 0},
		{"-5", corejson.IntValue, -5, 0, 0, 0},
		{"2147483647", corejson.IntValue, 2147483647, 0, 0, 0},
		{"2147483648", corejson.LongValue, 0, 2147483648, 0, 0},
		{"9223372036854775807", corejson.LongValue, 0, 9223372036854775807, 0, 0},
		{"18446744073709551615", corejson.LongValue, 0, 0, 18446744073709551615, 0},
		{"2.5", corejson.DoubleValue, 0, 0, 0, 2.5},
		{"5e3", corejson.DoubleValue, 0, 0, 0, 5000},
	}
	for _, test := range tests {
		r := corejson.NewReaderFromString(test.input)
		ok, err := r.Read()
		if err != nil || !ok {
			t.Fatalf("input %q: Read failed: ok=%v err=%v", test.input, ok, err)
		}
		if r.Event() != test.event {
			t.Errorf("input %q: Event = %v, want %v", test.input, r.Event(), test.event)
		}
		switch test.event {
		case corejson.IntValue:
			if got := r.Int32Value(); got != test.wantInt32 {
				t.Errorf("input %q: Int32Value = %d, want %d", test.input, got, test.wantInt32)
			}
		case corejson.LongValue:
			if test.wantU64 != 0 {
				if got := r.Uint64Value(); got != test.wantU64 {
					t.Errorf("input %q: Uint64Value = %d, want %d", test.input, got, test.wantU64)
				}
			} else if got := r.Int64Value(); got != test.wantInt64 {
				t.Errorf("input %q: Int64Value = %d, want %d", test.input, got, test.wantInt64)
			}
		case corejson.DoubleValue:
			if got := r.Float64Value(); got != test.wantFloat {
				t.Errorf("input %q: Float64Value = %v, want %v", test.input, got, test.wantFloat)
			}
		}
	}
}

func TestReader_malformed(t *testing.T) {
	tests := []string{
		`{`, `}`, `[`, `]`, `{"a"}`, `{"a":1,}`, `[1,]`, `{1:2}`, `truee`, ``,
	}
	for _, input := range tests {
		r := corejson.NewReaderFromString(input)
		var lastErr error
		for {
			ok, err := r.Read()
			if err != nil {
				lastErr = err
				break
			}
			if !ok {
				break
			}
		}
		if lastErr == nil {
			t.Errorf("input %#q: got no error, want one", input)
		}
	}
}

func TestReader_reuse(t *testing.T) {
	r := corejson.NewReaderFromString(`1 2`)

	got1 := readAll1(t, r)
	if diff := cmp.Diff([]ev{{Event: corejson.IntValue}}, got1); diff != "" {
		t.Errorf("first document: (-want, +got)\n%s", diff)
	}
	got2 := readAll1(t, r)
	if diff := cmp.Diff([]ev{{Event: corejson.IntValue}}, got2); diff != "" {
		t.Errorf("second document: (-want, +got)\n%s", diff)
	}
	ok, err := r.Read()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if ok {
		t.Errorf("Read: got a third document, want none")
	}
}

func readAll1(t *testing.T, r *corejson.Reader) []ev {
	t.Helper()
	var got []ev
	for {
		ok, err := r.Read()
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, ev{Event: r.Event()})
	}
	return got
}
