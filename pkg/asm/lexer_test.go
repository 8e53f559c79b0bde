package asm

import (
	"reflect"
	"testing"
)

func TestStripComment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  SET R1 5  ; load", "SET R1 5"},
		{"; only a comment", ""},
		{"", ""},
		{"\tHLT\t", "HLT"},
		{"NOP ; a ; b", "NOP"},
	}
	for _, tc := range tests {
		if got := StripComment(tc.in); got != tc.want {
			t.Errorf("StripComment(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"set r1 5", []string{"SET", "R1", "5"}},
		{"  add\tR1   r2 ", []string{"ADD", "R1", "R2"}},
		{"", []string{}},
	}
	for _, tc := range tests {
		got := Tokenize(tc.in)
		if len(got) == 0 && len(tc.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Tokenize(%q) = %q; want %q", tc.in, got, tc.want)
		}
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"5", 5, true},
		{"255", 255, true},
		{"0x10", 16, true},
		{"0XfF", 255, true},
		{"-3", -3, true},
		{"0x", 0, false},
		{"", 0, false},
		{"LOOP", 0, false},
		{"12AB", 0, false},
	}
	for _, tc := range tests {
		got, ok := parseNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("parseNumber(%q) = %d, %v; want %d, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
