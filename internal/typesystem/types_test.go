package typesystem

import (
	"strings"
	"testing"
)

func TestTagNames(t *testing.T) {
	tests := []struct {
		tag  Tag
		name string
	}{
		{Undef, "UNDEF"},
		{Int, "INT"},
		{StringLit, "STRING_LIT"},
		{String, "STRING"},
		{Block, "BLOCK"},
	}
	for _, tt := range tests {
		if tt.tag.String() != tt.name {
			t.Errorf("%v.String() = %q, want %q", tt.tag, tt.tag.String(), tt.name)
		}
	}
}

func TestTagFromName(t *testing.T) {
	for _, name := range []string{"UNDEF", "INT", "STRING_LIT", "STRING"} {
		tag, ok := TagFromName(name)
		if !ok {
			t.Errorf("TagFromName(%q) not found", name)
		}
		if tag.String() != name {
			t.Errorf("TagFromName(%q) = %s", name, tag)
		}
	}

	if _, ok := TagFromName("BLOCK"); ok {
		t.Error("BLOCK must not be declarable")
	}
	if _, ok := TagFromName("FLOAT"); ok {
		t.Error("FLOAT is not a type")
	}
}

func TestTagSet(t *testing.T) {
	s := NewSet(String, StringLit)
	if !s.Contains(String) || !s.Contains(StringLit) {
		t.Error("set should contain both string tags")
	}
	if s.Contains(Int) {
		t.Error("set should not contain INT")
	}
	if got := s.String(); got != "STRING_LIT|STRING" {
		t.Errorf("set String() = %q", got)
	}
}

func TestCheckArity(t *testing.T) {
	err := Check("add", []Tag{Int}, Exact(Int, Int))
	if err == nil {
		t.Fatal("expected arity error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "add") || !strings.Contains(msg, "expected 2 arguments") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestCheckTypeMismatch(t *testing.T) {
	err := Check("Concat", []Tag{String, Int}, Fingerprint{AnyStrArg, AnyStrArg})
	if err == nil {
		t.Fatal("expected type error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "Concat") || !strings.Contains(msg, "argument 2") {
		t.Errorf("unexpected message: %s", msg)
	}
	if !strings.Contains(msg, "INT") {
		t.Errorf("message should name the observed type: %s", msg)
	}
}

func TestCheckOK(t *testing.T) {
	if err := Check("Substr", []Tag{StringLit, Int, Int}, Fingerprint{AnyStrArg, IntArg, IntArg}); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
}

func TestReversed(t *testing.T) {
	in := []Tag{Int, String, StringLit}
	got := Reversed(in)
	want := []Tag{StringLit, String, Int}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Reversed = %v, want %v", got, want)
		}
	}
	// input untouched
	if in[0] != Int {
		t.Error("Reversed must not mutate its input")
	}
}
