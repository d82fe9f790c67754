package diagnostics

import (
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewPhaseError(PhaseCodegen, ErrC004, "y")
	msg := err.Error()
	if !strings.Contains(msg, "[codegen]") {
		t.Errorf("message must carry the phase: %s", msg)
	}
	if !strings.Contains(msg, "C004") {
		t.Errorf("message must carry the code: %s", msg)
	}
	if !strings.Contains(msg, "undeclared variable: 'y'") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestErrorWithoutPhase(t *testing.T) {
	err := NewError(ErrC003, "x")
	msg := err.Error()
	if strings.Contains(msg, "[]") {
		t.Errorf("empty phase must not render: %s", msg)
	}
	if !strings.Contains(msg, "Redeclaration Error: 'x'") {
		t.Errorf("unexpected message: %s", msg)
	}
}

func TestSnippetTruncated(t *testing.T) {
	long := strings.Repeat("x", 100)
	err := NewError(ErrC005, "kw").WithSnippet(long)
	msg := err.Error()
	if !strings.Contains(msg, "...") {
		t.Errorf("long snippet must be truncated: %s", msg)
	}
	if strings.Contains(msg, long) {
		t.Error("full snippet must not appear")
	}
}
