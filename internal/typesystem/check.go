package typesystem

import (
	"github.com/funvibe/sxpc/internal/diagnostics"
)

// Check validates observed argument types against a fingerprint.
// observed must already be in source order (see Reversed). The error
// names the operator and the 1-based offending argument position.
func Check(op string, observed []Tag, fp Fingerprint) *diagnostics.DiagnosticError {
	if len(observed) != len(fp) {
		return diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001,
			len(fp), op, len(observed))
	}

	for i, want := range fp {
		if !want.Contains(observed[i]) {
			return diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC002,
				op, i+1, want.String(), observed[i].String())
		}
	}

	return nil
}

// CheckCount validates only the argument count.
func CheckCount(op string, got, want int) *diagnostics.DiagnosticError {
	if got != want {
		return diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001,
			want, op, got)
	}
	return nil
}
