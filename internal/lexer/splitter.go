package lexer

import (
	"strings"

	"github.com/funvibe/sxpc/internal/diagnostics"
)

const commentChar = ';'

// balance tracks delimiter nesting and single-quote string state while
// walking source text. The same tracker drives top-level expression
// splitting, argument splitting, and block-body splitting.
type balance struct {
	paren   int
	brace   int
	bracket int
	inStr   bool
}

func (b *balance) step(c rune) {
	if b.inStr {
		if c == '\'' {
			b.inStr = false
		}
		return
	}

	switch c {
	case '\'':
		b.inStr = true
	case '(':
		b.paren++
	case ')':
		b.paren--
	case '{':
		b.brace++
	case '}':
		b.brace--
	case '[':
		b.bracket++
	case ']':
		b.bracket--
	}
}

func (b *balance) atTopLevel() bool {
	return !b.inStr && b.paren == 0 && b.brace == 0 && b.bracket == 0
}

func (b *balance) check(src string) *diagnostics.DiagnosticError {
	switch {
	case b.inStr:
		return diagnostics.NewPhaseError(diagnostics.PhaseSplitter, diagnostics.ErrS004, src)
	case b.paren != 0:
		return diagnostics.NewPhaseError(diagnostics.PhaseSplitter, diagnostics.ErrS001, src)
	case b.brace != 0:
		return diagnostics.NewPhaseError(diagnostics.PhaseSplitter, diagnostics.ErrS002, src)
	case b.bracket != 0:
		return diagnostics.NewPhaseError(diagnostics.PhaseSplitter, diagnostics.ErrS003, src)
	}
	return nil
}

// StripComments removes ';' line comments. Comment markers inside
// single-quoted strings are kept.
func StripComments(program string) string {
	var out strings.Builder
	inStr := false
	inComment := false

	for _, c := range program {
		if inComment {
			if c == '\n' {
				inComment = false
			}
			continue
		}
		if c == '\'' {
			inStr = !inStr
		}
		if c == commentChar && !inStr {
			inComment = true
			continue
		}
		out.WriteRune(c)
	}
	return out.String()
}

// SplitExpressions splits a program (or a block body) into a list of
// expression strings. An expression ends at the ')' that returns the
// paren depth to zero while no brace, bracket or string is open.
func SplitExpressions(program string) ([]string, *diagnostics.DiagnosticError) {
	program = StripComments(program)

	var expressions []string
	var expr strings.Builder
	var bal balance

	for _, c := range program {
		bal.step(c)

		expr.WriteRune(c)

		if c == ')' && bal.atTopLevel() {
			expressions = append(expressions, strings.TrimSpace(expr.String()))
			expr.Reset()
		}
	}

	if err := bal.check(program); err != nil {
		return nil, err
	}

	// A trailing atom has no closing paren to flush it.
	if rest := strings.TrimSpace(expr.String()); rest != "" {
		expressions = append(expressions, rest)
	}

	return expressions, nil
}

// SplitArgs splits an argument string at the commas that sit outside
// every paren, brace, bracket and string.
func SplitArgs(argstr string) ([]string, *diagnostics.DiagnosticError) {
	var args []string
	var arg strings.Builder
	var bal balance

	for _, c := range argstr {
		if c == ',' && bal.atTopLevel() {
			args = append(args, strings.TrimSpace(arg.String()))
			arg.Reset()
			continue
		}
		bal.step(c)
		arg.WriteRune(c)
	}

	if err := bal.check(argstr); err != nil {
		return nil, err
	}

	if last := strings.TrimSpace(arg.String()); last != "" {
		args = append(args, last)
	}

	return args, nil
}
