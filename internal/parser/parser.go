package parser

import (
	"strings"

	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/lexer"
)

// Parse turns one expression string into its tree form:
//
//	<kw> ( <expr> [, <expr>]* )
//
// Atoms come back as *ast.Atom, compound expressions as *ast.Call.
// Brace-delimited arguments are retained raw as *ast.Block; bracketed
// parameter lists stay atoms and are decoded by the code generator.
func Parse(expr string) (ast.Node, *diagnostics.DiagnosticError) {
	expr = strings.TrimSpace(expr)

	// Quoted literals are atoms even when they contain delimiters.
	if strings.HasPrefix(expr, "'") {
		return &ast.Atom{Value: expr}, nil
	}

	if !strings.ContainsAny(expr, "()") {
		return &ast.Atom{Value: expr}, nil
	}

	kw, argstr, ok := strings.Cut(expr, "(")
	if !ok {
		return nil, diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP001, expr)
	}
	kw = strings.TrimSpace(kw)

	argstr = strings.TrimSpace(argstr)
	if !strings.HasSuffix(argstr, ")") {
		return nil, diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP001, expr)
	}
	argstr = argstr[:len(argstr)-1]

	parts, err := lexer.SplitArgs(argstr)
	if err != nil {
		return nil, err
	}

	args := make([]ast.Node, 0, len(parts))
	for _, part := range parts {
		if strings.HasPrefix(part, "{") {
			args = append(args, &ast.Block{Raw: part})
			continue
		}
		node, err := Parse(part)
		if err != nil {
			return nil, err
		}
		args = append(args, node)
	}

	return &ast.Call{Keyword: kw, Args: args}, nil
}

// ParseProgram splits a whole source file and parses every top-level
// expression.
func ParseProgram(source, file string) (*ast.Program, *diagnostics.DiagnosticError) {
	exprs, err := lexer.SplitExpressions(source)
	if err != nil {
		return nil, err
	}

	program := &ast.Program{File: file}
	for _, e := range exprs {
		node, err := Parse(e)
		if err != nil {
			return nil, err
		}
		program.Expressions = append(program.Expressions, node)
	}
	return program, nil
}
