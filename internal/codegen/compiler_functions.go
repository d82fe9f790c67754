package codegen

import (
	"strings"

	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/lexer"
	"github.com/funvibe/sxpc/internal/symbols"
	"github.com/funvibe/sxpc/internal/typesystem"
)

// parseParams decodes a bracketed parameter list of the form
// [n1:T1, n2:T2, ...]. The empty list [] is permitted.
func parseParams(raw string) ([]symbols.Param, *diagnostics.DiagnosticError) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil, diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP002, raw)
	}

	parts, err := lexer.SplitArgs(raw[1 : len(raw)-1])
	if err != nil {
		return nil, err
	}

	params := make([]symbols.Param, 0, len(parts))
	for _, part := range parts {
		name, typeName, ok := strings.Cut(part, ":")
		if !ok {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP002, part)
		}
		name = strings.TrimSpace(name)
		typeName = strings.TrimSpace(typeName)

		if !startsWithLetter(name) {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC007, "parameter", name)
		}
		t, ok := typesystem.TagFromName(typeName)
		if !ok {
			return nil, diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC006, typeName)
		}
		params = append(params, symbols.Param{Name: name, Type: t})
	}

	return params, nil
}

// evalFunction compiles function(name, [params], return-type, body).
// The descriptor is registered before the body is compiled so the body
// can call itself. The body is emitted to its own stream; the caller's
// buffer is returned unchanged.
func (c *Compiler) evalFunction(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if err := typesystem.CheckCount("function", len(call.Args), 4); err != nil {
		return asm, typesystem.Undef, err
	}

	name, ok := argName(call.Args[0])
	if !ok || !startsWithLetter(name) {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC007, "function", call.Args[0].String())
	}

	rawParams, ok := argName(call.Args[1])
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP002, call.Args[1].String())
	}
	params, perr := parseParams(rawParams)
	if perr != nil {
		return asm, typesystem.Undef, perr
	}

	rawType, ok := argName(call.Args[2])
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC006, call.Args[2].String())
	}
	returnType, ok := typesystem.TagFromName(strings.TrimSpace(rawType))
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC006, rawType)
	}

	body, berr := blockArg(call, 3)
	if berr != nil {
		return asm, typesystem.Undef, berr
	}

	paramTypes := make([]typesystem.Tag, len(params))
	for i, p := range params {
		paramTypes[i] = p.Type
	}

	// Register before compiling the body: recursion resolves against
	// this descriptor.
	fn := &Function{Name: name, ParamTypes: paramTypes, ReturnType: returnType}
	c.functions[name] = fn
	c.functionSeq = append(c.functionSeq, fn)

	c.symbols.PushFrame(name, params, returnType)

	// The loop stack belongs to the enclosing code; the body starts
	// with none open.
	savedLoops := c.loopStack
	c.loopStack = nil

	fnAsm := emit("", tmplFunctionStart, name)
	fnAsm, _, err := c.evalBlock(body.Raw, fnAsm)
	if err != nil {
		return asm, typesystem.Undef, err
	}
	fnAsm = emit(fnAsm, tmplFunctionEnd, name)
	fn.Body = fnAsm

	c.loopStack = savedLoops
	c.symbols.PopFrame()

	return asm, returnType, nil
}

// evalReturn compiles return(...) against the current frame's declared
// return type. Owned STRING locals of the whole frame are freed first,
// except the one being returned.
func (c *Compiler) evalReturn(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	frame := c.symbols.Current()
	returnType := frame.ReturnType
	fname := frame.Name

	if returnType == typesystem.Undef {
		if len(call.Args) != 0 {
			return asm, typesystem.Undef,
				diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001, 0, "return", len(call.Args))
		}
	} else {
		switch len(call.Args) {
		case 1:
		case 0:
			return asm, typesystem.Undef,
				diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC011,
					fname, returnType.String(), typesystem.Undef.String())
		default:
			return asm, typesystem.Undef,
				diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001, 1, "return", len(call.Args))
		}
	}

	// A returned bare identifier keeps its value alive; everything
	// else the frame owns is freed before control leaves.
	skip := ""
	if len(call.Args) == 1 {
		if name, ok := argName(call.Args[0]); ok {
			skip = name
		}
	}

	for i, b := range frame.Flatten() {
		if b.Type == typesystem.String && b.Name != skip {
			asm = freeSlot(asm, i)
		}
	}

	if len(call.Args) == 1 {
		var t typesystem.Tag
		var err *diagnostics.DiagnosticError
		asm, t, err = c.Eval(call.Args[0], asm)
		if err != nil {
			return asm, typesystem.Undef, err
		}
		if t != returnType {
			return asm, typesystem.Undef,
				diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC011,
					fname, returnType.String(), t.String())
		}
	}

	asm = emit(asm, tmplReturn)

	return asm, returnType, nil
}
