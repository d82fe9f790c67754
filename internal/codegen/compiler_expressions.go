package codegen

import (
	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/typesystem"
)

// evalCall dispatches a compound expression on its keyword. The
// declaration and control-flow forms are matched first; everything
// else goes through the general call path, which evaluates the
// arguments in reverse source order.
func (c *Compiler) evalCall(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	switch call.Keyword {
	case "var":
		return c.evalVar(call, asm)
	case "set":
		return c.evalSet(call, asm)
	case "block":
		return c.evalBlockArg(call, asm)
	case "if":
		return c.evalIf(call, asm)
	case "while":
		return c.evalWhile(call, asm)
	case "function":
		return c.evalFunction(call, asm)
	case "return":
		return c.evalReturn(call, asm)
	}
	return c.evalGeneralCall(call, asm)
}

// argName extracts a bare identifier argument.
func argName(node ast.Node) (string, bool) {
	a, ok := node.(*ast.Atom)
	if !ok {
		return "", false
	}
	return a.Value, true
}

// evalVar declares a new variable in the innermost block:
// var(name, expr). The initializer's result is left on the machine
// stack as the variable's slot.
func (c *Compiler) evalVar(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if err := typesystem.CheckCount("var", len(call.Args), 2); err != nil {
		return asm, typesystem.Undef, err
	}

	name, ok := argName(call.Args[0])
	if !ok || !startsWithLetter(name) {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC007, "variable", call.Args[0].String())
	}

	frame := c.symbols.Current()
	if frame.DeclaredInCurrentBlock(name) {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC003, name)
	}
	if _, _, ok := frame.LookupParam(name); ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC003, name)
	}

	asm, t, err := c.Eval(call.Args[1], asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}
	if !t.IsValueType() {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC002,
				"var", 2, typesystem.ValueArg.String(), t.String())
	}

	asm = emit(asm, tmplPushResult)

	if t == typesystem.String {
		c.moveFromSource(call.Args[1])
	}

	frame.Declare(name, t)

	return asm, typesystem.Undef, nil
}

// evalSet assigns to an existing variable: set(name, expr). For STRING
// variables the old value is freed before the store and a bare-
// identifier source gives up ownership.
func (c *Compiler) evalSet(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if err := typesystem.CheckCount("set", len(call.Args), 2); err != nil {
		return asm, typesystem.Undef, err
	}

	name, ok := argName(call.Args[0])
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC007, "variable", call.Args[0].String())
	}

	frame := c.symbols.Current()
	slot, binding, found := frame.LookupVar(name)
	if !found {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC004, name)
	}

	asm, t, err := c.Eval(call.Args[1], asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}
	if t != binding.Type {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC002,
				"set", 2, binding.Type.String(), t.String())
	}

	asm = emit(asm, tmplPushResult)

	if t == typesystem.String {
		c.moveFromSource(call.Args[1])
		// The slot still holds the previous string; free it before it
		// is overwritten.
		asm = freeSlot(asm, slot)
	}

	asm = emit(asm, tmplStoreLocal, localOffset(slot))

	return asm, typesystem.Undef, nil
}

// moveFromSource implements move semantics: when the right-hand side
// of var/set is a bare identifier bound to an owned STRING, that
// binding gives up ownership and is retyped UNDEF.
func (c *Compiler) moveFromSource(src ast.Node) {
	name, ok := argName(src)
	if !ok {
		return
	}
	if _, binding, found := c.symbols.Current().LookupVar(name); found {
		if binding.Type == typesystem.String {
			binding.Type = typesystem.Undef
		}
	}
}

// evalGeneralCall handles every remaining keyword: extension calls,
// arithmetic, comparisons, logicals, inc/dec, break/continue, exit and
// user-defined functions. Arguments are evaluated in reverse source
// order, each followed by a push, so the callee pops them first-first.
func (c *Compiler) evalGeneralCall(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	observed := make([]typesystem.Tag, 0, len(call.Args))

	for i := len(call.Args) - 1; i >= 0; i-- {
		var t typesystem.Tag
		var err *diagnostics.DiagnosticError
		asm, t, err = c.Eval(call.Args[i], asm)
		if err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, tmplPushResult)
		observed = append(observed, t)
	}

	// observed is in evaluation order (last source argument first);
	// line it back up with the declared signature.
	sourceOrder := typesystem.Reversed(observed)

	kw := call.Keyword

	switch {
	case kw == "exit":
		return c.evalExit(call, sourceOrder, asm)

	case kw == "inc" || kw == "dec":
		return c.evalIncDec(call, sourceOrder, asm)

	case kw == "break" || kw == "continue":
		return c.evalLoopJump(call, sourceOrder, asm)

	case kw == "check_overflow":
		if err := typesystem.CheckCount(kw, len(sourceOrder), 0); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, tmplCheckOverflow, c.nextID())
		return asm, typesystem.Int, nil
	}

	if b, ok := builtins[kw]; ok {
		return c.evalExtensionCall(call, b, sourceOrder, asm)
	}

	if op, ok := unaries[kw]; ok {
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, op)
		return asm, typesystem.Int, nil
	}

	if op, ok := binaries[kw]; ok {
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int, typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, op)
		return asm, typesystem.Int, nil
	}

	if cc, ok := comparisons[kw]; ok {
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int, typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, tmplComparison, cc, c.nextID())
		return asm, typesystem.Int, nil
	}

	switch kw {
	case "and", "or":
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int, typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
		tmpl := tmplLogicalAnd
		if kw == "or" {
			tmpl = tmplLogicalOr
		}
		asm = emit(asm, tmpl, c.nextID())
		return asm, typesystem.Int, nil
	case "not":
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, tmplLogicalNot, c.nextID())
		return asm, typesystem.Int, nil
	}

	if fn, ok := c.functions[kw]; ok {
		if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(fn.ParamTypes...)); err != nil {
			return asm, typesystem.Undef, err
		}
		asm = emit(asm, tmplFunctionCall, kw, 4*len(call.Args))
		asm = c.freeArguments(call.Args, sourceOrder, asm)
		return asm, fn.ReturnType, nil
	}

	return asm, typesystem.Undef,
		diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC005, kw)
}

// evalExtensionCall checks a builtin's fingerprint, emits the call and
// cleans the pushed arguments.
func (c *Compiler) evalExtensionCall(call *ast.Call, b builtin, sourceOrder []typesystem.Tag, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	kw := call.Keyword

	// println with no argument just prints the line break.
	if kw == "println" && len(call.Args) == 0 {
		asm = emit(asm, tmplCallExtension, kw)
		return asm, typesystem.Undef, nil
	}

	if err := typesystem.Check(kw, sourceOrder, b.fingerprint); err != nil {
		return asm, typesystem.Undef, err
	}

	asm = emit(asm, tmplCallExtension, kw)

	// free_str consumes its argument slot itself.
	if kw != "free_str" {
		asm = c.freeArguments(call.Args, sourceOrder, asm)
	}

	return asm, b.result, nil
}

// evalExit emits the exit epilogue. With no argument a zero status is
// synthesized.
func (c *Compiler) evalExit(call *ast.Call, sourceOrder []typesystem.Tag, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	switch len(call.Args) {
	case 0:
		asm = emit(asm, tmplLiteral, "0")
		asm = emit(asm, tmplPushResult)
	case 1:
		if err := typesystem.Check("exit", sourceOrder, typesystem.Exact(typesystem.Int)); err != nil {
			return asm, typesystem.Undef, err
		}
	default:
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001, 1, "exit", len(call.Args))
	}

	asm = emit(asm, tmplExit)
	return asm, typesystem.Undef, nil
}

// evalIncDec emits the in-place primitive for inc(name)/dec(name). The
// general path already pushed the variable's value; the copy is
// dropped after the in-place update.
func (c *Compiler) evalIncDec(call *ast.Call, sourceOrder []typesystem.Tag, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	kw := call.Keyword

	if err := typesystem.Check(kw, sourceOrder, typesystem.Exact(typesystem.Int)); err != nil {
		return asm, typesystem.Undef, err
	}

	name, ok := argName(call.Args[0])
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC007, "variable", call.Args[0].String())
	}

	slot, _, found := c.symbols.Current().LookupVar(name)
	if !found {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC004, name)
	}

	tmpl := tmplIncLocal
	if kw == "dec" {
		tmpl = tmplDecLocal
	}
	asm = emit(asm, tmpl, localOffset(slot))
	asm = emit(asm, tmplClearStack, 4)

	return asm, typesystem.Undef, nil
}

// freeArguments cleans the argument slots a call left on the stack,
// top (first source argument) first. An owned STRING produced by a
// nested call is an unnamed temporary nothing else will free, so it is
// handed to free_str; named owners and literals are just dropped.
func (c *Compiler) freeArguments(args []ast.Node, sourceOrder []typesystem.Tag, asm string) string {
	for i, arg := range args {
		_, isCompound := arg.(*ast.Call)
		if sourceOrder[i] == typesystem.String && isCompound {
			asm = emit(asm, tmplCallExtension, "free_str")
		} else {
			asm = emit(asm, tmplClearStack, 4)
		}
	}
	return asm
}
