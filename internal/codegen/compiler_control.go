package codegen

import (
	"strings"

	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/lexer"
	"github.com/funvibe/sxpc/internal/parser"
	"github.com/funvibe/sxpc/internal/typesystem"
)

// evalBlockArg handles the explicit block(raw) form.
func (c *Compiler) evalBlockArg(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if err := typesystem.CheckCount("block", len(call.Args), 1); err != nil {
		return asm, typesystem.Undef, err
	}
	blk, ok := call.Args[0].(*ast.Block)
	if !ok {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP003, call.Args[0].String())
	}
	return c.evalBlock(blk.Raw, asm)
}

// blockArg fetches argument i as a block, failing when it isn't one.
func blockArg(call *ast.Call, i int) (*ast.Block, *diagnostics.DiagnosticError) {
	blk, ok := call.Args[i].(*ast.Block)
	if !ok {
		return nil, diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP003, call.Args[i].String())
	}
	return blk, nil
}

// evalBlock opens a scope, evaluates the brace-delimited body with the
// same splitter used at the top level, then unwinds: every owned
// STRING of the closing scope is freed, every slot of the scope is
// popped, and the scope is closed.
func (c *Compiler) evalBlock(raw string, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "{") || !strings.HasSuffix(raw, "}") {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseParser, diagnostics.ErrP003, raw)
	}

	frame := c.symbols.Current()
	frame.PushBlock()

	exprs, serr := lexer.SplitExpressions(raw[1 : len(raw)-1])
	if serr != nil {
		return asm, typesystem.Undef, serr
	}

	for _, e := range exprs {
		node, perr := parser.Parse(e)
		if perr != nil {
			return asm, typesystem.Undef, perr
		}
		var err *diagnostics.DiagnosticError
		asm, _, err = c.Eval(node, asm)
		if err != nil {
			return asm, typesystem.Undef, err
		}
	}

	// Free pass over the closing scope only: owned STRINGs in outer
	// scopes are still owned there and get freed by their own exit.
	// (Moved bindings are already UNDEF, so nothing double-frees.)
	base := frame.SlotBase(frame.BlockDepth() - 1)
	block := frame.CurrentBlock()
	for i, b := range block.Bindings {
		if b.Type == typesystem.String {
			asm = freeSlot(asm, base+i)
		}
	}

	// Slot reclamation, one pop per binding of the scope.
	for range block.Bindings {
		asm = emit(asm, tmplPopLocal)
	}

	frame.PopBlock()

	return asm, typesystem.Block, nil
}

// evalIf compiles if(cond, then) / if(cond, then, else). The else
// marker is emitted even without an else branch; the start template
// jumps there when the condition is false.
func (c *Compiler) evalIf(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if len(call.Args) != 2 && len(call.Args) != 3 {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC001, 2, "if", len(call.Args))
	}

	id := c.nextID()

	asm, t, err := c.Eval(call.Args[0], asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}
	if t != typesystem.Int {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC010, "if", t.String())
	}

	asm = emit(asm, tmplPushResult)
	asm = emit(asm, tmplIfStart, id)

	thenBlk, berr := blockArg(call, 1)
	if berr != nil {
		return asm, typesystem.Undef, berr
	}
	asm, _, err = c.evalBlock(thenBlk.Raw, asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}

	asm = emit(asm, tmplElseStart, id)

	if len(call.Args) == 3 {
		elseBlk, berr := blockArg(call, 2)
		if berr != nil {
			return asm, typesystem.Undef, berr
		}
		asm, _, err = c.evalBlock(elseBlk.Raw, asm)
		if err != nil {
			return asm, typesystem.Undef, err
		}
	}

	asm = emit(asm, tmplIfEnd, id)

	return asm, typesystem.Block, nil
}

// evalWhile compiles while(cond, body). The loop context records the
// scope depth at entry so break/continue know what to unwind.
func (c *Compiler) evalWhile(call *ast.Call, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if err := typesystem.CheckCount("while", len(call.Args), 2); err != nil {
		return asm, typesystem.Undef, err
	}

	id := c.nextID()

	asm = emit(asm, tmplWhileStart, id)

	asm, t, err := c.Eval(call.Args[0], asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}
	if t != typesystem.Int {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC010, "while", t.String())
	}

	asm = emit(asm, tmplPushResult)
	asm = emit(asm, tmplWhileCondition, id)

	c.loopStack = append(c.loopStack, loopContext{
		id:         id,
		blockDepth: c.symbols.Current().BlockDepth(),
	})

	bodyBlk, berr := blockArg(call, 1)
	if berr != nil {
		return asm, typesystem.Undef, berr
	}
	asm, _, err = c.evalBlock(bodyBlk.Raw, asm)
	if err != nil {
		return asm, typesystem.Undef, err
	}

	c.loopStack = c.loopStack[:len(c.loopStack)-1]

	asm = emit(asm, tmplWhileEnd, id)

	return asm, typesystem.Block, nil
}

// evalLoopJump compiles break/continue. Everything declared since the
// innermost loop opened is freed and popped before the jump; the
// compiler-side scopes are left alone, normal block exits still unwind
// them on the paths that fall through.
func (c *Compiler) evalLoopJump(call *ast.Call, sourceOrder []typesystem.Tag, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	kw := call.Keyword

	if err := typesystem.CheckCount(kw, len(sourceOrder), 0); err != nil {
		return asm, typesystem.Undef, err
	}

	if len(c.loopStack) == 0 {
		return asm, typesystem.Undef,
			diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC008, kw)
	}

	loop := c.loopStack[len(c.loopStack)-1]
	frame := c.symbols.Current()

	flat := frame.Flatten()
	base := frame.SlotBase(loop.blockDepth)

	for i := base; i < len(flat); i++ {
		if flat[i].Type == typesystem.String {
			asm = freeSlot(asm, i)
		}
	}
	for i := base; i < len(flat); i++ {
		asm = emit(asm, tmplPopLocal)
	}

	tmpl := tmplWhileBreak
	if kw == "continue" {
		tmpl = tmplWhileContinue
	}
	asm = emit(asm, tmpl, loop.id)

	return asm, typesystem.Block, nil
}
