package codegen

import (
	"fmt"
	"unicode"

	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/symbols"
	"github.com/funvibe/sxpc/internal/typesystem"
)

// Function is one registered user-defined function: its parameter
// types, its return type, and the assembly of its compiled body.
// Registration happens before the body is compiled so recursive calls
// resolve.
type Function struct {
	Name       string
	ParamTypes []typesystem.Tag
	ReturnType typesystem.Tag
	Body       string
}

// Literal is one data-section string with its unique label.
type Literal struct {
	Label string
	Text  string
}

// loopContext tracks one open while loop: the label id and how many
// block scopes were live in the current frame when the loop opened, so
// break/continue can free and pop everything declared inside the loop.
type loopContext struct {
	id         int
	blockDepth int
}

// Compiler is the recursive expression evaluator plus all the mutable
// compilation state it drives: the lexical environment, the function
// table, the literal pool, the loop stack and the unique counter.
type Compiler struct {
	symbols *symbols.SymbolTable

	functions   map[string]*Function
	functionSeq []*Function // registration order, for output

	literals []Literal

	loopStack []loopContext

	// uniqueCount feeds every generated label: string literals,
	// if/else, while, comparison and logical short-circuit labels.
	// Strictly increasing for the whole compilation.
	uniqueCount int
}

// NewCompiler creates a compiler with the top-level frame open.
func NewCompiler() *Compiler {
	return &Compiler{
		symbols:   symbols.NewSymbolTable(),
		functions: make(map[string]*Function),
	}
}

// Symbols exposes the lexical environment, mainly for tests.
func (c *Compiler) Symbols() *symbols.SymbolTable { return c.symbols }

// Literals returns the literal pool in emission order.
func (c *Compiler) Literals() []Literal { return c.literals }

// Functions returns the function table in registration order.
func (c *Compiler) Functions() []*Function { return c.functionSeq }

// LookupFunction resolves a registered function by name.
func (c *Compiler) LookupFunction(name string) (*Function, bool) {
	f, ok := c.functions[name]
	return f, ok
}

func (c *Compiler) nextID() int {
	c.uniqueCount++
	return c.uniqueCount
}

func (c *Compiler) addLiteral(text string) string {
	label := fmt.Sprintf("string_%d", c.nextID())
	c.literals = append(c.literals, Literal{Label: label, Text: text})
	return label
}

func startsWithLetter(s string) bool {
	if s == "" {
		return false
	}
	return unicode.IsLetter([]rune(s)[0])
}

// Eval evaluates one expression, appending its assembly to asm and
// returning the extended buffer together with the expression's static
// type.
func (c *Compiler) Eval(node ast.Node, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	switch n := node.(type) {
	case *ast.Atom:
		return c.evalAtom(n, asm)
	case *ast.Block:
		return c.evalBlock(n.Raw, asm)
	case *ast.Call:
		return c.evalCall(n, asm)
	}
	return asm, typesystem.Undef,
		diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrP001, node.String())
}

// evalAtom resolves a bare token: variable, parameter, integer literal
// or string literal, in that order.
func (c *Compiler) evalAtom(a *ast.Atom, asm string) (string, typesystem.Tag, *diagnostics.DiagnosticError) {
	if a.IsEmpty() {
		return asm, typesystem.Undef, nil
	}

	frame := c.symbols.Current()

	if slot, binding, ok := frame.LookupVar(a.Value); ok {
		asm = emit(asm, tmplGetLocal, localOffset(slot))
		return asm, binding.Type, nil
	}

	if slot, t, ok := frame.LookupParam(a.Value); ok {
		asm = emit(asm, tmplGetParam, paramOffset(slot))
		return asm, t, nil
	}

	if a.IsInteger() {
		asm = emit(asm, tmplLiteral, a.Value)
		return asm, typesystem.Int, nil
	}

	if a.IsStringLiteral() {
		label := c.addLiteral(a.StringValue())
		asm = emit(asm, tmplLiteral, label)
		return asm, typesystem.StringLit, nil
	}

	return asm, typesystem.Undef,
		diagnostics.NewPhaseError(diagnostics.PhaseCodegen, diagnostics.ErrC009, a.Value)
}

// freeSlot emits the free sequence for one STRING slot: load it, push
// it, hand it to free_str (which pops its argument).
func freeSlot(asm string, slot int) string {
	asm = emit(asm, tmplGetLocal, localOffset(slot))
	asm = emit(asm, tmplPushResult)
	asm = emit(asm, tmplCallExtension, "free_str")
	return asm
}
