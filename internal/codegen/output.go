package codegen

import (
	"strings"

	"github.com/funvibe/sxpc/internal/config"
	"github.com/funvibe/sxpc/internal/typesystem"
)

// FinishProgram closes out the top-level frame: any STRING binding
// still owned when the program text ends is freed before the default
// exit runs.
func (c *Compiler) FinishProgram(asm string) string {
	frame := c.symbols.Current()
	for i, b := range frame.Flatten() {
		if b.Type == typesystem.String {
			asm = freeSlot(asm, i)
			b.Type = typesystem.Undef
		}
	}
	return asm
}

// Assemble concatenates the final output file: header, data section
// with the literal pool, text section with the builtin exit routine,
// every compiled function body, the start label and the main assembly,
// closed by the default exit.
func (c *Compiler) Assemble(mainAsm, buildID string) string {
	var out strings.Builder

	out.WriteString(emit("", tmplHead, config.Version, buildID))

	out.WriteString(tmplDataPreamble)
	for _, lit := range c.literals {
		out.WriteString(emit("", tmplDataString, lit.Label, escapeDataString(lit.Text)))
	}

	out.WriteString(tmplTextPreamble)
	out.WriteString(tmplBuiltinExit)

	for _, fn := range c.functionSeq {
		out.WriteString(fn.Body)
	}

	out.WriteString(tmplStart)
	out.WriteString(mainAsm)
	out.WriteString(tmplDefaultExit)

	return out.String()
}
