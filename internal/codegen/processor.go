package codegen

import (
	"github.com/funvibe/sxpc/internal/diagnostics"
	"github.com/funvibe/sxpc/internal/pipeline"
)

// Processor is the code generation stage: it evaluates every top-level
// expression into the main assembly buffer, frees what the top-level
// frame still owns, and assembles the final output text.
type Processor struct{}

func (p Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	c := NewCompiler()

	mainAsm := ""
	for _, expr := range ctx.Program.Expressions {
		var err *diagnostics.DiagnosticError
		mainAsm, _, err = c.Eval(expr, mainAsm)
		if err != nil {
			ctx.AddError(err)
			return ctx
		}
	}

	mainAsm = c.FinishProgram(mainAsm)
	ctx.Assembly = c.Assemble(mainAsm, ctx.BuildID)

	return ctx
}
