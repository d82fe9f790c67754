package parser

import (
	"github.com/funvibe/sxpc/internal/pipeline"
)

// Processor is the parse stage: it splits the source into top-level
// expressions and parses each one.
type Processor struct{}

func (p Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	program, err := ParseProgram(ctx.SourceCode, ctx.FilePath)
	if err != nil {
		ctx.AddError(err)
		return ctx
	}
	ctx.Program = program
	return ctx
}
