package pipeline

import (
	"github.com/funvibe/sxpc/internal/ast"
	"github.com/funvibe/sxpc/internal/diagnostics"
)

// PipelineContext holds all the data passed between pipeline stages.
type PipelineContext struct {
	SourceCode string
	FilePath   string // Path to the source file (if any)

	// BuildID stamps the emitted artifact and is stored alongside its
	// cache entry (the cache key itself is a hash of the source).
	BuildID string

	Program  *ast.Program
	Assembly string

	Errors []*diagnostics.DiagnosticError

	Verbose bool
}

// NewPipelineContext creates and initializes a new PipelineContext.
func NewPipelineContext(source string) *PipelineContext {
	return &PipelineContext{
		SourceCode: source,
		Errors:     []*diagnostics.DiagnosticError{},
	}
}

// AddError records a stage failure.
func (ctx *PipelineContext) AddError(err *diagnostics.DiagnosticError) {
	ctx.Errors = append(ctx.Errors, err)
}

// Failed reports whether any stage has errored.
func (ctx *PipelineContext) Failed() bool {
	return len(ctx.Errors) > 0
}
