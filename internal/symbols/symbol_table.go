package symbols

import (
	"github.com/funvibe/sxpc/internal/typesystem"
)

// Binding associates a name with a type and, implicitly, a machine
// stack slot: its position in the frame's flattened block list. A
// STRING binding is retyped to UNDEF when its value is moved away (and
// by the end-of-program sweep), which is what keeps the one-owner rule
// checkable. The frees emitted at block exit, return, break and
// continue leave the binding's type unchanged.
type Binding struct {
	Name string
	Type typesystem.Tag
}

// Param is one declared function parameter.
type Param struct {
	Name string
	Type typesystem.Tag
}

// BlockScope is the ordered list of bindings of one lexical scope.
type BlockScope struct {
	Bindings []*Binding
}

// Frame is the per-function environment: the parameter list, the stack
// of open block scopes, and the declared return type.
type Frame struct {
	Name       string
	Params     []Param
	Blocks     []*BlockScope
	ReturnType typesystem.Tag
}

// PushBlock opens a new empty scope on the frame.
func (f *Frame) PushBlock() {
	f.Blocks = append(f.Blocks, &BlockScope{})
}

// PopBlock closes the innermost scope.
func (f *Frame) PopBlock() {
	f.Blocks = f.Blocks[:len(f.Blocks)-1]
}

// CurrentBlock returns the innermost open scope.
func (f *Frame) CurrentBlock() *BlockScope {
	return f.Blocks[len(f.Blocks)-1]
}

// BlockDepth returns how many scopes are open.
func (f *Frame) BlockDepth() int {
	return len(f.Blocks)
}

// Declare appends a binding to the innermost scope and returns it.
func (f *Frame) Declare(name string, t typesystem.Tag) *Binding {
	b := &Binding{Name: name, Type: t}
	cur := f.CurrentBlock()
	cur.Bindings = append(cur.Bindings, b)
	return b
}

// DeclaredInCurrentBlock reports whether name is already bound in the
// innermost scope.
func (f *Frame) DeclaredInCurrentBlock(name string) bool {
	for _, b := range f.CurrentBlock().Bindings {
		if b.Name == name {
			return true
		}
	}
	return false
}

// Flatten enumerates the frame's bindings in declaration order across
// the whole block stack. The index of a binding in this list is its
// stack slot.
func (f *Frame) Flatten() []*Binding {
	var out []*Binding
	for _, blk := range f.Blocks {
		out = append(out, blk.Bindings...)
	}
	return out
}

// SlotBase returns the slot index of the first binding of the scope at
// blockDepth, i.e. the number of bindings in all scopes below it.
func (f *Frame) SlotBase(blockDepth int) int {
	n := 0
	for _, blk := range f.Blocks[:blockDepth] {
		n += len(blk.Bindings)
	}
	return n
}

// LookupVar finds a variable across all open scopes of the frame and
// returns its flattened slot index and binding. When a name is shadowed
// the innermost occurrence wins; since inner scopes flatten after outer
// ones, that is the last match in declaration order.
func (f *Frame) LookupVar(name string) (int, *Binding, bool) {
	slot := -1
	var found *Binding
	i := 0
	for _, blk := range f.Blocks {
		for _, b := range blk.Bindings {
			if b.Name == name {
				slot = i
				found = b
			}
			i++
		}
	}
	if found == nil {
		return 0, nil, false
	}
	return slot, found, true
}

// LookupParam finds a parameter of the frame by name.
func (f *Frame) LookupParam(name string) (int, typesystem.Tag, bool) {
	for i, p := range f.Params {
		if p.Name == name {
			return i, p.Type, true
		}
	}
	return 0, typesystem.Undef, false
}

// SymbolTable is the frame stack. The bottom frame is the top-level
// program; it is pushed at construction and never popped.
type SymbolTable struct {
	frames []*Frame
}

// TopLevelName is the frame name of the outermost program scope.
const TopLevelName = "main"

// NewSymbolTable creates a table holding only the top-level frame:
// no parameters, one empty block, UNDEF return type.
func NewSymbolTable() *SymbolTable {
	st := &SymbolTable{}
	st.PushFrame(TopLevelName, nil, typesystem.Undef)
	return st
}

// PushFrame opens a new function frame with one empty block scope.
func (st *SymbolTable) PushFrame(name string, params []Param, returnType typesystem.Tag) *Frame {
	f := &Frame{Name: name, Params: params, ReturnType: returnType}
	f.PushBlock()
	st.frames = append(st.frames, f)
	return f
}

// PopFrame closes the current function frame.
func (st *SymbolTable) PopFrame() {
	st.frames = st.frames[:len(st.frames)-1]
}

// Current returns the innermost frame.
func (st *SymbolTable) Current() *Frame {
	return st.frames[len(st.frames)-1]
}

// Depth returns the number of open frames.
func (st *SymbolTable) Depth() int {
	return len(st.frames)
}
