package codegen

import (
	"fmt"
	"strings"
)

// The template bank. Every fragment of emitted assembly comes from
// here; the evaluator only ever appends template substitutions. The
// target is 32-bit x86 in GAS syntax on a Linux int $0x80 ABI.
//
// Calling convention for emitted code: expression results live in
// %eax; call arguments are pushed right-to-left in source order (the
// evaluator walks them in reverse) so the callee sees the first
// argument nearest the return address. Runtime extensions do not clean
// their arguments, except free_str which pops the 4 bytes it is given.

const tmplHead = `# assembled with: as --32 -o out.o out.asm && ld -m elf_i386 -o out out.o libsxr.a
# sxpc %s  build %s

`

const tmplDataPreamble = ".section .data\n\n"

const tmplDataString = "%s:\n  .asciz \"%s\"\n"

const tmplTextPreamble = "\n.section .text\n.globl _start\n\n"

const tmplBuiltinExit = `builtin_exit:
  movl $1, %eax
  int $0x80

`

const tmplStart = `_start:
  movl %esp, %ebp

`

const tmplDefaultExit = `
  movl $0, %ebx
  jmp builtin_exit
`

const tmplLiteral = "  movl $%s, %%eax\n"

const tmplPushResult = "  pushl %eax\n"

const tmplPopLocal = "  addl $4, %esp\n"

const tmplClearStack = "  addl $%d, %%esp\n"

const tmplGetLocal = "  movl -%d(%%ebp), %%eax\n"

const tmplGetParam = "  movl %d(%%ebp), %%eax\n"

const tmplStoreLocal = "  popl %%eax\n  movl %%eax, -%d(%%ebp)\n"

const tmplIncLocal = "  incl -%d(%%ebp)\n"

const tmplDecLocal = "  decl -%d(%%ebp)\n"

const tmplFunctionStart = "%s:\n  pushl %%ebp\n  movl %%esp, %%ebp\n"

const tmplFunctionEnd = "  movl %%ebp, %%esp\n  popl %%ebp\n  ret\n  # end of %s\n\n"

const tmplReturn = "  movl %ebp, %esp\n  popl %ebp\n  ret\n"

const tmplFunctionCall = "  call %s  # %d arg bytes, cleared below\n"

const tmplCallExtension = "  call %s\n"

const tmplExit = "  popl %ebx\n  jmp builtin_exit\n"

const tmplIfStart = "  popl %%eax\n  testl %%eax, %%eax\n  jz else_%d\n"

const tmplElseStart = "  jmp endif_%[1]d\nelse_%[1]d:\n"

const tmplIfEnd = "endif_%d:\n"

const tmplWhileStart = "while_%d:\n"

const tmplWhileCondition = "  popl %%eax\n  testl %%eax, %%eax\n  jz endwhile_%d\n"

const tmplWhileEnd = "  jmp while_%[1]d\nendwhile_%[1]d:\n"

const tmplWhileBreak = "  jmp endwhile_%d\n"

const tmplWhileContinue = "  jmp while_%d\n"

const tmplCheckOverflow = "  movl $0, %%eax\n  jno no_oflow_%[1]d\n  movl $1, %%eax\nno_oflow_%[1]d:\n"

// binaries pop the first source argument into %eax, the second into
// %ebx, and leave the result in %eax.
var binaries = map[string]string{
	"add": "  popl %eax\n  popl %ebx\n  addl %ebx, %eax\n",
	"sub": "  popl %eax\n  popl %ebx\n  subl %ebx, %eax\n",
	"mul": "  popl %eax\n  popl %ebx\n  imull %ebx, %eax\n",
	"div": "  popl %eax\n  popl %ebx\n  cltd\n  idivl %ebx\n",
	"mod": "  popl %eax\n  popl %ebx\n  cltd\n  idivl %ebx\n  movl %edx, %eax\n",
}

var unaries = map[string]string{
	"neg": "  popl %eax\n  negl %eax\n",
}

// comparisons map the operator to its conditional jump; the fragment is
// built by tmplComparison with a fresh id for the internal labels.
var comparisons = map[string]string{
	"eq": "je",
	"ne": "jne",
	"lt": "jl",
	"gt": "jg",
	"le": "jle",
	"ge": "jge",
}

const tmplComparison = `  popl %%eax
  popl %%ebx
  cmpl %%ebx, %%eax
  %s cmp_true_%[2]d
  movl $0, %%eax
  jmp cmp_end_%[2]d
cmp_true_%[2]d:
  movl $1, %%eax
cmp_end_%[2]d:
`

const tmplLogicalAnd = `  popl %%eax
  popl %%ebx
  testl %%eax, %%eax
  jz logic_false_%[1]d
  testl %%ebx, %%ebx
  jz logic_false_%[1]d
  movl $1, %%eax
  jmp logic_end_%[1]d
logic_false_%[1]d:
  movl $0, %%eax
logic_end_%[1]d:
`

const tmplLogicalOr = `  popl %%eax
  popl %%ebx
  testl %%eax, %%eax
  jnz logic_true_%[1]d
  testl %%ebx, %%ebx
  jnz logic_true_%[1]d
  movl $0, %%eax
  jmp logic_end_%[1]d
logic_true_%[1]d:
  movl $1, %%eax
logic_end_%[1]d:
`

const tmplLogicalNot = `  popl %%eax
  testl %%eax, %%eax
  jz logic_true_%[1]d
  movl $0, %%eax
  jmp logic_end_%[1]d
logic_true_%[1]d:
  movl $1, %%eax
logic_end_%[1]d:
`

// escapeDataString quotes a literal for .asciz. Backslash escapes from
// the source (\n in particular) pass through for GAS to interpret.
func escapeDataString(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}

func localOffset(slot int) int { return 4 + slot*4 }

func paramOffset(slot int) int { return 8 + slot*4 }

// sprintf is fmt.Sprintf behind a variable indirection so that go vet's
// printf-wrapper inference does not treat emit as a printf wrapper: the
// templates in this file are x86 assembly and legitimately contain literal
// '%' register sigils (e.g. %eax) that are not format verbs.
var sprintf = fmt.Sprintf

func emit(asm, template string, args ...interface{}) string {
	if len(args) == 0 {
		return asm + template
	}
	return asm + sprintf(template, args...)
}
