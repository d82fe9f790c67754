package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunNoArguments(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(nil, &stdout, &stderr)
	if code == 0 {
		t.Error("missing source file must exit non-zero")
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("expected usage text, got: %s", stderr.String())
	}
}

func TestRunCompilesProgram(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.sx", "var(x, 10) set(x, add(x, 5)) exit(x)")
	out := filepath.Join(dir, "prog.asm")

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "-o", out}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}

	asm, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %s", err)
	}
	for _, needle := range []string{"_start:", ".section .text", "movl $10, %eax"} {
		if !strings.Contains(string(asm), needle) {
			t.Errorf("output missing %q", needle)
		}
	}
}

func TestRunPrintAsm(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.sx", "exit(0)")
	out := filepath.Join(dir, "prog.asm")

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "-o", out, "--print-asm"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit code = %d, stderr: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "_start:") {
		t.Error("--print-asm must dump the assembly to stdout")
	}
}

func TestRunReportsCompileError(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.sx", "set(y, 1)")
	out := filepath.Join(dir, "bad.asm")

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "-o", out}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("compile error must exit non-zero")
	}
	msg := stderr.String()
	if !strings.HasPrefix(msg, "Error:") {
		t.Errorf("error output must start with Error:, got %q", msg)
	}
	if !strings.Contains(msg, "undeclared") {
		t.Errorf("error must reach the user: %q", msg)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("no partial output on error")
	}
}

func TestRunUnbalancedSource(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "bad.sx", "exit(add(1, 2)")

	var stdout, stderr bytes.Buffer
	code := Run([]string{src, "-o", filepath.Join(dir, "bad.asm")}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("unbalanced source must fail")
	}
	if !strings.Contains(stderr.String(), "unbalanced parentheses") {
		t.Errorf("unexpected error: %s", stderr.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run([]string{"no-such-file.sx"}, &stdout, &stderr)
	if code == 0 {
		t.Fatal("missing file must fail")
	}
	if !strings.HasPrefix(stderr.String(), "Error:") {
		t.Errorf("unexpected output: %s", stderr.String())
	}
}

func TestRunWithCache(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.sx", "exit(7)")
	out := filepath.Join(dir, "prog.asm")

	var stdout, stderr bytes.Buffer
	if code := Run([]string{src, "-o", out, "--cache"}, &stdout, &stderr); code != 0 {
		t.Fatalf("first run failed: %s", stderr.String())
	}
	first, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}

	// Second run hits the cache and reproduces the artifact.
	if code := Run([]string{src, "-o", out, "--cache"}, &stdout, &stderr); code != 0 {
		t.Fatalf("second run failed: %s", stderr.String())
	}
	second, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("cached artifact must match the original compilation")
	}
}

func TestProjectConfigOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "prog.sx", "exit(0)")
	writeSource(t, dir, "sxpc.yaml", "output: custom.asm\n")

	var stdout, stderr bytes.Buffer
	if code := Run([]string{src}, &stdout, &stderr); code != 0 {
		t.Fatalf("run failed: %s", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, "custom.asm")); err != nil {
		t.Errorf("output must follow sxpc.yaml: %s", err)
	}
}
