package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// We try to compile several bogus programs and check the diagnostic
// each produces.
func TestBogusInput(t *testing.T) {
	tests := []struct {
		program string
		errMsg  string
	}{
		{"return 0;", "expected function"},
		{"+", "expected function"},
		{"int main() { return 3 $; }", "invalid token"},
		{"int main() { return 3 3; }", "expected ';'"},
		{"int main() { return a; }", "not declared variable"},
		{"int main() { int a; int a; return 0; }", "variable already declared"},
		{"int main() { int x; return *x; }", "no type"},
		{"int main() { int x; *x = 1; return x; }", "no type"},
	}

	for _, tt := range tests {
		c := New(tt.program)
		_, err := c.Compile()
		require.Error(t, err, "program %q should have failed", tt.program)
		require.Equal(t, tt.errMsg, err.Error(), "program %q", tt.program)
	}
}

func TestCompileSimpleProgram(t *testing.T) {
	c := New(`int main() { return 1 + 2 * 3; }`)
	out, err := c.Compile()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, ".intel_syntax noprefix\n.globl main\n"))
	require.Contains(t, out, "main:")
	require.Contains(t, out, "ret")
}

func TestCompileWithGlobalsAndCalls(t *testing.T) {
	c := New(`
		int total;
		int add(int x, int y) { return x + y; }
		int main() { total = add(1, 2); return total; }
	`)
	out, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, out, ".comm total, 4")
	require.Contains(t, out, "call add")
}

func TestDisassemble(t *testing.T) {
	c := New(`int main() { return 1; }`)
	_, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, c.Disassemble(), "NUMBER")
}

func TestDebugInsertsBreakpoint(t *testing.T) {
	c := New(`int main() { return 1; }`)
	c.SetDebug(true)
	out, err := c.Compile()
	require.NoError(t, err)
	require.Contains(t, out, "int3")
}

func TestTraceDoesNotAffectOutput(t *testing.T) {
	plain := New(`int main() { return 1; }`)
	traced := New(`int main() { return 1; }`)
	traced.SetTrace(true)

	out1, err := plain.Compile()
	require.NoError(t, err)
	out2, err := traced.Compile()
	require.NoError(t, err)
	require.Equal(t, out1, out2)
}
