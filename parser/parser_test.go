package parser

import (
	"testing"

	"github.com/evipepota/evicc/ast"
	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/lexer"
	"github.com/evipepota/evicc/token"
	"github.com/stretchr/testify/require"
)

func lex(t *testing.T, src string) []token.Token {
	t.Helper()
	l := lexer.New(src)
	var toks []token.Token
	for {
		tok, err := l.NextToken()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}

func parse(t *testing.T, src string) ([]*ast.Func, error) {
	t.Helper()
	toks := lex(t, src)
	funcs, _, err := New(toks).Parse()
	return funcs, err
}

func TestParseSimpleFunction(t *testing.T) {
	funcs, err := parse(t, `int main() { return 1 + 2 * 3; }`)
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	require.Equal(t, "main", funcs[0].Name)
	require.Equal(t, int32(0), funcs[0].FrameSize)
	require.Len(t, funcs[0].Body, 1)

	ret := funcs[0].Body[0]
	require.Equal(t, ast.Return, ret.Kind)
	require.Equal(t, ast.Add, ret.Left.Kind)
	require.Equal(t, ast.Mul, ret.Left.Right.Kind)
}

func TestParseLocalDeclAndFrameSize(t *testing.T) {
	funcs, err := parse(t, `int main() { int a; int b; a = 1; b = 2; return a + b; }`)
	require.NoError(t, err)
	require.Equal(t, int32(24), funcs[0].FrameSize)
}

func TestRedeclarationIsAnError(t *testing.T) {
	_, err := parse(t, `int main() { int a; int a; return 0; }`)
	require.Error(t, err)
	require.Equal(t, "variable already declared", err.Error())
}

func TestUndeclaredVariableIsAnError(t *testing.T) {
	_, err := parse(t, `int main() { return a; }`)
	require.Error(t, err)
	require.Equal(t, "not declared variable", err.Error())
}

func TestParamsBecomeLocals(t *testing.T) {
	funcs, err := parse(t, `int add(int x, int y) { return x + y; }`)
	require.NoError(t, err)
	require.Len(t, funcs[0].Params, 2)
	require.Equal(t, "x", funcs[0].Params[0].Name)
	require.Equal(t, int32(12), funcs[0].Params[0].Offset)
	require.Equal(t, "y", funcs[0].Params[1].Name)
	require.Equal(t, int32(16), funcs[0].Params[1].Offset)
}

func TestGlobalDeclaration(t *testing.T) {
	toks := lex(t, `int counter; int main() { counter = 1; return counter; }`)
	funcs, globals, err := New(toks).Parse()
	require.NoError(t, err)
	require.Len(t, funcs, 1)
	require.NotNil(t, globals.Lookup("counter"))

	assign := funcs[0].Body[0]
	require.Equal(t, ast.Gvar, assign.Left.Kind)
}

func TestArrayDeclarationAndIndexDesugars(t *testing.T) {
	funcs, err := parse(t, `int main() { int a[3]; a[0] = 1; return a[0]; }`)
	require.NoError(t, err)
	stmt := funcs[0].Body[1]
	require.Equal(t, ast.Assign, stmt.Kind)
	require.Equal(t, ast.Deref, stmt.Left.Kind)
	require.Equal(t, ast.Add, stmt.Left.Right.Kind)
}

func TestPointerDeclaration(t *testing.T) {
	funcs, err := parse(t, `int main() { int *p; int a; p = &a; return *p; }`)
	require.NoError(t, err)
	decl := funcs[0].Body[0]
	require.Equal(t, ast.TyPtr, decl.Type.Kind)
}

func TestArrayOfPointerDeclIsRejected(t *testing.T) {
	_, err := parse(t, `int main() { int *a[3]; return 0; }`)
	require.Error(t, err)
	require.Equal(t, "expected ';'", err.Error())
}

func TestForLoopNesting(t *testing.T) {
	funcs, err := parse(t, `int main() { int i; for (i = 0; i < 10; i = i + 1) i; return i; }`)
	require.NoError(t, err)

	outer := funcs[0].Body[1]
	require.Equal(t, ast.For, outer.Kind)
	require.Equal(t, ast.Assign, outer.Left.Kind) // init

	middle := outer.Right
	require.Equal(t, ast.For, middle.Kind)
	require.Equal(t, ast.Lt, middle.Left.Kind) // cond

	inner := middle.Right
	require.Equal(t, ast.For, inner.Kind)
	require.Equal(t, ast.Assign, inner.Left.Kind) // step
}

func TestIfElse(t *testing.T) {
	funcs, err := parse(t, `int main() { if (1) return 1; else return 2; }`)
	require.NoError(t, err)
	ifNode := funcs[0].Body[0]
	require.Equal(t, ast.If, ifNode.Kind)
	require.Equal(t, ast.Else, ifNode.Right.Kind)
}

func TestSizeofIsEvaluatedToALiteral(t *testing.T) {
	funcs, err := parse(t, `int main() { int a; return sizeof(a); }`)
	require.NoError(t, err)
	ret := funcs[0].Body[1]
	require.Equal(t, ast.Num, ret.Left.Kind)
	require.Equal(t, int32(4), ret.Left.Val)
}

func TestSizeofOfPointer(t *testing.T) {
	funcs, err := parse(t, `int main() { int *p; return sizeof(p); }`)
	require.NoError(t, err)
	ret := funcs[0].Body[1]
	require.Equal(t, int32(8), ret.Left.Val)
}

func TestFunctionCall(t *testing.T) {
	funcs, err := parse(t, `int main() { return add(1, 2); }`)
	require.NoError(t, err)
	call := funcs[0].Body[0].Left
	require.Equal(t, ast.Func, call.Kind)
	require.Equal(t, "add", call.Name)
	require.Len(t, call.Children, 2)
}

func TestMissingSemicolonReportsOffset(t *testing.T) {
	_, err := parse(t, `int main() { return 1 }`)
	require.Error(t, err)
	require.Equal(t, "expected ';'", err.Error())

	var ce *compileerr.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, 22, ce.Offset)
}

func TestExpectedFunctionAtTopLevel(t *testing.T) {
	_, err := parse(t, `1 + 1;`)
	require.Error(t, err)
	require.Equal(t, "expected function", err.Error())
}
