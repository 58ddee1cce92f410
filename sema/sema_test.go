package sema

import (
	"testing"

	"github.com/evipepota/evicc/ast"
	"github.com/stretchr/testify/require"
)

func TestAnnotateAssignsLeafAndCompositeTypes(t *testing.T) {
	one := &ast.Node{Kind: ast.Num, Val: 1}
	two := &ast.Node{Kind: ast.Num, Val: 2}
	sum := &ast.Node{Kind: ast.Add, Left: one, Right: two}

	require.NoError(t, Annotate(sum))
	require.Equal(t, ast.TyInt, sum.Type.Kind)
}

func TestAnnotateIsIdempotent(t *testing.T) {
	node := &ast.Node{Kind: ast.Num, Val: 7}
	require.NoError(t, Annotate(node))
	first := node.Type
	require.NoError(t, Annotate(node))
	require.Same(t, first, node.Type)
}

// Dereferencing a plain int has no pointee type to assign: Annotate
// must report it rather than leave node.Type nil for codegen to crash
// on.
func TestAnnotateRejectsDerefOfPlainInt(t *testing.T) {
	x := &ast.Node{Kind: ast.Lvar, Name: "x", Type: ast.NewIntType()}
	deref := &ast.Node{Kind: ast.Deref, Right: x}

	err := Annotate(deref)
	require.Error(t, err)
	require.Equal(t, "no type", err.Error())
}

func TestAnnotateAcceptsDerefOfPointer(t *testing.T) {
	p := &ast.Node{Kind: ast.Lvar, Name: "p", Type: ast.NewPtrType(ast.NewIntType())}
	deref := &ast.Node{Kind: ast.Deref, Right: p}

	require.NoError(t, Annotate(deref))
	require.Equal(t, ast.TyInt, deref.Type.Kind)
}

func TestAnnotateFuncPropagatesDerefError(t *testing.T) {
	x := &ast.Node{Kind: ast.Lvar, Name: "x", Type: ast.NewIntType()}
	deref := &ast.Node{Kind: ast.Deref, Right: x}
	ret := &ast.Node{Kind: ast.Return, Left: deref}

	err := AnnotateFunc(&ast.Func{Name: "main", Body: []*ast.Node{ret}})
	require.Error(t, err)
	require.Equal(t, "no type", err.Error())
}
