// Package sema assigns a semantic Type to every expression node in an
// AST, the prerequisite for pointer-aware code generation.
//
// Grounded on the original compiler's add_type pass (sema.rs): a
// post-order walk that is safe to call more than once because it is a
// no-op once a node already carries a Type. Leaf nodes (Num, Lvar, Gvar,
// VarDef, GVarDef, Func) are given their Type at construction time by
// the parser, so Annotate only ever has to compute the composite
// expression kinds below.
package sema

import (
	"github.com/evipepota/evicc/ast"
	"github.com/evipepota/evicc/compileerr"
)

// Annotate walks node's subtree in post order, assigning a Type to every
// node that doesn't already have one.
//
// Note the asymmetry preserved from the original: Add/Sub/Mul/Div and
// Assign all take the LEFT child's type, even when only the right-hand
// side is a pointer (e.g. "1 + p" is typed as Int, the same as its left
// operand). The code generator compensates for this by inspecting both
// operand types directly when deciding whether to scale a pointer
// addition/subtraction — see codegen's pointer-aware Add/Sub handling.
//
// Deref is the one case that can fail outright: its operand must be
// Ptr or Array, since a plain Int has no Elem to dereference into.
// Dereferencing a plain Int (e.g. "*x" where x is int) is accepted by
// the grammar but has no type, so it's rejected here rather than left
// for the code generator to discover as a nil *ast.Type.
func Annotate(node *ast.Node) error {
	if node == nil || node.Type != nil {
		return nil
	}

	if err := Annotate(node.Left); err != nil {
		return err
	}
	if err := Annotate(node.Right); err != nil {
		return err
	}

	switch node.Kind {
	case ast.Num:
		node.Type = ast.NewIntType()

	case ast.Add, ast.Sub, ast.Mul, ast.Div:
		node.Type = node.Left.Type

	case ast.Assign:
		node.Type = node.Left.Type

	case ast.Eq, ast.Ne, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		node.Type = ast.NewIntType()

	case ast.Neg:
		node.Type = node.Right.Type

	case ast.Addr:
		operand := node.Right.Type
		if operand.Kind == ast.TyArray {
			node.Type = ast.NewPtrType(operand.Elem)
		} else {
			node.Type = ast.NewPtrType(operand)
		}

	case ast.Deref:
		operand := node.Right.Type
		if !operand.IsPointerLike() {
			return compileerr.NewPlain("no type")
		}
		node.Type = operand.Elem

	case ast.Func:
		node.Type = ast.NewIntType()

	default:
		// Statement-shaped nodes (Return, If, Else, While, For, Block)
		// carry no semantic type; they are never used as expressions.
	}
	return nil
}

// AnnotateFunc runs Annotate over every statement of a function body.
func AnnotateFunc(fn *ast.Func) error {
	for _, stmt := range fn.Body {
		if err := Annotate(stmt); err != nil {
			return err
		}
	}
	return nil
}
