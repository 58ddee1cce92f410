// Package ast defines the abstract syntax tree and semantic type model
// shared by the parser, the type annotator, and the code generator.
package ast

// NodeKind identifies what an AST node represents.
type NodeKind int

const (
	// Add is a binary '+' expression.
	Add NodeKind = iota
	// Sub is a binary '-' expression.
	Sub
	// Mul is a binary '*' expression.
	Mul
	// Div is a binary '/' expression.
	Div
	// Neg is a unary '-' expression, rewritten at parse time as 0 - x.
	Neg
	// Eq is a binary '==' comparison.
	Eq
	// Ne is a binary '!=' comparison.
	Ne
	// Lt is a binary '<' comparison.
	Lt
	// Le is a binary '<=' comparison.
	Le
	// Gt is a binary '>' comparison.
	Gt
	// Ge is a binary '>=' comparison.
	Ge
	// Assign is a binary '=' expression; Left is the lvalue, Right the value.
	Assign
	// Deref is a unary '*' pointer-dereference expression.
	Deref
	// Addr is a unary '&' address-of expression.
	Addr
	// Num is an integer literal.
	Num
	// Lvar is a reference to a local variable or parameter.
	Lvar
	// Gvar is a reference to a global variable.
	Gvar
	// Return is a "return expr;" statement.
	Return
	// If is an "if (cond) then [else Else]" statement.
	If
	// Else pairs a then/else branch under an If node's Right child.
	Else
	// While is a "while (cond) body" statement.
	While
	// For is a "for (init; cond; step) body" statement, represented as
	// three nested For nodes (see the parser's forStmt).
	For
	// Block is a brace-delimited statement list.
	Block
	// Func is a call expression whose Children hold its argument
	// expressions. Function definitions are not Nodes; see the Func type.
	Func
	// VarDef is a local variable declaration.
	VarDef
	// GVarDef is a global variable declaration.
	GVarDef
)

// Node is a single AST node. Every expression node is given a non-nil
// Type by the end of the type-annotation pass.
type Node struct {
	Kind NodeKind

	Left  *Node
	Right *Node

	// Name holds the identifier for Lvar/Gvar/VarDef/GVarDef/Func nodes.
	Name string

	// Val holds the literal value for Num nodes.
	Val int32

	// Offset holds the local stack offset for Lvar/VarDef nodes, or the
	// storage size for Gvar/GVarDef nodes. It mirrors the symbol-table
	// entry at resolution time and never changes thereafter.
	Offset int32

	// Type is the semantic type of this node, assigned either at
	// construction (literals, variable references, calls) or by the
	// type-annotation pass (composite expressions).
	Type *Type

	// Children holds a call's argument expressions (Func) or a block's
	// statement list (Block).
	Children []*Node
}

// Func is the top-level definition of a single function: its parameter
// list, its body, and the high-water mark of its local frame.
type Func struct {
	Name   string
	Params []*Node // VarDef nodes
	Body   []*Node
	// FrameSize is last_local_offset + 8 (0 if the body declared no
	// locals or parameters), per spec's frame-size invariant.
	FrameSize int32
}

// TypeKind distinguishes the three semantic type shapes.
type TypeKind int

const (
	// TyInt is the 4-byte scalar integer type.
	TyInt TypeKind = iota
	// TyPtr is an 8-byte pointer to another Type.
	TyPtr
	// TyArray is a fixed-length sequence of another Type.
	TyArray
)

// Type is a semantic type: Int, Ptr(T), or Array(T, n). The type graph
// is a tree; a Ptr/Array's Elem is owned by it.
type Type struct {
	Kind TypeKind
	Elem *Type // pointee (TyPtr) or element type (TyArray)
	Len  int32 // element count, TyArray only
}

// NewIntType returns the canonical 4-byte int type.
func NewIntType() *Type {
	return &Type{Kind: TyInt}
}

// NewPtrType returns an 8-byte pointer to elem.
func NewPtrType(elem *Type) *Type {
	return &Type{Kind: TyPtr, Elem: elem}
}

// NewArrayType returns an array of length n whose elements have type elem.
func NewArrayType(elem *Type, n int32) *Type {
	return &Type{Kind: TyArray, Elem: elem, Len: n}
}

// Size returns the type's size in bytes.
func (t *Type) Size() int32 {
	switch t.Kind {
	case TyInt:
		return 4
	case TyPtr:
		return 8
	case TyArray:
		return t.Len * t.Elem.Size()
	}
	return 0
}

// IsPointerLike reports whether a value of this type decays to an
// address rather than behaving as a plain scalar — true for both
// pointers and arrays.
func (t *Type) IsPointerLike() bool {
	return t.Kind == TyPtr || t.Kind == TyArray
}
