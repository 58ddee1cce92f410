// Package symtable implements the two symbol chains used while parsing:
// one per function for locals, one per program for globals.
//
// Adapted from the teacher's stack package (stack/stack.go): a newest-
// first, singly linked LIFO. Symbol declarations there held plain
// strings and were guarded by a mutex for safe concurrent access; here
// the chain holds *Symbol entries, gains a Lookup, and drops the mutex,
// since the compiler is single-threaded end to end and no goroutine
// ever shares a Table (see spec's concurrency section) — the lock would
// protect against a race that cannot occur in this design.
package symtable

import "github.com/evipepota/evicc/ast"

// Symbol is one declared variable: its name, its storage location, and
// its semantic type.
type Symbol struct {
	Name string
	// Offset is the local stack offset (locals) or storage size
	// (globals), matching ast.Node's Offset field for the
	// corresponding Lvar/Gvar/VarDef/GVarDef node.
	Offset int32
	Type   *ast.Type
}

// Table is a newest-first chain of declared symbols.
type Table struct {
	entries []*Symbol
}

// New returns an empty symbol table.
func New() *Table {
	return &Table{}
}

// Push prepends a new declaration onto the chain. It is the caller's
// responsibility to check Lookup first: redeclaration is a semantic
// error the parser reports, not something Push rejects.
func (t *Table) Push(sym *Symbol) {
	t.entries = append(t.entries, sym)
}

// Lookup walks the chain from most-recently-declared and returns the
// first entry matching name, or nil. Because this compiler has no
// nested local scopes, "first match" is simply "most recent
// declaration."
func (t *Table) Lookup(name string) *Symbol {
	for i := len(t.entries) - 1; i >= 0; i-- {
		if t.entries[i].Name == name {
			return t.entries[i]
		}
	}
	return nil
}

// Empty reports whether the table has no declarations.
func (t *Table) Empty() bool {
	return len(t.entries) == 0
}

// Top returns the most recently declared symbol, or nil if the table is
// empty. For a function's locals table this is the high-water mark used
// to size the stack frame.
func (t *Table) Top() *Symbol {
	if len(t.entries) == 0 {
		return nil
	}
	return t.entries[len(t.entries)-1]
}

// Entries returns every declared symbol in declaration order. Used by
// the code generator to emit one storage slot per global.
func (t *Table) Entries() []*Symbol {
	return t.entries
}
