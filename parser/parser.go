// Package parser implements the recursive-descent parser: it turns a
// token stream into a list of function definitions plus a global symbol
// table, resolving every variable reference to a Lvar/Gvar/VarDef/GVarDef
// node as it goes.
//
// Grounded on the shape of the original parser.rs/ast.rs, restructured
// around this repo's own token and ast packages. Type annotation is
// done by the sema package: the parser runs sema.Annotate on each
// top-level statement of a function body as soon as it is parsed, and
// on sizeof's operand (see unary below).
//
// Grammar (EBNF), one production per parsing method:
//
//	program    = (global | function)*
//	toplevel   = "int" "*"* ident ( function_tail | global_tail )
//	function_tail = "(" params? ")" "{" stmt* "}"
//	params     = param ("," param)*
//	param      = "int" "*"* ident
//	global_tail = ("[" num "]")? ";"
//	stmt       = "return" expr ";"
//	           | "if" "(" expr ")" stmt ("else" stmt)?
//	           | "while" "(" expr ")" stmt
//	           | "for" "(" expr? ";" expr? ";" expr? ")" stmt
//	           | "{" stmt* "}"
//	           | "int" "*"* ident ("[" num "]")? ";"
//	           | expr ";"
//	expr       = assign
//	assign     = equality ("=" assign)?
//	equality   = relational (("==" | "!=") relational)*
//	relational = add (("<" | "<=" | ">" | ">=") add)*
//	add        = mul (("+" | "-") mul)*
//	mul        = unary (("*" | "/") unary)*
//	unary      = ("+" | "-") primary | "*" unary | "&" unary | "sizeof" unary | primary
//	primary    = num | ident ("(" (expr ("," expr)*)? ")")? | ident "[" expr "]" | "(" expr ")"
package parser

import (
	"github.com/evipepota/evicc/ast"
	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/sema"
	"github.com/evipepota/evicc/symtable"
	"github.com/evipepota/evicc/token"
)

// Parser consumes a fixed token slice produced by the lexer.
type Parser struct {
	tokens []token.Token
	pos    int

	globals *symtable.Table
	locals  *symtable.Table // nil while parsing outside any function
}

// New returns a Parser over a complete token stream (the last token
// must be token.EOF).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens, globals: symtable.New()}
}

// Parse consumes the whole program, returning its function definitions
// and the populated global symbol table.
func (p *Parser) Parse() ([]*ast.Func, *symtable.Table, error) {
	var funcs []*ast.Func
	for !p.at(token.EOF) {
		fn, err := p.toplevel()
		if err != nil {
			return nil, nil, err
		}
		if fn != nil {
			funcs = append(funcs, fn)
		}
	}
	return funcs, p.globals, nil
}

// toplevel parses one "int" "*"* ident (function_tail | global_tail),
// returning the parsed function, or nil if it was a global declaration.
func (p *Parser) toplevel() (*ast.Func, error) {
	if !p.at(token.INT) {
		return nil, compileerr.New(p.cur().Offset, "expected function")
	}
	p.advance()
	ptrDepth := p.consumeStars()

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	if p.at(token.LPAREN) {
		return p.function(name)
	}
	return nil, p.globalTail(name, ptrDepth)
}

// function parses function_tail, assuming "int" "*"* ident has already
// been consumed.
func (p *Parser) function(name string) (*ast.Func, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	p.locals = symtable.New()
	defer func() { p.locals = nil }()

	var params []*ast.Node
	if !p.at(token.RPAREN) {
		for {
			param, err := p.param()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.accept(token.COMMA) {
				break
			}
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}

	var body []*ast.Node
	for !p.at(token.RBRACE) {
		stmt, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if err := sema.Annotate(stmt); err != nil {
			return nil, err
		}
		body = append(body, stmt)
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}

	var frameSize int32
	if top := p.locals.Top(); top != nil {
		frameSize = top.Offset + 8
	}

	return &ast.Func{Name: name, Params: params, Body: body, FrameSize: frameSize}, nil
}

// param parses a single "int" "*"* ident and declares it as a local.
func (p *Parser) param() (*ast.Node, error) {
	if err := p.expect(token.INT); err != nil {
		return nil, err
	}
	depth := p.consumeStars()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	ty := pointerType(depth)
	sym, err := p.declareLocal(name, ty)
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.VarDef, Name: name, Offset: sym.Offset, Type: ty}, nil
}

// globalTail parses global_tail, assuming "int" "*"* ident has already
// been consumed.
func (p *Parser) globalTail(name string, ptrDepth int) error {
	var ty *ast.Type
	if ptrDepth == 0 && p.accept(token.LBRACKET) {
		n, err := p.expectNumber()
		if err != nil {
			return err
		}
		if err := p.expect(token.RBRACKET); err != nil {
			return err
		}
		ty = ast.NewArrayType(ast.NewIntType(), n)
	} else {
		ty = pointerType(ptrDepth)
	}
	if err := p.expect(token.SEMI); err != nil {
		return err
	}
	return p.declareGlobal(name, ty)
}

// stmt parses one statement.
func (p *Parser) stmt() (*ast.Node, error) {
	switch {
	case p.accept(token.RETURN):
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Return, Left: e}, nil

	case p.accept(token.IF):
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		then, err := p.stmt()
		if err != nil {
			return nil, err
		}
		if p.accept(token.ELSE) {
			els, err := p.stmt()
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.If, Left: cond, Right: &ast.Node{Kind: ast.Else, Left: then, Right: els}}, nil
		}
		return &ast.Node{Kind: ast.If, Left: cond, Right: then}, nil

	case p.accept(token.WHILE):
		if err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		cond, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		body, err := p.stmt()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.While, Left: cond, Right: body}, nil

	case p.accept(token.FOR):
		return p.forStmt()

	case p.at(token.LBRACE):
		return p.block()

	case p.at(token.INT):
		return p.localDecl()

	default:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.SEMI); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// forStmt parses "for" "(" expr? ";" expr? ";" expr? ")" stmt, assuming
// "for" has already been consumed. The three clauses and the body are
// represented as three nested For nodes, since ast.Node carries only
// Left/Right and not four independent child slots:
//
//	For{Left: init, Right: For{Left: cond, Right: For{Left: step, Right: body}}}
func (p *Parser) forStmt() (*ast.Node, error) {
	if err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var init, cond, step *ast.Node
	var err error
	if !p.at(token.SEMI) {
		if init, err = p.expr(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if !p.at(token.SEMI) {
		if cond, err = p.expr(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.SEMI); err != nil {
		return nil, err
	}
	if !p.at(token.RPAREN) {
		if step, err = p.expr(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}

	body, err := p.stmt()
	if err != nil {
		return nil, err
	}

	innermost := &ast.Node{Kind: ast.For, Left: step, Right: body}
	middle := &ast.Node{Kind: ast.For, Left: cond, Right: innermost}
	return &ast.Node{Kind: ast.For, Left: init, Right: middle}, nil
}

// block parses "{" stmt* "}", assuming "{" has not yet been consumed.
func (p *Parser) block() (*ast.Node, error) {
	if err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []*ast.Node
	for !p.at(token.RBRACE) {
		s, err := p.stmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
	}
	if err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.Block, Children: stmts}, nil
}

// localDecl parses "int" "*"* ident ("[" num "]")? ";", assuming "int"
// has not yet been consumed. Array-of-pointer declarations (ptrDepth > 0
// together with a bracket) are not in the language: when ptrDepth > 0 we
// never attempt the bracket, so a stray "[" there simply fails the
// trailing expect(";") with the usual diagnostic.
func (p *Parser) localDecl() (*ast.Node, error) {
	if err := p.expect(token.INT); err != nil {
		return nil, err
	}
	depth := p.consumeStars()
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	var ty *ast.Type
	if depth == 0 && p.accept(token.LBRACKET) {
		n, err := p.expectNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
		ty = ast.NewArrayType(ast.NewIntType(), n)
	} else {
		ty = pointerType(depth)
	}
	if err := p.expect(token.SEMI); err != nil {
		return nil, err
	}

	sym, err := p.declareLocal(name, ty)
	if err != nil {
		return nil, err
	}
	return &ast.Node{Kind: ast.VarDef, Name: name, Offset: sym.Offset, Type: ty}, nil
}

func (p *Parser) expr() (*ast.Node, error) {
	return p.assign()
}

// assign is right-associative: "a = b = c" parses as a = (b = c).
func (p *Parser) assign() (*ast.Node, error) {
	left, err := p.equality()
	if err != nil {
		return nil, err
	}
	if p.accept(token.ASSIGN) {
		right, err := p.assign()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Assign, Left: left, Right: right}, nil
	}
	return left, nil
}

func (p *Parser) equality() (*ast.Node, error) {
	left, err := p.relational()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(token.EQ):
			right, err := p.relational()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Eq, Left: left, Right: right}
		case p.accept(token.NE):
			right, err := p.relational()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Ne, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) relational() (*ast.Node, error) {
	left, err := p.add()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(token.LT):
			right, err := p.add()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Lt, Left: left, Right: right}
		case p.accept(token.LE):
			right, err := p.add()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Le, Left: left, Right: right}
		case p.accept(token.GT):
			right, err := p.add()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Gt, Left: left, Right: right}
		case p.accept(token.GE):
			right, err := p.add()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Ge, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) add() (*ast.Node, error) {
	left, err := p.mul()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(token.PLUS):
			right, err := p.mul()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Add, Left: left, Right: right}
		case p.accept(token.MINUS):
			right, err := p.mul()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Sub, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func (p *Parser) mul() (*ast.Node, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.accept(token.ASTERISK):
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Mul, Left: left, Right: right}
		case p.accept(token.SLASH):
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			left = &ast.Node{Kind: ast.Div, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

// unary handles the unary operators plus sizeof, which is evaluated
// here at parse time: its operand is built and annotated immediately,
// then discarded in favor of a Num literal carrying its byte size. The
// operand has to be annotated here, since it never makes it into the
// final tree for the per-statement pass to reach.
func (p *Parser) unary() (*ast.Node, error) {
	switch {
	case p.accept(token.PLUS):
		return p.primary()

	case p.accept(token.MINUS):
		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		zero := &ast.Node{Kind: ast.Num, Val: 0, Type: ast.NewIntType()}
		return &ast.Node{Kind: ast.Neg, Left: zero, Right: right}, nil

	case p.accept(token.ASTERISK):
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Deref, Right: right}, nil

	case p.accept(token.AMP):
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.Node{Kind: ast.Addr, Right: right}, nil

	case p.accept(token.SIZEOF):
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		if err := sema.Annotate(operand); err != nil {
			return nil, err
		}
		if operand.Type == nil {
			return nil, compileerr.NewPlain("no type")
		}
		return &ast.Node{Kind: ast.Num, Val: operand.Type.Size(), Type: ast.NewIntType()}, nil

	default:
		return p.primary()
	}
}

func (p *Parser) primary() (*ast.Node, error) {
	if p.accept(token.LPAREN) {
		node, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return node, nil
	}

	tok := p.cur()
	switch tok.Type {
	case token.NUMBER:
		p.advance()
		return &ast.Node{Kind: ast.Num, Val: tok.Value, Type: ast.NewIntType()}, nil

	case token.IDENT:
		name := tok.Literal
		p.advance()

		if p.accept(token.LPAREN) {
			args, err := p.argList()
			if err != nil {
				return nil, err
			}
			return &ast.Node{Kind: ast.Func, Name: name, Type: ast.NewIntType(), Children: args}, nil
		}

		if p.accept(token.LBRACKET) {
			base, err := p.resolveIdent(name)
			if err != nil {
				return nil, err
			}
			idx, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			// a[i] desugars to *(a + i).
			return &ast.Node{Kind: ast.Deref, Right: &ast.Node{Kind: ast.Add, Left: base, Right: idx}}, nil
		}

		return p.resolveIdent(name)

	default:
		return nil, compileerr.NewPlain("expected number or ident")
	}
}

// argList parses (expr ("," expr)*)?, assuming "(" has already been
// consumed; it consumes the closing ")".
func (p *Parser) argList() ([]*ast.Node, error) {
	var args []*ast.Node
	if p.at(token.RPAREN) {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if !p.accept(token.COMMA) {
			break
		}
	}
	if err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// resolveIdent looks name up in the active locals chain first, falling
// back to globals, and builds the matching Lvar/Gvar reference node.
func (p *Parser) resolveIdent(name string) (*ast.Node, error) {
	if p.locals != nil {
		if sym := p.locals.Lookup(name); sym != nil {
			return &ast.Node{Kind: ast.Lvar, Name: name, Offset: sym.Offset, Type: sym.Type}, nil
		}
	}
	if sym := p.globals.Lookup(name); sym != nil {
		return &ast.Node{Kind: ast.Gvar, Name: name, Offset: sym.Offset, Type: sym.Type}, nil
	}
	return nil, compileerr.NewPlain("not declared variable")
}

// declareLocal interns a new local/parameter into the active locals
// chain, assigning its stack offset (the first local at 8 + size, every
// later one at previous_offset + size).
func (p *Parser) declareLocal(name string, ty *ast.Type) (*symtable.Symbol, error) {
	if p.locals.Lookup(name) != nil {
		return nil, compileerr.NewPlain("variable already declared")
	}
	var offset int32
	if top := p.locals.Top(); top != nil {
		offset = top.Offset + ty.Size()
	} else {
		offset = 8 + ty.Size()
	}
	sym := &symtable.Symbol{Name: name, Offset: offset, Type: ty}
	p.locals.Push(sym)
	return sym, nil
}

// declareGlobal interns a new global into the program-wide globals
// chain, recording its total storage size.
func (p *Parser) declareGlobal(name string, ty *ast.Type) error {
	if p.globals.Lookup(name) != nil {
		return compileerr.NewPlain("variable already declared")
	}
	p.globals.Push(&symtable.Symbol{Name: name, Offset: ty.Size(), Type: ty})
	return nil
}

// pointerType wraps Int in depth layers of Ptr.
func pointerType(depth int) *ast.Type {
	ty := ast.NewIntType()
	for i := 0; i < depth; i++ {
		ty = ast.NewPtrType(ty)
	}
	return ty
}

func (p *Parser) consumeStars() int {
	depth := 0
	for p.accept(token.ASTERISK) {
		depth++
	}
	return depth
}

func (p *Parser) cur() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) at(kind token.Type) bool {
	return p.cur().Type == kind
}

func (p *Parser) advance() token.Token {
	tok := p.tokens[p.pos]
	if tok.Type != token.EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(kind token.Type) bool {
	if p.at(kind) {
		p.advance()
		return true
	}
	return false
}

// expect consumes the current token if it matches kind, or fails with a
// caret diagnostic reading "expected '<kind>'" — kind's string value is
// always the token's own literal spelling for every kind passed here.
func (p *Parser) expect(kind token.Type) error {
	if p.accept(kind) {
		return nil
	}
	return compileerr.New(p.cur().Offset, "expected '%s'", kind)
}

// expectIdent consumes an IDENT token and returns its literal name.
func (p *Parser) expectIdent() (string, error) {
	if !p.at(token.IDENT) {
		return "", compileerr.NewPlain("expected number or ident")
	}
	return p.advance().Literal, nil
}

// expectNumber consumes a NUMBER token and returns its value.
func (p *Parser) expectNumber() (int32, error) {
	if !p.at(token.NUMBER) {
		return 0, compileerr.NewPlain("expected number or ident")
	}
	return p.advance().Value, nil
}
