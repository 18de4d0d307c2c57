package main

import (
	"errors"
	"fmt"
	"strings"
)

// Expr is an operand of a Node: a Token or a *Node.
type Expr interface {
	expr()
}

// Stmt is an element of a function or block body: a *Node or a *Block.
type Stmt interface {
	stmt()
	line() int
}

// Decl is a top-level declaration: a `use` *Node or a *Function.
type Decl interface {
	decl()
}

// Node is a binary operation. Left and Right are nil when the operator
// takes no such operand (`return`, `break`, `use`, a call without
// arguments).
type Node struct {
	Op    Token
	Line  int
	Left  Expr
	Right Expr
}

func (*Node) expr()       {}
func (*Node) stmt()       {}
func (*Node) decl()       {}
func (n *Node) line() int { return n.Line }

// NewNode builds a Node. The operator must be an operator-class token
// (operator, keyword or the comma separator) and the line positive.
func NewNode(op Token, line int, left, right Expr) (*Node, error) {
	switch {
	case op.Kind == KindOperator, op.Kind == KindKeyword, op == Comma:
	case op.Kind == "":
		return nil, errors.New("node's operator cannot be empty")
	default:
		return nil, fmt.Errorf("node's operator must be an operator, got %s", op)
	}
	if line <= 0 {
		return nil, fmt.Errorf("node's line number must be greater than zero, got %d", line)
	}
	return &Node{Op: op, Line: line, Left: left, Right: right}, nil
}

// Clone deep-copies the node and every node below it. Tokens are values and
// are shared.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	c.Left = cloneExpr(n.Left)
	c.Right = cloneExpr(n.Right)
	return &c
}

func cloneExpr(e Expr) Expr {
	if n, ok := e.(*Node); ok {
		return n.Clone()
	}
	return e
}

// Block is an if/while/else construct. Next chains an `if` to its `else`,
// which may itself be an `if` (that is how elif is modelled).
type Block struct {
	Op        Token
	Condition Expr
	Body      []Stmt
	Line      int
	Next      *Block
}

func (*Block) stmt()       {}
func (b *Block) line() int { return b.Line }

// NewBlock builds a Block. Only an `else` block has no condition, and a
// `while` block never chains to another block.
func NewBlock(op Token, cond Expr, body []Stmt, line int, next *Block) (*Block, error) {
	switch op {
	case If, While:
		if cond == nil {
			return nil, fmt.Errorf("%s block needs a condition", op.Name())
		}
	case Else:
		if cond != nil {
			return nil, errors.New("else block cannot have a condition")
		}
	default:
		return nil, fmt.Errorf("block's operator must be if, while or else, got %s", op)
	}
	if op == While && next != nil {
		return nil, errors.New("while block cannot chain to another block")
	}
	if body == nil {
		body = []Stmt{}
	}
	if line <= 0 {
		return nil, fmt.Errorf("block's line number must be greater than zero, got %d", line)
	}
	return &Block{Op: op, Condition: cond, Body: body, Line: line, Next: next}, nil
}

// Function is a named, parameterised body. Params are `is` declaration
// nodes, in order.
type Function struct {
	Name   string
	Params []*Node
	Body   []Stmt
	Line   int
}

func (*Function) decl() {}

func NewFunction(name string, params []*Node, body []Stmt, line int) (*Function, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("function's name cannot be empty")
	}
	for _, p := range params {
		if p == nil || p.Op != Create {
			return nil, fmt.Errorf("parameters of %s must be declarations", name)
		}
	}
	if line <= 0 {
		return nil, fmt.Errorf("function's line number must be greater than zero, got %d", line)
	}
	if params == nil {
		params = []*Node{}
	}
	if body == nil {
		body = []Stmt{}
	}
	return &Function{Name: name, Params: params, Body: body, Line: line}, nil
}

// ParamTypes returns the declared type name of every parameter.
func (f *Function) ParamTypes() []string {
	types := make([]string, len(f.Params))
	for i, p := range f.Params {
		if t, ok := p.Right.(Token); ok {
			types[i] = t.Name()
		}
	}
	return types
}

// Program is the parser's output: `use` nodes and functions in source order.
type Program struct {
	Decls []Decl
}

func (p *Program) Functions() []*Function {
	var fns []*Function
	for _, d := range p.Decls {
		if f, ok := d.(*Function); ok {
			fns = append(fns, f)
		}
	}
	return fns
}

func (p *Program) Uses() []*Node {
	var uses []*Node
	for _, d := range p.Decls {
		if n, ok := d.(*Node); ok && n.Op == Use {
			uses = append(uses, n)
		}
	}
	return uses
}
