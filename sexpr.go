package main

import (
	"strings"
)

// ToSExpr converts a token, node, block, function or program to its
// s-expression representation.
func ToSExpr(x any) string {
	var b strings.Builder
	writeSExpr(&b, x)
	return b.String()
}

func writeSExpr(b *strings.Builder, x any) {
	switch x := x.(type) {
	case nil:
		b.WriteString("nil")
	case Token:
		writeTokenSExpr(b, x)
	case *Node:
		if x == nil {
			b.WriteString("nil")
			return
		}
		writeNodeSExpr(b, x)
	case *Block:
		writeBlockSExpr(b, x)
	case *Function:
		b.WriteString("(func ")
		b.WriteString(quoteSExpr(x.Name))
		b.WriteString(" (params")
		for _, p := range x.Params {
			b.WriteByte(' ')
			writeSExpr(b, p)
		}
		b.WriteString(") ")
		writeBodySExpr(b, x.Body)
		b.WriteByte(')')
	case *Program:
		b.WriteString("(program")
		for _, d := range x.Decls {
			b.WriteByte(' ')
			writeSExpr(b, d)
		}
		b.WriteByte(')')
	case []Token:
		b.WriteString("(values")
		for _, t := range x {
			b.WriteByte(' ')
			writeTokenSExpr(b, t)
		}
		b.WriteByte(')')
	default:
		b.WriteString("unknown")
	}
}

func writeTokenSExpr(b *strings.Builder, t Token) {
	b.WriteByte('(')
	b.WriteString(string(t.Kind))
	b.WriteByte(' ')
	switch t.Kind {
	case KindInt, KindFloat, KindBool, KindType:
		b.WriteString(t.Literal())
	default:
		b.WriteString(quoteSExpr(t.Literal()))
	}
	b.WriteByte(')')
}

func writeNodeSExpr(b *strings.Builder, n *Node) {
	switch n.Op {
	case Create:
		b.WriteString("(decl ")
	case Assign:
		b.WriteString("(assign ")
	case Comma:
		b.WriteString("(comma ")
	case Pipe:
		b.WriteString("(call ")
		writeSExpr(b, n.Left)
		if n.Right != nil {
			b.WriteByte(' ')
			writeSExpr(b, n.Right)
		}
		b.WriteByte(')')
		return
	case Return:
		if n.Right == nil {
			b.WriteString("(return)")
			return
		}
		b.WriteString("(return ")
		writeSExpr(b, n.Right)
		b.WriteByte(')')
		return
	case Break:
		b.WriteString("(break)")
		return
	case Use:
		b.WriteString("(use ")
		writeSExpr(b, n.Right)
		b.WriteByte(')')
		return
	default:
		b.WriteString("(binary ")
		b.WriteString(quoteSExpr(n.Op.Name()))
		b.WriteByte(' ')
	}
	writeSExpr(b, n.Left)
	b.WriteByte(' ')
	writeSExpr(b, n.Right)
	b.WriteByte(')')
}

func writeBlockSExpr(b *strings.Builder, blk *Block) {
	b.WriteByte('(')
	b.WriteString(blk.Op.Name())
	if blk.Condition != nil {
		b.WriteByte(' ')
		writeSExpr(b, blk.Condition)
	}
	b.WriteByte(' ')
	writeBodySExpr(b, blk.Body)
	if blk.Next != nil {
		b.WriteByte(' ')
		writeBlockSExpr(b, blk.Next)
	}
	b.WriteByte(')')
}

func writeBodySExpr(b *strings.Builder, body []Stmt) {
	b.WriteString("(block")
	for _, s := range body {
		b.WriteByte(' ')
		writeSExpr(b, s)
	}
	b.WriteByte(')')
}

func quoteSExpr(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}
