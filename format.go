package main

import (
	"math"
	"strconv"
	"strings"
)

const indentUnit = "    "

// Format renders a parsed program back to MINIMUM source. Nested
// operations are parenthesised, so parsing the output gives the same tree.
func Format(p *Program) string {
	var b strings.Builder
	for i, d := range p.Decls {
		switch d := d.(type) {
		case *Node:
			b.WriteString("use ")
			b.WriteString(exprSource(d.Right, true))
			b.WriteByte('\n')
		case *Function:
			if i > 0 {
				b.WriteByte('\n')
			}
			formatFunction(&b, d)
		}
	}
	return b.String()
}

func formatFunction(b *strings.Builder, f *Function) {
	b.WriteString("start ")
	b.WriteString(f.Name)
	if len(f.Params) > 0 {
		b.WriteString(" | ")
		for i, p := range f.Params {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(exprSource(p, true))
		}
	}
	b.WriteByte('\n')
	formatBody(b, f.Body, 1)
	b.WriteString("end\n")
}

func formatBody(b *strings.Builder, body []Stmt, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	for _, s := range body {
		switch s := s.(type) {
		case *Node:
			b.WriteString(indent)
			b.WriteString(exprSource(s, true))
			b.WriteByte('\n')
		case *Block:
			formatBlock(b, s, depth)
		}
	}
}

func formatBlock(b *strings.Builder, blk *Block, depth int) {
	indent := strings.Repeat(indentUnit, depth)
	b.WriteString(indent)
	b.WriteString(blk.Op.Name())
	b.WriteByte(' ')
	b.WriteString(exprSource(blk.Condition, true))
	b.WriteByte('\n')
	formatBody(b, blk.Body, depth+1)

	for next := blk.Next; next != nil; next = next.Next {
		b.WriteString(indent)
		if next.Op == If {
			b.WriteString("elif ")
			b.WriteString(exprSource(next.Condition, true))
		} else {
			b.WriteString("else")
		}
		b.WriteByte('\n')
		formatBody(b, next.Body, depth+1)
	}

	b.WriteString(indent)
	b.WriteString("end\n")
}

// exprSource renders an operand. Nodes below the top level are wrapped in
// brackets; call arguments are written as a plain comma list.
func exprSource(e Expr, top bool) string {
	switch x := e.(type) {
	case Token:
		return tokenSource(x)
	case *Node:
		s := nodeSource(x)
		if top {
			return s
		}
		return "(" + s + ")"
	}
	return ""
}

func nodeSource(n *Node) string {
	switch n.Op {
	case Return:
		if n.Right == nil {
			return "return"
		}
		return "return " + exprSource(n.Right, true)
	case Break:
		return "break"
	case Use:
		return "use " + exprSource(n.Right, true)
	case Pipe:
		if n.Right == nil {
			return exprSource(n.Left, false) + " |"
		}
		return exprSource(n.Left, false) + " | " + argsSource(n.Right)
	case Comma:
		return argsSource(n)
	case Assign:
		return exprSource(n.Left, false) + " = " + exprSource(n.Right, true)
	}
	return exprSource(n.Left, false) + " " + n.Op.Name() + " " + exprSource(n.Right, false)
}

func argsSource(e Expr) string {
	if n, ok := e.(*Node); ok && n.Op == Comma {
		return argsSource(n.Left) + ", " + argsSource(n.Right)
	}
	return exprSource(e, false)
}

func tokenSource(t Token) string {
	switch v := t.Value.(type) {
	case int64:
		if v < 0 {
			return "(0 - " + strconv.FormatInt(v, 10)[1:] + ")"
		}
		return strconv.FormatInt(v, 10)
	case float64:
		s := strconv.FormatFloat(math.Abs(v), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		if v < 0 {
			return "(0 - " + s + ")"
		}
		return s
	case string:
		if t.Kind == KindStr {
			return quoteSource(v)
		}
		return v
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func quoteSource(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
