package sexy

import (
	"fmt"
	"strings"
	"unicode"
)

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeNumber
	NodeEllipsis
	NodeList
)

// Node is one datum of an s-expression: an atom or a list.
type Node struct {
	Type  NodeType
	Text  string  // NodeSymbol, NodeString, NodeNumber
	Items []*Node // NodeList
}

// String renders the node canonically: single spaces, quoted strings.
func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeNumber:
		return n.Text
	case NodeString:
		return Quote(n.Text)
	case NodeEllipsis:
		return "..."
	case NodeList:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
}

// Quote writes s as a string atom.
func Quote(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return "\"" + s + "\""
}

func NewSymbol(name string) *Node { return &Node{Type: NodeSymbol, Text: name} }
func NewString(value string) *Node { return &Node{Type: NodeString, Text: value} }
func NewNumber(text string) *Node  { return &Node{Type: NodeNumber, Text: text} }
func NewList(items ...*Node) *Node { return &Node{Type: NodeList, Items: items} }

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type != NodeList
}

// Match reports whether actual has the shape of pattern. An ellipsis in a
// pattern list matches any remaining items.
func Match(pattern, actual *Node) bool {
	if pattern.Type == NodeEllipsis {
		return true
	}
	if pattern.Type != actual.Type {
		return false
	}
	if pattern.Type != NodeList {
		return pattern.Text == actual.Text
	}
	for i, p := range pattern.Items {
		if p.Type == NodeEllipsis && i == len(pattern.Items)-1 {
			return true
		}
		if i >= len(actual.Items) || !Match(p, actual.Items[i]) {
			return false
		}
	}
	return len(pattern.Items) == len(actual.Items)
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{input: input}
	p.skipSpace()
	n, err := p.datum()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return nil, fmt.Errorf("offset %d: expected end of input but got %q", p.pos, p.input[p.pos])
	}
	return n, nil
}

type parser struct {
	input string
	pos   int
}

func (p *parser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

// skipSpace skips whitespace and ; comments.
func (p *parser) skipSpace() {
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch {
		case c == ';':
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
		case unicode.IsSpace(rune(c)):
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) datum() (*Node, error) {
	start := p.pos
	switch c := p.peek(); {
	case c == 0:
		return nil, fmt.Errorf("offset %d: unexpected end of input", start)
	case c == '(':
		return p.list()
	case c == ')':
		return nil, fmt.Errorf("offset %d: unexpected ')'", start)
	case c == '"':
		s, err := p.str()
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", start, err)
		}
		return NewString(s), nil
	case strings.HasPrefix(p.input[p.pos:], "..."):
		p.pos += 3
		return &Node{Type: NodeEllipsis}, nil
	case isDigit(c) || (c == '-' && isDigit(p.peekAt(1))):
		return NewNumber(p.word()), nil
	case isSymbolChar(c):
		return NewSymbol(p.word()), nil
	}
	return nil, fmt.Errorf("offset %d: unexpected character %q", start, p.peek())
}

func (p *parser) peekAt(offset int) byte {
	if p.pos+offset < len(p.input) {
		return p.input[p.pos+offset]
	}
	return 0
}

func (p *parser) list() (*Node, error) {
	start := p.pos
	p.pos++ // consume '('
	items := []*Node{}
	for {
		p.skipSpace()
		switch p.peek() {
		case 0:
			return nil, fmt.Errorf("offset %d: unterminated list", start)
		case ')':
			p.pos++
			return NewList(items...), nil
		}
		item, err := p.datum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

func (p *parser) str() (string, error) {
	var b strings.Builder
	p.pos++ // skip opening quote
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		switch c {
		case '"':
			p.pos++
			return b.String(), nil
		case '\\':
			switch p.peekAt(1) {
			case '"':
				b.WriteByte('"')
			case '\\':
				b.WriteByte('\\')
			case 'n':
				b.WriteByte('\n')
			default:
				return "", fmt.Errorf("invalid escape sequence: \\%c", p.peekAt(1))
			}
			p.pos += 2
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", fmt.Errorf("unterminated string")
}

func (p *parser) word() string {
	start := p.pos
	for p.pos < len(p.input) && isSymbolChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSymbolChar(c byte) bool {
	return unicode.IsLetter(rune(c)) || isDigit(c) || strings.IndexByte("-_+.", c) >= 0
}
