package main

// Parse turns tokenized lines into a Program. Parsing stops at the first
// error, which is always a *SyntaxError.
func Parse(lines []Line) (*Program, error) {
	p := &parser{names: make(map[string]bool)}
	for _, l := range lines {
		if err := p.line(l); err != nil {
			return nil, err
		}
	}
	if p.fn != nil {
		return nil, syntaxErrorf(p.fn.line, "missing end for function %s", p.fn.name)
	}
	return &Program{Decls: p.decls}, nil
}

// ParseSource tokenizes and parses source text.
func ParseSource(src string) (*Program, error) {
	lines, err := Tokenize(src)
	if err != nil {
		return nil, err
	}
	return Parse(lines)
}

type parser struct {
	decls []Decl
	names map[string]bool

	// Function being read, nil at top level.
	fn    *openFunction
	depth int
}

type openFunction struct {
	name   string
	params []*Node
	line   int
	body   []bodyItem
}

func hasToken(tokens []Token, want Token) bool {
	for _, t := range tokens {
		if t == want {
			return true
		}
	}
	return false
}

func isBlockHeader(tokens []Token) bool {
	return hasToken(tokens, If) || hasToken(tokens, While)
}

func isBranchLine(tokens []Token) bool {
	return hasToken(tokens, Else) || hasToken(tokens, Elif)
}

func (p *parser) line(l Line) error {
	tokens := l.Tokens
	if p.fn == nil {
		return p.topLevel(l)
	}

	switch {
	case hasToken(tokens, Start):
		return syntaxErrorf(l.Number, "function %s cannot be declared inside function %s", declaredName(tokens), p.fn.name)
	case hasToken(tokens, Use):
		return syntaxErrorf(l.Number, "use must appear outside of functions")
	case isBlockHeader(tokens):
		p.depth++
		p.fn.body = append(p.fn.body, rawLine(l))
	case hasToken(tokens, End):
		if len(tokens) != 1 {
			return syntaxErrorf(l.Number, "end must stand on its own line")
		}
		p.depth--
		if p.depth == 0 {
			return p.closeFunction()
		}
		p.fn.body = append(p.fn.body, rawLine(l))
	case isBranchLine(tokens):
		p.fn.body = append(p.fn.body, rawLine(l))
	default:
		stmt, err := parseStatement(tokens, l.Number)
		if err != nil {
			return err
		}
		p.fn.body = append(p.fn.body, stmt)
	}
	return nil
}

func declaredName(tokens []Token) string {
	for i, t := range tokens {
		if t == Start && i+1 < len(tokens) {
			return tokens[i+1].Name()
		}
	}
	return "?"
}

func (p *parser) topLevel(l Line) error {
	tokens := l.Tokens
	switch {
	case hasToken(tokens, Use):
		if len(tokens) != 2 || tokens[0] != Use || tokens[1].Kind != KindLib {
			return syntaxErrorf(l.Number, "use statement must be: use <library>")
		}
		n, err := NewNode(Use, l.Number, nil, tokens[1])
		if err != nil {
			return err
		}
		p.decls = append(p.decls, n)
		return nil

	case hasToken(tokens, Start):
		fn, err := parseHeader(tokens, l.Number)
		if err != nil {
			return err
		}
		if p.names[fn.name] {
			return syntaxErrorf(l.Number, "function %s is already declared", fn.name)
		}
		p.names[fn.name] = true
		p.fn = fn
		p.depth = 1
		return nil
	}

	for _, t := range tokens {
		if t.Kind == KindKeyword {
			return syntaxErrorf(l.Number, "'%s' used outside of a function", t.Name())
		}
	}
	return syntaxErrorf(l.Number, "statement outside of a function")
}

// parseHeader reads `start name [| a is int , b is str ...]`.
func parseHeader(tokens []Token, line int) (*openFunction, error) {
	if len(tokens) < 2 || tokens[0] != Start || tokens[1].Kind != KindFunc {
		return nil, syntaxErrorf(line, "function declaration must be: start <name> [| <var> is <type>, ...]")
	}
	fn := &openFunction{name: tokens[1].Name(), line: line}
	if len(tokens) == 2 {
		return fn, nil
	}

	params := tokens[3:]
	if tokens[2] != Pipe || len(params) == 0 || (len(params)+1)%4 != 0 {
		return nil, syntaxErrorf(line, "malformed parameter list of function %s", fn.name)
	}
	for i := 0; i < len(params); i += 4 {
		v, is, typ := params[i], params[i+1], params[i+2]
		if v.Kind != KindVar || is != Create || typ.Kind != KindType {
			return nil, syntaxErrorf(line, "parameter of function %s must be: <var> is <type>", fn.name)
		}
		if i+3 < len(params) && params[i+3] != Comma {
			return nil, syntaxErrorf(line, "parameters of function %s must be separated by ','", fn.name)
		}
		decl, err := NewNode(Create, line, v, typ)
		if err != nil {
			return nil, err
		}
		fn.params = append(fn.params, decl)
	}
	return fn, nil
}

func (p *parser) closeFunction() error {
	body, err := reconstruct(p.fn.body)
	if err != nil {
		return err
	}
	f, err := NewFunction(p.fn.name, p.fn.params, body, p.fn.line)
	if err != nil {
		return syntaxErrorf(p.fn.line, "%v", err)
	}
	p.decls = append(p.decls, f)
	p.fn = nil
	return nil
}

// parseStatement classifies one body line and reduces it to a Node.
func parseStatement(tokens []Token, line int) (Stmt, error) {
	switch {
	case hasToken(tokens, Create):
		if len(tokens) != 3 || tokens[0].Kind != KindVar || tokens[1] != Create || tokens[2].Kind != KindType {
			return nil, syntaxErrorf(line, "declaration must be: <var> is <type>")
		}
		return NewNode(Create, line, tokens[0], tokens[2])

	case hasToken(tokens, Return):
		if tokens[0] != Return {
			return nil, syntaxErrorf(line, "return must start the line")
		}
		if len(tokens) == 1 {
			return NewNode(Return, line, nil, nil)
		}
		value, err := ParseExpression(tokens[1:], line)
		if err != nil {
			return nil, err
		}
		return NewNode(Return, line, nil, value)

	case hasToken(tokens, Break):
		if len(tokens) != 1 {
			return nil, syntaxErrorf(line, "break must stand on its own line")
		}
		return NewNode(Break, line, nil, nil)
	}

	for _, t := range tokens {
		if t.Kind == KindKeyword {
			return nil, syntaxErrorf(line, "unexpected keyword '%s'", t.Name())
		}
	}
	e, err := ParseExpression(tokens, line)
	if err != nil {
		return nil, err
	}
	n, ok := e.(*Node)
	if !ok {
		return nil, syntaxErrorf(line, "line is not a statement")
	}
	return n, nil
}
