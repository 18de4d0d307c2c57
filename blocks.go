package main

// bodyItem is one element of a function body while blocks are being
// rebuilt: a parsed Stmt or a rawLine (block header, else/elif, end).
type bodyItem any

// rawLine is a body line left unparsed by the statement pass.
type rawLine Line

func (r rawLine) first() Token { return r.Tokens[0] }

func isRawHeader(it bodyItem) bool {
	r, ok := it.(rawLine)
	return ok && isBlockHeader(r.Tokens)
}

func isRawBranch(it bodyItem) bool {
	r, ok := it.(rawLine)
	return ok && !isBlockHeader(r.Tokens) && isBranchLine(r.Tokens)
}

func isRawEnd(it bodyItem) bool {
	r, ok := it.(rawLine)
	return ok && len(r.Tokens) == 1 && r.Tokens[0] == End
}

func findRaw(items []bodyItem, from, to int, match func(bodyItem) bool) int {
	for i := from; i < to; i++ {
		if match(items[i]) {
			return i
		}
	}
	return -1
}

// reconstruct rebuilds if/elif/else/while blocks from a flat body. The
// right-most raw header is always resolved first, so the first raw end
// after it is its own: every block nested inside has already been replaced
// by a *Block.
func reconstruct(items []bodyItem) ([]Stmt, error) {
	items = append([]bodyItem(nil), items...)
	for {
		h := -1
		for i := len(items) - 1; i >= 0; i-- {
			if isRawHeader(items[i]) {
				h = i
				break
			}
		}
		if h < 0 {
			break
		}

		header := items[h].(rawLine)
		if header.first() != If && header.first() != While {
			return nil, syntaxErrorf(header.Number, "block header must start with if or while")
		}
		end := findRaw(items, h+1, len(items), isRawEnd)
		if end < 0 {
			return nil, syntaxErrorf(header.Number, "missing end for %s block", header.first().Name())
		}
		cond, err := parseCondition(header)
		if err != nil {
			return nil, err
		}

		var blk *Block
		if header.first() == While {
			if b := findRaw(items, h+1, end, isRawBranch); b >= 0 {
				r := items[b].(rawLine)
				return nil, syntaxErrorf(r.Number, "'%s' inside a while block", r.first().Name())
			}
			body, err := toStmts(items[h+1 : end])
			if err != nil {
				return nil, err
			}
			blk, err = NewBlock(While, cond, body, header.Number, nil)
			if err != nil {
				return nil, syntaxErrorf(header.Number, "%v", err)
			}
		} else {
			blk, err = buildIf(items, h, end, cond)
			if err != nil {
				return nil, err
			}
		}

		rest := append([]bodyItem{blk}, items[end+1:]...)
		items = append(items[:h], rest...)
	}
	return toStmts(items)
}

// buildIf builds the if block whose header is items[h] and whose end is
// items[end], chaining elif and else branches through Next.
func buildIf(items []bodyItem, h, end int, cond Expr) (*Block, error) {
	line := items[h].(rawLine).Number
	b := findRaw(items, h+1, end, isRawBranch)
	if b < 0 {
		body, err := toStmts(items[h+1 : end])
		if err != nil {
			return nil, err
		}
		return newIfBlock(cond, body, line, nil)
	}

	body, err := toStmts(items[h+1 : b])
	if err != nil {
		return nil, err
	}
	branch := items[b].(rawLine)

	var next *Block
	switch branch.first() {
	case Elif:
		c, err := parseCondition(branch)
		if err != nil {
			return nil, err
		}
		next, err = buildIf(items, b, end, c)
		if err != nil {
			return nil, err
		}
	case Else:
		if len(branch.Tokens) != 1 {
			return nil, syntaxErrorf(branch.Number, "else must stand on its own line")
		}
		if extra := findRaw(items, b+1, end, isRawBranch); extra >= 0 {
			r := items[extra].(rawLine)
			return nil, syntaxErrorf(r.Number, "'%s' after else", r.first().Name())
		}
		elseBody, err := toStmts(items[b+1 : end])
		if err != nil {
			return nil, err
		}
		next, err = NewBlock(Else, nil, elseBody, branch.Number, nil)
		if err != nil {
			return nil, syntaxErrorf(branch.Number, "%v", err)
		}
	default:
		return nil, syntaxErrorf(branch.Number, "'%s' must start the line", branchKeyword(branch.Tokens))
	}
	return newIfBlock(cond, body, line, next)
}

func newIfBlock(cond Expr, body []Stmt, line int, next *Block) (*Block, error) {
	blk, err := NewBlock(If, cond, body, line, next)
	if err != nil {
		return nil, syntaxErrorf(line, "%v", err)
	}
	return blk, nil
}

func branchKeyword(tokens []Token) string {
	if hasToken(tokens, Elif) {
		return "elif"
	}
	return "else"
}

func parseCondition(r rawLine) (Expr, error) {
	if len(r.Tokens) < 2 {
		return nil, syntaxErrorf(r.Number, "%s needs a condition", r.first().Name())
	}
	return ParseExpression(r.Tokens[1:], r.Number)
}

func toStmts(items []bodyItem) ([]Stmt, error) {
	stmts := make([]Stmt, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case Stmt:
			stmts = append(stmts, x)
		case rawLine:
			if isRawEnd(x) {
				return nil, syntaxErrorf(x.Number, "end without a matching block")
			}
			return nil, syntaxErrorf(x.Number, "'%s' without a matching if", branchKeyword(x.Tokens))
		}
	}
	return stmts, nil
}
