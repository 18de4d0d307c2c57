package main

import (
	mapset "github.com/deckarep/golang-set"
)

// item is a partially parsed operand: a Token, a *pnode or a segment.
type item any

// segment is a run of items between two operators, or the contents of one
// pair of brackets.
type segment []item

// pnode is a Node whose operands may still be unreduced segments. The
// cascade builds pnodes; finalize turns them into Nodes bottom-up.
type pnode struct {
	op          Token
	line        int
	left, right item
}

// Precedence tiers, in the order they are applied to a line.
var (
	comparisonTier     = mapset.NewSet("=", "==", "!=", "<", ">", "<=", ">=")
	additiveTier       = mapset.NewSet("+", "-")
	multiplicativeTier = mapset.NewSet("*", "/", "%")
)

// ParseExpression runs one line of tokens through bracket nesting and the
// precedence cascade and returns the single operand it reduces to.
func ParseExpression(tokens []Token, line int) (Expr, error) {
	if len(tokens) == 0 {
		return nil, syntaxErrorf(line, "empty expression")
	}

	seg, err := nest(tokens, line)
	if err != nil {
		return nil, err
	}
	var it item = foldUnaryMinus(seg)

	if it, err = reduce(it, comparisonTier, line); err != nil {
		return nil, err
	}
	if it, err = reduceCalls(it, line); err != nil {
		return nil, err
	}
	if it, err = reduce(it, additiveTier, line); err != nil {
		return nil, err
	}
	if it, err = reduce(it, multiplicativeTier, line); err != nil {
		return nil, err
	}
	return finalize(it, line)
}

// nest replaces every matched bracket pair with one nested segment.
func nest(tokens []Token, line int) (segment, error) {
	var out segment
	depth := 0
	start := 0
	for i, t := range tokens {
		switch t {
		case LParen:
			if depth == 0 {
				start = i + 1
			}
			depth++
		case RParen:
			depth--
			if depth < 0 {
				return nil, syntaxErrorf(line, "unbalanced brackets")
			}
			if depth == 0 {
				if i == start {
					return nil, syntaxErrorf(line, "empty brackets")
				}
				inner, err := nest(tokens[start:i], line)
				if err != nil {
					return nil, err
				}
				out = append(out, inner)
			}
		default:
			if depth == 0 {
				out = append(out, t)
			}
		}
	}
	if depth != 0 {
		return nil, syntaxErrorf(line, "unbalanced brackets")
	}
	return out, nil
}

func isOperatorItem(it item) bool {
	t, ok := it.(Token)
	return ok && (t.Kind == KindOperator || t == Comma)
}

// foldUnaryMinus groups a '-' that directly follows another operator (or a
// comma) with the operand after it, so `2 * -3` reduces to `2 * (0 - 3)`.
// A '-' at the start of a segment is left alone; the additive tier turns it
// into `0 - rest`.
func foldUnaryMinus(seg segment) segment {
	out := make(segment, 0, len(seg))
	for i := 0; i < len(seg); i++ {
		it := seg[i]
		if g, ok := it.(segment); ok {
			it = foldUnaryMinus(g)
		}
		if it == item(Minus) && len(out) > 0 && isOperatorItem(out[len(out)-1]) {
			if operand, n := takeOperand(seg, i+1); n > 0 {
				out = append(out, segment{Minus, operand})
				i += n
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func takeOperand(seg segment, i int) (item, int) {
	if i >= len(seg) {
		return nil, 0
	}
	it := seg[i]
	if g, ok := it.(segment); ok {
		return foldUnaryMinus(g), 1
	}
	if it == item(Minus) {
		operand, n := takeOperand(seg, i+1)
		if n == 0 {
			return nil, 0
		}
		return segment{Minus, operand}, n + 1
	}
	if isOperatorItem(it) {
		return nil, 0
	}
	return it, 1
}

func firstOperator(seg segment, ops mapset.Set) int {
	for i, it := range seg {
		if t, ok := it.(Token); ok && t.Kind == KindOperator && ops.Contains(t.Name()) {
			return i
		}
	}
	return -1
}

func firstToken(seg segment, want Token) int {
	for i, it := range seg {
		if t, ok := it.(Token); ok && t == want {
			return i
		}
	}
	return -1
}

func isEmptyItem(it item) bool {
	if it == nil {
		return true
	}
	s, ok := it.(segment)
	return ok && len(s) == 0
}

// reduce applies one precedence tier. It splits a segment at its first
// operator of the tier and reduces both sides with the same tier, so chains
// of one tier nest to the right: `1 - 2 - 3` is `1 - (2 - 3)`.
func reduce(it item, ops mapset.Set, line int) (item, error) {
	switch x := it.(type) {
	case *pnode:
		left, err := reduce(x.left, ops, line)
		if err != nil {
			return nil, err
		}
		right, err := reduce(x.right, ops, line)
		if err != nil {
			return nil, err
		}
		return &pnode{op: x.op, line: x.line, left: left, right: right}, nil

	case segment:
		idx := firstOperator(x, ops)
		if idx < 0 {
			return reduceEach(x, func(sub item) (item, error) { return reduce(sub, ops, line) })
		}

		op := x[idx].(Token)
		left, err := reduce(x[:idx], ops, line)
		if err != nil {
			return nil, err
		}
		right, err := reduce(x[idx+1:], ops, line)
		if err != nil {
			return nil, err
		}

		if isEmptyItem(left) {
			if op != Minus {
				return nil, syntaxErrorf(line, "missing operand before '%s'", op.Name())
			}
			left = IntToken(0)
		}
		if isEmptyItem(right) {
			return nil, syntaxErrorf(line, "missing operand after '%s'", op.Name())
		}
		return &pnode{op: op, line: line, left: left, right: right}, nil
	}
	return it, nil
}

// reduceEach reduces every item of a segment that has no operator of the
// current tier, collapsing a single-item result.
func reduceEach(seg segment, fn func(item) (item, error)) (item, error) {
	out := make(segment, len(seg))
	for i, sub := range seg {
		r, err := fn(sub)
		if err != nil {
			return nil, err
		}
		out[i] = r
	}
	if len(out) == 1 {
		return out[0], nil
	}
	return out, nil
}

// reduceCalls applies the call tier. The left operand of '|' must be a
// function name; the right operand is split on commas first and every
// argument goes through the call tier on its own.
func reduceCalls(it item, line int) (item, error) {
	switch x := it.(type) {
	case *pnode:
		left, err := reduceCalls(x.left, line)
		if err != nil {
			return nil, err
		}
		right, err := reduceCalls(x.right, line)
		if err != nil {
			return nil, err
		}
		return &pnode{op: x.op, line: x.line, left: left, right: right}, nil

	case segment:
		idx := firstToken(x, Pipe)
		if idx < 0 {
			return reduceEach(x, func(sub item) (item, error) { return reduceCalls(sub, line) })
		}

		left, err := reduceCalls(x[:idx], line)
		if err != nil {
			return nil, err
		}
		if isEmptyItem(left) {
			return nil, syntaxErrorf(line, "missing function name before '|'")
		}
		if t, ok := left.(Token); !ok || t.Kind != KindFunc {
			return nil, syntaxErrorf(line, "left operand of '|' must be a function name")
		}

		args, err := reduceArgs(x[idx+1:], line)
		if err != nil {
			return nil, err
		}
		return &pnode{op: Pipe, line: line, left: left, right: args}, nil
	}
	return it, nil
}

func reduceArgs(seg segment, line int) (item, error) {
	if len(seg) == 0 {
		return nil, nil
	}
	idx := firstToken(seg, Comma)
	if idx < 0 {
		return reduceCalls(seg, line)
	}
	if idx == 0 || idx == len(seg)-1 {
		return nil, syntaxErrorf(line, "missing argument around ','")
	}
	left, err := reduceArgs(seg[:idx], line)
	if err != nil {
		return nil, err
	}
	right, err := reduceArgs(seg[idx+1:], line)
	if err != nil {
		return nil, err
	}
	return &pnode{op: Comma, line: line, left: left, right: right}, nil
}

// finalize converts a fully reduced item into an Expr, building Nodes
// bottom-up. Anything that did not collapse to one operand is an error.
func finalize(it item, line int) (Expr, error) {
	switch x := it.(type) {
	case nil:
		return nil, nil
	case Token:
		switch x.Kind {
		case KindOperator, KindKeyword, KindSep:
			return nil, syntaxErrorf(line, "unexpected '%s'", x.Name())
		}
		return x, nil
	case *pnode:
		left, err := finalize(x.left, line)
		if err != nil {
			return nil, err
		}
		right, err := finalize(x.right, line)
		if err != nil {
			return nil, err
		}
		return NewNode(x.op, x.line, left, right)
	case segment:
		switch len(x) {
		case 0:
			return nil, nil
		case 1:
			return finalize(x[0], line)
		}
		return nil, syntaxErrorf(line, "failed to reduce expression")
	}
	return nil, syntaxErrorf(line, "failed to reduce expression")
}
