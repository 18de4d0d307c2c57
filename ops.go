package main

import (
	"math"
	"strings"

	mapset "github.com/deckarep/golang-set"
)

var (
	comparisonOps = mapset.NewSet("==", "!=", "<", ">", "<=", ">=")
	arithmeticOps = mapset.NewSet("+", "-", "*", "/", "%")
)

// zeroValue is the value a freshly declared variable of the type holds.
func zeroValue(typ string) (Token, bool) {
	switch typ {
	case "int":
		return IntToken(0), true
	case "float":
		return FloatToken(0), true
	case "str":
		return StrToken(""), true
	case "bool":
		return False, true
	}
	return Token{}, false
}

// numberToken applies the promotion rule: a result with no fractional part
// is an int, anything else (infinities included) stays a float.
func numberToken(v float64) Token {
	if math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return FloatToken(v)
	}
	if v < -9.223372036854775808e18 || v >= 9.223372036854775808e18 {
		return FloatToken(v)
	}
	return IntToken(int64(v))
}

func arithmetic(op string, l, r Token, line int) (Token, error) {
	if !l.IsNumeric() || !r.IsNumeric() {
		return Token{}, runtimeErrorf(line, ErrTypeMismatch, "unsupported operand types for %s: %s and %s", op, l.Kind, r.Kind)
	}
	if l.Kind == KindInt && r.Kind == KindInt {
		return intArithmetic(op, l.Value.(int64), r.Value.(int64), line)
	}

	a, b := l.Float(), r.Float()
	switch op {
	case "+":
		return numberToken(a + b), nil
	case "-":
		return numberToken(a - b), nil
	case "*":
		return numberToken(a * b), nil
	case "/":
		if b == 0 {
			return Token{}, runtimeErrorf(line, ErrZeroDivision, "division by zero")
		}
		return numberToken(a / b), nil
	case "%":
		if b == 0 {
			return Token{}, runtimeErrorf(line, ErrZeroDivision, "modulo by zero")
		}
		m := math.Mod(a, b)
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return numberToken(m), nil
	}
	return Token{}, runtimeErrorf(line, ErrOperator, "unknown operator %s", op)
}

// intArithmetic computes on int64 operands. A result outside the int64
// range becomes a float.
func intArithmetic(op string, a, b int64, line int) (Token, error) {
	switch op {
	case "+":
		s := a + b
		if (a > 0 && b > 0 && s < 0) || (a < 0 && b < 0 && s >= 0) {
			return FloatToken(float64(a) + float64(b)), nil
		}
		return IntToken(s), nil
	case "-":
		d := a - b
		if (a >= 0 && b < 0 && d < 0) || (a < 0 && b > 0 && d >= 0) {
			return FloatToken(float64(a) - float64(b)), nil
		}
		return IntToken(d), nil
	case "*":
		p := a * b
		if a != 0 && (p/a != b || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64)) {
			return FloatToken(float64(a) * float64(b)), nil
		}
		return IntToken(p), nil
	case "/":
		if b == 0 {
			return Token{}, runtimeErrorf(line, ErrZeroDivision, "division by zero")
		}
		if a == math.MinInt64 && b == -1 {
			return FloatToken(-float64(a)), nil
		}
		if a%b == 0 {
			return IntToken(a / b), nil
		}
		return FloatToken(float64(a) / float64(b)), nil
	case "%":
		if b == 0 {
			return Token{}, runtimeErrorf(line, ErrZeroDivision, "modulo by zero")
		}
		m := a % b
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return IntToken(m), nil
	}
	return Token{}, runtimeErrorf(line, ErrOperator, "unknown operator %s", op)
}

// compare orders numbers against numbers, strings against strings and
// bools against bools (false < true).
func compare(op string, l, r Token, line int) (Token, error) {
	var c int
	switch {
	case l.Kind == KindInt && r.Kind == KindInt:
		c = cmp3(l.Value.(int64), r.Value.(int64))
	case l.IsNumeric() && r.IsNumeric():
		c = cmp3(l.Float(), r.Float())
	case l.Kind == KindStr && r.Kind == KindStr:
		c = strings.Compare(l.Value.(string), r.Value.(string))
	case l.Kind == KindBool && r.Kind == KindBool:
		c = cmp3(boolRank(l.Value.(bool)), boolRank(r.Value.(bool)))
	default:
		return Token{}, runtimeErrorf(line, ErrTypeMismatch, "cannot compare %s with %s", l.Kind, r.Kind)
	}

	switch op {
	case "==":
		return BoolToken(c == 0), nil
	case "!=":
		return BoolToken(c != 0), nil
	case "<":
		return BoolToken(c < 0), nil
	case ">":
		return BoolToken(c > 0), nil
	case "<=":
		return BoolToken(c <= 0), nil
	case ">=":
		return BoolToken(c >= 0), nil
	}
	return Token{}, runtimeErrorf(line, ErrOperator, "unknown operator %s", op)
}

func cmp3[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func boolRank(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// typeSet splits a constraint such as "int|float" into its type names.
func typeSet(constraint string) mapset.Set {
	s := mapset.NewSet()
	for _, name := range strings.Split(constraint, "|") {
		s.Add(strings.TrimSpace(name))
	}
	return s
}

// coerce checks a value against a type constraint. An int is accepted where
// only float is allowed and comes back as a float.
func coerce(constraint string, t Token) (Token, bool) {
	allowed := typeSet(constraint)
	if allowed.Contains(string(t.Kind)) {
		return t, true
	}
	if t.Kind == KindInt && allowed.Contains(string(KindFloat)) {
		return FloatToken(t.Float()), true
	}
	return Token{}, false
}
