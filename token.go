package main

import (
	"fmt"
	"strconv"
)

// Kind is the kind of token (keyword, operator, literal, name, etc.).
type Kind string

// Definition of token kinds
const (
	KindKeyword  Kind = "kwd"
	KindOperator Kind = "opr"
	KindSep      Kind = "sep"
	KindType     Kind = "typ"
	KindBool     Kind = "bool"
	KindInt      Kind = "int"
	KindFloat    Kind = "float"
	KindStr      Kind = "str"
	KindFunc     Kind = "fnc"
	KindVar      Kind = "var"
	KindLib      Kind = "lib"
)

var kinds = map[Kind]bool{
	KindKeyword: true, KindOperator: true, KindSep: true, KindType: true,
	KindBool: true, KindInt: true, KindFloat: true, KindStr: true,
	KindFunc: true, KindVar: true, KindLib: true,
}

// Token is an immutable (kind, value) pair. Two tokens are equal when both
// kind and value match, so plain == comparison is structural.
//
// Value holds an int64 for int, a float64 for float, a bool for bool and a
// string for every other kind.
type Token struct {
	Kind  Kind
	Value any
}

func (Token) expr() {}

// NewToken builds a token, rejecting unknown kinds, missing values and values
// whose Go type does not fit the kind.
func NewToken(kind Kind, value any) (Token, error) {
	if !kinds[kind] {
		return Token{}, fmt.Errorf("%q is not a valid token kind", string(kind))
	}
	if value == nil {
		return Token{}, fmt.Errorf("token of kind %s has no value", kind)
	}

	ok := false
	switch kind {
	case KindInt:
		_, ok = value.(int64)
	case KindFloat:
		_, ok = value.(float64)
	case KindBool:
		_, ok = value.(bool)
	default:
		_, ok = value.(string)
	}
	if !ok {
		return Token{}, fmt.Errorf("value %v (%T) does not fit token kind %s", value, value, kind)
	}
	return Token{Kind: kind, Value: value}, nil
}

func mustToken(kind Kind, value any) Token {
	t, err := NewToken(kind, value)
	if err != nil {
		panic(err)
	}
	return t
}

// Tokens the parser and interpreter compare against.
var (
	Use    = mustToken(KindKeyword, "use")
	Start  = mustToken(KindKeyword, "start")
	End    = mustToken(KindKeyword, "end")
	Return = mustToken(KindKeyword, "return")
	Break  = mustToken(KindKeyword, "break")
	If     = mustToken(KindKeyword, "if")
	Elif   = mustToken(KindKeyword, "elif")
	Else   = mustToken(KindKeyword, "else")
	While  = mustToken(KindKeyword, "while")

	Pipe     = mustToken(KindOperator, "|")
	Create   = mustToken(KindOperator, "is")
	Assign   = mustToken(KindOperator, "=")
	Plus     = mustToken(KindOperator, "+")
	Minus    = mustToken(KindOperator, "-")
	Multiply = mustToken(KindOperator, "*")
	Divide   = mustToken(KindOperator, "/")
	Modulo   = mustToken(KindOperator, "%")
	LParen   = mustToken(KindOperator, "(")
	RParen   = mustToken(KindOperator, ")")

	Comma = mustToken(KindSep, ",")

	True  = mustToken(KindBool, true)
	False = mustToken(KindBool, false)
)

// IntToken, FloatToken, StrToken and BoolToken build literal tokens.
func IntToken(v int64) Token     { return Token{Kind: KindInt, Value: v} }
func FloatToken(v float64) Token { return Token{Kind: KindFloat, Value: v} }
func StrToken(v string) Token    { return Token{Kind: KindStr, Value: v} }
func BoolToken(v bool) Token     { return Token{Kind: KindBool, Value: v} }

// Name returns the string value of a name-like token (var, fnc, lib, typ,
// kwd, opr, sep). It returns "" for literals.
func (t Token) Name() string {
	s, _ := t.Value.(string)
	switch t.Kind {
	case KindStr, KindInt, KindFloat, KindBool:
		return ""
	}
	return s
}

// Is reports whether t has the given kind and name.
func (t Token) Is(kind Kind, name string) bool {
	return t.Kind == kind && t.Name() == name
}

// IsNumeric reports whether t is an int or float literal.
func (t Token) IsNumeric() bool {
	return t.Kind == KindInt || t.Kind == KindFloat
}

// Float returns the numeric value of an int or float token.
func (t Token) Float() float64 {
	switch v := t.Value.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

// Literal renders the value the way the language writes it: floats always
// carry a decimal point and strings are not quoted.
func (t Token) Literal() string {
	switch v := t.Value.(type) {
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return formatFloat(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	}
	return fmt.Sprint(t.Value)
}

func (t Token) String() string {
	return string(t.Kind) + ": " + t.Literal()
}

func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'I' || s[i] == 'N' {
			return s
		}
	}
	return s + ".0"
}
