package main

import (
	"errors"
	"testing"

	"github.com/nalgeon/be"
)

// Boolean Tests

func TestBooleanLiterals(t *testing.T) {
	source := `use io
start main
    t is bool
    f is bool
    t = true
    out | t
    out | f
end`

	output, err := runProgram(t, source, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "truefalse")
}

func TestCompare(t *testing.T) {
	tests := []struct {
		op   string
		l, r Token
		want bool
	}{
		{"==", IntToken(5), IntToken(5), true},
		{"!=", IntToken(5), IntToken(5), false},
		{"<", IntToken(-1), IntToken(0), true},
		{">=", IntToken(3), FloatToken(3.0), true},
		{">", FloatToken(2.5), IntToken(2), true},
		{"<=", FloatToken(2.5), FloatToken(2.25), false},
		{"<", StrToken("apple"), StrToken("banana"), true},
		{"==", StrToken("a"), StrToken("a"), true},
		{">", StrToken("b"), StrToken("abc"), true},
		{"<", False, True, true},
		{"==", True, True, true},
		{">", False, True, false},
	}

	for _, test := range tests {
		t.Run(test.l.Literal()+" "+test.op+" "+test.r.Literal(), func(t *testing.T) {
			got, err := compare(test.op, test.l, test.r, 1)
			be.Err(t, err, nil)
			be.Equal(t, got, BoolToken(test.want))
		})
	}
}

func TestCompareMismatchedKinds(t *testing.T) {
	tests := []struct {
		l, r Token
	}{
		{IntToken(1), StrToken("1")},
		{True, IntToken(1)},
		{StrToken("true"), True},
	}

	for _, test := range tests {
		_, err := compare("==", test.l, test.r, 7)
		be.True(t, errors.Is(err, ErrTypeMismatch))

		var rerr *RuntimeError
		be.True(t, errors.As(err, &rerr))
		be.Equal(t, rerr.Line, 7)
	}
}

func TestBooleanComparisonsEndToEnd(t *testing.T) {
	source := `use io
start main
    x is int
    result is bool
    x = 5
    result = x == 5
    out | result
    result = x > 10
    out | result
    result = "abc" < "abd"
    out | result
end`

	output, err := runProgram(t, source, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "truefalsetrue")
}

func TestBooleanConditions(t *testing.T) {
	source := `use io
start check | flag is bool
    if flag
        return "yes"
    else
        return "no"
    end
end
start main
    out | check | true
    out | check | (1 < 0)
end`

	output, err := runProgram(t, source, "")
	be.Err(t, err, nil)
	be.Equal(t, output, "yesno")
}

func TestBooleanArithmeticRejected(t *testing.T) {
	source := `start main
    b is bool
    b = true + false
end`

	_, err := runProgram(t, source, "")
	be.True(t, errors.Is(err, ErrTypeMismatch))
}
