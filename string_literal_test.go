package main

import (
	"testing"

	"github.com/nalgeon/be"
)

func TestStringLiteralEscapes(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`"plain"`, "plain"},
		{`""`, ""},
		{`"a\nb"`, "a\nb"},
		{`"say \"hi\""`, `say "hi"`},
		{`"it\'s"`, "it's"},
		{`"back\\slash"`, `back\slash`},
		{`"  spaced  "`, "  spaced  "},
		{`"x = 1 + 2"`, "x = 1 + 2"},
		{`"start end"`, "start end"},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			tokens := lexLine(t, test.src)
			be.Equal(t, tokens, []Token{StrToken(test.want)})
		})
	}
}

func TestStringNextToWords(t *testing.T) {
	tokens := lexLine(t, `out|"a"`)
	be.Equal(t, tokens, []Token{fn("out"), Pipe, StrToken("a")})

	tokens = lexLine(t, `x="a"`)
	be.Equal(t, tokens, []Token{v("x"), Assign, StrToken("a")})
}

func TestStringKeywordIsNotAKeyword(t *testing.T) {
	prog, err := ParseSource(`use io
start main
    out | "end"
end`)
	be.Err(t, err, nil)
	be.Equal(t, len(prog.Functions()[0].Body), 1)
}

func TestStringSExprQuoting(t *testing.T) {
	be.Equal(t, ToSExpr(StrToken("a\"b\\c\nd")), `(str "a\"b\\c\nd")`)
}
