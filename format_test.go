package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nalgeon/be"
)

func TestFormatHelloWorld(t *testing.T) {
	prog, err := ParseSource(`use io
~ comment
start main
      out | "Hello, World!"
end`)
	be.Err(t, err, nil)

	expected := "use io\n\nstart main\n    out | \"Hello, World!\"\nend\n"
	be.Equal(t, Format(prog), expected)
}

func TestFormatStatements(t *testing.T) {
	prog, err := ParseSource(`start f | a is int, b is float
x is int
x = a + b * 2
x = (a - 1) - 2
g |
g | x, "q\"uote", true
return -a
while x > 0
if x == 1
break
elif x == 2
x = 0
else
x = x - 1
end
end
return
end`)
	be.Err(t, err, nil)

	expected := `start f | a is int, b is float
    x is int
    x = a + (b * 2)
    x = (a - 1) - 2
    g |
    g | x, "q\"uote", true
    return 0 - a
    while x > 0
        if x == 1
            break
        elif x == 2
            x = 0
        else
            x = x - 1
        end
    end
    return
end
`
	be.Equal(t, Format(prog), expected)
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		tok  Token
		want string
	}{
		{IntToken(7), "7"},
		{IntToken(-7), "(0 - 7)"},
		{FloatToken(2), "2.0"},
		{FloatToken(-0.5), "(0 - 0.5)"},
		{StrToken("a\nb"), `"a\nb"`},
		{False, "false"},
		{v("name"), "name"},
	}

	for _, test := range tests {
		be.Equal(t, tokenSource(test.tok), test.want)
	}
}

func TestFormatRoundTrip(t *testing.T) {
	files, err := filepath.Glob("examples/*.min")
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			src, err := os.ReadFile(file)
			be.Err(t, err, nil)
			prog, err := ParseSource(string(src))
			be.Err(t, err, nil)

			formatted := Format(prog)
			again, err := ParseSource(formatted)
			be.Err(t, err, nil)

			// Line numbers move when comments and blank lines go away.
			ignoreLines := cmp.FilterPath(func(p cmp.Path) bool {
				sf, ok := p.Last().(cmp.StructField)
				return ok && sf.Name() == "Line"
			}, cmp.Ignore())
			if diff := cmp.Diff(prog, again, ignoreLines); diff != "" {
				t.Errorf("round trip changed the tree (-before +after):\n%s", diff)
			}
			be.Equal(t, Format(again), formatted)
		})
	}
}
