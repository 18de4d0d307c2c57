package main

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// newTestInterpreter returns an interpreter wired to in-memory stdin and
// stdout and to the repository's script libraries.
func newTestInterpreter(stdin string, stdout *bytes.Buffer, opts ...Option) *Interpreter {
	scripts, err := NewScriptLoader(DefaultLibraryRoot, 4)
	if err != nil {
		panic(err)
	}
	host := &Host{
		Stdin:  bufio.NewReader(strings.NewReader(stdin)),
		Stdout: stdout,
		Signal: DefaultAPISignal,
	}
	return NewInterpreter(NewRegistry(host, scripts), opts...)
}

func runParsed(prog *Program, stdin string) (string, error) {
	var out bytes.Buffer
	err := newTestInterpreter(stdin, &out).Run(prog)
	return out.String(), err
}

// runProgram parses and runs src, failing the test on syntax errors.
func runProgram(t *testing.T, src, stdin string) (string, error) {
	t.Helper()
	prog, err := ParseSource(src)
	be.Err(t, err, nil)
	return runParsed(prog, stdin)
}

// loadProgram parses src and builds its callables table.
func loadProgram(t *testing.T, src string) *Interpreter {
	t.Helper()
	prog, err := ParseSource(src)
	be.Err(t, err, nil)
	in := newTestInterpreter("", &bytes.Buffer{})
	be.Err(t, in.Load(prog), nil)
	return in
}

func TestHelloWorld(t *testing.T) {
	out, err := runProgram(t, `use io
start main
    out | "Hello, World!"
end`, "")
	be.Err(t, err, nil)
	be.Equal(t, out, "Hello, World!")
}

func TestCallAdd(t *testing.T) {
	in := loadProgram(t, `start add | a is int, b is int
    return a + b
end`)

	got, err := in.Call("add", IntToken(4), IntToken(6))
	be.Err(t, err, nil)
	be.True(t, got != nil)
	be.Equal(t, *got, IntToken(10))
}

func TestCallWithoutReturnValue(t *testing.T) {
	in := loadProgram(t, `start f | a is int
    b is int
    b = a
end
start g
    return
end`)

	got, err := in.Call("f", IntToken(1))
	be.Err(t, err, nil)
	be.True(t, got == nil)

	got, err = in.Call("g")
	be.Err(t, err, nil)
	be.True(t, got == nil)
}

func TestCallsDoNotShareState(t *testing.T) {
	in := loadProgram(t, `start twice | n is int
    x is int
    x = x + n
    x = x + n
    return x
end`)

	first, err := in.Call("twice", IntToken(3))
	be.Err(t, err, nil)
	second, err := in.Call("twice", IntToken(5))
	be.Err(t, err, nil)

	be.Equal(t, *first, IntToken(6))
	be.Equal(t, *second, IntToken(10))
}

func TestCallDoesNotMutateBody(t *testing.T) {
	prog, err := ParseSource(`start f | n is int
    return n * 2
end`)
	be.Err(t, err, nil)
	before := ToSExpr(prog)

	in := newTestInterpreter("", &bytes.Buffer{})
	be.Err(t, in.Load(prog), nil)
	for i := int64(0); i < 3; i++ {
		got, err := in.Call("f", IntToken(i))
		be.Err(t, err, nil)
		be.Equal(t, *got, IntToken(i*2))
	}
	be.Equal(t, ToSExpr(prog), before)
}

func TestFloatParameterAcceptsInt(t *testing.T) {
	in := loadProgram(t, `start half | x is float
    return x / 2
end`)

	got, err := in.Call("half", IntToken(3))
	be.Err(t, err, nil)
	be.Equal(t, *got, FloatToken(1.5))
}

func TestArgumentsValidatedBeforeBody(t *testing.T) {
	var out bytes.Buffer
	prog, err := ParseSource(`use io
start show | n is int
    out | "ran"
end`)
	be.Err(t, err, nil)
	in := newTestInterpreter("", &out)
	be.Err(t, in.Load(prog), nil)

	_, err = in.Call("show", StrToken("x"))
	be.True(t, errors.Is(err, ErrArguments))
	_, err = in.Call("show")
	be.True(t, errors.Is(err, ErrArguments))
	_, err = in.Call("show", IntToken(1), IntToken(2))
	be.True(t, errors.Is(err, ErrArguments))
	be.Equal(t, out.String(), "")
}

func TestCallUnknown(t *testing.T) {
	in := loadProgram(t, `start main
end`)
	_, err := in.Call("missing")
	be.True(t, errors.Is(err, ErrUnknownFunction))
}

func TestRecursionLimit(t *testing.T) {
	prog, err := ParseSource(`start main
    main |
end`)
	be.Err(t, err, nil)

	var out bytes.Buffer
	err = newTestInterpreter("", &out, WithMaxDepth(50)).Run(prog)
	be.True(t, errors.Is(err, ErrRecursion))
}

func TestTrace(t *testing.T) {
	prog, err := ParseSource(`start add | a is int, b is int
    return a + b
end
start main
    add | 1, 2
end`)
	be.Err(t, err, nil)

	var out, trace bytes.Buffer
	err = newTestInterpreter("", &out, WithTrace(&trace)).Run(prog)
	be.Err(t, err, nil)

	lines := strings.Split(strings.TrimSpace(trace.String()), "\n")
	be.Equal(t, len(lines), 2)
	be.True(t, strings.Contains(lines[0], "main"))
	be.True(t, strings.Contains(lines[1], "line 5: add | 1, 2 (depth 2)"))
}

func TestNoResolver(t *testing.T) {
	prog, err := ParseSource(`use io
start main
end`)
	be.Err(t, err, nil)

	err = NewInterpreter(nil).Run(prog)
	be.True(t, errors.Is(err, ErrLibrary))
}

func TestExecuteLineToken(t *testing.T) {
	in := NewInterpreter(nil)
	vals, sig, err := in.ExecuteLine(IntToken(7), 0, NewEnv())
	be.Err(t, err, nil)
	be.Equal(t, sig, SignalNone)
	be.Equal(t, vals, []Token{IntToken(7)})
}

func TestExecuteLineExpressions(t *testing.T) {
	tenth := 0.1
	tests := []struct {
		src  string
		want Token
	}{
		{"1 + 2 * 3", IntToken(7)},
		{"(1 + 2) * 3", IntToken(9)},
		{"1 - 2 - 3", IntToken(2)},
		{"(1 - 2) - 3", IntToken(-4)},
		{"8 / 4 / 2", IntToken(4)},
		{"5 / 2", FloatToken(2.5)},
		{"4 / 2", IntToken(2)},
		{"2.5 + 2.5", IntToken(5)},
		{"0.5 * 3", FloatToken(1.5)},
		{"0.1 + 0.2", FloatToken(tenth + 0.2)},
		{"9223372036854775807 + 1", FloatToken(0x1p63)},
		{"- 3 + 1", IntToken(-4)},
		{"2 * -3", IntToken(-6)},
		{"7 % 3", IntToken(1)},
		{"(0 - 7) % 3", IntToken(2)},
		{"7 % -3", IntToken(-2)},
		{"1 < 2", True},
		{"2 <= 1", False},
		{"1 == 1.0", True},
		{`"a" != "b"`, True},
	}

	for _, test := range tests {
		t.Run(test.src, func(t *testing.T) {
			e, err := parseExprSource(test.src)
			be.Err(t, err, nil)

			vals, sig, err := NewInterpreter(nil).ExecuteLine(e, 0, NewEnv())
			be.Err(t, err, nil)
			be.Equal(t, sig, SignalNone)
			be.Equal(t, vals, []Token{test.want})
		})
	}
}

func TestExecuteLineRightBeforeLeft(t *testing.T) {
	var out bytes.Buffer
	in := loadProgramWithOutput(t, `use io
start left
    out | "L"
    return 1
end
start right
    out | "R"
    return 2
end`, &out)

	e, err := parseExprSource("(left |) + (right |)")
	be.Err(t, err, nil)
	vals, _, err := in.ExecuteLine(e, 0, NewEnv())
	be.Err(t, err, nil)
	be.Equal(t, vals, []Token{IntToken(3)})
	be.Equal(t, out.String(), "RL")
}

func loadProgramWithOutput(t *testing.T, src string, out *bytes.Buffer) *Interpreter {
	t.Helper()
	prog, err := ParseSource(src)
	be.Err(t, err, nil)
	in := newTestInterpreter("", out)
	be.Err(t, in.Load(prog), nil)
	return in
}

func TestExecuteLineReturn(t *testing.T) {
	in := NewInterpreter(nil)
	env := NewEnv()
	be.True(t, env.Declare("x", 0, IntToken(5)))

	ret, err := NewNode(Return, 1, nil, Token{Kind: KindVar, Value: "x"})
	be.Err(t, err, nil)
	vals, sig, err := in.ExecuteLine(ret, 0, env)
	be.Err(t, err, nil)
	be.Equal(t, sig, SignalReturn)
	be.Equal(t, vals, []Token{IntToken(5)})

	empty, err := NewNode(Return, 1, nil, nil)
	be.Err(t, err, nil)
	vals, sig, err = in.ExecuteLine(empty, 0, env)
	be.Err(t, err, nil)
	be.Equal(t, sig, SignalReturn)
	be.Equal(t, len(vals), 0)
}

func TestExecuteLineReturnTwoValues(t *testing.T) {
	pair, err := NewNode(Comma, 1, IntToken(1), IntToken(2))
	be.Err(t, err, nil)
	ret, err := NewNode(Return, 1, nil, pair)
	be.Err(t, err, nil)

	_, _, err = NewInterpreter(nil).ExecuteLine(ret, 0, NewEnv())
	be.True(t, errors.Is(err, ErrReturn))
}

func TestExecuteLineUnknownOperator(t *testing.T) {
	n, err := NewNode(Token{Kind: KindOperator, Value: "^"}, 3, IntToken(1), IntToken(2))
	be.Err(t, err, nil)

	_, _, err = NewInterpreter(nil).ExecuteLine(n, 0, NewEnv())
	be.True(t, errors.Is(err, ErrOperator))

	var rerr *RuntimeError
	be.True(t, errors.As(err, &rerr))
	be.Equal(t, rerr.Line, 3)
}

func TestRuntimeErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		kind error
	}{
		{"undeclared", "start main\n    x = 1\nend", ErrUndeclared},
		{"redeclared", "start main\n    x is int\n    x is int\nend", ErrRedeclared},
		{"mismatch", "start main\n    x is bool\n    x = 1\nend", ErrTypeMismatch},
		{"zero division", "start main\n    x is int\n    x = 1 % 0\nend", ErrZeroDivision},
		{"unknown function", "start main\n    f |\nend", ErrUnknownFunction},
		{"arguments", "start f | a is str\nend\nstart main\n    f | 1\nend", ErrArguments},
		{"library", "use nothing_here\nstart main\nend", ErrLibrary},
		{"no main", "start other\nend", ErrNoMain},
		{"break", "start main\n    break\nend", ErrBreak},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := runProgram(t, test.src, "")
			be.True(t, errors.Is(err, test.kind))
		})
	}
}

func TestConditionMustBeBool(t *testing.T) {
	_, err := runProgram(t, `start main
    while 1
    end
end`, "")
	be.True(t, errors.Is(err, ErrTypeMismatch))
}
