package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/nalgeon/be"
)

// stubResolver serves fixed libraries without touching the host.
type stubResolver map[string][]Export

func (s stubResolver) Resolve(name string) ([]Export, error) {
	exports, ok := s[name]
	if !ok {
		return nil, errors.New("not found")
	}
	return exports, nil
}

func constExport(name string, value Token) Export {
	return Export{Name: name, Func: func([]any) (*Token, error) { return &value, nil }}
}

func TestLoadNativeExports(t *testing.T) {
	prog, err := ParseSource("use a\nstart main\nend")
	be.Err(t, err, nil)

	in := NewInterpreter(stubResolver{"a": {constExport("one", IntToken(1))}})
	be.Err(t, in.Load(prog), nil)

	got, err := in.Call("one")
	be.Err(t, err, nil)
	be.Equal(t, *got, IntToken(1))

	native, ok := in.callables["one"].(*Native)
	be.True(t, ok)
	be.Equal(t, native.Library, "a")
}

func TestLoadLaterLibraryWins(t *testing.T) {
	prog, err := ParseSource("use a\nuse b\nstart main\nend")
	be.Err(t, err, nil)

	in := NewInterpreter(stubResolver{
		"a": {constExport("pick", StrToken("a"))},
		"b": {constExport("pick", StrToken("b"))},
	})
	be.Err(t, in.Load(prog), nil)

	got, err := in.Call("pick")
	be.Err(t, err, nil)
	be.Equal(t, *got, StrToken("b"))
}

func TestLoadUserFunctionWins(t *testing.T) {
	prog, err := ParseSource(`use a
start pick
    return "user"
end`)
	be.Err(t, err, nil)

	in := NewInterpreter(stubResolver{"a": {constExport("pick", StrToken("a"))}})
	be.Err(t, in.Load(prog), nil)

	got, err := in.Call("pick")
	be.Err(t, err, nil)
	be.Equal(t, *got, StrToken("user"))
	_, isFunc := in.callables["pick"].(*Function)
	be.True(t, isFunc)
}

func TestLoadResetsTable(t *testing.T) {
	in := NewInterpreter(stubResolver{})
	first, err := ParseSource("start a\nend")
	be.Err(t, err, nil)
	second, err := ParseSource("start b\nend")
	be.Err(t, err, nil)

	be.Err(t, in.Load(first), nil)
	be.Err(t, in.Load(second), nil)

	_, err = in.Call("a")
	be.True(t, errors.Is(err, ErrUnknownFunction))
	_, err = in.Call("b")
	be.Err(t, err, nil)
}

func TestLoadUnknownLibrary(t *testing.T) {
	prog, err := ParseSource("start main\nend\nuse missing")
	be.Err(t, err, nil)

	err = NewInterpreter(stubResolver{}).Load(prog)
	be.True(t, errors.Is(err, ErrLibrary))

	var rerr *RuntimeError
	be.True(t, errors.As(err, &rerr))
	be.Equal(t, rerr.Line, 3)
}

func TestNativeArgumentCheck(t *testing.T) {
	prog, err := ParseSource("use a\nstart main\nend")
	be.Err(t, err, nil)

	var seen []any
	exp := Export{
		Name:   "take",
		Params: []string{"float", "str|bool"},
		Func: func(args []any) (*Token, error) {
			seen = args
			return nil, nil
		},
	}
	in := NewInterpreter(stubResolver{"a": {exp}})
	be.Err(t, in.Load(prog), nil)

	got, err := in.Call("take", IntToken(2), True)
	be.Err(t, err, nil)
	be.True(t, got == nil)
	be.Equal(t, seen, []any{float64(2), true})

	_, err = in.Call("take", IntToken(2))
	be.True(t, errors.Is(err, ErrArguments))
	_, err = in.Call("take", StrToken("x"), True)
	be.True(t, errors.Is(err, ErrArguments))
}

func TestNativeErrorWrapped(t *testing.T) {
	prog, err := ParseSource("use a\nstart main\nend")
	be.Err(t, err, nil)

	exp := Export{Name: "fail", Func: func([]any) (*Token, error) { return nil, errors.New("boom") }}
	in := NewInterpreter(stubResolver{"a": {exp}})
	be.Err(t, in.Load(prog), nil)

	_, err = in.Call("fail")
	be.True(t, errors.Is(err, ErrNative))
	be.True(t, strings.Contains(err.Error(), "boom"))
}
