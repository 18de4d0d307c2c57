package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
)

// NativeFunc is a host function callable from MINIMUM. It receives bare
// values (int64, float64, string, bool) and returns nil for no value.
type NativeFunc func(args []any) (*Token, error)

// Export is one function a library makes available. Each entry of Params
// is a '|'-separated set of accepted type names, e.g. "int|float".
type Export struct {
	Name   string
	Func   NativeFunc
	Params []string
}

// LibraryResolver turns a `use` name into the library's exports.
type LibraryResolver interface {
	Resolve(name string) ([]Export, error)
}

// Host is what built-in libraries may touch of the outside world.
type Host struct {
	Stdin   *bufio.Reader
	Stdout  io.Writer
	APIMode bool
	Signal  string // written to Stdout before `in` blocks in API mode
}

// Registry resolves built-in libraries first, then script libraries.
type Registry struct {
	host     *Host
	builtins map[string]func(*Host) []Export
	scripts  *ScriptLoader
}

// NewRegistry creates a registry with the io and math libraries. A nil
// host, or a host without streams, uses the process's stdin and stdout.
// scripts may be nil, in which case only built-in libraries resolve.
func NewRegistry(host *Host, scripts *ScriptLoader) *Registry {
	h := Host{}
	if host != nil {
		h = *host
	}
	if h.Stdin == nil {
		h.Stdin = bufio.NewReader(os.Stdin)
	}
	if h.Stdout == nil {
		h.Stdout = os.Stdout
	}
	return &Registry{
		host: &h,
		builtins: map[string]func(*Host) []Export{
			"io":   ioLibrary,
			"math": mathLibrary,
		},
		scripts: scripts,
	}
}

func (r *Registry) Resolve(name string) ([]Export, error) {
	if lib, ok := r.builtins[name]; ok {
		return lib(r.host), nil
	}
	if r.scripts == nil {
		return nil, fmt.Errorf("no library named %s", name)
	}
	return r.scripts.Load(name)
}

// valueToken wraps a bare value returned to or passed by a library.
func valueToken(v any) (Token, error) {
	switch v := v.(type) {
	case int64:
		return IntToken(v), nil
	case int:
		return IntToken(int64(v)), nil
	case float64:
		return FloatToken(v), nil
	case string:
		return StrToken(v), nil
	case bool:
		return BoolToken(v), nil
	}
	return Token{}, fmt.Errorf("unsupported value %v (%T)", v, v)
}

func toFloat(v any) (float64, error) {
	switch v := v.(type) {
	case int64:
		return float64(v), nil
	case float64:
		return v, nil
	}
	return 0, fmt.Errorf("expected a number, got %T", v)
}

func ioLibrary(h *Host) []Export {
	in := func(args []any) (*Token, error) {
		if h.APIMode {
			fmt.Fprintln(h.Stdout, h.Signal)
		}
		if f, ok := h.Stdout.(interface{ Flush() error }); ok {
			if err := f.Flush(); err != nil {
				return nil, err
			}
		}
		line, err := h.Stdin.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return nil, fmt.Errorf("reading input: %w", err)
		}
		t := StrToken(strings.TrimRight(line, "\r\n"))
		return &t, nil
	}

	out := func(args []any) (*Token, error) {
		t, err := valueToken(args[0])
		if err != nil {
			return nil, err
		}
		_, err = io.WriteString(h.Stdout, t.Literal())
		return nil, err
	}

	return []Export{
		{Name: "in", Func: in},
		{Name: "out", Func: out, Params: []string{"int|float|str|bool"}},
	}
}

func mathLibrary(*Host) []Export {
	sqrt := func(args []any) (*Token, error) {
		x, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		if x < 0 {
			return nil, fmt.Errorf("square root of negative number %s", formatFloat(x))
		}
		t := numberToken(math.Sqrt(x))
		return &t, nil
	}

	pow := func(args []any) (*Token, error) {
		x, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		y, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		r := math.Pow(x, y)
		if math.IsNaN(r) {
			return nil, fmt.Errorf("%s to the power of %s is not a real number", formatFloat(x), formatFloat(y))
		}
		t := numberToken(r)
		return &t, nil
	}

	return []Export{
		{Name: "sqrt", Func: sqrt, Params: []string{"int|float"}},
		{Name: "pow", Func: pow, Params: []string{"int|float", "int|float"}},
	}
}
