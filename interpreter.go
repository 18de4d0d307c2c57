package main

import (
	"fmt"
	"io"
	"strings"
)

// Signal tells the caller of ExecuteLine whether the enclosing body keeps
// running.
type Signal int

const (
	SignalNone   Signal = iota // keep running
	SignalReturn               // stop the function, the values are its result
	SignalBreak                // leave the innermost while
)

// callable is a *Function or a *Native.
type callable interface {
	callableName() string
}

func (f *Function) callableName() string { return f.Name }

// Native is a host function exported by a library.
type Native struct {
	Name    string
	Library string
	Func    NativeFunc
	Params  []string
}

func (n *Native) callableName() string { return n.Name }

// Interpreter walks parsed programs. It is not safe for concurrent use.
type Interpreter struct {
	resolver  LibraryResolver
	maxDepth  int
	trace     io.Writer
	callables map[string]callable
	depth     int
}

type Option func(*Interpreter)

// WithMaxDepth limits how deeply function calls may nest.
func WithMaxDepth(n int) Option {
	return func(in *Interpreter) { in.maxDepth = n }
}

// WithTrace writes one line per function call to w.
func WithTrace(w io.Writer) Option {
	return func(in *Interpreter) { in.trace = w }
}

// NewInterpreter creates an interpreter that loads `use` libraries through
// resolver. A nil resolver makes every `use` fail.
func NewInterpreter(resolver LibraryResolver, opts ...Option) *Interpreter {
	in := &Interpreter{
		resolver:  resolver,
		maxDepth:  DefaultMaxDepth,
		callables: make(map[string]callable),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Load builds the callables table. Library exports are merged in `use`
// order, so a later library wins a name clash; user functions then take
// precedence over every native export.
func (in *Interpreter) Load(p *Program) error {
	in.callables = make(map[string]callable)
	for _, u := range p.Uses() {
		lib, _ := u.Right.(Token)
		if in.resolver == nil {
			return runtimeErrorf(u.Line, ErrLibrary, "cannot load library %s", lib.Name())
		}
		exports, err := in.resolver.Resolve(lib.Name())
		if err != nil {
			return runtimeErrorf(u.Line, ErrLibrary, "cannot load library %s: %v", lib.Name(), err)
		}
		for _, e := range exports {
			in.callables[e.Name] = &Native{Name: e.Name, Library: lib.Name(), Func: e.Func, Params: e.Params}
		}
	}
	for _, f := range p.Functions() {
		in.callables[f.Name] = f
	}
	return nil
}

// Run loads the program and runs its main function.
func (in *Interpreter) Run(p *Program) error {
	if err := in.Load(p); err != nil {
		return err
	}
	entry, ok := in.callables["main"].(*Function)
	if !ok || len(entry.Params) != 0 {
		return runtimeErrorf(0, ErrNoMain, "program needs a main function without parameters")
	}
	_, err := in.callFunction(entry, nil, entry.Line)
	return err
}

// Call invokes a loaded function by name and returns its value, nil when it
// returns nothing.
func (in *Interpreter) Call(name string, args ...Token) (*Token, error) {
	c, ok := in.callables[name]
	if !ok {
		return nil, runtimeErrorf(0, ErrUnknownFunction, "function %s is not defined", name)
	}
	return in.call(c, args, 0)
}

func (in *Interpreter) call(c callable, args []Token, line int) (*Token, error) {
	switch c := c.(type) {
	case *Function:
		return in.callFunction(c, args, line)
	case *Native:
		return in.callNative(c, args, line)
	}
	return nil, runtimeErrorf(line, ErrNotCallable, "%s is not callable", c.callableName())
}

// checkArgs validates count and types of args against the parameter
// constraints and returns the arguments after int-to-float conversion.
func checkArgs(name string, params []string, args []Token, line int) ([]Token, error) {
	if len(args) != len(params) {
		return nil, runtimeErrorf(line, ErrArguments, "function %s expects %d argument(s) (%s), got %d (%s)",
			name, len(params), strings.Join(params, ", "), len(args), kindList(args))
	}
	out := make([]Token, len(args))
	for i, a := range args {
		v, ok := coerce(params[i], a)
		if !ok {
			return nil, runtimeErrorf(line, ErrArguments, "function %s expects (%s), got (%s)",
				name, strings.Join(params, ", "), kindList(args))
		}
		out[i] = v
	}
	return out, nil
}

func kindList(tokens []Token) string {
	kinds := make([]string, len(tokens))
	for i, t := range tokens {
		kinds[i] = string(t.Kind)
	}
	return strings.Join(kinds, ", ")
}

func (in *Interpreter) traceCall(name string, args []Token, line int) {
	if in.trace == nil {
		return
	}
	vals := make([]string, len(args))
	for i, a := range args {
		vals[i] = a.Literal()
	}
	fmt.Fprintf(in.trace, "trace: line %d: %s | %s (depth %d)\n", line, name, strings.Join(vals, ", "), in.depth)
}

func (in *Interpreter) callFunction(fn *Function, args []Token, line int) (*Token, error) {
	args, err := checkArgs(fn.Name, fn.ParamTypes(), args, line)
	if err != nil {
		return nil, err
	}
	if in.depth >= in.maxDepth {
		return nil, runtimeErrorf(line, ErrRecursion, "calling %s exceeds %d nested calls", fn.Name, in.maxDepth)
	}
	in.depth++
	defer func() { in.depth-- }()
	in.traceCall(fn.Name, args, line)

	env := NewEnv()
	for i, p := range fn.Params {
		if _, _, err := in.ExecuteLine(p.Clone(), 0, env); err != nil {
			return nil, err
		}
		name, _ := p.Left.(Token)
		env.Assign(name.Name(), 0, args[i])
	}

	vals, sig, err := in.execBody(fn.Body, 0, env)
	if err != nil {
		return nil, err
	}
	if sig == SignalReturn && len(vals) == 1 {
		return &vals[0], nil
	}
	return nil, nil
}

func (in *Interpreter) callNative(n *Native, args []Token, line int) (*Token, error) {
	args, err := checkArgs(n.Name, n.Params, args, line)
	if err != nil {
		return nil, err
	}
	in.traceCall(n.Name, args, line)

	values := make([]any, len(args))
	for i, a := range args {
		values[i] = a.Value
	}
	result, err := n.Func(values)
	if err != nil {
		return nil, runtimeErrorf(line, ErrNative, "%s (library %s): %v", n.Name, n.Library, err)
	}
	return result, nil
}

func (in *Interpreter) execBody(body []Stmt, level int, env *Env) ([]Token, Signal, error) {
	for _, s := range body {
		var (
			vals []Token
			sig  Signal
			err  error
		)
		switch s := s.(type) {
		case *Node:
			vals, sig, err = in.ExecuteLine(s.Clone(), level, env)
		case *Block:
			vals, sig, err = in.execBlock(s, level, env)
		}
		if err != nil {
			return nil, SignalNone, err
		}
		if sig != SignalNone {
			return vals, sig, nil
		}
	}
	return nil, SignalNone, nil
}

func (in *Interpreter) execBlock(b *Block, level int, env *Env) ([]Token, Signal, error) {
	if b.Op == While {
		env.loops++
		defer func() { env.loops-- }()
		for {
			ok, err := in.condition(b, level, env)
			if err != nil || !ok {
				return nil, SignalNone, err
			}
			vals, sig, err := in.execScope(b.Body, level+1, env)
			if err != nil {
				return nil, SignalNone, err
			}
			switch sig {
			case SignalBreak:
				return nil, SignalNone, nil
			case SignalReturn:
				return vals, sig, nil
			}
		}
	}

	for blk := b; blk != nil; blk = blk.Next {
		ok := true
		if blk.Op != Else {
			var err error
			if ok, err = in.condition(blk, level, env); err != nil {
				return nil, SignalNone, err
			}
		}
		if ok {
			return in.execScope(blk.Body, level+1, env)
		}
	}
	return nil, SignalNone, nil
}

// execScope runs a block body in a fresh scope at level.
func (in *Interpreter) execScope(body []Stmt, level int, env *Env) ([]Token, Signal, error) {
	env.Enter(level)
	defer env.Leave(level)
	return in.execBody(body, level, env)
}

// condition evaluates a block's condition at the enclosing level.
func (in *Interpreter) condition(b *Block, level int, env *Env) (bool, error) {
	vals, _, err := in.ExecuteLine(b.Condition, level, env)
	if err != nil {
		return false, err
	}
	v, err := in.operand(vals, level, env, b.Line, b.Op.Name()+" condition")
	if err != nil {
		return false, err
	}
	if v.Kind != KindBool {
		return false, runtimeErrorf(b.Line, ErrTypeMismatch, "%s condition must be bool, got %s", b.Op.Name(), v.Kind)
	}
	return v.Value.(bool), nil
}

// ExecuteLine evaluates one expression or statement at the given nesting
// level. A Token evaluates to itself; a Node evaluates its right operand,
// then its left, then applies its operator.
func (in *Interpreter) ExecuteLine(e Expr, level int, env *Env) ([]Token, Signal, error) {
	switch x := e.(type) {
	case nil:
		return nil, SignalNone, nil
	case Token:
		return []Token{x}, SignalNone, nil
	case *Node:
		return in.execNode(x, level, env)
	}
	return nil, SignalNone, fmt.Errorf("cannot execute %T", e)
}

func (in *Interpreter) execNode(n *Node, level int, env *Env) ([]Token, Signal, error) {
	if n.Op == Break {
		if env.loops == 0 {
			return nil, SignalNone, runtimeErrorf(n.Line, ErrBreak, "break outside of a while block")
		}
		return nil, SignalBreak, nil
	}

	right, _, err := in.ExecuteLine(n.Right, level, env)
	if err != nil {
		return nil, SignalNone, err
	}
	left, _, err := in.ExecuteLine(n.Left, level, env)
	if err != nil {
		return nil, SignalNone, err
	}

	op := n.Op.Name()
	switch {
	case n.Op == Create:
		return nil, SignalNone, in.declare(n, env, level)
	case n.Op == Assign:
		return nil, SignalNone, in.assign(n, left, right, level, env)
	case n.Op == Pipe:
		vals, err := in.callNode(n, left, right, level, env)
		return vals, SignalNone, err
	case n.Op == Return:
		vals, err := in.returnValue(n, right, level, env)
		return vals, SignalReturn, err
	case n.Op == Comma:
		vals, err := in.resolveAll(append(left, right...), level, env, n.Line)
		return vals, SignalNone, err
	case n.Op.Kind == KindOperator && comparisonOps.Contains(op):
		l, r, err := in.operands(n, left, right, level, env)
		if err != nil {
			return nil, SignalNone, err
		}
		t, err := compare(op, l, r, n.Line)
		return []Token{t}, SignalNone, err
	case n.Op.Kind == KindOperator && arithmeticOps.Contains(op):
		l, r, err := in.operands(n, left, right, level, env)
		if err != nil {
			return nil, SignalNone, err
		}
		t, err := arithmetic(op, l, r, n.Line)
		return []Token{t}, SignalNone, err
	}
	return nil, SignalNone, runtimeErrorf(n.Line, ErrOperator, "unknown operator %s", n.Op)
}

// resolve replaces a variable reference with its current value.
func (in *Interpreter) resolve(t Token, level int, env *Env, line int) (Token, error) {
	if t.Kind != KindVar {
		return t, nil
	}
	v, ok := env.Lookup(t.Name(), level)
	if !ok {
		return Token{}, runtimeErrorf(line, ErrUndeclared, "variable %s is not declared", t.Name())
	}
	return v, nil
}

func (in *Interpreter) resolveAll(tokens []Token, level int, env *Env, line int) ([]Token, error) {
	out := make([]Token, len(tokens))
	for i, t := range tokens {
		v, err := in.resolve(t, level, env, line)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// operand resolves an operand that must carry exactly one value.
func (in *Interpreter) operand(vals []Token, level int, env *Env, line int, what string) (Token, error) {
	if len(vals) != 1 {
		return Token{}, runtimeErrorf(line, ErrTypeMismatch, "%s must be a single value, got %d", what, len(vals))
	}
	return in.resolve(vals[0], level, env, line)
}

func (in *Interpreter) operands(n *Node, left, right []Token, level int, env *Env) (Token, Token, error) {
	what := fmt.Sprintf("operand of %s", n.Op.Name())
	l, err := in.operand(left, level, env, n.Line, "left "+what)
	if err != nil {
		return Token{}, Token{}, err
	}
	r, err := in.operand(right, level, env, n.Line, "right "+what)
	if err != nil {
		return Token{}, Token{}, err
	}
	return l, r, nil
}

func (in *Interpreter) declare(n *Node, env *Env, level int) error {
	v, vok := n.Left.(Token)
	typ, tok := n.Right.(Token)
	if !vok || !tok || v.Kind != KindVar || typ.Kind != KindType {
		return runtimeErrorf(n.Line, ErrTypeMismatch, "declaration needs a variable and a type")
	}
	zero, ok := zeroValue(typ.Name())
	if !ok {
		return runtimeErrorf(n.Line, ErrTypeMismatch, "unknown type %s", typ.Name())
	}
	if !env.Declare(v.Name(), level, zero) {
		return runtimeErrorf(n.Line, ErrRedeclared, "variable %s is already declared", v.Name())
	}
	return nil
}

func (in *Interpreter) assign(n *Node, left, right []Token, level int, env *Env) error {
	if len(left) != 1 || left[0].Kind != KindVar {
		return runtimeErrorf(n.Line, ErrTypeMismatch, "left side of = must be a variable")
	}
	name := left[0].Name()
	current, ok := env.Lookup(name, level)
	if !ok {
		return runtimeErrorf(n.Line, ErrUndeclared, "variable %s is not declared", name)
	}
	value, err := in.operand(right, level, env, n.Line, "right side of =")
	if err != nil {
		return err
	}

	switch {
	case value.Kind == current.Kind:
	case current.Kind == KindFloat && value.Kind == KindInt:
		value = FloatToken(value.Float())
	default:
		return runtimeErrorf(n.Line, ErrTypeMismatch, "cannot assign %s to %s variable %s", value.Kind, current.Kind, name)
	}
	env.Assign(name, level, value)
	return nil
}

func (in *Interpreter) callNode(n *Node, left, right []Token, level int, env *Env) ([]Token, error) {
	if len(left) != 1 || left[0].Kind != KindFunc {
		return nil, runtimeErrorf(n.Line, ErrNotCallable, "left side of | must be a function name")
	}
	name := left[0].Name()
	c, ok := in.callables[name]
	if !ok {
		return nil, runtimeErrorf(n.Line, ErrUnknownFunction, "function %s is not defined", name)
	}
	args, err := in.resolveAll(right, level, env, n.Line)
	if err != nil {
		return nil, err
	}
	result, err := in.call(c, args, n.Line)
	if err != nil || result == nil {
		return nil, err
	}
	return []Token{*result}, nil
}

func (in *Interpreter) returnValue(n *Node, right []Token, level int, env *Env) ([]Token, error) {
	switch len(right) {
	case 0:
		return nil, nil
	case 1:
		v, err := in.resolve(right[0], level, env, n.Line)
		if err != nil {
			return nil, err
		}
		return []Token{v}, nil
	}
	return nil, runtimeErrorf(n.Line, ErrReturn, "return takes one value, got %d", len(right))
}
