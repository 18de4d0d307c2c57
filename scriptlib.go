package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dop251/goja"
	lru "github.com/hashicorp/golang-lru"
)

// ScriptLoader loads libraries written in JavaScript from <Root>/<name>.js.
// A script must define a global function methods() returning a list of
// [name, function(args) {...}, ["int|float", ...]] entries.
//
// Compiled scripts are cached by path and modification time, so a library
// used by many programs is parsed once.
type ScriptLoader struct {
	Root  string
	cache *lru.Cache
}

type scriptKey struct {
	path    string
	modTime int64
}

func NewScriptLoader(root string, cacheSize int) (*ScriptLoader, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("script cache: %w", err)
	}
	return &ScriptLoader{Root: root, cache: cache}, nil
}

func (l *ScriptLoader) program(name string) (*goja.Program, error) {
	path := filepath.Join(l.Root, name+".js")
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", name, err)
	}

	key := scriptKey{path: path, modTime: info.ModTime().UnixNano()}
	if p, ok := l.cache.Get(key); ok {
		return p.(*goja.Program), nil
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", name, err)
	}
	p, err := goja.Compile(path, string(src), true)
	if err != nil {
		return nil, fmt.Errorf("library %s: %w", name, err)
	}
	l.cache.Add(key, p)
	return p, nil
}

// Load runs the library script in a fresh runtime and collects its exports.
func (l *ScriptLoader) Load(name string) ([]Export, error) {
	p, err := l.program(name)
	if err != nil {
		return nil, err
	}

	vm := goja.New()
	if _, err := vm.RunProgram(p); err != nil {
		return nil, fmt.Errorf("library %s: %w", name, err)
	}
	methods, ok := goja.AssertFunction(vm.Get("methods"))
	if !ok {
		return nil, fmt.Errorf("library %s does not define methods()", name)
	}
	list, err := methods(goja.Undefined())
	if err != nil {
		return nil, fmt.Errorf("library %s: methods(): %w", name, err)
	}
	if goja.IsUndefined(list) || goja.IsNull(list) {
		return nil, fmt.Errorf("library %s: methods() returned nothing", name)
	}

	entries := list.ToObject(vm)
	n := int(entries.Get("length").ToInteger())
	exports := make([]Export, 0, n)
	for i := 0; i < n; i++ {
		e, err := scriptExport(vm, entries.Get(strconv.Itoa(i)))
		if err != nil {
			return nil, fmt.Errorf("library %s: entry %d: %w", name, i, err)
		}
		exports = append(exports, e)
	}
	return exports, nil
}

func scriptExport(vm *goja.Runtime, v goja.Value) (Export, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return Export{}, errors.New("missing entry")
	}
	entry := v.ToObject(vm)

	name := entry.Get("0")
	if name == nil || goja.IsUndefined(name) {
		return Export{}, errors.New("missing function name")
	}
	fn, ok := goja.AssertFunction(entry.Get("1"))
	if !ok {
		return Export{}, fmt.Errorf("%s is not a function", name.String())
	}

	var params []string
	if raw := entry.Get("2"); raw != nil && !goja.IsUndefined(raw) && !goja.IsNull(raw) {
		list, ok := raw.Export().([]interface{})
		if !ok {
			return Export{}, fmt.Errorf("parameters of %s must be a list", name.String())
		}
		for _, p := range list {
			s, ok := p.(string)
			if !ok {
				return Export{}, fmt.Errorf("parameter constraint of %s must be a string", name.String())
			}
			params = append(params, s)
		}
	}

	call := func(args []any) (*Token, error) {
		result, err := fn(goja.Undefined(), vm.ToValue(args))
		if err != nil {
			return nil, err
		}
		if goja.IsUndefined(result) || goja.IsNull(result) {
			return nil, nil
		}
		t, err := valueToken(result.Export())
		if err != nil {
			return nil, err
		}
		if t.Kind == KindFloat {
			t = numberToken(t.Float())
		}
		return &t, nil
	}
	return Export{Name: name.String(), Func: call, Params: params}, nil
}
