package main

// Env is the variable environment of one function call: one binding table
// per nesting level, level 0 being the function's top level.
type Env struct {
	levels []map[string]Token
	loops  int // enclosing while blocks
}

func NewEnv() *Env {
	return &Env{levels: []map[string]Token{{}}}
}

func (e *Env) ensure(level int) {
	for len(e.levels) <= level {
		e.levels = append(e.levels, map[string]Token{})
	}
}

// Lookup walks the levels from 0 up to and including level; a binding at a
// deeper level wins over one at a shallower level.
func (e *Env) Lookup(name string, level int) (Token, bool) {
	var found Token
	ok := false
	for i := 0; i <= level && i < len(e.levels); i++ {
		if t, exists := e.levels[i][name]; exists {
			found, ok = t, true
		}
	}
	return found, ok
}

// declaredAt returns the deepest visible level holding name, or -1.
func (e *Env) declaredAt(name string, level int) int {
	at := -1
	for i := 0; i <= level && i < len(e.levels); i++ {
		if _, exists := e.levels[i][name]; exists {
			at = i
		}
	}
	return at
}

// Declare binds name at level. It reports false when the name is already
// visible from that level.
func (e *Env) Declare(name string, level int, value Token) bool {
	if e.declaredAt(name, level) >= 0 {
		return false
	}
	e.ensure(level)
	e.levels[level][name] = value
	return true
}

// Assign overwrites the visible binding of name. It reports false when the
// name is not visible from level.
func (e *Env) Assign(name string, level int, value Token) bool {
	at := e.declaredAt(name, level)
	if at < 0 {
		return false
	}
	e.levels[at][name] = value
	return true
}

// Enter starts a fresh scope at level, discarding whatever a previous block
// (or loop iteration) left there or deeper.
func (e *Env) Enter(level int) {
	e.ensure(level)
	for i := level; i < len(e.levels); i++ {
		e.levels[i] = map[string]Token{}
	}
}

// Leave drops level and everything deeper.
func (e *Env) Leave(level int) {
	if level <= 0 {
		return
	}
	if level < len(e.levels) {
		e.levels = e.levels[:level]
	}
}
