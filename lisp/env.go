package lisp

import "sort"

// Scope is the flat local binding table of one evaluation.
type Scope map[Symbol]Value

// copyScope returns a new scope holding the bindings of s.
func copyScope(s Scope) Scope {
	c := make(Scope, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Env is the module environment: long-lived and shared by every top-level
// tree of a module, including across separate Evaluate calls.
// It is not safe for concurrent use.
type Env struct {
	Module string
	dict   map[Symbol]Value
}

func NewEnv(module string) *Env {
	return &Env{Module: module, dict: map[Symbol]Value{}}
}

func (e *Env) Lookup(s Symbol) (Value, bool) {
	v, ok := e.dict[s]
	return v, ok
}

func (e *Env) Add(s Symbol, v Value) {
	e.dict[s] = v
}

func (e *Env) AddBuiltin(s Symbol, p Proc) {
	e.dict[s] = NewFunction(s, p)
}

func (e *Env) AddMacro(s Symbol, x Expander) {
	e.dict[s] = NewMacro(s, x)
}

// Symbols lists the bound names in sorted order.
func (e *Env) Symbols() []Symbol {
	out := make([]Symbol, 0, len(e.dict))
	for s := range e.dict {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// find checks the local scope first, then the module.
func (e *Env) find(local Scope, s Symbol) (Value, bool) {
	if v, ok := local[s]; ok {
		return v, true
	}
	return e.Lookup(s)
}
