package lisp

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

type Symbol = string

// Value is the closed set of things an evaluation can produce.
// Only types in this package implement it.
type Value interface {
	String() string
	value()
}

// Callable is the capability a head value needs to be applied.
type Callable interface {
	Call(args []Value) Value
}

type Nil struct{}

func (Nil) value()         {}
func (Nil) String() string { return "nil" }

// Undefined marks an identifier the reader could not prove to be bound.
type Undefined struct {
	Name Symbol
}

func (Undefined) value() {}
func (u Undefined) String() string {
	return fmt.Sprintf("#<undefined %s>", u.Name)
}

// Keyword holds its full text, prefix included.
type Keyword string

func (Keyword) value()           {}
func (k Keyword) String() string { return string(k) }

// Primitive wraps opaque data: numbers (float64), strings, bools,
// lists ([]Value) and hash-maps (map[Value]Value).
type Primitive struct {
	v any
}

func NewPrimitive(v any) Primitive {
	return Primitive{v: v}
}

func (Primitive) value() {}

func (p Primitive) Interface() any { return p.v }

func (p Primitive) String() string {
	switch v := p.v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return strconv.Quote(v)
	case bool:
		return strconv.FormatBool(v)
	case []Value:
		s := make([]string, len(v))
		for i, e := range v {
			s[i] = e.String()
		}
		return "(" + strings.Join(s, " ") + ")"
	case map[Value]Value:
		s := make([]string, 0, len(v))
		for k, e := range v {
			s = append(s, k.String()+" "+e.String())
		}
		sort.Strings(s)
		return "{" + strings.Join(s, ", ") + "}"
	}
	return fmt.Sprint(p.v)
}

type Proc func(args []Value) Value

type Function struct {
	Name string
	proc Proc
}

func NewFunction(name string, proc Proc) *Function {
	return &Function{Name: name, proc: proc}
}

func (*Function) value() {}

func (f *Function) Call(args []Value) Value {
	v := f.proc(args)
	if v == nil {
		return Nil{}
	}
	return v
}

func (f *Function) String() string {
	if f.Name == "" {
		return "#<fn>"
	}
	return fmt.Sprintf("#<fn %s>", f.Name)
}

// Expander rewrites the unevaluated rest of a form into a new node.
// local and module are handed over for reading only; bindings a macro
// wants to introduce must be part of the node it returns.
type Expander func(rest []Node, local Scope, module *Env, eval EvalFunc) Node

type Macro struct {
	Name   string
	expand Expander
}

func NewMacro(name string, expand Expander) *Macro {
	return &Macro{Name: name, expand: expand}
}

func (*Macro) value() {}

func (m *Macro) Expand(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	return m.expand(rest, local, module, eval)
}

func (m *Macro) String() string {
	return fmt.Sprintf("#<macro %s>", m.Name)
}

// Object carries a host value into the language.
type Object struct {
	host HostObject
}

func NewObject(h HostObject) *Object {
	return &Object{host: h}
}

func (*Object) value() {}

func (o *Object) Host() HostObject { return o.host }

func (o *Object) String() string {
	if s, ok := o.host.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("#<object %T>", o.host)
}

func AsNumber(v Value) (float64, bool) {
	p, ok := v.(Primitive)
	if !ok {
		return 0, false
	}
	n, ok := p.v.(float64)
	return n, ok
}

func AsString(v Value) (string, bool) {
	p, ok := v.(Primitive)
	if !ok {
		return "", false
	}
	s, ok := p.v.(string)
	return s, ok
}

func AsList(v Value) ([]Value, bool) {
	p, ok := v.(Primitive)
	if !ok {
		return nil, false
	}
	l, ok := p.v.([]Value)
	return l, ok
}

func AsMap(v Value) (map[Value]Value, bool) {
	p, ok := v.(Primitive)
	if !ok {
		return nil, false
	}
	m, ok := p.v.(map[Value]Value)
	return m, ok
}

// only nil and false are falsy
func isTruthy(v Value) bool {
	switch x := v.(type) {
	case nil, Nil:
		return false
	case Primitive:
		if b, ok := x.v.(bool); ok {
			return b
		}
	}
	return true
}

// hashable reports whether v can be used as a hash-map key.
func hashable(v Value) bool {
	switch x := v.(type) {
	case Keyword, Nil:
		return true
	case Primitive:
		return x.v == nil || reflect.TypeOf(x.v).Comparable()
	}
	return false
}

func equal(a, b Value) bool {
	return reflect.DeepEqual(a, b)
}
