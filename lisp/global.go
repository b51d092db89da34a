package lisp

import (
	"math"
	"strings"
)

// GlobalEnv returns a fresh module environment holding the builtins and
// the special forms.
func GlobalEnv(module string) *Env {
	env := &Env{Module: module, dict: map[Symbol]Value{
		"+":          builtinFunc("+", add),
		"-":          builtinFunc("-", sub),
		"*":          builtinFunc("*", mul),
		"/":          builtinFunc("/", div),
		"=":          builtinFunc("=", eq),
		"<":          compare("<", func(a, b float64) bool { return a < b }),
		">":          compare(">", func(a, b float64) bool { return a > b }),
		"<=":         compare("<=", func(a, b float64) bool { return a <= b }),
		">=":         compare(">=", func(a, b float64) bool { return a >= b }),
		"mod":        builtinFunc("mod", mod),
		"not":        builtinFunc("not", not),
		"pi":         NewPrimitive(math.Pi),
		"nil?":       builtinFunc("nil?", isnil),
		"number?":    builtinFunc("number?", isnumber),
		"error?":     builtinFunc("error?", iserror),
		"error-kind": builtinFunc("error-kind", errorKind),
		"list":       builtinFunc("list", list),
		"cons":       builtinFunc("cons", cons),
		"first":      builtinFunc("first", first),
		"rest":       builtinFunc("rest", rest),
		"hash-map":   builtinFunc("hash-map", hashMap),
		"get":        builtinGet,
		"assoc":      builtinFunc("assoc", assoc),
		"count":      builtinFunc("count", count),
		"str":        builtinFunc("str", str),
		"do":         builtinFunc("do", do),
		"identity":   identity,
	}}
	addSpecialForms(env)
	return env
}

func builtinFunc(name string, p Proc) *Function {
	return NewFunction(name, p)
}

var builtinGet = builtinFunc("get", get)

func arity(name string, args []Value, min, max int) *Error {
	if len(args) < min || (max >= 0 && len(args) > max) {
		switch {
		case min == max:
			return Errorf(EvalInvalidArity, "%s expects %d arguments, got %d", name, min, len(args))
		case max < 0:
			return Errorf(EvalInvalidArity, "%s expects at least %d arguments, got %d", name, min, len(args))
		}
		return Errorf(EvalInvalidArity, "%s expects %d to %d arguments, got %d", name, min, max, len(args))
	}
	return nil
}

func numbers(name string, args []Value) ([]float64, *Error) {
	out := make([]float64, len(args))
	for i, a := range args {
		n, ok := AsNumber(a)
		if !ok {
			return nil, Errorf(EvalInvalidArgument, "%s: argument %d is not a number: %s", name, i+1, describe(a))
		}
		out[i] = n
	}
	return out, nil
}

func add(args []Value) Value {
	ns, err := numbers("+", args)
	if err != nil {
		return err
	}
	sum := 0.0
	for _, n := range ns {
		sum += n
	}
	return NewPrimitive(sum)
}

func sub(args []Value) Value {
	if err := arity("-", args, 1, -1); err != nil {
		return err
	}
	ns, err := numbers("-", args)
	if err != nil {
		return err
	}
	if len(ns) == 1 {
		return NewPrimitive(-ns[0])
	}
	out := ns[0]
	for _, n := range ns[1:] {
		out -= n
	}
	return NewPrimitive(out)
}

func mul(args []Value) Value {
	ns, err := numbers("*", args)
	if err != nil {
		return err
	}
	out := 1.0
	for _, n := range ns {
		out *= n
	}
	return NewPrimitive(out)
}

func div(args []Value) Value {
	if err := arity("/", args, 1, -1); err != nil {
		return err
	}
	ns, err := numbers("/", args)
	if err != nil {
		return err
	}
	if len(ns) == 1 {
		ns = append([]float64{1}, ns...)
	}
	out := ns[0]
	for _, n := range ns[1:] {
		if n == 0 {
			return Errorf(EvalInvalidArgument, "/: division by zero")
		}
		out /= n
	}
	return NewPrimitive(out)
}

func mod(args []Value) Value {
	if err := arity("mod", args, 2, 2); err != nil {
		return err
	}
	ns, err := numbers("mod", args)
	if err != nil {
		return err
	}
	if ns[1] == 0 {
		return Errorf(EvalInvalidArgument, "mod: division by zero")
	}
	return NewPrimitive(math.Mod(ns[0], ns[1]))
}

func eq(args []Value) Value {
	if err := arity("=", args, 1, -1); err != nil {
		return err
	}
	for _, a := range args[1:] {
		if !equal(args[0], a) {
			return NewPrimitive(false)
		}
	}
	return NewPrimitive(true)
}

func compare(name string, cmp func(a, b float64) bool) *Function {
	return builtinFunc(name, func(args []Value) Value {
		if err := arity(name, args, 1, -1); err != nil {
			return err
		}
		ns, err := numbers(name, args)
		if err != nil {
			return err
		}
		for i := 1; i < len(ns); i++ {
			if !cmp(ns[i-1], ns[i]) {
				return NewPrimitive(false)
			}
		}
		return NewPrimitive(true)
	})
}

func not(args []Value) Value {
	if err := arity("not", args, 1, 1); err != nil {
		return err
	}
	return NewPrimitive(!isTruthy(args[0]))
}

func isnil(args []Value) Value {
	if err := arity("nil?", args, 1, 1); err != nil {
		return err
	}
	_, ok := args[0].(Nil)
	return NewPrimitive(ok)
}

func isnumber(args []Value) Value {
	if err := arity("number?", args, 1, 1); err != nil {
		return err
	}
	_, ok := AsNumber(args[0])
	return NewPrimitive(ok)
}

func iserror(args []Value) Value {
	if err := arity("error?", args, 1, 1); err != nil {
		return err
	}
	return NewPrimitive(IsError(args[0]))
}

func errorKind(args []Value) Value {
	if err := arity("error-kind", args, 1, 1); err != nil {
		return err
	}
	e, ok := args[0].(*Error)
	if !ok {
		return Nil{}
	}
	return NewPrimitive(e.Kind.String())
}

func list(args []Value) Value {
	l := make([]Value, len(args))
	copy(l, args)
	return NewPrimitive(l)
}

func listArg(name string, v Value) ([]Value, *Error) {
	if _, ok := v.(Nil); ok {
		return nil, nil
	}
	l, ok := AsList(v)
	if !ok {
		return nil, Errorf(EvalInvalidArgument, "%s: %s is not a list", name, describe(v))
	}
	return l, nil
}

func cons(args []Value) Value {
	if err := arity("cons", args, 2, 2); err != nil {
		return err
	}
	l, err := listArg("cons", args[1])
	if err != nil {
		return err
	}
	out := make([]Value, 0, len(l)+1)
	out = append(out, args[0])
	return NewPrimitive(append(out, l...))
}

func first(args []Value) Value {
	if err := arity("first", args, 1, 1); err != nil {
		return err
	}
	l, err := listArg("first", args[0])
	if err != nil {
		return err
	}
	if len(l) == 0 {
		return Nil{}
	}
	return l[0]
}

func rest(args []Value) Value {
	if err := arity("rest", args, 1, 1); err != nil {
		return err
	}
	l, err := listArg("rest", args[0])
	if err != nil {
		return err
	}
	if len(l) <= 1 {
		return NewPrimitive([]Value{})
	}
	out := make([]Value, len(l)-1)
	copy(out, l[1:])
	return NewPrimitive(out)
}

func hashMap(args []Value) Value {
	if len(args)%2 != 0 {
		return Errorf(EvalInvalidArity, "hash-map expects an even number of arguments, got %d", len(args))
	}
	m := make(map[Value]Value, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		if !hashable(args[i]) {
			return Errorf(EvalInvalidArgument, "hash-map: %s cannot be used as a key", describe(args[i]))
		}
		m[args[i]] = args[i+1]
	}
	return NewPrimitive(m)
}

// (get coll key [default]) looks up a key in a hash-map or an index in a
// list. A missing entry yields default, or nil without one.
func get(args []Value) Value {
	if err := arity("get", args, 2, 3); err != nil {
		return err
	}
	var def Value = Nil{}
	if len(args) == 3 {
		def = args[2]
	}
	coll, key := args[0], args[1]
	if m, ok := AsMap(coll); ok {
		if !hashable(key) {
			return def
		}
		if v, ok := m[key]; ok {
			return v
		}
		return def
	}
	if l, ok := AsList(coll); ok {
		i, ok := AsNumber(key)
		if !ok || i != math.Trunc(i) || i < 0 || i >= float64(len(l)) {
			return def
		}
		return l[int(i)]
	}
	if _, ok := coll.(Nil); ok {
		return def
	}
	return Errorf(EvalInvalidArgument, "get: %s is not a collection", describe(coll))
}

func assoc(args []Value) Value {
	if len(args) < 3 || len(args)%2 != 1 {
		return Errorf(EvalInvalidArity, "assoc expects a map followed by key value pairs, got %d arguments", len(args))
	}
	var m map[Value]Value
	switch coll := args[0].(type) {
	case Nil:
	default:
		src, ok := AsMap(coll)
		if !ok {
			return Errorf(EvalInvalidArgument, "assoc: %s is not a hash-map", describe(coll))
		}
		m = src
	}
	out := make(map[Value]Value, len(m)+len(args)/2)
	for k, v := range m {
		out[k] = v
	}
	for i := 1; i < len(args); i += 2 {
		if !hashable(args[i]) {
			return Errorf(EvalInvalidArgument, "assoc: %s cannot be used as a key", describe(args[i]))
		}
		out[args[i]] = args[i+1]
	}
	return NewPrimitive(out)
}

func count(args []Value) Value {
	if err := arity("count", args, 1, 1); err != nil {
		return err
	}
	switch x := args[0].(type) {
	case Nil:
		return NewPrimitive(0.0)
	case Primitive:
		switch v := x.v.(type) {
		case []Value:
			return NewPrimitive(float64(len(v)))
		case map[Value]Value:
			return NewPrimitive(float64(len(v)))
		case string:
			return NewPrimitive(float64(len([]rune(v))))
		}
	}
	return Errorf(EvalInvalidArgument, "count: %s is not countable", describe(args[0]))
}

func str(args []Value) Value {
	var b strings.Builder
	for _, a := range args {
		if s, ok := AsString(a); ok {
			b.WriteString(s)
			continue
		}
		if _, ok := a.(Nil); ok {
			continue
		}
		b.WriteString(a.String())
	}
	return NewPrimitive(b.String())
}

func do(args []Value) Value {
	if len(args) == 0 {
		return Nil{}
	}
	return args[len(args)-1]
}
