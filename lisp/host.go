package lisp

import (
	"fmt"
	"reflect"
)

const DefaultDotSigil = "."

// HostObject is implemented by foreign values reachable through
// dot-expressions.
type HostObject interface {
	Lookup(name string) (Method, bool)
}

// Method is a host callable. Only methods with Exported set can be
// reached from the language.
type Method struct {
	Fn       Proc
	Exported bool
	Rules    Rules
}

// Dot looks up name on obj and calls it with args. The boolean is false
// when obj has no such method or does not export it; a failed validation
// still counts as found and its Error is returned as the result.
func Dot(name string, obj *Object, args []Value, v Validator) (Value, bool) {
	if obj == nil || obj.host == nil {
		return nil, false
	}
	m, ok := obj.host.Lookup(name)
	if !ok || !m.Exported || m.Fn == nil {
		return nil, false
	}
	if v != nil {
		if err := v.Validate(m.Rules, args); err != nil {
			return err, true
		}
	}
	res := m.Fn(args)
	if res == nil {
		return Nil{}, true
	}
	return res, true
}

// Methods is a HostObject built from a plain table.
type Methods map[string]Method

func (m Methods) Lookup(name string) (Method, bool) {
	method, ok := m[name]
	return method, ok
}

type reflected struct {
	v        reflect.Value
	exported map[string]bool
}

// Reflect exposes the Go methods of v. Only the names listed in exported
// are callable; every other method reports as not exported. Parameter
// rules are derived from the Go signature.
func Reflect(v any, exported ...string) *Object {
	r := reflected{v: reflect.ValueOf(v), exported: map[string]bool{}}
	for _, name := range exported {
		r.exported[name] = true
	}
	return NewObject(r)
}

func (r reflected) String() string {
	if s, ok := r.v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("#<object %s>", r.v.Type())
}

func (r reflected) Lookup(name string) (Method, bool) {
	if !r.v.IsValid() {
		return Method{}, false
	}
	m := r.v.MethodByName(name)
	if !m.IsValid() {
		return Method{}, false
	}
	t := m.Type()
	var rules Rules
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			rest := ruleFor(in.Elem())
			rules.Rest = &rest
			break
		}
		rules.Params = append(rules.Params, ruleFor(in))
	}
	return Method{
		Fn:       func(args []Value) Value { return callReflected(name, m, args) },
		Exported: r.exported[name],
		Rules:    rules,
	}, true
}

var (
	valueType = reflect.TypeOf((*Value)(nil)).Elem()
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

func callReflected(name string, m reflect.Value, args []Value) Value {
	t := m.Type()
	switch want := t.NumIn(); {
	case t.IsVariadic() && len(args) < want-1:
		return Errorf(EvalInvalidArity, "%s expects at least %d arguments, got %d", name, want-1, len(args))
	case !t.IsVariadic() && len(args) != want:
		return Errorf(EvalInvalidArity, "%s expects %d arguments, got %d", name, want, len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		var pt reflect.Type
		if t.IsVariadic() && i >= t.NumIn()-1 {
			pt = t.In(t.NumIn() - 1).Elem()
		} else {
			pt = t.In(i)
		}
		rv, err := toGo(a, pt)
		if err != nil {
			return Errorf(EvalInvalidArgument, "%s: argument %d: %v", name, i+1, err)
		}
		in[i] = rv
	}
	out := m.Call(in)
	if n := len(out); n > 0 && t.Out(n-1) == errorType {
		if err, _ := out[n-1].Interface().(error); err != nil {
			return Errorf(EvalNativeFault, "%s: %v", name, err)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return Nil{}
	case 1:
		return fromGo(out[0])
	}
	vs := make([]Value, len(out))
	for i, o := range out {
		vs[i] = fromGo(o)
	}
	return NewPrimitive(vs)
}

func toGo(v Value, t reflect.Type) (reflect.Value, error) {
	if t == valueType {
		return reflect.ValueOf(&v).Elem(), nil
	}
	switch x := v.(type) {
	case Nil:
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func:
			return reflect.Zero(t), nil
		}
	case Keyword:
		if t.Kind() == reflect.String {
			return reflect.ValueOf(string(x)).Convert(t), nil
		}
	case *Object:
		if r, ok := x.host.(reflected); ok && r.v.Type().AssignableTo(t) {
			return r.v, nil
		}
		if reflect.TypeOf(x.host).AssignableTo(t) {
			return reflect.ValueOf(x.host), nil
		}
	case Primitive:
		return primitiveToGo(x.v, t)
	}
	if rv := reflect.ValueOf(v); rv.IsValid() && rv.Type().AssignableTo(t) {
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", describe(v), t)
}

func primitiveToGo(p any, t reflect.Type) (reflect.Value, error) {
	rv := reflect.ValueOf(p)
	if !rv.IsValid() {
		return reflect.Zero(t), nil
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if n, ok := p.(float64); ok {
			return reflect.ValueOf(n).Convert(t), nil
		}
	case reflect.Slice:
		if l, ok := p.([]Value); ok {
			out := reflect.MakeSlice(t, len(l), len(l))
			for i, e := range l {
				ev, err := toGo(e, t.Elem())
				if err != nil {
					return reflect.Value{}, err
				}
				out.Index(i).Set(ev)
			}
			return out, nil
		}
	}
	if rv.Type().ConvertibleTo(t) && rv.Kind() == t.Kind() {
		return rv.Convert(t), nil
	}
	if t.Kind() == reflect.Interface && rv.Type().Implements(t) {
		return rv, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %v as %s", p, t)
}

func fromGo(rv reflect.Value) Value {
	if !rv.IsValid() {
		return Nil{}
	}
	if rv.Type().Implements(valueType) {
		if v, ok := rv.Interface().(Value); ok && v != nil {
			return v
		}
		return Nil{}
	}
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return NewPrimitive(float64(rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return NewPrimitive(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return NewPrimitive(rv.Float())
	case reflect.String:
		return NewPrimitive(rv.String())
	case reflect.Bool:
		return NewPrimitive(rv.Bool())
	case reflect.Slice, reflect.Array:
		l := make([]Value, rv.Len())
		for i := range l {
			l[i] = fromGo(rv.Index(i))
		}
		return NewPrimitive(l)
	case reflect.Map:
		m := make(map[Value]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fromGo(iter.Key())] = fromGo(iter.Value())
		}
		return NewPrimitive(m)
	case reflect.Ptr:
		if rv.IsNil() {
			return Nil{}
		}
	case reflect.Interface:
		if rv.IsNil() {
			return Nil{}
		}
		return fromGo(rv.Elem())
	}
	if h, ok := rv.Interface().(HostObject); ok {
		return NewObject(h)
	}
	return Reflect(rv.Interface())
}

func ruleFor(t reflect.Type) Rule {
	if t == valueType {
		return AnyRule
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return NumberRule
	case reflect.String:
		return StringRule
	case reflect.Bool:
		return BoolRule
	case reflect.Slice, reflect.Array:
		return ListRule
	case reflect.Map:
		return MapRule
	case reflect.Ptr, reflect.Struct:
		return ObjectRule
	}
	return AnyRule
}
