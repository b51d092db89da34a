package lisp

import "strings"

// Rule checks a single argument.
type Rule struct {
	Name  string
	Check func(Value) bool
}

// Rules describes the parameters of a host method. Rest, when set,
// applies to every argument past Params.
type Rules struct {
	Params []Rule
	Rest   *Rule
}

func (r Rules) String() string {
	s := make([]string, 0, len(r.Params)+1)
	for _, p := range r.Params {
		s = append(s, p.Name)
	}
	if r.Rest != nil {
		s = append(s, r.Rest.Name+"...")
	}
	return "(" + strings.Join(s, " ") + ")"
}

// Validator decides whether args satisfy rules. A non-nil Error is
// returned as the result of the call in place of invoking the method.
type Validator interface {
	Validate(rules Rules, args []Value) *Error
}

// RuleValidator checks arity and then every argument against its rule.
type RuleValidator struct{}

func (RuleValidator) Validate(rules Rules, args []Value) *Error {
	n := len(rules.Params)
	if len(args) < n || (rules.Rest == nil && len(args) > n) {
		return Errorf(EvalSpecViolation, "expected arguments %s, got %d", rules, len(args))
	}
	for i, a := range args {
		rule := rules.Rest
		if i < n {
			rule = &rules.Params[i]
		}
		if rule.Check != nil && !rule.Check(a) {
			return Errorf(EvalSpecViolation, "argument %d: expected %s, got %s", i+1, rule.Name, describe(a))
		}
	}
	return nil
}

var (
	AnyRule    = Rule{Name: "any"}
	NumberRule = Rule{Name: "number", Check: func(v Value) bool {
		_, ok := AsNumber(v)
		return ok
	}}
	StringRule = Rule{Name: "string", Check: func(v Value) bool {
		if _, ok := v.(Keyword); ok {
			return true
		}
		_, ok := AsString(v)
		return ok
	}}
	BoolRule = Rule{Name: "bool", Check: func(v Value) bool {
		p, ok := v.(Primitive)
		if !ok {
			return false
		}
		_, ok = p.v.(bool)
		return ok
	}}
	ListRule = Rule{Name: "list", Check: func(v Value) bool {
		if _, ok := v.(Nil); ok {
			return true
		}
		_, ok := AsList(v)
		return ok
	}}
	MapRule = Rule{Name: "map", Check: func(v Value) bool {
		_, ok := AsMap(v)
		return ok
	}}
	ObjectRule = Rule{Name: "object", Check: func(v Value) bool {
		_, ok := v.(*Object)
		return ok
	}}
)
