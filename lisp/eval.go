package lisp

import (
	"fmt"
	"strings"
)

// EvalFunc evaluates a node against a local scope. Macros receive one so
// they can evaluate parts of their input while deciding on an expansion.
type EvalFunc func(local Scope, n Node) Value

type Evaluator struct {
	// Get realises keyword heads: (:k m) is (get m :k), (:k m d) is (get m :k d).
	Get Callable
	// Validator checks host-method arguments before the call. Nil skips validation.
	Validator Validator
	// DotSigil prefixes identifiers that name host methods, as in (.Method obj args...).
	DotSigil string
}

func NewEvaluator() *Evaluator {
	return &Evaluator{
		Get:       builtinGet,
		Validator: RuleValidator{},
		DotSigil:  DefaultDotSigil,
	}
}

var defaultEvaluator = NewEvaluator()

// Evaluate evaluates every tree of forest in order against module using
// the default evaluator.
func Evaluate(forest Forest, module *Env) []Value {
	return defaultEvaluator.Evaluate(forest, module)
}

// Evaluate returns one value per tree. Trees get a fresh local scope each
// but share module, so definitions made by one tree are seen by the next.
// It never panics: failures come back as *Error values.
func (ev *Evaluator) Evaluate(forest Forest, module *Env) []Value {
	out := make([]Value, 0, len(forest))
	for _, tree := range forest {
		out = append(out, ev.EvaluateTree(tree, module))
	}
	return out
}

// EvaluateTree evaluates a single top-level tree behind the error boundary.
func (ev *Evaluator) EvaluateTree(tree Node, module *Env) (result Value) {
	fallback := Pos{Module: module.Module, Line: 1, Col: 1}
	defer func() {
		if r := recover(); r != nil {
			result = fault(r, EvalNativeFault, posOf(tree), fallback)
		}
	}()
	e := &evaluation{ev: ev, module: module}
	v := e.eval(Scope{}, tree)
	return positioned(positioned(v, posOf(tree)), fallback)
}

type evaluation struct {
	ev     *Evaluator
	module *Env
}

var identity = NewFunction("identity", func(args []Value) Value {
	if len(args) != 1 {
		return Errorf(EvalInvalidArity, "identity expects 1 argument, got %d", len(args))
	}
	return args[0]
})

func (e *evaluation) eval(local Scope, n Node) Value {
	switch n := n.(type) {
	case nil:
		return Nil{}
	case Form:
		if len(n) == 0 {
			return Nil{}
		}
		return e.form(local, n)
	case Leaf:
		// a bare leaf is the implicit call (identity leaf)
		return e.form(local, Form{literal(identity, n.Pos), n})
	}
	panic(fmt.Sprintf("eval: unknown node type %T", n))
}

func (e *evaluation) form(local Scope, f Form) Value {
	head, rest := f[0], f[1:]
	pos := posOf(f)

	// leaf heads are resolved exactly once, before anything else, so a
	// macro sees its arguments unevaluated
	var fn Value
	leaf, isLeaf := head.(Leaf)
	if isLeaf {
		switch {
		case leaf.Type == TokKeyword:
		case e.isDotExpr(leaf):
		case leaf.Type == TokIdentifier:
			v, err := e.resolve(local, leaf)
			if err != nil {
				return err
			}
			fn = v
		default:
			fn = leaf.Value
		}
		if m, ok := fn.(*Macro); ok {
			return e.eval(local, m.Expand(rest, local, e.module, e.eval))
		}
	}

	args, err := e.collect(local, rest)
	if err != nil {
		return err
	}

	if !isLeaf {
		v := e.eval(local, head)
		if err, ok := v.(*Error); ok {
			return err
		}
		return e.apply(v, args, pos)
	}
	switch {
	case leaf.Type == TokKeyword:
		return e.getter(leaf.Value, args, pos)
	case e.isDotExpr(leaf):
		return e.dot(leaf, args, pos)
	}
	return e.apply(fn, args, pos)
}

// collect evaluates the arguments of a form left to right and stops at
// the first error.
func (e *evaluation) collect(local Scope, rest []Node) ([]Value, *Error) {
	args := make([]Value, 0, len(rest))
	for _, n := range rest {
		switch n := n.(type) {
		case Leaf:
			switch n.Type {
			case TokIdentifier:
				v, err := e.resolve(local, n)
				if err != nil {
					return nil, err
				}
				args = append(args, v)
			case TokError:
				if err, ok := n.Value.(*Error); ok {
					return nil, err
				}
				return nil, errorAt(BuildInvalidToken, n.Pos, "invalid token %q", n.Text)
			default:
				if n.Value == nil {
					args = append(args, Nil{})
					continue
				}
				args = append(args, n.Value)
			}
		default:
			v := e.eval(local, n)
			if err, ok := v.(*Error); ok {
				return nil, err
			}
			args = append(args, v)
		}
	}
	return args, nil
}

func (e *evaluation) resolve(local Scope, leaf Leaf) (Value, *Error) {
	if v, ok := e.module.find(local, leaf.Text); ok {
		return v, nil
	}
	switch leaf.Value.(type) {
	case nil, Undefined:
		return nil, errorAt(EvalNotFoundInContext, leaf.Pos, "%s not found in context", leaf.Text)
	}
	return leaf.Value, nil
}

func (e *evaluation) apply(fn Value, args []Value, pos Pos) Value {
	switch f := fn.(type) {
	case *Error:
		return f
	case Keyword:
		return e.getter(f, args, pos)
	case Callable:
		return positioned(f.Call(args), pos)
	}
	return errorAt(EvalIsNotAFunctionDataType, pos, "%s is not a function", describe(fn))
}

// getter casts a keyword call into the builtin accessor.
func (e *evaluation) getter(kw Value, args []Value, pos Pos) Value {
	var getArgs []Value
	switch len(args) {
	case 1:
		getArgs = []Value{args[0], kw}
	case 2:
		getArgs = []Value{args[0], kw, args[1]}
	default:
		return errorAt(EvalInvalidArity, pos, "keyword %s expects 1 or 2 arguments, got %d", kw, len(args))
	}
	get := e.ev.Get
	if get == nil {
		get = builtinGet
	}
	return positioned(get.Call(getArgs), pos)
}

func (ev *Evaluator) sigil() string {
	if ev.DotSigil == "" {
		return DefaultDotSigil
	}
	return ev.DotSigil
}

func (e *evaluation) isDotExpr(leaf Leaf) bool {
	sigil := e.ev.sigil()
	return leaf.Type == TokIdentifier && len(leaf.Text) > len(sigil) && strings.HasPrefix(leaf.Text, sigil)
}

func (e *evaluation) dot(leaf Leaf, args []Value, pos Pos) Value {
	name := strings.TrimPrefix(leaf.Text, e.ev.sigil())
	if len(args) == 0 {
		return errorAt(EvalInvalidDotExprArity, pos, "%s needs a receiver", leaf.Text)
	}
	obj, ok := args[0].(*Object)
	if !ok {
		return errorAt(EvalNotExportedMethod, pos, "%s is not an exported method of %s", name, describe(args[0]))
	}
	v, found := Dot(name, obj, args[1:], e.ev.Validator)
	if !found {
		return errorAt(EvalNotExportedMethod, pos, "%s is not an exported method of %s", name, obj)
	}
	return positioned(v, pos)
}

func describe(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}
