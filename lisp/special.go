package lisp

// Special forms are ordinary macros bound in the module environment.
// None of them writes to a scope directly: def and defsyntax expand into a
// call of a binder function, and fn builds a closure whose calls get a
// scope of their own.

func addSpecialForms(env *Env) {
	env.AddMacro("if", expandIf)
	env.AddMacro("def", expandDef)
	env.AddMacro("fn", expandFn)
	env.AddMacro("cond", expandCond)
	env.AddMacro("quote", expandQuote)
	env.AddMacro("defsyntax", expandDefSyntax)
}

func syntaxError(pos Pos, format string, args ...any) Node {
	return errorLeaf(errorAt(EvalInvalidSyntax, pos, format, args...))
}

func restPos(rest []Node) Pos {
	for _, n := range rest {
		if p := posOf(n); !p.IsZero() {
			return p
		}
	}
	return Pos{}
}

func identifier(n Node) (Leaf, bool) {
	leaf, ok := n.(Leaf)
	return leaf, ok && leaf.Type == TokIdentifier
}

// (if test then [else])
func expandIf(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	if len(rest) != 2 && len(rest) != 3 {
		return syntaxError(restPos(rest), "if expects a test, a consequent and an optional alternative")
	}
	tested := eval(local, rest[0])
	if err, ok := tested.(*Error); ok {
		return errorLeaf(err)
	}
	if isTruthy(tested) {
		return rest[1]
	}
	if len(rest) == 2 {
		return literal(Nil{}, posOf(rest[0]))
	}
	return rest[2]
}

// binder returns a function that binds its single argument to name in
// the module environment.
func binder(module *Env, name Symbol) *Function {
	return NewFunction("def", func(args []Value) Value {
		if len(args) != 1 {
			return Errorf(EvalInvalidArity, "def expects 1 value, got %d", len(args))
		}
		v := args[0]
		if f, ok := v.(*Function); ok && f.Name == "" {
			f.Name = name
		}
		module.Add(name, v)
		return v
	})
}

// (def name expr)
func expandDef(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	if len(rest) != 2 {
		return syntaxError(restPos(rest), "def expects a name and a value")
	}
	name, ok := identifier(rest[0])
	if !ok {
		return syntaxError(posOf(rest[0]), "def expects an identifier, got %s", nodeString(rest[0]))
	}
	return Form{literal(binder(module, name.Text), name.Pos), rest[1]}
}

// (fn (params... [& rest]) body...)
func expandFn(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	if len(rest) < 1 {
		return syntaxError(Pos{}, "fn expects a parameter list")
	}
	pos := posOf(rest[0])
	plist, ok := rest[0].(Form)
	if !ok {
		return syntaxError(pos, "fn expects a parameter list, got %s", nodeString(rest[0]))
	}
	var params []Symbol
	variadic := ""
	for i := 0; i < len(plist); i++ {
		p, ok := identifier(plist[i])
		if !ok {
			return syntaxError(pos, "fn parameter %s is not an identifier", nodeString(plist[i]))
		}
		if p.Text == "&" {
			if i != len(plist)-2 {
				return syntaxError(p.Pos, "fn expects exactly one parameter after &")
			}
			v, ok := identifier(plist[i+1])
			if !ok {
				return syntaxError(p.Pos, "fn rest parameter is not an identifier")
			}
			variadic = v.Text
			break
		}
		params = append(params, p.Text)
	}
	body := rest[1:]
	closure := copyScope(local)
	f := NewFunction("", nil)
	f.proc = func(args []Value) Value {
		if len(args) < len(params) || (variadic == "" && len(args) > len(params)) {
			return Errorf(EvalInvalidArity, "%s expects %d arguments, got %d", f, len(params), len(args))
		}
		scope := copyScope(closure)
		for i, p := range params {
			scope[p] = args[i]
		}
		if variadic != "" {
			more := make([]Value, len(args)-len(params))
			copy(more, args[len(params):])
			scope[variadic] = NewPrimitive(more)
		}
		var result Value = Nil{}
		for _, b := range body {
			result = eval(scope, b)
			if IsError(result) {
				return result
			}
		}
		return result
	}
	return literal(f, pos)
}

func isElse(n Node) bool {
	leaf, ok := n.(Leaf)
	if !ok {
		return false
	}
	return (leaf.Type == TokIdentifier && leaf.Text == "else") ||
		(leaf.Type == TokKeyword && leaf.Text == ":else")
}

var (
	ifMacro = NewMacro("if", expandIf)
	doFunc  = builtinFunc("do", do)
)

// (cond (test body...)... [(else body...)]) becomes nested ifs.
func expandCond(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	var expanded Node = literal(Nil{}, restPos(rest))
	for i := len(rest) - 1; i >= 0; i-- {
		clause, ok := rest[i].(Form)
		if !ok || len(clause) == 0 {
			return syntaxError(posOf(rest[i]), "cond clause must be a non-empty list")
		}
		pos := posOf(clause)
		body := Form{literal(doFunc, pos)}
		body = append(body, clause[1:]...)
		if isElse(clause[0]) {
			if i != len(rest)-1 {
				return syntaxError(pos, "else is not the last cond clause")
			}
			expanded = body
			continue
		}
		expanded = Form{literal(ifMacro, pos), clause[0], body, expanded}
	}
	return expanded
}

// (quote datum)
func expandQuote(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	if len(rest) != 1 {
		return syntaxError(restPos(rest), "quote expects 1 argument, got %d", len(rest))
	}
	return literal(datum(rest[0]), posOf(rest[0]))
}

// datum turns syntax into data: identifiers become strings, forms lists.
func datum(n Node) Value {
	switch n := n.(type) {
	case Leaf:
		if n.Type == TokIdentifier {
			return NewPrimitive(n.Text)
		}
		if n.Value == nil {
			return Nil{}
		}
		return n.Value
	case Form:
		l := make([]Value, len(n))
		for i, c := range n {
			l[i] = datum(c)
		}
		return NewPrimitive(l)
	}
	return Nil{}
}

// (defsyntax name (syntax-rules (literals...) (pattern template)...))
func expandDefSyntax(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
	if len(rest) != 2 {
		return syntaxError(restPos(rest), "defsyntax expects a name and a syntax-rules form")
	}
	name, ok := identifier(rest[0])
	if !ok {
		return syntaxError(posOf(rest[0]), "defsyntax expects an identifier, got %s", nodeString(rest[0]))
	}
	m, err := SyntaxRules(name.Text, rest[1])
	if err != nil {
		return errorLeaf(err)
	}
	return Form{literal(binder(module, name.Text), name.Pos), literal(m, name.Pos)}
}
