package lisp

import (
	"reflect"
	"strings"
	"testing"
)

func pos(line, col int) Pos {
	return Pos{Module: "mod", Line: line, Col: col}
}

func ident(name string, p Pos) Leaf {
	return Leaf{Token{Type: TokIdentifier, Pos: p, Text: name, Value: Undefined{Name: name}}}
}

func lit(v Value, p Pos) Leaf {
	return Leaf{Token{Type: TokLiteral, Pos: p, Text: v.String(), Value: v}}
}

func kw(k string, p Pos) Leaf {
	return Leaf{Token{Type: TokKeyword, Pos: p, Text: k, Value: Keyword(k)}}
}

func num(n float64) Primitive { return NewPrimitive(n) }

func plus() *Function {
	return NewFunction("+", func(args []Value) Value {
		sum := 0.0
		for _, a := range args {
			n, _ := AsNumber(a)
			sum += n
		}
		return num(sum)
	})
}

func wantError(t *testing.T, v Value, kind FaultKind, p Pos) {
	t.Helper()
	err, ok := v.(*Error)
	if !ok {
		t.Fatalf("got %s want %s error", v, kind)
	}
	if err.Kind != kind {
		t.Errorf("got kind %s want %s (%s)", err.Kind, kind, err.Msg)
	}
	if err.Pos != p {
		t.Errorf("got pos %s want %s", err.Pos, p)
	}
}

func TestEvaluateScenarios(t *testing.T) {
	t.Run("native function", func(t *testing.T) {
		env := NewEnv("mod")
		env.Add("add", plus())
		tree := Form{ident("add", pos(1, 2)), lit(num(2), pos(1, 6)), lit(num(3), pos(1, 8))}
		got := Evaluate(Forest{tree}, env)
		if len(got) != 1 || got[0].String() != "5" {
			t.Errorf("got %v want [5]", got)
		}
	})
	t.Run("undefined identifier", func(t *testing.T) {
		tree := Form{ident("undefinedvar", pos(1, 1))}
		got := Evaluate(Forest{tree}, NewEnv("mod"))
		wantError(t, got[0], EvalNotFoundInContext, pos(1, 1))
		if err := got[0].(*Error); !strings.Contains(err.Msg, "undefinedvar") {
			t.Errorf("got message %q, want it to name undefinedvar", err.Msg)
		}
	})
	t.Run("keyword getter", func(t *testing.T) {
		m := NewPrimitive(map[Value]Value{Keyword(":x"): num(10)})
		tree := Form{kw(":x", pos(1, 2)), lit(m, pos(1, 5))}
		got := Evaluate(Forest{tree}, NewEnv("mod"))
		if got[0].String() != "10" {
			t.Errorf("got %s want 10", got[0])
		}
	})
	t.Run("keyword getter with default", func(t *testing.T) {
		m := NewPrimitive(map[Value]Value{})
		tree := Form{kw(":x", pos(1, 2)), lit(m, pos(1, 5)), lit(num(7), pos(1, 8))}
		got := Evaluate(Forest{tree}, NewEnv("mod"))
		if got[0].String() != "7" {
			t.Errorf("got %s want 7", got[0])
		}
	})
	t.Run("keyword getter arity", func(t *testing.T) {
		tree := Form{kw(":x", pos(1, 2))}
		got := Evaluate(Forest{tree}, NewEnv("mod"))
		wantError(t, got[0], EvalInvalidArity, pos(1, 2))
	})
	t.Run("keyword from a head form", func(t *testing.T) {
		env := NewEnv("mod")
		env.Add("which", NewFunction("which", func([]Value) Value { return Keyword(":y") }))
		m := NewPrimitive(map[Value]Value{Keyword(":y"): num(3)})
		tree := Form{Form{ident("which", pos(1, 3))}, lit(m, pos(1, 10))}
		got := Evaluate(Forest{tree}, env)
		if got[0].String() != "3" {
			t.Errorf("got %s want 3", got[0])
		}
	})
}

func TestNotAFunction(t *testing.T) {
	env := NewEnv("mod")
	env.Add("n", num(1))
	env.Add("s", NewPrimitive("str"))
	for i, tree := range []Form{
		{ident("n", pos(1, 2))},
		{ident("s", pos(1, 2)), lit(num(1), pos(1, 4))},
		{Form{ident("identity", pos(1, 3)), ident("n", pos(1, 12))}},
		{lit(NewPrimitive(true), pos(1, 2))},
	} {
		env.Add("identity", identity)
		got := Evaluate(Forest{tree}, env)[0]
		err, ok := got.(*Error)
		if !ok || err.Kind != EvalIsNotAFunctionDataType {
			t.Errorf("%d) got %s want EvalIsNotAFunctionDataType", i, got)
		}
	}
}

func TestUndefinedArgumentShortCircuits(t *testing.T) {
	calls := 0
	env := NewEnv("mod")
	env.Add("f", NewFunction("f", func([]Value) Value {
		calls++
		return Nil{}
	}))
	tree := Form{ident("f", pos(1, 2)), ident("nope", pos(1, 4)), Form{ident("f", pos(1, 10))}}
	got := Evaluate(Forest{tree}, env)[0]
	wantError(t, got, EvalNotFoundInContext, pos(1, 4))
	if calls != 0 {
		t.Errorf("f was called %d times, want 0", calls)
	}
}

func TestBoundIdentifierValue(t *testing.T) {
	// an identifier the reader already bound a value to is not an error
	leaf := Leaf{Token{Type: TokIdentifier, Pos: pos(1, 4), Text: "known", Value: num(9)}}
	env := NewEnv("mod")
	env.Add("f", identity)
	got := Evaluate(Forest{Form{ident("f", pos(1, 2)), leaf}}, env)[0]
	if got.String() != "9" {
		t.Errorf("got %s want 9", got)
	}
}

func TestShortCircuit(t *testing.T) {
	evaluatedB := 0
	env := NewEnv("mod")
	env.Add("f", NewFunction("f", func([]Value) Value { return Nil{} }))
	env.Add("fail", NewFunction("fail", func([]Value) Value {
		return Errorf(EvalInvalidArgument, "boom")
	}))
	env.Add("b", NewFunction("b", func([]Value) Value {
		evaluatedB++
		return Nil{}
	}))
	tree := Form{
		ident("f", pos(1, 2)),
		Form{ident("fail", pos(1, 5))},
		Form{ident("b", pos(1, 12))},
	}
	got := Evaluate(Forest{tree}, env)[0]
	wantError(t, got, EvalInvalidArgument, pos(1, 5))
	if evaluatedB != 0 {
		t.Errorf("B evaluated %d times after A failed", evaluatedB)
	}

	// an error in the head form stops the call too
	tree = Form{Form{ident("fail", pos(2, 3))}, Form{ident("b", pos(2, 10))}}
	got = Evaluate(Forest{tree}, env)[0]
	wantError(t, got, EvalInvalidArgument, pos(2, 3))
}

func TestLocalBeforeModule(t *testing.T) {
	l := New(DefaultConfig())
	got := l.Eval("(def x 1) ((fn (x) x) 2) x")
	for i, want := range []string{"1", "2", "1"} {
		if got[i].String() != want {
			t.Errorf("%d) got %s want %s", i, got[i], want)
		}
	}
}

func TestModuleEnvPersists(t *testing.T) {
	env := GlobalEnv("mod")
	ev := NewEvaluator()
	ev.Evaluate(Build("mod", Tokenize("mod", "(def a 40)")), env)
	got := ev.Evaluate(Build("mod", Tokenize("mod", "(def b 2) (+ a b)")), env)
	if got[1].String() != "42" {
		t.Errorf("got %s want 42", got[1])
	}
}

func TestMacroPurity(t *testing.T) {
	l := New(DefaultConfig())
	if err := l.Load(`(defsyntax swap-sub (syntax-rules () ((_ a b) (- b a))))`); err != nil {
		t.Fatal(err)
	}
	expanded := l.Eval("(swap-sub 2 10)")[0]
	manual := l.Eval("(- 10 2)")[0]
	if !reflect.DeepEqual(expanded, manual) {
		t.Errorf("macro gave %s, substitution gave %s", expanded, manual)
	}
}

func TestMacroReceivesUnevaluatedRest(t *testing.T) {
	env := NewEnv("mod")
	var seen []Node
	env.AddMacro("capture", func(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
		seen = rest
		return lit(num(float64(len(rest))), pos(1, 1))
	})
	tree := Form{ident("capture", pos(1, 2)), ident("unbound", pos(1, 10)), Form{ident("alsounbound", pos(1, 19))}}
	got := Evaluate(Forest{tree}, env)[0]
	if got.String() != "2" {
		t.Fatalf("got %s want 2", got)
	}
	if len(seen) != 2 {
		t.Errorf("macro saw %d nodes want 2", len(seen))
	}
}

func TestIdempotence(t *testing.T) {
	l := New(DefaultConfig())
	l.Load("(def sq (fn (x) (* x x)))")
	forest := l.Parse("(sq 12) (:a (hash-map :a (sq 2))) (nope 1)")
	first := l.Evaluator.Evaluate(forest, l.Env)
	second := l.Evaluator.Evaluate(forest, l.Env)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("first %v second %v", first, second)
	}
}

func TestErrorBoundary(t *testing.T) {
	env := NewEnv("mod")
	env.Add("explode", NewFunction("explode", func([]Value) Value {
		var m map[string]int
		m["x"] = 1
		return Nil{}
	}))
	env.Add("raise", NewFunction("raise", func([]Value) Value {
		panic(errorAt(EvalInvalidArgument, pos(7, 7), "raised"))
	}))
	env.Add("unpositioned", NewFunction("unpositioned", func([]Value) Value {
		return Errorf(EvalInvalidArgument, "no position")
	}))

	got := Evaluate(Forest{Form{ident("explode", pos(3, 4))}}, env)[0]
	wantError(t, got, EvalNativeFault, pos(3, 4))

	got = Evaluate(Forest{Form{ident("raise", pos(3, 4))}}, env)[0]
	wantError(t, got, EvalInvalidArgument, pos(7, 7))

	// no positions anywhere in the tree: fall back to the module start
	tree := Form{lit(env.dict["unpositioned"], Pos{})}
	got = Evaluate(Forest{tree}, env)[0]
	wantError(t, got, EvalInvalidArgument, pos(1, 1))
}

func TestErrorsAreValues(t *testing.T) {
	l := New(DefaultConfig())
	got := l.Eval(`
        (def e (/ 1 0))
        (def caught ((fn () (/ 1 0))))
        (nil? 1)`)
	wantError(t, got[0], EvalInvalidArgument, Pos{Module: "user", Line: 2, Col: 17})
	if got[2].String() != "false" {
		t.Errorf("evaluation did not continue after an error: %s", got[2])
	}
	// the failing def never bound anything
	if _, ok := l.Env.Lookup("e"); ok {
		t.Error("e should not be bound")
	}

	l.Env.Add("stored", Errorf(EvalInvalidArgument, "kept"))
	got = l.Eval(`(error? stored) (error-kind stored)`)
	if got[0].String() != "true" || got[1].String() != `"EvalInvalidArgument"` {
		t.Errorf("got %v", got)
	}
}

func TestEmptyForms(t *testing.T) {
	got := Evaluate(Forest{Form{}, nil}, NewEnv("mod"))
	for i, v := range got {
		if _, ok := v.(Nil); !ok {
			t.Errorf("%d) got %s want nil", i, v)
		}
	}
}
