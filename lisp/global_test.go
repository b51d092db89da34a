package lisp

import (
	"testing"
)

func TestBuiltins(t *testing.T) {
	l := New(DefaultConfig())
	for i, tt := range []struct {
		input string
		want  string
	}{
		{input: "(+)", want: "0"},
		{input: "(- 5)", want: "-5"},
		{input: "(- 10 1 2)", want: "7"},
		{input: "(* 2 3 4)", want: "24"},
		{input: "(/ 2)", want: "0.5"},
		{input: "(/ 12 2 3)", want: "2"},
		{input: "(mod 7 3)", want: "1"},
		{input: "(= 1 1 1)", want: "true"},
		{input: "(= :a :b)", want: "false"},
		{input: `(= (list 1 "a") (list 1 "a"))`, want: "true"},
		{input: "(< 1 2 3)", want: "true"},
		{input: "(< 1 3 2)", want: "false"},
		{input: "(>= 3 3 1)", want: "true"},
		{input: "(not nil)", want: "true"},
		{input: "(not 0)", want: "false"},
		{input: "(nil? nil)", want: "true"},
		{input: "(number? 1)", want: "true"},
		{input: "(error? 1)", want: "false"},
		{input: "(list)", want: "()"},
		{input: "(first (list))", want: "nil"},
		{input: "(rest (list 1))", want: "()"},
		{input: "(cons 1 nil)", want: "(1)"},
		{input: "(hash-map :b 2 :a 1)", want: "{:a 1, :b 2}"},
		{input: "(get (hash-map :a 1) :a)", want: "1"},
		{input: "(get (hash-map :a 1) :z 9)", want: "9"},
		{input: "(get (list 5 6) 1)", want: "6"},
		{input: "(get (list 5 6) 2)", want: "nil"},
		{input: "(get (list 1 2) 1e20)", want: "nil"},
		{input: "(get (list 1 2) 9.3e18 :d)", want: ":d"},
		{input: "(get (list 1 2) -1e20 :d)", want: ":d"},
		{input: "(get nil :a 3)", want: "3"},
		{input: "(assoc (hash-map :a 1) :b 2)", want: "{:a 1, :b 2}"},
		{input: "(assoc nil :a 1)", want: "{:a 1}"},
		{input: "(count (hash-map :a 1))", want: "1"},
		{input: `(count "héllo")`, want: "5"},
		{input: "(count nil)", want: "0"},
		{input: `(str "x" nil 1.5 (list 1))`, want: `"x1.5(1)"`},
		{input: "(do 1 2 3)", want: "3"},
		{input: "(do)", want: "nil"},
		{input: "(identity :k)", want: ":k"},
		{input: "(error-kind 1)", want: "nil"},
	} {
		got := l.Eval(tt.input)[0]
		if got.String() != tt.want {
			t.Errorf("%d) got %s want %s", i, got, tt.want)
		}
	}
}

func TestBuiltinErrors(t *testing.T) {
	l := New(DefaultConfig())
	for i, tt := range []struct {
		input string
		kind  FaultKind
	}{
		{input: "(+ 1 :a)", kind: EvalInvalidArgument},
		{input: "(-)", kind: EvalInvalidArity},
		{input: "(/ 1 0)", kind: EvalInvalidArgument},
		{input: "(mod 1 0)", kind: EvalInvalidArgument},
		{input: "(mod 1)", kind: EvalInvalidArity},
		{input: "(not)", kind: EvalInvalidArity},
		{input: "(hash-map :a)", kind: EvalInvalidArity},
		{input: "(hash-map (list 1) 2)", kind: EvalInvalidArgument},
		{input: "(get 1 :a)", kind: EvalInvalidArgument},
		{input: "(get (hash-map))", kind: EvalInvalidArity},
		{input: "(assoc (list) :a 1)", kind: EvalInvalidArgument},
		{input: "(assoc (hash-map) :a)", kind: EvalInvalidArity},
		{input: "(count 1)", kind: EvalInvalidArgument},
		{input: "(cons 1 2)", kind: EvalInvalidArgument},
		{input: "(first 1)", kind: EvalInvalidArgument},
		{input: "((fn (a) a))", kind: EvalInvalidArity},
		{input: "((fn (a) a) 1 2)", kind: EvalInvalidArity},
		{input: "(if)", kind: EvalInvalidSyntax},
		{input: "(def 1 2)", kind: EvalInvalidSyntax},
		{input: "(fn x)", kind: EvalInvalidSyntax},
		{input: "(fn (a &) a)", kind: EvalInvalidSyntax},
		{input: "(cond 1)", kind: EvalInvalidSyntax},
		{input: "(cond (else 1) (true 2))", kind: EvalInvalidSyntax},
		{input: "(quote)", kind: EvalInvalidSyntax},
	} {
		got := l.Eval(tt.input)[0]
		err, ok := got.(*Error)
		if !ok {
			t.Errorf("%d) got %s want %s", i, got, tt.kind)
			continue
		}
		if err.Kind != tt.kind {
			t.Errorf("%d) got %s want %s", i, err.Kind, tt.kind)
		}
		if err.Pos.IsZero() {
			t.Errorf("%d) error has no position", i)
		}
	}
}

func TestGlobalEnvSymbols(t *testing.T) {
	env := GlobalEnv("mod")
	want := map[Symbol]bool{"if": true, "def": true, "fn": true, "cond": true, "quote": true, "defsyntax": true, "get": true}
	for _, s := range env.Symbols() {
		delete(want, s)
	}
	if len(want) != 0 {
		t.Errorf("missing symbols %v", want)
	}
	// each call returns an independent environment
	env.Add("x", NewPrimitive(1.0))
	if _, ok := GlobalEnv("mod").Lookup("x"); ok {
		t.Error("environments share bindings")
	}
}
