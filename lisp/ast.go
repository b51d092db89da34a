package lisp

import "strings"

// Node is either a Leaf or a Form.
type Node interface {
	node()
}

type Leaf struct {
	Token
}

func (Leaf) node() {}

func (l Leaf) String() string {
	if l.Text != "" {
		return l.Text
	}
	if l.Value != nil {
		return l.Value.String()
	}
	return "nil"
}

// Form owns its children.
type Form []Node

func (Form) node() {}

func (f Form) String() string {
	s := make([]string, len(f))
	for i, n := range f {
		s[i] = nodeString(n)
	}
	return "(" + strings.Join(s, " ") + ")"
}

// Forest holds the top-level trees of one module, in source order.
type Forest []Node

func nodeString(n Node) string {
	switch n := n.(type) {
	case Leaf:
		return n.String()
	case Form:
		return n.String()
	}
	return "nil"
}

// posOf returns the position of the first token in n.
func posOf(n Node) Pos {
	switch n := n.(type) {
	case Leaf:
		return n.Pos
	case Form:
		for _, c := range n {
			if p := posOf(c); !p.IsZero() {
				return p
			}
		}
	}
	return Pos{}
}

// literal wraps an already computed value as a leaf, so macros can hand
// values back to the evaluator. Errors become error leaves.
func literal(v Value, pos Pos) Leaf {
	if err, ok := v.(*Error); ok {
		return errorLeaf(err)
	}
	return Leaf{Token{Type: TokLiteral, Pos: pos, Value: v}}
}

func errorLeaf(err *Error) Leaf {
	return Leaf{Token{Type: TokError, Pos: err.Pos, Text: err.Msg, Value: err}}
}

// Build turns a flat token stream into a forest using the list markers.
// Lists still open at the end of input are closed implicitly.
// An Invalid token discards everything built so far: the result is a
// forest holding a single error leaf.
func Build(module string, tokens []Token) (forest Forest) {
	defer func() {
		if r := recover(); r != nil {
			err := fault(r, BuildInvalidInput, Pos{Module: module, Line: 1, Col: 1})
			forest = Forest{errorLeaf(err)}
		}
	}()

	// stack[0] is the implicit top-level context
	stack := [][]Node{{}}
	pop := func() {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		parent := len(stack) - 1
		stack[parent] = append(stack[parent], Form(top))
	}
	for _, tok := range tokens {
		switch tok.Type {
		case TokListBegin:
			stack = append(stack, []Node{})
		case TokListEnd:
			if len(stack) == 1 {
				panic(errorAt(BuildInvalidInput, tok.Pos, "build: invalid input: unexpected %q", tok.Text))
			}
			pop()
		case TokInvalid:
			return Forest{errorLeaf(errorAt(BuildInvalidToken, tok.Pos, "build: invalid token %q", tok.Text))}
		default:
			top := len(stack) - 1
			stack[top] = append(stack[top], Leaf{tok})
		}
	}
	for len(stack) > 1 {
		pop()
	}
	return Forest(stack[0])
}
