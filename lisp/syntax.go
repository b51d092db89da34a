package lisp

import (
	"fmt"
	"strings"
)

const (
	ellipsis   = "..."
	underscore = "_"
)

// SyntaxRules builds a macro from a syntax-rules form:
//
//	(syntax-rules (literals...) (pattern template)...)
//
// The first element of each pattern stands for the macro keyword and is
// not matched. Templates are not hygienic: identifiers that are not
// pattern variables are inserted as written.
func SyntaxRules(keyword string, spec Node) (*Macro, *Error) {
	pos := posOf(spec)
	sr, ok := spec.(Form)
	if !ok || len(sr) < 2 {
		return nil, errorAt(EvalInvalidSyntax, pos, "expected syntax-rules, got %s", nodeString(spec))
	}
	if head, ok := identifier(sr[0]); !ok || head.Text != "syntax-rules" {
		return nil, errorAt(EvalInvalidSyntax, pos, "expected syntax-rules, got %s", nodeString(sr[0]))
	}
	lits, ok := sr[1].(Form)
	if !ok {
		return nil, errorAt(EvalInvalidSyntax, pos, "syntax-rules expects a literal list, got %s", nodeString(sr[1]))
	}
	literals := map[string]bool{keyword: true}
	for _, l := range lits {
		id, ok := identifier(l)
		if !ok {
			return nil, errorAt(EvalInvalidSyntax, posOf(l), "syntax-rules literal %s is not an identifier", nodeString(l))
		}
		literals[id.Text] = true
	}
	clauses := make([]clause, 0, len(sr)-2)
	for _, c := range sr[2:] {
		cl, err := compileClause(literals, c)
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, cl)
	}
	return NewMacro(keyword, func(rest []Node, local Scope, module *Env, eval EvalFunc) Node {
		for _, c := range clauses {
			b := newBindings()
			if !b.unifyList(c.pattern.items[1:], rest, nil) {
				continue
			}
			out, ok := b.expand(c.template, nil)
			if !ok {
				return syntaxError(restPos(rest), "%s: ellipsis variables matched different lengths in %s", keyword, Form(rest))
			}
			return out
		}
		return syntaxError(restPos(rest), "no syntax-rules clause of %s matches %s", keyword, Form(rest))
	}), nil
}

type patternKind uint8

const (
	patConstant patternKind = iota
	patLiteral
	patUnderscore
	patVariable
	patList
)

type pattern struct {
	kind     patternKind
	leaf     Leaf
	name     string
	ellipsis bool
	// depth is the ellipsis depth at which a variable was bound
	depth int
	items []pattern
	// driver is a variable under this repeated template item whose match
	// count decides how often the item is expanded
	driver string
}

type clause struct {
	pattern  pattern
	template pattern
}

func compileClause(literals map[string]bool, n Node) (clause, *Error) {
	pos := posOf(n)
	c, ok := n.(Form)
	if !ok || len(c) != 2 {
		return clause{}, errorAt(EvalInvalidSyntax, pos, "syntax-rules clause must be (pattern template), got %s", nodeString(n))
	}
	p, ok := c[0].(Form)
	if !ok || len(p) == 0 {
		return clause{}, errorAt(EvalInvalidSyntax, pos, "syntax-rules pattern must be a non-empty list, got %s", nodeString(c[0]))
	}
	vars := map[string]int{}
	pat, err := compilePattern(literals, c[0], vars, 0)
	if err != nil {
		return clause{}, err
	}
	tmpl, err := compileTemplate(c[1], vars, 0)
	if err != nil {
		return clause{}, err
	}
	return clause{pattern: pat, template: tmpl}, nil
}

func compilePattern(literals map[string]bool, n Node, vars map[string]int, depth int) (pattern, *Error) {
	switch n := n.(type) {
	case Leaf:
		if n.Type != TokIdentifier {
			return pattern{kind: patConstant, leaf: n}, nil
		}
		switch {
		case n.Text == underscore:
			return pattern{kind: patUnderscore, leaf: n}, nil
		case literals[n.Text]:
			return pattern{kind: patLiteral, leaf: n, name: n.Text}, nil
		}
		if _, dup := vars[n.Text]; dup {
			return pattern{}, errorAt(EvalInvalidSyntax, n.Pos, "duplicate pattern variable %s", n.Text)
		}
		vars[n.Text] = depth
		return pattern{kind: patVariable, leaf: n, name: n.Text, depth: depth}, nil
	case Form:
		p := pattern{kind: patList}
		seenEllipsis := false
		for i := 0; i < len(n); i++ {
			d := depth
			repeated := i+1 < len(n) && isEllipsis(n[i+1])
			if repeated {
				if seenEllipsis {
					return pattern{}, errorAt(EvalInvalidSyntax, posOf(n), "more than one ellipsis in pattern %s", n)
				}
				seenEllipsis = true
				d++
			}
			item, err := compilePattern(literals, n[i], vars, d)
			if err != nil {
				return pattern{}, err
			}
			item.ellipsis = repeated
			if repeated {
				i++
			}
			p.items = append(p.items, item)
		}
		return p, nil
	}
	return pattern{}, errorAt(EvalInvalidSyntax, Pos{}, "invalid pattern")
}

func compileTemplate(n Node, vars map[string]int, depth int) (pattern, *Error) {
	switch n := n.(type) {
	case Leaf:
		if n.Type != TokIdentifier {
			return pattern{kind: patConstant, leaf: n}, nil
		}
		d, ok := vars[n.Text]
		if !ok {
			return pattern{kind: patLiteral, leaf: n, name: n.Text}, nil
		}
		if d > depth {
			return pattern{}, errorAt(EvalInvalidSyntax, n.Pos, "pattern variable %s used without enough ellipses", n.Text)
		}
		return pattern{kind: patVariable, leaf: n, name: n.Text, depth: d}, nil
	case Form:
		p := pattern{kind: patList}
		for i := 0; i < len(n); i++ {
			d := depth
			repeated := i+1 < len(n) && isEllipsis(n[i+1])
			if repeated {
				d++
			}
			item, err := compileTemplate(n[i], vars, d)
			if err != nil {
				return pattern{}, err
			}
			if repeated {
				item.ellipsis = true
				item.driver = driverOf(item, d)
				if item.driver == "" {
					return pattern{}, errorAt(EvalInvalidSyntax, posOf(n[i]), "nonmatching ellipsis after %s", nodeString(n[i]))
				}
				i++
			}
			p.items = append(p.items, item)
		}
		return p, nil
	}
	return pattern{}, errorAt(EvalInvalidSyntax, Pos{}, "invalid template")
}

// driverOf finds a variable bound at ellipsis depth of at least depth.
func driverOf(p pattern, depth int) string {
	switch p.kind {
	case patVariable:
		if p.depth >= depth {
			return p.name
		}
	case patList:
		for _, it := range p.items {
			if d := driverOf(it, depth); d != "" {
				return d
			}
		}
	}
	return ""
}

func isEllipsis(n Node) bool {
	leaf, ok := identifier(n)
	return ok && leaf.Text == ellipsis
}

// bindings maps pattern variables, qualified by their repetition indices,
// to the matched syntax.
type bindings struct {
	nodes  map[string]Node
	counts map[string]int
}

func newBindings() bindings {
	return bindings{nodes: map[string]Node{}, counts: map[string]int{}}
}

func key(name string, depth []int) string {
	var b strings.Builder
	b.WriteString(name)
	for _, d := range depth {
		fmt.Fprintf(&b, "#%d", d)
	}
	return b.String()
}

func (b bindings) unify(p pattern, n Node, depth []int) bool {
	switch p.kind {
	case patUnderscore:
		return true
	case patVariable:
		b.nodes[key(p.name, depth)] = n
		return true
	case patLiteral:
		leaf, ok := identifier(n)
		return ok && leaf.Text == p.name
	case patConstant:
		leaf, ok := n.(Leaf)
		return ok && leaf.Type == p.leaf.Type && equal(leaf.Value, p.leaf.Value)
	case patList:
		f, ok := n.(Form)
		return ok && b.unifyList(p.items, f, depth)
	}
	return false
}

func (b bindings) unifyList(items []pattern, nodes []Node, depth []int) bool {
	j := 0
	for i, it := range items {
		if !it.ellipsis {
			if j >= len(nodes) || !b.unify(it, nodes[j], depth) {
				return false
			}
			j++
			continue
		}
		// the repeated item takes whatever the items after it leave over
		n := len(nodes) - j - (len(items) - i - 1)
		if n < 0 {
			return false
		}
		for k := 0; k < n; k++ {
			d := append(depth[:len(depth):len(depth)], k)
			if !b.unify(it, nodes[j+k], d) {
				return false
			}
		}
		b.count(it, depth, n)
		j += n
	}
	return j == len(nodes)
}

// count records how many times the variables under p were repeated.
func (b bindings) count(p pattern, depth []int, n int) {
	switch p.kind {
	case patVariable:
		b.counts[key(p.name, depth)] = n
	case patList:
		for _, it := range p.items {
			b.count(it, depth, n)
		}
	}
}

// sameCounts reports whether every variable repeated under p matched n
// times at depth.
func (b bindings) sameCounts(p pattern, depth []int, n int) bool {
	switch p.kind {
	case patVariable:
		if p.depth > len(depth) {
			c, ok := b.counts[key(p.name, depth)]
			return ok && c == n
		}
	case patList:
		for _, it := range p.items {
			if !b.sameCounts(it, depth, n) {
				return false
			}
		}
	}
	return true
}

func (b bindings) expand(t pattern, depth []int) (Node, bool) {
	switch t.kind {
	case patVariable:
		n, ok := b.nodes[key(t.name, depth[:t.depth])]
		return n, ok
	case patList:
		out := Form{}
		for _, it := range t.items {
			if !it.ellipsis {
				n, ok := b.expand(it, depth)
				if !ok {
					return nil, false
				}
				out = append(out, n)
				continue
			}
			n := b.counts[key(it.driver, depth)]
			if !b.sameCounts(it, depth, n) {
				return nil, false
			}
			for k := 0; k < n; k++ {
				x, ok := b.expand(it, append(depth[:len(depth):len(depth)], k))
				if !ok {
					return nil, false
				}
				out = append(out, x)
			}
		}
		return out, true
	}
	return t.leaf, true
}
