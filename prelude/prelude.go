// Package prelude holds derived forms (let, and, or, when, unless) and a
// few helpers, written in the language itself.
package prelude

import (
	_ "embed"

	"github.com/deosjr/grove/lisp"
)

//go:embed prelude.lisp
var prelude string

func Load(l lisp.Lisp) error {
	return l.Load(prelude)
}
