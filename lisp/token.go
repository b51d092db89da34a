package lisp

import "fmt"

type TokenType uint8

const (
	TokListBegin TokenType = iota
	TokListEnd
	TokIdentifier
	TokKeyword
	TokInvalid
	TokLiteral
	TokError
)

var tokenTypeNames = [...]string{
	TokListBegin:  "ListBegin",
	TokListEnd:    "ListEnd",
	TokIdentifier: "Identifier",
	TokKeyword:    "Keyword",
	TokInvalid:    "Invalid",
	TokLiteral:    "Literal",
	TokError:      "Error",
}

func (t TokenType) String() string {
	if int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

// Pos is a 1-based source position within a module.
type Pos struct {
	Module string
	Line   int
	Col    int
}

func (p Pos) IsZero() bool { return p.Line == 0 }

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Module, p.Line, p.Col)
}

// Token is produced once by a reader and never modified afterwards.
// Text is the source spelling; Value is the bundled runtime value
// (Undefined for identifiers the reader knows nothing about).
type Token struct {
	Type  TokenType
	Pos   Pos
	Text  string
	Value Value
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q at %s", t.Type, t.Text, t.Pos)
}
