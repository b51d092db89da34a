package lisp

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const DefaultKeywordPrefix = ":"

// Reader turns source text into positioned tokens.
type Reader struct {
	Module        string
	KeywordPrefix string
}

// Tokenize reads src with the default keyword prefix.
func Tokenize(module, src string) []Token {
	return Reader{Module: module}.Tokenize(src)
}

type scanner struct {
	Reader
	src       string
	line, col int
	depth     int
	tokens    []Token
}

// Tokenize never fails: anything it cannot read becomes an Invalid token,
// which Build reports.
func (r Reader) Tokenize(src string) []Token {
	if r.KeywordPrefix == "" {
		r.KeywordPrefix = DefaultKeywordPrefix
	}
	s := &scanner{Reader: r, src: src, line: 1, col: 1}
	for s.next() {
	}
	return s.tokens
}

func (s *scanner) pos() Pos {
	return Pos{Module: s.Module, Line: s.line, Col: s.col}
}

func (s *scanner) advance(n int) string {
	consumed := s.src[:n]
	for _, r := range consumed {
		if r == '\n' {
			s.line++
			s.col = 1
			continue
		}
		s.col++
	}
	s.src = s.src[n:]
	return consumed
}

func (s *scanner) emit(t TokenType, pos Pos, text string, v Value) {
	s.tokens = append(s.tokens, Token{Type: t, Pos: pos, Text: text, Value: v})
}

func (s *scanner) skipSpace() bool {
	for len(s.src) > 0 {
		r, size := utf8.DecodeRuneInString(s.src)
		switch {
		case unicode.IsSpace(r) || r == ',':
			s.advance(size)
		case r == ';':
			end := strings.IndexByte(s.src, '\n')
			if end < 0 {
				end = len(s.src)
			}
			s.advance(end)
		case strings.HasPrefix(s.src, "#|"):
			pos := s.pos()
			end := strings.Index(s.src, "|#")
			if end < 0 {
				s.emit(TokInvalid, pos, s.advance(len(s.src)), nil)
				return false
			}
			s.advance(end + 2)
		default:
			return true
		}
	}
	return false
}

func (s *scanner) next() bool {
	if !s.skipSpace() {
		return false
	}
	pos := s.pos()
	r, size := utf8.DecodeRuneInString(s.src)
	switch r {
	case '(', '[':
		s.depth++
		s.emit(TokListBegin, pos, s.advance(size), nil)
	case ')', ']':
		if s.depth == 0 {
			s.emit(TokInvalid, pos, s.advance(size), nil)
			return true
		}
		s.depth--
		s.emit(TokListEnd, pos, s.advance(size), nil)
	case '"':
		s.str(pos)
	case utf8.RuneError:
		s.emit(TokInvalid, pos, s.advance(size), nil)
	default:
		s.atom(pos)
	}
	return true
}

func (s *scanner) str(pos Pos) {
	var b strings.Builder
	i := 1
	for i < len(s.src) {
		r, size := utf8.DecodeRuneInString(s.src[i:])
		i += size
		switch r {
		case '"':
			s.emit(TokLiteral, pos, s.advance(i), NewPrimitive(b.String()))
			return
		case '\\':
			if i >= len(s.src) {
				break
			}
			esc, n := utf8.DecodeRuneInString(s.src[i:])
			i += n
			switch esc {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteRune(esc)
			}
			continue
		}
		b.WriteRune(r)
	}
	// unterminated string
	s.emit(TokInvalid, pos, s.advance(len(s.src)), nil)
}

func (s *scanner) atom(pos Pos) {
	end := len(s.src)
	for i, r := range s.src {
		if unicode.IsSpace(r) || strings.ContainsRune(`()[]";,`, r) {
			end = i
			break
		}
	}
	text := s.advance(end)
	switch text {
	case "true":
		s.emit(TokLiteral, pos, text, NewPrimitive(true))
		return
	case "false":
		s.emit(TokLiteral, pos, text, NewPrimitive(false))
		return
	case "nil":
		s.emit(TokLiteral, pos, text, Nil{})
		return
	}
	if numeric(text) {
		if n, err := strconv.ParseFloat(text, 64); err == nil {
			s.emit(TokLiteral, pos, text, NewPrimitive(n))
			return
		}
	}
	if len(text) > len(s.KeywordPrefix) && strings.HasPrefix(text, s.KeywordPrefix) {
		s.emit(TokKeyword, pos, text, Keyword(text))
		return
	}
	s.emit(TokIdentifier, pos, text, Undefined{Name: text})
}

// numeric keeps words like inf and nan, which ParseFloat accepts, out of
// the number literals.
func numeric(text string) bool {
	t := strings.TrimLeft(text, "+-")
	t = strings.TrimPrefix(t, ".")
	return t != "" && t[0] >= '0' && t[0] <= '9'
}

// Incomplete reports whether tokens leave a list open, meaning more input
// is needed before the text can be built.
func Incomplete(tokens []Token) bool {
	depth := 0
	for _, t := range tokens {
		switch t.Type {
		case TokListBegin:
			depth++
		case TokListEnd:
			depth--
		}
	}
	return depth > 0
}
