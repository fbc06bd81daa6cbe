package compiler

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// TokenKind discriminates the token stream the parser consumes.
type TokenKind int

const (
	TokEOF TokenKind = iota
	TokIdent
	TokInt
	TokFloat
	TokString
	TokKeyword
	TokPunct
)

// Token is one lexical unit: its kind, literal text, and byte span.
type Token struct {
	Kind  TokenKind
	Text  string
	Start int
	End   int
}

var keywords = map[string]bool{
	"pub": true, "struct": true, "trait": true, "enum": true, "impl": true,
	"for": true, "fn": true, "let": true, "break": true, "continue": true,
	"return": true, "loop": true, "if": true, "else": true, "switch": true,
	"is": true, "as": true, "true": true, "false": true,
}

// Lexer tokenizes Lume source text into a flat token stream.
type Lexer struct {
	src []byte
	pos int
}

// NewLexer returns a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []byte(src)}
}

// Tokenize consumes the entire source and returns its token stream,
// terminated by a TokEOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var toks []Token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.Kind == TokEOF {
			return toks, nil
		}
	}
}

func (l *Lexer) next() (Token, error) {
	l.skipTrivia()
	start := l.pos
	if l.pos >= len(l.src) {
		return Token{Kind: TokEOF, Start: start, End: start}, nil
	}
	c := l.src[l.pos]
	switch {
	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.pos++
		}
		text := string(l.src[start:l.pos])
		kind := TokIdent
		if keywords[text] {
			kind = TokKeyword
		}
		return Token{Kind: kind, Text: text, Start: start, End: l.pos}, nil
	case c >= '0' && c <= '9':
		return l.lexNumber(start)
	case c == '"':
		return l.lexString(start)
	default:
		return l.lexPunct(start)
	}
}

func (l *Lexer) skipTrivia() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) lexNumber(start int) (Token, error) {
	isFloat := false
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	if l.pos+1 < len(l.src) && l.src[l.pos] == '.' && l.src[l.pos+1] >= '0' && l.src[l.pos+1] <= '9' {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
			l.pos++
		}
	}
	kind := TokInt
	if isFloat {
		kind = TokFloat
	}
	return Token{Kind: kind, Text: string(l.src[start:l.pos]), Start: start, End: l.pos}, nil
}

func (l *Lexer) lexString(start int) (Token, error) {
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) && l.src[l.pos] != '"' {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) {
			l.pos++
		}
		sb.WriteByte(l.src[l.pos])
		l.pos++
	}
	if l.pos >= len(l.src) {
		return Token{}, fmt.Errorf("lexer: unterminated string literal starting at byte %d", start)
	}
	l.pos++ // closing quote
	return Token{Kind: TokString, Text: sb.String(), Start: start, End: l.pos}, nil
}

var threeCharPuncts = []string{}
var twoCharPuncts = []string{"::", "->", "=>", "=="}

func (l *Lexer) lexPunct(start int) (Token, error) {
	rest := l.src[l.pos:]
	for _, p := range twoCharPuncts {
		if len(rest) >= 2 && string(rest[:2]) == p {
			l.pos += 2
			return Token{Kind: TokPunct, Text: p, Start: start, End: l.pos}, nil
		}
	}
	r, size := utf8.DecodeRune(rest)
	if r == utf8.RuneError && size <= 1 {
		return Token{}, fmt.Errorf("lexer: invalid byte at offset %d", start)
	}
	l.pos += size
	return Token{Kind: TokPunct, Text: string(r), Start: start, End: l.pos}, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
