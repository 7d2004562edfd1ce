package engine

import (
	"io"

	"github.com/alecthomas/participle/lexer"
)

// Token types produced by the crawl scanner. lexer.EOF is -1, so the
// custom types count down from -2.
const (
	tokenNewline rune = -(iota + 2)
	tokenIndent
	tokenDedent
	tokenIdent
	tokenKeyword
	tokenString
	tokenInt
	tokenRange
	tokenDice
	tokenPunct
)

var symbols = map[string]rune{
	"EOF":     lexer.EOF,
	"Newline": tokenNewline,
	"Indent":  tokenIndent,
	"Dedent":  tokenDedent,
	"Ident":   tokenIdent,
	"Keyword": tokenKeyword,
	"String":  tokenString,
	"Int":     tokenInt,
	"Range":   tokenRange,
	"Dice":    tokenDice,
	"Punct":   tokenPunct,
}

var keywords = map[string]bool{
	"procedure":             true,
	"end":                   true,
	"if":                    true,
	"roll":                  true,
	"on":                    true,
	"table":                 true,
	"load":                  true,
	"set-fact":              true,
	"set-persistent-fact":   true,
	"clear-fact":            true,
	"clear-persistent-fact": true,
	"swap-fact":             true,
	"swap-persistent-fact":  true,
	"fact?":                 true,
	"persistent-fact?":      true,
	"reminder":              true,
}

// scannerDefinition adapts the crawl scanner to participle's lexer
// interface so the grammar in ast.go can be driven by it.
type scannerDefinition struct{}

func (scannerDefinition) Symbols() map[string]rune { return symbols }

func (scannerDefinition) Lex(r io.Reader) (lexer.Lexer, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	toks, err := Scan(string(src))
	if err != nil {
		return nil, err
	}
	return &tokenStream{tokens: toks}, nil
}

type tokenStream struct {
	tokens []lexer.Token
	pos    int
}

func (s *tokenStream) Next() (lexer.Token, error) {
	if s.pos >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1], nil
	}
	tok := s.tokens[s.pos]
	s.pos++
	return tok, nil
}
