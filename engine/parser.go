package engine

import (
	"errors"

	"github.com/alecthomas/participle"
)

// Parser turns crawl source text into a Program.
type Parser struct {
	parser *participle.Parser
}

// NewParser builds the statement grammar over the crawl scanner.
func NewParser() (*Parser, error) {
	p, err := participle.Build(&Program{}, participle.Lexer(scannerDefinition{}))
	if err != nil {
		return nil, err
	}
	return &Parser{parser: p}, nil
}

// Parse produces a complete Program or a SyntaxError. No semantic
// validation happens here; table and procedure references are resolved
// by the interpreter at execution time.
func (p *Parser) Parse(source string) (*Program, error) {
	prog := &Program{}
	if err := p.parser.ParseString(source, prog); err != nil {
		var syn *SyntaxError
		if errors.As(err, &syn) {
			return nil, syn
		}
		return nil, &SyntaxError{Message: err.Error()}
	}
	return prog, nil
}
