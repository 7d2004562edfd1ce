package engine

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/lexer"
)

type scanner struct {
	tokens  []lexer.Token
	indents []int
}

// Scan tokenizes crawl source text. Indentation is structural: each
// non-blank line that indents deeper than the previous one opens a
// block (Indent), and returning to a shallower level closes it
// (Dedent). A dedent to a level that was never opened is a SyntaxError.
func Scan(source string) ([]lexer.Token, error) {
	s := &scanner{indents: []int{0}}
	lines := strings.Split(source, "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lineNo := i + 1
		trimmed := strings.TrimLeft(line, " \t")
		width := len(line) - len(trimmed)
		if err := s.applyIndent(width, lineNo); err != nil {
			return nil, err
		}
		if err := s.scanLine(trimmed, lineNo, width); err != nil {
			return nil, err
		}
		s.emit(tokenNewline, "\n", lineNo, len(line))
	}
	for len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(tokenDedent, "", len(lines), 0)
	}
	s.emit(lexer.EOF, "", len(lines), 0)
	return s.tokens, nil
}

func (s *scanner) applyIndent(width, line int) error {
	top := s.indents[len(s.indents)-1]
	if width > top {
		s.indents = append(s.indents, width)
		s.emit(tokenIndent, "", line, 0)
		return nil
	}
	for width < s.indents[len(s.indents)-1] {
		s.indents = s.indents[:len(s.indents)-1]
		s.emit(tokenDedent, "", line, 0)
	}
	if width != s.indents[len(s.indents)-1] {
		return &SyntaxError{Line: line, Message: "inconsistent indentation"}
	}
	return nil
}

func (s *scanner) scanLine(text string, line, col0 int) error {
	rs := []rune(text)
	i := 0
	for i < len(rs) {
		ch := rs[i]
		switch {
		case ch == ' ' || ch == '\t':
			i++

		case ch == '"':
			start := i
			i++
			for i < len(rs) && rs[i] != '"' {
				i++
			}
			if i >= len(rs) {
				return &SyntaxError{Line: line, Column: col0 + start, Message: `missing closing '"'`}
			}
			s.emit(tokenString, string(rs[start+1:i]), line, col0+start)
			i++

		case unicode.IsDigit(ch):
			start := i
			for i < len(rs) && unicode.IsDigit(rs[i]) {
				i++
			}
			switch {
			case i+1 < len(rs) && rs[i] == 'd' && unicode.IsDigit(rs[i+1]):
				i++
				for i < len(rs) && unicode.IsDigit(rs[i]) {
					i++
				}
				s.emit(tokenDice, string(rs[start:i]), line, col0+start)
			case i+1 < len(rs) && rs[i] == '-' && unicode.IsDigit(rs[i+1]):
				i++
				for i < len(rs) && unicode.IsDigit(rs[i]) {
					i++
				}
				s.emit(tokenRange, string(rs[start:i]), line, col0+start)
			default:
				s.emit(tokenInt, string(rs[start:i]), line, col0+start)
			}

		case unicode.IsLetter(ch):
			start := i
			// keywords and identifiers allow hyphens; fact tests end in '?'
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '-') {
				i++
			}
			if i < len(rs) && rs[i] == '?' {
				i++
			}
			word := string(rs[start:i])
			typ := tokenIdent
			if keywords[word] {
				typ = tokenKeyword
			}
			s.emit(typ, word, line, col0+start)

		case ch == '=':
			if i+1 < len(rs) && rs[i+1] == '>' {
				s.emit(tokenPunct, "=>", line, col0+i)
				i += 2
				continue
			}
			return &SyntaxError{Line: line, Column: col0 + i, Message: "expected '>' after '='"}

		case ch == '%' || ch == '+' || ch == '-':
			s.emit(tokenPunct, string(ch), line, col0+i)
			i++

		default:
			return &SyntaxError{Line: line, Column: col0 + i, Message: fmt.Sprintf("unexpected character %q", ch)}
		}
	}
	return nil
}

func (s *scanner) emit(typ rune, value string, line, col int) {
	s.tokens = append(s.tokens, lexer.Token{
		Type:  typ,
		Value: value,
		Pos:   lexer.Position{Line: line, Column: col + 1},
	})
}
