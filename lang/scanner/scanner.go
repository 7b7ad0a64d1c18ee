// Package scanner tokenizes rox source text for the compiler to consume.
package scanner

import (
	"fmt"

	"github.com/rox-lang/rox/lang/token"
)

// A Scanner tokenizes a single source text. Scan returns exactly one token
// per call, with one token of lookahead; calling Scan again after it returns
// an EOF token keeps returning EOF.
type Scanner struct {
	src []byte

	start int // byte offset of the token currently being scanned
	cur   int // byte offset of the next unread byte
	line  int
}

// New returns a Scanner positioned at the start of src.
func New(src []byte) *Scanner {
	return &Scanner{src: src, line: 1}
}

// Scan returns the next token in the source.
func (s *Scanner) Scan() token.Token {
	s.skipWhitespaceAndComments()
	s.start = s.cur

	if s.atEnd() {
		return s.make(token.EOF)
	}

	c := s.advance()
	switch {
	case isAlpha(c):
		return s.identifier()
	case isDigit(c):
		return s.number()
	}

	switch c {
	case '(':
		return s.make(token.LPAREN)
	case ')':
		return s.make(token.RPAREN)
	case '{':
		return s.make(token.LBRACE)
	case '}':
		return s.make(token.RBRACE)
	case ',':
		return s.make(token.COMMA)
	case '.':
		return s.make(token.DOT)
	case '-':
		return s.make(token.MINUS)
	case '+':
		return s.make(token.PLUS)
	case ';':
		return s.make(token.SEMI)
	case '*':
		return s.make(token.STAR)
	case '/':
		return s.make(token.SLASH)
	case '!':
		return s.makeIf('=', token.BANGEQ, token.BANG)
	case '=':
		return s.makeIf('=', token.EQEQ, token.EQ)
	case '<':
		return s.makeIf('=', token.LTEQ, token.LT)
	case '>':
		return s.makeIf('=', token.GTEQ, token.GT)
	case '"':
		return s.string()
	}

	return s.errorf("unexpected character %q", c)
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

func (s *Scanner) advance() byte {
	c := s.src[s.cur]
	s.cur++
	return c
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}
	return s.src[s.cur+1]
}

func (s *Scanner) match(want byte) bool {
	if s.atEnd() || s.src[s.cur] != want {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) makeIf(want byte, yes, no token.Kind) token.Token {
	if s.match(want) {
		return s.make(yes)
	}
	return s.make(no)
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		switch s.peek() {
		case ' ', '\r', '\t':
			s.cur++
		case '\n':
			s.line++
			s.cur++
		case '/':
			if s.peekNext() != '/' {
				return
			}
			for s.peek() != '\n' && !s.atEnd() {
				s.cur++
			}
		default:
			return
		}
	}
}

func (s *Scanner) string() token.Token {
	startLine := s.line
	for s.peek() != '"' && !s.atEnd() {
		if s.peek() == '\n' {
			s.line++
		}
		s.cur++
	}
	if s.atEnd() {
		tok := s.errorf("unterminated string")
		tok.Line = startLine
		return tok
	}
	s.cur++ // closing quote
	tok := s.make(token.STRING)
	tok.Line = startLine
	return tok
}

func (s *Scanner) number() token.Token {
	for isDigit(s.peek()) {
		s.cur++
	}
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.cur++ // consume the '.'
		for isDigit(s.peek()) {
			s.cur++
		}
	}
	return s.make(token.NUMBER)
}

func (s *Scanner) identifier() token.Token {
	for isAlpha(s.peek()) || isDigit(s.peek()) {
		s.cur++
	}
	lexeme := string(s.src[s.start:s.cur])
	return token.Token{Kind: token.LookupIdent(lexeme), Lexeme: lexeme, Line: s.line}
}

func (s *Scanner) make(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Lexeme: string(s.src[s.start:s.cur]), Line: s.line}
}

// errorf returns an ILLEGAL token whose lexeme carries the diagnostic
// message; the compiler surfaces it to its error list with the token's line.
func (s *Scanner) errorf(format string, args ...any) token.Token {
	return token.Token{Kind: token.ILLEGAL, Lexeme: fmt.Sprintf(format, args...), Line: s.line}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
