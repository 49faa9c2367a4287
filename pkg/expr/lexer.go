package expr

import (
	"fmt"
	"strings"
	"unicode"
)

// lexer turns a logic program into a token stream.
type lexer struct {
	src    string
	pos    int
	line   int
	column int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1, column: 1}
}

// lex tokenizes the entire source, collapsing comment-only and blank lines.
// Newlines inside brackets or parentheses do not terminate a statement, so a
// long comprehension may wrap across lines.
func (l *lexer) lex() ([]token, error) {
	var tokens []token
	depth := 0
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenLParen, tokenLBracket:
			depth++
		case tokenRParen, tokenRBracket:
			if depth > 0 {
				depth--
			}
		}
		// Drop leading and repeated newlines so statements separate cleanly.
		if tok.kind == tokenNewline {
			if depth > 0 || len(tokens) == 0 || tokens[len(tokens)-1].kind == tokenNewline {
				continue
			}
		}
		tokens = append(tokens, tok)
		if tok.kind == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpaces()

	line, column := l.line, l.column
	if l.pos >= len(l.src) {
		return token{kind: tokenEOF, line: line, column: column}, nil
	}

	ch := l.src[l.pos]
	switch {
	case ch == '\n' || ch == ';':
		l.advance()
		return token{kind: tokenNewline, text: string(ch), line: line, column: column}, nil

	case ch == '#':
		for l.pos < len(l.src) && l.src[l.pos] != '\n' {
			l.advance()
		}
		return l.next()

	case isIdentStart(rune(ch)):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(rune(l.src[l.pos])) {
			l.advance()
		}
		text := l.src[start:l.pos]
		if kind, ok := keywords[text]; ok {
			return token{kind: kind, text: text, line: line, column: column}, nil
		}
		return token{kind: tokenIdent, text: text, line: line, column: column}, nil

	case unicode.IsDigit(rune(ch)):
		start := l.pos
		seenDot := false
		for l.pos < len(l.src) {
			c := l.src[l.pos]
			if c == '.' && !seenDot && l.pos+1 < len(l.src) && unicode.IsDigit(rune(l.src[l.pos+1])) {
				seenDot = true
				l.advance()
				continue
			}
			if !unicode.IsDigit(rune(c)) {
				break
			}
			l.advance()
		}
		return token{kind: tokenNumber, text: l.src[start:l.pos], line: line, column: column}, nil

	case ch == '"' || ch == '\'':
		return l.lexString(ch)
	}

	// Operators and punctuation.
	two := ""
	if l.pos+1 < len(l.src) {
		two = l.src[l.pos : l.pos+2]
	}
	switch two {
	case "==", "!=", "<=", ">=":
		l.advance()
		l.advance()
		kind := map[string]tokenKind{"==": tokenEq, "!=": tokenNotEq, "<=": tokenLessEq, ">=": tokenGreatEq}[two]
		return token{kind: kind, text: two, line: line, column: column}, nil
	}

	single := map[byte]tokenKind{
		'=': tokenAssign, '<': tokenLess, '>': tokenGreater,
		'+': tokenPlus, '-': tokenMinus, '*': tokenStar, '/': tokenSlash,
		'(': tokenLParen, ')': tokenRParen, '[': tokenLBracket, ']': tokenRBracket,
		',': tokenComma, '.': tokenDot,
	}
	if kind, ok := single[ch]; ok {
		l.advance()
		return token{kind: kind, text: string(ch), line: line, column: column}, nil
	}

	return token{}, &ParseError{Line: line, Column: column, Message: fmt.Sprintf("unexpected character %q", string(ch))}
}

func (l *lexer) lexString(quote byte) (token, error) {
	line, column := l.line, l.column
	l.advance() // opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == quote {
			l.advance()
			return token{kind: tokenString, text: sb.String(), line: line, column: column}, nil
		}
		if c == '\n' {
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			c = l.src[l.pos]
		}
		sb.WriteByte(c)
		l.advance()
	}
	return token{}, &ParseError{Line: line, Column: column, Message: "unterminated string literal"}
}

func (l *lexer) skipSpaces() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == ' ' || c == '\t' || c == '\r' {
			l.advance()
			continue
		}
		// A backslash before a newline continues the statement.
		if c == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
			l.advance()
			l.advance()
			continue
		}
		return
	}
}

func (l *lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
		l.pos++
	}
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
