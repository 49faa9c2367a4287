package expr

import (
	"fmt"
	"strconv"
)

// Parse parses a logic program. The returned Program is immutable and safe
// for concurrent evaluation against independent environments.
func Parse(src string) (*Program, error) {
	tokens, err := newLexer(src).lex()
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	prog := &Program{Source: src}

	for p.peek().kind != tokenEOF {
		stmt, err := p.parseAssignment()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)

		switch p.peek().kind {
		case tokenNewline:
			p.advance()
		case tokenEOF:
		default:
			return nil, p.errorf("expected end of statement, found %s", p.peek())
		}
	}

	if len(prog.Statements) == 0 {
		return nil, &ParseError{Line: 1, Column: 1, Message: "empty logic program"}
	}
	return prog, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) advance() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expect(kind tokenKind, what string) (token, error) {
	tok := p.peek()
	if tok.kind != kind {
		return token{}, p.errorf("expected %s, found %s", what, tok)
	}
	return p.advance(), nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	tok := p.peek()
	return &ParseError{Line: tok.line, Column: tok.column, Message: fmt.Sprintf(format, args...)}
}

// parseAssignment parses "ident = expr".
func (p *parser) parseAssignment() (*Assignment, error) {
	name, err := p.expect(tokenIdent, "assignment target")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenAssign, `"="`); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Assignment{Name: name.text, Expr: expr, Line: name.line}, nil
}

// parseExpr parses a full expression, including the conditional form
// "then if cond else else".
func (p *parser) parseExpr() (Node, error) {
	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokenIf {
		return then, nil
	}
	p.advance()
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokenElse, `"else"`); err != nil {
		return nil, err
	}
	els, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &Conditional{Cond: cond, Then: then, Else: els}, nil
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOr {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenAnd {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *parser) parseNot() (Node, error) {
	if p.peek().kind == tokenNot {
		p.advance()
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "not", Operand: operand}, nil
	}
	return p.parseComparison()
}

var comparisonOps = map[tokenKind]string{
	tokenEq:      "==",
	tokenNotEq:   "!=",
	tokenLess:    "<",
	tokenLessEq:  "<=",
	tokenGreater: ">",
	tokenGreatEq: ">=",
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}

	if op, ok := comparisonOps[p.peek().kind]; ok {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: op, Left: left, Right: right}, nil
	}

	// Membership: "x in xs" and "x not in xs".
	if p.peek().kind == tokenIn {
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &Binary{Op: "in", Left: left, Right: right}, nil
	}
	if p.peek().kind == tokenNot && p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].kind == tokenIn {
		p.advance()
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "not", Operand: &Binary{Op: "in", Left: left, Right: right}}, nil
	}

	return left, nil
}

func (p *parser) parseAdditive() (Node, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().kind {
		case tokenPlus:
			op = "+"
		case tokenMinus:
			op = "-"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseMultiplicative() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op string
		switch p.peek().kind {
		case tokenStar:
			op = "*"
		case tokenSlash:
			op = "/"
		default:
			return left, nil
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	if p.peek().kind == tokenMinus {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", Operand: operand}, nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary expression followed by attribute accesses.
func (p *parser) parsePostfix() (Node, error) {
	node, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenDot {
		p.advance()
		name, err := p.expect(tokenIdent, "attribute name")
		if err != nil {
			return nil, err
		}
		node = &Attr{Receiver: node, Name: name.text}
	}
	return node, nil
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.peek()
	switch tok.kind {
	case tokenNumber:
		p.advance()
		v, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, &ParseError{Line: tok.line, Column: tok.column, Message: fmt.Sprintf("invalid number %q", tok.text)}
		}
		return &NumberLit{Value: v}, nil

	case tokenString:
		p.advance()
		return &StringLit{Value: tok.text}, nil

	case tokenTrue:
		p.advance()
		return &BoolLit{Value: true}, nil

	case tokenFalse:
		p.advance()
		return &BoolLit{Value: false}, nil

	case tokenNull:
		p.advance()
		return &NullLit{}, nil

	case tokenIdent:
		p.advance()
		// A call is only legal on a builtin name; anything else is a
		// reference error caught by static validation.
		if p.peek().kind == tokenLParen {
			return p.parseCall(tok)
		}
		return &Ident{Name: tok.text, Line: tok.line}, nil

	case tokenLParen:
		p.advance()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenRParen, `")"`); err != nil {
			return nil, err
		}
		return inner, nil

	case tokenLBracket:
		return p.parseBracketed()
	}

	return nil, p.errorf("unexpected %s", tok)
}

// parseCall parses the argument list of a builtin call.
func (p *parser) parseCall(name token) (Node, error) {
	if !IsBuiltin(name.text) {
		return nil, &ParseError{Line: name.line, Column: name.column,
			Message: fmt.Sprintf("unknown function %q (builtins: %s)", name.text, BuiltinNames())}
	}
	p.advance() // (
	var args []Node
	if p.peek().kind != tokenRParen {
		for {
			arg, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.peek().kind != tokenComma {
				break
			}
			p.advance()
		}
	}
	if _, err := p.expect(tokenRParen, `")"`); err != nil {
		return nil, err
	}
	return &Call{Func: name.text, Args: args, Line: name.line}, nil
}

// parseBracketed parses either a list literal or a comprehension.
func (p *parser) parseBracketed() (Node, error) {
	p.advance() // [
	if p.peek().kind == tokenRBracket {
		p.advance()
		return &ListLit{}, nil
	}

	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	// "[expr for var in source if cond]"
	if p.peek().kind == tokenFor {
		p.advance()
		v, err := p.expect(tokenIdent, "loop variable")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokenIn, `"in"`); err != nil {
			return nil, err
		}
		source, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		var cond Node
		if p.peek().kind == tokenIf {
			p.advance()
			cond, err = p.parseExpr()
			if err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(tokenRBracket, `"]"`); err != nil {
			return nil, err
		}
		return &Comprehension{Expr: first, Var: v.text, Source: source, Cond: cond}, nil
	}

	elems := []Node{first}
	for p.peek().kind == tokenComma {
		p.advance()
		if p.peek().kind == tokenRBracket {
			break
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		elems = append(elems, e)
	}
	if _, err := p.expect(tokenRBracket, `"]"`); err != nil {
		return nil, err
	}
	return &ListLit{Elems: elems}, nil
}
