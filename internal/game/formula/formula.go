// Package formula evaluates designer-authored scaling formulas for skill
// effects. The grammar is deliberately closed: the four arithmetic operators,
// parentheses, numeric literals, and exactly three named substitutions
// ("base", "attribute", "attribute_bonus"). Anything else is rejected, so a
// formula string from a definition file can never reach beyond the three
// numbers bound for the current evaluation.
package formula

import (
	"fmt"
	"strconv"
)

// Bindings holds the three values a formula may reference.
type Bindings struct {
	Base           float64
	Attribute      float64
	AttributeBonus float64
}

// Eval parses and evaluates expr against the given bindings.
//
// Precondition: expr must be a non-empty formula string.
// Postcondition: Returns the evaluated value, or a descriptive error for any
// unknown token, malformed expression, or division by zero.
func Eval(expr string, b Bindings) (float64, error) {
	p := &parser{input: expr, bindings: b}
	p.next()
	if p.err != nil {
		return 0, p.err
	}
	val, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.err != nil {
		return 0, p.err
	}
	if p.tok.kind != tokEOF {
		return 0, fmt.Errorf("formula: unexpected %q in %q", p.tok.text, expr)
	}
	return val, nil
}

// EvalInt evaluates expr and truncates the result to int, matching the
// truncation the effect appliers perform on damage and healing amounts.
func EvalInt(expr string, b Bindings) (int, error) {
	v, err := Eval(expr, b)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	num  float64
}

type parser struct {
	input    string
	pos      int
	tok      token
	err      error
	bindings Bindings
}

func isIdentChar(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isNumberChar(c byte) bool {
	return c >= '0' && c <= '9' || c == '.'
}

// next advances to the following token. Lexical errors are stored in p.err
// and surface at the call site that consumes the token.
func (p *parser) next() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
	if p.pos >= len(p.input) {
		p.tok = token{kind: tokEOF}
		return
	}
	c := p.input[p.pos]
	switch {
	case c == '+':
		p.pos++
		p.tok = token{kind: tokPlus, text: "+"}
	case c == '-':
		p.pos++
		p.tok = token{kind: tokMinus, text: "-"}
	case c == '*':
		p.pos++
		p.tok = token{kind: tokStar, text: "*"}
	case c == '/':
		p.pos++
		p.tok = token{kind: tokSlash, text: "/"}
	case c == '(':
		p.pos++
		p.tok = token{kind: tokLParen, text: "("}
	case c == ')':
		p.pos++
		p.tok = token{kind: tokRParen, text: ")"}
	case isNumberChar(c):
		start := p.pos
		for p.pos < len(p.input) && isNumberChar(p.input[p.pos]) {
			p.pos++
		}
		text := p.input[start:p.pos]
		num, err := strconv.ParseFloat(text, 64)
		if err != nil {
			p.err = fmt.Errorf("formula: invalid number %q in %q", text, p.input)
			p.tok = token{kind: tokEOF}
			return
		}
		p.tok = token{kind: tokNumber, text: text, num: num}
	case isIdentChar(c):
		start := p.pos
		for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
			p.pos++
		}
		p.tok = token{kind: tokIdent, text: p.input[start:p.pos]}
	default:
		p.err = fmt.Errorf("formula: illegal character %q in %q", string(c), p.input)
		p.tok = token{kind: tokEOF}
	}
}

// parseExpr handles + and - with left associativity.
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		p.next()
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == tokPlus {
			left += right
		} else {
			left -= right
		}
	}
	return left, nil
}

// parseTerm handles * and / with left associativity.
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for p.tok.kind == tokStar || p.tok.kind == tokSlash {
		op := p.tok.kind
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == tokStar {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("formula: division by zero in %q", p.input)
			}
			left /= right
		}
	}
	return left, nil
}

func (p *parser) parseUnary() (float64, error) {
	if p.tok.kind == tokMinus {
		p.next()
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (float64, error) {
	if p.err != nil {
		return 0, p.err
	}
	switch p.tok.kind {
	case tokNumber:
		v := p.tok.num
		p.next()
		if p.err != nil {
			return 0, p.err
		}
		return v, nil
	case tokIdent:
		name := p.tok.text
		p.next()
		if p.err != nil {
			return 0, p.err
		}
		switch name {
		case "base":
			return p.bindings.Base, nil
		case "attribute":
			return p.bindings.Attribute, nil
		case "attribute_bonus":
			return p.bindings.AttributeBonus, nil
		default:
			return 0, fmt.Errorf("formula: unknown token %q in %q", name, p.input)
		}
	case tokLParen:
		p.next()
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if p.tok.kind != tokRParen {
			return 0, fmt.Errorf("formula: missing closing parenthesis in %q", p.input)
		}
		p.next()
		if p.err != nil {
			return 0, p.err
		}
		return v, nil
	case tokEOF:
		return 0, fmt.Errorf("formula: unexpected end of expression in %q", p.input)
	default:
		return 0, fmt.Errorf("formula: unexpected %q in %q", p.tok.text, p.input)
	}
}
