package qasm

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"qgadget/expr"
)

var piDecimal = decimal.NewFromFloat(math.Pi)

// halfTurnPlaces bounds the precision of a constant angle converted from
// radians, absorbing the rounding of pi.
const halfTurnPlaces = 12

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokIdent
	tokOp
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func tokenize(s string) ([]token, error) {
	var toks []token
	for i := 0; i < len(s); {
		r := rune(s[i])
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || r == '.':
			j := i
			for j < len(s) && (unicode.IsDigit(rune(s[j])) || s[j] == '.') {
				j++
			}
			if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
				k := j + 1
				if k < len(s) && (s[k] == '+' || s[k] == '-') {
					k++
				}
				if k < len(s) && unicode.IsDigit(rune(s[k])) {
					for k < len(s) && unicode.IsDigit(rune(s[k])) {
						k++
					}
					j = k
				}
			}
			toks = append(toks, token{tokNumber, s[i:j], i})
			i = j
		case unicode.IsLetter(r) || r == '_':
			j := i
			for j < len(s) && (unicode.IsLetter(rune(s[j])) || unicode.IsDigit(rune(s[j])) || s[j] == '_') {
				j++
			}
			toks = append(toks, token{tokIdent, s[i:j], i})
			i = j
		case strings.ContainsRune("+-*/()", r):
			toks = append(toks, token{tokOp, s[i : i+1], i})
			i++
		default:
			return nil, errors.Errorf("unexpected %q at %d", r, i)
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(s)}), nil
}

// paramParser is a recursive-descent parser for gate parameters:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary | implicit }
//	unary   = ("-" | "+") unary | primary
//	primary = number | "pi" | ident | func "(" sum ")" | "(" sum ")"
//
// A number directly followed by a primary multiplies it, as in 3pi/4.
type paramParser struct {
	toks   []token
	i      int
	lookup func(name string) expr.Expr
}

func (p *paramParser) peek() token { return p.toks[p.i] }

func (p *paramParser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *paramParser) isOp(op string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == op
}

func (p *paramParser) expect(op string) error {
	if !p.isOp(op) {
		return errors.Errorf("expected %q at %d", op, p.peek().pos)
	}
	p.next()
	return nil
}

func (p *paramParser) sum() (expr.Expr, error) {
	acc, err := p.product()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next().text
		rhs, err := p.product()
		if err != nil {
			return nil, err
		}
		if op == "-" {
			rhs = expr.Neg(rhs)
		}
		acc = expr.Add(acc, rhs)
	}
	return acc, nil
}

func (p *paramParser) product() (expr.Expr, error) {
	acc, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.isOp("*"):
			p.next()
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			acc = expr.Mul(acc, rhs)
		case p.isOp("/"):
			pos := p.next().pos
			rhs, err := p.unary()
			if err != nil {
				return nil, err
			}
			d, ok := expr.ConstValue(rhs)
			if !ok {
				return nil, errors.Errorf("division by non-constant %s at %d", rhs, pos)
			}
			if d.IsZero() {
				return nil, errors.Errorf("division by zero at %d", pos)
			}
			acc = expr.Mul(acc, expr.Decimal(decimal.NewFromInt(1).Div(d)))
		case expr.IsConstant(acc) && (p.peek().kind == tokIdent || p.isOp("(")):
			rhs, err := p.primary()
			if err != nil {
				return nil, err
			}
			acc = expr.Mul(acc, rhs)
		default:
			return acc, nil
		}
	}
}

func (p *paramParser) unary() (expr.Expr, error) {
	switch {
	case p.isOp("-"):
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return expr.Neg(e), nil
	case p.isOp("+"):
		p.next()
		return p.unary()
	}
	return p.primary()
}

func (p *paramParser) primary() (expr.Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		d, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, errors.Errorf("bad number %q at %d", t.text, t.pos)
		}
		return expr.Decimal(d), nil
	case tokIdent:
		name := strings.ToLower(t.text)
		if name == "pi" {
			return expr.Decimal(piDecimal), nil
		}
		if fn, ok := expr.ParseFunc(name); ok && p.isOp("(") {
			p.next()
			arg, err := p.sum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return expr.Apply(fn, arg), nil
		}
		return p.lookup(t.text), nil
	case tokOp:
		if t.text == "(" {
			e, err := p.sum()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return e, nil
		}
	case tokEOF:
		return nil, errors.New("unexpected end of parameter")
	}
	return nil, errors.Errorf("unexpected %q at %d", t.text, t.pos)
}

// parseParam parses one parameter expression in radians. Identifiers other
// than pi and function names are resolved through lookup.
func parseParam(s string, lookup func(name string) expr.Expr) (expr.Expr, error) {
	toks, err := tokenize(s)
	if err != nil {
		return nil, err
	}
	p := &paramParser{toks: toks, lookup: lookup}
	e, err := p.sum()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, errors.Errorf("unexpected %q at %d", t.text, t.pos)
	}
	return e, nil
}

// splitParams splits a parameter list on top-level commas.
func splitParams(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" || len(out) > 0 {
		out = append(out, rest)
	}
	return out
}

// toHalfTurns divides a radian expression by pi. Every additive term is
// rescaled through its constant coefficient, so pi*a becomes a and pi/2
// becomes 0.5.
func toHalfTurns(e expr.Expr) expr.Expr {
	if s, ok := e.(*expr.Sum); ok {
		terms := s.Terms()
		for i, t := range terms {
			terms[i] = toHalfTurns(t)
		}
		return expr.AddAll(terms...)
	}
	coeff, rest := expr.SplitCoefficient(e)
	return expr.Mul(expr.Decimal(coeff.Div(piDecimal).Round(halfTurnPlaces)), rest)
}

// piForm is a radian value with its conventional spelling.
type piForm struct {
	value   float64
	display string
}

var piForms = []piForm{
	{2 * math.Pi, "2*pi"},
	{math.Pi, "pi"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
	{3 * math.Pi / 4, "3*pi/4"},
	{3 * math.Pi / 2, "3*pi/2"},
	{2 * math.Pi / 3, "2*pi/3"},
}

// formatRadians spells a constant radian value, using pi notation when it
// is a common fraction of pi.
func formatRadians(val float64) string {
	if val == 0 {
		return "0"
	}
	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.display
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// formatHalfTurns writes a half-turn angle as radians. Symbolic angles are
// scaled by an explicit pi factor; constants use the pi table when they
// match it exactly enough and pi*value otherwise.
func formatHalfTurns(e expr.Expr) string {
	if v, ok := expr.ConstValue(e); ok {
		if v.IsZero() {
			return "0"
		}
		rad := v.InexactFloat64() * math.Pi
		if s := formatRadians(rad); strings.Contains(s, "pi") {
			return s
		}
		return "pi*" + wrap(v.String())
	}
	return "pi*" + wrap(e.String())
}

func wrap(s string) string {
	if strings.ContainsAny(s, " -+/") {
		return "(" + s + ")"
	}
	return s
}

// formatRaw writes a parameter that is not an Rz angle.
func formatRaw(e expr.Expr) string {
	if v, ok := expr.ConstValue(e); ok {
		return formatRadians(v.InexactFloat64())
	}
	return e.String()
}
