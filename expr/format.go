package expr

import (
	"strings"

	"github.com/shopspring/decimal"
)

func (c *Constant) String() string { return c.value.String() }

func (s *SymbolRef) String() string { return s.sym.Name() }

// String renders the sum left to right, writing negative terms as subtractions.
func (s *Sum) String() string {
	var sb strings.Builder
	for i, t := range s.terms {
		neg, abs := splitSign(t)
		switch {
		case i == 0 && neg:
			sb.WriteString("-")
			sb.WriteString(wrapFactor(abs))
		case i == 0:
			sb.WriteString(t.String())
		case neg:
			sb.WriteString(" - ")
			sb.WriteString(abs.String())
		default:
			sb.WriteString(" + ")
			sb.WriteString(t.String())
		}
	}
	return sb.String()
}

func (p *Product) String() string {
	if c, ok := p.factors[0].(*Constant); ok && c.value.Equal(decimal.NewFromInt(-1)) {
		return "-" + wrapFactor(MulAll(p.factors[1:]...))
	}
	parts := make([]string, len(p.factors))
	for i, f := range p.factors {
		parts[i] = wrapFactor(f)
	}
	return strings.Join(parts, "*")
}

func (f *Function) String() string { return string(f.fn) + "(" + f.arg.String() + ")" }

// wrapFactor parenthesises sums and negative constants used as factors.
func wrapFactor(e Expr) string {
	switch v := e.(type) {
	case *Sum:
		return "(" + v.String() + ")"
	case *Constant:
		if v.value.IsNegative() {
			return "(" + v.String() + ")"
		}
	}
	return e.String()
}

// splitSign reports whether e carries a negative constant coefficient and
// returns e with that sign removed.
func splitSign(e Expr) (bool, Expr) {
	coeff, rest := coefficient(e)
	if !coeff.IsNegative() {
		return false, e
	}
	return true, MulAll(newConstant(coeff.Neg()), rest)
}
