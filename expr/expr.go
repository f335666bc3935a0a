// Package expr implements immutable symbolic expression trees used as gate
// parameters.
//
// Trees are built only through the constructors in this package, which keep
// them in a light canonical form: nested sums and products are flattened,
// constant children are folded with exact decimal arithmetic, identities are
// dropped and single-child nodes collapse to the child. Structural equality
// compares sum and product children as multisets, so a+b equals b+a.
//
// Expressions are persistent: a rewrite returns a new tree that shares every
// unaffected subtree with the input.
package expr

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"qgadget/symbol"
)

// Kind identifies the node type of an expression.
type Kind int

const (
	KindConstant Kind = iota
	KindSymbol
	KindAdd
	KindMul
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindSymbol:
		return "symbol"
	case KindAdd:
		return "add"
	case KindMul:
		return "mul"
	case KindFunction:
		return "function"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Expr is an immutable expression node. The set of implementations is closed.
type Expr interface {
	Kind() Kind
	String() string

	// key is the canonical structural key; equal keys mean equal expressions.
	key() string
}

// Constant is a numeric leaf.
type Constant struct {
	value decimal.Decimal
	k     string
}

// SymbolRef references a registry symbol.
type SymbolRef struct {
	sym symbol.Symbol
	k   string
}

// Sum is an n-ary addition with at least two terms.
type Sum struct {
	terms []Expr
	k     string
}

// Product is an n-ary multiplication with at least two factors. A constant
// coefficient, when present, is always the first factor.
type Product struct {
	factors []Expr
	k       string
}

// Function applies a unary function to an argument.
type Function struct {
	fn  Func
	arg Expr
	k   string
}

func (*Constant) Kind() Kind  { return KindConstant }
func (*SymbolRef) Kind() Kind { return KindSymbol }
func (*Sum) Kind() Kind       { return KindAdd }
func (*Product) Kind() Kind   { return KindMul }
func (*Function) Kind() Kind  { return KindFunction }

func (c *Constant) key() string  { return c.k }
func (s *SymbolRef) key() string { return s.k }
func (s *Sum) key() string       { return s.k }
func (p *Product) key() string   { return p.k }
func (f *Function) key() string  { return f.k }

// Value returns the exact value of the constant.
func (c *Constant) Value() decimal.Decimal { return c.value }

// Float64 returns the nearest float64 to the constant.
func (c *Constant) Float64() float64 { return c.value.InexactFloat64() }

// Symbol returns the referenced symbol.
func (s *SymbolRef) Symbol() symbol.Symbol { return s.sym }

// Terms returns a copy of the summands.
func (s *Sum) Terms() []Expr { return append([]Expr(nil), s.terms...) }

// Factors returns a copy of the factors.
func (p *Product) Factors() []Expr { return append([]Expr(nil), p.factors...) }

// Func returns the function kind.
func (f *Function) Func() Func { return f.fn }

// Arg returns the function argument.
func (f *Function) Arg() Expr { return f.arg }

var (
	zero = newConstant(decimal.Zero)
	one  = newConstant(decimal.NewFromInt(1))
)

func newConstant(v decimal.Decimal) *Constant {
	return &Constant{value: v, k: "c" + v.String()}
}

// Const returns a constant with the given float value. It panics if v is NaN
// or infinite.
func Const(v float64) Expr {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		panic("expr: non-finite constant " + strconv.FormatFloat(v, 'g', -1, 64))
	}
	return newConstant(decimal.NewFromFloat(v))
}

// Int returns an integer constant.
func Int(n int64) Expr { return newConstant(decimal.NewFromInt(n)) }

// Frac returns p/q as a decimal rounded to decimal.DivisionPrecision (16)
// digits. The result is not a rational: 3*Frac(1, 3) is 0.9999999999999999,
// not 1. It panics if q is zero.
func Frac(p, q int64) Expr {
	if q == 0 {
		panic("expr: zero denominator")
	}
	return newConstant(decimal.NewFromInt(p).Div(decimal.NewFromInt(q)))
}

// Decimal returns a constant holding v exactly.
func Decimal(v decimal.Decimal) Expr { return newConstant(v) }

// Zero returns the constant 0.
func Zero() Expr { return zero }

// One returns the constant 1.
func One() Expr { return one }

// Sym returns a reference to s.
func Sym(s symbol.Symbol) Expr {
	name := s.Name()
	return &SymbolRef{sym: s, k: "s" + strconv.Itoa(len(name)) + ":" + name}
}

// Add returns a + b.
func Add(a, b Expr) Expr { return AddAll(a, b) }

// AddAll returns the canonical sum of terms. An empty sum is 0.
func AddAll(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	acc := decimal.Zero
	for _, t := range terms {
		switch v := t.(type) {
		case *Sum:
			for _, inner := range v.terms {
				if c, ok := inner.(*Constant); ok {
					acc = acc.Add(c.value)
					continue
				}
				flat = append(flat, inner)
			}
		case *Constant:
			acc = acc.Add(v.value)
		default:
			flat = append(flat, t)
		}
	}
	if !acc.IsZero() {
		flat = append(flat, newConstant(acc))
	}
	switch len(flat) {
	case 0:
		return zero
	case 1:
		return flat[0]
	}
	return &Sum{terms: flat, k: nodeKey("+", flat)}
}

// Mul returns a * b.
func Mul(a, b Expr) Expr { return MulAll(a, b) }

// MulAll returns the canonical product of factors. An empty product is 1 and
// any zero factor collapses the product to 0.
func MulAll(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	acc := decimal.NewFromInt(1)
	for _, f := range factors {
		switch v := f.(type) {
		case *Product:
			for _, inner := range v.factors {
				if c, ok := inner.(*Constant); ok {
					acc = acc.Mul(c.value)
					continue
				}
				flat = append(flat, inner)
			}
		case *Constant:
			acc = acc.Mul(v.value)
		default:
			flat = append(flat, f)
		}
	}
	if acc.IsZero() {
		return zero
	}
	if !acc.Equal(decimal.NewFromInt(1)) {
		flat = append([]Expr{newConstant(acc)}, flat...)
	}
	switch len(flat) {
	case 0:
		return one
	case 1:
		return flat[0]
	}
	return &Product{factors: flat, k: nodeKey("*", flat)}
}

// Neg returns -e.
func Neg(e Expr) Expr { return Mul(Int(-1), e) }

// Sub returns a - b.
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// nodeKey builds an order-independent key for a sum or product.
func nodeKey(op string, children []Expr) string {
	keys := make([]string, len(children))
	for i, c := range children {
		keys[i] = c.key()
	}
	sort.Strings(keys)
	return op + "(" + strings.Join(keys, ",") + ")"
}

// Equal reports whether a and b are structurally equal up to reordering of
// sum and product children.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.key() == b.key()
}

// Key returns the canonical key of e. Expressions with equal keys are Equal.
func Key(e Expr) string { return e.key() }

// IsConstant reports whether e is a constant leaf.
func IsConstant(e Expr) bool {
	_, ok := e.(*Constant)
	return ok
}

// ConstValue returns the exact value of e when it is a constant.
func ConstValue(e Expr) (decimal.Decimal, bool) {
	if c, ok := e.(*Constant); ok {
		return c.value, true
	}
	return decimal.Zero, false
}

// IsTrivialZero reports whether e is the constant 0.
func IsTrivialZero(e Expr) bool {
	v, ok := ConstValue(e)
	return ok && v.IsZero()
}

// IsTrivialIdentity reports whether e is the constant 1.
func IsTrivialIdentity(e Expr) bool {
	v, ok := ConstValue(e)
	return ok && v.Equal(decimal.NewFromInt(1))
}

// SplitCoefficient returns the constant coefficient of e and the remaining
// factor, so that e equals Mul(Decimal(coeff), rest).
func SplitCoefficient(e Expr) (decimal.Decimal, Expr) { return coefficient(e) }

// coefficient splits e into its constant coefficient and the remaining factor.
func coefficient(e Expr) (decimal.Decimal, Expr) {
	switch v := e.(type) {
	case *Constant:
		return v.value, one
	case *Product:
		if c, ok := v.factors[0].(*Constant); ok {
			return c.value, MulAll(v.factors[1:]...)
		}
	}
	return decimal.NewFromInt(1), e
}

// FreeSymbols returns the distinct symbols referenced by e, sorted by name.
func FreeSymbols(e Expr) []symbol.Symbol {
	seen := make(map[symbol.Symbol]struct{})
	Walk(e, func(n Expr) bool {
		if s, ok := n.(*SymbolRef); ok {
			seen[s.sym] = struct{}{}
		}
		return true
	})
	out := make([]symbol.Symbol, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Walk visits e in pre-order. Returning false from fn skips the children of
// the visited node.
func Walk(e Expr, fn func(Expr) bool) {
	if !fn(e) {
		return
	}
	switch v := e.(type) {
	case *Sum:
		for _, t := range v.terms {
			Walk(t, fn)
		}
	case *Product:
		for _, f := range v.factors {
			Walk(f, fn)
		}
	case *Function:
		Walk(v.arg, fn)
	}
}
