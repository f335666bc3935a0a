package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgadget/symbol"
)

func symbols(names ...string) []Expr {
	r := symbol.NewRegistry()
	out := make([]Expr, len(names))
	for i, n := range names {
		out[i] = Sym(r.Fresh(n))
	}
	return out
}

func TestCanonicalEquality(t *testing.T) {
	s := symbols("a", "b", "c")
	a, b, c := s[0], s[1], s[2]

	assert.True(t, Equal(Add(a, b), Add(b, a)), "addition is order independent")
	assert.True(t, Equal(Add(Add(a, b), c), Add(a, Add(b, c))), "nested sums flatten")
	assert.True(t, Equal(Mul(Mul(a, b), c), Mul(c, Mul(b, a))), "nested products flatten")
	assert.False(t, Equal(Add(a, b), Mul(a, b)))
	assert.False(t, Equal(Add(a, b), Add(a, c)))
	assert.False(t, Equal(SinOf(a), CosOf(a)))
}

func TestConstantFolding(t *testing.T) {
	s := symbols("a", "b")
	a, b := s[0], s[1]

	tests := []struct {
		name string
		got  Expr
		want Expr
	}{
		{"sum of constants", Add(Const(0.1), Const(0.2)), Const(0.3)},
		{"constants fold across nesting", Add(Add(a, Int(1)), Add(b, Int(2))), AddAll(a, b, Int(3))},
		{"zero factor collapses product", Mul(a, Zero()), Zero()},
		{"zero term dropped", Add(a, Zero()), a},
		{"unit factor dropped", Mul(One(), b), b},
		{"product of constants", Mul(Int(3), Frac(1, 2)), Const(1.5)},
		{"coefficients multiply", Mul(Int(2), Mul(Int(3), a)), Mul(Int(6), a)},
		{"empty sum", AddAll(), Zero()},
		{"empty product", MulAll(), One()},
		{"cancelling constants", Sub(Int(1), Int(1)), Zero()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, Equal(tt.got, tt.want), "got %s, want %s", tt.got, tt.want)
		})
	}
}

func TestSingleChildCollapse(t *testing.T) {
	a := symbols("a")[0]

	got := AddAll(a)
	assert.Same(t, a, got)
	assert.Equal(t, KindSymbol, Add(a, Int(0)).Kind())
	assert.Equal(t, KindAdd, Add(a, Int(1)).Kind())
}

func TestFunctions(t *testing.T) {
	a := symbols("a")[0]

	assert.True(t, IsTrivialZero(SinOf(Zero())))
	assert.True(t, IsTrivialIdentity(CosOf(Zero())))
	assert.True(t, IsTrivialZero(TanOf(Zero())))
	assert.True(t, IsTrivialIdentity(ExpOf(Zero())))

	assert.True(t, Equal(SinOf(Neg(a)), Neg(SinOf(a))), "sin is odd")
	assert.True(t, Equal(CosOf(Neg(a)), CosOf(a)), "cos is even")
	assert.True(t, Equal(TanOf(Mul(Int(-2), a)), Neg(TanOf(Mul(Int(2), a)))))

	v, ok := ConstValue(CosOf(Const(math.Pi)))
	require.True(t, ok)
	assert.InDelta(t, -1.0, v.InexactFloat64(), 1e-12)

	f, ok := ParseFunc("cos")
	require.True(t, ok)
	assert.Equal(t, Cos, f)
	_, ok = ParseFunc("sqrt")
	assert.False(t, ok)
}

func TestString(t *testing.T) {
	s := symbols("a", "b")
	a, b := s[0], s[1]

	tests := []struct {
		e    Expr
		want string
	}{
		{AddAll(a, b, Const(0.5)), "a + b + 0.5"},
		{Sub(a, Const(0.5)), "a - 0.5"},
		{Sub(a, b), "a - b"},
		{Neg(a), "-a"},
		{Mul(Int(2), a), "2*a"},
		{Mul(Add(a, b), Int(3)), "3*(a + b)"},
		{SinOf(Neg(a)), "-sin(a)"},
		{Add(Neg(a), b), "-a + b"},
		{Mul(Int(-2), b), "(-2)*b"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.e.String())
	}
}

func TestSubstitutePartial(t *testing.T) {
	r := symbol.NewRegistry()
	sa, sb := r.Fresh("a"), r.Fresh("b")

	e := Add(Sym(sa), Sym(sb))
	got := Substitute(e, Bindings{sa: 0.5})

	assert.True(t, Equal(got, Add(Const(0.5), Sym(sb))), "got %s", got)
	assert.Equal(t, []symbol.Symbol{sb}, FreeSymbols(got))
	assert.True(t, Equal(e, Add(Sym(sa), Sym(sb))), "input untouched")
}

func TestSubstituteTotal(t *testing.T) {
	r := symbol.NewRegistry()
	sa, sb, sc := r.Fresh("a"), r.Fresh("b"), r.Fresh("c")
	a, b, c := Sym(sa), Sym(sb), Sym(sc)

	exprs := []Expr{
		AddAll(a, b, Const(0.5)),
		Mul(Add(a, Int(2)), Sub(b, c)),
		Add(SinOf(Mul(a, b)), CosOf(c)),
		ExpOf(Neg(Mul(a, Frac(1, 4)))),
		Mul(TanOf(a), Add(c, Const(-0.25))),
	}
	bindings := Bindings{sa: 0.3, sb: -1.25, sc: 2}

	for _, e := range exprs {
		got := Substitute(e, bindings)
		require.True(t, IsConstant(got), "%s did not fold: %s", e, got)

		want, ok := Eval(e, bindings)
		require.True(t, ok)
		v, _ := ConstValue(got)
		assert.InDelta(t, want, v.InexactFloat64(), 1e-9, "%s", e)
	}
}

func TestSubstituteSharesUntouchedSubtrees(t *testing.T) {
	r := symbol.NewRegistry()
	sa, sb, sc := r.Fresh("a"), r.Fresh("b"), r.Fresh("c")

	shared := SinOf(Sym(sb))
	e := Add(Sym(sa), shared)

	same := Substitute(e, Bindings{sc: 1})
	assert.Same(t, e, same, "no bound symbol means no rewrite")

	got := Substitute(e, Bindings{sa: 1})
	sum, ok := got.(*Sum)
	require.True(t, ok)
	assert.Same(t, shared, sum.Terms()[0])
}

func TestSubstituteIgnoresNonFinite(t *testing.T) {
	r := symbol.NewRegistry()
	sa := r.Fresh("a")

	got := Substitute(Sym(sa), Bindings{sa: math.NaN()})
	assert.Equal(t, KindSymbol, got.Kind())
}

func TestEvalUnbound(t *testing.T) {
	a := symbols("a")[0]
	_, ok := Eval(Add(a, Int(1)), nil)
	assert.False(t, ok)
}

func TestFreeSymbolsSorted(t *testing.T) {
	s := symbols("z", "a", "m")
	e := AddAll(s[0], Mul(s[1], s[2]), SinOf(s[0]))

	got := FreeSymbols(e)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].Name())
	assert.Equal(t, "m", got[1].Name())
	assert.Equal(t, "z", got[2].Name())
}

func TestConstPanicsOnNonFinite(t *testing.T) {
	assert.Panics(t, func() { Const(math.Inf(1)) })
	assert.Panics(t, func() { Frac(1, 0) })
}

func TestFracRoundsToDecimal(t *testing.T) {
	third := Frac(1, 3)
	assert.Equal(t, "0.3333333333333333", third.String())
	assert.False(t, Equal(Mul(Int(3), third), One()))
	assert.True(t, Equal(Mul(Int(2), Frac(1, 4)), Frac(1, 2)))
}
