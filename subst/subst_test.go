package subst

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgadget/circuit"
	"qgadget/expr"
	"qgadget/symbol"
)

func build(t *testing.T) (*circuit.Circuit, symbol.Symbol, symbol.Symbol) {
	t.Helper()
	r := symbol.NewRegistry()
	sa, sb := r.Fresh("theta"), r.Fresh("theta")
	a, b := expr.Sym(sa), expr.Sym(sb)

	c, err := circuit.NewBuilder(2).
		CX(0, 1).
		Rz(1, expr.Add(a, b)).
		CX(0, 1).
		Rz(0, expr.Mul(expr.Int(2), a)).
		Opaque("u1", []int{1}, expr.CosOf(b)).
		Build()
	require.NoError(t, err)
	return c, sa, sb
}

func TestCircuitLeavesInputUntouched(t *testing.T) {
	c, sa, sb := build(t)
	snapshot := c.Copy()

	c2 := c.Copy()
	got := Circuit(c2, expr.Bindings{sa: 0.25, sb: 0.5})

	assert.True(t, c.Equal(snapshot))
	assert.True(t, c2.Equal(snapshot))
	assert.Empty(t, got.Symbols())
	assert.Equal(t, "Rz(0.75, 1)", got.At(1).String())
	assert.Equal(t, "Rz(0.5, 0)", got.At(3).String())
	assert.Equal(t, "CX(0, 1)", got.At(0).String())
}

func TestCircuitPartial(t *testing.T) {
	c, sa, sb := build(t)

	got := Circuit(c, expr.Bindings{sa: 0.5})

	assert.Equal(t, []symbol.Symbol{sb}, got.Symbols())
	assert.True(t, expr.Equal(expr.Add(expr.Const(0.5), expr.Sym(sb)), got.At(1).Param))
	assert.True(t, expr.Equal(expr.One(), got.At(3).Param))
	assert.True(t, expr.Equal(expr.CosOf(expr.Sym(sb)), got.At(4).Params[0]))
}

func TestInPlace(t *testing.T) {
	c, sa, sb := build(t)

	InPlace(c, expr.Bindings{sa: 0, sb: 0})

	assert.Empty(t, c.Symbols())
	assert.True(t, expr.IsTrivialZero(c.At(1).Param))
	assert.True(t, expr.IsTrivialIdentity(c.At(4).Params[0]))
}

func TestApplyDropsZeroRotations(t *testing.T) {
	c, sa, sb := build(t)

	got := Apply(c, expr.Bindings{sa: 0, sb: 0}, Options{DropZeroRotations: true})

	assert.Equal(t, 3, got.Len())
	assert.Equal(t, "u1(1, 1)", got.At(2).String())
}

func TestBind(t *testing.T) {
	c, sa, sb := build(t)

	b, err := Bind(c, map[string]float64{"theta": 0.1, "theta_1": 0.2})
	require.NoError(t, err)
	assert.Equal(t, expr.Bindings{sa: 0.1, sb: 0.2}, b)

	_, err = Bind(c, map[string]float64{"theta": 0.1, "phi": 1, "alpha": 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownSymbol))
	assert.Contains(t, err.Error(), "alpha, phi")
}
