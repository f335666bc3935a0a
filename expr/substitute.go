package expr

import (
	"math"

	"qgadget/symbol"
)

// Bindings maps symbols to concrete values. Angle parameters are in
// half-turn units.
type Bindings map[symbol.Symbol]float64

// Substitute replaces every bound symbol in e with its value and re-applies
// the constructor simplifications bottom-up. Unbound symbols are left in
// place. Subtrees that contain no bound symbol are shared with e. Non-finite
// binding values are treated as unbound.
func Substitute(e Expr, b Bindings) Expr {
	out, _ := substitute(e, b)
	return out
}

func substitute(e Expr, b Bindings) (Expr, bool) {
	switch v := e.(type) {
	case *SymbolRef:
		val, ok := b[v.sym]
		if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
			return e, false
		}
		return Const(val), true
	case *Sum:
		terms, changed := substituteAll(v.terms, b)
		if !changed {
			return e, false
		}
		return AddAll(terms...), true
	case *Product:
		factors, changed := substituteAll(v.factors, b)
		if !changed {
			return e, false
		}
		return MulAll(factors...), true
	case *Function:
		arg, changed := substitute(v.arg, b)
		if !changed {
			return e, false
		}
		return Apply(v.fn, arg), true
	}
	return e, false
}

func substituteAll(children []Expr, b Bindings) ([]Expr, bool) {
	var out []Expr
	for i, c := range children {
		nc, changed := substitute(c, b)
		if changed && out == nil {
			out = make([]Expr, len(children))
			copy(out, children[:i])
		}
		if out != nil {
			out[i] = nc
		}
	}
	return out, out != nil
}

// Eval evaluates e numerically. It reports false when e references a
// symbol missing from b.
func Eval(e Expr, b Bindings) (float64, bool) {
	switch v := e.(type) {
	case *Constant:
		return v.Float64(), true
	case *SymbolRef:
		val, ok := b[v.sym]
		return val, ok
	case *Sum:
		acc := 0.0
		for _, t := range v.terms {
			x, ok := Eval(t, b)
			if !ok {
				return 0, false
			}
			acc += x
		}
		return acc, true
	case *Product:
		acc := 1.0
		for _, f := range v.factors {
			x, ok := Eval(f, b)
			if !ok {
				return 0, false
			}
			acc *= x
		}
		return acc, true
	case *Function:
		x, ok := Eval(v.arg, b)
		if !ok {
			return 0, false
		}
		return v.fn.eval(x), true
	}
	return 0, false
}
