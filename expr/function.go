package expr

import "math"

// Func is a unary function kind. Trigonometric arguments are in radians.
type Func string

const (
	Sin Func = "sin"
	Cos Func = "cos"
	Tan Func = "tan"
	Exp Func = "exp"
)

// Funcs lists every supported function kind.
var Funcs = []Func{Sin, Cos, Tan, Exp}

// ParseFunc returns the function kind named name.
func ParseFunc(name string) (Func, bool) {
	for _, f := range Funcs {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

// eval applies the function to a float.
func (f Func) eval(x float64) float64 {
	switch f {
	case Sin:
		return math.Sin(x)
	case Cos:
		return math.Cos(x)
	case Tan:
		return math.Tan(x)
	case Exp:
		return math.Exp(x)
	}
	return math.NaN()
}

// odd reports whether f(-x) = -f(x); even functions return false and are
// handled separately.
func (f Func) odd() bool { return f == Sin || f == Tan }

// atZero is the exact value of f(0).
func (f Func) atZero() Expr {
	switch f {
	case Cos, Exp:
		return one
	}
	return zero
}

// Apply returns fn(arg). Constant arguments are evaluated, with exact
// results at 0. A negative constant coefficient on the argument is pulled
// out for odd functions and dropped for cos.
func Apply(fn Func, arg Expr) Expr {
	if c, ok := arg.(*Constant); ok {
		if c.value.IsZero() {
			return fn.atZero()
		}
		if v := fn.eval(c.Float64()); !math.IsNaN(v) && !math.IsInf(v, 0) {
			return Const(v)
		}
	}

	if coeff, rest := coefficient(arg); coeff.IsNegative() {
		switch {
		case fn.odd():
			return Neg(Apply(fn, MulAll(newConstant(coeff.Neg()), rest)))
		case fn == Cos:
			return Apply(fn, MulAll(newConstant(coeff.Neg()), rest))
		}
	}

	return &Function{fn: fn, arg: arg, k: string(fn) + "(" + arg.key() + ")"}
}

// SinOf returns sin(arg).
func SinOf(arg Expr) Expr { return Apply(Sin, arg) }

// CosOf returns cos(arg).
func CosOf(arg Expr) Expr { return Apply(Cos, arg) }

// TanOf returns tan(arg).
func TanOf(arg Expr) Expr { return Apply(Tan, arg) }

// ExpOf returns exp(arg).
func ExpOf(arg Expr) Expr { return Apply(Exp, arg) }
