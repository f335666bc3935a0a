// Package subst binds circuit symbols to numbers.
package subst

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"qgadget/circuit"
	"qgadget/expr"
	"qgadget/symbol"
)

// ErrUnknownSymbol is returned by Bind for a name the circuit never uses.
var ErrUnknownSymbol = errors.New("unknown symbol")

// Options configures Apply.
type Options struct {
	// DropZeroRotations removes Rz gates whose angle folds to constant 0.
	DropZeroRotations bool
	Logger            *zap.Logger
}

// Circuit returns a copy of c with every bound symbol replaced. Partial
// bindings leave the remaining symbols in place. c is not modified.
func Circuit(c *circuit.Circuit, b expr.Bindings) *circuit.Circuit {
	return Apply(c, b, Options{})
}

// InPlace substitutes b into c itself.
func InPlace(c *circuit.Circuit, b expr.Bindings) {
	c.Assign(Circuit(c, b))
}

// Apply is Circuit with options.
func Apply(c *circuit.Circuit, b expr.Bindings, opts Options) *circuit.Circuit {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	out := circuit.New(c.NumQubits())
	dropped := 0
	for i, g := range c.Gates() {
		switch g.Kind {
		case circuit.KindRz:
			g.Param = expr.Substitute(g.Param, b)
			if opts.DropZeroRotations && expr.IsTrivialZero(g.Param) {
				log.Debug("dropped zero rotation", zap.Int("gate", i), zap.Int("qubit", g.Target()))
				dropped++
				continue
			}
		default:
			for j, p := range g.Params {
				g.Params[j] = expr.Substitute(p, b)
			}
		}
		if err := out.AddGate(g); err != nil {
			// gates of c are already valid
			panic(err)
		}
	}

	log.Debug("substituted circuit",
		zap.Int("bindings", len(b)),
		zap.Int("gates", out.Len()),
		zap.Int("dropped", dropped),
		zap.Int("free_symbols", len(out.Symbols())))
	return out
}

// Bind resolves names to the symbols of c. Every name must belong to a
// symbol referenced by c.
func Bind(c *circuit.Circuit, values map[string]float64) (expr.Bindings, error) {
	byName := make(map[string]symbol.Symbol)
	for _, s := range c.Symbols() {
		byName[s.Name()] = s
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	slices.Sort(names)

	b := make(expr.Bindings, len(values))
	var unknown []string
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		b[s] = values[name]
	}
	if len(unknown) > 0 {
		return nil, errors.Wrap(ErrUnknownSymbol, strings.Join(unknown, ", "))
	}
	return b, nil
}
