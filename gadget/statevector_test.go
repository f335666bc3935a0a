package gadget

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/require"

	"qgadget/circuit"
	"qgadget/expr"
)

// stateVector is a dense simulator used to check that rewrites preserve the
// circuit unitary. Qubit q is bit q of the basis index.
type stateVector struct {
	amps []complex128
}

func newStateVector(numQubits int) *stateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &stateVector{amps: amps}
}

func (s *stateVector) applyH(q int) {
	h := complex(1.0/math.Sqrt2, 0)
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = h*(s.amps[i]+s.amps[j]), h*(s.amps[i]-s.amps[j])
		}
	}
}

func (s *stateVector) applyX(q int) {
	bit := 1 << q
	for i := range s.amps {
		if i&bit == 0 {
			j := i | bit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

func (s *stateVector) applyRZ(q int, theta float64) {
	bit := 1 << q
	phase := cmplx.Exp(complex(0, theta/2))
	for i := range s.amps {
		if i&bit != 0 {
			s.amps[i] *= phase
		} else {
			s.amps[i] *= cmplx.Conj(phase)
		}
	}
}

func (s *stateVector) applyCX(control, target int) {
	cBit, tBit := 1<<control, 1<<target
	for i := range s.amps {
		if i&cBit != 0 && i&tBit == 0 {
			j := i | tBit
			s.amps[i], s.amps[j] = s.amps[j], s.amps[i]
		}
	}
}

// simulate runs c from |0...0> after a layer of Hadamards, so every basis
// state carries amplitude and phase differences are visible.
func simulate(t *testing.T, c *circuit.Circuit, b expr.Bindings) *stateVector {
	t.Helper()
	s := newStateVector(c.NumQubits())
	for q := range c.NumQubits() {
		s.applyH(q)
	}
	for _, g := range c.Gates() {
		switch g.Kind {
		case circuit.KindCX:
			s.applyCX(g.Control(), g.Target())
		case circuit.KindRz:
			v, ok := expr.Eval(g.Param, b)
			require.True(t, ok, "unbound angle %s", g.Param)
			s.applyRZ(g.Target(), math.Pi*v)
		default:
			switch g.Name {
			case "h":
				s.applyH(g.Qubits[0])
			case "x":
				s.applyX(g.Qubits[0])
			default:
				t.Fatalf("simulator has no gate %q", g.Name)
			}
		}
	}
	return s
}

func requireSameState(t *testing.T, want, got *stateVector) {
	t.Helper()
	require.Len(t, got.amps, len(want.amps))
	for i := range want.amps {
		require.InDelta(t, real(want.amps[i]), real(got.amps[i]), 1e-9, "amplitude %d", i)
		require.InDelta(t, imag(want.amps[i]), imag(got.amps[i]), 1e-9, "amplitude %d", i)
	}
}
