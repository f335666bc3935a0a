package circuit

import (
	"iter"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"qgadget/expr"
	"qgadget/symbol"
)

var (
	// ErrInvalidQubitIndex is returned when a gate names a qubit outside
	// [0, NumQubits).
	ErrInvalidQubitIndex = errors.New("invalid qubit index")
	// ErrDuplicateQubit is returned when a gate names the same qubit twice.
	ErrDuplicateQubit = errors.New("duplicate qubit")
	// ErrArity is returned when a gate has the wrong number of qubits for its kind.
	ErrArity = errors.New("wrong number of qubits")
	// ErrMissingParameter is returned for an Rz gate without an angle.
	ErrMissingParameter = errors.New("missing parameter")
)

// Circuit is an ordered gate sequence over NumQubits qubits. Gates are
// validated on insertion, so every stored qubit index is in range.
//
// A Circuit owns its gate slice. Copy returns an independent circuit and the
// Gates view hands out clones, so no caller can alias the backing storage.
type Circuit struct {
	numQubits int
	gates     []Gate
}

// New creates an empty circuit over numQubits qubits.
func New(numQubits int) *Circuit {
	return &Circuit{numQubits: max(numQubits, 0)}
}

// NumQubits returns the fixed qubit count.
func (c *Circuit) NumQubits() int { return c.numQubits }

// Len returns the number of gates.
func (c *Circuit) Len() int { return len(c.gates) }

// Validate checks g against the circuit's qubit count and the rules of its kind.
func (c *Circuit) Validate(g Gate) error {
	switch g.Kind {
	case KindCX:
		if len(g.Qubits) != 2 {
			return errors.Wrapf(ErrArity, "CX takes 2 qubits, got %d", len(g.Qubits))
		}
	case KindRz:
		if len(g.Qubits) != 1 {
			return errors.Wrapf(ErrArity, "Rz takes 1 qubit, got %d", len(g.Qubits))
		}
		if g.Param == nil {
			return errors.Wrap(ErrMissingParameter, "Rz angle")
		}
	default:
		if g.Name == "" {
			return errors.New("opaque gate without a name")
		}
	}

	seen := make(map[int]bool, len(g.Qubits))
	for _, q := range g.Qubits {
		if q < 0 || q >= c.numQubits {
			return errors.Wrapf(ErrInvalidQubitIndex, "%s on qubit %d, circuit has %d qubits", g.DisplayName(), q, c.numQubits)
		}
		if seen[q] {
			return errors.Wrapf(ErrDuplicateQubit, "%s on qubit %d", g.DisplayName(), q)
		}
		seen[q] = true
	}
	return nil
}

// AddGate appends g. On error the circuit is left unchanged.
func (c *Circuit) AddGate(g Gate) error {
	if err := c.Validate(g); err != nil {
		return err
	}
	c.gates = append(c.gates, g.Clone())
	return nil
}

// AddCX appends a controlled-NOT.
func (c *Circuit) AddCX(control, target int) error { return c.AddGate(CX(control, target)) }

// AddRz appends a Z rotation of angle half-turns.
func (c *Circuit) AddRz(qubit int, angle expr.Expr) error { return c.AddGate(Rz(qubit, angle)) }

// AddOpaque appends a pass-through gate.
func (c *Circuit) AddOpaque(name string, qubits []int, params ...expr.Expr) error {
	return c.AddGate(Opaque(name, qubits, params...))
}

// SetGate replaces the gate at index i.
func (c *Circuit) SetGate(i int, g Gate) error {
	if i < 0 || i >= len(c.gates) {
		return errors.Errorf("gate index %d out of range [0, %d)", i, len(c.gates))
	}
	if err := c.Validate(g); err != nil {
		return err
	}
	c.gates[i] = g.Clone()
	return nil
}

// Assign overwrites c with an independent copy of src.
func (c *Circuit) Assign(src *Circuit) {
	cp := src.Copy()
	c.numQubits = cp.numQubits
	c.gates = cp.gates
}

// Copy returns an independent circuit with the same qubit count and gates.
func (c *Circuit) Copy() *Circuit {
	out := &Circuit{numQubits: c.numQubits, gates: make([]Gate, len(c.gates))}
	for i, g := range c.gates {
		out.gates[i] = g.Clone()
	}
	return out
}

// At returns a copy of the gate at index i.
func (c *Circuit) At(i int) Gate { return c.gates[i].Clone() }

// Gates returns a restartable view of the gates in program order, yielding
// each index with a copy of its gate.
func (c *Circuit) Gates() iter.Seq2[int, Gate] {
	return func(yield func(int, Gate) bool) {
		for i := range c.gates {
			if !yield(i, c.gates[i].Clone()) {
				return
			}
		}
	}
}

// Equal reports whether both circuits have the same qubit count and
// structurally equal gates in the same order.
func (c *Circuit) Equal(o *Circuit) bool {
	if c.numQubits != o.numQubits || len(c.gates) != len(o.gates) {
		return false
	}
	for i := range c.gates {
		if !c.gates[i].Equal(o.gates[i]) {
			return false
		}
	}
	return true
}

// Symbols returns every symbol referenced by a gate parameter, sorted by name.
func (c *Circuit) Symbols() []symbol.Symbol {
	seen := make(map[symbol.Symbol]struct{})
	var out []symbol.Symbol
	for _, g := range c.gates {
		for _, p := range g.Parameters() {
			if p == nil {
				continue
			}
			for _, s := range expr.FreeSymbols(p) {
				if _, ok := seen[s]; !ok {
					seen[s] = struct{}{}
					out = append(out, s)
				}
			}
		}
	}
	slices.SortFunc(out, func(a, b symbol.Symbol) int { return strings.Compare(a.Name(), b.Name()) })
	return out
}

// String lists one gate per line.
func (c *Circuit) String() string {
	var sb strings.Builder
	for _, g := range c.gates {
		sb.WriteString(g.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
