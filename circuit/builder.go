package circuit

import "qgadget/expr"

// Builder appends gates fluently. The first failing call is recorded and
// every later call becomes a no-op.
type Builder struct {
	c   *Circuit
	err error
}

// NewBuilder starts a circuit over numQubits qubits.
func NewBuilder(numQubits int) *Builder {
	return &Builder{c: New(numQubits)}
}

func (b *Builder) add(g Gate) *Builder {
	if b.err == nil {
		b.err = b.c.AddGate(g)
	}
	return b
}

// CX appends a controlled-NOT.
func (b *Builder) CX(control, target int) *Builder { return b.add(CX(control, target)) }

// Rz appends a Z rotation of angle half-turns.
func (b *Builder) Rz(qubit int, angle expr.Expr) *Builder { return b.add(Rz(qubit, angle)) }

// Opaque appends a pass-through gate.
func (b *Builder) Opaque(name string, qubits []int, params ...expr.Expr) *Builder {
	return b.add(Opaque(name, qubits, params...))
}

// Gate appends an arbitrary gate.
func (b *Builder) Gate(g Gate) *Builder { return b.add(g) }

// Err returns the first error encountered.
func (b *Builder) Err() error { return b.err }

// Build returns a copy of the circuit built so far, or the first error.
func (b *Builder) Build() (*Circuit, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.c.Copy(), nil
}
