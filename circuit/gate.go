// Package circuit models an ordered gate sequence over a fixed set of qubits
// whose parameters are symbolic expressions.
package circuit

import (
	"slices"
	"strconv"
	"strings"

	"qgadget/expr"
)

// Kind is the gate variant. CX and Rz are understood by the phase-gadget
// transforms; everything else is carried as KindOpaque.
type Kind int

const (
	KindOpaque Kind = iota
	KindCX
	KindRz
)

func (k Kind) String() string {
	switch k {
	case KindCX:
		return "CX"
	case KindRz:
		return "Rz"
	default:
		return "opaque"
	}
}

// Gate is one circuit instruction.
type Gate struct {
	Kind   Kind
	Name   string      // Name of an opaque gate, e.g. "h" or "measure"
	Qubits []int       // CX: control, target. Rz: the rotated qubit.
	Param  expr.Expr   // Rz angle in half-turns (1 is a rotation by pi); nil for other kinds
	Params []expr.Expr // Raw parameters of an opaque gate
}

// CX returns a controlled-NOT gate.
func CX(control, target int) Gate {
	return Gate{Kind: KindCX, Qubits: []int{control, target}}
}

// Rz returns a Z rotation of qubit by angle half-turns.
func Rz(qubit int, angle expr.Expr) Gate {
	return Gate{Kind: KindRz, Qubits: []int{qubit}, Param: angle}
}

// Opaque returns a pass-through gate the transforms do not interpret.
func Opaque(name string, qubits []int, params ...expr.Expr) Gate {
	return Gate{
		Kind:   KindOpaque,
		Name:   name,
		Qubits: slices.Clone(qubits),
		Params: slices.Clone(params),
	}
}

// Control returns the control qubit of a CX gate, or -1.
func (g Gate) Control() int {
	if g.Kind != KindCX || len(g.Qubits) != 2 {
		return -1
	}
	return g.Qubits[0]
}

// Target returns the target of a CX gate or the rotated qubit of an Rz, or -1.
func (g Gate) Target() int {
	switch {
	case g.Kind == KindCX && len(g.Qubits) == 2:
		return g.Qubits[1]
	case g.Kind == KindRz && len(g.Qubits) == 1:
		return g.Qubits[0]
	}
	return -1
}

// Parameters returns every parameter expression carried by the gate.
func (g Gate) Parameters() []expr.Expr {
	if g.Kind == KindRz {
		return []expr.Expr{g.Param}
	}
	return slices.Clone(g.Params)
}

// DisplayName returns the opaque gate name or the kind name.
func (g Gate) DisplayName() string {
	if g.Kind == KindOpaque {
		return g.Name
	}
	return g.Kind.String()
}

// References reports whether the gate acts on qubit.
func (g Gate) References(qubit int) bool {
	return slices.Contains(g.Qubits, qubit)
}

// Clone returns a copy that shares no slices with g. Expressions are
// immutable and are shared.
func (g Gate) Clone() Gate {
	g.Qubits = slices.Clone(g.Qubits)
	g.Params = slices.Clone(g.Params)
	return g
}

// Equal reports structural equality, comparing parameters with expr.Equal.
func (g Gate) Equal(o Gate) bool {
	if g.Kind != o.Kind || g.Name != o.Name || !slices.Equal(g.Qubits, o.Qubits) {
		return false
	}
	if !expr.Equal(g.Param, o.Param) || len(g.Params) != len(o.Params) {
		return false
	}
	for i := range g.Params {
		if !expr.Equal(g.Params[i], o.Params[i]) {
			return false
		}
	}
	return true
}

// String renders the gate as Kind(params, qubits), e.g. "CX(0, 1)" or "Rz(a + b, 3)".
func (g Gate) String() string {
	var sb strings.Builder
	sb.WriteString(g.DisplayName())
	sb.WriteString("(")
	n := 0
	for _, p := range g.Parameters() {
		if p == nil {
			continue
		}
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
		n++
	}
	for _, q := range g.Qubits {
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(q))
		n++
	}
	sb.WriteString(")")
	return sb.String()
}
