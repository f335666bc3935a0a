// Package gadget finds phase gadgets in a circuit and merges gadgets that act
// on the same qubit subset.
//
// A phase gadget on subset S is a CX ladder chaining every qubit of S into an
// anchor, an Rz on the anchor, and the same ladder in reverse. It applies
// exp(-i*pi*angle/2 * Z...Z) on S. Gadgets are diagonal, so any two of them
// commute and gadgets on the same subset combine by adding their angles.
package gadget

import (
	"slices"
	"strconv"
	"strings"

	"qgadget/circuit"
	"qgadget/expr"
)

// PhaseGadget is a multi-qubit Z rotation recovered from a circuit.
type PhaseGadget struct {
	Qubits []int     // ascending
	Anchor int       // qubit that carried the Rz
	Angle  expr.Expr // half-turns
}

// Key identifies the qubit subset. Gadgets with equal keys are mergeable.
func (g PhaseGadget) Key() string {
	parts := make([]string, len(g.Qubits))
	for i, q := range g.Qubits {
		parts[i] = strconv.Itoa(q)
	}
	return strings.Join(parts, ",")
}

func (g PhaseGadget) String() string {
	return "gadget{" + g.Key() + "}(" + g.Angle.String() + ")"
}

// Match is a gadget together with the circuit indices of the gates it
// consumed, in ascending order.
type Match struct {
	Gadget   PhaseGadget
	Gates    []int
	Rotation int // index of the Rz
}

// First returns the index of the first consumed gate.
func (m Match) First() int { return m.Gates[0] }

type chainState int

const (
	building chainState = iota
	mirroring
)

// chain is an open ladder. Every qubit it touches is owned by it until the
// mirror completes or the chain is aborted.
type chain struct {
	state  chainState
	qubits []int
	edges  [][2]int
	gates  []int
	anchor int
	angle  expr.Expr
	rz     int
	undone int // mirror edges seen so far
}

func (ch *chain) expected() [2]int {
	return ch.edges[len(ch.edges)-1-ch.undone]
}

type matcher struct {
	owner   []*chain
	matches []Match
}

func (m *matcher) release(ch *chain) {
	for _, q := range ch.qubits {
		if m.owner[q] == ch {
			m.owner[q] = nil
		}
	}
}

// abort drops the chain owning q, if any. Its gates are left unmatched.
func (m *matcher) abort(q int) {
	if ch := m.owner[q]; ch != nil {
		m.release(ch)
	}
}

func (m *matcher) start(i, c, t int) {
	ch := &chain{
		qubits: []int{c, t},
		edges:  [][2]int{{c, t}},
		gates:  []int{i},
		anchor: t,
	}
	m.owner[c], m.owner[t] = ch, ch
}

func (m *matcher) cx(i, c, t int) {
	ch := m.owner[c]
	switch {
	case ch != nil && ch.state == building && c == ch.anchor && m.owner[t] == nil:
		ch.qubits = append(ch.qubits, t)
		ch.edges = append(ch.edges, [2]int{c, t})
		ch.gates = append(ch.gates, i)
		ch.anchor = t
		m.owner[t] = ch
		return
	case ch != nil && ch.state == mirroring && ch.expected() == [2]int{c, t}:
		ch.gates = append(ch.gates, i)
		ch.undone++
		if ch.undone == len(ch.edges) {
			m.complete(ch)
		}
		return
	}
	m.abort(c)
	m.abort(t)
	m.start(i, c, t)
}

func (m *matcher) rz(i, q int, angle expr.Expr) {
	if ch := m.owner[q]; ch != nil {
		if ch.state == building && q == ch.anchor {
			ch.gates = append(ch.gates, i)
			ch.angle = angle
			ch.rz = i
			ch.state = mirroring
			return
		}
		m.release(ch)
	}
	m.matches = append(m.matches, Match{
		Gadget:   PhaseGadget{Qubits: []int{q}, Anchor: q, Angle: angle},
		Gates:    []int{i},
		Rotation: i,
	})
}

func (m *matcher) complete(ch *chain) {
	m.release(ch)
	qubits := slices.Clone(ch.qubits)
	slices.Sort(qubits)
	gates := slices.Clone(ch.gates)
	slices.Sort(gates)
	m.matches = append(m.matches, Match{
		Gadget:   PhaseGadget{Qubits: qubits, Anchor: ch.anchor, Angle: ch.angle},
		Gates:    gates,
		Rotation: ch.rz,
	})
}

// Find scans c once, left to right, and returns every phase gadget it
// encodes ordered by the index of each gadget's first gate.
//
// Open ladders are tracked per qubit, so ladders on disjoint qubits may
// interleave. A ladder extends only when the next CX is controlled by its
// current anchor and targets an unowned qubit. The mirror must repeat the
// ladder's CX gates in exact reverse order. Any other gate touching an owned
// qubit aborts the ladder and its gates stay unmatched. An Rz that does not
// close a ladder is a single-qubit gadget.
//
// Extension is greedy: a stray CX(0, 1) directly before a gadget on {1, 2}
// grows into a {0, 1, 2} ladder, and when no CX(0, 1) follows the mirror that
// ladder and the inner gadget are both left unmatched.
//
// No gate outside a match touches one of its qubits between the CX that
// brings the qubit into the ladder and the CX that takes it out, so the
// gadget may be treated as acting entirely at its Rz.
func Find(c *circuit.Circuit) []Match {
	m := &matcher{owner: make([]*chain, c.NumQubits())}
	for i, g := range c.Gates() {
		switch g.Kind {
		case circuit.KindCX:
			m.cx(i, g.Control(), g.Target())
		case circuit.KindRz:
			m.rz(i, g.Target(), g.Param)
		default:
			for _, q := range g.Qubits {
				m.abort(q)
			}
		}
	}
	slices.SortStableFunc(m.matches, func(a, b Match) int { return a.First() - b.First() })
	return m.matches
}

// Unmatched returns the indices of gates in a circuit of n gates that no
// match consumed.
func Unmatched(n int, matches []Match) []int {
	used := make([]bool, n)
	for _, m := range matches {
		for _, i := range m.Gates {
			used[i] = true
		}
	}
	var out []int
	for i, u := range used {
		if !u {
			out = append(out, i)
		}
	}
	return out
}

// Synthesize returns the canonical gates for g: an ascending CX ladder
// ending on the highest qubit, the rotation there, then the mirror ladder.
func Synthesize(g PhaseGadget) []circuit.Gate {
	qs := slices.Clone(g.Qubits)
	slices.Sort(qs)
	n := len(qs)
	if n == 0 {
		return nil
	}
	out := make([]circuit.Gate, 0, 2*(n-1)+1)
	for i := 0; i+1 < n; i++ {
		out = append(out, circuit.CX(qs[i], qs[i+1]))
	}
	out = append(out, circuit.Rz(qs[n-1], g.Angle))
	for i := n - 2; i >= 0; i-- {
		out = append(out, circuit.CX(qs[i], qs[i+1]))
	}
	return out
}
