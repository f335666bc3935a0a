package circuit

// Stats summarises a circuit.
type Stats struct {
	Qubits    int
	Gates     int
	CX        int
	Rotations int
	Opaque    int
	Symbols   int
	Depth     int // longest chain of gates that share a qubit
}

// Stats computes gate counts and depth. Depth follows per-qubit dependencies:
// a gate sits one layer after the latest gate on any of its qubits.
func (c *Circuit) Stats() Stats {
	st := Stats{Qubits: c.numQubits, Gates: len(c.gates), Symbols: len(c.Symbols())}

	lastLayer := make([]int, c.numQubits)
	for _, g := range c.gates {
		switch g.Kind {
		case KindCX:
			st.CX++
		case KindRz:
			st.Rotations++
		default:
			st.Opaque++
		}

		layer := 0
		for _, q := range g.Qubits {
			layer = max(layer, lastLayer[q])
		}
		layer++
		for _, q := range g.Qubits {
			lastLayer[q] = layer
		}
		st.Depth = max(st.Depth, layer)
	}
	return st
}

// Layers assigns every gate a column so that gates sharing a qubit never
// share a column. When span is true a multi-qubit gate also blocks the qubits
// between its lowest and highest index, which is what a diagram needs to draw
// its vertical connector.
func (c *Circuit) Layers(span bool) []int {
	cols := make([]int, len(c.gates))
	next := make([]int, c.numQubits)
	for i, g := range c.gates {
		lo, hi := c.numQubits, -1
		for _, q := range g.Qubits {
			lo, hi = min(lo, q), max(hi, q)
		}
		if hi < 0 {
			continue
		}
		occupied := g.Qubits
		if span {
			occupied = make([]int, 0, hi-lo+1)
			for q := lo; q <= hi; q++ {
				occupied = append(occupied, q)
			}
		}
		col := 0
		for _, q := range occupied {
			col = max(col, next[q])
		}
		cols[i] = col
		for _, q := range occupied {
			next[q] = col + 1
		}
	}
	return cols
}
