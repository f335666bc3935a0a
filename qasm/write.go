// Package qasm converts circuits to and from OpenQASM 2.0 text.
//
// Rz angles are half-turns inside a circuit and radians in QASM, so the
// writer scales every angle by pi and the reader divides it back out.
// Parameters of other gates are carried through unscaled.
package qasm

import (
	"fmt"
	"strings"

	"qgadget/circuit"
)

// Write renders c as OpenQASM 2.0.
func Write(c *circuit.Circuit) string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(c.NumQubits(), 1))

	measured := false
	for _, g := range c.Gates() {
		if g.Kind == circuit.KindOpaque && g.Name == "measure" {
			measured = true
			break
		}
	}
	if measured {
		fmt.Fprintf(&sb, "creg c[%d];\n", max(c.NumQubits(), 1))
	}
	sb.WriteString("\n")

	for _, g := range c.Gates() {
		writeGate(&sb, g)
	}
	return sb.String()
}

func writeGate(sb *strings.Builder, g circuit.Gate) {
	switch g.Kind {
	case circuit.KindCX:
		fmt.Fprintf(sb, "cx q[%d], q[%d];\n", g.Control(), g.Target())
	case circuit.KindRz:
		fmt.Fprintf(sb, "rz(%s) q[%d];\n", formatHalfTurns(g.Param), g.Target())
	default:
		name := strings.ToLower(g.Name)
		if name == "measure" && len(g.Qubits) == 1 {
			fmt.Fprintf(sb, "measure q[%d] -> c[%d];\n", g.Qubits[0], g.Qubits[0])
			return
		}
		sb.WriteString(name)
		if len(g.Params) > 0 {
			params := make([]string, len(g.Params))
			for i, p := range g.Params {
				params[i] = formatRaw(p)
			}
			fmt.Fprintf(sb, "(%s)", strings.Join(params, ", "))
		}
		qubits := make([]string, len(g.Qubits))
		for i, q := range g.Qubits {
			qubits[i] = fmt.Sprintf("q[%d]", q)
		}
		fmt.Fprintf(sb, " %s;\n", strings.Join(qubits, ", "))
	}
}
