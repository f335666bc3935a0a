package view

import (
	"fmt"
	"strings"

	"qgadget/expr"
)

// renderTabs renders the stage selector.
func (m Model) renderTabs() string {
	var sb strings.Builder
	for i, name := range stageNames {
		label := fmt.Sprintf(" %d %s ", i+1, name)
		if stage(i) == m.stage {
			sb.WriteString(activeGateStyle.Render(label))
		} else {
			sb.WriteString(dimStyle.Render(label))
		}
		if i < len(stageNames)-1 {
			sb.WriteString(dimStyle.Render("│"))
		}
	}
	return sb.String()
}

// renderCircuitPanel renders the diagram of the selected stage.
func (m Model) renderCircuitPanel(width, height int) string {
	var sb strings.Builder
	c := m.current()

	sb.WriteString(titleStyle.Render("Circuit"))
	sb.WriteString("  ")
	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	cursor := m.cursorCol
	if m.focus != focusCircuit {
		cursor = -1
	}
	sb.WriteString(renderDiagram(m.grids[m.stage], c.NumQubits(), width, cursor, m.cursorQubit))

	st := c.Stats()
	fmt.Fprintf(&sb, "\n  %d gates  %d CX  %d Rz  depth %d", st.Gates, st.CX, st.Rotations, st.Depth)
	if st.Symbols > 0 {
		names := make([]string, 0, st.Symbols)
		for _, s := range c.Symbols() {
			names = append(names, s.Name())
		}
		fmt.Fprintf(&sb, "  free: %s", strings.Join(names, ", "))
	}
	sb.WriteString("\n")

	if g, ok := m.gateUnderCursor(); ok {
		fmt.Fprintf(&sb, "  Column %d, Qubit %d  │  %s", m.cursorCol, m.cursorQubit, activeGateStyle.Render(g.String()))
	} else {
		fmt.Fprintf(&sb, "  Column %d, Qubit %d", m.cursorCol, m.cursorQubit)
	}
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeGateStyle.Render(m.statusMsg))
	}

	return circuitStyle.Width(width).Height(height).Render(sb.String())
}

// renderQASMPanel renders the QASM of the selected stage.
func (m Model) renderQASMPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("QASM " + stageNames[m.stage]))
	sb.WriteString("\n\n")
	sb.WriteString(m.qasmView.View())
	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderBindingsPanel renders the bindings editor and its parse status.
func (m Model) renderBindingsPanel(width, height int) string {
	var sb strings.Builder

	title := "Bindings"
	if m.focus == focusBindings {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.bindingsEditor.View())
	sb.WriteString("\n")
	if m.bindErr != nil {
		sb.WriteString(errorStyle.Render(m.bindErr.Error()))
	} else {
		sb.WriteString(dimStyle.Render("half-turns, name: value"))
	}

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeGateStyle.Render("Navigate: "))
	sb.WriteString("↑↓/jk Qubit  ←→/hl Column  1-3 [ ] Stage  PgUp/PgDn QASM")
	sb.WriteString("    ")
	sb.WriteString(activeGateStyle.Render("g"))
	sb.WriteString(" Gadgets\n")

	sb.WriteString(activeGateStyle.Render("Actions:  "))
	sb.WriteString("Tab Edit bindings  ^S Save stage  q/^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// renderGadgetList renders the floating list of phase gadgets found in the
// selected stage.
func (m Model) renderGadgetList() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Phase Gadgets"))
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(strings.Repeat("─", 42)))
	sb.WriteString("\n")

	for i, match := range m.matches {
		g := match.Gadget
		qubits := fmt.Sprintf("{%s}", g.Key())
		angle := g.Angle.String()
		if expr.IsConstant(g.Angle) {
			angle += " ·π"
		}
		if i == m.gadgetItem {
			sb.WriteString(menuSelectedStyle.Render(" ▸ "))
			sb.WriteString(menuSelectedStyle.Render(fmt.Sprintf("%-12s", qubits)))
			sb.WriteString(gateStyle.Render(angle))
		} else {
			sb.WriteString("   ")
			sb.WriteString(menuNormalStyle.Render(fmt.Sprintf("%-12s", qubits)))
			sb.WriteString(dimStyle.Render(angle))
		}
		sb.WriteString(dimStyle.Render(fmt.Sprintf("  gates %d–%d", match.First(), match.Gates[len(match.Gates)-1])))
		sb.WriteString("\n")
	}
	sb.WriteString(dimStyle.Render(" ↑↓ Select  ⏎ Jump  Esc ✕"))

	return menuBorderStyle.Render(sb.String())
}
