package view

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"qgadget/circuit"
)

// ──────────────────────────── Grid layout ────────────────────────────

type cellRole int

const (
	roleEmpty cellRole = iota
	roleControl
	roleTarget
	roleRotation
	roleBox
	rolePass // wire crossed by a vertical connector
)

// cellInfo describes what one (column, qubit) cell shows.
type cellInfo struct {
	gate      int // index into the circuit, -1 for an empty cell
	role      cellRole
	label     string
	vertAbove bool
	vertBelow bool
}

// grid is the diagram layout: cells[col][qubit].
type grid struct {
	cells [][]cellInfo
}

func (g grid) cols() int { return len(g.cells) }

func (g grid) at(col, qubit int) cellInfo {
	if col < 0 || col >= len(g.cells) || qubit < 0 || qubit >= len(g.cells[col]) {
		return cellInfo{gate: -1}
	}
	return g.cells[col][qubit]
}

// layout places every gate in the first free column, blocking the span
// between its lowest and highest qubit so connectors never overlap.
func layout(c *circuit.Circuit) grid {
	cols := c.Layers(true)
	n := 0
	for _, col := range cols {
		n = max(n, col+1)
	}

	g := grid{cells: make([][]cellInfo, n)}
	for col := range g.cells {
		g.cells[col] = make([]cellInfo, c.NumQubits())
		for q := range g.cells[col] {
			g.cells[col][q].gate = -1
		}
	}

	for i, gate := range c.Gates() {
		if len(gate.Qubits) == 0 {
			continue
		}
		col := g.cells[cols[i]]
		lo, hi := gate.Qubits[0], gate.Qubits[0]
		for _, q := range gate.Qubits {
			lo, hi = min(lo, q), max(hi, q)
		}
		for q := lo; q <= hi; q++ {
			col[q] = cellInfo{gate: i, role: rolePass, vertAbove: q > lo, vertBelow: q < hi}
		}
		switch gate.Kind {
		case circuit.KindCX:
			col[gate.Control()].role = roleControl
			col[gate.Target()].role = roleTarget
		case circuit.KindRz:
			col[gate.Target()].role = roleRotation
			col[gate.Target()].label = "Rz"
		default:
			for _, q := range gate.Qubits {
				col[q].role = roleBox
				col[q].label = gateDisplayName(gate.Name)
			}
		}
	}
	return g
}

// ──────────────────────────── Rendering helpers ────────────────────────────

// padCenter centres a string within the given width.
func padCenter(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	total := width - n
	left := total / 2
	right := total - left
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", right)
}

// gateDisplayName returns a short display name for an opaque gate.
func gateDisplayName(name string) string {
	switch name {
	case "measure":
		return "M"
	case "barrier":
		return "|"
	default:
		return strings.ToUpper(name)
	}
}

// renderCell returns 3 lines (top, mid, bot) for a single cell.
// Each line is exactly cellW visual characters wide.
func renderCell(info cellInfo, cursor bool) (top, mid, bot string) {
	emptyRow := strings.Repeat(" ", cellW)
	halfW := cellW / 2
	vertRow := strings.Repeat(" ", halfW) + "│" + strings.Repeat(" ", cellW-halfW-1)

	if cursor {
		innerW := cellW - 2
		dashL := (innerW - 1) / 2
		dashR := innerW - dashL - 1
		bdr := cursorBoxStyle
		top = bdr.Render("╔" + strings.Repeat("═", innerW) + "╗")
		bot = bdr.Render("╚" + strings.Repeat("═", innerW) + "╝")
		switch info.role {
		case roleControl:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR) + bdr.Render("║")
		case roleTarget:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + gateStyle.Render("⊕") + strings.Repeat("─", dashR) + bdr.Render("║")
		case roleRotation, roleBox:
			name := padCenter(info.label, gateNameW)
			side := (innerW - gateNameW - 2) / 2
			mid = bdr.Render("║") + strings.Repeat("─", side) + "┤" + styleFor(info).Render(name) + "├" +
				strings.Repeat("─", innerW-gateNameW-2-side) + bdr.Render("║")
		case rolePass:
			mid = bdr.Render("║") + strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR) + bdr.Render("║")
		default:
			mid = bdr.Render("║") + strings.Repeat("─", innerW) + bdr.Render("║")
		}
		return
	}

	dashL := (cellW - 1) / 2
	dashR := cellW - dashL - 1

	top, bot = emptyRow, emptyRow
	if info.vertAbove {
		top = vertRow
	}
	if info.vertBelow {
		bot = vertRow
	}

	switch info.role {
	case roleControl:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("●") + strings.Repeat("─", dashR)
	case roleTarget:
		mid = strings.Repeat("─", dashL) + gateStyle.Render("⊕") + strings.Repeat("─", dashR)
	case roleRotation, roleBox:
		margin := (cellW - gateBoxW) / 2
		rightMargin := cellW - margin - gateBoxW
		st := styleFor(info)
		name := padCenter(info.label, gateNameW)
		top = strings.Repeat(" ", margin) + st.Render("┌"+strings.Repeat("─", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		mid = strings.Repeat("─", margin) + st.Render("┤"+name+"├") + strings.Repeat("─", rightMargin)
		bot = strings.Repeat(" ", margin) + st.Render("└"+strings.Repeat("─", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		if info.vertAbove {
			top = strings.Repeat(" ", margin) + st.Render("┌"+padCenter("┴", gateNameW)+"┐") + strings.Repeat(" ", rightMargin)
		}
		if info.vertBelow {
			bot = strings.Repeat(" ", margin) + st.Render("└"+padCenter("┬", gateNameW)+"┘") + strings.Repeat(" ", rightMargin)
		}
	case rolePass:
		mid = strings.Repeat("─", dashL) + "┼" + strings.Repeat("─", dashR)
	default:
		mid = strings.Repeat("─", cellW)
	}
	return
}

func styleFor(info cellInfo) lipgloss.Style {
	if info.role == roleRotation {
		return rotationStyle
	}
	return gateStyle
}

// renderDiagram draws the columns of g that fit in width, scrolled so that
// cursorCol is visible. cursorCol < 0 hides the cursor.
func renderDiagram(g grid, numQubits, width, cursorCol, cursorQubit int) string {
	var sb strings.Builder

	maxCols := max((width-labelVisualW-4)/cellW, 1)
	start := 0
	if cursorCol >= maxCols {
		start = cursorCol - maxCols + 1
	}
	end := min(start+maxCols, max(g.cols(), 1))

	if start > 0 {
		fmt.Fprintf(&sb, "  ◀ showing columns %d–%d\n", start, end-1)
	}

	header := strings.Repeat(" ", labelVisualW)
	for col := start; col < end; col++ {
		header += dimStyle.Render(padCenter(fmt.Sprintf("%d", col), cellW))
	}
	sb.WriteString(header + "\n")

	for qubit := range numQubits {
		topLine := strings.Repeat(" ", labelVisualW)
		midLine := qubitLabelStyle.Render(fmt.Sprintf("%-5s", fmt.Sprintf("q[%d]", qubit))) + "──"
		botLine := strings.Repeat(" ", labelVisualW)

		for col := start; col < end; col++ {
			top, mid, bot := renderCell(g.at(col, qubit), col == cursorCol && qubit == cursorQubit)
			topLine += top
			midLine += mid
			botLine += bot
		}

		sb.WriteString(topLine + "\n")
		sb.WriteString(midLine + "\n")
		sb.WriteString(botLine + "\n")
	}
	return sb.String()
}
