package view

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qgadget/circuit"
	"qgadget/expr"
	"qgadget/gadget"
	"qgadget/subst"
	"qgadget/symbol"
)

func twoGadgets(t *testing.T) *circuit.Circuit {
	t.Helper()
	r := symbol.NewRegistry()
	a, b := expr.Sym(r.Fresh("a")), expr.Sym(r.Fresh("b"))
	c, err := circuit.NewBuilder(3).
		Opaque("h", []int{2}).
		CX(0, 1).Rz(1, a).CX(0, 1).
		CX(1, 0).Rz(0, b).CX(1, 0).
		Build()
	require.NoError(t, err)
	return c
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestNewDerivesStages(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "a: 0.25\nb: 0.5\n")

	assert.Equal(t, 7, m.circuits[stageOriginal].Len())
	assert.Equal(t, 4, m.circuits[stageMerged].Len())
	assert.Empty(t, m.circuits[stageBound].Symbols())
	assert.Equal(t, "Rz(0.75, 1)", m.circuits[stageBound].At(2).String())
	assert.NoError(t, m.bindErr)
	assert.Equal(t, stageMerged, m.stage)
}

func TestBindingsErrorsKeepMergedCircuit(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "zeta: 1")
	assert.Error(t, m.bindErr)
	assert.True(t, m.circuits[stageBound].Equal(m.circuits[stageMerged]))

	m.bindingsEditor.SetValue("a: [")
	m.recompute()
	assert.Error(t, m.bindErr)

	m.bindingsEditor.SetValue("a: 1")
	m.recompute()
	assert.NoError(t, m.bindErr)
	assert.Len(t, m.circuits[stageBound].Symbols(), 1)
}

func TestStageSwitching(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "")

	m = send(m, key("1"))
	assert.Equal(t, stageOriginal, m.stage)
	m = send(m, key("["))
	assert.Equal(t, stageBound, m.stage)
	m = send(m, key("]"), key("]"))
	assert.Equal(t, stageMerged, m.stage)
}

func TestCursorMovement(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "")
	m = send(m, key("1"))

	m = send(m, key("k"), key("h"))
	assert.Equal(t, 0, m.cursorQubit)
	assert.Equal(t, 0, m.cursorCol)

	for range 20 {
		m = send(m, key("j"), key("l"))
	}
	assert.Equal(t, 2, m.cursorQubit)
	assert.Equal(t, m.grids[stageOriginal].cols()-1, m.cursorCol)
}

func TestGadgetListJumps(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "")
	m = send(m, key("1"), key("g"))
	require.Equal(t, focusGadgets, m.focus)
	require.Len(t, m.matches, 2)

	m = send(m, key("j"), key("enter"))
	assert.Equal(t, focusCircuit, m.focus)
	assert.Equal(t, 0, m.cursorQubit, "anchor of the second gadget")
	g, ok := m.gateUnderCursor()
	require.True(t, ok)
	assert.Equal(t, "CX(1, 0)", g.String())
}

func TestBindingsFocus(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "")

	m = send(m, key("tab"))
	assert.Equal(t, focusBindings, m.focus)
	m = send(m, key("q"))
	assert.Equal(t, focusBindings, m.focus, "q types into the editor")
	m = send(m, key("esc"))
	assert.Equal(t, focusCircuit, m.focus)
}

func TestView(t *testing.T) {
	m := New(twoGadgets(t), gadget.DefaultOptions(), subst.Options{}, "")
	assert.Equal(t, "Loading...", m.View())

	m = send(m, tea.WindowSizeMsg{Width: 140, Height: 40})
	out := m.View()
	assert.Contains(t, out, "Merged")
	assert.Contains(t, out, "Bindings")
	assert.Contains(t, out, "q[2]")

	m = send(m, key("g"))
	assert.Contains(t, m.View(), "Phase Gadgets")
}

func TestLayout(t *testing.T) {
	c, err := circuit.NewBuilder(3).
		CX(0, 2).
		Rz(1, expr.One()).
		Opaque("measure", []int{1}).
		Build()
	require.NoError(t, err)

	g := layout(c)
	require.Equal(t, 3, g.cols())

	assert.Equal(t, roleControl, g.at(0, 0).role)
	assert.Equal(t, rolePass, g.at(0, 1).role)
	assert.Equal(t, roleTarget, g.at(0, 2).role)
	assert.True(t, g.at(0, 1).vertAbove)
	assert.True(t, g.at(0, 1).vertBelow)
	assert.Equal(t, roleRotation, g.at(1, 1).role)
	assert.Equal(t, "M", g.at(2, 1).label)
	assert.Equal(t, -1, g.at(1, 0).gate)
	assert.Equal(t, -1, g.at(9, 9).gate)
}

func TestRenderDiagram(t *testing.T) {
	c, err := circuit.NewBuilder(2).CX(0, 1).Rz(1, expr.One()).Build()
	require.NoError(t, err)

	out := renderDiagram(layout(c), 2, 120, -1, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7, "header plus three lines per qubit")
	assert.Contains(t, out, "●")
	assert.Contains(t, out, "⊕")
	assert.Contains(t, out, "Rz")
}

func TestPadCenter(t *testing.T) {
	assert.Equal(t, " M ", padCenter("M", 3))
	assert.Equal(t, "MEA", padCenter("MEASURE", 3))
	assert.Equal(t, " ┴ ", padCenter("┴", 3))
}

func TestOverlayAt(t *testing.T) {
	bg := "aaaaaa\nbbbbbb\ncccccc"
	got := overlayAt(bg, "XY\nZW", 2, 1)
	assert.Equal(t, "aaaaaa\nbbXYbb\nccZWcc", got)

	short := overlayAt("ab", "XY", 4, 0)
	assert.Equal(t, "ab  XY", short)
}
