// Package view is a terminal viewer for a circuit before and after gadget
// merging and symbol binding.
package view

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qgadget/circuit"
	"qgadget/gadget"
	"qgadget/qasm"
	"qgadget/subst"
)

// stage is one of the circuits the viewer shows in its tabs.
type stage int

const (
	stageOriginal stage = iota
	stageMerged
	stageBound
	numStages
)

var stageNames = [numStages]string{"Original", "Merged", "Bound"}

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusCircuit focus = iota
	focusBindings
	focusGadgets
)

// Model represents the viewer state.
type Model struct {
	circuits [numStages]*circuit.Circuit
	grids    [numStages]grid
	stage    stage

	mergeOpts gadget.Options
	substOpts subst.Options

	bindingsEditor textarea.Model
	qasmView       viewport.Model
	lastBindings   string
	bindErr        error

	focus       focus
	cursorCol   int
	cursorQubit int
	width       int
	height      int
	statusMsg   string

	// Gadget list state
	matches    []gadget.Match
	gadgetItem int
}

// New builds a viewer for c. bindings is YAML mapping symbol names to
// values in half-turns.
func New(c *circuit.Circuit, mergeOpts gadget.Options, substOpts subst.Options, bindings string) Model {
	ta := textarea.New()
	ta.Placeholder = "theta: 0.25"
	ta.SetWidth(30)
	ta.SetHeight(6)
	ta.ShowLineNumbers = false
	ta.SetValue(bindings)

	m := Model{
		mergeOpts:      mergeOpts,
		substOpts:      substOpts,
		bindingsEditor: ta,
		qasmView:       viewport.New(30, 10),
		stage:          stageMerged,
	}
	m.circuits[stageOriginal] = c.Copy()
	m.recompute()
	return m
}

// Run starts the viewer on the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

// parseBindings reads a YAML mapping of symbol names to numbers.
func parseBindings(text string) (map[string]float64, error) {
	values := make(map[string]float64)
	if strings.TrimSpace(text) == "" {
		return values, nil
	}
	if err := yaml.Unmarshal([]byte(text), &values); err != nil {
		return nil, errors.Wrap(err, "bindings")
	}
	return values, nil
}

// recompute derives the merged and bound circuits from the original.
func (m *Model) recompute() {
	orig := m.circuits[stageOriginal]
	merged := gadget.Merge(orig, m.mergeOpts)
	m.circuits[stageMerged] = merged

	text := m.bindingsEditor.Value()
	m.lastBindings = text
	m.bindErr = nil
	m.circuits[stageBound] = merged
	values, err := parseBindings(text)
	if err == nil {
		b, berr := subst.Bind(orig, values)
		if berr == nil {
			m.circuits[stageBound] = subst.Apply(merged, b, m.substOpts)
		}
		err = berr
	}
	m.bindErr = err

	for s := range numStages {
		m.grids[s] = layout(m.circuits[s])
	}
	m.syncStage()
}

// syncStage refreshes everything that depends on the selected tab.
func (m *Model) syncStage() {
	c := m.circuits[m.stage]
	m.qasmView.SetContent(qasm.Write(c))
	m.matches = gadget.Find(c)
	m.gadgetItem = min(m.gadgetItem, max(len(m.matches)-1, 0))
	m.cursorCol = min(m.cursorCol, max(m.grids[m.stage].cols()-1, 0))
	m.cursorQubit = min(m.cursorQubit, max(c.NumQubits()-1, 0))
}

func (m *Model) setStage(s stage) {
	m.stage = (s + numStages) % numStages
	m.syncStage()
}

// current returns the circuit shown in the selected tab.
func (m Model) current() *circuit.Circuit { return m.circuits[m.stage] }

// gateUnderCursor returns the gate drawn in the cursor cell.
func (m Model) gateUnderCursor() (circuit.Gate, bool) {
	info := m.grids[m.stage].at(m.cursorCol, m.cursorQubit)
	if info.gate < 0 {
		return circuit.Gate{}, false
	}
	return m.current().At(info.gate), true
}

// columnOf returns the diagram column of gate index i.
func (m Model) columnOf(i int) int {
	g := m.grids[m.stage]
	for col := range g.cols() {
		for _, cell := range g.cells[col] {
			if cell.gate == i {
				return col
			}
		}
	}
	return 0
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		sideW := max(msg.Width/3-6, 20)
		ctrlH := 6
		sideH := msg.Height - ctrlH - 4
		m.bindingsEditor.SetWidth(sideW)
		m.bindingsEditor.SetHeight(max(sideH/3-4, 3))
		m.qasmView.Width = sideW
		m.qasmView.Height = max(sideH-sideH/3-6, 4)

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusCircuit:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusBindings
				cmds = append(cmds, m.bindingsEditor.Focus())
			case "1", "2", "3":
				m.setStage(stage(key[0] - '1'))
			case "]":
				m.setStage(m.stage + 1)
			case "[":
				m.setStage(m.stage - 1)
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.current().NumQubits()-1 {
					m.cursorQubit++
				}
			case "left", "h":
				if m.cursorCol > 0 {
					m.cursorCol--
				}
			case "right", "l":
				if m.cursorCol < m.grids[m.stage].cols()-1 {
					m.cursorCol++
				}
			case "g":
				if len(m.matches) > 0 {
					m.focus = focusGadgets
				} else {
					m.statusMsg = "No phase gadgets"
				}
			case "pgup", "pgdown":
				var cmd tea.Cmd
				m.qasmView, cmd = m.qasmView.Update(msg)
				cmds = append(cmds, cmd)
			case "ctrl+s":
				name := strings.ToLower(stageNames[m.stage]) + ".qasm"
				if err := os.WriteFile(name, []byte(qasm.Write(m.current())), 0o644); err != nil {
					m.statusMsg = fmt.Sprintf("Save error: %v", err)
				} else {
					m.statusMsg = "Saved " + name
				}
			}

		case focusGadgets:
			switch key {
			case "esc", "g":
				m.focus = focusCircuit
			case "up", "k":
				if m.gadgetItem > 0 {
					m.gadgetItem--
				}
			case "down", "j":
				if m.gadgetItem < len(m.matches)-1 {
					m.gadgetItem++
				}
			case "enter":
				match := m.matches[m.gadgetItem]
				m.cursorCol = m.columnOf(match.First())
				m.cursorQubit = match.Gadget.Anchor
				m.focus = focusCircuit
			}

		case focusBindings:
			switch key {
			case "tab", "esc":
				m.focus = focusCircuit
				m.bindingsEditor.Blur()
			default:
				var cmd tea.Cmd
				m.bindingsEditor, cmd = m.bindingsEditor.Update(msg)
				cmds = append(cmds, cmd)
				if m.bindingsEditor.Value() != m.lastBindings {
					m.recompute()
				}
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	sideWidth := m.width / 3
	circuitWidth := m.width - sideWidth - 4
	controlsHeight := 6
	mainHeight := max(m.height-controlsHeight-2, 6)
	bindingsHeight := max(mainHeight/3, 5)
	qasmHeight := max(mainHeight-bindingsHeight-2, 4)

	circuitPanel := m.renderCircuitPanel(circuitWidth, mainHeight)
	side := lipgloss.JoinVertical(lipgloss.Left,
		m.renderQASMPanel(sideWidth, qasmHeight),
		m.renderBindingsPanel(sideWidth, bindingsHeight))
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, circuitPanel, side)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusGadgets {
		frame = overlayAt(frame, m.renderGadgetList(), 2, 2)
	}
	return frame
}
