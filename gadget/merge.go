package gadget

import (
	"go.uber.org/zap"

	"qgadget/circuit"
	"qgadget/expr"
)

// Placement decides where a merged group is emitted.
type Placement int

const (
	// PlaceAtFirst emits a group at the rotation of its first gadget.
	PlaceAtFirst Placement = iota
	// PlaceAtLast emits a group at the rotation of its last gadget.
	PlaceAtLast
)

func (p Placement) String() string {
	if p == PlaceAtLast {
		return "last"
	}
	return "first"
}

// Options configures Merge.
type Options struct {
	Placement Placement

	// MoveAcrossBlockers keeps one group per subset even when an unmatched
	// gate touches one of its qubits between two members, moving gadgets
	// across that gate. This is only sound when such gates commute with Z.
	// By default such a gate closes the group and later gadgets on the
	// subset start a new one.
	MoveAcrossBlockers bool

	// DropZeroAngles omits groups whose merged angle folds to constant 0.
	DropZeroAngles bool

	Logger *zap.Logger
}

// DefaultOptions merges runs of gadgets on a subset that no unmatched gate
// separates, emitting each run at the position of its first rotation.
func DefaultOptions() Options {
	return Options{Placement: PlaceAtFirst}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

type group struct {
	key     string
	members []Match
	slot    int
}

func (g *group) gadget() PhaseGadget {
	angles := make([]expr.Expr, len(g.members))
	for i, m := range g.members {
		angles[i] = m.Gadget.Angle
	}
	qubits := g.members[0].Gadget.Qubits
	return PhaseGadget{Qubits: qubits, Anchor: qubits[len(qubits)-1], Angle: expr.AddAll(angles...)}
}

func (g *group) touches(q int) bool {
	for _, x := range g.members[0].Gadget.Qubits {
		if x == q {
			return true
		}
	}
	return false
}

// ApplyMerge merges gadgets with DefaultOptions.
func ApplyMerge(c *circuit.Circuit) *circuit.Circuit {
	return Merge(c, DefaultOptions())
}

// MergeInPlace replaces c with Merge(c, opts).
func MergeInPlace(c *circuit.Circuit, opts Options) {
	c.Assign(Merge(c, opts))
}

// Merge returns a new circuit in which every group of gadgets sharing a
// qubit subset is replaced by one synthesized gadget whose angle is the sum
// of the group's angles. Unmatched gates keep their relative order. The
// rewrite is repeated until the circuit stops changing, so Merge applied to
// its own output is a no-op. c is not modified.
func Merge(c *circuit.Circuit, opts Options) *circuit.Circuit {
	log := opts.logger()
	cur := c
	for pass := 1; pass <= c.Len()+1; pass++ {
		next := mergeOnce(cur, opts, log)
		if next.Equal(cur) {
			log.Debug("merge reached fixed point", zap.Int("passes", pass), zap.Int("gates_in", c.Len()), zap.Int("gates_out", next.Len()))
			return next
		}
		cur = next
	}
	return cur
}

func mergeOnce(c *circuit.Circuit, opts Options, log *zap.Logger) *circuit.Circuit {
	matches := Find(c)

	rotations := make(map[int]Match, len(matches))
	consumed := make(map[int]bool)
	for _, m := range matches {
		rotations[m.Rotation] = m
		for _, i := range m.Gates {
			consumed[i] = true
		}
	}

	var groups []*group
	open := make(map[string]*group)
	for i, g := range c.Gates() {
		if m, ok := rotations[i]; ok {
			key := m.Gadget.Key()
			grp, ok := open[key]
			if !ok {
				grp = &group{key: key}
				open[key] = grp
				groups = append(groups, grp)
			}
			grp.members = append(grp.members, m)
			continue
		}
		if consumed[i] || opts.MoveAcrossBlockers {
			continue
		}
		for key, grp := range open {
			for _, q := range g.Qubits {
				if grp.touches(q) {
					delete(open, key)
					break
				}
			}
		}
	}

	slots := make(map[int][]*group, len(groups))
	for _, grp := range groups {
		grp.slot = grp.members[0].Rotation
		if opts.Placement == PlaceAtLast {
			grp.slot = grp.members[len(grp.members)-1].Rotation
		}
		slots[grp.slot] = append(slots[grp.slot], grp)
	}

	out := circuit.New(c.NumQubits())
	emit := func(g circuit.Gate) {
		if err := out.AddGate(g); err != nil {
			// every qubit comes from c
			panic(err)
		}
	}
	for i, g := range c.Gates() {
		for _, grp := range slots[i] {
			pg := grp.gadget()
			if len(grp.members) > 1 {
				log.Debug("merged phase gadgets",
					zap.Ints("qubits", pg.Qubits),
					zap.Int("count", len(grp.members)),
					zap.Stringer("angle", pg.Angle))
			}
			if opts.DropZeroAngles && expr.IsTrivialZero(pg.Angle) {
				log.Debug("dropped zero-angle gadget", zap.Ints("qubits", pg.Qubits))
				continue
			}
			for _, sg := range Synthesize(pg) {
				emit(sg)
			}
		}
		if !consumed[i] {
			emit(g)
		}
	}
	return out
}
