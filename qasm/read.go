package qasm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"qgadget/circuit"
	"qgadget/expr"
	"qgadget/symbol"
)

// ErrSyntax is returned for a line the reader cannot interpret.
var ErrSyntax = errors.New("qasm syntax error")

// MaxQubits is the largest register Parse accepts.
const MaxQubits = 1 << 12

var (
	qregRegex    = regexp.MustCompile(`^qreg\s+(\w+)\s*\[\s*(\d+)\s*\]\s*;?$`)
	measureRegex = regexp.MustCompile(`^measure\s+(\w+)\s*\[\s*(\d+)\s*\]\s*->\s*\w+\s*\[\s*\d+\s*\]\s*;?$`)
	gateRegex    = regexp.MustCompile(`^([A-Za-z_]\w*)\s*(?:\((.*)\))?\s+(.+?)\s*;?$`)
	operandRegex = regexp.MustCompile(`^(\w+)\s*\[\s*(\d+)\s*\]$`)
)

type reader struct {
	reg     *symbol.Registry
	names   map[string]expr.Expr
	c       *circuit.Circuit
	regName string
}

func (r *reader) lookup(name string) expr.Expr {
	if e, ok := r.names[name]; ok {
		return e
	}
	e := expr.Sym(r.reg.Fresh(name))
	r.names[name] = e
	return e
}

// Parse reads OpenQASM 2.0 text into a circuit over the single declared
// quantum register. Gate parameters may be symbolic; every distinct
// identifier becomes one fresh symbol of reg. cx and rz become CX and Rz
// gates with rz angles converted to half-turns; every other gate, including
// measure and barrier, is kept as an opaque gate.
func Parse(text string, reg *symbol.Registry) (*circuit.Circuit, error) {
	r := &reader{reg: reg, names: make(map[string]expr.Expr)}

	for n, line := range strings.Split(text, "\n") {
		lineNo := n + 1
		if i := strings.Index(line, "//"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" ||
			strings.HasPrefix(line, "OPENQASM") ||
			strings.HasPrefix(line, "include") ||
			strings.HasPrefix(line, "creg") {
			continue
		}
		if err := r.statement(line); err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
	}

	if r.c == nil {
		return nil, errors.Wrap(ErrSyntax, "no qreg declaration")
	}
	return r.c, nil
}

func (r *reader) statement(line string) error {
	if m := qregRegex.FindStringSubmatch(line); m != nil {
		if r.c != nil {
			return errors.Wrap(ErrSyntax, "only one qreg is supported")
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return errors.Wrapf(ErrSyntax, "qreg size %q", m[2])
		}
		if n > MaxQubits {
			return errors.Wrapf(ErrSyntax, "qreg size %d exceeds %d", n, MaxQubits)
		}
		r.regName = m[1]
		r.c = circuit.New(n)
		return nil
	}
	if r.c == nil {
		return errors.Wrapf(ErrSyntax, "%q before qreg", line)
	}

	if m := measureRegex.FindStringSubmatch(line); m != nil {
		q, err := r.operand(m[1] + "[" + m[2] + "]")
		if err != nil {
			return err
		}
		return r.c.AddOpaque("measure", []int{q})
	}

	if strings.HasPrefix(line, "if") && strings.Contains(line, "==") {
		return errors.Wrap(ErrSyntax, "classically controlled gates are not supported")
	}

	m := gateRegex.FindStringSubmatch(line)
	if m == nil {
		return errors.Wrapf(ErrSyntax, "%q", line)
	}
	name := strings.ToLower(m[1])

	var params []expr.Expr
	for _, ps := range splitParams(m[2]) {
		p, err := parseParam(ps, r.lookup)
		if err != nil {
			return errors.Wrapf(ErrSyntax, "parameter %q: %v", ps, err)
		}
		params = append(params, p)
	}

	var qubits []int
	for _, op := range strings.Split(m[3], ",") {
		op = strings.TrimSpace(op)
		if op == r.regName {
			for q := range r.c.NumQubits() {
				qubits = append(qubits, q)
			}
			continue
		}
		q, err := r.operand(op)
		if err != nil {
			return err
		}
		qubits = append(qubits, q)
	}

	switch {
	case name == "cx" && len(params) == 0:
		if len(qubits) != 2 {
			return errors.Wrapf(ErrSyntax, "cx takes 2 qubits, got %d", len(qubits))
		}
		return r.c.AddCX(qubits[0], qubits[1])
	case name == "rz":
		if len(params) != 1 || len(qubits) != 1 {
			return errors.Wrapf(ErrSyntax, "rz takes 1 parameter and 1 qubit")
		}
		return r.c.AddRz(qubits[0], toHalfTurns(params[0]))
	}
	return r.c.AddOpaque(name, qubits, params...)
}

func (r *reader) operand(s string) (int, error) {
	m := operandRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, errors.Wrapf(ErrSyntax, "operand %q", s)
	}
	if m[1] != r.regName {
		return 0, errors.Wrapf(ErrSyntax, "unknown register %q", m[1])
	}
	q, err := strconv.Atoi(m[2])
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "operand %q", s)
	}
	return q, nil
}
