package algorithm

import (
	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/ojaswichopra/GGH/pkg/circuit"
)

// SatChecker decides testability of a fault with a SAT solver on the
// miter of the golden and faulty circuits: the fault is testable exactly
// when some input assignment makes the two outputs differ.
type SatChecker struct {
	Inputs *circuit.InputSet
	Output string
}

// NewSatChecker creates a checker for the given inputs and output node
func NewSatChecker(inputs *circuit.InputSet, output string) *SatChecker {
	return &SatChecker{Inputs: inputs, Output: output}
}

// Check returns a detecting assignment and true, or false if the outputs
// agree under every assignment. The assignment is any model the solver
// finds, not necessarily the lowest pattern index.
func (s *SatChecker) Check(golden, faulty circuit.View) (circuit.Assignment, bool, error) {
	c := logic.NewC()
	ins := make(map[string]z.Lit, s.Inputs.Width())
	order := make([]z.Lit, 0, s.Inputs.Width())
	for _, name := range s.Inputs.Names() {
		m := c.Lit()
		ins[name] = m
		order = append(order, m)
	}

	g, err := newLitBuilder(c, golden, ins).lit(s.Output)
	if err != nil {
		return circuit.Assignment{}, false, errors.Wrap(err, "golden circuit")
	}
	f, err := newLitBuilder(c, faulty, ins).lit(s.Output)
	if err != nil {
		return circuit.Assignment{}, false, errors.Wrap(err, "faulty circuit")
	}

	miter := c.Xor(g, f)
	if miter == c.F {
		return circuit.Assignment{}, false, nil
	}

	solver := gini.New()
	c.ToCnf(solver)
	solver.Add(c.T)
	solver.Add(0)
	// (T or m) holds trivially; it only makes the solver allocate m
	for _, m := range order {
		solver.Add(c.T)
		solver.Add(m)
		solver.Add(0)
	}
	solver.Add(c.T)
	solver.Add(miter)
	solver.Add(0)

	solver.Assume(miter)
	switch solver.Solve() {
	case 1:
	case -1:
		return circuit.Assignment{}, false, nil
	default:
		return circuit.Assignment{}, false, errors.New("SAT solver gave no answer")
	}

	values := make([]circuit.LogicValue, len(order))
	for i, m := range order {
		values[i] = circuit.FromBool(solver.Value(m))
	}
	a, err := s.Inputs.Assign(values...)
	if err != nil {
		return circuit.Assignment{}, false, err
	}
	return a, true, nil
}

// litBuilder translates a circuit view into and-inverter literals
type litBuilder struct {
	c        *logic.C
	view     circuit.View
	ins      map[string]z.Lit
	done     map[string]z.Lit
	visiting map[string]bool
}

func newLitBuilder(c *logic.C, v circuit.View, ins map[string]z.Lit) *litBuilder {
	return &litBuilder{
		c:        c,
		view:     v,
		ins:      ins,
		done:     make(map[string]z.Lit),
		visiting: make(map[string]bool),
	}
}

func (b *litBuilder) lit(node string) (z.Lit, error) {
	if m, ok := b.done[node]; ok {
		return m, nil
	}

	gate, defined := b.view.Lookup(node)
	if !defined {
		m, ok := b.ins[node]
		if !ok {
			return z.LitNull, &circuit.InvalidNodeError{Node: node}
		}
		return m, nil
	}

	if b.visiting[node] {
		return z.LitNull, &circuit.CycleError{Node: node}
	}
	b.visiting[node] = true
	defer delete(b.visiting, node)

	ops := make([]z.Lit, len(gate.Inputs))
	for i, operand := range gate.Inputs {
		m, err := b.lit(operand)
		if err != nil {
			return z.LitNull, errors.Wrapf(err, "%s", node)
		}
		ops[i] = m
	}

	var m z.Lit
	switch gate.Type {
	case circuit.CONST:
		m = b.c.F
		if gate.Value == circuit.One {
			m = b.c.T
		}
	case circuit.NOT:
		m = ops[0].Not()
	case circuit.REF:
		m = ops[0]
	case circuit.AND:
		m = b.c.And(ops[0], ops[1])
	case circuit.OR:
		m = b.c.Or(ops[0], ops[1])
	case circuit.XOR:
		m = b.c.Xor(ops[0], ops[1])
	default:
		return z.LitNull, errors.Errorf("%s: unsupported gate %v", node, gate.Type)
	}
	b.done[node] = m
	return m, nil
}
