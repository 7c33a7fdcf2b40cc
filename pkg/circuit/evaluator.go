package circuit

import (
	"fmt"

	"github.com/pkg/errors"
)

// Memo caches node values for one evaluation of one assignment
type Memo map[string]LogicValue

// InvalidNodeError reports a node that is neither defined nor a primary input
type InvalidNodeError struct {
	Node string
}

func (e *InvalidNodeError) Error() string {
	return fmt.Sprintf("invalid node: %s", e.Node)
}

// CycleError reports a node that depends on itself
type CycleError struct {
	Node string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("combinational cycle through node %s", e.Node)
}

// Evaluator computes node values of a circuit view
type Evaluator struct {
	View View

	// Evaluations counts nodes actually computed, memo hits excluded
	Evaluations int
}

// NewEvaluator creates an evaluator over v
func NewEvaluator(v View) *Evaluator {
	return &Evaluator{View: v}
}

// Evaluate is a one-shot evaluation of node with a fresh memo
func Evaluate(v View, node string, a Assignment) (LogicValue, error) {
	return NewEvaluator(v).Evaluate(node, a)
}

// Evaluate computes node under assignment a with a fresh memo
func (e *Evaluator) Evaluate(node string, a Assignment) (LogicValue, error) {
	return e.EvaluateMemo(node, a, make(Memo))
}

// EvaluateMemo computes node under assignment a, reading and filling memo.
// Every node is computed at most once per memo. Both operands of a binary
// gate are always evaluated, left first.
func (e *Evaluator) EvaluateMemo(node string, a Assignment, memo Memo) (LogicValue, error) {
	if v, ok := memo[node]; ok {
		if v == X {
			return X, &CycleError{Node: node}
		}
		return v, nil
	}

	gate, defined := e.View.Lookup(node)
	if !defined {
		v, ok := a.Value(node)
		if !ok {
			return X, &InvalidNodeError{Node: node}
		}
		memo[node] = v
		return v, nil
	}

	// X marks the node as in progress until its value is known
	memo[node] = X
	e.Evaluations++

	in := make([]LogicValue, len(gate.Inputs))
	for i, operand := range gate.Inputs {
		v, err := e.EvaluateMemo(operand, a, memo)
		if err != nil {
			delete(memo, node)
			return X, errors.Wrapf(err, "%s", node)
		}
		in[i] = v
	}

	v := gate.Apply(in...)
	memo[node] = v
	return v, nil
}

// IsInvalidNode reports whether err was caused by an undefined node reference
func IsInvalidNode(err error) bool {
	_, ok := errors.Cause(err).(*InvalidNodeError)
	return ok
}

// IsCycle reports whether err was caused by a combinational cycle
func IsCycle(err error) bool {
	_, ok := errors.Cause(err).(*CycleError)
	return ok
}
