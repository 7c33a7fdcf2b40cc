package circuit

import (
	"strings"

	"github.com/pkg/errors"
)

// GateType represents the kind of expression defining a node
type GateType int

const (
	NOT GateType = iota
	AND
	OR
	XOR
	CONST // Constant 0 or 1, also used for injected stuck-at values
	REF   // Plain alias of another node
)

// Operator characters recognized in a netlist record
const (
	notMarker = '~'
	andOp     = '&'
	orOp      = '|'
	xorOp     = '^'
)

// String returns a string representation of the gate type
func (gt GateType) String() string {
	switch gt {
	case NOT:
		return "NOT"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case XOR:
		return "XOR"
	case CONST:
		return "CONST"
	case REF:
		return "REF"
	default:
		return "UNKNOWN"
	}
}

// Gate is the parsed definition of one node. Expressions hold at most one
// operator: the record is split at the first operator found and both sides
// are taken as node names.
type Gate struct {
	Type   GateType
	Inputs []string   // Operand node names, one for NOT and REF, two for AND/OR/XOR
	Value  LogicValue // Constant value for CONST
}

// Constant returns a gate that always drives v
func Constant(v LogicValue) Gate {
	return Gate{Type: CONST, Value: v}
}

// ParseGate parses an expression with whitespace already removed.
//
// Recognition order is NOT (leading '~'), then the first '&', '|' or '^',
// in that priority, then the literals "0" and "1". Anything else names
// another node.
func ParseGate(expr string) (Gate, error) {
	if expr == "" {
		return Gate{}, errors.New("empty expression")
	}

	if expr[0] == notMarker {
		operand := expr[1:]
		if operand == "" {
			return Gate{}, errors.Errorf("%q: NOT without operand", expr)
		}
		return Gate{Type: NOT, Inputs: []string{operand}}, nil
	}

	for _, op := range []struct {
		char byte
		typ  GateType
	}{{andOp, AND}, {orOp, OR}, {xorOp, XOR}} {
		pos := strings.IndexByte(expr, op.char)
		if pos < 0 {
			continue
		}
		left, right := expr[:pos], expr[pos+1:]
		if left == "" || right == "" {
			return Gate{}, errors.Errorf("%q: %s needs two operands", expr, op.typ)
		}
		return Gate{Type: op.typ, Inputs: []string{left, right}}, nil
	}

	switch expr {
	case "0":
		return Constant(Zero), nil
	case "1":
		return Constant(One), nil
	}

	return Gate{Type: REF, Inputs: []string{expr}}, nil
}

// Apply combines already evaluated operand values according to the gate type
func (g Gate) Apply(in ...LogicValue) LogicValue {
	switch g.Type {
	case CONST:
		return g.Value
	case NOT:
		return in[0].Not()
	case REF:
		return in[0]
	case AND:
		return FromBool(in[0].Bool() && in[1].Bool())
	case OR:
		return FromBool(in[0].Bool() || in[1].Bool())
	case XOR:
		return FromBool(in[0].Bool() != in[1].Bool())
	default:
		return X
	}
}

// String renders the gate back in netlist expression form
func (g Gate) String() string {
	switch g.Type {
	case CONST:
		return g.Value.String()
	case NOT:
		return string(notMarker) + g.Inputs[0]
	case REF:
		return g.Inputs[0]
	case AND:
		return g.Inputs[0] + string(andOp) + g.Inputs[1]
	case OR:
		return g.Inputs[0] + string(orOp) + g.Inputs[1]
	case XOR:
		return g.Inputs[0] + string(xorOp) + g.Inputs[1]
	default:
		return "?"
	}
}
