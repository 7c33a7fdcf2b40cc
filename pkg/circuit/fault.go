package circuit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// FaultType is the stuck-at value of a fault
type FaultType int

const (
	NoFault FaultType = iota
	StuckAt0
	StuckAt1
)

// ErrInvalidFaultType is returned for fault type tokens other than SA0/SA1
var ErrInvalidFaultType = errors.New("invalid fault type")

// ParseFaultType accepts exactly the tokens "SA0" and "SA1"
func ParseFaultType(token string) (FaultType, error) {
	switch strings.TrimSpace(token) {
	case "SA0":
		return StuckAt0, nil
	case "SA1":
		return StuckAt1, nil
	default:
		return NoFault, errors.Wrapf(ErrInvalidFaultType, "%q (expected SA0 or SA1)", token)
	}
}

// Value returns the logic value a node is stuck at
func (ft FaultType) Value() LogicValue {
	switch ft {
	case StuckAt0:
		return Zero
	case StuckAt1:
		return One
	default:
		return X
	}
}

// String returns a string representation of the fault type
func (ft FaultType) String() string {
	switch ft {
	case StuckAt0:
		return "SA0"
	case StuckAt1:
		return "SA1"
	default:
		return "none"
	}
}

// Fault is a single stuck-at fault on a named node
type Fault struct {
	Node string
	Type FaultType
}

// ParseFault parses the "node/SA1" form, which also takes the short
// values "0" and "1"
func ParseFault(s string) (Fault, error) {
	node, token, found := strings.Cut(s, "/")
	if !found || strings.TrimSpace(node) == "" {
		return Fault{}, errors.Errorf("invalid fault string format: %s (expected: node/value)", s)
	}
	switch strings.TrimSpace(token) {
	case "0":
		token = "SA0"
	case "1":
		token = "SA1"
	}
	ft, err := ParseFaultType(token)
	if err != nil {
		return Fault{Node: strings.TrimSpace(node)}, err
	}
	return Fault{Node: strings.TrimSpace(node), Type: ft}, nil
}

// String returns a string representation of the fault
func (f Fault) String() string {
	if f.Type == NoFault {
		return fmt.Sprintf("%s (no fault)", f.Node)
	}
	return fmt.Sprintf("%s stuck-at-%v", f.Node, f.Type.Value())
}

// FaultyNetlist is a view of a golden netlist with one node overridden by
// a constant. The golden netlist is shared and never modified.
type FaultyNetlist struct {
	Golden *Netlist
	Fault  Fault
	gate   Gate
}

// Lookup returns the constant for the fault site and the golden definition
// for every other node
func (f *FaultyNetlist) Lookup(node string) (Gate, bool) {
	if node == f.Fault.Node {
		return f.gate, true
	}
	return f.Golden.Lookup(node)
}

// Inject derives the faulty circuit for fault. The fault site need not be
// defined in the netlist; injecting on a primary input shadows its input
// value. An unrecognized fault type yields the golden netlist itself
// together with ErrInvalidFaultType, i.e. a fault that changes nothing.
func Inject(n *Netlist, fault Fault) (View, error) {
	v := fault.Type.Value()
	if v == X {
		return n, errors.Wrapf(ErrInvalidFaultType, "fault on %s", fault.Node)
	}
	return &FaultyNetlist{
		Golden: n,
		Fault:  fault,
		gate:   Constant(v),
	}, nil
}
