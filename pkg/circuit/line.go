package circuit

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// LogicValue represents the value carried by a signal line
type LogicValue int

const (
	X    LogicValue = iota // Unknown/not evaluated
	Zero                   // Logic 0
	One                    // Logic 1
)

// MaxInputs bounds the width of an input set; the search space is 2^width
const MaxInputs = 20

// FromBool converts a Go boolean into a logic value
func FromBool(b bool) LogicValue {
	if b {
		return One
	}
	return Zero
}

// Bool reports whether the value is logic 1
func (v LogicValue) Bool() bool {
	return v == One
}

// Not returns the complement of v. X stays X.
func (v LogicValue) Not() LogicValue {
	switch v {
	case Zero:
		return One
	case One:
		return Zero
	default:
		return X
	}
}

// String returns a string representation of the logic value
func (v LogicValue) String() string {
	switch v {
	case X:
		return "X"
	case Zero:
		return "0"
	case One:
		return "1"
	default:
		return "?"
	}
}

// InputSet is the ordered list of primary input names. The position of a
// name is its position in every Assignment built from the set.
type InputSet struct {
	names    []string
	position map[string]int
}

// DefaultInputs returns the four-input set A, B, C, D
func DefaultInputs() *InputSet {
	s, _ := NewInputSet("A", "B", "C", "D")
	return s
}

// NewInputSet creates an input set from the given names in order
func NewInputSet(names ...string) (*InputSet, error) {
	if len(names) == 0 {
		return nil, errors.New("input set is empty")
	}
	if len(names) > MaxInputs {
		return nil, errors.Errorf("input set has %d names, at most %d are supported", len(names), MaxInputs)
	}

	s := &InputSet{
		names:    make([]string, 0, len(names)),
		position: make(map[string]int, len(names)),
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, errors.New("input set contains an empty name")
		}
		if _, dup := s.position[name]; dup {
			return nil, errors.Errorf("duplicate input name %q", name)
		}
		s.position[name] = len(s.names)
		s.names = append(s.names, name)
	}
	return s, nil
}

// Width returns the number of primary inputs
func (s *InputSet) Width() int {
	return len(s.names)
}

// Names returns a copy of the input names in order
func (s *InputSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Position returns the index of the named input
func (s *InputSet) Position(name string) (int, bool) {
	i, ok := s.position[name]
	return i, ok
}

// PatternCount returns the number of distinct assignments, 2^width
func (s *InputSet) PatternCount() int {
	return 1 << uint(len(s.names))
}

// Decode builds the assignment for pattern index i. The most significant bit
// of i drives the first input.
func (s *InputSet) Decode(i int) Assignment {
	w := len(s.names)
	bits := make([]LogicValue, w)
	for k := 0; k < w; k++ {
		bits[k] = FromBool(i>>uint(w-1-k)&1 == 1)
	}
	return Assignment{Index: i, inputs: s, bits: bits}
}

// Assign builds an assignment from explicit values in input order
func (s *InputSet) Assign(values ...LogicValue) (Assignment, error) {
	if len(values) != len(s.names) {
		return Assignment{}, errors.Errorf("expected %d values, got %d", len(s.names), len(values))
	}
	index := 0
	bits := make([]LogicValue, len(values))
	for k, v := range values {
		if v != Zero && v != One {
			return Assignment{}, errors.Errorf("input %s: value %v is not a logic level", s.names[k], v)
		}
		bits[k] = v
		index <<= 1
		if v == One {
			index |= 1
		}
	}
	return Assignment{Index: index, inputs: s, bits: bits}, nil
}

// Assignment is one primary input pattern. It is never modified after it
// is built.
type Assignment struct {
	Index  int // Pattern index, MSB first
	inputs *InputSet
	bits   []LogicValue
}

// Value returns the value of the named primary input
func (a Assignment) Value(name string) (LogicValue, bool) {
	if a.inputs == nil {
		return X, false
	}
	i, ok := a.inputs.position[name]
	if !ok {
		return X, false
	}
	return a.bits[i], true
}

// Bits returns a copy of the values in input order
func (a Assignment) Bits() []LogicValue {
	out := make([]LogicValue, len(a.bits))
	copy(out, a.bits)
	return out
}

// Map returns the assignment keyed by input name
func (a Assignment) Map() map[string]LogicValue {
	m := make(map[string]LogicValue, len(a.bits))
	for i, v := range a.bits {
		m[a.inputs.names[i]] = v
	}
	return m
}

// String renders the assignment as "[A,B,C,D] = [ 1 1 0 0 ]"
func (a Assignment) String() string {
	if a.inputs == nil {
		return "[] = [ ]"
	}
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("[%s] = [ ", strings.Join(a.inputs.names, ",")))
	for _, v := range a.bits {
		builder.WriteString(v.String())
		builder.WriteString(" ")
	}
	builder.WriteString("]")
	return builder.String()
}
