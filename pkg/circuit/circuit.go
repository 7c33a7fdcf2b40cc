package circuit

import (
	"bufio"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// View is read access to node definitions. A node without a definition is
// a primary input.
type View interface {
	Lookup(node string) (Gate, bool)
}

// Netlist maps node names to their parsed definitions
type Netlist struct {
	Name  string
	gates map[string]Gate
}

// NewNetlist creates an empty netlist with the given name
func NewNetlist(name string) *Netlist {
	return &Netlist{
		Name:  name,
		gates: make(map[string]Gate),
	}
}

// Define sets the definition of a node, replacing any earlier one
func (n *Netlist) Define(node string, gate Gate) {
	n.gates[node] = gate
}

// DefineExpr parses expr and defines node with it
func (n *Netlist) DefineExpr(node, expr string) error {
	g, err := ParseGate(stripSpace(expr))
	if err != nil {
		return errors.Wrapf(err, "node %s", node)
	}
	n.Define(stripSpace(node), g)
	return nil
}

// Lookup returns the definition of node
func (n *Netlist) Lookup(node string) (Gate, bool) {
	g, ok := n.gates[node]
	return g, ok
}

// Len returns the number of defined nodes
func (n *Netlist) Len() int {
	return len(n.gates)
}

// Nodes returns the defined node names in sorted order
func (n *Netlist) Nodes() []string {
	names := make([]string, 0, len(n.gates))
	for name := range n.gates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String renders the netlist as node=expression records
func (n *Netlist) String() string {
	var builder strings.Builder
	for _, name := range n.Nodes() {
		builder.WriteString(name)
		builder.WriteString("=")
		builder.WriteString(n.gates[name].String())
		builder.WriteString("\n")
	}
	return builder.String()
}

// SkippedRecord describes a netlist line that was not stored, or that was
// stored and later replaced
type SkippedRecord struct {
	Line      int
	Text      string
	Malformed bool   // No '=' separator
	Err       error  // Set when the expression itself could not be parsed
	Replaced  int    // Line of the later record for the same node, 0 if none
	Node      string // Node of a replaced record
}

// Parse reads node=expression records. Whitespace is not significant. Lines
// without a separator, blank lines and '#' comments are skipped; a later
// record for the same node replaces the earlier one.
func Parse(name string, r io.Reader) (*Netlist, []SkippedRecord, error) {
	n := NewNetlist(name)
	var skipped []SkippedRecord
	defined := make(map[string]SkippedRecord)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := stripSpace(scanner.Text())

		// Skip comments and empty lines
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		node, expr, found := strings.Cut(text, "=")
		if !found || node == "" {
			skipped = append(skipped, SkippedRecord{Line: lineNo, Text: text, Malformed: true})
			continue
		}

		g, err := ParseGate(expr)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Line: lineNo, Text: text, Err: err})
			continue
		}
		if prev, ok := defined[node]; ok {
			prev.Replaced = lineNo
			skipped = append(skipped, prev)
		}
		defined[node] = SkippedRecord{Line: lineNo, Text: text, Node: node}
		n.Define(node, g)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, errors.Wrap(err, "error reading netlist")
	}
	return n, skipped, nil
}

// ParseString is Parse over an in-memory netlist
func ParseString(name, src string) (*Netlist, []SkippedRecord, error) {
	return Parse(name, strings.NewReader(src))
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
