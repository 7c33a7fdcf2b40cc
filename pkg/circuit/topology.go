package circuit

import (
	"sort"
)

// Topology contains information about the netlist structure
type Topology struct {
	Netlist      *Netlist
	Inputs       *InputSet
	LevelMap     map[string]int  // Level of each node, primary inputs are level 0
	MaxLevel     int             // Maximum level in the netlist
	Fanout       map[string]int  // Number of gates reading each node
	FanoutPoints []string        // Nodes read by more than one gate
	Cone         map[string]bool // Nodes in the transitive fan-in of the output
	Undefined    []string        // Referenced names that are neither defined nor inputs
	Output       string
}

// NewTopology creates a new topology analyzer for the given netlist
func NewTopology(n *Netlist, inputs *InputSet) *Topology {
	return &Topology{
		Netlist:  n,
		Inputs:   inputs,
		LevelMap: make(map[string]int),
		Fanout:   make(map[string]int),
		Cone:     make(map[string]bool),
	}
}

// Analyze performs a complete topological analysis relative to output. It
// fails with a CycleError if any defined node depends on itself.
func (t *Topology) Analyze(output string) error {
	t.Output = output

	if err := t.ComputeLevels(); err != nil {
		return err
	}
	t.IdentifyFanoutPoints()
	t.ComputeCone(output)
	return nil
}

// ComputeLevels assigns a level to each node. Levels increase toward the
// outputs; a gate sits one level above its deepest operand.
func (t *Topology) ComputeLevels() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int)
	undefined := make(map[string]bool)

	var visit func(node string) (int, error)
	visit = func(node string) (int, error) {
		switch state[node] {
		case visiting:
			return 0, &CycleError{Node: node}
		case done:
			return t.LevelMap[node], nil
		}

		gate, ok := t.Netlist.Lookup(node)
		if !ok {
			if _, isInput := t.Inputs.Position(node); !isInput {
				undefined[node] = true
			}
			state[node] = done
			t.LevelMap[node] = 0
			return 0, nil
		}

		state[node] = visiting
		level := 0
		for _, operand := range gate.Inputs {
			l, err := visit(operand)
			if err != nil {
				return 0, err
			}
			if l+1 > level {
				level = l + 1
			}
		}
		state[node] = done
		t.LevelMap[node] = level
		if level > t.MaxLevel {
			t.MaxLevel = level
		}
		return level, nil
	}

	for _, node := range t.Netlist.Nodes() {
		if _, err := visit(node); err != nil {
			return err
		}
	}

	t.Undefined = t.Undefined[:0]
	for node := range undefined {
		t.Undefined = append(t.Undefined, node)
	}
	sort.Strings(t.Undefined)
	return nil
}

// IdentifyFanoutPoints counts readers of every node
func (t *Topology) IdentifyFanoutPoints() {
	t.Fanout = make(map[string]int)
	for _, node := range t.Netlist.Nodes() {
		gate, _ := t.Netlist.Lookup(node)
		for _, operand := range gate.Inputs {
			t.Fanout[operand]++
		}
	}

	t.FanoutPoints = t.FanoutPoints[:0]
	for node, count := range t.Fanout {
		if count > 1 {
			t.FanoutPoints = append(t.FanoutPoints, node)
		}
	}
	sort.Strings(t.FanoutPoints)
}

// ComputeCone marks every node the output depends on, the output included
func (t *Topology) ComputeCone(output string) {
	t.Cone = make(map[string]bool)

	var mark func(node string)
	mark = func(node string) {
		if t.Cone[node] {
			return
		}
		t.Cone[node] = true
		if gate, ok := t.Netlist.Lookup(node); ok {
			for _, operand := range gate.Inputs {
				mark(operand)
			}
		}
	}
	mark(output)
}

// InCone reports whether node can influence the output
func (t *Topology) InCone(node string) bool {
	return t.Cone[node]
}

// ConeNodes returns the nodes of the output cone sorted by level, then name
func (t *Topology) ConeNodes() []string {
	nodes := make([]string, 0, len(t.Cone))
	for node := range t.Cone {
		nodes = append(nodes, node)
	}
	sort.Slice(nodes, func(i, j int) bool {
		li, lj := t.LevelMap[nodes[i]], t.LevelMap[nodes[j]]
		if li != lj {
			return li < lj
		}
		return nodes[i] < nodes[j]
	})
	return nodes
}

// FaultSites lists every node a stuck-at fault can be placed on: all
// defined nodes and all primary inputs, in sorted order
func (t *Topology) FaultSites() []string {
	seen := make(map[string]bool)
	sites := make([]string, 0, t.Netlist.Len()+t.Inputs.Width())
	for _, node := range t.Netlist.Nodes() {
		seen[node] = true
		sites = append(sites, node)
	}
	for _, name := range t.Inputs.Names() {
		if !seen[name] {
			sites = append(sites, name)
		}
	}
	sort.Strings(sites)
	return sites
}
