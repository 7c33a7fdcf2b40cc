package algorithm

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/ojaswichopra/GGH/pkg/circuit"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

// Status is the state of a search for one fault
type Status int

const (
	Searching  Status = iota
	Found             // A detecting pattern was found
	Untestable        // No pattern detects the fault
	Invalid           // The output could not be evaluated, see Result.Err
)

// String returns a string representation of the status
func (s Status) String() string {
	switch s {
	case Searching:
		return "SEARCHING"
	case Found:
		return "FOUND"
	case Untestable:
		return "UNTESTABLE"
	case Invalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of the search for one fault
type Result struct {
	Fault    circuit.Fault
	Status   Status
	Pattern  circuit.Assignment // Detecting pattern, valid when Status is Found
	Golden   circuit.LogicValue // Fault-free output under Pattern
	Faulty   circuit.LogicValue // Faulty output under Pattern
	Examined int                // Patterns compared before the search stopped

	// InjectionErr is set when the fault type was not recognized and the
	// search ran against an unmodified circuit
	InjectionErr error
	// Err is the evaluation failure (undefined node, cycle) when Status is Invalid
	Err error
}

// Record converts the result into an output record for the given output node
func (r *Result) Record(output string) utils.TestRecord {
	rec := utils.TestRecord{Fault: r.Fault.String(), Output: output}
	switch r.Status {
	case Found:
		pattern := r.Pattern
		rec.Pattern = &pattern
		rec.Value = r.Faulty
	case Invalid:
		rec.Err = r.Err
	}
	return rec
}

// Stats contains statistics about the search
type Stats struct {
	FaultsTested     int           // Number of faults searched
	TestsFound       int           // Number of faults with a detecting pattern
	UndetectedFaults int           // Number of untestable faults
	InvalidFaults    int           // Number of faults whose search hit an evaluation error
	PatternsExamined int           // Number of patterns compared
	NodeEvaluations  int           // Number of gate evaluations, memo hits excluded
	TotalTime        time.Duration // Total execution time
}

// Generator searches the input space exhaustively for a pattern that
// tells the golden circuit apart from the faulty one at the output node
type Generator struct {
	Netlist  *circuit.Netlist
	Inputs   *circuit.InputSet
	Output   string
	Logger   *utils.Logger
	Topology *circuit.Topology // Nil when the netlist could not be analyzed

	// Workers above 1 evaluates patterns concurrently in ordered batches.
	// The reported pattern is the same as with a sequential search.
	Workers int
	// Verify cross-checks every verdict with the SAT checker
	Verify bool

	Stats Stats
}

// NewGenerator creates a generator for the given netlist, inputs and output node
func NewGenerator(n *circuit.Netlist, inputs *circuit.InputSet, output string, logger *utils.Logger) *Generator {
	topo := circuit.NewTopology(n, inputs)
	if err := topo.Analyze(output); err != nil {
		logger.Warning("Topology analysis failed: %v", err)
		topo = nil
	} else if len(topo.Undefined) > 0 {
		logger.Warning("Netlist references undefined nodes: %v", topo.Undefined)
	}

	return &Generator{
		Netlist:  n,
		Inputs:   inputs,
		Output:   output,
		Logger:   logger,
		Topology: topo,
		Workers:  1,
	}
}

// FindTest searches for the lowest pattern index that detects fault. An
// evaluation error (undefined node, cycle) stops the search with an Invalid
// result; the returned error is reserved for a failed SAT cross-check.
func (g *Generator) FindTest(fault circuit.Fault) (*Result, error) {
	startTime := time.Now()
	g.Logger.Info("Starting test generation for %s", fault)
	g.Logger.Indent()
	defer g.Logger.Outdent()

	result := &Result{Fault: fault, Status: Searching}

	// The faulty view is built once and shared by every pattern
	faulty, err := circuit.Inject(g.Netlist, fault)
	if err != nil {
		g.Logger.Warning("%v; searching without a fault", err)
		result.InjectionErr = err
	} else {
		g.Logger.Fault("Injected fault: %s", fault)
	}

	if g.Topology != nil && !g.Topology.InCone(fault.Node) {
		g.Logger.Algorithm("%s is outside the cone of %s", fault.Node, g.Output)
	}

	if g.Workers > 1 {
		err = g.searchParallel(faulty, result)
	} else {
		err = g.searchSequential(faulty, result)
	}
	if err != nil {
		g.Logger.Error("Cannot evaluate %s: %v", g.Output, err)
		result.Status = Invalid
		result.Err = err
	}

	if g.Verify && result.Status != Invalid {
		if err := g.verify(faulty, result); err != nil {
			g.Logger.Error("Verification failed: %v", err)
			return nil, err
		}
	}

	g.Stats.FaultsTested++
	g.Stats.TotalTime += time.Since(startTime)
	switch result.Status {
	case Found:
		g.Stats.TestsFound++
		g.Logger.Info("Test found: %s, %s = %v (fault-free %v)", result.Pattern, g.Output, result.Faulty, result.Golden)
	case Invalid:
		g.Stats.InvalidFaults++
	default:
		g.Stats.UndetectedFaults++
		g.Logger.Info("No test possible for this fault")
	}
	g.logStats()
	return result, nil
}

// FindAllTests searches every stuck-at-0 and stuck-at-1 fault on every
// defined node and primary input
func (g *Generator) FindAllTests() ([]*Result, error) {
	var sites []string
	if g.Topology != nil {
		sites = g.Topology.FaultSites()
	} else {
		sites = circuit.NewTopology(g.Netlist, g.Inputs).FaultSites()
	}

	results := make([]*Result, 0, 2*len(sites))
	for _, site := range sites {
		for _, ft := range []circuit.FaultType{circuit.StuckAt0, circuit.StuckAt1} {
			r, err := g.FindTest(circuit.Fault{Node: site, Type: ft})
			if err != nil {
				return results, errors.Wrapf(err, "fault %s/%v", site, ft)
			}
			results = append(results, r)
		}
	}

	g.Logger.Info("Tested %d faults: %d testable, %d untestable, %d invalid",
		g.Stats.FaultsTested, g.Stats.TestsFound, g.Stats.UndetectedFaults, g.Stats.InvalidFaults)
	return results, nil
}

// searchSequential walks patterns 0..2^n-1 and stops at the first mismatch
func (g *Generator) searchSequential(faulty circuit.View, result *Result) error {
	goldenEval := circuit.NewEvaluator(g.Netlist)
	faultyEval := circuit.NewEvaluator(faulty)
	defer func() {
		g.Stats.NodeEvaluations += goldenEval.Evaluations + faultyEval.Evaluations
	}()

	for i := 0; i < g.Inputs.PatternCount(); i++ {
		pattern := g.Inputs.Decode(i)
		golden, faultyValue, err := g.compare(goldenEval, faultyEval, pattern)
		if err != nil {
			return err
		}
		if g.record(result, pattern, golden, faultyValue) {
			return nil
		}
	}

	result.Status = Untestable
	return nil
}

type comparison struct {
	golden, faulty circuit.LogicValue
	evaluations    int
	err            error
}

// searchParallel evaluates batches of patterns concurrently and scans each
// batch in index order, so the first mismatch is the same one a
// sequential search would report
func (g *Generator) searchParallel(faulty circuit.View, result *Result) error {
	count := g.Inputs.PatternCount()
	batch := g.Workers * 4

	for start := 0; start < count; start += batch {
		end := start + batch
		if end > count {
			end = count
		}

		out := make([]comparison, end-start)
		var eg errgroup.Group
		eg.SetLimit(g.Workers)
		for i := start; i < end; i++ {
			i := i
			eg.Go(func() error {
				goldenEval := circuit.NewEvaluator(g.Netlist)
				faultyEval := circuit.NewEvaluator(faulty)
				c := &out[i-start]
				c.golden, c.faulty, c.err = g.compare(goldenEval, faultyEval, g.Inputs.Decode(i))
				c.evaluations = goldenEval.Evaluations + faultyEval.Evaluations
				return nil
			})
		}
		// Workers never fail; errgroup only bounds the pool
		_ = eg.Wait()

		for k := range out {
			g.Stats.NodeEvaluations += out[k].evaluations
		}
		for k, c := range out {
			if c.err != nil {
				return c.err
			}
			if g.record(result, g.Inputs.Decode(start+k), c.golden, c.faulty) {
				return nil
			}
		}
	}

	result.Status = Untestable
	return nil
}

// compare evaluates the output on both circuits with fresh memos
func (g *Generator) compare(goldenEval, faultyEval *circuit.Evaluator, pattern circuit.Assignment) (circuit.LogicValue, circuit.LogicValue, error) {
	golden, err := goldenEval.Evaluate(g.Output, pattern)
	if err != nil {
		return circuit.X, circuit.X, errors.Wrapf(err, "golden circuit, pattern %d", pattern.Index)
	}
	faulty, err := faultyEval.Evaluate(g.Output, pattern)
	if err != nil {
		return circuit.X, circuit.X, errors.Wrapf(err, "faulty circuit, pattern %d", pattern.Index)
	}
	return golden, faulty, nil
}

// record counts one compared pattern and reports whether it detects the fault
func (g *Generator) record(result *Result, pattern circuit.Assignment, golden, faulty circuit.LogicValue) bool {
	result.Examined++
	g.Stats.PatternsExamined++
	g.Logger.Pattern("%s: golden %v, faulty %v", pattern, golden, faulty)

	if golden == faulty {
		return false
	}
	result.Status = Found
	result.Pattern = pattern
	result.Golden = golden
	result.Faulty = faulty
	return true
}

// verify checks the verdict against the SAT checker. A SAT model is
// simulated again so a solver answer is never trusted on its own.
func (g *Generator) verify(faulty circuit.View, result *Result) error {
	pattern, testable, err := NewSatChecker(g.Inputs, g.Output).Check(g.Netlist, faulty)
	if err != nil {
		return err
	}
	if testable != (result.Status == Found) {
		return errors.Errorf("exhaustive search says %v, SAT check says testable=%v", result.Status, testable)
	}
	if !testable {
		g.Logger.Algorithm("SAT check confirms %s is untestable", result.Fault)
		return nil
	}

	golden, faultyValue, err := g.compare(circuit.NewEvaluator(g.Netlist), circuit.NewEvaluator(faulty), pattern)
	if err != nil {
		return err
	}
	if golden == faultyValue {
		return errors.Errorf("SAT model %s does not detect %s", pattern, result.Fault)
	}
	g.Logger.Algorithm("SAT check confirms %s with %s", result.Fault, pattern)
	return nil
}

// logStats logs the current statistics
func (g *Generator) logStats() {
	g.Logger.Debug("Search statistics:")
	g.Logger.Debug("- Patterns examined: %d", g.Stats.PatternsExamined)
	g.Logger.Debug("- Node evaluations: %d", g.Stats.NodeEvaluations)
	g.Logger.Debug("- Total time: %v", g.Stats.TotalTime)
}
