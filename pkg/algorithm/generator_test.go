package algorithm_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojaswichopra/GGH/pkg/algorithm"
	"github.com/ojaswichopra/GGH/pkg/circuit"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

func newGenerator(t *testing.T, src string) *algorithm.Generator {
	t.Helper()
	n, skipped, err := circuit.ParseString(t.Name(), src)
	require.NoError(t, err)
	require.Empty(t, skipped)
	return algorithm.NewGenerator(n, circuit.DefaultInputs(), "Z", utils.NewNopLogger())
}

func bits(a circuit.Assignment) map[string]circuit.LogicValue {
	return a.Map()
}

// TestFindTestAndGate tests Z = A & B with A stuck-at-0
func TestFindTestAndGate(t *testing.T) {
	gen := newGenerator(t, "Z = A & B\n")

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt0})
	require.NoError(t, err)

	assert.Equal(t, algorithm.Found, result.Status)
	assert.Equal(t, 12, result.Pattern.Index)
	assert.Equal(t, map[string]circuit.LogicValue{
		"A": circuit.One, "B": circuit.One, "C": circuit.Zero, "D": circuit.Zero,
	}, bits(result.Pattern))
	assert.Equal(t, circuit.One, result.Golden)
	assert.Equal(t, circuit.Zero, result.Faulty)
	assert.Equal(t, 13, result.Examined)
}

// TestFindTestUnusedNode tests that a fault off the output cone is untestable
func TestFindTestUnusedNode(t *testing.T) {
	gen := newGenerator(t, "Z = A\n")

	result, err := gen.FindTest(circuit.Fault{Node: "X", Type: circuit.StuckAt0})
	require.NoError(t, err)

	assert.Equal(t, algorithm.Untestable, result.Status)
	assert.Equal(t, 16, result.Examined, "every pattern is compared before giving up")
	assert.Nil(t, result.Record("Z").Pattern)
}

// TestFindTestXorGate tests Z = A ^ B with A stuck-at-1: the fault shows
// whenever A is really 0
func TestFindTestXorGate(t *testing.T) {
	gen := newGenerator(t, "Z = A ^ B\n")

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt1})
	require.NoError(t, err)

	assert.Equal(t, algorithm.Found, result.Status)
	assert.Equal(t, 0, result.Pattern.Index)
	assert.Equal(t, circuit.Zero, result.Golden)
	assert.Equal(t, circuit.One, result.Faulty)
}

// TestFindTestNotGate tests Z = ~A with A stuck-at-0: patterns with A=0
// cannot detect it, the first one with A=1 does
func TestFindTestNotGate(t *testing.T) {
	gen := newGenerator(t, "Z = ~A\n")

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt0})
	require.NoError(t, err)

	assert.Equal(t, algorithm.Found, result.Status)
	assert.Equal(t, 8, result.Pattern.Index)
	v, _ := result.Pattern.Value("A")
	assert.Equal(t, circuit.One, v)
	assert.Equal(t, circuit.Zero, result.Golden)
	assert.Equal(t, circuit.One, result.Faulty)
	assert.Equal(t, 9, result.Examined)
}

// TestFindTestLowestIndex checks the reported pattern against a brute-force scan
func TestFindTestLowestIndex(t *testing.T) {
	src := "N=A&B\nP=~N\nQ=C|D\nR=N^Q\nZ=P&R\n"
	gen := newGenerator(t, src)

	for _, site := range []string{"A", "B", "C", "D", "N", "P", "Q", "R", "Z"} {
		for _, ft := range []circuit.FaultType{circuit.StuckAt0, circuit.StuckAt1} {
			fault := circuit.Fault{Node: site, Type: ft}
			result, err := gen.FindTest(fault)
			require.NoError(t, err)

			faulty, err := circuit.Inject(gen.Netlist, fault)
			require.NoError(t, err)

			expected := -1
			for i := 0; i < gen.Inputs.PatternCount(); i++ {
				a := gen.Inputs.Decode(i)
				g, _ := circuit.Evaluate(gen.Netlist, "Z", a)
				f, _ := circuit.Evaluate(faulty, "Z", a)
				if g != f {
					expected = i
					break
				}
			}

			if expected < 0 {
				assert.Equal(t, algorithm.Untestable, result.Status, fault.String())
				continue
			}
			assert.Equal(t, algorithm.Found, result.Status, fault.String())
			assert.Equal(t, expected, result.Pattern.Index, fault.String())
			assert.Equal(t, expected+1, result.Examined, fault.String())
		}
	}
}

// TestFindTestRedundantFault tests a fault masked by logic, not by structure
func TestFindTestRedundantFault(t *testing.T) {
	// Z = A | (A & B) is just A, so N never matters
	gen := newGenerator(t, "N=A&B\nZ=A|N\n")

	result, err := gen.FindTest(circuit.Fault{Node: "N", Type: circuit.StuckAt0})
	require.NoError(t, err)
	assert.Equal(t, algorithm.Untestable, result.Status)

	result, err = gen.FindTest(circuit.Fault{Node: "N", Type: circuit.StuckAt1})
	require.NoError(t, err)
	assert.Equal(t, algorithm.Found, result.Status)
	assert.Equal(t, 0, result.Pattern.Index)
}

// TestFindTestInvalidFaultType tests that an unknown fault type runs as no fault
func TestFindTestInvalidFaultType(t *testing.T) {
	gen := newGenerator(t, "Z = A & B\n")

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.NoFault})
	require.NoError(t, err)

	assert.Equal(t, algorithm.Untestable, result.Status)
	assert.True(t, errors.Is(result.InjectionErr, circuit.ErrInvalidFaultType))
	assert.Equal(t, 16, result.Examined)
}

// TestFindTestInvalidNode tests that a dangling reference ends the search with an Invalid result
func TestFindTestInvalidNode(t *testing.T) {
	gen := newGenerator(t, "Z = A & Q\n")

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt0})
	require.NoError(t, err)
	assert.Equal(t, algorithm.Invalid, result.Status)
	assert.True(t, circuit.IsInvalidNode(result.Err))
	assert.Equal(t, 1, gen.Stats.InvalidFaults)
	assert.Equal(t, 0, gen.Stats.UndetectedFaults)

	rec := result.Record("Z")
	assert.Nil(t, rec.Pattern)
	assert.Equal(t, result.Err, rec.Err)
	assert.Equal(t, "INVALID", result.Status.String())
}

// TestFindTestCycle tests that a combinational loop is reported the same way
func TestFindTestCycle(t *testing.T) {
	gen := newGenerator(t, "Z = A & N\nN = ~Z\n")
	gen.Verify = true

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt1})
	require.NoError(t, err)
	assert.Equal(t, algorithm.Invalid, result.Status)
	assert.True(t, circuit.IsCycle(result.Err))
}

// TestFindTestParallelMatchesSequential tests that batching does not change the answer
func TestFindTestParallelMatchesSequential(t *testing.T) {
	src := "N=A&B\nP=~N\nQ=C|D\nR=N^Q\nZ=P&R\n"
	sequential := newGenerator(t, src)
	want, err := sequential.FindAllTests()
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8} {
		parallel := newGenerator(t, src)
		parallel.Workers = workers
		got, err := parallel.FindAllTests()
		require.NoError(t, err)
		require.Len(t, got, len(want))

		for i := range want {
			assert.Equal(t, want[i].Fault, got[i].Fault)
			assert.Equal(t, want[i].Status, got[i].Status, "%s with %d workers", want[i].Fault, workers)
			assert.Equal(t, want[i].Pattern.Index, got[i].Pattern.Index, "%s with %d workers", want[i].Fault, workers)
			assert.Equal(t, want[i].Examined, got[i].Examined)
		}
	}
}

// TestFindTestParallelInvalidNode tests error reporting from worker goroutines
func TestFindTestParallelInvalidNode(t *testing.T) {
	gen := newGenerator(t, "Z = A & Q\n")
	gen.Workers = 4

	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt0})
	require.NoError(t, err)
	assert.Equal(t, algorithm.Invalid, result.Status)
	assert.True(t, circuit.IsInvalidNode(result.Err))
}

// TestFindAllTestsContinuesPastInvalid tests that the sweep covers every fault of a broken netlist
func TestFindAllTestsContinuesPastInvalid(t *testing.T) {
	gen := newGenerator(t, "Z = A & Q\n")

	results, err := gen.FindAllTests()
	require.NoError(t, err)
	assert.Len(t, results, 10)
	for _, r := range results {
		assert.Equal(t, algorithm.Invalid, r.Status, r.Fault.String())
	}
	assert.Equal(t, 10, gen.Stats.InvalidFaults)
}

// TestFindAllTests tests the sweep over every fault site
func TestFindAllTests(t *testing.T) {
	gen := newGenerator(t, "Z = A & B\n")

	results, err := gen.FindAllTests()
	require.NoError(t, err)
	require.Len(t, results, 10)

	expected := map[circuit.Fault]int{
		{Node: "A", Type: circuit.StuckAt0}: 12,
		{Node: "A", Type: circuit.StuckAt1}: 4,
		{Node: "B", Type: circuit.StuckAt0}: 12,
		{Node: "B", Type: circuit.StuckAt1}: 8,
		{Node: "C", Type: circuit.StuckAt0}: -1,
		{Node: "C", Type: circuit.StuckAt1}: -1,
		{Node: "D", Type: circuit.StuckAt0}: -1,
		{Node: "D", Type: circuit.StuckAt1}: -1,
		{Node: "Z", Type: circuit.StuckAt0}: 12,
		{Node: "Z", Type: circuit.StuckAt1}: 0,
	}
	for _, r := range results {
		index, ok := expected[r.Fault]
		require.True(t, ok, "unexpected fault %s", r.Fault)
		if index < 0 {
			assert.Equal(t, algorithm.Untestable, r.Status, r.Fault.String())
		} else {
			assert.Equal(t, algorithm.Found, r.Status, r.Fault.String())
			assert.Equal(t, index, r.Pattern.Index, r.Fault.String())
		}
	}

	assert.Equal(t, 10, gen.Stats.FaultsTested)
	assert.Equal(t, 6, gen.Stats.TestsFound)
	assert.Equal(t, 4, gen.Stats.UndetectedFaults)
}

// TestFindTestVerify tests the SAT cross-check on testable and untestable faults
func TestFindTestVerify(t *testing.T) {
	gen := newGenerator(t, "N=A&B\nM=C^D\nZ=A|N\nY=M\n")
	gen.Verify = true

	_, err := gen.FindAllTests()
	require.NoError(t, err)
	assert.Greater(t, gen.Stats.TestsFound, 0)
	assert.Greater(t, gen.Stats.UndetectedFaults, 0)
}

// TestResultRecord tests conversion to an output record
func TestResultRecord(t *testing.T) {
	gen := newGenerator(t, "Z = A & B\n")
	result, err := gen.FindTest(circuit.Fault{Node: "A", Type: circuit.StuckAt0})
	require.NoError(t, err)

	rec := result.Record("Z")
	require.NotNil(t, rec.Pattern)
	assert.Equal(t, "A stuck-at-0", rec.Fault)
	assert.Equal(t, circuit.Zero, rec.Value)
	assert.Equal(t, 12, rec.Pattern.Index)
	assert.Equal(t, "FOUND", result.Status.String())
}
