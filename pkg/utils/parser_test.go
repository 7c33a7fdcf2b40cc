package utils_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ojaswichopra/GGH/pkg/circuit"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

// TestLoadNetlist tests reading a netlist file
func TestLoadNetlist(t *testing.T) {
	tempDir := t.TempDir()
	netlistFile := filepath.Join(tempDir, "input.txt")

	content := `N1 = A & B
garbage
Z = N1 | C
`
	require.NoError(t, os.WriteFile(netlistFile, []byte(content), 0644))

	n, err := utils.LoadNetlist(netlistFile, utils.NewNopLogger())
	require.NoError(t, err)

	assert.Equal(t, "input", n.Name)
	assert.Equal(t, []string{"N1", "Z"}, n.Nodes())
}

// TestLoadNetlistMissingFile tests that a missing file yields an empty netlist
func TestLoadNetlistMissingFile(t *testing.T) {
	n, err := utils.LoadNetlist(filepath.Join(t.TempDir(), "nope.txt"), utils.NewNopLogger())
	require.Error(t, err)
	require.NotNil(t, n)
	assert.Zero(t, n.Len())
	assert.Contains(t, err.Error(), "failed to open circuit file")
}

// TestReadNetlistReportsBadExpressions tests the diagnostics for skipped records
func TestReadNetlistReportsBadExpressions(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger(utils.InfoLevel)
	logger.SetShowTime(false)
	logger.SetOutput(&buf)

	n, err := utils.ReadNetlist("r", strings.NewReader("Z=A&\nno separator\nY=B\n"), logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Len())

	out := buf.String()
	assert.Contains(t, out, "line 1")
	assert.NotContains(t, out, "line 2", "records without a separator are dropped silently")
}

// TestReadNetlistReportsRedefinition tests the debug diagnostic for a node defined twice
func TestReadNetlistReportsRedefinition(t *testing.T) {
	var buf bytes.Buffer
	logger := utils.NewLogger(utils.DebugLevel)
	logger.SetShowTime(false)
	logger.SetOutput(&buf)

	n, err := utils.ReadNetlist("r", strings.NewReader("Z=A&B\nZ=A|B\n"), logger)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Len())
	assert.Contains(t, buf.String(), "DEBUG line 1: Z redefined on line 2")
}

// TestFormatResult tests both result forms
func TestFormatResult(t *testing.T) {
	pattern := circuit.DefaultInputs().Decode(12)

	var buf bytes.Buffer
	require.NoError(t, utils.FormatResult(&buf, utils.TestRecord{Pattern: &pattern, Output: "Z", Value: circuit.Zero}))
	assert.Equal(t, "[A,B,C,D] = [ 1 1 0 0 ], Z = 0\n", buf.String())

	buf.Reset()
	require.NoError(t, utils.FormatResult(&buf, utils.TestRecord{Output: "Z"}))
	assert.Equal(t, utils.UntestableNotice+"\n", buf.String())

	buf.Reset()
	invalid := errors.Wrap(&circuit.InvalidNodeError{Node: "Q"}, "Z")
	require.NoError(t, utils.FormatResult(&buf, utils.TestRecord{Output: "Z", Err: invalid}))
	assert.Equal(t, utils.InvalidNotice+": Z: invalid node: Q\n", buf.String())
}

// TestWriteResult tests writing results to disk
func TestWriteResult(t *testing.T) {
	tempDir := t.TempDir()
	outputFile := filepath.Join(tempDir, "output.txt")
	pattern := circuit.DefaultInputs().Decode(8)

	require.NoError(t, utils.WriteResult(outputFile, utils.TestRecord{Pattern: &pattern, Output: "Z", Value: circuit.One}))
	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.Equal(t, "[A,B,C,D] = [ 1 0 0 0 ], Z = 1\n", string(data))

	err = utils.WriteResult(filepath.Join(tempDir, "missing", "output.txt"), utils.TestRecord{})
	assert.Error(t, err)
}

// TestWriteTestVectors tests the multi-fault output file
func TestWriteTestVectors(t *testing.T) {
	outputFile := filepath.Join(t.TempDir(), "tests.txt")
	pattern := circuit.DefaultInputs().Decode(4)

	records := []utils.TestRecord{
		{Fault: "A stuck-at-1", Pattern: &pattern, Output: "Z", Value: circuit.One},
		{Fault: "C stuck-at-0", Output: "Z"},
	}
	require.NoError(t, utils.WriteTestVectors(outputFile, records))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	expected := "# Test vectors for 2 faults\n" +
		"# A stuck-at-1\n[A,B,C,D] = [ 0 1 0 0 ], Z = 1\n" +
		"# C stuck-at-0\n" + utils.UntestableNotice + "\n"
	assert.Equal(t, expected, string(data))
}
