package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/ojaswichopra/GGH/pkg/circuit"
)

// UntestableNotice is written in place of a pattern when no pattern detects the fault
const UntestableNotice = "Given fault is ATPG untestable fault"

// InvalidNotice is written when the output could not be evaluated at all
const InvalidNotice = "Given fault could not be evaluated"

// LoadNetlist reads a netlist file. If the file cannot be opened the
// returned netlist is empty and the error describes why; callers may go on
// with the empty netlist.
func LoadNetlist(filename string, logger *Logger) (*circuit.Netlist, error) {
	name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	file, err := os.Open(filename)
	if err != nil {
		return circuit.NewNetlist(name), errors.Wrapf(err, "failed to open circuit file %s", filename)
	}
	defer file.Close()

	return ReadNetlist(name, file, logger)
}

// ReadNetlist parses a netlist from r and reports skipped records through logger
func ReadNetlist(name string, r io.Reader, logger *Logger) (*circuit.Netlist, error) {
	n, skipped, err := circuit.Parse(name, r)
	if err != nil {
		return circuit.NewNetlist(name), err
	}

	for _, s := range skipped {
		if s.Malformed {
			logger.Trace("line %d: no separator, skipped: %s", s.Line, s.Text)
			continue
		}
		if s.Replaced > 0 {
			logger.Debug("line %d: %s redefined on line %d, earlier record dropped", s.Line, s.Node, s.Replaced)
			continue
		}
		logger.Warning("line %d: %v, skipped", s.Line, s.Err)
	}
	logger.Circuit("loaded %d nodes from %s", n.Len(), name)
	return n, nil
}

// TestRecord is one line of generator output. A nil Pattern means the
// fault is untestable, unless Err says the netlist could not be evaluated.
type TestRecord struct {
	Fault   string
	Pattern *circuit.Assignment
	Output  string
	Value   circuit.LogicValue // Faulty circuit output under Pattern
	Err     error
}

// FormatResult writes rec in the "[A,B,C,D] = [ 1 1 0 0 ], Z = 0" form
func FormatResult(w io.Writer, rec TestRecord) error {
	var err error
	switch {
	case rec.Err != nil:
		_, err = fmt.Fprintf(w, "%s: %v\n", InvalidNotice, rec.Err)
	case rec.Pattern == nil:
		_, err = fmt.Fprintln(w, UntestableNotice)
	default:
		_, err = fmt.Fprintf(w, "%s, %s = %v\n", rec.Pattern, rec.Output, rec.Value)
	}
	return err
}

// WriteResult writes a single result to a file
func WriteResult(filename string, rec TestRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to open output file %s", filename)
	}
	defer file.Close()

	if err := FormatResult(file, rec); err != nil {
		return errors.Wrap(err, "failed to write result")
	}
	return nil
}

// WriteTestVectors writes one result per fault, each preceded by a comment
// naming the fault
func WriteTestVectors(filename string, records []TestRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to create file %s", filename)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	fmt.Fprintf(writer, "# Test vectors for %d faults\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(writer, "# %s\n", rec.Fault)
		if err := FormatResult(writer, rec); err != nil {
			return errors.Wrap(err, "failed to write test vector")
		}
	}
	return errors.Wrap(writer.Flush(), "failed to flush test vectors")
}
