package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ojaswichopra/GGH/pkg/algorithm"
	"github.com/ojaswichopra/GGH/pkg/circuit"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

var (
	foundStyle      = color.New(color.FgGreen, color.Bold)
	untestableStyle = color.New(color.FgHiYellow, color.Bold)
	invalidStyle    = color.New(color.FgRed, color.Bold)
	faultStyle      = color.New(color.FgCyan, color.Bold)
)

var generateFlags overrides

var (
	faultStr  string
	faultSite string
	faultType string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Find a test pattern for one stuck-at fault",
	Long: `Find the lowest-numbered input pattern for which the faulty circuit's
output differs from the fault-free circuit. The fault is taken from --fault
(node/SA0) or --site and --type; whatever is missing is asked for on stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := generateFlags.apply(&cfg); err != nil {
			return err
		}

		fault, err := readFault(cmd.InOrStdin(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		return runGenerate(cmd.OutOrStdout(), fault)
	},
}

func init() {
	generateFlags.register(generateCmd)
	generateCmd.Flags().StringVar(&faultStr, "fault", "", "Fault to test (e.g., 'A/SA0' or 'A/0')")
	generateCmd.Flags().StringVar(&faultSite, "site", "", "Fault node location")
	generateCmd.Flags().StringVar(&faultType, "type", "", "Fault type (SA0/SA1)")
}

// readFault collects the fault from flags, prompting for missing parts.
// An unrecognized fault type is reported and yields a fault that changes
// nothing.
func readFault(in io.Reader, out io.Writer) (circuit.Fault, error) {
	if faultStr != "" {
		f, err := circuit.ParseFault(faultStr)
		if errors.Is(err, circuit.ErrInvalidFaultType) {
			logger.Warning("%v", err)
		} else if err != nil {
			return circuit.Fault{}, err
		}
		return f, nil
	}

	site, token := faultSite, faultType
	reader := bufio.NewReader(in)
	if strings.TrimSpace(site) == "" {
		fmt.Fprint(out, "Enter Fault Node Location: ")
		site = readToken(reader)
	}
	if strings.TrimSpace(token) == "" {
		fmt.Fprint(out, "Enter FaultType (SA0/SA1): ")
		token = readToken(reader)
	}

	site = strings.TrimSpace(site)
	if site == "" {
		return circuit.Fault{}, errors.New("fault node location is required")
	}

	ft, err := circuit.ParseFaultType(token)
	if err != nil {
		logger.Warning("%v", err)
	}
	return circuit.Fault{Node: site, Type: ft}, nil
}

func readToken(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func runGenerate(out io.Writer, fault circuit.Fault) error {
	n, inputs, err := loadCircuit()
	if err != nil {
		return err
	}

	gen := algorithm.NewGenerator(n, inputs, cfg.OutputNode, logger)
	gen.Workers = cfg.Workers
	gen.Verify = cfg.Verify

	result, err := gen.FindTest(fault)
	if err != nil {
		return err
	}
	if result.Status == algorithm.Invalid {
		logger.Error("Netlist %s cannot drive %s", cfg.Netlist, cfg.OutputNode)
	}

	logger.Info("Writing result to %s", cfg.OutputFile)
	if err := utils.WriteResult(cfg.OutputFile, result.Record(cfg.OutputNode)); err != nil {
		logger.Error("%v", err)
	}

	printResult(out, result, cfg.OutputNode)
	return nil
}

func printResult(out io.Writer, result *algorithm.Result, output string) {
	faultStyle.Fprintf(out, "%s: ", result.Fault)
	switch result.Status {
	case algorithm.Found:
		foundStyle.Fprintf(out, "detected by %s, %s = %v (fault-free %v)\n",
			result.Pattern, output, result.Faulty, result.Golden)
	case algorithm.Invalid:
		invalidStyle.Fprintf(out, "cannot be evaluated: %v\n", result.Err)
	default:
		untestableStyle.Fprintf(out, "untestable after %d patterns\n", result.Examined)
	}
}
