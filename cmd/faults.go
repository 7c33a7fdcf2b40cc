package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ojaswichopra/GGH/pkg/algorithm"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

var faultsFlags overrides

var faultsCmd = &cobra.Command{
	Use:   "faults",
	Short: "Find test patterns for every stuck-at fault in the netlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := faultsFlags.apply(&cfg); err != nil {
			return err
		}

		n, inputs, err := loadCircuit()
		if err != nil {
			return err
		}

		gen := algorithm.NewGenerator(n, inputs, cfg.OutputNode, logger)
		gen.Workers = cfg.Workers
		gen.Verify = cfg.Verify

		results, err := gen.FindAllTests()
		if err != nil {
			return err
		}

		records := make([]utils.TestRecord, 0, len(results))
		for _, r := range results {
			records = append(records, r.Record(cfg.OutputNode))
		}

		logger.Info("Writing %d test vectors to %s", len(records), cfg.OutputFile)
		if err := utils.WriteTestVectors(cfg.OutputFile, records); err != nil {
			logger.Error("%v", err)
		}

		out := cmd.OutOrStdout()
		for _, r := range results {
			printResult(out, r, cfg.OutputNode)
		}
		fmt.Fprintf(out, "%d faults, %d testable, %d untestable",
			gen.Stats.FaultsTested, gen.Stats.TestsFound, gen.Stats.UndetectedFaults)
		if gen.Stats.InvalidFaults > 0 {
			fmt.Fprintf(out, ", %d invalid", gen.Stats.InvalidFaults)
		}
		fmt.Fprintln(out)
		return nil
	},
}

func init() {
	faultsFlags.register(faultsCmd)
}
