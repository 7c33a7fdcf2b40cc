package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ojaswichopra/GGH/pkg/circuit"
)

var infoFlags overrides

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the structure of the netlist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := infoFlags.apply(&cfg); err != nil {
			return err
		}

		n, inputs, err := loadCircuit()
		if err != nil {
			return err
		}

		topo := circuit.NewTopology(n, inputs)
		if err := topo.Analyze(cfg.OutputNode); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Circuit: %s\n", n.Name)
		fmt.Fprintf(out, "Nodes: %d\n", n.Len())
		fmt.Fprintf(out, "Primary inputs: %s\n", strings.Join(inputs.Names(), ","))
		fmt.Fprintf(out, "Output: %s (level %d)\n", cfg.OutputNode, topo.LevelMap[cfg.OutputNode])
		fmt.Fprintf(out, "Max level: %d\n", topo.MaxLevel)
		fmt.Fprintf(out, "Fanout points: %s\n", strings.Join(topo.FanoutPoints, ","))
		fmt.Fprintf(out, "Output cone: %s\n", strings.Join(topo.ConeNodes(), ","))
		if len(topo.Undefined) > 0 {
			fmt.Fprintf(out, "Undefined references: %s\n", strings.Join(topo.Undefined, ","))
		}
		fmt.Fprint(out, n.String())
		return nil
	},
}

func init() {
	infoFlags.register(infoCmd)
}
