package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ojaswichopra/GGH/pkg/circuit"
	"github.com/ojaswichopra/GGH/pkg/utils"
)

var (
	cfgFile string
	verbose bool
	logFile string

	cfg    utils.Config
	logger *utils.Logger
)

// overrides holds flag values that take precedence over the config file
type overrides struct {
	netlist    string
	outputFile string
	outputNode string
	inputs     string
	workers    int
	verify     bool
}

func (o *overrides) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.netlist, "circuit", "", "Netlist file of node=expression records")
	cmd.Flags().StringVar(&o.outputFile, "output", "", "Output file for the result")
	cmd.Flags().StringVar(&o.outputNode, "node", "", "Output node to observe")
	cmd.Flags().StringVar(&o.inputs, "inputs", "", "Comma-separated primary input names, first is most significant")
	cmd.Flags().IntVar(&o.workers, "workers", 0, "Evaluate patterns with this many goroutines")
	cmd.Flags().BoolVar(&o.verify, "verify", false, "Cross-check the verdict with a SAT solver")
}

func (o *overrides) apply(c *utils.Config) error {
	if o.netlist != "" {
		c.Netlist = o.netlist
	}
	if o.outputFile != "" {
		c.OutputFile = o.outputFile
	}
	if o.outputNode != "" {
		c.OutputNode = o.outputNode
	}
	if o.inputs != "" {
		c.Inputs = strings.Split(o.inputs, ",")
	}
	if o.workers > 0 {
		c.Workers = o.workers
	}
	if o.verify {
		c.Verify = true
	}
	return c.Validate()
}

var rootCmd = &cobra.Command{
	Use:   "atpg",
	Short: "atpg - exhaustive single stuck-at fault test pattern generation",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Configure logger
		logLevel := utils.InfoLevel
		if verbose {
			logLevel = utils.DebugLevel
		}
		if logFile != "" {
			l, err := utils.NewFileLogger(logLevel, logFile)
			if err != nil {
				return errors.Wrap(err, "error creating log file")
			}
			logger = l
		} else {
			logger = utils.NewLogger(logLevel)
			logger.SetOutput(cmd.ErrOrStderr())
		}

		if cmd.Name() == "init" {
			return nil
		}
		c, err := utils.LoadConfig(cfgFile, !cmd.Flags().Changed("config"))
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", utils.DefaultConfigFile, "Configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&logFile, "log", "", "Log file (default: stderr)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(faultsCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(initCmd)
}

// loadCircuit reads the configured netlist. An unreadable file is reported
// and the run continues with an empty netlist.
func loadCircuit() (*circuit.Netlist, *circuit.InputSet, error) {
	inputs, err := cfg.InputSet()
	if err != nil {
		return nil, nil, err
	}

	logger.Info("Parsing circuit from %s", cfg.Netlist)
	n, err := utils.LoadNetlist(cfg.Netlist, logger)
	if err != nil {
		logger.Error("%v", err)
	}
	return n, inputs, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
