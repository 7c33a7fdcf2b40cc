package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ojaswichopra/GGH/pkg/utils"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return errors.Errorf("config file %s already exists", cfgFile)
		}
		if err := utils.WriteConfig(cfgFile, utils.DefaultConfig()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Config created at %s\n", cfgFile)
		return nil
	},
}
