// Package cmd wires the CLI commands.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fmuweb",
	Short: "Web front-end for running FMU simulations",
	Long:  "fmuweb serves a small web UI and API for uploading FMU model packages, configuring runs, and retrieving results from an external simulation engine.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}
