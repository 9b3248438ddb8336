// Command edfm reconciles an edited directory listing against its
// original snapshot and executes the resulting plan on a configured
// storage backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/edfm/edfm/internal/logger"
	"github.com/edfm/edfm/pkg/config"
)

func main() {
	var configPath string
	var logLevel string

	root := &cobra.Command{
		Use:   "edfm",
		Short: "Snapshot reconciliation for storage backends",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetLevel(logLevel)
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default "+config.DefaultConfigPath()+")")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(newPlanCmd())
	root.AddCommand(newCommitCmd(&configPath))
	root.AddCommand(newHistoryCmd(&configPath))
	root.AddCommand(newVersionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "edfm 0.1.0-dev")
		},
	}
}
