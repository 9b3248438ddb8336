package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/edfm/edfm/pkg/config"
	"github.com/edfm/edfm/pkg/history"
)

func newHistoryCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect stored execution reports",
	}

	cmd.AddCommand(newHistoryListCmd(configPath))
	cmd.AddCommand(newHistoryShowCmd(configPath))
	return cmd
}

func openJournal(configPath *string) (*history.Journal, error) {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return nil, err
	}
	return history.Open(cfg.History.Path)
}

func newHistoryListCmd(configPath *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored reports, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(configPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			summaries, err := journal.List(limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(summaries) == 0 {
				fmt.Fprintln(out, "no reports")
				return nil
			}

			for _, s := range summaries {
				fmt.Fprintf(out, "%s  %s  %-12s  %d ops (%d failed)\n",
					s.StartedAt.Local().Format("2006-01-02 15:04:05"),
					s.ID, s.Backend, s.Total, s.Tally.Failed)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum reports to list (0 for all)")
	return cmd
}

func newHistoryShowCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <report-id>",
		Short: "Print one report in full",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := openJournal(configPath)
			if err != nil {
				return err
			}
			defer journal.Close()

			report, err := journal.Get(args[0])
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
