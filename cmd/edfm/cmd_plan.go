package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/edfm/edfm/pkg/diff"
	"github.com/edfm/edfm/pkg/plan"
)

func newPlanCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "plan <original.yaml> <edited.yaml>",
		Short: "Diff two snapshots and print the ordered operation plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			original, err := loadSnapshot(args[0])
			if err != nil {
				return err
			}
			edited, err := loadSnapshot(args[1])
			if err != nil {
				return err
			}

			p := plan.Build(original, diff.Detect(original, edited))
			out := cmd.OutOrStdout()

			if p.Empty() {
				fmt.Fprintln(out, "no changes")
				return nil
			}

			switch format {
			case "yaml":
				data, err := yaml.Marshal(p)
				if err != nil {
					return err
				}
				fmt.Fprint(out, string(data))
			case "json":
				data, err := json.MarshalIndent(p, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "text":
				for _, op := range p.Operations {
					fmt.Fprintln(out, op.String())
				}
				fmt.Fprintf(out, "\n%d creates, %d copies, %d moves, %d deletes (%d total)\n",
					p.Summary.Creates, p.Summary.Copies, p.Summary.Moves, p.Summary.Deletes, p.Summary.Total)
			default:
				return fmt.Errorf("unknown format %q (want text, yaml or json)", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text, yaml or json")
	return cmd
}
