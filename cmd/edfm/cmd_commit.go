package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edfm/edfm/internal/logger"
	"github.com/edfm/edfm/internal/ratelimiter"
	"github.com/edfm/edfm/pkg/config"
	"github.com/edfm/edfm/pkg/diff"
	"github.com/edfm/edfm/pkg/executor"
	"github.com/edfm/edfm/pkg/history"
	"github.com/edfm/edfm/pkg/listing"
	"github.com/edfm/edfm/pkg/metrics"
	"github.com/edfm/edfm/pkg/plan"
	"github.com/edfm/edfm/pkg/retry"
)

func newCommitCmd(configPath *string) *cobra.Command {
	var profileName string
	var sourceDir string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "commit <original.yaml> <edited.yaml>",
		Short: "Execute the plan between two snapshots against a profile",
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
			if dryRun {
				for _, op := range p.Operations {
					fmt.Fprintln(out, op.String())
				}
				fmt.Fprintf(out, "\ndry run: %d operations not executed\n", p.Summary.Total)
				return nil
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Metrics.Enabled {
				metrics.InitRegistry()
			}

			// Interrupts cancel the context; the executor resolves the
			// remaining operations to cancelled records and the report is
			// still written.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			reg, err := config.InitializeRegistry(ctx, cfg)
			if err != nil {
				return err
			}

			profile, err := reg.GetProfile(profileName)
			if err != nil {
				return err
			}
			if profile.ReadOnly {
				return fmt.Errorf("profile %s is read-only; commit refused", profileName)
			}

			b, err := reg.BackendForProfile(profileName)
			if err != nil {
				return err
			}

			opts := executor.Options{
				Concurrency: cfg.Execution.Concurrency,
				Retry: retry.Policy{
					MaxAttempts: cfg.Execution.MaxAttempts,
					BaseDelay:   cfg.Execution.RetryBaseDelay,
					Multiplier:  2.0,
					MaxDelay:    cfg.Execution.RetryMaxDelay,
				},
				Metrics:         metrics.NewExecutorMetrics(),
				UploadThreshold: cfg.Execution.UploadThreshold,
				UploadPartSize:  cfg.Execution.UploadPartSize,
				DeleteBatchSize: cfg.Execution.DeleteBatchSize,
				Progress: func(target string, completed, total int) {
					fmt.Fprintf(out, "[%d/%d] %s\n", completed, total, target)
				},
			}
			if profile.Concurrency > 0 {
				opts.Concurrency = profile.Concurrency
			}
			if profile.RequestsPerSecond > 0 {
				opts.RateLimit = ratelimiter.New(profile.RequestsPerSecond, profile.RequestsPerSecond)
			}
			if sourceDir != "" {
				opts.Source = dirContentSource(sourceDir)
			}

			report := executor.New(b, opts).Execute(ctx, p)

			fmt.Fprintf(out, "\n%s\n", report.Summary())
			for _, rec := range report.Failures() {
				fmt.Fprintf(out, "  failed: %s: %s", rec.Operation.String(), rec.Result.Status)
				if rec.Note != "" {
					fmt.Fprintf(out, " (%s)", rec.Note)
				}
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "report %s\n", report.ID)

			if err := saveReport(cfg, report); err != nil {
				logger.Warn("failed to persist report %s: %v", report.ID, err)
			}

			if !report.Complete() {
				return fmt.Errorf("commit finished with failures")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Profile to execute against (required)")
	cmd.Flags().StringVar(&sourceDir, "source-dir", "", "Local directory supplying content for created files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the plan without executing it")
	_ = cmd.MarkFlagRequired("profile")
	return cmd
}

// dirContentSource reads created-file payloads from a local directory,
// mirroring the entry path under it.
func dirContentSource(dir string) executor.ContentSource {
	return func(ctx context.Context, e listing.Entry) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		local := filepath.Join(dir, filepath.FromSlash(e.Path))
		data, err := os.ReadFile(local)
		if err != nil {
			return nil, fmt.Errorf("no content for %s: %w", e.Path, err)
		}
		return data, nil
	}
}

func saveReport(cfg *config.Config, report *executor.Report) error {
	journal, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer journal.Close()

	if err := journal.Save(report); err != nil {
		return err
	}
	if cfg.History.Keep > 0 {
		if _, err := journal.Prune(cfg.History.Keep); err != nil {
			return err
		}
	}
	return nil
}
