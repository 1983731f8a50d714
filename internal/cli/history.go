package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/codescan/internal/config"
	"github.com/ppiankov/codescan/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var (
		dbPath string
		limit  int
		runID  int64
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan runs",
		Long:  "Show runs recorded with --history, newest first. Use --run to list the files of one run.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(configFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("history") && settings.History != "" {
				dbPath = settings.History
			}
			if dbPath == "" {
				return &config.ValidationError{Field: "history", Reason: "is not set (use --history or history in the config file)"}
			}

			store, err := history.Open(dbPath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			if runID > 0 {
				files, err := store.Files(ctx, runID)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					fmt.Fprintf(out, "No files recorded for run %d.\n", runID)
					return nil
				}
				for _, f := range files {
					line := fmt.Sprintf("  %-11s %s", f.Status, f.Path)
					if f.Error != "" {
						line += "  " + f.Error
					}
					fmt.Fprintln(out, line)
				}
				return nil
			}

			runs, err := store.List(ctx, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded.")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(out, "%4d  %s  %-8s  files=%-4d failed=%-4d  %s  %s -> %s\n",
					r.ID,
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Duration.Truncate(time.Second),
					r.Files, r.Failed,
					r.Model, r.Root, r.Output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "history", "", "history database path")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show (0 = all)")
	cmd.Flags().Int64Var(&runID, "run", 0, "show the files of this run")
	return cmd
}
