package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/codescan/internal/reporter"
	"github.com/ppiankov/codescan/internal/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		flags    scanFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Scan a directory and rescan whenever source files change",
		Long: `Run a full scan of dir, then watch the tree and run a new full scan once
changes to files with an allowed extension settle. The report is rewritten
after every scan. Stops on Ctrl+C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := scanRoot(cmd, args)
			if err != nil {
				return err
			}
			job, err := prepareScan(cmd, root, &flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") && job.watch != nil && job.watch.Debounce > 0 {
				debounce = job.watch.Debounce
			}
			// repeated alternate-screen sessions are unreadable; watch mode prints lines
			if job.display == displayFull {
				job.display = displayPlain
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			textRep := reporter.NewTextReporter(out, isTerminal())
			rescan := func(ctx context.Context) {
				if job.display != displayOff {
					textRep.PrintHeader(job.root, job.client.ModelName())
				}
				report, err := job.execute(ctx, out, cancel)
				if err != nil {
					slog.Error("scan failed", "root", job.root, "error", err)
					return
				}
				textRep.PrintSummary(report, job.output)
			}

			w, err := watch.New(watch.Config{
				Root:        job.root,
				Extensions:  job.exts,
				Ignore:      job.ignore,
				Skip:        []string{job.output, job.history},
				Debounce:    debounce,
				OnChange:    rescan,
				InitialScan: true,
			})
			if err != nil {
				return err
			}

			return w.Run(ctx)
		},
	}

	flags.bind(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before rescanning")
	return cmd
}
