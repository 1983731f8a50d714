package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/codescan/internal/reporter"
)

func newScanCmd() *cobra.Command {
	var flags scanFlags

	cmd := &cobra.Command{
		Use:   "scan [dir]",
		Short: "Review every matching source file under a directory",
		Long: `Walk dir, send each file with an allowed extension to the configured
chat-completion model, and write all answers to one report. Files that cannot
be read or analyzed get an error entry; the scan always covers every file.
Without dir, the directory is read from stdin.`,
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

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			out := cmd.OutOrStdout()
			textRep := reporter.NewTextReporter(out, isTerminal())
			if job.display == displayPlain {
				textRep.PrintHeader(job.root, job.client.ModelName())
			}

			report, err := job.execute(ctx, out, cancel)
			if err != nil {
				return err
			}
			textRep.PrintSummary(report, job.output)
			return nil
		},
	}

	flags.bind(cmd)
	return cmd
}
