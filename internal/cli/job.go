package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/ppiankov/codescan/internal/config"
	"github.com/ppiankov/codescan/internal/history"
	"github.com/ppiankov/codescan/internal/ignore"
	"github.com/ppiankov/codescan/internal/llm"
	"github.com/ppiankov/codescan/internal/reporter"
	"github.com/ppiankov/codescan/internal/scan"
)

// Display modes for --tui.
const (
	displayAuto  = "auto"
	displayFull  = "full"
	displayPlain = "plain"
	displayOff   = "off"
)

var displayModes = []string{displayAuto, displayFull, displayPlain, displayOff}

// scanFlags are shared by the scan and watch commands.
type scanFlags struct {
	output      string
	format      string
	extensions  []string
	exclude     []string
	provider    string
	model       string
	temperature float64
	maxTokens   int
	history     string
	tuiMode     string
}

func (f *scanFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "report path (default codescan_report.<format ext>)")
	cmd.Flags().StringVar(&f.format, "format", "text", "report format: text, json, sarif")
	cmd.Flags().StringSliceVar(&f.extensions, "ext", nil, "file extensions to scan (default .py,.js,.ts,.java,.cpp,.c,.cs)")
	cmd.Flags().StringSliceVar(&f.exclude, "exclude", nil, "gitignore-style patterns to skip")
	cmd.Flags().StringVar(&f.provider, "provider", "openai", "model provider: openai, azure")
	cmd.Flags().StringVar(&f.model, "model", "", "model name (openai)")
	cmd.Flags().Float64Var(&f.temperature, "temperature", 0.2, "sampling temperature")
	cmd.Flags().IntVar(&f.maxTokens, "max-tokens", 0, "max completion tokens (0 = provider default)")
	cmd.Flags().StringVar(&f.history, "history", "", "record runs in this SQLite database")
	cmd.Flags().StringVar(&f.tuiMode, "tui", displayAuto, "progress display: auto, full, plain, off")
}

// apply overrides settings with explicitly set flags.
func (f *scanFlags) apply(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("output") {
		s.Output = f.output
	}
	if flags.Changed("format") || s.Format == "" {
		s.Format = f.format
	}
	if flags.Changed("ext") {
		s.Extensions = f.extensions
	}
	if flags.Changed("exclude") {
		s.Exclude = append(s.Exclude, f.exclude...)
	}
	if flags.Changed("provider") {
		s.Provider = f.provider
	}
	if flags.Changed("model") {
		s.Model = f.model
	}
	if flags.Changed("temperature") {
		t := f.temperature
		s.Temperature = &t
	}
	if flags.Changed("max-tokens") {
		s.MaxTokens = f.maxTokens
	}
	if flags.Changed("history") {
		s.History = f.history
	}
}

// scanJob is a fully validated scan configuration.
type scanJob struct {
	root    string
	output  string
	format  reporter.Format
	history string
	display string
	exts    []string
	ignore  ignore.Matcher
	client  *llm.Client
	watch   *config.WatchConfig
}

// scanRoot returns the directory argument, or asks for one on stdin when
// none was given.
func scanRoot(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	fmt.Fprint(cmd.OutOrStdout(), "Enter the directory to scan: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read directory: %w", err)
	}
	root := strings.TrimSpace(line)
	if root == "" {
		return "", fmt.Errorf("no directory given")
	}
	return root, nil
}

// prepareScan loads settings, applies flags and validates everything needed
// for a run. Nothing under root is read before configuration is valid.
func prepareScan(cmd *cobra.Command, root string, f *scanFlags) (*scanJob, error) {
	settings, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	f.apply(cmd, settings)

	format, err := reporter.ParseFormat(settings.Format)
	if err != nil {
		return nil, &config.ValidationError{Field: "format", Reason: fmt.Sprintf("must be text, json, or sarif, got %q", settings.Format)}
	}
	display := strings.ToLower(f.tuiMode)
	if !slices.Contains(displayModes, display) {
		return nil, &config.ValidationError{Field: "tui", Reason: fmt.Sprintf("must be one of %s, got %q", strings.Join(displayModes, ", "), f.tuiMode)}
	}

	llmCfg, err := config.Resolve(settings, getenv)
	if err != nil {
		return nil, err
	}
	client, err := llm.New(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create model client: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	ign, err := ignore.Load(root, settings.Exclude)
	if err != nil {
		return nil, err
	}

	output := settings.Output
	if output == "" {
		output = reporter.DefaultOutput(format)
	}

	if display == displayAuto {
		display = displayPlain
		if isTerminal() {
			display = displayFull
		}
	}

	slog.Debug("scan configured",
		"root", root,
		"provider", llmCfg.Provider,
		"model", client.ModelName(),
		"output", output,
		"format", format,
		"exclude_patterns", ign.Len(),
	)

	return &scanJob{
		root:    root,
		output:  output,
		format:  format,
		history: settings.History,
		display: display,
		exts:    settings.AllowedExtensions(),
		ignore:  ign,
		client:  client,
		watch:   settings.Watch,
	}, nil
}

// execute runs one scan, writes the report and records history.
// Per-file failures are part of the report, not errors.
func (j *scanJob) execute(ctx context.Context, out io.Writer, cancel context.CancelFunc) (*scan.Report, error) {
	opts := scan.Options{
		Extensions: j.exts,
		Ignore:     j.ignore,
		Model:      j.client.ModelName(),
	}

	var program *tea.Program
	tuiDone := make(chan struct{})
	switch j.display {
	case displayFull:
		model := reporter.NewTUIModel(j.root, j.client.ModelName(), cancel)
		program = tea.NewProgram(model, tea.WithAltScreen())
		go func() {
			defer close(tuiDone)
			if _, err := program.Run(); err != nil {
				slog.Warn("TUI error", "error", err)
			}
		}()
		opts.OnEvent = func(ev scan.Event) { program.Send(reporter.EventMsg(ev)) }
	case displayPlain:
		opts.OnEvent = reporter.NewProgress(out, isTerminal()).Event
	default:
		// off: no progress display
	}

	report, err := scan.NewRunner(j.client, opts).Run(ctx, j.root)

	if program != nil {
		program.Send(reporter.DoneMsg{})
		<-tuiDone
	}
	if err != nil {
		return nil, err
	}

	if err := reporter.WriteReport(report, j.output, j.format); err != nil {
		return nil, err
	}

	if j.history != "" {
		recordHistory(context.WithoutCancel(ctx), j.history, report, j.output)
	}
	return report, nil
}

// recordHistory stores the run; failures are logged and never fail the scan.
func recordHistory(ctx context.Context, path string, report *scan.Report, output string) {
	store, err := history.Open(path)
	if err != nil {
		slog.Warn("failed to open history", "path", path, "error", err)
		return
	}
	defer func() { _ = store.Close() }()

	id, err := store.Record(ctx, report, output)
	if err != nil {
		slog.Warn("failed to record history", "path", path, "error", err)
		return
	}
	slog.Debug("run recorded", "id", id, "history", path)
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
