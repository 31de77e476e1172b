package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/perini/anexos-downloader/internal/config"
	"github.com/perini/anexos-downloader/internal/pipeline"
	"github.com/spf13/cobra"
)

// options holds the command line flags.
type options struct {
	configPath     string
	saveConfigPath string
	verbose        bool
	dryRun         bool

	pageURL       string
	baseOrigin    string
	downloadDir   string
	archivePath   string
	reportPath    string
	concurrency   int
	retries       int
	timeout       float64
	retryCooldown float64
	markers       []string
	extensions    []string
	ignoreCase    bool
	dedupe        bool
	removePartial bool
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		err = errors.Join(err, ctx.Err())
	}
	code := exitCode(err)
	if err != nil && code == 1 {
		newLogger(stderr, false).Error("run failed", "err", err)
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "anexos-dl",
		Short:         "Download the annex documents of a page and bundle them into a ZIP archive",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), settings, opts, stdout, stderr)
		},
	}

	bindFlags(cmd, opts)
	return cmd
}

// bindFlags registers the command line flags on cmd, defaulting to the
// built-in settings.
func bindFlags(cmd *cobra.Command, opts *options) {
	defaults := config.DefaultSettings()
	f := cmd.Flags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a JSON or YAML config file")
	f.StringVar(&opts.saveConfigPath, "save-config", "", "write the effective settings to this file before running")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "show verbose output")
	f.BoolVar(&opts.dryRun, "dry-run", false, "list the matching links without downloading")

	f.StringVar(&opts.pageURL, "page", defaults.PageURL, "page to search for annexes")
	f.StringVar(&opts.baseOrigin, "origin", defaults.BaseOrigin, "origin prefixed to relative links (empty: derive from --page)")
	f.StringVarP(&opts.downloadDir, "dest", "o", defaults.DownloadDir, "download directory")
	f.StringVar(&opts.archivePath, "archive", defaults.ArchivePath, "ZIP archive path")
	f.StringVar(&opts.reportPath, "report", defaults.ReportPath, "write a JSON run report to this path")
	f.IntVarP(&opts.concurrency, "concurrency", "j", defaults.Concurrency, "number of parallel downloads")
	f.IntVar(&opts.retries, "retries", defaults.MaxRetries, "attempts per file")
	f.Float64Var(&opts.timeout, "timeout", defaults.Timeout, "timeout per request in seconds")
	f.Float64Var(&opts.retryCooldown, "retry-cooldown", defaults.RetryCooldown, "seconds to wait before retrying (grows exponentially)")
	f.StringSliceVar(&opts.markers, "marker", defaults.Markers, "name marker a link must contain (repeatable)")
	f.StringSliceVar(&opts.extensions, "ext", defaults.Extensions, "accepted file extension (repeatable)")
	f.BoolVar(&opts.ignoreCase, "ignore-case", defaults.CaseInsensitive, "match markers and extensions case-insensitively")
	f.BoolVar(&opts.dedupe, "dedupe", defaults.DeduplicateLinks, "download each distinct link once")
	f.BoolVar(&opts.removePartial, "remove-partial", defaults.RemovePartialFiles, "delete partially written files of failed downloads")
}

// loadSettings reads the config file, if any, then applies the flags that
// were set explicitly.
func loadSettings(cmd *cobra.Command, opts *options) (*config.Settings, error) {
	settings := config.DefaultSettings()
	if opts.configPath != "" {
		var err error
		settings, err = config.Load(opts.configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	f := cmd.Flags()
	if f.Changed("page") {
		settings.PageURL = opts.pageURL
	}
	if f.Changed("origin") {
		settings.BaseOrigin = opts.baseOrigin
	}
	if f.Changed("dest") {
		settings.DownloadDir = opts.downloadDir
	}
	if f.Changed("archive") {
		settings.ArchivePath = opts.archivePath
	}
	if f.Changed("report") {
		settings.ReportPath = opts.reportPath
	}
	if f.Changed("concurrency") {
		settings.Concurrency = opts.concurrency
	}
	if f.Changed("retries") {
		settings.MaxRetries = opts.retries
	}
	if f.Changed("timeout") {
		settings.Timeout = opts.timeout
	}
	if f.Changed("retry-cooldown") {
		settings.RetryCooldown = opts.retryCooldown
	}
	if f.Changed("marker") {
		settings.Markers = opts.markers
	}
	if f.Changed("ext") {
		settings.Extensions = opts.extensions
	}
	if f.Changed("ignore-case") {
		settings.CaseInsensitive = opts.ignoreCase
	}
	if f.Changed("dedupe") {
		settings.DeduplicateLinks = opts.dedupe
	}
	if f.Changed("remove-partial") {
		settings.RemovePartialFiles = opts.removePartial
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if opts.saveConfigPath != "" {
		if err := settings.Save(opts.saveConfigPath); err != nil {
			return nil, fmt.Errorf("saving config: %w", err)
		}
	}
	return settings, nil
}

func run(ctx context.Context, settings *config.Settings, opts *options, stdout, stderr io.Writer) error {
	logger := newLogger(stderr, opts.verbose)
	p := pipeline.New(settings, progressLogger(logger))

	if opts.dryRun {
		urls, err := p.Extract(ctx)
		if err != nil {
			return err
		}
		for _, u := range urls {
			fmt.Fprintln(stdout, u)
		}
		return nil
	}

	fmt.Fprintln(stdout, "Anexos Downloader")
	fmt.Fprintln(stdout, "----------------------------------------")

	result, err := p.Run(ctx)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Fprintln(stdout, "\nDownload cancelled.")
		}
		return err
	}

	_, received, _, _ := p.Progress()
	fmt.Fprintln(stdout, "----------------------------------------")
	fmt.Fprintf(stdout, "Complete! Downloaded %d/%d files (%.2f MB)\n",
		result.Report.Succeeded(), len(result.Report.Tasks), float64(received)/1024/1024)
	fmt.Fprintf(stdout, "Archive: %s (%d entries)\n", result.Archive.Path, len(result.Archive.Entries))
	for _, task := range result.Report.Tasks {
		if task.LastError != "" {
			fmt.Fprintf(stdout, "   failed: %s: %s\n", task.URL, task.LastError)
		}
	}
	return nil
}

// exitCode maps a run error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		return 130
	default:
		return 1
	}
}
