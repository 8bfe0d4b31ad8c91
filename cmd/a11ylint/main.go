// Command a11ylint audits HTML documents for accessibility violations,
// centered on the accessible name computation: every interactive element
// and image must expose a text label to assistive technology.
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"a11ylint/internal/audit"
	"a11ylint/internal/config"
	"a11ylint/internal/fetch"
	"a11ylint/internal/logging"
	"a11ylint/internal/report"
	"a11ylint/internal/rules"
	"a11ylint/internal/store"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	workspace  string
	configPath string
	format     string
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "a11ylint",
	Short: "a11ylint - HTML accessibility linter",
	Long: `a11ylint audits HTML for accessibility violations.

Its core rule, missing-accessible-name, computes the accessible name of
every interactive element and image per the WAI-ARIA name computation and
flags those that expose none. Documents can come from files, from URLs,
or from a headless browser after scripts have run.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ws := resolveWorkspace()
		path := configPath
		if path == "" {
			path = config.DefaultPath(ws)
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}
		if format != "" {
			cfg.Output.Format = format
		}
		if verbose {
			cfg.Logging.DebugMode = true
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return logging.Initialize(ws, cfg.Logging.DebugMode, cfg.Logging.Level)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// scanCmd audits files, directories, or a URL.
var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Audit HTML files or a remote page",
	Long: `Audits the given HTML files and directories (recursively), or a
single remote page with --url. Exits non-zero when violations are found.

Examples:
  a11ylint scan index.html templates/
  a11ylint scan --url https://example.com --format json
  a11ylint scan --save dist/`,
	RunE: runScan,
}

var (
	scanURL     string
	scanSave    bool
	scanWorkers int
)

// versionCmd prints the version.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the a11ylint version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("a11ylint %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.a11ylint/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&format, "format", "f", "", "Output format: text, json, pretty")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")

	scanCmd.Flags().StringVar(&scanURL, "url", "", "Audit a remote page instead of files")
	scanCmd.Flags().BoolVar(&scanSave, "save", false, "Persist the run to the history database")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "File audit concurrency (default: NumCPU)")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// signalContext returns a context canceled by SIGINT/SIGTERM or timeout.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// signalContextNoTimeout is signalContext without the operation timeout,
// for long-running modes.
func signalContextNoTimeout() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

func newAuditor() *audit.Auditor {
	opts := []audit.Option{}
	if scanWorkers > 0 {
		opts = append(opts, audit.WithConcurrency(scanWorkers))
	}
	return audit.New(rules.Enabled(cfg.Rules.Disabled), opts...)
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	if scanURL == "" && len(args) == 0 {
		return fmt.Errorf("nothing to scan: pass paths or --url")
	}
	if scanURL != "" && len(args) > 0 {
		return fmt.Errorf("--url cannot be combined with file paths")
	}

	auditor := newAuditor()
	started := time.Now()
	var results []audit.Result

	if scanURL != "" {
		logger.Info("auditing remote page", zap.String("url", scanURL))
		fetcher := fetch.New(fetch.Config{
			UserAgent:      cfg.Fetch.UserAgent,
			Timeout:        cfg.GetFetchTimeout(),
			MaxBodyBytes:   cfg.MaxBodyBytes(),
			AllowedDomains: cfg.Fetch.AllowedDomains,
			BlockedDomains: cfg.Fetch.BlockedDomains,
		})
		body, err := fetcher.Fetch(ctx, scanURL)
		if err != nil {
			return err
		}
		res, err := auditor.AuditReader(scanURL, bytes.NewReader(body))
		if err != nil {
			return err
		}
		results = append(results, res)
	} else {
		paths, err := collectHTMLFiles(args)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return fmt.Errorf("no .html files found under %v", args)
		}
		logger.Info("auditing files", zap.Int("count", len(paths)))
		results, err = auditor.RunFiles(ctx, paths)
		if err != nil {
			return err
		}
	}

	rep := report.New(started, results)
	if err := writeReport(rep); err != nil {
		return err
	}

	if scanSave {
		st, err := store.Open(storePath())
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveReport(rep); err != nil {
			return err
		}
		logger.Info("run saved", zap.String("run_id", rep.RunID))
	}

	if rep.HasViolations() {
		cmd.SilenceUsage = true
		return errViolations(rep.Totals.Violations)
	}
	return nil
}

// errViolations is the non-zero-exit error for scans that found problems.
func errViolations(n int) error {
	return fmt.Errorf("found %d violation(s)", n)
}

func writeReport(rep *report.Report) error {
	switch cfg.Output.Format {
	case "json":
		return rep.WriteJSON(os.Stdout)
	case "text":
		return rep.WriteText(os.Stdout)
	default:
		return rep.WritePretty(os.Stdout)
	}
}

func storePath() string {
	p := cfg.Store.DatabasePath
	if !filepath.IsAbs(p) {
		p = filepath.Join(resolveWorkspace(), p)
	}
	return p
}

// collectHTMLFiles expands files and directories into a sorted, de-duplicated
// list of .html files.
func collectHTMLFiles(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				// Skip dot directories, but not the walk root itself.
				if path != arg && len(d.Name()) > 1 && d.Name()[0] == '.' {
					return filepath.SkipDir
				}
				return nil
			}
			if filepath.Ext(path) == ".html" {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(out)
	return out, nil
}
