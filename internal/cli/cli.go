// Package cli provides the lvunit command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AndreyAkinshin/lvunit/internal/config"
	lverrors "github.com/AndreyAkinshin/lvunit/internal/errors"
	"github.com/AndreyAkinshin/lvunit/internal/labview"
	"github.com/AndreyAkinshin/lvunit/internal/output"
	"github.com/AndreyAkinshin/lvunit/internal/runner"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
	"github.com/AndreyAkinshin/lvunit/pkg/lvunit"
)

// Version is set at build time.
var Version = "dev"

// positionalCount is the number of arguments of a single run.
const positionalCount = 4

// app carries the process environment so tests can replace it.
type app struct {
	out           *output.Writer
	lookupEnv     labview.LookupFunc
	getwd         func() (string, error)
	newTerminator func(terminate.Mode, io.Writer) terminate.Terminator
	commands      runner.CommandRunner // nil selects os/exec
}

func newApp() *app {
	return &app{
		out:           output.New(),
		lookupEnv:     os.LookupEnv,
		getwd:         os.Getwd,
		newTerminator: terminate.New,
	}
}

// Run executes the CLI with the given arguments and returns an exit code.
//
// A failed unit-test run yields exit code 0 unless strict mode is enabled;
// usage and configuration errors always yield 2.
func Run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return newApp().run(ctx, args)
}

func (a *app) run(ctx context.Context, args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "help":
			printUsage(a.out)
			return lvunit.ExitSuccess
		case "version":
			a.printVersion()
			return lvunit.ExitSuccess
		}
	}

	opts, positionals, err := parseFlags(args)
	if err != nil {
		return a.usageError("%v", err)
	}
	if opts.Help {
		printUsage(a.out)
		return lvunit.ExitSuccess
	}
	if opts.ShowVersion {
		a.printVersion()
		return lvunit.ExitSuccess
	}

	a.out.SetQuiet(opts.Quiet)
	a.out.SetVerbose(opts.Verbose)

	if len(positionals) != 0 && len(positionals) != positionalCount {
		return a.usageError("expected %d arguments (<project_path> <report_path> <labview_version> <labview_bitness>), got %d",
			positionalCount, len(positionals))
	}

	cfg, err := a.loadConfig(opts, len(positionals) == 0)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return lverrors.GetExitCode(err)
	}

	settings, err := resolveSettings(cfg, opts)
	if err != nil {
		a.out.ErrorPrefix("%v", err)
		return lverrors.GetExitCode(err)
	}

	reqs := requestsFromArgs(positionals)
	if reqs == nil {
		reqs = requestsFromConfig(cfg.Runs)
	}
	if len(reqs) == 0 {
		return a.usageError("no runs: pass <project_path> <report_path> <labview_version> <labview_bitness> or a config file with runs")
	}

	return a.execute(ctx, cfg, settings, reqs)
}

// settings are the effective run parameters after flags override config.
type settings struct {
	mode    terminate.Mode
	timeout time.Duration
	strict  bool
	dryRun  bool
}

func resolveSettings(cfg *config.Config, opts *Options) (settings, error) {
	s := settings{strict: cfg.Strict || opts.Strict, dryRun: opts.DryRun}

	if opts.CLI != "" {
		cfg.CLI = opts.CLI
	}

	if opts.Timeout != "" {
		d, err := time.ParseDuration(opts.Timeout)
		if err != nil || d < 0 {
			return s, lverrors.Configf("invalid --timeout value %q: expected a duration such as 30m", opts.Timeout)
		}
		s.timeout = d
	} else {
		d, err := cfg.TimeoutDuration()
		if err != nil {
			return s, lverrors.Configf("invalid timeout %q in config", cfg.Timeout)
		}
		s.timeout = d
	}

	modeName := cfg.Terminate
	if opts.Terminate != "" {
		modeName = opts.Terminate
	}
	mode, ok := terminate.ParseMode(modeName)
	if !ok {
		return s, lverrors.Configf("invalid --terminate value %q\n  valid values: %s",
			modeName, strings.Join(terminate.ValidModes(), ", "))
	}
	s.mode = mode

	return s, nil
}

// loadConfig loads the file named by --config or LVUNIT_CONFIG. In batch mode
// it also looks for a config file in the working directory.
func (a *app) loadConfig(opts *Options, batch bool) (*config.Config, error) {
	path := opts.ConfigPath
	if path == "" {
		path, _ = a.lookupEnv(config.EnvConfig)
	}
	if path == "" && batch {
		if dir, err := a.getwd(); err == nil {
			found, err := config.Find(dir)
			if err != nil && !errors.Is(err, config.ErrNotFound) {
				return nil, err
			}
			path = found
		}
	}

	if path != "" {
		a.out.Info("using config %s", path)
	}

	cfg, warnings, err := config.LoadAndValidate(path)
	for _, w := range warnings {
		a.out.Warning("%s", w)
	}
	return cfg, err
}

func (a *app) execute(ctx context.Context, cfg *config.Config, s settings, reqs []runner.Request) int {
	termOut := io.Discard
	if a.out.Verbose() {
		termOut = a.out.Stderr()
	}

	r := runner.New(
		labview.NewResolverWithLookup(cfg.EnvPrefix, a.lookupEnv),
		a.newTerminator(s.mode, termOut),
		a.out,
		runner.RunOptions{
			CLI:         cfg.CLI,
			HostProcess: cfg.HostProcess,
			Timeout:     s.timeout,
			DryRun:      s.dryRun,
		},
	)
	if a.commands != nil {
		r.SetCommandRunner(a.commands)
	}
	a.out.Debug("settings: %s", s)

	if s.dryRun {
		a.out.DryRunStart()
	}

	var failed bool
	if len(reqs) == 1 {
		failed = !r.Run(ctx, reqs[0]).Success()
	} else {
		summary := r.RunAll(ctx, reqs)
		runner.PrintSummary(summary, a.out)
		failed = !summary.Success()
	}

	if s.dryRun {
		a.out.DryRunEnd()
	}

	if failed && s.strict {
		return lvunit.ExitFailure
	}
	return lvunit.ExitSuccess
}

func requestsFromArgs(args []string) []runner.Request {
	if len(args) != positionalCount {
		return nil
	}
	return []runner.Request{{
		ProjectPath: args[0],
		ReportPath:  args[1],
		Version:     args[2],
		Bitness:     labview.Bitness(args[3]),
	}}
}

func requestsFromConfig(runs []config.RunConfig) []runner.Request {
	reqs := make([]runner.Request, 0, len(runs))
	for _, run := range runs {
		reqs = append(reqs, runner.Request{
			ProjectPath: run.Project,
			ReportPath:  run.Report,
			Version:     string(run.Version),
			Bitness:     labview.Bitness(run.Bitness),
		})
	}
	return reqs
}

func (a *app) printVersion() {
	a.out.Println("lvunit %s", Version)
}

func (a *app) usageError(format string, args ...interface{}) int {
	a.out.ErrorPrefix(format, args...)
	a.out.Errorln("Run 'lvunit --help' for usage.")
	return lvunit.ExitConfigError
}

// String implements fmt.Stringer for debug output.
func (s settings) String() string {
	return fmt.Sprintf("terminate=%s timeout=%s strict=%t dry-run=%t", s.mode, s.timeout, s.strict, s.dryRun)
}
