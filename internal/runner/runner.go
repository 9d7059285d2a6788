// Package runner invokes the LabVIEW CLI to run a project's unit tests.
//
// A run never panics or aborts its caller: every outcome, including an
// unresolvable LabVIEW path or a tool that cannot be launched, is reported to
// the console and returned as a Result.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	lverrors "github.com/AndreyAkinshin/lvunit/internal/errors"
	"github.com/AndreyAkinshin/lvunit/internal/labview"
	"github.com/AndreyAkinshin/lvunit/internal/output"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
)

const (
	// DefaultCLI is the LabVIEW command-line interface executable.
	DefaultCLI = "LabVIEWCLI.exe"

	// OperationRunUnitTests is the LabVIEW CLI operation that runs a project's unit tests.
	OperationRunUnitTests = "RunUnitTests"

	// exitNotRun marks a Result whose process was never started or never exited.
	exitNotRun = -1

	waitDelay = 10 * time.Second
)

// Request describes one unit-test run.
// Paths are passed to the LabVIEW CLI as given; they are not checked here.
type Request struct {
	ProjectPath string
	ReportPath  string
	Version     string
	Bitness     labview.Bitness
}

// Result is the outcome of one run.
type Result struct {
	Request  Request
	ToolPath string        // Resolved LabVIEW.exe path; empty if unresolved
	Args     []string      // Full argv passed to the CLI; nil if the CLI was not invoked
	ExitCode int           // Process exit code; -1 if the process did not exit normally
	Duration time.Duration // Wall time of the CLI process
	DryRun   bool          // True if the command was printed instead of executed
	Err      error         // nil on success; an *errors.Error otherwise
}

// Success reports whether the run completed with exit code zero (or was a dry run).
func (r Result) Success() bool {
	return r.Err == nil
}

// CommandRunner executes a prepared command and waits for it to finish.
type CommandRunner interface {
	Run(cmd *exec.Cmd) error
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements CommandRunner.
func (ExecRunner) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

// RunOptions configures execution behavior.
type RunOptions struct {
	CLI         string        // CLI executable; DefaultCLI if empty
	HostProcess string        // Image name terminated before each run; terminate.DefaultHostProcess if empty
	Timeout     time.Duration // Per-run limit; zero means none
	DryRun      bool          // Print the command instead of running it
}

// Runner runs LabVIEW unit tests one project at a time.
type Runner struct {
	resolver   *labview.Resolver
	terminator terminate.Terminator
	commands   CommandRunner
	out        *output.Writer
	opts       RunOptions
}

// New creates a Runner. A nil terminator disables host termination.
func New(resolver *labview.Resolver, terminator terminate.Terminator, out *output.Writer, opts RunOptions) *Runner {
	if opts.CLI == "" {
		opts.CLI = DefaultCLI
	}
	if opts.HostProcess == "" {
		opts.HostProcess = terminate.DefaultHostProcess
	}
	if terminator == nil {
		terminator = terminate.Noop{}
	}
	return &Runner{
		resolver:   resolver,
		terminator: terminator,
		commands:   ExecRunner{},
		out:        out,
		opts:       opts,
	}
}

// SetCommandRunner replaces the process executor (for testing).
func (r *Runner) SetCommandRunner(c CommandRunner) {
	r.commands = c
}

// BuildArgs returns the LabVIEW CLI argv for running the unit tests of project
// with the LabVIEW at toolPath, writing a JUnit report to report.
func BuildArgs(cli, toolPath, project, report string) []string {
	return []string{
		cli,
		"-LabVIEWPath", toolPath,
		"-OperationName", OperationRunUnitTests,
		"-ProjectPath", project,
		"-JUnitReportPath", report,
	}
}

// Run performs one unit-test run and reports its outcome.
//
// The host application is terminated first; that step's failure is ignored.
// The call blocks until the CLI exits, the timeout elapses, or ctx is done.
func (r *Runner) Run(ctx context.Context, req Request) Result {
	res := Result{Request: req, ExitCode: exitNotRun}
	r.out.RunStart(req.ProjectPath, req.Version, string(req.Bitness))

	toolPath, ok := r.resolver.Resolve(req.Version, req.Bitness)
	if !ok {
		msg := fmt.Sprintf("cannot resolve LabVIEW %s path: bitness %q is not 32 or 64 and %s is not set",
			req.Version, req.Bitness, r.resolver.OverrideVar(req.Version))
		res.Err = &lverrors.Error{Kind: lverrors.KindConfig, Message: msg, Project: req.ProjectPath}
		r.reportFailure(res)
		return res
	}
	res.ToolPath = toolPath
	res.Args = BuildArgs(r.opts.CLI, toolPath, req.ProjectPath, req.ReportPath)

	if r.opts.DryRun {
		res.DryRun = true
		res.ExitCode = 0
		r.out.Println("%s", output.FormatArgs(res.Args))
		return res
	}

	if err := r.terminator.Terminate(ctx, r.opts.HostProcess); err != nil {
		r.out.Debug("terminate %s: %v", r.opts.HostProcess, err)
	}

	runCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, res.Args[0], res.Args[1:]...)
	cmd.Stdout = r.out.Stdout()
	cmd.Stderr = r.out.Stderr()
	if r.opts.Timeout > 0 {
		// Bound the wait for output pipes held open by grandchildren after a kill.
		cmd.WaitDelay = waitDelay
	}

	r.out.Command(res.Args)
	start := time.Now()
	err := r.commands.Run(cmd)
	res.Duration = time.Since(start)

	res.ExitCode, res.Err = classify(runCtx, req.ProjectPath, err)
	if res.Err != nil {
		r.reportFailure(res)
		return res
	}

	r.out.RunSuccess(req.ProjectPath)
	return res
}

// exitCoder is implemented by *exec.ExitError.
type exitCoder interface {
	ExitCode() int
}

// classify maps the error from running the CLI to an exit code and an *errors.Error.
func classify(ctx context.Context, project string, err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return exitNotRun, lverrors.Timeout(project, errors.Join(ctxErr, err))
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		code := ec.ExitCode()
		return code, lverrors.Runtime(project, code, err)
	}
	return exitNotRun, lverrors.Launch(project, err)
}

func (r *Runner) reportFailure(res Result) {
	r.out.RunFailed(res.Request.ProjectPath)
	r.out.Diagnostic(Diagnostic(res, r.resolver))
}

// Diagnostic returns the failure details of res as display lines:
// the full error chain followed by the inputs needed to reproduce the run.
func Diagnostic(res Result, resolver *labview.Resolver) []string {
	var lines []string
	if res.Err != nil {
		// The headline carries only the message; each cause gets its own line.
		var e *lverrors.Error
		cause := errors.Unwrap(res.Err)
		if errors.As(res.Err, &e) {
			lines = append(lines, fmt.Sprintf("%s error: %s", e.Kind, e.Message))
			cause = e.Cause
		} else {
			lines = append(lines, fmt.Sprintf("error: %v", res.Err))
		}
		for ; cause != nil; cause = errors.Unwrap(cause) {
			lines = append(lines, fmt.Sprintf("caused by: %v", cause))
		}
	}
	if res.ExitCode != exitNotRun {
		lines = append(lines, fmt.Sprintf("exit code: %d", res.ExitCode))
	}
	lines = append(lines,
		fmt.Sprintf("project: %s", res.Request.ProjectPath),
		fmt.Sprintf("report: %s", res.Request.ReportPath),
		fmt.Sprintf("labview: %s (%s-bit)", res.Request.Version, res.Request.Bitness),
	)
	if res.ToolPath != "" {
		lines = append(lines, fmt.Sprintf("labview path: %s", res.ToolPath))
	} else if resolver != nil {
		lines = append(lines, fmt.Sprintf("hint: set %s to the LabVIEW.exe path", resolver.OverrideVar(res.Request.Version)))
	}
	if res.Args != nil {
		lines = append(lines, fmt.Sprintf("command: %s", output.FormatArgs(res.Args)))
	}
	if res.Duration > 0 {
		lines = append(lines, fmt.Sprintf("duration: %s", FormatDuration(res.Duration)))
	}
	return lines
}
