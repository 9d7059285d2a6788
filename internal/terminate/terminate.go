// Package terminate stops running instances of the LabVIEW host application
// so they do not hold locks on project files during a test run.
//
// Termination is best-effort: callers log and otherwise ignore the returned error.
package terminate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
	"golang.org/x/text/cases"
)

// DefaultHostProcess is the image name of the LabVIEW host application.
const DefaultHostProcess = "labview.exe"

// Mode selects how the host application is terminated.
type Mode string

const (
	// ModeTaskkill runs "taskkill /IM <name> /F".
	ModeTaskkill Mode = "taskkill"
	// ModeProcess enumerates processes and kills the ones whose name matches.
	ModeProcess Mode = "process"
	// ModeNone skips termination entirely.
	ModeNone Mode = "none"
)

// ValidModes returns the recognised termination modes.
func ValidModes() []string {
	return []string{string(ModeTaskkill), string(ModeProcess), string(ModeNone)}
}

// ParseMode parses a mode string. The empty string selects DefaultMode.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case "":
		return DefaultMode(), true
	case ModeTaskkill, ModeProcess, ModeNone:
		return Mode(s), true
	default:
		return "", false
	}
}

// DefaultMode is taskkill on Windows and process enumeration elsewhere.
func DefaultMode() Mode {
	if runtime.GOOS == "windows" {
		return ModeTaskkill
	}
	return ModeProcess
}

// Terminator forcibly stops every running process with the given image name.
type Terminator interface {
	Terminate(ctx context.Context, name string) error
}

// New returns the Terminator for mode. Output of external utilities goes to out.
func New(mode Mode, out io.Writer) Terminator {
	switch mode {
	case ModeTaskkill:
		return &Taskkill{Stdout: out, Stderr: out}
	case ModeProcess:
		return &Process{}
	default:
		return Noop{}
	}
}

// Noop does nothing.
type Noop struct{}

// Terminate implements Terminator.
func (Noop) Terminate(context.Context, string) error { return nil }

// Taskkill terminates processes with the Windows taskkill utility.
type Taskkill struct {
	Stdout io.Writer
	Stderr io.Writer

	// run executes the command; nil means (*exec.Cmd).Run. Overridden in tests.
	run func(*exec.Cmd) error
}

// Args returns the taskkill argv used to force-kill name.
func (t *Taskkill) Args(name string) []string {
	return []string{"taskkill", "/IM", name, "/F"}
}

// Terminate implements Terminator. taskkill exits non-zero when no process
// matched; that error is returned like any other and is expected to be ignored.
func (t *Taskkill) Terminate(ctx context.Context, name string) error {
	args := t.Args(name)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = t.Stdout
	cmd.Stderr = t.Stderr

	run := t.run
	if run == nil {
		run = (*exec.Cmd).Run
	}
	if err := run(cmd); err != nil {
		return fmt.Errorf("taskkill %s: %w", name, err)
	}
	return nil
}

// lister abstracts process enumeration for testing.
type lister interface {
	list(ctx context.Context) ([]proc, error)
}

// proc is the subset of *process.Process used by Process.
type proc interface {
	pid() int32
	name(ctx context.Context) (string, error)
	kill(ctx context.Context) error
}

// Process terminates processes by enumerating them with gopsutil.
// Names are compared case-insensitively, matching taskkill's /IM semantics.
type Process struct {
	// procs overrides process enumeration; nil uses gopsutil.
	procs lister
}

// Terminate implements Terminator. It returns nil when no process matched.
func (p *Process) Terminate(ctx context.Context, name string) error {
	procs, err := p.lister().list(ctx)
	if err != nil {
		return fmt.Errorf("list processes: %w", err)
	}

	want := normalizeName(name)
	self := int32(os.Getpid())

	var errs []error
	for _, pr := range procs {
		if pr.pid() == self {
			continue
		}
		got, err := pr.name(ctx)
		if err != nil {
			// Process exited or is inaccessible.
			continue
		}
		if normalizeName(got) != want {
			continue
		}
		if err := pr.kill(ctx); err != nil {
			errs = append(errs, fmt.Errorf("kill %s (pid %d): %w", got, pr.pid(), err))
		}
	}
	return errors.Join(errs...)
}

// normalizeName case-folds an image name and drops a trailing ".exe", so that
// "LabVIEW.exe", "labview.exe" and "labview" all compare equal.
func normalizeName(name string) string {
	return strings.TrimSuffix(cases.Fold().String(name), ".exe")
}

func (p *Process) lister() lister {
	if p.procs != nil {
		return p.procs
	}
	return gopsutilLister{}
}

type gopsutilLister struct{}

func (gopsutilLister) list(ctx context.Context) ([]proc, error) {
	ps, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]proc, len(ps))
	for i, p := range ps {
		out[i] = gopsutilProc{p}
	}
	return out, nil
}

type gopsutilProc struct {
	p *process.Process
}

func (g gopsutilProc) pid() int32 { return g.p.Pid }

func (g gopsutilProc) name(ctx context.Context) (string, error) {
	return g.p.NameWithContext(ctx)
}

func (g gopsutilProc) kill(ctx context.Context) error {
	return g.p.KillWithContext(ctx)
}
