package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/AndreyAkinshin/lvunit/internal/output"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
)

type fakeExitError struct{ code int }

func (e *fakeExitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }
func (e *fakeExitError) ExitCode() int { return e.code }

type fakeCommands struct {
	calls [][]string
	err   error
}

func (f *fakeCommands) Run(cmd *exec.Cmd) error {
	f.calls = append(f.calls, cmd.Args)
	return f.err
}

type fakeTerminator struct {
	names []string
}

func (f *fakeTerminator) Terminate(_ context.Context, name string) error {
	f.names = append(f.names, name)
	return nil
}

type testApp struct {
	*app
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	commands *fakeCommands
	term     *fakeTerminator
	env      map[string]string
	mode     terminate.Mode
	dir      string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		commands: &fakeCommands{},
		term:     &fakeTerminator{},
		env: map[string]string{
			"ProgramFiles":      `C:\Program Files`,
			"ProgramFiles(x86)": `C:\Program Files (x86)`,
		},
		dir: t.TempDir(),
	}
	ta.app = &app{
		out: output.NewWithWriters(ta.stdout, ta.stderr, false),
		lookupEnv: func(key string) (string, bool) {
			v, ok := ta.env[key]
			return v, ok
		},
		getwd: func() (string, error) { return ta.dir, nil },
		newTerminator: func(mode terminate.Mode, _ io.Writer) terminate.Terminator {
			ta.mode = mode
			return ta.term
		},
		commands: ta.commands,
	}
	return ta
}

func (ta *testApp) exec(args ...string) int {
	return ta.run(context.Background(), args)
}

func (ta *testApp) writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(ta.dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

const batchConfig = `{
	"terminate": "none",
	"runs": [
		{"project": "a.lvproj", "report": "a.xml", "version": "2021", "bitness": "64"},
		{"project": "b.lvproj", "report": "b.xml", "version": "2019", "bitness": "32"}
	]
}`

func TestRun_Help(t *testing.T) {
	for _, args := range [][]string{{"help"}, {"-h"}, {"--help"}, {"a", "--help"}} {
		ta := newTestApp(t)
		if code := ta.exec(args...); code != 0 {
			t.Errorf("Run(%v) = %d, want 0", args, code)
		}
		if !strings.Contains(ta.stdout.String(), "<project_path> <report_path> <labview_version> <labview_bitness>") {
			t.Errorf("Run(%v) did not print usage:\n%s", args, ta.stdout.String())
		}
		if len(ta.commands.calls) != 0 {
			t.Errorf("Run(%v) invoked the CLI", args)
		}
	}
}

func TestRun_Version(t *testing.T) {
	for _, arg := range []string{"version", "--version"} {
		ta := newTestApp(t)
		if code := ta.exec(arg); code != 0 {
			t.Errorf("Run(%q) = %d, want 0", arg, code)
		}
		if got := ta.stdout.String(); got != "lvunit "+Version+"\n" {
			t.Errorf("Run(%q) output = %q", arg, got)
		}
	}
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"too few", []string{"a.lvproj", "a.xml", "2021"}, "expected 4 arguments"},
		{"too many", []string{"a.lvproj", "a.xml", "2021", "64", "extra"}, "got 5"},
		{"unknown flag", []string{"--bogus"}, `unknown flag "--bogus"`},
		{"missing value", []string{"--timeout"}, "--timeout requires a value"},
		{"quiet and verbose", []string{"-q", "-v"}, "mutually exclusive"},
		{"no runs", nil, "no runs"},
		{"bad timeout", []string{"--timeout", "soon", "a", "b", "2021", "64"}, "invalid --timeout"},
		{"bad terminate", []string{"--terminate=pkill", "a", "b", "2021", "64"}, "invalid --terminate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)

			if code := ta.exec(tt.args...); code != 2 {
				t.Errorf("Run() = %d, want 2", code)
			}
			if !strings.Contains(ta.stderr.String(), tt.wantErr) {
				t.Errorf("stderr = %q, want to contain %q", ta.stderr.String(), tt.wantErr)
			}
			if len(ta.commands.calls) != 0 {
				t.Error("CLI invoked despite usage error")
			}
		})
	}
}

func TestRun_SingleSuccess(t *testing.T) {
	ta := newTestApp(t)

	code := ta.exec("--terminate", "taskkill", `C:\src\a.lvproj`, `C:\out\a.xml`, "2021", "64")
	if code != 0 {
		t.Fatalf("Run() = %d, want 0; stderr:\n%s", code, ta.stderr.String())
	}

	want := [][]string{{
		"LabVIEWCLI.exe",
		"-LabVIEWPath", `C:\Program Files\National Instruments\LabVIEW 2021\LabVIEW.exe`,
		"-OperationName", "RunUnitTests",
		"-ProjectPath", `C:\src\a.lvproj`,
		"-JUnitReportPath", `C:\out\a.xml`,
	}}
	if diff := cmp.Diff(want, ta.commands.calls); diff != "" {
		t.Errorf("CLI calls mismatch (-want +got):\n%s", diff)
	}
	if ta.mode != terminate.ModeTaskkill {
		t.Errorf("terminate mode = %q, want taskkill", ta.mode)
	}
	if diff := cmp.Diff([]string{"labview.exe"}, ta.term.names); diff != "" {
		t.Errorf("terminated names mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(ta.stdout.String(), `unit tests passed for "C:\src\a.lvproj"`) {
		t.Errorf("stdout = %q, want success line", ta.stdout.String())
	}
}

func TestRun_FailureExitCode(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"lenient", []string{"a.lvproj", "a.xml", "2021", "64"}, 0},
		{"strict", []string{"--strict", "a.lvproj", "a.xml", "2021", "64"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.commands.err = &fakeExitError{code: 3}

			if code := ta.exec(tt.args...); code != tt.want {
				t.Errorf("Run() = %d, want %d", code, tt.want)
			}
			stderr := ta.stderr.String()
			for _, want := range []string{`Failed to perform unit tests on "a.lvproj"`, "exit code: 3"} {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr)
				}
			}
		})
	}
}

func TestRun_UnresolvedBitness(t *testing.T) {
	ta := newTestApp(t)

	if code := ta.exec("--strict", "a.lvproj", "a.xml", "2019", "16"); code != 1 {
		t.Errorf("Run() = %d, want 1", code)
	}
	if len(ta.commands.calls) != 0 {
		t.Error("CLI invoked for unresolvable LabVIEW path")
	}
	if !strings.Contains(ta.stderr.String(), "labviewPath_2019") {
		t.Errorf("stderr = %q, want override hint", ta.stderr.String())
	}
}

func TestRun_OverrideEnv(t *testing.T) {
	ta := newTestApp(t)
	ta.env["labviewPath_2019"] = `D:\LV2019\LabVIEW.exe`

	if code := ta.exec("a.lvproj", "a.xml", "2019", "16"); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(ta.commands.calls) != 1 || ta.commands.calls[0][2] != `D:\LV2019\LabVIEW.exe` {
		t.Errorf("CLI calls = %v, want override path", ta.commands.calls)
	}
}

func TestRun_CLIOverride(t *testing.T) {
	ta := newTestApp(t)

	if code := ta.exec("--cli=C:\\NI\\LabVIEWCLI.exe", "a.lvproj", "a.xml", "2021", "32"); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	call := ta.commands.calls[0]
	if call[0] != `C:\NI\LabVIEWCLI.exe` {
		t.Errorf("argv[0] = %q, want CLI override", call[0])
	}
	if call[2] != `C:\Program Files (x86)\National Instruments\LabVIEW 2021\LabVIEW.exe` {
		t.Errorf("LabVIEW path = %q", call[2])
	}
}

func TestRun_DryRun(t *testing.T) {
	ta := newTestApp(t)

	if code := ta.exec("--dry-run", "a.lvproj", "a.xml", "2021", "64"); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(ta.commands.calls) != 0 || len(ta.term.names) != 0 {
		t.Error("dry run executed or terminated something")
	}
	stdout := ta.stdout.String()
	for _, want := range []string{"=== DRY RUN ===", "-OperationName RunUnitTests", "=== END DRY RUN ==="} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_BatchFromConfigFlag(t *testing.T) {
	ta := newTestApp(t)
	path := ta.writeConfig(t, "runs.json", batchConfig)

	if code := ta.exec("--config", path); code != 0 {
		t.Fatalf("Run() = %d, want 0; stderr:\n%s", code, ta.stderr.String())
	}
	if len(ta.commands.calls) != 2 {
		t.Fatalf("CLI invoked %d times, want 2", len(ta.commands.calls))
	}
	if ta.mode != terminate.ModeNone {
		t.Errorf("terminate mode = %q, want none", ta.mode)
	}
	if !strings.Contains(ta.stdout.String(), "using config "+path) {
		t.Errorf("stdout missing config notice:\n%s", ta.stdout.String())
	}
	if !strings.Contains(ta.stdout.String(), "All unit test runs completed successfully.") {
		t.Errorf("stdout missing summary:\n%s", ta.stdout.String())
	}
}

func TestRun_BatchFromEnv(t *testing.T) {
	ta := newTestApp(t)
	ta.env["LVUNIT_CONFIG"] = ta.writeConfig(t, "ci.yaml", `
strict: true
runs:
  - project: a.lvproj
    report: a.xml
    version: 2021
    bitness: 64
  - project: b.lvproj
    report: b.xml
    version: 2021
    bitness: 64
`)
	ta.commands.err = &fakeExitError{code: 1}

	if code := ta.exec(); code != 1 {
		t.Errorf("Run() = %d, want 1 (strict from config)", code)
	}
	if len(ta.commands.calls) != 2 {
		t.Errorf("CLI invoked %d times, want 2 (a failure must not stop the batch)", len(ta.commands.calls))
	}
	if !strings.Contains(ta.stdout.String(), "2 of 2 unit test run(s) failed.") {
		t.Errorf("stdout missing failure summary:\n%s", ta.stdout.String())
	}
}

func TestRun_BatchDiscovered(t *testing.T) {
	ta := newTestApp(t)
	ta.writeConfig(t, "lvunit.json", batchConfig)

	if code := ta.exec("-q"); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(ta.commands.calls) != 2 {
		t.Errorf("CLI invoked %d times, want 2", len(ta.commands.calls))
	}
	if strings.Contains(ta.stdout.String(), "using config") {
		t.Errorf("quiet mode printed the config notice:\n%s", ta.stdout.String())
	}
}

func TestRun_PositionalsIgnoreDiscoveredRuns(t *testing.T) {
	ta := newTestApp(t)
	ta.writeConfig(t, "lvunit.json", batchConfig)

	if code := ta.exec("c.lvproj", "c.xml", "2021", "64"); code != 0 {
		t.Fatalf("Run() = %d, want 0", code)
	}
	if len(ta.commands.calls) != 1 || ta.commands.calls[0][6] != "c.lvproj" {
		t.Errorf("CLI calls = %v, want only c.lvproj", ta.commands.calls)
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	ta := newTestApp(t)
	path := ta.writeConfig(t, "lvunit.json", `{"runs": [{"project": "a.lvproj"}]}`)

	if code := ta.exec("--config", path); code != 2 {
		t.Errorf("Run() = %d, want 2", code)
	}
	if !strings.HasPrefix(ta.stderr.String(), "lvunit: ") {
		t.Errorf("stderr = %q, want lvunit: prefix", ta.stderr.String())
	}
}

func TestRun_ConfigBitnessWarning(t *testing.T) {
	ta := newTestApp(t)
	path := ta.writeConfig(t, "lvunit.json",
		`{"runs": [{"project": "a.lvproj", "report": "a.xml", "version": "2019", "bitness": "16"}]}`)
	ta.env["labviewPath_2019"] = `D:\LabVIEW.exe`

	if code := ta.exec("--config", path, "--strict"); code != 0 {
		t.Errorf("Run() = %d, want 0", code)
	}
	if !strings.Contains(ta.stderr.String(), "runs[0].bitness") {
		t.Errorf("stderr = %q, want bitness warning", ta.stderr.String())
	}
}
