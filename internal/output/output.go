// Package output provides formatted console output for the CLI.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Writer handles CLI output formatting.
type Writer struct {
	out     io.Writer
	err     io.Writer
	color   bool
	quiet   bool
	verbose bool
}

// New creates a new Writer with default settings.
func New() *Writer {
	return &Writer{
		out:   os.Stdout,
		err:   os.Stderr,
		color: isTerminal(),
	}
}

// NewWithWriters creates a Writer with custom io.Writers (for testing).
func NewWithWriters(out, err io.Writer, color bool) *Writer {
	return &Writer{
		out:   out,
		err:   err,
		color: color,
	}
}

// SetQuiet enables or disables quiet mode.
func (w *Writer) SetQuiet(quiet bool) {
	w.quiet = quiet
}

// SetVerbose enables or disables verbose mode.
func (w *Writer) SetVerbose(verbose bool) {
	w.verbose = verbose
}

// Verbose reports whether verbose mode is on.
func (w *Writer) Verbose() bool {
	return w.verbose
}

// Stdout returns the writer used for regular output.
func (w *Writer) Stdout() io.Writer {
	return w.out
}

// Stderr returns the writer used for diagnostics.
func (w *Writer) Stderr() io.Writer {
	return w.err
}

// Println writes a line to stdout.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Errorln writes a line to stderr.
func (w *Writer) Errorln(format string, args ...interface{}) {
	fmt.Fprintf(w.err, format+"\n", args...)
}

// Info prints an info message (skipped in quiet mode).
func (w *Writer) Info(format string, args ...interface{}) {
	if w.quiet {
		return
	}
	w.Println(format, args...)
}

// Debug prints a message only in verbose mode.
func (w *Writer) Debug(format string, args ...interface{}) {
	if !w.verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%s[debug] %s%s", dim, msg, reset)
	} else {
		w.Errorln("[debug] %s", msg)
	}
}

// Warning prints a warning message.
func (w *Writer) Warning(format string, args ...interface{}) {
	if w.color {
		w.Errorln("\033[33mwarning: "+format+"\033[0m", args...)
	} else {
		w.Errorln("warning: "+format, args...)
	}
}

// ErrorPrefix prints an error message with lvunit prefix to stderr.
func (w *Writer) ErrorPrefix(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		w.Errorln("%slvunit:%s %s", red, reset, msg)
	} else {
		w.Errorln("lvunit: %s", msg)
	}
}

// RunStart prints the header of a test run for project.
func (w *Writer) RunStart(project, version string, bitness string) {
	if w.quiet {
		return
	}
	w.Println("")
	label := fmt.Sprintf("─── %s (LabVIEW %s, %s-bit) ───", project, version, bitness)
	if w.color {
		w.Println("%s%s%s", bold+cyan, label, reset)
	} else {
		w.Println("%s", label)
	}
}

// RunSuccess prints a successful run.
func (w *Writer) RunSuccess(project string) {
	if w.quiet {
		return
	}
	if w.color {
		w.Println("\033[32m✓\033[0m unit tests passed for \"%s\"", project)
	} else {
		w.Println("unit tests passed for \"%s\"", project)
	}
}

// RunFailed prints the one-line failure message for project.
// It is printed in quiet mode too.
func (w *Writer) RunFailed(project string) {
	if w.color {
		w.Errorln("%sFailed to perform unit tests on \"%s\"%s", red, project, reset)
	} else {
		w.Errorln("Failed to perform unit tests on \"%s\"", project)
	}
}

// Diagnostic prints an indented block of failure details to stderr.
func (w *Writer) Diagnostic(lines []string) {
	for _, line := range lines {
		if w.color {
			w.Errorln("    %s%s%s", dim, line, reset)
		} else {
			w.Errorln("    %s", line)
		}
	}
}

// Command prints the command line about to be executed (verbose mode only).
func (w *Writer) Command(args []string) {
	if !w.verbose {
		return
	}
	w.Println("Running: %s", FormatArgs(args))
}

// FormatArgs renders argv for display, quoting arguments that contain spaces or are empty.
func FormatArgs(args []string) string {
	parts := make([]string, len(args))
	for i, a := range args {
		if a == "" || strings.ContainsAny(a, " \t\"") {
			parts[i] = `"` + strings.ReplaceAll(a, `"`, `\"`) + `"`
		} else {
			parts[i] = a
		}
	}
	return strings.Join(parts, " ")
}

// paint wraps s in the given ANSI code when colour is enabled.
func (w *Writer) paint(code, s string) string {
	if !w.color || code == "" {
		return s
	}
	return code + s + reset
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	w.Println("%s", w.paint(bold+cyan, "=== "+title+" ==="))
	w.Println("")
}

// SummaryItem prints a labeled summary item with value.
func (w *Writer) SummaryItem(label, value string) {
	w.summaryLine(label, value, "")
}

// SummaryPassed prints a passed items summary.
func (w *Writer) SummaryPassed(label, value string) {
	w.summaryLine(label, value, green)
}

// SummaryFailed prints a failed items summary.
func (w *Writer) SummaryFailed(label, value string) {
	w.summaryLine(label, value, red)
}

func (w *Writer) summaryLine(label, value, valueColor string) {
	w.Println("  %s %s", w.paint(dim, label+":"), w.paint(valueColor, value))
}

// SummaryAction prints one run with status indicator, duration, and optional error.
func (w *Writer) SummaryAction(name string, success bool, duration string, errMsg string) {
	mark, markColor := "+", green
	if w.color {
		mark = "✓"
	}
	if !success {
		mark, markColor = "x", red
		if w.color {
			mark = "✗"
		}
	}

	line := fmt.Sprintf("    %s %s %s", w.paint(markColor, mark), name, w.paint(dim, duration))
	if !success && errMsg != "" {
		line += "  " + w.paint(dim, "("+errMsg+")")
	}
	w.Println("%s", line)
}

// FinalSuccess prints a final success message.
func (w *Writer) FinalSuccess(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(green, fmt.Sprintf(format, args...)))
}

// FinalFailure prints a final failure message.
func (w *Writer) FinalFailure(format string, args ...interface{}) {
	w.Println("")
	w.Println("%s", w.paint(red, fmt.Sprintf(format, args...)))
}

// DryRunStart prints the dry run header.
func (w *Writer) DryRunStart() {
	w.Println("")
	w.Println("%s", w.paint(bold+yellow, "=== DRY RUN ==="))
	w.Println("")
}

// DryRunEnd prints the dry run footer.
func (w *Writer) DryRunEnd() {
	w.Println("")
	w.Println("%s", w.paint(bold+yellow, "=== END DRY RUN ==="))
}

// isTerminal returns true if stdout is a terminal.
func isTerminal() bool {
	if fi, _ := os.Stdout.Stat(); fi != nil {
		return (fi.Mode() & os.ModeCharDevice) != 0
	}
	return false
}

// ANSI color codes.
const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
)

// Colour roles for help output.
const (
	colorTitle       = bold + cyan
	colorSection     = bold + yellow
	colorCommand     = bold + cyan
	colorPlaceholder = green
	colorFlag        = yellow
	colorExample     = cyan
)

// HelpTitle formats the main help title line.
func (w *Writer) HelpTitle(title string) {
	w.Println("%s", w.paint(colorTitle, title))
}

// HelpSection formats a section header (e.g., "Flags:").
func (w *Writer) HelpSection(title string) {
	w.Println("")
	w.Println("%s", w.paint(colorSection, title))
}

// HelpCommand formats a command or argument with its description.
func (w *Writer) HelpCommand(name, description string, width int) {
	w.helpEntry(colorCommand, name, description, width)
}

// HelpFlag formats a flag with its description.
func (w *Writer) HelpFlag(name, description string, width int) {
	w.helpEntry(colorFlag, name, description, width)
}

// HelpEnvVar formats an environment variable.
func (w *Writer) HelpEnvVar(name, description string, width int) {
	w.helpEntry(colorFlag, name, description, width)
}

// helpEntry prints "  name  description" with name padded to width.
func (w *Writer) helpEntry(nameColor, name, description string, width int) {
	padding := strings.Repeat(" ", max(width-len(name), 0))
	if !w.color {
		w.Println("  %s%s  %s", name, padding, description)
		return
	}
	w.Println("  %s%s  %s", w.paint(nameColor, w.colorPlaceholders(name)), padding, w.paint(dim, description))
}

// HelpExample formats an example command with description.
func (w *Writer) HelpExample(command, description string) {
	w.Println("  %s", w.paint(colorExample, command))
	if description != "" {
		w.Println("      %s", w.paint(dim, description))
	}
}

// HelpUsage formats usage lines.
func (w *Writer) HelpUsage(usage string) {
	w.Println("  %s", w.colorPlaceholders(usage))
}

// colorPlaceholders highlights <placeholder> patterns in text.
func (w *Writer) colorPlaceholders(text string) string {
	if !w.color {
		return text
	}
	var b strings.Builder
	for {
		start := strings.IndexByte(text, '<')
		if start < 0 {
			break
		}
		end := strings.IndexByte(text[start:], '>')
		if end < 0 {
			break
		}
		b.WriteString(text[:start])
		b.WriteString(reset + colorPlaceholder + text[start:start+end+1] + reset)
		text = text[start+end+1:]
	}
	b.WriteString(text)
	return b.String()
}
