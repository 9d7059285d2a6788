package cli

import (
	"strings"

	"github.com/AndreyAkinshin/lvunit/internal/config"
	"github.com/AndreyAkinshin/lvunit/internal/labview"
	"github.com/AndreyAkinshin/lvunit/internal/output"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
)

const (
	widthCommand = 10
	widthFlag    = 20
	widthEnvVar  = 22
)

func printUsage(w *output.Writer) {
	w.HelpTitle("lvunit - run LabVIEW project unit tests through the LabVIEW CLI")

	w.HelpSection("Usage:")
	w.HelpUsage("lvunit [flags] <project_path> <report_path> <labview_version> <labview_bitness>")
	w.HelpUsage("lvunit [flags]   Run every entry in the config file's runs list")

	w.HelpSection("Arguments:")
	w.HelpCommand("<project_path>", "Path to the .lvproj file", widthFlag)
	w.HelpCommand("<report_path>", "Path of the JUnit XML report to write", widthFlag)
	w.HelpCommand("<labview_version>", "LabVIEW version, e.g. 2021", widthFlag)
	w.HelpCommand("<labview_bitness>", "LabVIEW bitness: "+strings.Join(labview.ValidBitness(), " or "), widthFlag)

	w.HelpSection("Commands:")
	w.HelpCommand("help", "Show this help", widthCommand)
	w.HelpCommand("version", "Show version information", widthCommand)

	w.HelpSection("Flags:")
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", widthFlag)
	w.HelpFlag("-v, --verbose", "Show the CLI command line and debug details", widthFlag)
	w.HelpFlag("--config <file>", "Configuration file (JSON or YAML)", widthFlag)
	w.HelpFlag("--timeout <dur>", "Per-run time limit, e.g. 30m", widthFlag)
	w.HelpFlag("--terminate <mode>", "Host termination: "+strings.Join(terminate.ValidModes(), ", "), widthFlag)
	w.HelpFlag("--cli <path>", "LabVIEW CLI executable (default "+config.DefaultCLI+")", widthFlag)
	w.HelpFlag("--strict", "Exit with status 1 when a run fails", widthFlag)
	w.HelpFlag("--dry-run", "Print the command line without running it", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)

	w.HelpSection("Environment:")
	w.HelpEnvVar(config.DefaultEnvPrefix+"<version>", "Full path of LabVIEW.exe for that version", widthEnvVar)
	w.HelpEnvVar(labview.ProgramFilesX86Env, "Root of 32-bit installations", widthEnvVar)
	w.HelpEnvVar(labview.ProgramFilesEnv, "Root of 64-bit installations", widthEnvVar)
	w.HelpEnvVar(config.EnvConfig, "Configuration file used when --config is absent", widthEnvVar)

	w.HelpSection("Examples:")
	w.HelpExample(`lvunit C:\src\app.lvproj C:\out\app.xml 2021 64`, "Run the unit tests of app.lvproj with 64-bit LabVIEW 2021")
	w.HelpExample("lvunit --config lvunit.yaml --strict", "Run every configured project and fail on any failure")
	w.Println("")
}
