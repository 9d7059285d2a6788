package cli

import (
	"fmt"
	"strings"
)

// Options holds parsed command-line flags.
type Options struct {
	Quiet       bool
	Verbose     bool
	Strict      bool
	DryRun      bool
	Help        bool
	ShowVersion bool
	ConfigPath  string
	Timeout     string
	Terminate   string
	CLI         string
}

// valueFlags lists the flags that take a value, either as the next argument
// or after "=".
var valueFlags = map[string]func(*Options, string){
	"--config":    func(o *Options, v string) { o.ConfigPath = v },
	"--timeout":   func(o *Options, v string) { o.Timeout = v },
	"--terminate": func(o *Options, v string) { o.Terminate = v },
	"--cli":       func(o *Options, v string) { o.CLI = v },
}

// parseFlags splits args into options and positional arguments.
//
// Flags may appear anywhere. Everything after "--" is positional, which allows
// a project path that starts with a dash.
func parseFlags(args []string) (*Options, []string, error) {
	opts := &Options{}
	var positionals []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-q", "--quiet":
			opts.Quiet = true
			continue
		case "-v", "--verbose":
			opts.Verbose = true
			continue
		case "--strict":
			opts.Strict = true
			continue
		case "--dry-run":
			opts.DryRun = true
			continue
		case "-h", "--help":
			opts.Help = true
			continue
		case "--version":
			opts.ShowVersion = true
			continue
		case "--":
			positionals = append(positionals, args[i+1:]...)
			i = len(args)
			continue
		}

		name, value, hasValue := strings.Cut(arg, "=")
		if set, ok := valueFlags[name]; ok {
			if !hasValue {
				if i+1 >= len(args) {
					return nil, nil, fmt.Errorf("%s requires a value", name)
				}
				i++
				value = args[i]
			}
			set(opts, value)
			continue
		}

		if strings.HasPrefix(arg, "-") && arg != "-" {
			return nil, nil, fmt.Errorf("unknown flag %q", arg)
		}
		positionals = append(positionals, arg)
	}

	if opts.Quiet && opts.Verbose {
		return nil, nil, fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}

	return opts, positionals, nil
}
