package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/AndreyAkinshin/lvunit/internal/labview"
	"github.com/AndreyAkinshin/lvunit/internal/terminate"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks a configuration for errors and returns warnings for non-fatal issues.
//
// A bitness other than 32 or 64 is only a warning: such a run can still
// succeed when the per-version override variable is set.
func Validate(cfg *Config) (warnings []string, err error) {
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, &ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", cfg.Timeout)}
		}
		if d < 0 {
			return nil, &ValidationError{Field: "timeout", Message: "must not be negative"}
		}
	}

	if cfg.Terminate != "" {
		if _, ok := terminate.ParseMode(cfg.Terminate); !ok {
			return nil, &ValidationError{
				Field:   "terminate",
				Message: fmt.Sprintf("must be one of %s, got %q", strings.Join(terminate.ValidModes(), ", "), cfg.Terminate),
			}
		}
	}

	for i, run := range cfg.Runs {
		field := fmt.Sprintf("runs[%d]", i)
		if run.Project == "" {
			return nil, &ValidationError{Field: field + ".project", Message: "required"}
		}
		if run.Report == "" {
			return nil, &ValidationError{Field: field + ".report", Message: "required"}
		}
		if run.Version == "" {
			return nil, &ValidationError{Field: field + ".version", Message: "required"}
		}
		if !labview.Bitness(run.Bitness).Valid() {
			warnings = append(warnings, fmt.Sprintf(
				"%s.bitness: %q is not one of %s; the run needs %s set",
				field, run.Bitness, strings.Join(labview.ValidBitness(), ", "),
				labview.NewResolver(cfg.envPrefix()).OverrideVar(string(run.Version)),
			))
		}
	}

	return warnings, nil
}

func (c *Config) envPrefix() string {
	if c.EnvPrefix == "" {
		return DefaultEnvPrefix
	}
	return c.EnvPrefix
}
