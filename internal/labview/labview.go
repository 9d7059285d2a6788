// Package labview resolves the installation path of a LabVIEW executable
// for a given release year and bitness.
package labview

import (
	"os"
	"strings"
)

// Bitness selects which program-files root a LabVIEW installation lives under.
type Bitness string

const (
	Bitness32 Bitness = "32"
	Bitness64 Bitness = "64"
)

// Valid reports whether b is one of the recognised bitness values.
func (b Bitness) Valid() bool {
	return b == Bitness32 || b == Bitness64
}

// ValidBitness returns the recognised bitness values for help and error text.
func ValidBitness() []string {
	return []string{string(Bitness32), string(Bitness64)}
}

const (
	// DefaultEnvPrefix is prepended to the version to form the override variable name,
	// e.g. labviewPath_2021.
	DefaultEnvPrefix = "labviewPath_"

	// Environment variables holding the Windows program-files roots.
	ProgramFilesX86Env = "ProgramFiles(x86)"
	ProgramFilesEnv    = "ProgramFiles"

	// Fallback roots used when the variables above are not set (e.g. off Windows).
	DefaultProgramFilesX86 = `C:\Program Files (x86)`
	DefaultProgramFiles    = `C:\Program Files`

	vendorDir  = "National Instruments"
	executable = "LabVIEW.exe"
)

// LookupFunc retrieves the value of an environment variable, reporting whether it is set.
// os.LookupEnv satisfies it.
type LookupFunc func(key string) (string, bool)

// Resolver maps a LabVIEW version and bitness to the path of LabVIEW.exe.
type Resolver struct {
	envPrefix string
	lookup    LookupFunc
}

// NewResolver creates a resolver reading overrides from the process environment.
// An empty prefix selects DefaultEnvPrefix.
func NewResolver(envPrefix string) *Resolver {
	return NewResolverWithLookup(envPrefix, os.LookupEnv)
}

// NewResolverWithLookup creates a resolver with a custom environment lookup (for testing).
func NewResolverWithLookup(envPrefix string, lookup LookupFunc) *Resolver {
	if envPrefix == "" {
		envPrefix = DefaultEnvPrefix
	}
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return &Resolver{envPrefix: envPrefix, lookup: lookup}
}

// OverrideVar returns the name of the environment variable that overrides
// path resolution for version.
func (r *Resolver) OverrideVar(version string) string {
	return r.envPrefix + version
}

// Resolve returns the LabVIEW executable path for version and bitness.
//
// A set override variable wins regardless of bitness and is returned verbatim.
// Otherwise the path is built under the bitness-specific program-files root.
// An unrecognised bitness yields ("", false); it is not treated as an error here.
func (r *Resolver) Resolve(version string, bitness Bitness) (string, bool) {
	if path, ok := r.lookup(r.OverrideVar(version)); ok {
		return path, true
	}

	var root string
	switch bitness {
	case Bitness32:
		root = r.envOr(ProgramFilesX86Env, DefaultProgramFilesX86)
	case Bitness64:
		root = r.envOr(ProgramFilesEnv, DefaultProgramFiles)
	default:
		return "", false
	}

	return joinWindows(root, vendorDir, "LabVIEW "+version, executable), true
}

func (r *Resolver) envOr(key, fallback string) string {
	if v, ok := r.lookup(key); ok && v != "" {
		return v
	}
	return fallback
}

// joinWindows joins path elements with backslashes. filepath.Join is not used
// because the result must be a Windows path even when built on another OS.
func joinWindows(root string, elem ...string) string {
	root = strings.TrimRight(root, `\/`)
	return root + `\` + strings.Join(elem, `\`)
}
