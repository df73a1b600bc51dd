package rsetup

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Status classifies the outcome of a compiler capability probe.
type Status int

const (
	// StatusOK means the probe source compiled and linked.
	StatusOK Status = iota
	// StatusCompileError means a toolchain was found but compiling or
	// linking against the requested headers/libraries failed.
	StatusCompileError
	// StatusNoCompiler means no usable C toolchain could be resolved.
	StatusNoCompiler
	// StatusPlatformError means the probe could not run at all
	// (unsupported platform, workspace setup failure, spawn failure).
	StatusPlatformError
)

var statusNames = map[Status]string{
	StatusOK:            "ok",
	StatusCompileError:  "compile_error",
	StatusNoCompiler:    "no_compiler",
	StatusPlatformError: "platform_error",
}

var statusMessages = map[Status]string{
	StatusOK:            "ok",
	StatusCompileError:  "unable to compile R C extensions - missing headers or R not compiled as a library?",
	StatusNoCompiler:    "unable to compile R C extensions - no C compiler?",
	StatusPlatformError: "unable to compile R C extensions - platform error",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Message returns the human-readable explanation for the status.
func (s Status) Message() string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return s.String()
}

// MarshalText renders the status name, so JSON output stays readable.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Mode selects which FFI binding flavors a downstream generator builds.
type Mode int

const (
	// ModeAny builds compiled bindings when the toolchain probe succeeds
	// and falls back to dynamic-loading bindings otherwise.
	ModeAny Mode = iota
	// ModeABI builds dynamic-loading bindings only; no C toolchain needed.
	ModeABI
	// ModeAPI builds compiled bindings only; requires a successful probe.
	ModeAPI
	// ModeBoth builds both flavors; requires a successful probe.
	ModeBoth
)

var modeNames = map[Mode]string{
	ModeAny:  "any",
	ModeABI:  "abi",
	ModeAPI:  "api",
	ModeBoth: "both",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText renders the mode name, so JSON output stays readable.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// ModeValues returns all selectable modes in display order.
func ModeValues() []Mode {
	return []Mode{ModeAny, ModeABI, ModeAPI, ModeBoth}
}

// RHomeSource records how the R home directory was determined.
type RHomeSource int

const (
	// RHomeSourceUnknown means R home was not determined.
	RHomeSourceUnknown RHomeSource = iota
	// RHomeSourceExplicit means the caller supplied it (flag or API).
	RHomeSourceExplicit
	// RHomeSourceEnv means the R_HOME environment variable supplied it.
	RHomeSourceEnv
	// RHomeSourceConfig means the project config file supplied it.
	RHomeSourceConfig
	// RHomeSourceSubprocess means `R RHOME` reported it.
	RHomeSourceSubprocess
)

var rHomeSourceNames = map[RHomeSource]string{
	RHomeSourceUnknown:    "unknown",
	RHomeSourceExplicit:   "explicit",
	RHomeSourceEnv:        "R_HOME",
	RHomeSourceConfig:     "config",
	RHomeSourceSubprocess: "R RHOME",
}

func (s RHomeSource) String() string {
	if name, ok := rHomeSourceNames[s]; ok {
		return name
	}
	return fmt.Sprintf("RHomeSource(%d)", int(s))
}

// MarshalText renders the source name, so JSON output stays readable.
func (s RHomeSource) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CompilerOptions carries the include, library, and extra flag inputs
// for compiling and linking against an R installation. A fresh value is
// derived per run from `R CMD config` output plus caller extras; it is
// never persisted.
type CompilerOptions struct {
	Libraries    []string
	IncludeDirs  []string
	LibraryDirs  []string
	ExtraCFlags  []string
	ExtraLDFlags []string
}

// addCompileFlags classifies preprocessor/compiler tokens: -I<dir> goes
// to IncludeDirs, everything else is kept as an extra compile flag.
func (o *CompilerOptions) addCompileFlags(tokens []string) {
	for _, tok := range tokens {
		switch {
		case len(tok) > 2 && tok[:2] == "-I":
			o.IncludeDirs = append(o.IncludeDirs, tok[2:])
		default:
			o.ExtraCFlags = append(o.ExtraCFlags, tok)
		}
	}
}

// addLinkFlags classifies linker tokens: -L<dir> goes to LibraryDirs,
// -l<name> to Libraries, everything else is kept as an extra link flag.
func (o *CompilerOptions) addLinkFlags(tokens []string) {
	for _, tok := range tokens {
		switch {
		case len(tok) > 2 && tok[:2] == "-L":
			o.LibraryDirs = append(o.LibraryDirs, tok[2:])
		case len(tok) > 2 && tok[:2] == "-l":
			o.Libraries = append(o.Libraries, tok[2:])
		default:
			o.ExtraLDFlags = append(o.ExtraLDFlags, tok)
		}
	}
}

// merge appends the other options after the receiver's own.
func (o *CompilerOptions) merge(other CompilerOptions) {
	o.Libraries = append(o.Libraries, other.Libraries...)
	o.IncludeDirs = append(o.IncludeDirs, other.IncludeDirs...)
	o.LibraryDirs = append(o.LibraryDirs, other.LibraryDirs...)
	o.ExtraCFlags = append(o.ExtraCFlags, other.ExtraCFlags...)
	o.ExtraLDFlags = append(o.ExtraLDFlags, other.ExtraLDFlags...)
}

// Builder identifies a binding flavor a downstream generator can emit.
type Builder string

const (
	// BuilderABI is the dynamic-loading flavor (no compiled parts).
	BuilderABI Builder = "abi"
	// BuilderAPI is the compiled flavor (needs the C toolchain inputs).
	BuilderAPI Builder = "api"
)

// Plan is the resolved build instruction set handed to a binding
// generator: the effective mode, the flavors to emit, and the compile
// and link inputs the compiled flavor must use.
type Plan struct {
	Mode     Mode
	Builders []Builder
	Options  CompilerOptions
}

// Situation aggregates everything detected about the host: platform,
// R installation, toolchain inputs, probe outcome, and requested mode.
// Advisories collect non-fatal observations worth surfacing.
type Situation struct {
	OS     string
	Arch   string
	Kernel string

	RHome     string
	RHomeFrom RHomeSource
	RVersion  string

	Compiler string
	CPPFlags string
	LDFlags  string
	Options  CompilerOptions
	LibR     string

	Probe Status
	Mode  Mode

	Advisories []string
}

// ModeError reports a generation mode whose toolchain requirement is
// not met.
type ModeError struct {
	Mode   Mode
	Status Status
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("generation mode %q requires a working R C toolchain: %s", e.Mode, e.Status.Message())
}

// VersionError reports an R installation older than the minimum
// supported release.
type VersionError struct {
	Found   *semver.Version
	Minimum *semver.Version
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("R version %s is older than the minimum supported %s", e.Found, e.Minimum)
}
