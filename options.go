package rsetup

import "log/slog"

// DefaultProbeHeader is the header the compiler probe includes unless
// overridden. Compiling against it proves the R development headers are
// reachable.
const DefaultProbeHeader = "Rinterface.h"

// settings holds the configuration for detection and probe operations.
type settings struct {
	runner Runner
	logger *slog.Logger

	rbin      string
	rHome     string // explicit, wins over discovery
	fileRHome string // from project config, loses to R_HOME

	mode        Mode
	modeSet     bool
	fileMode    Mode
	fileModeSet bool

	compiler string
	header   string
	tempDir  string
	extra    CompilerOptions
}

// Option configures detection and probe operations.
type Option func(*settings)

// WithRunner injects the subprocess runner used for R and toolchain
// invocations. The default runs real commands via os/exec.
func WithRunner(r Runner) Option {
	return func(s *settings) {
		s.runner = r
	}
}

// WithLogger sets the logger for subprocess tracing. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// WithRBinary sets the R launcher used for discovery (default "R",
// resolved through PATH).
func WithRBinary(path string) Option {
	return func(s *settings) {
		s.rbin = path
	}
}

// WithRHome sets the R home directory explicitly, skipping discovery.
func WithRHome(dir string) Option {
	return func(s *settings) {
		s.rHome = dir
	}
}

// WithMode sets the requested generation mode, overriding the
// RSETUP_FFI_MODE environment variable.
func WithMode(m Mode) Option {
	return func(s *settings) {
		s.mode = m
		s.modeSet = true
	}
}

// WithCompiler sets the C compiler command, overriding $CC and the
// cc/gcc/clang PATH search.
func WithCompiler(cc string) Option {
	return func(s *settings) {
		s.compiler = cc
	}
}

// WithProbeHeader sets the header the probe source includes. An empty
// string compiles a bare main, which only proves the toolchain works.
func WithProbeHeader(name string) Option {
	return func(s *settings) {
		s.header = name
	}
}

// WithTempDir sets the parent directory for the probe workspace.
// This is primarily for testing; production code uses the system default.
func WithTempDir(dir string) Option {
	return func(s *settings) {
		s.tempDir = dir
	}
}

// WithCompilerOptions appends extra compile/link inputs to whatever is
// derived from the R installation.
func WithCompilerOptions(extra CompilerOptions) Option {
	return func(s *settings) {
		s.extra.merge(extra)
	}
}

// fileRHomeOption carries the project config file's r.home value. It
// participates in discovery after the R_HOME environment variable.
func fileRHomeOption(dir string) Option {
	return func(s *settings) {
		s.fileRHome = dir
	}
}

// fileModeOption carries the project config file's mode value. It loses
// to WithMode and to the RSETUP_FFI_MODE environment variable.
func fileModeOption(m Mode) Option {
	return func(s *settings) {
		s.fileMode = m
		s.fileModeSet = true
	}
}

func newSettings(opts []Option) *settings {
	s := &settings{
		rbin:   "R",
		header: DefaultProbeHeader,
		runner: execRunner{},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
