//go:build unix

package rsetup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
)

// ProbeCompiler checks whether the host C toolchain can compile and
// link a minimal program against the given options. The probe runs in
// a fresh temporary directory that is removed on every return path.
//
// The probe is stateless and synchronous: identical inputs against an
// unchanged environment classify identically, and concurrent probes
// share nothing. A hung compiler hangs the probe unless ctx says
// otherwise.
func ProbeCompiler(ctx context.Context, copts CompilerOptions, opts ...Option) Status {
	s := newSettings(opts)
	copts.merge(s.extra)

	dir, err := os.MkdirTemp(s.tempDir, "rsetup-probe-")
	if err != nil {
		s.logger.Debug("probe workspace", "err", err)
		return StatusPlatformError
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "probe.c")
	if err := os.WriteFile(src, []byte(probeSource(s.header)), 0o644); err != nil {
		s.logger.Debug("probe source", "err", err)
		return StatusPlatformError
	}

	cc, err := resolveCompiler(s.compiler)
	if err != nil {
		s.logger.Debug("resolve compiler", "err", err)
		return StatusNoCompiler
	}

	obj := filepath.Join(dir, "probe.o")
	compileArgs := []string{"-c", src, "-o", obj}
	for _, inc := range copts.IncludeDirs {
		compileArgs = append(compileArgs, "-I"+inc)
	}
	compileArgs = append(compileArgs, copts.ExtraCFlags...)
	if st := runToolchain(ctx, s, cc, compileArgs); st != StatusOK {
		return st
	}

	exe := filepath.Join(dir, "probe")
	linkArgs := []string{obj, "-o", exe}
	for _, libDir := range copts.LibraryDirs {
		linkArgs = append(linkArgs, "-L"+libDir)
	}
	for _, lib := range copts.Libraries {
		linkArgs = append(linkArgs, "-l"+lib)
	}
	linkArgs = append(linkArgs, copts.ExtraLDFlags...)
	return runToolchain(ctx, s, cc, linkArgs)
}

// runToolchain invokes the compiler once and classifies the result.
func runToolchain(ctx context.Context, s *settings, cc string, args []string) Status {
	s.logger.Debug("toolchain", "cc", cc, "args", args)
	_, err := s.runner.Output(ctx, cc, args...)
	if err == nil {
		return StatusOK
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		s.logger.Debug("toolchain failed", "cc", cc, "stderr", string(exitErr.Stderr))
		return StatusCompileError
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		// The compiler vanished between resolution and spawn.
		return StatusNoCompiler
	default:
		s.logger.Debug("toolchain spawn", "cc", cc, "err", err)
		return StatusPlatformError
	}
}
