package rsetup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// rBinaryPath returns the R launcher inside an R home directory.
func rBinaryPath(home string) string {
	return filepath.Join(home, "bin", "R")
}

// queryConfigFlags runs `R CMD config <flag>` and returns the flag line
// split into tokens, plus the raw line. R may print noise before the
// payload, so the last non-empty line wins.
func queryConfigFlags(ctx context.Context, s *settings, home, flag string) ([]string, string, error) {
	rbin := rBinaryPath(home)
	s.logger.Debug("query", "cmd", rbin, "args", []string{"CMD", "config", flag})
	out, err := s.runner.Output(ctx, rbin, "CMD", "config", flag)
	if err != nil {
		return nil, "", fmt.Errorf("R CMD config %s: %w", flag, err)
	}
	lines := outputLines(out)
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return splitFlags(line), line, nil
		}
	}
	return nil, "", nil
}

// queryCompilerOptions derives the compile and link inputs for building
// against the R installation at home.
func queryCompilerOptions(ctx context.Context, s *settings, home string) (CompilerOptions, string, string, error) {
	var copts CompilerOptions

	cpp, rawCPP, err := queryConfigFlags(ctx, s, home, "--cppflags")
	if err != nil {
		return copts, "", "", err
	}
	copts.addCompileFlags(cpp)

	ld, rawLD, err := queryConfigFlags(ctx, s, home, "--ldflags")
	if err != nil {
		return copts, rawCPP, "", err
	}
	copts.addLinkFlags(ld)

	return copts, rawCPP, rawLD, nil
}

// queryRVersion asks the R installation for its version. The raw token
// is returned even when it does not parse.
func queryRVersion(ctx context.Context, s *settings, home string) (*semver.Version, string, error) {
	rbin := rBinaryPath(home)
	s.logger.Debug("query", "cmd", rbin, "args", []string{"--version"})
	out, err := s.runner.Output(ctx, rbin, "--version")
	if err != nil {
		return nil, "", fmt.Errorf("R --version: %w", err)
	}
	return parseRVersion(out)
}

// parseRVersion extracts the version from `R --version` output, whose
// first line looks like:
//
//	R version 4.3.1 (2023-06-16) -- "Beagle Scouts"
func parseRVersion(out string) (*semver.Version, string, error) {
	for _, line := range outputLines(out) {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[0] == "R" && fields[1] == "version" {
			v, err := semver.NewVersion(fields[2])
			if err != nil {
				return nil, fields[2], fmt.Errorf("parse R version %q: %w", fields[2], err)
			}
			return v, fields[2], nil
		}
	}
	return nil, "", fmt.Errorf("no version line in R --version output")
}

// RVersion locates R and returns the version string it reports.
func RVersion(ctx context.Context, opts ...Option) (string, error) {
	s := newSettings(opts)
	home, _, _, err := locateR(ctx, s)
	if err != nil {
		return "", err
	}
	_, raw, err := queryRVersion(ctx, s, home)
	if raw != "" {
		return raw, nil
	}
	return "", err
}

// LibRPath returns where the R shared library is expected inside home
// on the current platform. The path is informational: ABI-mode
// consumers load it at run time, nothing is opened here.
func LibRPath(home string) string {
	return librPathFor(runtime.GOOS, home)
}

func librPathFor(goos, home string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "lib", "libR.dylib")
	case "windows":
		return filepath.Join(home, "bin", "x64", "R.dll")
	default:
		return filepath.Join(home, "lib", "libR.so")
	}
}

// loaderPathAdvisory reports when the directory holding libR is absent
// from the dynamic loader search path. Empty means nothing to report.
func loaderPathAdvisory(libr string) string {
	env := loaderPathEnv(runtime.GOOS)
	dir := filepath.Dir(libr)
	for _, p := range filepath.SplitList(os.Getenv(env)) {
		if p == dir {
			return ""
		}
	}
	return fmt.Sprintf("%s does not contain %s; dynamic loading of libR may fail", env, dir)
}

func loaderPathEnv(goos string) string {
	switch goos {
	case "darwin":
		return "DYLD_LIBRARY_PATH"
	case "windows":
		return "PATH"
	default:
		return "LD_LIBRARY_PATH"
	}
}

// splitFlags splits a flag line the way a POSIX shell would: single
// quotes are literal, double quotes group, a backslash escapes the next
// byte outside single quotes.
func splitFlags(line string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   byte
		escaped bool
		inToken bool
	)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case escaped:
			current.WriteByte(c)
			escaped = false
		case quote == '\'':
			if c == '\'' {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '\\':
			escaped = true
			inToken = true
		case quote == '"':
			if c == '"' {
				quote = 0
			} else {
				current.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inToken = true
		case c == ' ' || c == '\t':
			if inToken {
				tokens = append(tokens, current.String())
				current.Reset()
				inToken = false
			}
		default:
			current.WriteByte(c)
			inToken = true
		}
	}
	if inToken {
		tokens = append(tokens, current.String())
	}
	return tokens
}
