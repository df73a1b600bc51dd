package rsetup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Environment variables consulted during detection.
const (
	envRHome        = "R_HOME"
	envREnviron     = "R_ENVIRON"
	envREnvironUser = "R_ENVIRON_USER"
	envFFIMode      = "RSETUP_FFI_MODE"
)

// ErrRNotFound is returned when no R installation can be located.
var ErrRNotFound = errors.New("R not found")

// LocateR finds the R home directory. The R_HOME environment variable
// wins when it names an existing directory; otherwise the R launcher is
// asked via `R RHOME`. The returned advisories carry non-fatal
// observations made along the way.
func LocateR(ctx context.Context, opts ...Option) (string, []string, error) {
	s := newSettings(opts)
	home, _, advisories, err := locateR(ctx, s)
	return home, advisories, err
}

func locateR(ctx context.Context, s *settings) (string, RHomeSource, []string, error) {
	if s.rHome != "" {
		return s.rHome, RHomeSourceExplicit, nil, nil
	}

	var advisories []string
	if env := os.Getenv(envRHome); env != "" {
		if dirExists(env) {
			return env, RHomeSourceEnv, nil, nil
		}
		advisories = append(advisories, fmt.Sprintf("%s is set to %q but that directory does not exist; ignoring it", envRHome, env))
	}

	if s.fileRHome != "" {
		return s.fileRHome, RHomeSourceConfig, advisories, nil
	}

	home, warns, err := rHomeFromSubprocess(ctx, s)
	advisories = append(advisories, warns...)
	if err != nil {
		return "", RHomeSourceUnknown, advisories, err
	}
	return home, RHomeSourceSubprocess, advisories, nil
}

// rHomeFromSubprocess asks the R launcher for its home directory.
// Leading lines starting with WARNING are tolerated in any number and
// surface as advisories; the first remaining non-empty line is the home.
func rHomeFromSubprocess(ctx context.Context, s *settings) (string, []string, error) {
	s.logger.Debug("query", "cmd", s.rbin, "args", []string{"RHOME"})
	out, err := s.runner.Output(ctx, s.rbin, "RHOME")
	if err != nil {
		return "", nil, fmt.Errorf("%w: running %s RHOME: %w", ErrRNotFound, s.rbin, err)
	}

	var advisories []string
	for _, line := range outputLines(out) {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "WARNING") {
			advisories = append(advisories, trimmed)
			continue
		}
		return trimmed, advisories, nil
	}
	return "", advisories, fmt.Errorf("%w: %s RHOME produced no usable output", ErrRNotFound, s.rbin)
}

// environAdvisories reports R environment overrides that can make the
// environment seen now differ from the one bindings run under later.
func environAdvisories(home string) []string {
	var advisories []string
	for _, env := range []string{envREnviron, envREnvironUser} {
		if v := os.Getenv(env); v != "" {
			advisories = append(advisories, fmt.Sprintf("%s is set to %q; the R environment used during configuration may differ from run time", env, v))
		}
	}
	if home == "" {
		return advisories
	}
	for _, path := range []string{
		filepath.Join(home, "etc", "Renviron.site"),
		filepath.Join(home, "Renviron.site"),
	} {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		adv := fmt.Sprintf("R environment site file %s is present", path)
		if keys := environKeys(path); len(keys) > 0 {
			adv += " (sets: " + strings.Join(keys, ", ") + ")"
		}
		advisories = append(advisories, adv)
		break
	}
	return advisories
}

// environKeys lists the variable names an Renviron-style file assigns.
// Content never alters behavior; the names only enrich an advisory.
func environKeys(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
