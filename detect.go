package rsetup

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/Masterminds/semver/v3"
)

// minRVersion is the oldest R release the generated bindings support.
var minRVersion = semver.MustParse("3.3.0")

// Detect inspects the host in one shot: platform, R installation,
// R version, toolchain inputs, compiler probe, and requested generation
// mode. The returned Situation is populated as far as detection got
// even when the error is non-nil.
//
// The error reports conditions a configure step must treat as fatal:
// no R installation (matches ErrRNotFound) or an R release below the
// supported minimum (*VersionError). Everything else degrades into
// advisories and the probe status.
func Detect(ctx context.Context, opts ...Option) (*Situation, error) {
	s := newSettings(opts)

	sit := &Situation{
		OS:     runtime.GOOS,
		Arch:   runtime.GOARCH,
		Kernel: kernelRelease(),
	}

	// Requested mode: explicit option, then environment, then project
	// config, then the default.
	switch {
	case s.modeSet:
		sit.Mode = s.mode
	case os.Getenv(envFFIMode) != "":
		m, adv := modeFromEnv()
		sit.Mode = m
		if adv != "" {
			sit.Advisories = append(sit.Advisories, adv)
		}
	case s.fileModeSet:
		sit.Mode = s.fileMode
	default:
		sit.Mode = ModeAny
	}

	if cc, err := resolveCompiler(s.compiler); err == nil {
		sit.Compiler = cc
	}

	home, source, advisories, err := locateR(ctx, s)
	sit.Advisories = append(sit.Advisories, advisories...)
	sit.Advisories = append(sit.Advisories, environAdvisories(home)...)
	if err != nil {
		// Probe the toolchain anyway so the report stays useful.
		sit.Options = s.extra
		sit.Probe = ProbeCompiler(ctx, CompilerOptions{}, opts...)
		return sit, err
	}
	sit.RHome = home
	sit.RHomeFrom = source

	var verErr error
	v, raw, err := queryRVersion(ctx, s, home)
	sit.RVersion = raw
	if err != nil {
		sit.Advisories = append(sit.Advisories, fmt.Sprintf("unable to determine the R version: %v", err))
	} else if v.LessThan(minRVersion) {
		verErr = &VersionError{Found: v, Minimum: minRVersion}
	}

	copts, rawCPP, rawLD, err := queryCompilerOptions(ctx, s, home)
	if err != nil {
		sit.Advisories = append(sit.Advisories, fmt.Sprintf("unable to query R build flags: %v", err))
	}
	sit.CPPFlags = rawCPP
	sit.LDFlags = rawLD

	var merged CompilerOptions
	merged.merge(copts)
	merged.merge(s.extra)
	sit.Options = merged

	libr := LibRPath(home)
	sit.LibR = libr
	if _, err := os.Stat(libr); err == nil {
		if adv := loaderPathAdvisory(libr); adv != "" {
			sit.Advisories = append(sit.Advisories, adv)
		}
	} else {
		sit.Advisories = append(sit.Advisories, fmt.Sprintf("R shared library not found at %s; R may not be built as a library", libr))
	}

	sit.Probe = ProbeCompiler(ctx, copts, opts...)

	return sit, verErr
}
