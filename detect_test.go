//go:build unix

package rsetup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// detectFixture pins down everything Detect reads from the host: a fake
// compiler behind $CC, cleared R environment variables, and a canned
// runner for the R subprocesses.
func detectFixture(t *testing.T, out map[string]string, errs map[string]error) []Option {
	t.Helper()
	cc := writeScript(t, "cc-ok", "exit 0\n")
	t.Setenv("CC", cc)
	t.Setenv(envRHome, "")
	t.Setenv(envREnviron, "")
	t.Setenv(envREnvironUser, "")
	t.Setenv(envFFIMode, "")
	return []Option{WithRunner(&fakeRunner{out: out, errs: errs})}
}

func happyROutput(home string) map[string]string {
	return map[string]string{
		"R RHOME":                 home + "\n",
		"R --version":             "R version 4.3.1 (2023-06-16) -- \"Beagle Scouts\"\n",
		"R CMD config --cppflags": "-I" + filepath.Join(home, "include") + "\n",
		"R CMD config --ldflags":  "-L" + filepath.Join(home, "lib") + " -lR\n",
	}
}

// installLibR creates the shared library file where LibRPath expects it
// and points the loader path at its directory.
func installLibR(t *testing.T, home string) {
	t.Helper()
	libr := LibRPath(home)
	if err := os.MkdirAll(filepath.Dir(libr), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(libr, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(loaderPathEnv(runtime.GOOS), filepath.Dir(libr))
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	t.Run("complete installation", func(t *testing.T) {
		home := t.TempDir()
		opts := detectFixture(t, happyROutput(home), nil)
		installLibR(t, home)

		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.OS != runtime.GOOS || sit.Arch != runtime.GOARCH {
			t.Errorf("platform = %s/%s, want %s/%s", sit.OS, sit.Arch, runtime.GOOS, runtime.GOARCH)
		}
		if sit.Kernel == "" {
			t.Error("Kernel is empty, want the uname release")
		}
		if sit.Compiler == "" {
			t.Error("Compiler is empty, want the resolved $CC")
		}
		if sit.RHome != home {
			t.Errorf("RHome = %q, want %q", sit.RHome, home)
		}
		if sit.RHomeFrom != RHomeSourceSubprocess {
			t.Errorf("RHomeFrom = %v, want %v", sit.RHomeFrom, RHomeSourceSubprocess)
		}
		if sit.RVersion != "4.3.1" {
			t.Errorf("RVersion = %q, want %q", sit.RVersion, "4.3.1")
		}
		if want := "-I" + filepath.Join(home, "include"); sit.CPPFlags != want {
			t.Errorf("CPPFlags = %q, want %q", sit.CPPFlags, want)
		}
		if len(sit.Options.IncludeDirs) != 1 || sit.Options.IncludeDirs[0] != filepath.Join(home, "include") {
			t.Errorf("IncludeDirs = %v, want the parsed include dir", sit.Options.IncludeDirs)
		}
		if len(sit.Options.Libraries) != 1 || sit.Options.Libraries[0] != "R" {
			t.Errorf("Libraries = %v, want [R]", sit.Options.Libraries)
		}
		if sit.LibR != LibRPath(home) {
			t.Errorf("LibR = %q, want %q", sit.LibR, LibRPath(home))
		}
		if sit.Probe != StatusOK {
			t.Errorf("Probe = %v, want %v", sit.Probe, StatusOK)
		}
		if sit.Mode != ModeAny {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeAny)
		}
		if len(sit.Advisories) != 0 {
			t.Errorf("Advisories = %v, want none", sit.Advisories)
		}

		plan, err := sit.Plan()
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if plan.Mode != ModeBoth || len(plan.Builders) != 2 {
			t.Errorf("plan = %+v, want both builders", plan)
		}
	})

	t.Run("R below the supported minimum", func(t *testing.T) {
		home := t.TempDir()
		out := happyROutput(home)
		out["R --version"] = "R version 3.1.0 (2014-04-10)\n"
		opts := detectFixture(t, out, nil)
		installLibR(t, home)

		sit, err := Detect(ctx, opts...)
		var verErr *VersionError
		if !errors.As(err, &verErr) {
			t.Fatalf("Detect() error = %v, want a *VersionError", err)
		}
		if verErr.Found.String() != "3.1.0" || verErr.Minimum.String() != "3.3.0" {
			t.Errorf("VersionError = %v, want 3.1.0 vs 3.3.0", verErr)
		}
		if sit.RVersion != "3.1.0" {
			t.Errorf("RVersion = %q, want %q", sit.RVersion, "3.1.0")
		}
		if sit.Probe != StatusOK {
			t.Errorf("Probe = %v, want %v (detection continues past the version)", sit.Probe, StatusOK)
		}
	})

	t.Run("undeterminable version is an advisory", func(t *testing.T) {
		home := t.TempDir()
		out := happyROutput(home)
		out["R --version"] = "R Under development (unstable) (2024-01-08 r85797)\n"
		opts := detectFixture(t, out, nil)
		installLibR(t, home)

		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.RVersion != "" {
			t.Errorf("RVersion = %q, want empty", sit.RVersion)
		}
		if !containsAdvisory(sit.Advisories, "unable to determine the R version") {
			t.Errorf("Advisories = %v, want a version advisory", sit.Advisories)
		}
	})

	t.Run("no R installation", func(t *testing.T) {
		opts := detectFixture(t, nil, map[string]error{"R RHOME": errors.New("not installed")})

		sit, err := Detect(ctx, opts...)
		if !errors.Is(err, ErrRNotFound) {
			t.Fatalf("Detect() error = %v, want ErrRNotFound", err)
		}
		if sit == nil {
			t.Fatal("Detect() returned a nil Situation alongside the error")
		}
		if sit.RHome != "" {
			t.Errorf("RHome = %q, want empty", sit.RHome)
		}
		if sit.Probe != StatusOK {
			t.Errorf("Probe = %v, want %v (probed despite missing R)", sit.Probe, StatusOK)
		}
	})

	t.Run("build flag query failure is an advisory", func(t *testing.T) {
		home := t.TempDir()
		out := happyROutput(home)
		delete(out, "R CMD config --cppflags")
		opts := detectFixture(t, out, map[string]error{"R CMD config --cppflags": errors.New("boom")})
		installLibR(t, home)

		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if !containsAdvisory(sit.Advisories, "unable to query R build flags") {
			t.Errorf("Advisories = %v, want a build flag advisory", sit.Advisories)
		}
		if len(sit.Options.Libraries) != 0 {
			t.Errorf("Libraries = %v, want none after a failed query", sit.Options.Libraries)
		}
	})

	t.Run("missing shared library is an advisory", func(t *testing.T) {
		home := t.TempDir()
		opts := detectFixture(t, happyROutput(home), nil)

		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if !containsAdvisory(sit.Advisories, "R shared library not found") {
			t.Errorf("Advisories = %v, want a shared library advisory", sit.Advisories)
		}
	})

	t.Run("environment override advisory passes through", func(t *testing.T) {
		home := t.TempDir()
		opts := detectFixture(t, happyROutput(home), nil)
		installLibR(t, home)
		t.Setenv(envREnviron, "/etc/R/Renviron.custom")

		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if !containsAdvisory(sit.Advisories, envREnviron) {
			t.Errorf("Advisories = %v, want one naming %s", sit.Advisories, envREnviron)
		}
	})
}

func TestDetect_ModePrecedence(t *testing.T) {
	ctx := context.Background()

	newFixture := func(t *testing.T) []Option {
		home := t.TempDir()
		opts := detectFixture(t, happyROutput(home), nil)
		installLibR(t, home)
		return opts
	}

	t.Run("explicit option beats the environment", func(t *testing.T) {
		opts := newFixture(t)
		t.Setenv(envFFIMode, "abi")
		sit, err := Detect(ctx, append(opts, WithMode(ModeAPI))...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.Mode != ModeAPI {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeAPI)
		}
	})

	t.Run("environment alone", func(t *testing.T) {
		opts := newFixture(t)
		t.Setenv(envFFIMode, "abi")
		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.Mode != ModeABI {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeABI)
		}
	})

	t.Run("environment beats the project file", func(t *testing.T) {
		opts := newFixture(t)
		t.Setenv(envFFIMode, "api")
		sit, err := Detect(ctx, append(opts, fileModeOption(ModeABI))...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.Mode != ModeAPI {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeAPI)
		}
	})

	t.Run("project file alone", func(t *testing.T) {
		opts := newFixture(t)
		sit, err := Detect(ctx, append(opts, fileModeOption(ModeBoth))...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.Mode != ModeBoth {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeBoth)
		}
	})

	t.Run("unknown environment value degrades to any", func(t *testing.T) {
		opts := newFixture(t)
		t.Setenv(envFFIMode, "turbo")
		sit, err := Detect(ctx, opts...)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if sit.Mode != ModeAny {
			t.Errorf("Mode = %v, want %v", sit.Mode, ModeAny)
		}
		if !containsAdvisory(sit.Advisories, "turbo") {
			t.Errorf("Advisories = %v, want one naming the bad value", sit.Advisories)
		}
	})
}

func containsAdvisory(advisories []string, substr string) bool {
	for _, a := range advisories {
		if strings.Contains(a, substr) {
			return true
		}
	}
	return false
}
