package rsetup

import (
	"fmt"
	"os"
	"os/exec"
)

// compilerNames are the toolchain commands tried, in order, when
// neither WithCompiler nor $CC names one.
var compilerNames = []string{"cc", "gcc", "clang"}

// resolveCompiler returns the path of the C compiler to drive.
// Preference order: explicit override, $CC, then the first of
// cc/gcc/clang found on PATH.
func resolveCompiler(override string) (string, error) {
	if override != "" {
		return exec.LookPath(override)
	}
	if cc := os.Getenv("CC"); cc != "" {
		return exec.LookPath(cc)
	}
	for _, name := range compilerNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no C compiler found (tried $CC, %v): %w", compilerNames, exec.ErrNotFound)
}

// probeSource renders the minimal C program the probe compiles. With a
// header it proves the include path works; without one it proves only
// that the toolchain itself works.
func probeSource(header string) string {
	main := "int main(int argc, char **argv) { return 0; }\n"
	if header == "" {
		return main
	}
	return fmt.Sprintf("#include <%s>\n\n%s", header, main)
}
