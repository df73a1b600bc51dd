package rsetup

import (
	"context"
	"os/exec"
	"strings"
)

// Runner executes an external command and returns its standard output.
// It is the single seam through which rsetup reaches R and the C
// toolchain, so tests can substitute canned output.
type Runner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
}

// execRunner runs real commands via os/exec. Standard error is not
// captured here; on failure it travels inside exec.ExitError.Stderr.
type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// outputLines splits command output into lines, dropping trailing
// whitespace per line and empty trailing lines.
func outputLines(out string) []string {
	raw := strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimRight(l, " \t"))
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
