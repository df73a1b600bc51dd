package main

import (
	"errors"

	"github.com/rbridge/rsetup"
)

// Exit codes for scripting. Zero is success and 1 is the generic
// failure; the rest identify configure failures precisely.
const (
	exitOK      = 0
	exitGeneral = 1

	// exitNoR means no R installation could be located.
	exitNoR = 3
	// exitRVersion means the located R is older than the supported minimum.
	exitRVersion = 4
	// exitProbeFailed means the requested generation mode needs a probe
	// result the host cannot deliver (also used by the probe subcommand).
	exitProbeFailed = 5
)

// exitCodeFor maps detection and resolution errors to exit codes.
func exitCodeFor(err error) int {
	var modeErr *rsetup.ModeError
	var verErr *rsetup.VersionError
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, rsetup.ErrRNotFound):
		return exitNoR
	case errors.As(err, &verErr):
		return exitRVersion
	case errors.As(err, &modeErr):
		return exitProbeFailed
	default:
		return exitGeneral
	}
}
