//go:build !unix

package rsetup

import "context"

// ProbeCompiler reports StatusPlatformError: driving a C toolchain with
// cc-style arguments is only implemented for unix hosts.
func ProbeCompiler(_ context.Context, _ CompilerOptions, _ ...Option) Status {
	return StatusPlatformError
}
