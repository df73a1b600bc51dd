// Package rsetup detects what an R binding generator can build on the
// current host.
//
// It locates the R installation, reads the compile and link flags R
// itself was configured with, probes whether the host C toolchain can
// actually build against them, and gates the requested FFI generation
// mode on the outcome. A generator runs this once, up front, and either
// gets a concrete build plan or a clear reason why compiled bindings
// are off the table.
//
// # API Model
//
// rsetup exposes two API families:
//   - [Detect] for one-shot diagnostics collection into a [Situation],
//     resolved into a [Plan] via [Situation.Plan]
//   - [ProbeCompiler] and [ResolvePlan] as the building blocks, for
//     callers that manage R discovery themselves
//
// All failure modes of the probe are data ([Status] values), never
// errors: a missing compiler is a fact about the host, not an exception.
// Errors are reserved for conditions a configure step cannot proceed
// past, such as a missing R installation ([ErrRNotFound]) or an
// unsupported R release ([VersionError]).
//
// # Quick Configure
//
// Resolve a build plan, failing when the requested mode cannot be met:
//
//	sit, err := rsetup.Detect(ctx, rsetup.WithMode(rsetup.ModeAPI))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	plan, err := sit.Plan()
//	if err != nil {
//	    log.Fatal(err) // *rsetup.ModeError: probe failed but API was requested
//	}
//	fmt.Println(plan.Builders) // [abi api] or [abi]
//
// # Probe Only
//
// Check the toolchain against explicit inputs:
//
//	status := rsetup.ProbeCompiler(ctx, rsetup.CompilerOptions{
//	    Libraries:   []string{"R"},
//	    IncludeDirs: []string{"/opt/R/include"},
//	    LibraryDirs: []string{"/opt/R/lib"},
//	})
//	if status != rsetup.StatusOK {
//	    fmt.Println(status.Message())
//	}
//
// The probe compiles and links a minimal program in a temporary
// directory that is always removed, succeed or fail. It is stateless:
// identical inputs against an unchanged environment classify
// identically.
//
// # Subprocesses
//
// Every external invocation (the R launcher, `R CMD config`, the C
// compiler) goes through the [Runner] seam, so tests can substitute
// canned output and callers can impose policy. Nothing in this package
// retries, times out, or parallelizes: a hung compiler hangs the probe
// unless the context says otherwise.
package rsetup
