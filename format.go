package rsetup

import (
	"fmt"
	"strings"
)

// String returns a human-readable report of the detected situation.
func (s *Situation) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Platform: %s/%s", s.OS, s.Arch)
	if s.Kernel != "" {
		fmt.Fprintf(&b, " (%s)", s.Kernel)
	}
	b.WriteString("\n\n")

	b.WriteString("R:\n")
	if s.RHome == "" {
		b.WriteString("  Home: (not found)\n")
	} else {
		fmt.Fprintf(&b, "  Home: %s (from %s)\n", s.RHome, s.RHomeFrom)
		writeValue(&b, "  Version", s.RVersion)
		writeValue(&b, "  Shared library", s.LibR)
	}
	b.WriteString("\n")

	b.WriteString("Build:\n")
	writeValue(&b, "  C compiler", s.Compiler)
	writeValue(&b, "  cppflags", s.CPPFlags)
	writeValue(&b, "  ldflags", s.LDFlags)
	fmt.Fprintf(&b, "  Probe: %s\n", s.Probe)
	if s.Probe != StatusOK {
		fmt.Fprintf(&b, "    %s\n", s.Probe.Message())
	}
	b.WriteString("\n")

	b.WriteString("Generation:\n")
	fmt.Fprintf(&b, "  Requested mode: %s\n", s.Mode)
	plan, err := s.Plan()
	if err != nil {
		fmt.Fprintf(&b, "  Unsatisfied: %v\n", err)
	} else {
		fmt.Fprintf(&b, "  Resolved mode: %s\n", plan.Mode)
		fmt.Fprintf(&b, "  Builders: %s\n", joinBuilders(plan.Builders))
	}

	if len(s.Advisories) > 0 {
		b.WriteString("\nAdvisories:\n")
		for _, adv := range s.Advisories {
			fmt.Fprintf(&b, "  - %s\n", adv)
		}
	}

	return b.String()
}

func writeValue(b *strings.Builder, name, value string) {
	if value == "" {
		value = "(unknown)"
	}
	fmt.Fprintf(b, "%s: %s\n", name, value)
}

// String renders the plan in the compact form the configure command
// prints.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "mode: %s\n", p.Mode)
	fmt.Fprintf(&b, "builders: %s\n", joinBuilders(p.Builders))
	writeTokens(&b, "libraries", p.Options.Libraries)
	writeTokens(&b, "include dirs", p.Options.IncludeDirs)
	writeTokens(&b, "library dirs", p.Options.LibraryDirs)
	writeTokens(&b, "extra cflags", p.Options.ExtraCFlags)
	writeTokens(&b, "extra ldflags", p.Options.ExtraLDFlags)
	return b.String()
}

func writeTokens(b *strings.Builder, name string, tokens []string) {
	if len(tokens) == 0 {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", name, strings.Join(tokens, " "))
}

func joinBuilders(builders []Builder) string {
	names := make([]string, 0, len(builders))
	for _, bl := range builders {
		names = append(names, string(bl))
	}
	return strings.Join(names, ", ")
}
