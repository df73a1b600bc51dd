package rsetup

import (
	"fmt"
	"os"
	"strings"
)

// ParseMode parses a generation mode name, case-insensitively.
func ParseMode(input string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(input))
	for _, m := range ModeValues() {
		if modeNames[m] == name {
			return m, nil
		}
	}
	return ModeAny, fmt.Errorf("unknown generation mode %q (available: %s)", input, modeList())
}

func modeList() string {
	names := make([]string, 0, len(ModeValues()))
	for _, m := range ModeValues() {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

// modeFromEnv reads the RSETUP_FFI_MODE override. An invalid value
// falls back to ModeAny with an advisory instead of failing.
func modeFromEnv() (Mode, string) {
	raw := os.Getenv(envFFIMode)
	if raw == "" {
		return ModeAny, ""
	}
	m, err := ParseMode(raw)
	if err != nil {
		return ModeAny, fmt.Sprintf("%s=%q is not a valid generation mode (available: %s); using %q", envFFIMode, raw, modeList(), ModeAny)
	}
	return m, ""
}

// ResolvePlan gates the requested mode on the probe outcome and returns
// the builders a generator should run. API and Both hard-require a
// successful probe; Any uses both flavors when the probe succeeded and
// degrades to ABI-only when it did not.
func ResolvePlan(requested Mode, status Status, copts CompilerOptions) (*Plan, error) {
	switch requested {
	case ModeABI:
		return &Plan{Mode: ModeABI, Builders: []Builder{BuilderABI}}, nil
	case ModeAPI:
		if status != StatusOK {
			return nil, &ModeError{Mode: ModeAPI, Status: status}
		}
		return &Plan{Mode: ModeAPI, Builders: []Builder{BuilderAPI}, Options: copts}, nil
	case ModeBoth:
		if status != StatusOK {
			return nil, &ModeError{Mode: ModeBoth, Status: status}
		}
		return &Plan{Mode: ModeBoth, Builders: []Builder{BuilderABI, BuilderAPI}, Options: copts}, nil
	case ModeAny:
		if status != StatusOK {
			return &Plan{Mode: ModeABI, Builders: []Builder{BuilderABI}}, nil
		}
		return &Plan{Mode: ModeBoth, Builders: []Builder{BuilderABI, BuilderAPI}, Options: copts}, nil
	default:
		return nil, fmt.Errorf("unknown generation mode %q", requested)
	}
}

// Plan resolves the situation's requested mode against its probe
// outcome.
func (s *Situation) Plan() (*Plan, error) {
	return ResolvePlan(s.Mode, s.Probe, s.Options)
}
