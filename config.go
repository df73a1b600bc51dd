package rsetup

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Project config file names, tried in order.
var configFileNames = []string{".rsetup.yaml", ".rsetup.yml"}

// ProjectConfig is the optional per-project defaults file. Explicit
// options and environment variables override whatever it sets.
type ProjectConfig struct {
	R struct {
		Binary string `yaml:"binary"`
		Home   string `yaml:"home"`
	} `yaml:"r"`
	Mode  string `yaml:"mode"`
	Probe struct {
		Header      string   `yaml:"header"`
		IncludeDirs []string `yaml:"include_dirs"`
		LibraryDirs []string `yaml:"library_dirs"`
		Libraries   []string `yaml:"libraries"`
	} `yaml:"probe"`

	// Path records where the file was found.
	Path string `yaml:"-"`
}

// LoadProjectConfig looks for a project config file in dir and its
// parents. A missing file is not an error: both return values are nil.
func LoadProjectConfig(dir string) (*ProjectConfig, error) {
	if dir == "" {
		dir = "."
	}
	path, err := findConfigFile(dir)
	if err != nil || path == "" {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read project config %s: %w", path, err)
	}
	cfg := &ProjectConfig{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse project config %s: %w", path, err)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("project config %s: %w", path, err)
	}
	return cfg, nil
}

// findConfigFile walks from dir toward the filesystem root and returns
// the first config file found, or "" when there is none.
func findConfigFile(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		for _, name := range configFileNames {
			path := filepath.Join(abs, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", nil
		}
		abs = parent
	}
}

// Validate checks the fields with constrained values.
func (c *ProjectConfig) Validate() error {
	if c.Mode != "" {
		if _, err := ParseMode(c.Mode); err != nil {
			return err
		}
	}
	return nil
}

// Options translates the file's non-empty fields into detection
// options. Apply them before explicit options so the latter win.
func (c *ProjectConfig) Options() []Option {
	if c == nil {
		return nil
	}
	var opts []Option
	if c.R.Binary != "" {
		opts = append(opts, WithRBinary(c.R.Binary))
	}
	if c.R.Home != "" {
		opts = append(opts, fileRHomeOption(c.R.Home))
	}
	if c.Mode != "" {
		if m, err := ParseMode(c.Mode); err == nil {
			opts = append(opts, fileModeOption(m))
		}
	}
	if c.Probe.Header != "" {
		opts = append(opts, WithProbeHeader(c.Probe.Header))
	}
	extra := CompilerOptions{
		Libraries:   c.Probe.Libraries,
		IncludeDirs: c.Probe.IncludeDirs,
		LibraryDirs: c.Probe.LibraryDirs,
	}
	if len(extra.Libraries)+len(extra.IncludeDirs)+len(extra.LibraryDirs) > 0 {
		opts = append(opts, WithCompilerOptions(extra))
	}
	return opts
}
