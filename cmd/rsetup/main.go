package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"reflect"

	"github.com/leodido/structcli"
	"github.com/rbridge/rsetup"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags (see .goreleaser.yaml).
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

var (
	debug bool
	quiet bool
)

func main() {
	root := &cobra.Command{
		Use:   "rsetup",
		Short: "R toolchain detection for FFI binding generation",
		Long: `rsetup inspects the host before R bindings are generated.

It locates the R installation, reads the compile/link flags R was built
with, probes whether the C toolchain can build against them, and resolves
which binding flavors a generator should emit: compiled ("api"),
dynamic-loading only ("abi"), or both.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&quiet, "quiet", false, "Only log errors")

	root.AddCommand(configureCmd())
	root.AddCommand(probeCmd())
	root.AddCommand(reportCmd())
	root.AddCommand(versionCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(exitGeneral)
	}
}

func logger() *slog.Logger {
	level := slog.LevelInfo
	if quiet {
		level = slog.LevelError
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var modeIdentifiers = func() map[rsetup.Mode][]string {
	ids := make(map[rsetup.Mode][]string, len(rsetup.ModeValues()))
	for _, m := range rsetup.ModeValues() {
		ids[m] = []string{m.String()}
	}
	return ids
}()

// discoveryOptions assembles the library options shared by commands
// that locate R: project config first, then explicit flags so they win.
func discoveryOptions(c *cobra.Command, rbin, rhome, dir string, mode rsetup.Mode) ([]rsetup.Option, error) {
	pc, err := rsetup.LoadProjectConfig(dir)
	if err != nil {
		return nil, err
	}

	opts := append([]rsetup.Option{}, pc.Options()...)
	opts = append(opts, rsetup.WithLogger(logger()))

	flags := c.Flags()
	if flags.Changed("r-binary") && rbin != "" {
		opts = append(opts, rsetup.WithRBinary(rbin))
	}
	if flags.Changed("r-home") && rhome != "" {
		opts = append(opts, rsetup.WithRHome(rhome))
	}
	if flags.Changed("mode") {
		opts = append(opts, rsetup.WithMode(mode))
	}
	return opts, nil
}

// ConfigureOptions defines flags for the configure subcommand.
type ConfigureOptions struct {
	Mode    rsetup.Mode `flag:"mode" flagshort:"m" flagdescr:"Generation mode: any, abi, api, both" flagcustom:"true"`
	RBinary string      `flag:"r-binary" flagdescr:"R launcher used for discovery"`
	RHome   string      `flag:"r-home" flagdescr:"R home directory (skips discovery)"`
	Dir     string      `flag:"dir" flagshort:"C" flagdescr:"Directory where the project config lookup starts"`
	Output  string      `flag:"output" flagshort:"o" flagdescr:"Write the resolved plan to this file as JSON"`
	JSON    bool        `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ConfigureOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func (o *ConfigureOptions) DefineMode(name, short, descr string, structField reflect.StructField, fieldValue reflect.Value) (pflag.Value, string) {
	fieldPtr := fieldValue.Addr().Interface().(*rsetup.Mode)
	*fieldPtr = rsetup.ModeAny
	return enumflag.New(fieldPtr, "mode", modeIdentifiers, enumflag.EnumCaseInsensitive), descr
}

func (o *ConfigureOptions) DecodeMode(input any) (any, error) {
	s, ok := input.(string)
	if !ok {
		return input, nil
	}
	return rsetup.ParseMode(s)
}

func configureCmd() *cobra.Command {
	opts := &ConfigureOptions{}

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Detect the host and resolve the binding build plan",
		Long: `Detect the host and resolve the binding build plan.

Exits 0 with the plan on stdout when the requested mode can be met.
Exits 3 when R is not found, 4 when the R version is unsupported, and
5 when the mode requires a compiler probe the host fails.`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			dopts, err := discoveryOptions(c, opts.RBinary, opts.RHome, opts.Dir, opts.Mode)
			if err != nil {
				return err
			}

			sit, err := rsetup.Detect(c.Context(), dopts...)
			if err != nil {
				fmt.Fprintf(os.Stderr, "rsetup: %v\n", err)
				os.Exit(exitCodeFor(err))
			}

			plan, err := sit.Plan()
			if err != nil {
				fmt.Fprintf(os.Stderr, "rsetup: %v\n", err)
				os.Exit(exitCodeFor(err))
			}

			if opts.Output != "" {
				if err := writePlan(opts.Output, plan); err != nil {
					return err
				}
			}
			if opts.JSON {
				return printJSON(plan)
			}
			fmt.Print(plan)
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// ProbeOptions defines flags for the probe subcommand.
type ProbeOptions struct {
	Libraries   []string `flag:"library" flagshort:"l" flagdescr:"Library to link (repeatable)"`
	IncludeDirs []string `flag:"include-dir" flagshort:"I" flagdescr:"Include directory (repeatable)"`
	LibraryDirs []string `flag:"library-dir" flagshort:"L" flagdescr:"Library directory (repeatable)"`
	Header      string   `flag:"header" flagdescr:"Header the probe source includes (empty for a bare toolchain check)"`
	Compiler    string   `flag:"cc" flagdescr:"C compiler command (overrides $CC and the PATH search)"`
	JSON        bool     `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ProbeOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func probeCmd() *cobra.Command {
	opts := &ProbeOptions{}

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Probe the C toolchain against explicit inputs",
		Long: `Probe whether the host C toolchain can compile and link a minimal
program against the given headers and libraries.

Exits 0 when the probe succeeds and 5 otherwise.`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			header := opts.Header
			if !c.Flags().Changed("header") {
				header = rsetup.DefaultProbeHeader
			}

			copts := rsetup.CompilerOptions{
				Libraries:   opts.Libraries,
				IncludeDirs: opts.IncludeDirs,
				LibraryDirs: opts.LibraryDirs,
			}
			popts := []rsetup.Option{
				rsetup.WithLogger(logger()),
				rsetup.WithProbeHeader(header),
			}
			if opts.Compiler != "" {
				popts = append(popts, rsetup.WithCompiler(opts.Compiler))
			}

			status := rsetup.ProbeCompiler(c.Context(), copts, popts...)

			if opts.JSON {
				if err := printJSON(map[string]any{
					"status":  status,
					"message": status.Message(),
				}); err != nil {
					return err
				}
			} else {
				fmt.Println(status.Message())
			}

			if status != rsetup.StatusOK {
				os.Exit(exitProbeFailed)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

// ReportOptions defines flags for the report subcommand.
type ReportOptions struct {
	RBinary string `flag:"r-binary" flagdescr:"R launcher used for discovery"`
	RHome   string `flag:"r-home" flagdescr:"R home directory (skips discovery)"`
	Dir     string `flag:"dir" flagshort:"C" flagdescr:"Directory where the project config lookup starts"`
	JSON    bool   `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ReportOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func reportCmd() *cobra.Command {
	opts := &ReportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report everything detected about the host",
		Long: `Report everything detected about the host: platform, R installation,
toolchain inputs, probe outcome, and advisories.

The report never gates: it exits 0 even when R is missing.`,
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			dopts, err := discoveryOptions(c, opts.RBinary, opts.RHome, opts.Dir, rsetup.ModeAny)
			if err != nil {
				return err
			}

			sit, detectErr := rsetup.Detect(c.Context(), dopts...)
			if opts.JSON {
				if err := printJSON(sit); err != nil {
					return err
				}
			} else {
				fmt.Print(sit)
			}
			if detectErr != nil {
				fmt.Fprintf(os.Stderr, "rsetup: %v\n", detectErr)
			}
			return nil
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool and R version",
		RunE: func(c *cobra.Command, args []string) error {
			if version != "" {
				fmt.Printf("rsetup %s", version)
				if commit != "" {
					fmt.Printf(" (%s)", commit)
				}
				if date != "" {
					fmt.Printf(" built %s", date)
				}
				fmt.Println()
			} else {
				fmt.Println("rsetup (dev)")
			}

			rv, err := rsetup.RVersion(c.Context())
			if err != nil {
				fmt.Println("R: (not found)")
				return nil
			}
			fmt.Printf("R: %s\n", rv)
			return nil
		},
	}
}

func writePlan(path string, plan *rsetup.Plan) error {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
