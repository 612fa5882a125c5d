package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/leodido/rtinfo"
	"github.com/leodido/structcli"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thediveo/enumflag/v2"
)

// Build metadata injected via ldflags.
// When built without ldflags (e.g., plain `go build`), these remain
// at their zero values and the version command omits them gracefully.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	// The signal helper is spawned by the report itself and must reach its
	// TERM trap without going through command setup.
	if helperMode(os.Args[1:]) {
		if err := rtinfo.RunSignalHelper(os.Stdin, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "rtinfo [" + strings.Join(encodingNames(), "|") + "]",
		Short: "Go runtime and toolchain diagnostic report",
		Long: `rtinfo prints a diagnostic report of the Go runtime it was built with
and the toolchain installation around it.

It covers the runtime build, the C compiler, linked library versions, TLS
trust configuration, unsupported signals, companion CLI tools and module
inventories. The optional argument selects the glyph used for section
separators; unknown values fall back to utf-8.

Set ` + rtinfo.DebugEnv + `=1 for debug logging on stderr.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(c *cobra.Command, args []string) error {
			logger := rtinfo.NewLogger(os.Getenv(rtinfo.DebugEnv) != "")
			defer logger.Sync()

			cfg := rtinfo.DefaultConfig()
			cfg.Dash = parseEncoding(args).Dash()
			cfg.Out = c.OutOrStdout()
			cfg.Logger = logger
			cfg.Signals = rtinfo.NewSignalProber(rtinfo.WithLogger(logger))
			cfg.Toolchain = rtinfo.LoadToolchain(logger)
			return rtinfo.NewReporter(cfg).Run()
		},
	}

	root.AddCommand(modulesCmd())
	root.AddCommand(versionCmd())
	return root
}

// helperMode reports whether args carry the hidden signal-helper flag.
// Unknown flags are ignored.
func helperMode(args []string) bool {
	fs := pflag.NewFlagSet("rtinfo", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	helper := fs.Bool(rtinfo.HelperFlag, false, "run as signal probe helper")
	if err := fs.Parse(args); err != nil {
		return false
	}
	return *helper
}

// parseEncoding maps the optional positional argument to an encoding,
// case-insensitively. Anything unrecognized selects utf-8.
func parseEncoding(args []string) rtinfo.Encoding {
	enc := rtinfo.EncodingUTF8
	if len(args) == 0 {
		return enc
	}
	value := enumflag.New(&enc, "encoding", rtinfo.EncodingIdentifiers, enumflag.EnumCaseInsensitive)
	if err := value.Set(strings.TrimSpace(args[0])); err != nil {
		return rtinfo.EncodingUTF8
	}
	return enc
}

func encodingNames() []string {
	return []string{rtinfo.EncodingUTF8.String(), rtinfo.EncodingWindows1252.String()}
}

// ModulesOptions defines flags for the modules subcommand.
type ModulesOptions struct {
	JSON bool `flag:"json" flagshort:"j" flagdescr:"Output in JSON format"`
}

func (o *ModulesOptions) Attach(c *cobra.Command) error {
	return structcli.Define(c, o)
}

func modulesCmd() *cobra.Command {
	opts := &ModulesOptions{}

	cmd := &cobra.Command{
		Use:   "modules [binary]",
		Short: "List the modules recorded in a Go binary",
		Long: `List the modules recorded in the build info of a Go binary.
Without an argument, the modules linked into rtinfo itself are listed.`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return structcli.Unmarshal(c, opts)
		},
		RunE: func(c *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			mods, err := rtinfo.ReadModules(path)
			if err != nil {
				return err
			}

			if opts.JSON {
				return printJSON(c.OutOrStdout(), mods)
			}
			return printModules(c.OutOrStdout(), mods)
		},
	}

	if err := opts.Attach(cmd); err != nil {
		panic(err)
	}
	return cmd
}

func printModules(w io.Writer, mods []rtinfo.PackageEntry) error {
	table := tablewriter.NewTable(w)
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Header.Alignment.Global = tw.AlignLeft
		cfg.Row.Alignment.Global = tw.AlignLeft
		cfg.Header.Padding.Global = tw.Padding{Left: " ", Right: " "}
		cfg.Row.Padding.Global = tw.Padding{Left: " ", Right: " "}
	})

	table.Header([]string{"Module", "Version"})
	data := make([][]string, 0, len(mods))
	for _, m := range mods {
		data = append(data, []string{m.Name, m.Version})
	}
	if err := table.Bulk(data); err != nil {
		return fmt.Errorf("render modules: %w", err)
	}
	return table.Render()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show tool and Go runtime version",
		RunE: func(c *cobra.Command, args []string) error {
			out := c.OutOrStdout()
			if version != "" {
				fmt.Fprintf(out, "rtinfo %s", version)
				if commit != "" {
					fmt.Fprintf(out, " (%s)", commit)
				}
				if date != "" {
					fmt.Fprintf(out, " built %s", date)
				}
				fmt.Fprintln(out)
			} else {
				fmt.Fprintln(out, "rtinfo (dev)")
			}

			fmt.Fprintf(out, "Runtime: %s\n", rtinfo.RuntimeDescription())
			return nil
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
