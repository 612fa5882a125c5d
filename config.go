package rtinfo

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"runtime"

	"go.uber.org/zap"
)

// Environment variables read by rtinfo itself.
const (
	// DebugEnv enables debug logging on stderr when set to a non-empty value.
	DebugEnv = "RTINFO_DEBUG"
	// TLSURLEnv overrides the endpoint used by the TLS verify probe.
	TLSURLEnv = "RTINFO_TLS_URL"
)

// DefaultTLSVerifyURL is the endpoint the TLS verify probe connects to.
const DefaultTLSVerifyURL = "https://proxy.golang.org/"

// Column selectors. Widths are looked up in [Config.Widths]; a selector
// above 10 is used as a literal width.
const (
	ColCrypto = iota
	ColValue
	ColTooling
	ColLibrary
	ColNarrow
	ColWide
)

// Encoding selects the glyph used for section-separator dashes.
type Encoding int

const (
	// EncodingUTF8 uses U+2015 HORIZONTAL BAR.
	EncodingUTF8 Encoding = iota
	// EncodingWindows1252 uses byte 0x97, the em dash of that code page.
	EncodingWindows1252
)

// EncodingIdentifiers maps each [Encoding] to the names accepted on the command line.
var EncodingIdentifiers = map[Encoding][]string{
	EncodingUTF8:        {"utf-8"},
	EncodingWindows1252: {"Windows-1252"},
}

func (e Encoding) String() string {
	if ids, ok := EncodingIdentifiers[e]; ok {
		return ids[0]
	}
	return fmt.Sprintf("Encoding(%d)", e)
}

// Dash returns the separator glyph for the encoding.
// Unknown encodings fall back to the utf-8 glyph.
func (e Encoding) Dash() string {
	if e == EncodingWindows1252 {
		return "\x97"
	}
	return "―"
}

// CLITool describes an external command queried for a version string.
type CLITool struct {
	// Args is the command line; Args[0] is looked up in PATH.
	Args []string
	// Pattern extracts the version as its first submatch.
	Pattern *regexp.Regexp
}

// DefaultTools are the companion tools of a Go installation.
var DefaultTools = []CLITool{
	{
		Args:    []string{"go", "version"},
		Pattern: regexp.MustCompile(`\Ago version go(\d{1,2}\.\d{1,2}(\.\d{1,2})?([a-z0-9]+)?)`),
	},
	{
		Args:    []string{"gopls", "version"},
		Pattern: regexp.MustCompile(`\Agolang\.org/x/tools/gopls v(\d{1,2}\.\d{1,2}\.\d{1,2}(-[a-z0-9.]+)?)`),
	},
	{
		Args:    []string{"dlv", "version"},
		Pattern: regexp.MustCompile(`\ADelve Debugger\s+Version: (\d{1,2}\.\d{1,2}\.\d{1,2})`),
	},
}

// Config is the immutable configuration of a [Reporter].
// The Reporter copies it at construction; later changes have no effect.
type Config struct {
	// Widths holds the column widths addressed by the Col* selectors.
	Widths [6]int
	// Dash is the section-separator glyph, see [Encoding.Dash].
	Dash string
	// Out receives the report.
	Out io.Writer
	// GOOS decides platform-only probes, such as Windows-only imports.
	GOOS string
	// LookupEnv reads informational environment variables.
	LookupEnv func(string) (string, bool)
	// Setenv and Unsetenv clear and restore OPENSSL_CONF around the TLS
	// probes.
	Setenv   func(key, value string) error
	Unsetenv func(key string) error
	// NoColor disables the highlight wrap. NO_COLOR does the same.
	NoColor bool
	// TLSVerifyURL is the endpoint of the TLS verify probe.
	TLSVerifyURL string
	// Tools are the CLI tools probed in the CLI test grid, in row order.
	Tools []CLITool
	// Registry resolves imports to bindings.
	Registry *Registry
	// Signals computes the unsupported signal set.
	Signals SignalSource
	// Toolchain describes the Go installation around the binary.
	Toolchain Toolchain
	// Logger receives debug output. It never writes to Out.
	Logger *zap.Logger
}

// DefaultConfig returns a configuration writing to stdout, using the
// default binding registry and the cached signal probe.
// The toolchain is left empty; callers fill it with [LoadToolchain].
func DefaultConfig() Config {
	url := DefaultTLSVerifyURL
	if v, ok := os.LookupEnv(TLSURLEnv); ok && v != "" {
		url = v
	}
	return Config{
		Widths:       [6]int{34, 14, 17, 26, 10, 16},
		Dash:         EncodingUTF8.Dash(),
		Out:          os.Stdout,
		GOOS:         runtime.GOOS,
		LookupEnv:    os.LookupEnv,
		Setenv:       os.Setenv,
		Unsetenv:     os.Unsetenv,
		TLSVerifyURL: url,
		Tools:        DefaultTools,
		Registry:     DefaultRegistry(),
		Signals:      cachedSignalSource{},
		Logger:       zap.NewNop(),
	}
}

// NewLogger returns a development logger on stderr when debug is true,
// and a no-op logger otherwise.
func NewLogger(debug bool) *zap.Logger {
	if !debug {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger.Named("rtinfo")
}
