package rtinfo

import (
	"crypto/fips140"
	"errors"
	"fmt"
	"io"
	"math/bits"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// NotFound is printed for an import that cannot be required.
const NotFound = "NOT FOUND!"

const (
	cliWidth      = 38
	cliNameWidth  = 10
	loadsWidth    = 15
	fileStatWidth = 23
)

// placeholderPath matches paths that still carry an unexpanded variable,
// typically baked in at build time on another machine.
var placeholderPath = regexp.MustCompile(`\$\{?[A-Za-z_][A-Za-z0-9_]*|%[A-Za-z_][A-Za-z0-9_]*%`)

// Reporter prints the diagnostic report. Each probe prints its own line
// and absorbs its own failure.
type Reporter struct {
	cfg    Config
	out    io.Writer
	yellow *color.Color
	log    *zap.Logger
}

// NewReporter returns a reporter for a copy of cfg. Zero fields are
// filled from [DefaultConfig].
func NewReporter(cfg Config) *Reporter {
	def := DefaultConfig()
	if cfg.Widths == ([6]int{}) {
		cfg.Widths = def.Widths
	}
	if cfg.Dash == "" {
		cfg.Dash = def.Dash
	}
	if cfg.Out == nil {
		cfg.Out = def.Out
	}
	if cfg.GOOS == "" {
		cfg.GOOS = def.GOOS
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = def.LookupEnv
	}
	if cfg.Setenv == nil {
		cfg.Setenv = def.Setenv
	}
	if cfg.Unsetenv == nil {
		cfg.Unsetenv = def.Unsetenv
	}
	if cfg.TLSVerifyURL == "" {
		cfg.TLSVerifyURL = def.TLSVerifyURL
	}
	if cfg.Tools == nil {
		cfg.Tools = def.Tools
	}
	cfg.Tools = append([]CLITool(nil), cfg.Tools...)
	if cfg.Registry == nil {
		cfg.Registry = def.Registry
	}
	if cfg.Signals == nil {
		cfg.Signals = def.Signals
	}
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}

	// The wrap is written even when Out is not a terminal.
	yellow := color.New(color.FgYellow)
	if v, ok := cfg.LookupEnv("NO_COLOR"); cfg.NoColor || (ok && v != "") {
		yellow.DisableColor()
	} else {
		yellow.EnableColor()
	}

	return &Reporter{
		cfg:    cfg,
		out:    cfg.Out,
		yellow: yellow,
		log:    cfg.Logger,
	}
}

func (r *Reporter) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *Reporter) println(args ...any) {
	fmt.Fprintln(r.out, args...)
}

// width resolves a column selector; values above 10 are literal widths.
func (r *Reporter) width(col int) int {
	if col > 10 || col < 0 || col >= len(r.cfg.Widths) {
		return col
	}
	return r.cfg.Widths[col]
}

func (r *Reporter) dash(n int) string {
	return strings.Repeat(r.cfg.Dash, n)
}

func (r *Reporter) env(key string) (string, bool) {
	return r.cfg.LookupEnv(key)
}

// First requires imp and prints label followed by value(binding), or by
// [NotFound] when the import fails. It reports whether the import loaded.
func (r *Reporter) First(imp, label string, col int, value func(*Binding) string) bool {
	w := r.width(col)
	b, err := r.cfg.Registry.Require(imp)
	if err != nil {
		r.log.Debug("require failed", zap.String("import", imp), zap.Error(err))
		r.printf("%s%s\n", ljust(label, w), NotFound)
		return false
	}
	r.printf("%s%s\n", ljust(label, w), value(b))
	return true
}

// Double requires imp and prints two labelled values on one line.
func (r *Reporter) Double(imp, label1, label2 string, c1, c2, c3 int, value func(*Binding) (string, string)) bool {
	b, err := r.cfg.Registry.Require(imp)
	if err != nil {
		r.log.Debug("require failed", zap.String("import", imp), zap.Error(err))
		r.printf("%s%s\n", ljust(label1, r.width(c1)), NotFound)
		return false
	}
	v1, v2 := value(b)
	r.printf("%s%s%s%s\n", ljust(label1, r.width(c1)), ljust(v1, r.width(c2)), ljust(label2, r.width(c3)), v2)
	return true
}

// Additional prints an indented label followed by value().
func (r *Reporter) Additional(label string, col, indent int, value func() string) {
	r.printf("%s%s\n", ljust(strings.Repeat(" ", indent)+label, r.width(col)), value())
}

// AdditionalFile prints the state of the file or directory returned by
// path. A path whose base name has an extension is checked as a file,
// anything else as a directory.
func (r *Reporter) AdditionalFile(label string, col, indent int, path func() (string, bool)) {
	r.Additional(label, col, indent, func() string {
		p, ok := path()
		return fileState(p, ok)
	})
}

func fileState(p string, ok bool) string {
	if !ok {
		return "Not configured"
	}
	shown := p
	if placeholderPath.MatchString(p) {
		shown = "bad file name"
	}

	fi, err := os.Stat(p)
	if strings.Contains(filepath.Base(p), ".") {
		if err != nil {
			return ljust("File Not Found!", fileStatWidth) + shown
		}
		return ljust(fi.ModTime().UTC().Format("File Dated 2006-01-02"), fileStatWidth) + p
	}
	if err != nil || !fi.IsDir() {
		return ljust("Dir  Not Found!", fileStatWidth) + shown
	}
	return ljust("Dir  Exists", fileStatWidth) + p
}

// require resolves imp into a ProbeResult, logging the failure.
func (r *Reporter) require(imp, label string) ProbeResult {
	b, err := r.cfg.Registry.Require(imp)
	if err != nil {
		r.log.Debug("require failed", zap.String("import", imp), zap.Error(err))
		status := StatusLoadError
		if notLinked(err) {
			status = StatusNotFound
		}
		return ProbeResult{Label: label, Status: status, Error: err}
	}
	return ProbeResult{Label: label, Status: StatusFound, Value: b.Version}
}

// probeCLI runs a tool and extracts its version. A command that exits
// non-zero still has its output inspected; only a failure to run it at
// all reports StatusCommandMissing.
func (r *Reporter) probeCLI(tool CLITool) ProbeResult {
	res := ProbeResult{Label: tool.Args[0]}
	out, err := exec.Command(tool.Args[0], tool.Args[1:]...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			r.log.Debug("cli probe failed", zap.Strings("args", tool.Args), zap.Error(err))
			res.Status = StatusCommandMissing
			res.Error = err
			return res
		}
	}
	m := tool.Pattern.FindStringSubmatch(strings.TrimSpace(string(out)))
	if len(m) < 2 {
		res.Status = StatusNoVersion
		return res
	}
	res.Status = StatusFound
	res.Value = m[1]
	return res
}

// CheckCLI formats the version probe of tool as a fixed-width cell.
func (r *Reporter) CheckCLI(tool CLITool) string {
	if len(tool.Args) == 0 || tool.Pattern == nil {
		return strings.Repeat(" ", cliWidth)
	}
	name := ljust(tool.Args[0], cliNameWidth)
	res := r.probeCLI(tool)
	switch res.Status {
	case StatusFound:
		return ljust(name+"Ok   "+res.Value, cliWidth)
	case StatusNoVersion:
		return ljust(name+"No version?", cliWidth)
	default:
		return ljust(name+"Missing or incorrect binary", cliWidth)
	}
}

// Loads1 requires a single import for the require grid.
func (r *Reporter) Loads1(imp, label string) string {
	if !r.require(imp, label).Found() {
		return ljust(label, loadsWidth) + "  Does not load!"
	}
	return ljust(label, loadsWidth) + "  Ok"
}

// Loads2 requires two imports for the require grid. When windowsOnly is
// set and the platform is not Windows, the second import is skipped.
func (r *Reporter) Loads2(imp1, label1, imp2, label2 string, windowsOnly bool) string {
	s := ljust(label1, loadsWidth)
	if r.require(imp1, label1).Found() {
		s += "  Ok            "
	} else {
		s += "  LoadError     "
	}
	if windowsOnly && r.cfg.GOOS != "windows" {
		return strings.TrimRight(s, " ")
	}
	s += ljust(label2, loadsWidth)
	if r.require(imp2, label2).Found() {
		return s + "  Ok"
	}
	return s + "  LoadError"
}

// Highlight prints text in yellow. Leading newlines are printed as
// blank lines outside the colored span.
func (r *Reporter) Highlight(text string) {
	for strings.HasPrefix(text, "\n") {
		r.println()
		text = text[1:]
	}
	r.yellow.Fprintln(r.out, text)
}

// Run prints the whole report. The unsupported signal set is computed
// first; failing to spawn the signal helper is the only error returned,
// and nothing is printed in that case.
func (r *Reporter) Run() error {
	sigs, err := r.cfg.Signals.ProbeSignals()
	if err != nil {
		return fmt.Errorf("unsupported signals: %w", err)
	}
	r.log.Debug("signal probe done", zap.Stringer("result", sigs))

	r.header()
	r.println()
	r.First("golang.org/x/mod", "x/mod", ColTooling, version)
	r.println()
	r.data()
	r.println()
	r.crypto()
	r.println()
	r.compression()
	r.printf("%s%d\n", ljust("math/big Word bits", r.width(ColLibrary)), bits.UintSize)

	r.println()
	r.printf("Unavailable signals: %s\n", sigs.Unsupported)

	r.requireGrid()
	r.inventory()
	return nil
}

func version(b *Binding) string {
	return b.Version
}

func (r *Reporter) header() {
	tc := r.cfg.Toolchain
	r.Highlight("\n" + RuntimeDescription())
	r.println()
	r.printf("    ImageOS: %s\n", r.envOr("ImageOS", "undefined"))
	r.printf("    ImageVersion: %s\n", r.envOr("ImageVersion", "undefined"))
	r.printf(" Build Type/Info: %s\n", installerInfo(tc.GOROOT))
	r.printf("         cc info: %s\n", orUnknown(tc.CCVersion))
	r.printf("          GOROOT: %s\n", tc.GOROOT)
	if tc.GOROOT != "" {
		resolved := realPath(tc.GOROOT)
		if resolved != tc.GOROOT {
			r.printf("  above realpath: %s\n", resolved)
		}
		if name, ok := nixStoreObject(resolved); ok {
			r.printf("  nix store path: %s\n", name)
		}
	}
	r.printf("      OS release: %s\n", osRelease())
}

func (r *Reporter) data() {
	r.First("github.com/shopspring/decimal", "decimal", ColTooling, func(b *Binding) string {
		return b.Version + "  precision " + b.Attr("precision")
	})
	r.Double("zombiezen.com/go/sqlite", "sqlite", "SQLITE_VERSION", ColLibrary, ColValue, ColTooling,
		func(b *Binding) (string, string) { return b.Version, b.Attr("native") })
	r.First("gopkg.in/yaml.v3", "yaml.v3", ColTooling, version)
	r.First("github.com/fxamacker/cbor/v2", "cbor", ColTooling, version)
	r.First("github.com/tidwall/jsonc", "jsonc", ColTooling, version)
}

func (r *Reporter) crypto() {
	// OPENSSL_CONF is cleared around the TLS probes and restored before
	// its own row.
	conf, hadConf := r.env("OPENSSL_CONF")
	if err := r.cfg.Unsetenv("OPENSSL_CONF"); err != nil {
		r.log.Debug("unset OPENSSL_CONF", zap.Error(err))
	}
	restore := func() {
		if !hadConf {
			return
		}
		if err := r.cfg.Setenv("OPENSSL_CONF", conf); err != nil {
			r.log.Debug("restore OPENSSL_CONF", zap.Error(err))
		}
	}

	var aead string
	ok := r.First("golang.org/x/crypto", "x/crypto", ColCrypto, func(b *Binding) string {
		aead = b.Attr("aead")
		return b.Version
	})
	if !ok {
		restore()
		return
	}

	url := r.cfg.TLSVerifyURL
	r.Additional("TLS Verify", ColCrypto, 4, func() string { return VerifyTLS(url) })
	r.Additional("HTTPS Proxy", ColCrypto, 4, func() string { return proxyFor(url) })
	r.Additional("ChaCha20-Poly1305", ColCrypto, 4, func() string { return aead })
	r.Additional("FIPS 140 mode", ColCrypto, 4, func() string { return strconv.FormatBool(fips140.Enabled()) })
	r.Additional("Available Protocols", ColCrypto, 4, tlsProtocols)
	r.println()
	r.AdditionalFile("Default Cert File", ColCrypto, 4, present(firstExisting(certFiles)))
	r.AdditionalFile("Default Cert Dir", ColCrypto, 4, present(firstExisting(certDirs)))
	r.AdditionalFile("OpenSSL Config File", ColCrypto, 4, present(firstExisting(opensslConfigFiles)))
	r.println()
	r.AdditionalFile("$SSL_CERT_FILE", ColCrypto, 4, r.envPath("SSL_CERT_FILE"))
	r.AdditionalFile("$SSL_CERT_DIR", ColCrypto, 4, r.envPath("SSL_CERT_DIR"))
	restore()
	r.AdditionalFile("$OPENSSL_CONF", ColCrypto, 4, r.envPath("OPENSSL_CONF"))
}

func (r *Reporter) compression() {
	roundTrip := func(b *Binding) (string, string) { return b.Version, b.Attr("roundtrip") }
	r.Double("github.com/klauspost/compress/zstd", "zstd", "Round Trip", ColLibrary, ColValue, ColTooling, roundTrip)
	r.Double("github.com/pierrec/lz4/v4", "lz4", "Round Trip", ColLibrary, ColValue, ColTooling, roundTrip)
	r.Double("github.com/ulikunitz/xz", "xz", "Round Trip", ColLibrary, ColValue, ColTooling, roundTrip)
	r.First("golang.org/x/term", "x/term", ColLibrary, func(b *Binding) string {
		return b.Version + " (stdout " + b.Attr("stdout") + ")"
	})
}

// gridRow is one row of the require grid printed next to a CLI probe.
type gridRow struct {
	imp1, label1 string
	imp2, label2 string
	windowsOnly  bool
}

var requireGrid = []gridRow{
	{"github.com/ulikunitz/xz", "xz", "golang.org/x/sys/unix", "x/sys/unix", false},
	{"github.com/zeebo/blake3", "blake3", "golang.org/x/sys/windows/registry", "x/sys/registry", true},
	{"filippo.io/age", "age", "golang.org/x/sys/windows", "x/sys/windows", true},
}

func (r *Reporter) requireGrid() {
	r.Highlight(fmt.Sprintf("\n%s CLI Test %s    %s Require Test %s", r.dash(5), r.dash(19), r.dash(5), r.dash(39)))
	for i := range max(len(r.cfg.Tools), len(requireGrid)) {
		r.println(r.gridLine(i))
	}
	r.println(strings.Repeat(" ", cliWidth) + r.Loads1("github.com/cilium/ebpf", "ebpf"))
}

// gridLine renders row i of the CLI test next to row i of the require
// test. A CLI cell wider than cliWidth still gets one separating space.
func (r *Reporter) gridLine(i int) string {
	cli := strings.Repeat(" ", cliWidth)
	if i < len(r.cfg.Tools) {
		cli = r.CheckCLI(r.cfg.Tools[i])
	}
	if !strings.HasSuffix(cli, " ") {
		cli += " "
	}
	loads := ""
	if i < len(requireGrid) {
		g := requireGrid[i]
		loads = r.Loads2(g.imp1, g.label1, g.imp2, g.label2, g.windowsOnly)
	}
	return strings.TrimRight(cli+loads, " ")
}

func (r *Reporter) inventory() {
	tc := r.cfg.Toolchain
	defaults, err := DefaultPackages(tc.GOROOT)
	if err != nil {
		r.log.Debug("default packages", zap.Error(err))
	}
	managed, err := ManagedPackages(tc.GOMODCACHE)
	if err != nil {
		r.log.Debug("managed packages", zap.Error(err))
	}

	vw, nw := inventoryWidths(defaults, managed)
	r.Highlight(fmt.Sprintf("\n%s %s %s Managed Modules %s",
		r.dash(vw), ljust("Default Modules "+r.dash(5), nw), r.dash(vw), r.dash(5)))
	for _, row := range InventoryRows(defaults, managed) {
		r.println(row)
	}
}

func (r *Reporter) envOr(key, fallback string) string {
	if v, ok := r.env(key); ok {
		return v
	}
	return fallback
}

func (r *Reporter) envPath(key string) func() (string, bool) {
	return func() (string, bool) {
		v, ok := r.env(key)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
}

func present(p string) func() (string, bool) {
	return func() (string, bool) { return p, p != "" }
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
