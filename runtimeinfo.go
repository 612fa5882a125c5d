package rtinfo

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"zombiezen.com/go/nix"
)

// Toolchain describes the Go installation around the running binary.
type Toolchain struct {
	GOROOT     string `json:"GOROOT"`
	GOPATH     string `json:"GOPATH"`
	GOMODCACHE string `json:"GOMODCACHE"`
	GOVERSION  string `json:"GOVERSION"`
	CC         string `json:"CC"`
	CGOEnabled string `json:"CGO_ENABLED"`
	// CCVersion is the first line of the C compiler banner.
	CCVersion string `json:"-"`
}

var goEnvKeys = []string{"GOROOT", "GOPATH", "GOMODCACHE", "GOVERSION", "CC", "CGO_ENABLED"}

// LoadToolchain resolves the toolchain environment. Each field is taken
// from the first source that provides it:
//  1. go env -json (requires go in PATH)
//  2. the process environment
//  3. defaults derived from the home directory
//
// LoadToolchain never fails; unresolved fields stay empty.
func LoadToolchain(logger *zap.Logger) Toolchain {
	if logger == nil {
		logger = zap.NewNop()
	}

	var tc Toolchain
	out, err := exec.Command("go", append([]string{"env", "-json"}, goEnvKeys...)...).Output()
	if err == nil {
		tc, err = parseGoEnv(bytes.NewReader(out))
	}
	if err != nil {
		logger.Debug("go env unavailable, falling back to environment", zap.Error(err))
	}

	fill := func(dst *string, key string) {
		if *dst == "" {
			*dst = os.Getenv(key)
		}
	}
	fill(&tc.GOROOT, "GOROOT")
	fill(&tc.GOPATH, "GOPATH")
	fill(&tc.GOMODCACHE, "GOMODCACHE")
	fill(&tc.CC, "CC")

	if tc.GOPATH == "" {
		if home, err := os.UserHomeDir(); err == nil {
			tc.GOPATH = filepath.Join(home, "go")
		}
	}
	if tc.GOMODCACHE == "" && tc.GOPATH != "" {
		tc.GOMODCACHE = filepath.Join(filepath.SplitList(tc.GOPATH)[0], "pkg", "mod")
	}
	if tc.GOVERSION == "" {
		tc.GOVERSION = runtime.Version()
	}

	tc.CCVersion = ccBanner(tc.CC)
	logger.Debug("toolchain resolved",
		zap.String("goroot", tc.GOROOT),
		zap.String("gomodcache", tc.GOMODCACHE),
		zap.String("cc", tc.CC))
	return tc
}

// parseGoEnv decodes the output of go env -json.
func parseGoEnv(r io.Reader) (Toolchain, error) {
	var tc Toolchain
	if err := json.NewDecoder(r).Decode(&tc); err != nil {
		return Toolchain{}, fmt.Errorf("parse go env: %w", err)
	}
	return tc, nil
}

// ccBanner returns the first line of "$CC --version", or "unknown".
func ccBanner(cc string) string {
	args := strings.Fields(cc)
	if len(args) == 0 {
		return "unknown"
	}
	out, err := exec.Command(args[0], append(args[1:], "--version")...).Output()
	if err != nil {
		return "unknown"
	}
	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	if line == "" {
		return "unknown"
	}
	return strings.TrimSpace(line)
}

// RuntimeDescription describes the Go runtime of this binary, such as
// "go1.24.4 linux/amd64 (gc)".
func RuntimeDescription() string {
	return fmt.Sprintf("%s %s/%s (%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH, runtime.Compiler)
}

var versionTimeRE = regexp.MustCompile(`(?m)^time (\S+)`)

// installerInfo summarizes the $GOROOT/VERSION file written by official
// distributions. It returns "NA" when the file is absent, which is the
// case for source builds.
func installerInfo(goroot string) string {
	if goroot == "" {
		return "NA"
	}
	data, err := os.ReadFile(filepath.Join(goroot, "VERSION"))
	if err != nil {
		return "NA"
	}

	s := bufio.NewScanner(bytes.NewReader(data))
	if !s.Scan() || strings.TrimSpace(s.Text()) == "" {
		return "NA"
	}
	info := "Go distribution " + strings.TrimSpace(s.Text())
	if m := versionTimeRE.FindSubmatch(data); m != nil {
		info += "  built " + string(m[1])
	}
	return info
}

const nixStorePrefix = "/nix/store/"

// nixStoreObject returns the name of the Nix store object containing
// path, such as "go-1.24.4" for /nix/store/<hash>-go-1.24.4/share/go.
func nixStoreObject(path string) (string, bool) {
	rest, ok := strings.CutPrefix(filepath.ToSlash(path), nixStorePrefix)
	if !ok {
		return "", false
	}
	base, _, _ := strings.Cut(rest, "/")
	sp, err := nix.ParseStorePath(nixStorePrefix + base)
	if err != nil {
		return "", false
	}
	return sp.Name(), true
}

// realPath resolves symlinks in path, returning path unchanged on error.
func realPath(path string) string {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return path
	}
	return resolved
}
