package rtinfo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
)

// DefaultPackages returns the modules vendored into the standard library
// of the installation at goroot, read from src/vendor/modules.txt.
// A missing file yields an empty list.
func DefaultPackages(goroot string) ([]PackageEntry, error) {
	if goroot == "" {
		return nil, nil
	}
	f, err := os.Open(filepath.Join(goroot, "src", "vendor", "modules.txt"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("default packages: %w", err)
	}
	defer f.Close()

	entries, err := parseVendorModules(f)
	if err != nil {
		return nil, fmt.Errorf("default packages: %w", err)
	}
	sortPackages(entries)
	return entries, nil
}

// parseVendorModules extracts "# path version" lines of a vendor
// manifest. Package lines and "## explicit" annotations are ignored.
func parseVendorModules(r io.Reader) ([]PackageEntry, error) {
	var entries []PackageEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		rest, ok := strings.CutPrefix(line, "# ")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			continue
		}
		entries = append(entries, PackageEntry{Name: fields[0], Version: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// ManagedPackages returns the modules extracted in the module cache at
// modcache. Each module@version directory is one entry; its path and
// version are unescaped. A missing cache yields an empty list.
func ManagedPackages(modcache string) ([]PackageEntry, error) {
	if modcache == "" {
		return nil, nil
	}
	if _, err := os.Stat(modcache); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	var entries []PackageEntry
	err := filepath.WalkDir(modcache, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() || path == modcache {
			return nil
		}
		rel, err := filepath.Rel(modcache, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == "cache" {
			return filepath.SkipDir
		}
		at := strings.LastIndexByte(rel, '@')
		if at < 0 {
			return nil
		}
		if entry, ok := unescapeModule(rel[:at], rel[at+1:]); ok {
			entries = append(entries, entry)
		}
		return filepath.SkipDir
	})
	if err != nil {
		return nil, fmt.Errorf("managed packages: %w", err)
	}
	sortPackages(entries)
	return entries, nil
}

func unescapeModule(escPath, escVersion string) (PackageEntry, bool) {
	path, err := module.UnescapePath(escPath)
	if err != nil {
		return PackageEntry{}, false
	}
	version, err := module.UnescapeVersion(escVersion)
	if err != nil {
		return PackageEntry{}, false
	}
	return PackageEntry{Name: path, Version: version}, true
}

// sortPackages orders entries by name, then by semantic version.
func sortPackages(entries []PackageEntry) {
	slices.SortStableFunc(entries, func(a, b PackageEntry) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return semver.Compare(a.Version, b.Version)
	})
}
