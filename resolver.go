package rtinfo

import (
	"debug/buildinfo"
	"fmt"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
)

// Resolver maps a module path to the version linked into a binary.
type Resolver interface {
	ModuleVersion(path string) (string, bool)
}

// StaticResolver is a fixed module-to-version table.
type StaticResolver map[string]string

// ModuleVersion implements [Resolver].
func (s StaticResolver) ModuleVersion(path string) (string, bool) {
	v, ok := s[path]
	return v, ok
}

// buildInfoResolver resolves against the running binary's build info.
// It reads it once, on first use.
type buildInfoResolver struct {
	once    sync.Once
	modules map[string]string
}

// BuildInfoResolver returns a [Resolver] backed by [debug.ReadBuildInfo].
func BuildInfoResolver() Resolver {
	return &buildInfoResolver{}
}

func (r *buildInfoResolver) ModuleVersion(path string) (string, bool) {
	r.once.Do(func() {
		r.modules = map[string]string{}
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, m := range modulesOf(info) {
				r.modules[m.Name] = m.Version
			}
		}
	})
	v, ok := r.modules[path]
	return v, ok
}

// ReadModules returns the modules recorded in the build info of the Go
// binary at path, sorted by module path. An empty path reads the running
// binary. A replaced module reports its replacement version.
func ReadModules(path string) ([]PackageEntry, error) {
	if strings.TrimSpace(path) == "" {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return nil, fmt.Errorf("read modules: build info not available")
		}
		return modulesOf(info), nil
	}

	info, err := buildinfo.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modules %q: %w", path, err)
	}
	return modulesOf(info), nil
}

func modulesOf(info *debug.BuildInfo) []PackageEntry {
	entries := make([]PackageEntry, 0, len(info.Deps)+1)
	if info.Main.Path != "" {
		entries = append(entries, PackageEntry{Name: info.Main.Path, Version: info.Main.Version})
	}
	for _, dep := range info.Deps {
		if dep == nil {
			continue
		}
		version := dep.Version
		if dep.Replace != nil && dep.Replace.Version != "" {
			version = dep.Replace.Version
		}
		entries = append(entries, PackageEntry{Name: dep.Path, Version: version})
	}
	slices.SortStableFunc(entries, func(a, b PackageEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}
