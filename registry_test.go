package rtinfo

import (
	"errors"
	"runtime/debug"
	"slices"
	"strings"
	"testing"
)

func TestRegistryRequire(t *testing.T) {
	reg := NewRegistry(StaticResolver{"example.com/mod": "v0.3.0"})
	reg.Register(BindingSpec{Import: "example.com/mod/pkg", Module: "example.com/mod"})
	reg.Register(BindingSpec{Import: "example.com/unversioned"})
	reg.Register(BindingSpec{
		Import: "example.com/broken",
		Load:   func() error { return errors.New("init failed") },
	})

	t.Run("version from module", func(t *testing.T) {
		b, err := reg.Require("example.com/mod/pkg")
		if err != nil {
			t.Fatalf("Require() error = %v", err)
		}
		if b.Version != "v0.3.0" {
			t.Fatalf("Version = %q, want v0.3.0", b.Version)
		}
		if b.Import() != "example.com/mod/pkg" {
			t.Fatalf("Import() = %q", b.Import())
		}
	})

	t.Run("unknown version", func(t *testing.T) {
		b, err := reg.Require("example.com/unversioned")
		if err != nil {
			t.Fatalf("Require() error = %v", err)
		}
		if b.Version != "unknown" {
			t.Fatalf("Version = %q, want unknown", b.Version)
		}
	})

	t.Run("not linked", func(t *testing.T) {
		_, err := reg.Require("example.com/absent")
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("Require() error = %v, want *LoadError", err)
		}
		if le.Import != "example.com/absent" {
			t.Fatalf("LoadError.Import = %q", le.Import)
		}
		if !errors.Is(err, ErrNotLinked) {
			t.Fatalf("Require() error = %v, want ErrNotLinked", err)
		}
	})

	t.Run("load failure", func(t *testing.T) {
		_, err := reg.Require("example.com/broken")
		var le *LoadError
		if !errors.As(err, &le) {
			t.Fatalf("Require() error = %v, want *LoadError", err)
		}
		if errors.Is(err, ErrNotLinked) {
			t.Fatal("load failure reported as not linked")
		}
		if !strings.Contains(err.Error(), "init failed") {
			t.Fatalf("error %q missing cause", err)
		}
	})
}

func TestBindingAttr(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Register(BindingSpec{
		Import: "example.com/attrs",
		Attrs: map[string]func() (string, error){
			"ok":  func() (string, error) { return "value", nil },
			"bad": func() (string, error) { return "", errors.New("nope") },
		},
	})
	b, err := reg.Require("example.com/attrs")
	if err != nil {
		t.Fatalf("Require() error = %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"ok", "value"},
		{"bad", "error: nope"},
		{"missing", NotDefined},
	}
	for _, tt := range tests {
		if got := b.Attr(tt.name); got != tt.want {
			t.Fatalf("Attr(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestRegistryRegisterPanics(t *testing.T) {
	tests := []struct {
		name  string
		specs []BindingSpec
	}{
		{name: "empty import", specs: []BindingSpec{{}}},
		{name: "duplicate", specs: []BindingSpec{{Import: "a"}, {Import: "a"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("Register() did not panic")
				}
			}()
			reg := NewRegistry(nil)
			for _, s := range tt.specs {
				reg.Register(s)
			}
		})
	}
}

func TestRegistryImports_Sorted(t *testing.T) {
	reg := NewRegistry(nil)
	for _, imp := range []string{"c", "a", "b"} {
		reg.Register(BindingSpec{Import: imp})
	}
	if got := reg.Imports(); !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("Imports() = %v", got)
	}
}

func TestModulesOf(t *testing.T) {
	info := &debug.BuildInfo{
		Main: debug.Module{Path: "github.com/leodido/rtinfo", Version: "(devel)"},
		Deps: []*debug.Module{
			{Path: "gopkg.in/yaml.v3", Version: "v3.0.1"},
			{Path: "golang.org/x/sys", Version: "v0.41.0", Replace: &debug.Module{Path: "../sys", Version: ""}},
			{Path: "github.com/ulikunitz/xz", Version: "v0.5.12", Replace: &debug.Module{Path: "github.com/fork/xz", Version: "v0.5.15"}},
			nil,
		},
	}

	got := modulesOf(info)
	want := []PackageEntry{
		{Name: "github.com/leodido/rtinfo", Version: "(devel)"},
		{Name: "github.com/ulikunitz/xz", Version: "v0.5.15"},
		{Name: "golang.org/x/sys", Version: "v0.41.0"},
		{Name: "gopkg.in/yaml.v3", Version: "v3.0.1"},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("modulesOf() = %v, want %v", got, want)
	}
}

func TestReadModules_MissingFile(t *testing.T) {
	_, err := ReadModules(t.TempDir() + "/missing")
	if err == nil {
		t.Fatal("ReadModules() error = nil, want error")
	}
	if !strings.Contains(err.Error(), "read modules") {
		t.Fatalf("error %q missing context", err)
	}
}

func TestStaticResolver(t *testing.T) {
	r := StaticResolver{"a": "v1.0.0"}
	if v, ok := r.ModuleVersion("a"); !ok || v != "v1.0.0" {
		t.Fatalf("ModuleVersion(a) = %q, %v", v, ok)
	}
	if _, ok := r.ModuleVersion("b"); ok {
		t.Fatal("ModuleVersion(b) found")
	}
}
