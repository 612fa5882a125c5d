package main

import (
	"bytes"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leodido/rtinfo"
)

// TestMain dispatches the signal helper the way main does, since the
// report re-executes the test binary with --signal-helper.
func TestMain(m *testing.M) {
	if helperMode(os.Args[1:]) {
		if err := rtinfo.RunSignalHelper(os.Stdin, os.Stdout); err != nil {
			os.Exit(1)
		}
		os.Exit(0)
	}
	os.Exit(m.Run())
}

func closedTLSURL(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return "https://" + addr + "/"
}

func TestRootCmd_Report(t *testing.T) {
	t.Setenv(rtinfo.TLSURLEnv, closedTLSURL(t))
	t.Setenv("NO_COLOR", "")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"Windows-1252"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v, want a completed report", err)
	}

	got := out.String()
	for _, want := range []string{
		rtinfo.RuntimeDescription(),
		"Unavailable signals:",
		"\x97\x97\x97\x97\x97 CLI Test",
		"Require Test",
		"\x1b[33m",
		"Managed Modules",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(got, "―") {
		t.Error("report uses the utf-8 dash although Windows-1252 was requested")
	}
}

func TestParseEncoding(t *testing.T) {
	tests := []struct {
		args []string
		want rtinfo.Encoding
	}{
		{nil, rtinfo.EncodingUTF8},
		{[]string{"utf-8"}, rtinfo.EncodingUTF8},
		{[]string{"UTF-8"}, rtinfo.EncodingUTF8},
		{[]string{"Windows-1252"}, rtinfo.EncodingWindows1252},
		{[]string{" windows-1252 "}, rtinfo.EncodingWindows1252},
		{[]string{"latin1"}, rtinfo.EncodingUTF8},
		{[]string{""}, rtinfo.EncodingUTF8},
	}
	for _, tt := range tests {
		if got := parseEncoding(tt.args); got != tt.want {
			t.Errorf("parseEncoding(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestHelperMode(t *testing.T) {
	tests := []struct {
		args []string
		want bool
	}{
		{nil, false},
		{[]string{"--signal-helper"}, true},
		{[]string{"--signal-helper=true"}, true},
		{[]string{"--unknown", "--signal-helper"}, true},
		{[]string{"Windows-1252"}, false},
		{[]string{"version"}, false},
	}
	for _, tt := range tests {
		if got := helperMode(tt.args); got != tt.want {
			t.Errorf("helperMode(%q) = %v, want %v", tt.args, got, tt.want)
		}
	}
}

func TestRootCmd_Use(t *testing.T) {
	if got := newRootCmd().Use; got != "rtinfo [utf-8|Windows-1252]" {
		t.Fatalf("Use = %q", got)
	}
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"utf-8", "extra"})
	if err := root.Execute(); err == nil {
		t.Fatal("Execute() with two arguments error = nil")
	}
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "rtinfo (dev)") {
		t.Errorf("output %q missing dev version", got)
	}
	if !strings.Contains(got, "Runtime: "+rtinfo.RuntimeDescription()) {
		t.Errorf("output %q missing runtime line", got)
	}
}

func TestPrintModules(t *testing.T) {
	var out bytes.Buffer
	mods := []rtinfo.PackageEntry{
		{Name: "github.com/leodido/rtinfo", Version: "(devel)"},
		{Name: "golang.org/x/sys", Version: "v0.33.0"},
	}
	if err := printModules(&out, mods); err != nil {
		t.Fatalf("printModules() error = %v", err)
	}

	got := out.String()
	if !strings.Contains(strings.ToLower(got), "module") {
		t.Errorf("output missing header:\n%s", got)
	}
	for _, m := range mods {
		if !strings.Contains(got, m.Name) || !strings.Contains(got, m.Version) {
			t.Errorf("output missing %s %s:\n%s", m.Name, m.Version, got)
		}
	}
}

func TestModulesCmd_JSON(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"modules", "--json"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var mods []rtinfo.PackageEntry
	if err := json.Unmarshal(out.Bytes(), &mods); err != nil {
		t.Fatalf("output is not a JSON module list: %v\n%s", err, out.String())
	}
	if len(mods) == 0 {
		t.Fatal("module list is empty")
	}
}

func TestModulesCmd_MissingBinary(t *testing.T) {
	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"modules", filepath.Join(t.TempDir(), "missing")})
	err := root.Execute()
	if err == nil {
		t.Fatal("Execute() error = nil, want read failure")
	}
	if !strings.Contains(err.Error(), "read modules") {
		t.Fatalf("error %q missing context", err)
	}
}
