package rtinfo

import (
	"testing"
)

func TestEncoding(t *testing.T) {
	tests := []struct {
		enc      Encoding
		wantName string
		wantDash string
	}{
		{EncodingUTF8, "utf-8", "―"},
		{EncodingWindows1252, "Windows-1252", "\x97"},
		{Encoding(7), "Encoding(7)", "―"},
	}
	for _, tt := range tests {
		if got := tt.enc.String(); got != tt.wantName {
			t.Errorf("Encoding(%d).String() = %q, want %q", tt.enc, got, tt.wantName)
		}
		if got := tt.enc.Dash(); got != tt.wantDash {
			t.Errorf("Encoding(%d).Dash() = %q, want %q", tt.enc, got, tt.wantDash)
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv(TLSURLEnv, "")
	cfg := DefaultConfig()

	if want := [6]int{34, 14, 17, 26, 10, 16}; cfg.Widths != want {
		t.Errorf("Widths = %v, want %v", cfg.Widths, want)
	}
	if cfg.Dash != "―" {
		t.Errorf("Dash = %q, want utf-8 glyph", cfg.Dash)
	}
	if cfg.TLSVerifyURL != DefaultTLSVerifyURL {
		t.Errorf("TLSVerifyURL = %q, want %q", cfg.TLSVerifyURL, DefaultTLSVerifyURL)
	}
	if cfg.Registry != DefaultRegistry() {
		t.Error("Registry is not the default registry")
	}
	if cfg.Logger == nil || cfg.Signals == nil || cfg.LookupEnv == nil || cfg.Out == nil {
		t.Errorf("DefaultConfig() left a dependency nil: %+v", cfg)
	}
	if len(cfg.Tools) != len(DefaultTools) {
		t.Errorf("Tools = %d entries, want %d", len(cfg.Tools), len(DefaultTools))
	}
}

func TestDefaultConfig_TLSURLOverride(t *testing.T) {
	t.Setenv(TLSURLEnv, "https://127.0.0.1:8443/")
	if got := DefaultConfig().TLSVerifyURL; got != "https://127.0.0.1:8443/" {
		t.Fatalf("TLSVerifyURL = %q, want override", got)
	}
}

func TestDefaultTools_Patterns(t *testing.T) {
	tests := []struct {
		tool   string
		output string
		want   string
	}{
		{"go", "go version go1.24.4 linux/amd64", "1.24.4"},
		{"go", "go version go1.25rc1 darwin/arm64", "1.25rc1"},
		{"go", "go version devel go1.26-abc linux/amd64", ""},
		{"gopls", "golang.org/x/tools/gopls v0.19.1\n    golang.org/x/tools/gopls@v0.19.1 h1:abc", "0.19.1"},
		{"gopls", "golang.org/x/tools/gopls v0.20.0-pre.1", "0.20.0-pre.1"},
		{"dlv", "Delve Debugger\nVersion: 1.25.0\nBuild: $Id: abc $", "1.25.0"},
		{"dlv", "command not found", ""},
	}

	patterns := map[string]int{"go": 0, "gopls": 1, "dlv": 2}
	for _, tt := range tests {
		t.Run(tt.tool+"/"+tt.output, func(t *testing.T) {
			tool := DefaultTools[patterns[tt.tool]]
			if tool.Args[0] != tt.tool {
				t.Fatalf("DefaultTools order changed: got %q", tool.Args[0])
			}
			got := ""
			if m := tool.Pattern.FindStringSubmatch(tt.output); m != nil {
				got = m[1]
			}
			if got != tt.want {
				t.Fatalf("version = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	if NewLogger(false).Core().Enabled(-1) {
		t.Error("NewLogger(false) logs at debug level")
	}
	logger := NewLogger(true)
	if !logger.Core().Enabled(-1) {
		t.Error("NewLogger(true) does not log at debug level")
	}
}
