package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func TestDefaultSettings(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	if s.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q, want %q", s.Log.Level, DefaultLogLevel)
	}
	if s.HTTP.Timeout != DefaultHTTPTimeout {
		t.Errorf("HTTP.Timeout = %v, want %v", s.HTTP.Timeout, DefaultHTTPTimeout)
	}
	if s.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", s.Server.Addr, DefaultServerAddr)
	}
	if s.Browser.Enabled {
		t.Error("Browser.Enabled = true, want false")
	}
	if err := s.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadSettings_File(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", `
log:
  level: debug
  format: json
http:
  timeout: 5s
  user_agent: custom/2.0
browser:
  enabled: true
  no_sandbox: true
server:
  addr: "127.0.0.1:9000"
templates:
  document: /srv/templates.html
`)

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.Log.Level != "debug" || s.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", s.Log)
	}
	if s.HTTP.Timeout != 5*time.Second {
		t.Errorf("HTTP.Timeout = %v, want 5s", s.HTTP.Timeout)
	}
	if s.HTTP.UserAgent != "custom/2.0" {
		t.Errorf("HTTP.UserAgent = %q, want %q", s.HTTP.UserAgent, "custom/2.0")
	}
	if !s.Browser.Enabled || !s.Browser.NoSandbox {
		t.Errorf("Browser = %+v, want enabled and no_sandbox", s.Browser)
	}
	if s.Browser.Timeout != DefaultBrowserTimeout {
		t.Errorf("Browser.Timeout = %v, want default %v", s.Browser.Timeout, DefaultBrowserTimeout)
	}
	if s.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q, want %q", s.Server.Addr, "127.0.0.1:9000")
	}
	if s.Templates.Document != "/srv/templates.html" {
		t.Errorf("Templates.Document = %q, want %q", s.Templates.Document, "/srv/templates.html")
	}
}

func TestLoadSettings_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", "http:\n  user_agent: from-file\nlog:\n  level: warn\n")

	t.Setenv("TEXTFLOW_HTTP__USER_AGENT", "from-env")
	t.Setenv("TEXTFLOW_SERVER__ADDR", ":7070")

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.HTTP.UserAgent != "from-env" {
		t.Errorf("HTTP.UserAgent = %q, want %q", s.HTTP.UserAgent, "from-env")
	}
	if s.Server.Addr != ":7070" {
		t.Errorf("Server.Addr = %q, want %q", s.Server.Addr, ":7070")
	}
	if s.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", s.Log.Level, "warn")
	}
}

func TestLoadSettings_EnvOnly(t *testing.T) {
	t.Setenv("TEXTFLOW_BROWSER__TIMEOUT", "2m")

	s, err := LoadSettings("")
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Browser.Timeout != 2*time.Minute {
		t.Errorf("Browser.Timeout = %v, want 2m", s.Browser.Timeout)
	}
	if s.Log.Format != DefaultLogFormat {
		t.Errorf("Log.Format = %q, want %q", s.Log.Format, DefaultLogFormat)
	}
}

func TestLoadSettings_Errors(t *testing.T) {
	dir := t.TempDir()
	badLevel := writeFile(t, dir, "bad-level.yaml", "log:\n  level: loud\n")
	badYAML := writeFile(t, dir, "bad.yaml", "log: [unclosed\n")
	longUA := writeFile(t, dir, "long.yaml", "http:\n  user_agent: "+strings.Repeat("a", MaxUserAgentLength+1)+"\n")

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"missing file", filepath.Join(dir, "nope.yaml"), ErrConfigNotFound},
		{"missing name", "textflow-does-not-exist", ErrConfigNotFound},
		{"invalid level", badLevel, ErrInvalidSetting},
		{"malformed yaml", badYAML, ErrConfigParse},
		{"field too long", longUA, ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("LoadSettings(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestSettingsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"defaults", func(*Settings) {}, nil},
		{"uppercase level", func(s *Settings) { s.Log.Level = "DEBUG" }, nil},
		{"bad format", func(s *Settings) { s.Log.Format = "xml" }, ErrInvalidSetting},
		{"negative timeout", func(s *Settings) { s.HTTP.Timeout = -time.Second }, ErrInvalidSetting},
		{"negative body size", func(s *Settings) { s.HTTP.MaxBodySize = -1 }, ErrInvalidSetting},
		{"long template path", func(s *Settings) { s.Templates.Document = strings.Repeat("x", MaxPathLength+1) }, ErrFieldTooLong},
		{"long addr", func(s *Settings) { s.Server.Addr = strings.Repeat("x", MaxAddrLength+1) }, ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := DefaultSettings()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEnvKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"TEXTFLOW_LOG__LEVEL", "log__level"},
		{"TEXTFLOW_HTTP__MAX_BODY_SIZE", "http__max_body_size"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
