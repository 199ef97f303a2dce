// Package config loads textflow settings and pipeline definition files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every settings environment variable. Nested keys are
// separated by a double underscore: TEXTFLOW_HTTP__USER_AGENT.
const EnvPrefix = "TEXTFLOW_"

// Sentinel errors for settings operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrFieldTooLong   = errors.New("field exceeds maximum length")
	ErrInvalidSetting = errors.New("invalid setting")
)

// Field length limits.
const (
	MaxUserAgentLength = 256
	MaxPathLength      = 4096
	MaxAddrLength      = 256
)

// Defaults.
const (
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultUserAgent      = "textflow/1.0"
	DefaultMaxBodySize    = 10 << 20
	DefaultBrowserTimeout = 30 * time.Second
	DefaultServerAddr     = ":8080"
	DefaultReadTimeout    = 15 * time.Second
	DefaultWriteTimeout   = 60 * time.Second
)

// Settings holds runtime configuration for the CLI and the server.
type Settings struct {
	Log       LogSettings      `koanf:"log"`
	HTTP      HTTPSettings     `koanf:"http"`
	Browser   BrowserSettings  `koanf:"browser"`
	Server    ServerSettings   `koanf:"server"`
	Templates TemplateSettings `koanf:"templates"`
}

// LogSettings selects the log level and handler format.
type LogSettings struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // text, json
}

// HTTPSettings configures the plain HTTP fetcher.
type HTTPSettings struct {
	Timeout     time.Duration `koanf:"timeout"`
	UserAgent   string        `koanf:"user_agent"`
	MaxBodySize int64         `koanf:"max_body_size"`
}

// BrowserSettings configures the headless browser fetcher used by http render=true.
type BrowserSettings struct {
	Enabled   bool          `koanf:"enabled"`
	Bin       string        `koanf:"bin"` // empty = auto-download
	NoSandbox bool          `koanf:"no_sandbox"`
	Timeout   time.Duration `koanf:"timeout"`
}

// ServerSettings configures textflow serve.
type ServerSettings struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// TemplateSettings points at the host document templateSelector resolves against.
type TemplateSettings struct {
	Document string `koanf:"document"`
}

// DefaultSettings returns settings with every default applied.
func DefaultSettings() *Settings {
	s := &Settings{}
	applyDefaults(s)
	return s
}

// LoadSettings merges a YAML settings file with TEXTFLOW_ environment
// variables; environment values win. An empty nameOrPath skips the file.
// A bare name is looked up as name.yaml or name.yml in the current
// directory, then in the user config directory under textflow/.
func LoadSettings(nameOrPath string) (*Settings, error) {
	k := koanf.New(".")

	if nameOrPath != "" {
		path := nameOrPath
		if !isFilePath(nameOrPath) {
			var err error
			if path, err = resolveConfigPath(nameOrPath); err != nil {
				return nil, err
			}
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, "__", envKey), nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	applyDefaults(&s)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// envKey maps TEXTFLOW_HTTP__USER_AGENT to http__user_agent; the provider
// then splits on "__".
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

func applyDefaults(s *Settings) {
	if s.Log.Level == "" {
		s.Log.Level = DefaultLogLevel
	}
	if s.Log.Format == "" {
		s.Log.Format = DefaultLogFormat
	}
	if s.HTTP.Timeout == 0 {
		s.HTTP.Timeout = DefaultHTTPTimeout
	}
	if s.HTTP.UserAgent == "" {
		s.HTTP.UserAgent = DefaultUserAgent
	}
	if s.HTTP.MaxBodySize == 0 {
		s.HTTP.MaxBodySize = DefaultMaxBodySize
	}
	if s.Browser.Timeout == 0 {
		s.Browser.Timeout = DefaultBrowserTimeout
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultServerAddr
	}
	if s.Server.ReadTimeout == 0 {
		s.Server.ReadTimeout = DefaultReadTimeout
	}
	if s.Server.WriteTimeout == 0 {
		s.Server.WriteTimeout = DefaultWriteTimeout
	}
}

// Validate checks enumerations, durations and field lengths.
func (s *Settings) Validate() error {
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q (want debug, info, warn or error)", ErrInvalidSetting, s.Log.Level)
	}
	switch strings.ToLower(s.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q (want text or json)", ErrInvalidSetting, s.Log.Format)
	}

	durations := []struct {
		name string
		d    time.Duration
	}{
		{"http.timeout", s.HTTP.Timeout},
		{"browser.timeout", s.Browser.Timeout},
		{"server.read_timeout", s.Server.ReadTimeout},
		{"server.write_timeout", s.Server.WriteTimeout},
	}
	for _, d := range durations {
		if d.d < 0 {
			return fmt.Errorf("%w: %s must not be negative, got %s", ErrInvalidSetting, d.name, d.d)
		}
	}
	if s.HTTP.MaxBodySize < 0 {
		return fmt.Errorf("%w: http.max_body_size must not be negative, got %d", ErrInvalidSetting, s.HTTP.MaxBodySize)
	}

	if err := validateFieldLength("http.user_agent", s.HTTP.UserAgent, MaxUserAgentLength); err != nil {
		return err
	}
	if err := validateFieldLength("browser.bin", s.Browser.Bin, MaxPathLength); err != nil {
		return err
	}
	if err := validateFieldLength("templates.document", s.Templates.Document, MaxPathLength); err != nil {
		return err
	}
	return validateFieldLength("server.addr", s.Server.Addr, MaxAddrLength)
}

func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s has %d characters (max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func isFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// resolveConfigPath tries .yaml then .yml, first in the current directory,
// then in the user config directory.
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	tried := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		local := name + ext
		if fileExists(local) {
			return local, nil
		}
		tried = append(tried, local)
	}

	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			user := filepath.Join(dir, "textflow", name+ext)
			if fileExists(user) {
				return user, nil
			}
			tried = append(tried, user)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
