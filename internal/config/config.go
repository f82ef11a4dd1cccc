package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
	"github.com/derwolz/rebelreads-linkify/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
	ErrUnknownFormat   = errors.New("unknown output format") // also matches ErrInvalidValue
)

// Field length limits.
const (
	MaxDomainLength   = 253 // RFC 1035
	MaxAliases        = 32
	MaxMarkerLength   = 200
	MaxAddrLength     = 255
	MaxDurationLength = 20 // "30s", "1m30s"
	MaxLevelLength    = 10 // "debug", "warning"
)

// Bounds for numeric settings.
const (
	MaxWorkers        = 64
	MaxMessageSize    = 16 << 20
	MaxRequestBody    = 32 << 20
	DefaultMessageMax = 64 << 10
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatHTML = "html"
)

// Log formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// AppDirName is the directory searched under os.UserConfigDir.
const AppDirName = "linkify"

// DefaultMarker renders previews in text output. {kind} and {path} are
// substituted per preview.
const DefaultMarker = "[{kind}:{path}]"

// Config holds all configuration for the linkify CLI and server.
type Config struct {
	Site   SiteConfig   `yaml:"site"`
	Output OutputConfig `yaml:"output"`
	Batch  BatchConfig  `yaml:"batch"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// SiteConfig defines which hosts count as the site's own.
type SiteConfig struct {
	Domain         string   `yaml:"domain"`         // Canonical site domain (default: sirened.com)
	Aliases        []string `yaml:"aliases"`        // Extra domains treated as the site
	MaxMessageSize int      `yaml:"maxMessageSize"` // Bytes; longer messages get no previews
}

// OutputConfig defines how the CLI prints segments.
type OutputConfig struct {
	Format string `yaml:"format"` // "text", "json", "html" (default: "text")
	Marker string `yaml:"marker"` // Text-format preview marker
}

// BatchConfig defines the batch command's worker group.
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 = auto from GOMAXPROCS
}

// ServerConfig defines the HTTP API listener.
type ServerConfig struct {
	Addr         string `yaml:"addr"`
	ReadTimeout  string `yaml:"readTimeout"`  // Go duration string
	WriteTimeout string `yaml:"writeTimeout"` // Go duration string
	MaxBodyBytes int64  `yaml:"maxBodyBytes"`
}

// LogConfig defines the logrus logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // logrus level name
	Format string `yaml:"format"` // "text" or "json"
}

// ReadTimeoutDuration parses ReadTimeout. Validate guarantees it parses.
func (s ServerConfig) ReadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.ReadTimeout)
	return d
}

// WriteTimeoutDuration parses WriteTimeout. Validate guarantees it parses.
func (s ServerConfig) WriteTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(s.WriteTimeout)
	return d
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually or apply environment overrides.
func (c *Config) Validate() error {
	// Site
	if err := validateFieldLength("site.domain", c.Site.Domain, MaxDomainLength); err != nil {
		return err
	}
	if len(c.Site.Aliases) > MaxAliases {
		return fmt.Errorf("%w: site.aliases: %d entries, max %d", ErrInvalidValue, len(c.Site.Aliases), MaxAliases)
	}
	for i, alias := range c.Site.Aliases {
		if err := validateFieldLength(fmt.Sprintf("site.aliases[%d]", i), alias, MaxDomainLength); err != nil {
			return err
		}
	}
	if c.Site.MaxMessageSize < 0 || c.Site.MaxMessageSize > MaxMessageSize {
		return fmt.Errorf("%w: site.maxMessageSize: must be between 0 and %d, got %d",
			ErrInvalidValue, MaxMessageSize, c.Site.MaxMessageSize)
	}

	// Output
	if c.Output.Format != "" {
		switch strings.ToLower(c.Output.Format) {
		case FormatText, FormatJSON, FormatHTML:
			// valid
		default:
			return fmt.Errorf("%w: %w: output.format %q (must be text, json, or html)", ErrInvalidValue, ErrUnknownFormat, c.Output.Format)
		}
	}
	if err := validateFieldLength("output.marker", c.Output.Marker, MaxMarkerLength); err != nil {
		return err
	}

	// Batch
	if c.Batch.Workers < 0 || c.Batch.Workers > MaxWorkers {
		return fmt.Errorf("%w: batch.workers: must be between 0 and %d, got %d",
			ErrInvalidValue, MaxWorkers, c.Batch.Workers)
	}

	// Server
	if err := validateFieldLength("server.addr", c.Server.Addr, MaxAddrLength); err != nil {
		return err
	}
	if err := validateDuration("server.readTimeout", c.Server.ReadTimeout); err != nil {
		return err
	}
	if err := validateDuration("server.writeTimeout", c.Server.WriteTimeout); err != nil {
		return err
	}
	if c.Server.MaxBodyBytes < 0 || c.Server.MaxBodyBytes > MaxRequestBody {
		return fmt.Errorf("%w: server.maxBodyBytes: must be between 0 and %d, got %d",
			ErrInvalidValue, MaxRequestBody, c.Server.MaxBodyBytes)
	}

	// Log
	if err := validateFieldLength("log.level", c.Log.Level, MaxLevelLength); err != nil {
		return err
	}
	if c.Log.Level != "" {
		if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("%w: log.level: %v", ErrInvalidValue, err)
		}
	}
	if c.Log.Format != "" {
		switch strings.ToLower(c.Log.Format) {
		case LogFormatText, LogFormatJSON:
		default:
			return fmt.Errorf("%w: log.format %q (must be text or json)", ErrInvalidValue, c.Log.Format)
		}
	}

	return nil
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

func validateDuration(fieldName, value string) error {
	if value == "" {
		return nil
	}
	if err := validateFieldLength(fieldName, value, MaxDurationLength); err != nil {
		return err
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fieldName, err)
	}
	if d < 0 {
		return fmt.Errorf("%w: %s: must not be negative", ErrInvalidValue, fieldName)
	}
	return nil
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Domain:         "sirened.com",
			MaxMessageSize: DefaultMessageMax,
		},
		Output: OutputConfig{
			Format: FormatText,
			Marker: DefaultMarker,
		},
		Batch: BatchConfig{Workers: 0},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
			MaxBodyBytes: 1 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Fields absent from the file keep their DefaultConfig values.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	cfg := DefaultConfig()
	if err := yamlutil.DecodeFileStrict(configPath, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup
// order: ./name.yaml, ./name.yml, then the same under <UserConfigDir>/linkify/.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)

	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if userConfigDir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(userConfigDir, AppDirName, name+ext))
		}
	}
	return paths
}

// resolveConfigPath returns the first existing file from SearchPaths.
func resolveConfigPath(name string) (string, error) {
	paths := SearchPaths(name)
	for _, p := range paths {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(paths, ", "))
}
