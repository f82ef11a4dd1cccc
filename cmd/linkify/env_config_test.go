package main

// Notes:
// - applyEnvConfig: we test every LINKIFY_* variable, strict integer
//   parsing, and that unset variables leave the config untouched.
// - loadConfig: we test LINKIFY_CONFIG and env-over-file precedence.
// - warnUnknownEnvVars: we test typo detection with a logrus test hook.
// - Tests use t.Setenv() which prevents t.Parallel().
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/derwolz/rebelreads-linkify/internal/config"
)

// ---------------------------------------------------------------------------
// TestEnvName - Key to variable name mapping
// ---------------------------------------------------------------------------

func TestEnvName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		keyConfig:       "LINKIFY_CONFIG",
		keySiteDomain:   "LINKIFY_SITE_DOMAIN",
		keySiteMaxSize:  "LINKIFY_SITE_MAX_MESSAGE_SIZE",
		keyServerReadTO: "LINKIFY_SERVER_READ_TIMEOUT",
	}
	for key, want := range tests {
		if got := envName(key); got != want {
			t.Errorf("envName(%q) = %q, want %q", key, got, want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestApplyEnvConfig - Environment overrides
// ---------------------------------------------------------------------------

func TestApplyEnvConfig(t *testing.T) {
	t.Run("all variables", func(t *testing.T) {
		t.Setenv("LINKIFY_SITE_DOMAIN", "example.org")
		t.Setenv("LINKIFY_SITE_ALIASES", "a.example.org, b.example.org,,")
		t.Setenv("LINKIFY_SITE_MAX_MESSAGE_SIZE", "2048")
		t.Setenv("LINKIFY_OUTPUT_FORMAT", "html")
		t.Setenv("LINKIFY_OUTPUT_MARKER", "{path}")
		t.Setenv("LINKIFY_BATCH_WORKERS", "3")
		t.Setenv("LINKIFY_SERVER_ADDR", "127.0.0.1:9000")
		t.Setenv("LINKIFY_SERVER_MAX_BODY_BYTES", "4096")
		t.Setenv("LINKIFY_SERVER_READ_TIMEOUT", "3s")
		t.Setenv("LINKIFY_SERVER_WRITE_TIMEOUT", "4s")
		t.Setenv("LINKIFY_LOG_LEVEL", "debug")
		t.Setenv("LINKIFY_LOG_FORMAT", "json")

		cfg := config.DefaultConfig()
		if err := applyEnvConfig(newEnvViper(), cfg); err != nil {
			t.Fatalf("applyEnvConfig() error = %v", err)
		}

		want := config.DefaultConfig()
		want.Site.Domain = "example.org"
		want.Site.Aliases = []string{"a.example.org", "b.example.org"}
		want.Site.MaxMessageSize = 2048
		want.Output.Format = "html"
		want.Output.Marker = "{path}"
		want.Batch.Workers = 3
		want.Server.Addr = "127.0.0.1:9000"
		want.Server.MaxBodyBytes = 4096
		want.Server.ReadTimeout = "3s"
		want.Server.WriteTimeout = "4s"
		want.Log.Level = "debug"
		want.Log.Format = "json"

		if diff := cmp.Diff(want, cfg); diff != "" {
			t.Errorf("config mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unset leaves config untouched", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.Site.Domain = "from-file.example"
		if err := applyEnvConfig(newEnvViper(), cfg); err != nil {
			t.Fatalf("applyEnvConfig() error = %v", err)
		}
		if cfg.Site.Domain != "from-file.example" {
			t.Errorf("Site.Domain = %q, want from-file.example", cfg.Site.Domain)
		}
	})

	for _, name := range []string{
		"LINKIFY_SITE_MAX_MESSAGE_SIZE",
		"LINKIFY_BATCH_WORKERS",
		"LINKIFY_SERVER_MAX_BODY_BYTES",
	} {
		t.Run("invalid integer "+name, func(t *testing.T) {
			t.Setenv(name, "lots")

			err := applyEnvConfig(newEnvViper(), config.DefaultConfig())
			if !errors.Is(err, ErrInvalidEnv) {
				t.Fatalf("error = %v, want ErrInvalidEnv", err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestLoadConfig_Env - LINKIFY_CONFIG and precedence
// ---------------------------------------------------------------------------

func TestLoadConfig_Env(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "linkify.yaml")
	data := "site:\n  domain: file.example\noutput:\n  format: json\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("LINKIFY_CONFIG selects the file", func(t *testing.T) {
		t.Setenv("LINKIFY_CONFIG", path)

		cfg, err := loadConfig("")
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Site.Domain != "file.example" {
			t.Errorf("Site.Domain = %q, want file.example", cfg.Site.Domain)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LINKIFY_OUTPUT_FORMAT", "html")

		cfg, err := loadConfig(path)
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.Output.Format != "html" {
			t.Errorf("Output.Format = %q, want html", cfg.Output.Format)
		}
		if cfg.Site.Domain != "file.example" {
			t.Errorf("Site.Domain = %q, want file.example", cfg.Site.Domain)
		}
	})

	t.Run("flag wins over LINKIFY_CONFIG", func(t *testing.T) {
		t.Setenv("LINKIFY_CONFIG", filepath.Join(dir, "missing.yaml"))

		if _, err := loadConfig(path); err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
	})

	t.Run("missing file has hint", func(t *testing.T) {
		_, err := loadConfig(filepath.Join(dir, "missing.yaml"))
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
	})
}

// ---------------------------------------------------------------------------
// TestWarnUnknownEnvVars - Typo detection
// ---------------------------------------------------------------------------

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Setenv("LINKIFY_SITE_DOMIAN", "typo.example")
	t.Setenv("LINKIFY_SITE_DOMAIN", "ok.example")

	log, hook := test.NewNullLogger()
	warnUnknownEnvVars(log)

	var names []string
	for _, e := range hook.AllEntries() {
		if e.Level != logrus.WarnLevel {
			t.Errorf("level = %v, want warn", e.Level)
		}
		names = append(names, e.Data["variable"].(string))
	}
	if diff := cmp.Diff([]string{"LINKIFY_SITE_DOMIAN"}, names); diff != "" {
		t.Errorf("warned variables mismatch (-want +got):\n%s", diff)
	}
}
