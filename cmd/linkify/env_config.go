package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/derwolz/rebelreads-linkify/internal/config"
)

// ErrInvalidEnv is returned when a LINKIFY_* variable cannot be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

const envPrefix = "LINKIFY"

// Config keys read from the environment. "site.domain" maps to
// LINKIFY_SITE_DOMAIN.
const (
	keyConfig         = "config"
	keySiteDomain     = "site.domain"
	keySiteAliases    = "site.aliases"
	keySiteMaxSize    = "site.max_message_size"
	keyOutputFormat   = "output.format"
	keyOutputMarker   = "output.marker"
	keyBatchWorkers   = "batch.workers"
	keyServerAddr     = "server.addr"
	keyServerMaxBody  = "server.max_body_bytes"
	keyServerReadTO   = "server.read_timeout"
	keyServerWriteTO  = "server.write_timeout"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	envKeySeparator   = "."
	envNameSeparator  = "_"
	aliasListSplitter = ","
)

var envKeys = []string{
	keyConfig,
	keySiteDomain, keySiteAliases, keySiteMaxSize,
	keyOutputFormat, keyOutputMarker,
	keyBatchWorkers,
	keyServerAddr, keyServerMaxBody, keyServerReadTO, keyServerWriteTO,
	keyLogLevel, keyLogFormat,
}

// knownEnvVars lists valid LINKIFY_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = func() map[string]bool {
	m := make(map[string]bool, len(envKeys))
	for _, k := range envKeys {
		m[envName(k)] = true
	}
	return m
}()

func envName(key string) string {
	return envPrefix + envNameSeparator +
		strings.ToUpper(strings.ReplaceAll(key, envKeySeparator, envNameSeparator))
}

// newEnvViper returns a viper instance that resolves keys from LINKIFY_*.
func newEnvViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(envKeySeparator, envNameSeparator))
	v.AutomaticEnv()
	return v
}

// warnUnknownEnvVars logs warnings for unrecognized LINKIFY_* variables.
// Helps catch typos like LINKIFY_SITE_DOMIAN.
func warnUnknownEnvVars(log logrus.FieldLogger) {
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, envPrefix+envNameSeparator) {
			continue
		}
		name := strings.SplitN(env, "=", 2)[0]
		if !knownEnvVars[name] {
			log.WithField("variable", name).Warn("Unknown environment variable (typo?)")
		}
	}
}

// applyEnvConfig applies set LINKIFY_* values over cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later by each command).
func applyEnvConfig(v *viper.Viper, cfg *config.Config) error {
	if v.IsSet(keySiteDomain) {
		cfg.Site.Domain = v.GetString(keySiteDomain)
	}
	if v.IsSet(keySiteAliases) {
		cfg.Site.Aliases = splitList(v.GetString(keySiteAliases))
	}
	if v.IsSet(keySiteMaxSize) {
		n, err := envInt(v, keySiteMaxSize)
		if err != nil {
			return err
		}
		cfg.Site.MaxMessageSize = n
	}

	if v.IsSet(keyOutputFormat) {
		cfg.Output.Format = v.GetString(keyOutputFormat)
	}
	if v.IsSet(keyOutputMarker) {
		cfg.Output.Marker = v.GetString(keyOutputMarker)
	}

	if v.IsSet(keyBatchWorkers) {
		n, err := envInt(v, keyBatchWorkers)
		if err != nil {
			return err
		}
		cfg.Batch.Workers = n
	}

	if v.IsSet(keyServerAddr) {
		cfg.Server.Addr = v.GetString(keyServerAddr)
	}
	if v.IsSet(keyServerMaxBody) {
		n, err := envInt(v, keyServerMaxBody)
		if err != nil {
			return err
		}
		cfg.Server.MaxBodyBytes = int64(n)
	}
	if v.IsSet(keyServerReadTO) {
		cfg.Server.ReadTimeout = v.GetString(keyServerReadTO)
	}
	if v.IsSet(keyServerWriteTO) {
		cfg.Server.WriteTimeout = v.GetString(keyServerWriteTO)
	}

	if v.IsSet(keyLogLevel) {
		cfg.Log.Level = v.GetString(keyLogLevel)
	}
	if v.IsSet(keyLogFormat) {
		cfg.Log.Format = v.GetString(keyLogFormat)
	}
	return nil
}

// envInt parses an integer variable strictly; viper's GetInt maps
// garbage to 0 silently.
func envInt(v *viper.Viper, key string) (int, error) {
	raw := strings.TrimSpace(v.GetString(key))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q is not an integer", ErrInvalidEnv, envName(key), raw)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, aliasListSplitter) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
