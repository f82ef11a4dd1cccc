package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	linkify "github.com/derwolz/rebelreads-linkify"
	"github.com/derwolz/rebelreads-linkify/internal/config"
	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
	"github.com/derwolz/rebelreads-linkify/internal/hints"
)

// loadConfig resolves the effective configuration from the --config flag
// or LINKIFY_CONFIG, then LINKIFY_* overrides. Command flags are merged
// by the caller, which must call Validate afterwards.
func loadConfig(flagConfig string) (*config.Config, error) {
	v := newEnvViper()

	name := flagConfig
	if name == "" {
		name = v.GetString(keyConfig)
	}

	cfg := config.DefaultConfig()
	if name != "" {
		loaded, err := config.LoadConfig(name)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				var searched []string
				if !fileutil.IsFilePath(name) {
					searched = config.SearchPaths(name)
				}
				return nil, fmt.Errorf("%w%s", err, hints.ForConfigNotFound(searched))
			}
			return nil, err
		}
		cfg = loaded
	}

	if err := applyEnvConfig(v, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validateConfig runs config validation and decorates known failures
// with hints.
func validateConfig(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrUnknownFormat) {
			return fmt.Errorf("%w%s", err, hints.ForUnknownFormat([]string{
				config.FormatText, config.FormatJSON, config.FormatHTML,
			}))
		}
		return err
	}
	return nil
}

// newLogger builds the CLI logger. Logs go to w so stdout stays
// reserved for command output.
func newLogger(cfg config.LogConfig, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)

	if strings.EqualFold(cfg.Format, config.LogFormatJSON) {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level := logrus.InfoLevel
	if cfg.Level != "" {
		if parsed, err := logrus.ParseLevel(cfg.Level); err == nil {
			level = parsed
		}
	}
	log.SetLevel(level)
	return log
}

// buildParser creates a parser for the configured site.
func buildParser(site config.SiteConfig) (*linkify.Parser, error) {
	var opts []linkify.Option
	if site.Domain != "" {
		opts = append(opts, linkify.WithSiteDomain(site.Domain))
	}
	if len(site.Aliases) > 0 {
		opts = append(opts, linkify.WithExtraSiteDomains(site.Aliases...))
	}
	if site.MaxMessageSize > 0 {
		opts = append(opts, linkify.WithMaxMessageSize(site.MaxMessageSize))
	}

	p, err := linkify.New(opts...)
	if err != nil {
		if errors.Is(err, linkify.ErrInvalidDomain) {
			return nil, fmt.Errorf("%w%s", err, hints.ForInvalidDomain())
		}
		return nil, err
	}
	return p, nil
}

// commandSetup is the state every command starts from.
type commandSetup struct {
	cfg    *config.Config
	log    *logrus.Logger
	parser *linkify.Parser
}

// setupCommand loads config, applies flags through merge, validates, and
// builds the logger and parser.
func setupCommand(common commonFlags, site siteFlags, env *Environment, merge func(*config.Config)) (*commandSetup, error) {
	cfg, err := loadConfig(common.config)
	if err != nil {
		return nil, err
	}
	mergeSiteFlags(site, cfg)
	mergeCommonFlags(common, cfg)
	if merge != nil {
		merge(cfg)
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log := newLogger(cfg.Log, env.Stderr)
	warnUnknownEnvVars(log)

	parser, err := buildParser(cfg.Site)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"siteDomain": parser.SiteDomain(),
		"aliases":    len(cfg.Site.Aliases),
	}).Debug("Parser ready")

	return &commandSetup{cfg: cfg, log: log, parser: parser}, nil
}
