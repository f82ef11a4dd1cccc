package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"

	"github.com/derwolz/rebelreads-linkify/internal/config"
)

// ErrUsage wraps flag and argument errors.
var ErrUsage = errors.New("invalid usage")

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// siteFlags holds parser domain flags.
type siteFlags struct {
	domain  string
	aliases []string
	maxSize int
}

// outputFlags holds rendering flags.
type outputFlags struct {
	format string
	marker string
	output string
}

// parseCmdFlags holds all flags for the parse command.
type parseCmdFlags struct {
	common  commonFlags
	site    siteFlags
	output  outputFlags
	analyze bool
}

// batchCmdFlags holds all flags for the batch command.
type batchCmdFlags struct {
	common  commonFlags
	site    siteFlags
	output  string
	workers int
	analyze bool
}

// serveCmdFlags holds all flags for the serve command.
type serveCmdFlags struct {
	common  commonFlags
	site    siteFlags
	addr    string
	marker  string
	maxBody int64
}

// configCmdFlags holds all flags for the config command.
type configCmdFlags struct {
	common commonFlags
	check  bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")
}

// addSiteFlags adds site domain flags to a FlagSet.
func addSiteFlags(fs *flag.FlagSet, f *siteFlags) {
	fs.StringVarP(&f.domain, "domain", "d", "", "site domain whose links become previews")
	fs.StringSliceVar(&f.aliases, "alias", nil, "extra site domain (repeatable)")
	fs.IntVar(&f.maxSize, "max-size", 0, "largest message scanned for previews, in bytes")
}

func newFlagSet(name string, stderr io.Writer, usage func(io.Writer)) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { usage(stderr) }
	return fs
}

func parseFlagSet(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	return nil
}

// parseParseFlags parses parse command flags and returns positional args.
func parseParseFlags(args []string, stderr io.Writer) (*parseCmdFlags, []string, error) {
	fs := newFlagSet("parse", stderr, printParseUsage)
	f := &parseCmdFlags{}

	fs.StringVarP(&f.output.format, "format", "f", "", "output format: text, json, html")
	fs.StringVarP(&f.output.marker, "marker", "m", "", "text preview marker, {kind} and {path} substituted")
	fs.StringVarP(&f.output.output, "output", "o", "", "output file (default stdout)")
	fs.BoolVarP(&f.analyze, "analyze", "a", false, "emit stripped and preserved URLs as JSON")
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseBatchFlags parses batch command flags and returns positional args.
func parseBatchFlags(args []string, stderr io.Writer) (*batchCmdFlags, []string, error) {
	fs := newFlagSet("batch", stderr, printBatchUsage)
	f := &batchCmdFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.BoolVarP(&f.analyze, "analyze", "a", false, "include stripped and preserved URLs")
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, stderr io.Writer) (*serveCmdFlags, []string, error) {
	fs := newFlagSet("serve", stderr, printServeUsage)
	f := &serveCmdFlags{}

	fs.StringVar(&f.addr, "addr", "", "listen address (default :8080)")
	fs.StringVarP(&f.marker, "marker", "m", "", "text preview marker for /render")
	fs.Int64Var(&f.maxBody, "max-body", 0, "request body limit in bytes")
	addCommonFlags(fs, &f.common)
	addSiteFlags(fs, &f.site)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// parseConfigFlags parses config command flags.
func parseConfigFlags(args []string, stderr io.Writer) (*configCmdFlags, []string, error) {
	fs := newFlagSet("config", stderr, printConfigUsage)
	f := &configCmdFlags{}

	fs.BoolVar(&f.check, "check", false, "validate only, print nothing on success")
	addCommonFlags(fs, &f.common)

	if err := parseFlagSet(fs, args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}

// mergeSiteFlags applies explicitly set site flags over cfg.
func mergeSiteFlags(f siteFlags, cfg *config.Config) {
	if f.domain != "" {
		cfg.Site.Domain = f.domain
	}
	if len(f.aliases) > 0 {
		cfg.Site.Aliases = append(cfg.Site.Aliases, f.aliases...)
	}
	if f.maxSize > 0 {
		cfg.Site.MaxMessageSize = f.maxSize
	}
}

// mergeCommonFlags maps -v/-q onto the log level.
func mergeCommonFlags(f commonFlags, cfg *config.Config) {
	switch {
	case f.verbose:
		cfg.Log.Level = "debug"
	case f.quiet:
		cfg.Log.Level = "error"
	}
}
