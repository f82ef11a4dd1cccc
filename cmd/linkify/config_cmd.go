package main

import (
	"fmt"

	"github.com/derwolz/rebelreads-linkify/internal/yamlutil"
)

// runConfig prints the effective configuration after file and
// environment overrides, or only validates it with --check.
func runConfig(args []string, env *Environment) error {
	flags, positional, err := parseConfigFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: config takes no arguments", ErrUsage)
	}

	cfg, err := loadConfig(flags.common.config)
	if err != nil {
		return err
	}
	mergeCommonFlags(flags.common, cfg)
	if err := validateConfig(cfg); err != nil {
		return err
	}

	if flags.check {
		if !flags.common.quiet {
			fmt.Fprintln(env.Stdout, "config ok")
		}
		return nil
	}

	data, err := yamlutil.Marshal(cfg)
	if err != nil {
		return err
	}
	return writeOutput("", data, env)
}
