package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/derwolz/rebelreads-linkify/internal/config"
	"github.com/derwolz/rebelreads-linkify/internal/hints"
	"github.com/derwolz/rebelreads-linkify/internal/server"
)

// runServe starts the HTTP API and blocks until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: serve takes no arguments", ErrUsage)
	}

	setup, err := setupCommand(flags.common, flags.site, env, func(cfg *config.Config) {
		if flags.addr != "" {
			cfg.Server.Addr = flags.addr
		}
		if flags.marker != "" {
			cfg.Output.Marker = flags.marker
		}
		if flags.maxBody > 0 {
			cfg.Server.MaxBodyBytes = flags.maxBody
		}
	})
	if err != nil {
		return err
	}

	srv := server.New(setup.parser, setup.log, server.Options{
		Addr:         setup.cfg.Server.Addr,
		ReadTimeout:  setup.cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: setup.cfg.Server.WriteTimeoutDuration(),
		MaxBodyBytes: setup.cfg.Server.MaxBodyBytes,
		Marker:       setup.cfg.Output.Marker,
	})

	if err := srv.ListenAndServe(ctx); err != nil {
		if errors.Is(err, server.ErrListen) {
			return fmt.Errorf("%w%s", err, hints.ForAddressInUse(setup.cfg.Server.Addr))
		}
		return err
	}
	return nil
}
