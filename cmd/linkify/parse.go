package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/derwolz/rebelreads-linkify/internal/config"
	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
	"github.com/derwolz/rebelreads-linkify/internal/hints"
	"github.com/derwolz/rebelreads-linkify/internal/render"
)

// Sentinel errors for CLI I/O.
var (
	ErrReadInput   = errors.New("failed to read input")
	ErrWriteOutput = errors.New("failed to write output")
)

// runParse parses one message from a file or stdin and prints its segments.
func runParse(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseParseFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: parse takes at most one input, got %d", ErrUsage, len(positional))
	}

	setup, err := setupCommand(flags.common, flags.site, env, func(cfg *config.Config) {
		if flags.output.format != "" {
			cfg.Output.Format = flags.output.format
		}
		if flags.output.marker != "" {
			cfg.Output.Marker = flags.output.marker
		}
	})
	if err != nil {
		return err
	}

	input := fileutil.StdinPath
	if len(positional) == 1 {
		input = positional[0]
	}
	data, err := readMessage(input, env)
	if err != nil {
		return err
	}
	message := string(data)

	log := setup.log.WithFields(logrus.Fields{
		"input": input,
		"bytes": len(data),
	})
	if len(data) > setup.cfg.Site.MaxMessageSize && setup.cfg.Site.MaxMessageSize > 0 {
		log.Warn("Message exceeds site.maxMessageSize, previews skipped")
	}

	var buf bytes.Buffer
	if flags.analyze {
		report := setup.parser.Analyze(message)
		log.WithFields(logrus.Fields{
			"stripped":  len(report.Stripped),
			"preserved": len(report.Preserved),
		}).Debug("Message analyzed")
		if err := json.NewEncoder(&buf).Encode(report); err != nil {
			return fmt.Errorf("encoding report: %w", err)
		}
	} else {
		segments := setup.parser.Parse(message)
		log.WithField("segments", len(segments)).Debug("Message parsed")
		if err := render.Write(&buf, setup.cfg.Output.Format, segments, setup.cfg.Output.Marker); err != nil {
			return err
		}
		if buf.Len() == 0 || buf.Bytes()[buf.Len()-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	return writeOutput(flags.output.output, buf.Bytes(), env)
}

// readMessage reads input with the global size cap and wraps failures
// with ErrReadInput.
func readMessage(input string, env *Environment) ([]byte, error) {
	data, err := fileutil.ReadInput(input, env.Stdin, config.MaxMessageSize)
	if err != nil {
		if errors.Is(err, fileutil.ErrInputTooLarge) {
			return nil, fmt.Errorf("%w: %w%s", ErrReadInput, err, hints.ForInputTooLarge())
		}
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	return data, nil
}

// writeOutput writes data to path, or to stdout when path is empty.
func writeOutput(path string, data []byte, env *Environment) error {
	if path == "" {
		if _, err := env.Stdout.Write(data); err != nil {
			return fmt.Errorf("%w: %w", ErrWriteOutput, err)
		}
		return nil
	}
	if err := fileutil.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteOutput, err)
	}
	return nil
}
