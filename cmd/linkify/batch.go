package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	linkify "github.com/derwolz/rebelreads-linkify"
	"github.com/derwolz/rebelreads-linkify/internal/config"
	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
	"github.com/derwolz/rebelreads-linkify/internal/hints"
)

// ErrBatchFailed is returned when one or more batch lines could not be parsed.
var ErrBatchFailed = errors.New("batch had failed lines")

// maxBatchLine bounds a single JSON line: the message plus escaping overhead.
const maxBatchLine = 2*config.MaxMessageSize + 1024

// batchInput is one line of batch input.
type batchInput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// batchOutput is one line of batch output. Exactly one of Segments and
// Error is set.
type batchOutput struct {
	ID        string            `json:"id"`
	Line      int               `json:"line,omitempty"`
	Segments  []linkify.Segment `json:"segments,omitempty"`
	Stripped  []string          `json:"stripped,omitempty"`
	Preserved []string          `json:"preserved,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// batchLine is a raw input line and its 1-based position.
type batchLine struct {
	num  int
	data []byte
}

// runBatch parses JSON-lines comments in parallel and writes one result
// line per input line, in input order.
func runBatch(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseBatchFlags(args, env.Stderr)
	if err != nil {
		return err
	}
	if len(positional) > 1 {
		return fmt.Errorf("%w: batch takes at most one input, got %d", ErrUsage, len(positional))
	}

	setup, err := setupCommand(flags.common, flags.site, env, func(cfg *config.Config) {
		if flags.workers > 0 {
			cfg.Batch.Workers = flags.workers
		}
	})
	if err != nil {
		return err
	}

	input := fileutil.StdinPath
	if len(positional) == 1 {
		input = positional[0]
	}
	lines, err := readBatchLines(input, env)
	if err != nil {
		return err
	}

	workers := resolveWorkers(flags.workers, setup.cfg.Batch.Workers)
	log := setup.log.WithFields(logrus.Fields{
		"input":   input,
		"lines":   len(lines),
		"workers": workers,
	})
	log.Debug("Starting batch")

	start := env.Now()
	results, err := processBatch(ctx, setup.parser, lines, workers, flags.analyze)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
			log.WithFields(logrus.Fields{"line": r.Line, "id": r.ID}).Warn(r.Error)
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("encoding result line %d: %w", r.Line, err)
		}
	}
	if err := writeOutput(flags.output, buf.Bytes(), env); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"failed":   failed,
		"duration": env.Now().Sub(start).String(),
	}).Info("Batch complete")

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d%s", ErrBatchFailed, failed, len(results), hints.ForBatchLine())
	}
	return nil
}

// readBatchLines reads non-blank lines from input.
func readBatchLines(input string, env *Environment) ([]batchLine, error) {
	var r io.Reader
	if input == fileutil.StdinPath {
		r = env.Stdin
	} else {
		f, err := os.Open(input) // #nosec G304 -- input path is user-provided
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	var lines []batchLine
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxBatchLine)
	num := 0
	for scanner.Scan() {
		num++
		data := bytes.TrimSpace(scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		lines = append(lines, batchLine{num: num, data: bytes.Clone(data)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: line %d: %w", ErrReadInput, num+1, err)
	}
	return lines, nil
}

// processBatch runs processLine over lines with at most workers in flight.
// Results keep input order. Cancelling ctx stops scheduling new lines.
func processBatch(ctx context.Context, parser *linkify.Parser, lines []batchLine, workers int, analyze bool) ([]batchOutput, error) {
	results := make([]batchOutput, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, line := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = processLine(parser, line, analyze)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// processLine decodes and parses a single input line.
func processLine(parser *linkify.Parser, line batchLine, analyze bool) batchOutput {
	out := batchOutput{Line: line.num}

	var in batchInput
	dec := json.NewDecoder(bytes.NewReader(line.data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		out.Error = "invalid line: " + err.Error()
		return out
	}
	out.ID = in.ID
	if in.ID == "" {
		out.Error = "missing id"
		return out
	}

	if analyze {
		report := parser.Analyze(in.Message)
		out.Segments = report.Segments
		out.Stripped = report.Stripped
		out.Preserved = report.Preserved
		return out
	}
	out.Segments = parser.Parse(in.Message)
	return out
}
