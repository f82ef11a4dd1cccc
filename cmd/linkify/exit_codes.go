package main

import (
	"errors"
	"io/fs"

	linkify "github.com/derwolz/rebelreads-linkify"
	"github.com/derwolz/rebelreads-linkify/internal/config"
	"github.com/derwolz/rebelreads-linkify/internal/fileutil"
	"github.com/derwolz/rebelreads-linkify/internal/render"
	"github.com/derwolz/rebelreads-linkify/internal/server"
)

// Exit codes for the linkify CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Command completed
	ExitGeneral = 1 // General/unexpected error, including failed batch lines
	ExitUsage   = 2 // Invalid flags, config, or environment
	ExitIO      = 3 // File not found, permission denied, listen failure
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// I/O errors (exit 3)
	if errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fileutil.ErrIsDirectory) ||
		errors.Is(err, fileutil.ErrInputTooLarge) ||
		errors.Is(err, ErrReadInput) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, server.ErrListen) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidEnv) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, config.ErrUnknownFormat) ||
		errors.Is(err, render.ErrUnknownFormat) ||
		errors.Is(err, linkify.ErrInvalidDomain) ||
		errors.Is(err, linkify.ErrInvalidMaxSize) {
		return ExitUsage
	}

	return ExitGeneral
}
