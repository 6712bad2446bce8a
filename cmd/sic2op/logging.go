package main

import (
	"os"

	"github.com/rs/zerolog"
)

// newLogger builds the run logger. Progress and warnings go to stderr so
// stdout stays reserved for dry-run command lines and op output.
func newLogger(verbose, quiet bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.ErrorLevel
	}

	writer := zerolog.ConsoleWriter{Out: os.Stderr}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}
