// Package logging builds the zerolog logger shared by the CLI, the compiler
// and the scanner.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// EnvLevel overrides the configured level when set.
const EnvLevel = "YRX_LOG_LEVEL"

// DefaultLevel keeps the CLI quiet unless something goes wrong.
const DefaultLevel = "warn"

// ResolveLevel picks the level: an explicit flag wins, then the environment,
// then the config file, then DefaultLevel.
func ResolveLevel(flag, config string) string {
	for _, l := range []string{flag, os.Getenv(EnvLevel), config} {
		if l = strings.TrimSpace(l); l != "" {
			return l
		}
	}
	return DefaultLevel
}

// New returns a logger writing to w. With console set the output is the
// human-readable zerolog.ConsoleWriter, otherwise one JSON object per line.
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}
