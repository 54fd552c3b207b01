// Package logging configures the global zerolog logger. The terminal is
// owned by the UI, so logs only ever go to a file.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Setup points the global logger at path with the given level. An empty
// path disables logging. The returned closer must be closed on exit.
func Setup(path, level string) (io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}
	zerolog.TimeFieldFormat = time.RFC3339Nano

	if path == "" {
		log.Logger = zerolog.Nop()
		return nopCloser{}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.Logger = zerolog.New(f).Level(lvl).With().Timestamp().Logger()
	return f, nil
}
