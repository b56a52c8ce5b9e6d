package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process logger. dev gets debug output, everything else
// starts at info.
func New(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv == "dev" {
		level = zerolog.DebugLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)
}
