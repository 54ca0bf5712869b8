package logger

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger. Development mode writes human readable
// console output, otherwise JSON lines go to stderr.
func Setup(dev bool, levelName string) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil || levelName == "" {
		level = zerolog.InfoLevel
	}
	if dev && level > zerolog.DebugLevel {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
			Level(level).With().Stack().Logger()
	}

	return logger
}
