package logger

import (
	"os"

	"github.com/rs/zerolog"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// New builds the daemon's logger. With no file configured it writes a
// human-readable console stream to stderr (the right thing for `levin
// start` run under a supervisor that already timestamps output); with a
// file configured it writes structured JSON lines through a rotating
// writer so an unattended daemon never fills the disk with its own logs.
func New(level, file string) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		logLevel = zerolog.InfoLevel
	}

	if file == "" {
		writer := zerolog.ConsoleWriter{Out: os.Stderr}
		return zerolog.New(writer).With().Timestamp().Logger().Level(logLevel)
	}

	writer := &lumberjack.Logger{
		Filename:   file,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return zerolog.New(writer).With().Timestamp().Logger().Level(logLevel)
}
