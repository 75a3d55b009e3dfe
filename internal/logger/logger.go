package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/pageza/foodgram/backend/config"
)

// Init configures the global zerolog logger. Development gets a console writer
// unless JSON output is forced; a log file, when set, is rotated by lumberjack.
func Init(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))

	log.Logger = zerolog.New(output(cfg)).With().Timestamp().Logger()
}

func output(cfg *config.Config) io.Writer {
	var console io.Writer = os.Stderr
	if cfg.Environment == config.Development && !cfg.LogJSON {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if cfg.LogFile == "" {
		return console
	}

	file := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    50,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(console, file)
}

func parseLevel(raw string) zerolog.Level {
	level, err := zerolog.ParseLevel(strings.ToLower(raw))
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}
