package logger

import (
	"path/filepath"

	"github.com/natefinch/lumberjack"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

const timestampFormat = "2006-01-02 15:04:05"

// Config holds the options used when initialising the global logger.
type Config struct {
	// Verbosity maps -v flags to levels: 0 info, 1 debug, 2+ trace.
	Verbosity int
	// File is the activity log path. Empty disables file logging.
	File string

	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func Init(cfg Config) error {
	logrus.SetLevel(levelFor(cfg.Verbosity))
	logrus.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: timestampFormat,
		ForceFormatting: true,
	})

	if cfg.File == "" {
		return nil
	}

	path, err := filepath.Abs(cfg.File)
	if err != nil {
		return errors.Wrapf(err, "resolve log file path %q", cfg.File)
	}

	logrus.AddHook(newFileHook(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}))

	return nil
}

// GetLogger returns an entry tagged with the component name, rendered as the
// prefix by the console formatter.
func GetLogger(prefix string) *logrus.Entry {
	return logrus.WithField("prefix", prefix)
}

func levelFor(verbosity int) logrus.Level {
	switch {
	case verbosity <= 0:
		return logrus.InfoLevel
	case verbosity == 1:
		return logrus.DebugLevel
	default:
		return logrus.TraceLevel
	}
}
