package support

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
)

func NewLogger(cfg Config) (*zerolog.Logger, error) {
	logger, err := newLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}

	return &logger, nil
}

func newLogger(cfg Config, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	if cfg.LogFormat == "console" {
		out = zerolog.ConsoleWriter{Out: out}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// ConfigureLogrus aligns the standard logrus logger, used for access logs,
// with the zerolog configuration.
func ConfigureLogrus(cfg Config) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return nil
}
