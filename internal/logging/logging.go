// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"gstreco/internal/config"
)

// Setup applies cfg to the standard logrus logger. Format "json" selects the
// JSON formatter; anything else prints human readable text. An unknown level
// falls back to info.
func Setup(cfg *config.LogConfig) *logrus.Logger {
	return configure(logrus.StandardLogger(), cfg, os.Stdout)
}

func configure(logger *logrus.Logger, cfg *config.LogConfig, out io.Writer) *logrus.Logger {
	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetOutput(out)
	return logger
}
