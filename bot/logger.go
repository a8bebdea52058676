package bot

import (
	"fmt"
	"os"

	"github.com/a04k/cogslash/config"

	"github.com/sirupsen/logrus"
)

// NewLogger builds the process logger from the logging config.
func NewLogger(cfg config.LoggingConfig) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	log.SetLevel(level)

	if cfg.Format == config.FormatJSON {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}
