// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/PoluyanbIch/GoQuizBot/internal/config"
)

// New returns a logger configured from cfg and a closer for the log file,
// if one was opened. Output goes to stderr and, with File set, to the file
// as well.
func New(cfg config.Log, component string) (*logrus.Logger, func() error, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, f))
		closer = f.Close
	}

	if component != "" {
		logger.AddHook(componentHook(component))
	}
	return logger, closer, nil
}

type componentHook string

func (componentHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h componentHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["component"]; !ok {
		e.Data["component"] = string(h)
	}
	return nil
}
