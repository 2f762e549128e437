package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Supported values for the LOG_FORMAT setting.
const (
	FormatJSON   = "json"
	FormatPretty = "pretty"
)

// New builds a logger writing to out. level is a logrus level name and
// defaults to info; format is "json" (the default) or "pretty".
func New(out io.Writer, level, format string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(out)

	if level == "" {
		level = logrus.InfoLevel.String()
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(parsed)

	switch strings.ToLower(format) {
	case "", FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case FormatPretty:
		logger.SetFormatter(NewConsoleFormatter())
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}

	return logger, nil
}
