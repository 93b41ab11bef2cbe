// Package logging builds the process logger for the csvguess CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// New returns a logrus logger writing to w at the given level and format.
// Empty level and format default to info and text.
func New(level, format string, w io.Writer) (*logrus.Logger, error) {
	l := logrus.New()
	l.SetOutput(w)

	lvl := logrus.InfoLevel
	if s := strings.TrimSpace(level); s != "" {
		var err error
		if lvl, err = logrus.ParseLevel(s); err != nil {
			return nil, fmt.Errorf("invalid log level: %w", err)
		}
	}
	l.SetLevel(lvl)

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unsupported log format: %s", format)
	}
	return l, nil
}
