// Package instrument configures the process-wide structured logger.
package instrument

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

var log = logrus.New()

// Setup configures the logger from a level string. Unknown levels fall back
// to info. Diagnostic output goes to stderr so command output stays clean.
func Setup(level string) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

// Silence discards all log output. Used by tests.
func Silence() {
	log.SetOutput(io.Discard)
}

// Logger returns the configured logger.
func Logger() *logrus.Logger {
	return log
}

// WithField returns an entry with one structured field attached.
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields returns an entry with structured fields attached.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return log.WithFields(fields)
}
