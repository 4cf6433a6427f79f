// Package log provides the logger used across the emulator core. It wraps
// logrus with the text formatter settings the core favours: no colour, no
// timestamp (the host decides how to surface log lines), and stable field
// ordering so warnings from the bus adapter read the same across runs.
package log

import "github.com/sirupsen/logrus"

// Logger is the subset of logrus.FieldLogger the core depends on.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// New returns a Logger at the given level (e.g. logrus.WarnLevel).
func New(level logrus.Level) Logger {
	l := logrus.New()
	l.SetLevel(level)
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   false,
		DisableQuote:     true,
	}
	return l
}
