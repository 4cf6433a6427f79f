package log

// nullLogger is a logger that does nothing; used by tests that don't want
// bus-adapter warnings cluttering output.
type nullLogger struct{}

func (n nullLogger) Infof(format string, args ...interface{})  {}
func (n nullLogger) Warnf(format string, args ...interface{})  {}
func (n nullLogger) Errorf(format string, args ...interface{}) {}
func (n nullLogger) Debugf(format string, args ...interface{}) {}

// NewNullLogger returns a logger that discards everything.
func NewNullLogger() Logger {
	return &nullLogger{}
}
