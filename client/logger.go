package client

// Logger is an optional package logger for user-facing notices.
// *logrus.Logger satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	// Warnf logs a formatted warning message.
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}

// LoggerOrNop returns l, or a logger that discards everything when l is nil.
func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return nopLogger{}
	}
	return l
}
