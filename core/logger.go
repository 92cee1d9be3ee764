package core

import "log"

// Logger is any service that can log messages at the usual levels.
// Extra args may carry errors, key/value maps or the acting user's profile.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

type consoleLogger struct {
	std     *log.Logger
	enabled bool
}

var _ Logger = (*consoleLogger)(nil)

// NewConsoleLogger returns a Logger writing to the standard logger; used in
// DEV/TEST where no error tracker is configured.
func NewConsoleLogger(std *log.Logger) Logger {
	return &consoleLogger{std: std, enabled: true}
}

func (l *consoleLogger) Enable(enabled bool) { l.enabled = enabled }

func (l *consoleLogger) print(lvl, msg string, args []interface{}) {
	if !l.enabled {
		return
	}
	l.std.Printf("%s: %s", lvl, msg)
	for _, arg := range args {
		l.std.Printf("%+v", arg)
	}
}

func (l *consoleLogger) Debug(msg string, args ...interface{}) { l.print("DEBUG", msg, args) }
func (l *consoleLogger) Info(msg string, args ...interface{})  { l.print("INFO", msg, args) }
func (l *consoleLogger) Warn(msg string, args ...interface{})  { l.print("WARN", msg, args) }
func (l *consoleLogger) Error(msg string, args ...interface{}) { l.print("ERROR", msg, args) }
func (l *consoleLogger) Fatal(msg string, args ...interface{}) {
	l.print("FATAL", msg, args)
	l.std.Fatal(msg)
}
