// Package logger wraps logrus so every component logs with its own name field.
package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Logger ..
type Logger struct {
	*logrus.Entry
}

// Config ..
type Config struct {
	Name   string
	Debug  bool
	JSON   bool
	Output io.Writer
}

// New builds a logger from cfg.
func New(cfg Config) *Logger {
	l := logrus.New()
	if cfg.Output != nil {
		l.SetOutput(cfg.Output)
	} else {
		l.SetOutput(os.Stderr)
	}
	if cfg.JSON {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if cfg.Debug {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	name := cfg.Name
	if name == "" {
		name = "gymkit"
	}
	return &Logger{Entry: l.WithField("component", name)}
}

// NewDefault ..
func NewDefault(name string) *Logger {
	return New(Config{Name: name})
}

// Discard is used by tests and by callers that pass no logger.
func Discard() *Logger {
	return New(Config{Output: io.Discard})
}

// Named returns a child logger for a sub component.
func (l *Logger) Named(name string) *Logger {
	return &Logger{Entry: l.Entry.WithField("component", name)}
}
