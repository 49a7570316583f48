package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Fields carries structured log context.
type Fields map[string]interface{}

// LoggerV2 is the structured logger used across the service. Each
// component gets its own instance tagged with the component name.
type LoggerV2 struct {
	entry *logrus.Entry
}

// NewLoggerV2 creates a structured logger for the named component.
func NewLoggerV2(component string) *LoggerV2 {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{})

	if level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(level)
	}

	return &LoggerV2{
		entry: l.WithField("component", component),
	}
}

func (l *LoggerV2) Debug(msg string, fields ...Fields) {
	l.withFields(fields).Debug(msg)
}

func (l *LoggerV2) Info(msg string, fields ...Fields) {
	l.withFields(fields).Info(msg)
}

func (l *LoggerV2) Warn(msg string, fields ...Fields) {
	l.withFields(fields).Warn(msg)
}

func (l *LoggerV2) Error(msg string, fields ...Fields) {
	l.withFields(fields).Error(msg)
}

func (l *LoggerV2) Fatal(msg string, fields ...Fields) {
	l.withFields(fields).Fatal(msg)
}

func (l *LoggerV2) withFields(fields []Fields) *logrus.Entry {
	entry := l.entry
	for _, f := range fields {
		entry = entry.WithFields(logrus.Fields(f))
	}
	return entry
}

// Infof logs an unstructured message at info level.
// Deprecated: Use LoggerV2 with Fields instead.
func Infof(format string, args ...interface{}) {
	logrus.StandardLogger().Infof(format, args...)
}
