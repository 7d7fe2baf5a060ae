package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is the process wide logger set up by InitLogger.
var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

// InitLogger configures Logger to write to stderr. Stdout is left to command
// output. verbose forces the debug level.
func InitLogger(appName, level string, verbose bool) {
	if verbose {
		level = "debug"
	}
	configureLogger(Logger, os.Stderr, appName, level)
}

// NewLogger returns a logger configured like InitLogger's, writing to w.
func NewLogger(w io.Writer, appName, level string) *logrus.Logger {
	l := logrus.New()
	configureLogger(l, w, appName, level)
	return l
}

func configureLogger(l *logrus.Logger, w io.Writer, appName, level string) {
	l.SetOutput(w)

	levelStr := strings.ToLower(level)
	if levelStr == "" {
		levelStr = "info"
	}
	lvl, err := logrus.ParseLevel(levelStr)
	if err != nil {
		l.Warnf("Invalid log level '%s', defaulting to INFO", levelStr)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	l.ReplaceHooks(make(logrus.LevelHooks))
	l.AddHook(&appNameHook{appName})
}
