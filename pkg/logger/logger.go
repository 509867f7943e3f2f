package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Log is the process-wide logger. It is usable before InitLogger runs.
var Log = newDefault()

func newDefault() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Options tune the logger set up by InitLogger.
type Options struct {
	Level  string    // logrus level name, defaults to "info"
	Format string    // "json" (default) or "text"
	Output io.Writer // defaults to stdout
}

func InitLogger(opts Options) {
	Log = logrus.New()

	// Output to stdout instead of the default stderr
	Log.Out = os.Stdout
	if opts.Output != nil {
		Log.Out = opts.Output
	}

	if opts.Format == "text" {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		Log.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)
}

// Discard returns a logger that drops everything. Handy in tests.
func Discard() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
