package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Service string
	Env     string
	Level   string
	Output  io.Writer
}

func New(opts Options) *logrus.Entry {
	l := logrus.New()
	l.SetFormatter(&logrus.JSONFormatter{})
	l.SetLevel(parseLevel(opts.Level))

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)

	return l.WithFields(logrus.Fields{
		"service": opts.Service,
		"env":     opts.Env,
	})
}

// Discard returns an entry that drops everything; handy in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func parseLevel(lvl string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "warning":
		return logrus.WarnLevel
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(lvl))
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}
