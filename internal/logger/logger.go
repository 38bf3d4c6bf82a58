// Package logger initializes the process-wide logrus logger from the
// logging configuration.
package logger

import (
	"io"
	"os"
	"path"

	log "github.com/sirupsen/logrus"
)

const (
	logFileName       = "redink.log"
	accessLogFileName = "redink-access.log"
)

// Init configures level, format and output of the internal logger.
// With a dir set, logs go to <dir>/redink.log; stderr additionally mirrors
// them there. Without either, stderr is used.
func Init(level, dir string, stderr bool) {
	log.SetFormatter(
		&log.TextFormatter{
			FullTimestamp: true,
		},
	)
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	if dir == "" {
		log.SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(path.Join(dir, logFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.WithError(err).Error("could not open log file, falling back to stderr")
		log.SetOutput(os.Stderr)
		return
	}
	if stderr {
		log.SetOutput(io.MultiWriter(os.Stderr, f))
		return
	}
	log.SetOutput(f)
}

// AccessWriter returns the writer for the http access log. With a dir set,
// access logs go to <dir>/redink-access.log, optionally mirrored to stderr.
// Without either, stdout is used.
func AccessWriter(dir string, stderr bool) io.Writer {
	if dir == "" {
		if stderr {
			return os.Stderr
		}
		return os.Stdout
	}
	f, err := os.OpenFile(path.Join(dir, accessLogFileName), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		log.WithError(err).Error("could not open access log file, falling back to stdout")
		return os.Stdout
	}
	if stderr {
		return io.MultiWriter(os.Stderr, f)
	}
	return f
}
