// Package logger configures the shared logrus instance used by handlers,
// background jobs and queue consumers.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New builds a *logrus.Logger from the LOG_LEVEL and LOG_FORMAT environment
// variables.  Unknown levels fall back to info.  LOG_FORMAT=json switches to
// the JSON formatter, which is what production deployments scrape; the
// default text formatter is friendlier for local runs.
func New() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if os.Getenv("LOG_FORMAT") == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}
	return log
}
