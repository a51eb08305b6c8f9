// Package logging constructs the process-wide structured logger.
package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a JSON-formatted logger writing to stdout. The level comes
// from LEDGER_LOG_LEVEL (default info).
func New() *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	level, err := logrus.ParseLevel(os.Getenv("LEDGER_LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}
