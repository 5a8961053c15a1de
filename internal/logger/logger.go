// Package logger exposes a process-wide structured logger. Log output is
// JSON so the catalog consumer's activity lines and the server's own logs
// can be shipped to the same place.
package logger

import (
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Init configures the logger. Level defaults to info; LOG_LEVEL overrides.
func Init() {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}
}

// Get returns the shared logger, initializing it on first use.
func Get() *logrus.Logger {
	once.Do(func() {
		if log == nil {
			Init()
		}
	})
	return log
}
