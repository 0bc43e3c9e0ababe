package utils

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// InitLogger configures the global logrus logger. JSON output with ISO 8601
// timestamps in production, text output in development.
func InitLogger(environment, level string) {
	if environment == "development" {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&log.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05Z07:00",
		})
	}

	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

// Component returns a logger entry tagged with the owning component.
func Component(name string) *log.Entry {
	return log.WithField("component", name)
}
