package logger

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// Init configures the global logrus logger and returns an entry tagged with
// the service name. Production output is JSON so it can be shipped as is.
func Init(service, level string, production bool) *log.Entry {
	log.SetOutput(os.Stdout)
	if production {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)

	entry := log.WithField("service", service)
	if err != nil {
		entry.Warnf("unknown log level %q, using info", level)
	}
	return entry
}
