package logging

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger: JSON in production, full
// timestamps otherwise. An unknown level falls back to info.
func Setup(level string, prod bool) {
	logrus.SetOutput(os.Stdout)
	if prod {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.WithField("level", level).Warn("Unknown log level, using info")
		return
	}
	logrus.SetLevel(lvl)
}
