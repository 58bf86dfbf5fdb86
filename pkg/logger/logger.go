package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger instance for the whole application.
var Log *logrus.Logger

// Init configures the shared logger from the environment. Call it once at
// startup before anything logs.
//
// LOG_LEVEL selects the level (default "info"). LOG_FORMAT selects the
// formatter: "json" for collection pipelines, anything else for the
// human-readable text formatter.
func Init() {
	Log = logrus.New()

	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	logFormat := strings.ToLower(os.Getenv("LOG_FORMAT"))
	if logFormat == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	Log.SetOutput(os.Stdout)
}

func init() {
	// A usable logger exists even if Init is never called, so package-level
	// code and tests can log without a setup step
	Log = logrus.New()
	Log.SetLevel(logrus.InfoLevel)
	Log.SetOutput(os.Stdout)
}
