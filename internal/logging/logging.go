package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Setup applies level and format from config. Unknown values keep the defaults.
func Setup(level, format string) {
	if lv, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		log.SetLevel(lv)
	}
	if strings.EqualFold(format, "text") {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) { log.SetOutput(w) }

func Info(msg string, fields map[string]any)  { log.WithFields(logrus.Fields(fields)).Info(msg) }
func Warn(msg string, fields map[string]any)  { log.WithFields(logrus.Fields(fields)).Warn(msg) }
func Error(msg string, fields map[string]any) { log.WithFields(logrus.Fields(fields)).Error(msg) }
func Debug(msg string, fields map[string]any) { log.WithFields(logrus.Fields(fields)).Debug(msg) }
