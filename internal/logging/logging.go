// Package logging provides pre-configured logrus loggers for sessum components.
package logging

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// New returns a logger entry tagged with the given component name.
// Loggers are cached per component. Output goes to stderr so it never
// interleaves with command output; the level comes from SESSUM_LOG_LEVEL
// (default "warn" to keep the CLI quiet).
func New(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if entry, ok := loggers[component]; ok {
		return entry
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level := logrus.WarnLevel
	if s := os.Getenv("SESSUM_LOG_LEVEL"); s != "" {
		if parsed, err := logrus.ParseLevel(s); err == nil {
			level = parsed
		}
	}
	logger.SetLevel(level)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

// Silence routes a component's logger to the given writer. The TUI uses this
// to keep log lines from corrupting the alternate screen.
func Silence(component string, w io.Writer) {
	New(component).Logger.SetOutput(w)
}
