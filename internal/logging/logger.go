package logging

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	current           = Config{}
	output  io.Writer = os.Stderr
)

// Configure replaces the settings used by loggers and rebuilds the cached ones.
// Called once the configuration file has been loaded.
func Configure(cfg Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	current = cfg
	for component := range loggers {
		loggers[component] = build(component)
	}
}

// SetOutput redirects every logger, mainly for tests.
func SetOutput(w io.Writer) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	output = w
	for component := range loggers {
		loggers[component] = build(component)
	}
}

// NewLogger returns the cached logger for a component, creating it on first use.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	entry := build(component)
	loggers[component] = entry
	return entry
}

func build(component string) *logrus.Entry {
	logger := logrus.New()

	levelStr := "info"
	if env := os.Getenv("NAVGEN_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if current.Level != "" {
		levelStr = current.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if os.Getenv("NAVGEN_LOG_CALLER") == "true" || current.ReportCaller {
		logger.SetReportCaller(true)
	}

	switch current.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors:    !isTerminal(output),
			DisableTimestamp: true,
		})
	}

	logger.SetOutput(output)
	return logger.WithField("component", component)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
