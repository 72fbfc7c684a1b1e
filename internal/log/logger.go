// Package log sets up the logrus logger shared by the download and update
// operations and renders the end-of-run summary shown to the operator.
package log

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"scimrename/internal/config"
)

// Rotation limits for the log file.
const (
	maxLogSizeMB  = 10
	maxLogBackups = 5
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger wraps a logrus.Logger that writes to the console and, when a log
// file is configured, to a size-rotated file that always keeps debug output.
type Logger struct {
	*logrus.Logger
	file *lumberjack.Logger
}

// NewLogger builds the logger described by cfg. Console output goes to
// console at info level, or debug level when cfg.Debug is set.
func NewLogger(cfg *config.Config, console io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(io.Discard)
	base.SetLevel(logrus.DebugLevel)

	consoleLevel := logrus.InfoLevel
	if cfg.Debug {
		consoleLevel = logrus.DebugLevel
	}
	base.AddHook(&writerHook{
		writer:    console,
		formatter: &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: timestampFormat},
		levels:    levelsUpTo(consoleLevel),
	})

	l := &Logger{Logger: base}

	if cfg.LogFile != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    maxLogSizeMB,
			MaxBackups: maxLogBackups,
		}
		base.AddHook(&writerHook{
			writer:    l.file,
			formatter: &logrus.TextFormatter{DisableColors: true, FullTimestamp: true, TimestampFormat: timestampFormat},
			levels:    logrus.AllLevels,
		})
	}

	return l
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// WithRun tags every entry of one operation with a unique run id so that
// interleaved runs in the log file can be told apart.
func WithRun(logger logrus.FieldLogger, operation string) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		"op":  operation,
		"run": uuid.NewString(),
	})
}

type writerHook struct {
	writer    io.Writer
	formatter logrus.Formatter
	levels    []logrus.Level
}

func (h *writerHook) Levels() []logrus.Level {
	return h.levels
}

func (h *writerHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	_, err = h.writer.Write(line)
	return err
}

func levelsUpTo(threshold logrus.Level) []logrus.Level {
	var levels []logrus.Level
	for _, level := range logrus.AllLevels {
		if level <= threshold {
			levels = append(levels, level)
		}
	}
	return levels
}

// Summary holds the aggregate outcome of one operation.
type Summary struct {
	Operation      string
	Total          int
	Eligible       int
	Rejected       int
	Applied        int
	Failed         int
	Cancelled      bool
	ProcessingTime time.Duration
	Errors         []string
}

// WriteSummary renders s for the operator.
func WriteSummary(w io.Writer, s Summary) error {
	mode := "completed"
	if s.Cancelled {
		mode = "cancelled"
	}

	if _, err := fmt.Fprintf(w, "\n=== %s summary (%s) ===\n", s.Operation, mode); err != nil {
		return err
	}
	fmt.Fprintf(w, "Rows read: %d\n", s.Total)
	fmt.Fprintf(w, "Rows rejected: %d\n", s.Rejected)
	fmt.Fprintf(w, "Rows eligible: %d\n", s.Eligible)
	fmt.Fprintf(w, "Users renamed: %d\n", s.Applied)
	fmt.Fprintf(w, "Users failed: %d\n", s.Failed)
	fmt.Fprintf(w, "Processing time: %v\n", s.ProcessingTime)

	if len(s.Errors) > 0 {
		fmt.Fprintf(w, "\nErrors encountered:\n")
		for _, msg := range s.Errors {
			fmt.Fprintf(w, "  %s\n", msg)
		}
	}

	return nil
}
