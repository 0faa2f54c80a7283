package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/yuya-takeyama/cc-nod/internal/config"
)

// Logger is a zerolog.Logger bound to its log file
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New opens a timestamped log file under cfg.Output and returns a logger
// writing to it. When echo is non-nil, entries are also written there in
// console format.
func New(cfg config.LoggingConfig, echo io.Writer) (*Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	logPath := filepath.Join(cfg.Output, FileName(time.Now()))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	var out io.Writer = file
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: file, NoColor: true, TimeFormat: time.RFC3339}
	}
	if echo != nil {
		out = zerolog.MultiLevelWriter(out, zerolog.ConsoleWriter{Out: echo, TimeFormat: time.Kitchen})
	}

	zl := zerolog.New(out).Level(level).With().
		Timestamp().
		Str("app", "cc-nod").
		Logger()

	return &Logger{Logger: zl, file: file}, nil
}

// Path returns the log file path
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// Component returns a child logger tagged with a component name
func (l *Logger) Component(name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// FileName generates a log file name with timestamp
func FileName(t time.Time) string {
	return fmt.Sprintf("cc-nod-%s.log", t.Format("20060102-150405"))
}
