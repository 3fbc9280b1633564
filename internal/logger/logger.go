package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Logger writes a per-run log file
type Logger struct {
	*log.Logger
	file *os.File
}

// NewLogger creates a new logger writing to <logDir>/<name>_<timestamp>.log
func NewLogger(logDir, name string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	logPath := filepath.Join(logDir, fmt.Sprintf("%s_%s.log", name, timestamp))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	logger := log.New(file, "", log.LstdFlags)
	return &Logger{
		Logger: logger,
		file:   file,
	}, nil
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// LogCall records the outcome of one endpoint call
func (l *Logger) LogCall(method, path string, status int, err error) {
	if err != nil {
		l.Printf("%s %s -> ERROR: %v\n", method, path, err)
		return
	}
	l.Printf("%s %s -> %d\n", method, path, status)
}
