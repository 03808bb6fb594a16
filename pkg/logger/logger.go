// Package logger is the process-wide log used by sessions, bindings and
// element operations. Nothing is written until Init or SetOutput is called.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level filters messages below it.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel parses a level name; unknown names return LevelInfo.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

var (
	globalLogger *log.Logger
	logFile      *os.File
	level        = LevelInfo
	mu           sync.Mutex
)

// Init directs the global logger to the log file at logPath.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	closeFile()

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	logFile = f
	globalLogger = log.New(f, "", log.Ltime|log.Lmicroseconds)
	return nil
}

// SetOutput directs the global logger to w. A nil writer disables logging.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	if w == nil {
		globalLogger = nil
		return
	}
	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
}

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// Close closes the log file and disables logging.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	closeFile()
	globalLogger = nil
}

func closeFile() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func logf(l Level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil && l >= level {
		globalLogger.Printf("["+l.String()+"] "+format, v...)
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	logf(LevelInfo, format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	logf(LevelDebug, format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	logf(LevelError, format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	logf(LevelWarn, format, v...)
}

// GetWriter returns the underlying log file, for backends that stream
// their own output.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}
