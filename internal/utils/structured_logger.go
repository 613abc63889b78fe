package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"offer-tracker/internal/config"
)

// LogLevel represents the severity level of a log entry
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	case FATAL:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel maps LOG_LEVEL values onto a LogLevel, defaulting to INFO.
func ParseLogLevel(value string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	case "FATAL":
		return FATAL
	default:
		return INFO
	}
}

// StructuredLogger prefixes every line with its level and, when given, the
// component that emitted it.
type StructuredLogger struct {
	mu       sync.Mutex
	logger   *log.Logger
	minLevel LogLevel
}

var defaultLogger = NewStructuredLogger(os.Stderr, ParseLogLevel(config.GetEnvConfig().LogLevel))

func NewStructuredLogger(w io.Writer, minLevel LogLevel) *StructuredLogger {
	return &StructuredLogger{
		logger:   log.New(w, "", log.LstdFlags),
		minLevel: minLevel,
	}
}

// SetOutput redirects the logger, mainly for tests.
func (sl *StructuredLogger) SetOutput(w io.Writer) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.logger.SetOutput(w)
}

func (sl *StructuredLogger) SetLevel(level LogLevel) {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	sl.minLevel = level
}

func (sl *StructuredLogger) enabled(level LogLevel) bool {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return level >= sl.minLevel
}

func (sl *StructuredLogger) write(level LogLevel, component, message string, err error) {
	if !sl.enabled(level) {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "[%s]", level)
	if component != "" {
		fmt.Fprintf(&b, " [%s]", component)
	}
	b.WriteByte(' ')
	b.WriteString(message)
	if err != nil {
		fmt.Fprintf(&b, ": %v", err)
	}
	sl.logger.Print(b.String())
}

func (sl *StructuredLogger) Debug(format string, args ...any) {
	sl.write(DEBUG, "", fmt.Sprintf(format, args...), nil)
}

func (sl *StructuredLogger) Info(format string, args ...any) {
	sl.write(INFO, "", fmt.Sprintf(format, args...), nil)
}

func (sl *StructuredLogger) Warn(format string, args ...any) {
	sl.write(WARN, "", fmt.Sprintf(format, args...), nil)
}

func (sl *StructuredLogger) Error(format string, args ...any) {
	sl.write(ERROR, "", fmt.Sprintf(format, args...), nil)
}

// Fatal logs and exits the process.
func (sl *StructuredLogger) Fatal(format string, args ...any) {
	sl.write(FATAL, "", fmt.Sprintf(format, args...), nil)
	os.Exit(1)
}

func (sl *StructuredLogger) DebugWithContext(component, message string, err error) {
	sl.write(DEBUG, component, message, err)
}

func (sl *StructuredLogger) InfoWithContext(component, message string, err error) {
	sl.write(INFO, component, message, err)
}

func (sl *StructuredLogger) WarnWithContext(component, message string, err error) {
	sl.write(WARN, component, message, err)
}

func (sl *StructuredLogger) ErrorWithContext(component, message string, err error) {
	sl.write(ERROR, component, message, err)
}

// DefaultLogger returns the process-wide logger used by the Log* helpers.
func DefaultLogger() *StructuredLogger {
	return defaultLogger
}

// Package-level convenience functions using the default logger
func LogDebug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

func LogInfo(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

func LogWarn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

func LogError(format string, args ...any) {
	defaultLogger.Error(format, args...)
}

func LogFatal(format string, args ...any) {
	defaultLogger.Fatal(format, args...)
}

func LogDebugWithContext(component, message string, err error) {
	defaultLogger.DebugWithContext(component, message, err)
}

func LogInfoWithContext(component, message string, err error) {
	defaultLogger.InfoWithContext(component, message, err)
}

func LogWarnWithContext(component, message string, err error) {
	defaultLogger.WarnWithContext(component, message, err)
}

func LogErrorWithContext(component, message string, err error) {
	defaultLogger.ErrorWithContext(component, message, err)
}
