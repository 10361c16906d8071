// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/H0llyW00dzZ/x509-cert-validator/src/internal/helper/gc"
)

// Level is the severity of a log message.
type Level int32

const (
	// LevelDebug is for diagnostics such as resolved distribution point URLs.
	LevelDebug Level = iota
	// LevelInfo is the default level used by Printf and Println.
	LevelInfo
	// LevelWarn reports conditions that leave a result undetermined.
	LevelWarn
	// LevelError reports transport, protocol, and policy failures.
	LevelError
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int32(l))
	}
}

// ParseLevel converts a level name to a Level.
// Unrecognized names yield LevelInfo and false.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, true
	case "info", "":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarn, true
	case "error":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Logger defines the interface for logging operations.
// It provides methods for different log levels and formatted output.
//
// The verifiers log through this interface only, so the same engine can
// write human-readable lines for the CLI or structured JSON for log
// collectors.
type Logger interface {
	// Printf formats and prints an info message.
	Printf(format string, v ...any)
	// Println prints an info message with a newline.
	Println(v ...any)
	// Debugf formats and prints a debug message.
	Debugf(format string, v ...any)
	// Warnf formats and prints a warning.
	Warnf(format string, v ...any)
	// Errorf formats and prints an error message.
	Errorf(format string, v ...any)
	// SetOutput sets the output destination for the logger.
	SetOutput(w io.Writer)
}

// CLILogger implements Logger using the standard log package.
// It's designed for command-line interface output with human-readable formatting.
// Messages below the configured level are dropped.
type CLILogger struct {
	logger *log.Logger
	level  atomic.Int32
}

// NewCLILogger creates a new CLI logger with timestamps disabled and a
// threshold of LevelInfo. This is suitable for user-facing CLI output.
func NewCLILogger() *CLILogger {
	c := &CLILogger{logger: log.New(os.Stdout, "", 0)}
	c.level.Store(int32(LevelInfo))
	return c
}

// SetLevel changes the minimum level that is written.
func (c *CLILogger) SetLevel(l Level) { c.level.Store(int32(l)) }

func (c *CLILogger) enabled(l Level) bool { return int32(l) >= c.level.Load() }

func (c *CLILogger) logf(l Level, prefix, format string, v ...any) {
	if !c.enabled(l) {
		return
	}
	c.logger.Print(prefix + fmt.Sprintf(format, v...))
}

// Printf formats and prints a log message using fmt.Printf semantics.
func (c *CLILogger) Printf(format string, v ...any) { c.logf(LevelInfo, "", format, v...) }

// Println prints a log message with a newline.
func (c *CLILogger) Println(v ...any) {
	if c.enabled(LevelInfo) {
		c.logger.Println(v...)
	}
}

// Debugf prints a message prefixed with "debug: ".
func (c *CLILogger) Debugf(format string, v ...any) { c.logf(LevelDebug, "debug: ", format, v...) }

// Warnf prints a message prefixed with "warning: ".
func (c *CLILogger) Warnf(format string, v ...any) { c.logf(LevelWarn, "warning: ", format, v...) }

// Errorf prints a message prefixed with "error: ".
func (c *CLILogger) Errorf(format string, v ...any) { c.logf(LevelError, "error: ", format, v...) }

// SetOutput sets the output destination for the CLI logger.
func (c *CLILogger) SetOutput(w io.Writer) { c.logger.SetOutput(w) }

// JSONLogger implements Logger by writing one JSON object per line with
// "time", "level" and "message" keys.
//
// JSONLogger is safe for concurrent use by multiple goroutines.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	now    func() time.Time
}

// NewJSONLogger creates a JSON logger writing messages at or above level to
// writer. A nil writer discards output.
func NewJSONLogger(writer io.Writer, level Level) *JSONLogger {
	if writer == nil {
		writer = io.Discard
	}
	return &JSONLogger{
		writer: writer,
		level:  level,
		now:    time.Now,
	}
}

type jsonEntry struct {
	Time    string `json:"time"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (j *JSONLogger) write(l Level, msg string) {
	if l < j.level {
		return
	}

	data, err := json.Marshal(jsonEntry{
		Time:    j.now().UTC().Format(time.RFC3339Nano),
		Level:   l.String(),
		Message: msg,
	})
	if err != nil {
		return
	}

	buf := gc.Default.Get()
	defer func() {
		buf.Reset()         // Reset the buffer to prevent data leaks
		gc.Default.Put(buf) // Return the buffer to the pool for reuse
	}()
	buf.Write(data)
	buf.WriteByte('\n')

	j.mu.Lock()
	j.writer.Write(buf.Bytes())
	j.mu.Unlock()
}

// Printf logs an info message.
func (j *JSONLogger) Printf(format string, v ...any) { j.write(LevelInfo, fmt.Sprintf(format, v...)) }

// Println logs an info message built with fmt.Sprint semantics.
func (j *JSONLogger) Println(v ...any) {
	j.write(LevelInfo, strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

// Debugf logs a debug message.
func (j *JSONLogger) Debugf(format string, v ...any) { j.write(LevelDebug, fmt.Sprintf(format, v...)) }

// Warnf logs a warning.
func (j *JSONLogger) Warnf(format string, v ...any) { j.write(LevelWarn, fmt.Sprintf(format, v...)) }

// Errorf logs an error message.
func (j *JSONLogger) Errorf(format string, v ...any) { j.write(LevelError, fmt.Sprintf(format, v...)) }

// SetOutput sets the output destination for the JSON logger.
//
// SetOutput is safe for concurrent use by multiple goroutines.
func (j *JSONLogger) SetOutput(w io.Writer) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if w == nil {
		j.writer = io.Discard
	} else {
		j.writer = w
	}
}

type discard struct{}

func (discard) Printf(string, ...any) {}
func (discard) Println(...any) {}
func (discard) Debugf(string, ...any) {}
func (discard) Warnf(string, ...any) {}
func (discard) Errorf(string, ...any) {}
func (discard) SetOutput(io.Writer) {}

// Discard returns a Logger that drops every message.
func Discard() Logger { return discard{} }

// New builds a Logger from a format name ("text" or "json") and level name.
// Text output goes to w through a CLILogger; JSON output uses a JSONLogger.
func New(format, level string, w io.Writer) (Logger, error) {
	lvl, ok := ParseLevel(level)
	if !ok {
		return nil, fmt.Errorf("logger: unknown level %q", level)
	}

	switch strings.ToLower(format) {
	case "", "text":
		l := NewCLILogger()
		l.SetLevel(lvl)
		if w != nil {
			l.SetOutput(w)
		}
		return l, nil
	case "json":
		return NewJSONLogger(w, lvl), nil
	default:
		return nil, fmt.Errorf("logger: unknown format %q", format)
	}
}
