// Package observability provides the structured logger used across the
// pipeline and its adapters.
package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/juspay/yama-sub000/internal/usecase/review"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps a config string to a Level. Unknown values default to
// info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Format selects the output encoding.
type Format int

const (
	FormatHuman Format = iota
	FormatJSON
)

// ParseFormat maps a config string to a Format. Unknown values fall back to
// human format on a terminal and JSON otherwise.
func ParseFormat(s string) Format {
	switch strings.ToLower(s) {
	case "human", "text":
		return FormatHuman
	case "json":
		return FormatJSON
	default:
		if review.IsOutputTerminal() {
			return FormatHuman
		}
		return FormatJSON
	}
}

// Logger writes leveled, structured log lines. It implements the review
// orchestrator's logger port and is safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
	now    func() time.Time
}

// NewLogger creates a Logger writing to stderr.
func NewLogger(level Level, format Format) *Logger {
	return &Logger{
		out:    os.Stderr,
		level:  level,
		format: format,
		now:    time.Now,
	}
}

// SetOutput redirects log output (used in tests).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

func (l *Logger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelInfo, "INFO", message, fields)
}

func (l *Logger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelWarn, "WARN", message, fields)
}

func (l *Logger) LogError(ctx context.Context, message string, fields map[string]interface{}) {
	l.write(LevelError, "ERROR", message, fields)
}

func (l *Logger) write(level Level, tag, message string, fields map[string]interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	ts := l.now().UTC()

	if l.format == FormatJSON {
		entry := make(map[string]interface{}, len(fields)+3)
		for k, v := range fields {
			entry[k] = v
		}
		entry["level"] = strings.ToLower(tag)
		entry["message"] = message
		entry["timestamp"] = ts.Format(time.RFC3339)
		line, err := json.Marshal(entry)
		if err != nil {
			fmt.Fprintf(l.out, `{"level":"error","message":"log entry not serializable: %s"}`+"\n", message)
			return
		}
		l.out.Write(append(line, '\n'))
		return
	}

	// Human format with deterministic field order
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s] %s", ts.Format("2006-01-02T15:04:05"), tag, message)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	sb.WriteByte('\n')
	io.WriteString(l.out, sb.String())
}
