// Package log provides leveled, categorized logging for a vimja session.
//
// Loggers are values passed to the components that use them; there is no
// process-wide logger. Each written line is also published on a broker so
// the editor can show the latest entry.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/andrei-shtanakov/Vimja/internal/pubsub"
)

// Level represents log severity.
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
	default:
		return "UNKNOWN"
	}
}

// Category groups related log messages.
type Category string

const (
	CatKeys   Category = "keys"   // Key sequence accumulation and matching
	CatMode   Category = "mode"   // Mode transitions
	CatEdit   Category = "edit"   // Buffer operations and paste
	CatSearch Category = "search" // Incremental search
	CatConfig Category = "config" // Configuration loading/saving
	CatKeymap Category = "keymap" // Keymap files
	CatUI     Category = "ui"     // Editor host
	CatStore  Category = "store"  // Register persistence
)

// sink is the state shared by a logger and everything derived with With.
type sink struct {
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	enabled  bool
	minLevel Level
	broker   *pubsub.Broker[string]
}

// Logger writes structured lines. The zero value and a nil *Logger both
// discard everything.
type Logger struct {
	sink   *sink
	fields []any
}

// New returns a logger writing to w at debug level.
func New(w io.Writer) *Logger {
	return &Logger{sink: &sink{
		writer:   w,
		enabled:  true,
		minLevel: LevelDebug,
		broker:   pubsub.NewBroker[string](),
	}}
}

// Discard returns a logger that writes nothing.
func Discard() *Logger {
	l := New(io.Discard)
	l.sink.enabled = false
	return l
}

// Open returns a logger appending to the file at path.
// Close releases the file.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: path is the user's debug log path
	if err != nil {
		return nil, err
	}
	l := New(f)
	l.sink.closer = f
	return l, nil
}

// OpenTea returns a logger on a file opened with tea.LogToFile, which also
// routes Bubble Tea's own log output there.
func OpenTea(path, prefix string) (*Logger, error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	l := New(f)
	l.sink.closer = f
	return l, nil
}

// Close releases the underlying file, if any, and closes the broker.
func (l *Logger) Close() error {
	if l == nil || l.sink == nil {
		return nil
	}
	l.sink.broker.Close()
	if l.sink.closer != nil {
		return l.sink.closer.Close()
	}
	return nil
}

// With returns a logger that appends fields to every entry. It shares
// the writer, level and broker of l.
func (l *Logger) With(fields ...any) *Logger {
	if l == nil || l.sink == nil {
		return l
	}
	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)
	return &Logger{sink: l.sink, fields: merged}
}

// SetEnabled toggles logging on/off.
func (l *Logger) SetEnabled(enabled bool) {
	if l == nil || l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	l.sink.enabled = enabled
	l.sink.mu.Unlock()
}

// SetMinLevel sets the minimum log level.
func (l *Logger) SetMinLevel(level Level) {
	if l == nil || l.sink == nil {
		return
	}
	l.sink.mu.Lock()
	l.sink.minLevel = level
	l.sink.mu.Unlock()
}

// Debug logs at debug level.
func (l *Logger) Debug(cat Category, msg string, fields ...any) {
	l.log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func (l *Logger) Info(cat Category, msg string, fields ...any) {
	l.log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func (l *Logger) Warn(cat Category, msg string, fields ...any) {
	l.log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func (l *Logger) Error(cat Category, msg string, fields ...any) {
	l.log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func (l *Logger) ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	l.log(LevelError, cat, msg, fields...)
}

func (l *Logger) log(level Level, cat Category, msg string, fields ...any) {
	if l == nil || l.sink == nil {
		return
	}
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled || level < s.minLevel {
		return
	}

	// Format: 2026-01-02T10:45:00 [ERROR] [edit] message key=value key2=value2
	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)
	writeFields(&b, l.fields)
	writeFields(&b, fields)
	b.WriteByte('\n')
	entry := b.String()

	if s.writer != nil {
		_, _ = io.WriteString(s.writer, entry)
	}
	s.broker.Publish(pubsub.LoggedEvent, entry)
}

func writeFields(b *strings.Builder, fields []any) {
	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(b, " %v=%v", fields[i], fields[i+1])
	}
	// Odd field count: the orphan key gets a placeholder value.
	if len(fields)%2 != 0 {
		fmt.Fprintf(b, " %v=<missing>", fields[len(fields)-1])
	}
}

// LogEvent is a pubsub event containing a log entry.
type LogEvent = pubsub.Event[string]

// LogListener wraps a continuous listener for log events.
type LogListener = pubsub.ContinuousListener[string]

// NewListener subscribes to the entries written by l until ctx is done.
// It returns nil for a nil logger.
func (l *Logger) NewListener(ctx context.Context) *LogListener {
	if l == nil || l.sink == nil {
		return nil
	}
	return pubsub.NewContinuousListener[string](ctx, l.sink.broker)
}
