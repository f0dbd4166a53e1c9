package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ContextKey types context values the logger reads.
type ContextKey string

const (
	// UserKey carries the authenticated subject, set by the auth middleware.
	UserKey ContextKey = "audit.user"
	// CorrelationKey carries the per-request correlation ID, set by the API.
	CorrelationKey ContextKey = "audit.correlationId"
)

// Entry is a single resolution audit record.
type Entry struct {
	Timestamp     time.Time `json:"ts"`
	User          string    `json:"user"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Kind          string    `json:"kind"`
	Mode          string    `json:"mode"`
	Outcome       string    `json:"outcome"`
	Code          string    `json:"code"`
	LatencyMs     float64   `json:"latencyMs"`
}

// Logger appends resolution records to a JSONL file.
type Logger struct {
	mu       sync.Mutex
	filePath string
	file     *os.File
}

// NewLogger creates the log directory if needed and opens the audit file for
// append-only writing.
func NewLogger(logDir string) (*Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filePath := filepath.Join(logDir, "resolutions.jsonl")
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log file: %w", err)
	}

	return &Logger{filePath: filePath, file: file}, nil
}

// LogResolution writes one record for a resolution attempt.
func (l *Logger) LogResolution(ctx context.Context, kind, mode, outcome, code string, latency time.Duration) {
	entry := Entry{
		Timestamp:     time.Now().UTC(),
		User:          userFromContext(ctx),
		CorrelationID: correlationFromContext(ctx),
		Kind:          kind,
		Mode:          mode,
		Outcome:       outcome,
		Code:          code,
		LatencyMs:     float64(latency.Microseconds()) / 1000.0,
	}
	l.writeEntry(entry)
}

// writeEntry appends one JSON line, syncing so records survive a crash.
func (l *Logger) writeEntry(entry Entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return
	}

	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to marshal audit entry: %v\n", err)
		return
	}
	if _, err := l.file.Write(append(data, '\n')); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write audit entry: %v\n", err)
		return
	}
	if err := l.file.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to sync audit log: %v\n", err)
	}
}

// FilePath returns the path of the audit log file.
func (l *Logger) FilePath() string {
	return l.filePath
}

// Rotate renames the current file with a timestamp suffix and opens a fresh
// one.
func (l *Logger) Rotate() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		if err := l.file.Close(); err != nil {
			return fmt.Errorf("failed to close current log file: %w", err)
		}
		l.file = nil
	}

	rotated := fmt.Sprintf("%s.%s", l.filePath, time.Now().Format("20060102-150405"))
	if err := os.Rename(l.filePath, rotated); err != nil {
		return fmt.Errorf("failed to rename log file: %w", err)
	}

	file, err := os.OpenFile(l.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open new log file: %w", err)
	}
	l.file = file
	return nil
}

// Close closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file != nil {
		err := l.file.Close()
		l.file = nil
		return err
	}
	return nil
}

// userFromContext extracts the authenticated subject, defaulting to
// "unknown" for unauthenticated requests.
func userFromContext(ctx context.Context) string {
	if user, ok := ctx.Value(UserKey).(string); ok && user != "" {
		return user
	}
	return "unknown"
}

// correlationFromContext extracts the request correlation ID, if any.
func correlationFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationKey).(string); ok {
		return id
	}
	return ""
}
