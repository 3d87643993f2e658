package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SamuelRCrider/luhny/utils"
)

// AuditLogLevel defines the verbosity of audit logging
type AuditLogLevel string

const (
	// AuditLogLevelMinimal logs one summary per stream
	AuditLogLevelMinimal AuditLogLevel = "minimal"

	// AuditLogLevelStandard adds one event per masked run
	AuditLogLevelStandard AuditLogLevel = "standard"

	// AuditLogLevelVerbose also includes the masked rendering of each run
	AuditLogLevelVerbose AuditLogLevel = "verbose"
)

// AuditLogSeverity defines the severity of audit log events
type AuditLogSeverity string

const (
	// SeverityInfo for normal operations
	SeverityInfo AuditLogSeverity = "info"

	// SeverityWarning for card data found in a stream
	SeverityWarning AuditLogSeverity = "warning"
)

// Audit event types
const (
	EventCardMasked     = "card_masked"
	EventStreamComplete = "stream_completed"
)

// AuditLog is one JSON line of the audit trail
type AuditLog struct {
	StreamID  string           `json:"stream_id"`
	Timestamp string           `json:"timestamp"`
	EventType string           `json:"event_type"`
	Severity  AuditLogSeverity `json:"severity"`

	Detection *utils.Detection `json:"detection,omitempty"`
	Stats     *Stats           `json:"stats,omitempty"`
}

// AuditLogger writes audit events as JSON lines. It is safe for concurrent
// use by several maskers.
type AuditLogger struct {
	mu           sync.Mutex
	level        AuditLogLevel
	writer       io.Writer
	file         *os.File
	logPath      string
	rotationSize int64 // Size in bytes after which the file is rotated, 0 disables
	retention    int   // Days to keep rotated files, 0 keeps them forever
	currentSize  int64
}

// NewAuditLogger creates an audit logger writing to w
func NewAuditLogger(w io.Writer, level AuditLogLevel) *AuditLogger {
	if level == "" {
		level = AuditLogLevelStandard
	}
	return &AuditLogger{
		level:  level,
		writer: w,
	}
}

// OpenAuditLog creates an audit logger appending to the file at path.
// When rotationSize is positive the file is rotated once it grows past it.
func OpenAuditLog(path string, level AuditLogLevel, rotationSize int64) (*AuditLogger, error) {
	l := NewAuditLogger(nil, level)
	l.logPath = path
	l.rotationSize = rotationSize
	if err := l.openFile(); err != nil {
		return nil, err
	}
	return l, nil
}

// NewAuditLoggerFromPolicy opens the audit log configured by policy.
// Returns nil without error when auditing is disabled.
func NewAuditLoggerFromPolicy(policy *Policy) (*AuditLogger, error) {
	if policy == nil || !policy.Audit.Enabled {
		return nil, nil
	}

	l, err := OpenAuditLog(policy.Audit.Path, policy.Audit.Level, 100*1024*1024)
	if err != nil {
		return nil, err
	}
	return l.WithRetention(policy.Audit.RetentionDays), nil
}

// WithRetention removes rotated files older than days whenever the log rotates
func (l *AuditLogger) WithRetention(days int) *AuditLogger {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.retention = days
	return l
}

// Level returns the configured audit level
func (l *AuditLogger) Level() AuditLogLevel {
	return l.level
}

// RecordDetection logs a masked run. Skipped at minimal level.
func (l *AuditLogger) RecordDetection(d utils.Detection) error {
	if l.level == AuditLogLevelMinimal {
		return nil
	}
	if l.level != AuditLogLevelVerbose {
		d.Masked = ""
	}

	return l.write(AuditLog{
		StreamID:  d.StreamID,
		EventType: EventCardMasked,
		Severity:  SeverityWarning,
		Detection: &d,
	})
}

// RecordSummary logs the counters of a completed stream
func (l *AuditLogger) RecordSummary(streamID string, stats Stats) error {
	return l.write(AuditLog{
		StreamID:  streamID,
		EventType: EventStreamComplete,
		Severity:  SeverityInfo,
		Stats:     &stats,
	})
}

// Close closes the underlying file, if the logger owns one
func (l *AuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *AuditLogger) write(entry AuditLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// A failed rotation still leaves a usable file when it could be reopened;
	// the event is written and the rotation error reported afterwards.
	rotateErr := l.maybeRotateLog()
	if l.logPath != "" && l.file == nil {
		if rotateErr != nil {
			return rotateErr
		}
		return fmt.Errorf("audit log %s is closed", l.logPath)
	}

	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log entry: %w", err)
	}

	n, err := fmt.Fprintln(l.writer, string(data))
	if err != nil {
		return fmt.Errorf("failed to write to log: %w", err)
	}
	l.currentSize += int64(n)

	return rotateErr
}

// openFile opens logPath for appending, creating its directory if needed
func (l *AuditLogger) openFile() error {
	dir := filepath.Dir(l.logPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to get log file info: %w", err)
	}

	l.file = f
	l.writer = f
	l.currentSize = info.Size()
	return nil
}

// maybeRotateLog moves a full log file aside and reopens a fresh one. When the
// move fails the current file is reopened so later writes and rotations still work.
func (l *AuditLogger) maybeRotateLog() error {
	if l.file == nil || l.rotationSize <= 0 || l.currentSize < l.rotationSize {
		return nil
	}

	l.file.Close()
	l.file = nil

	rotatedPath := fmt.Sprintf("%s.%s", l.logPath, time.Now().Format("20060102-150405.000000000"))
	if err := os.Rename(l.logPath, rotatedPath); err != nil {
		if openErr := l.openFile(); openErr != nil {
			return fmt.Errorf("failed to rotate log file: %w (reopen: %v)", err, openErr)
		}
		return fmt.Errorf("failed to rotate log file: %w", err)
	}

	l.cleanupOldLogs()

	return l.openFile()
}

// cleanupOldLogs removes rotated files older than the retention period
func (l *AuditLogger) cleanupOldLogs() {
	if l.retention <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -l.retention)
	files, err := filepath.Glob(l.logPath + ".*")
	if err != nil {
		return
	}

	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(file)
		}
	}
}
