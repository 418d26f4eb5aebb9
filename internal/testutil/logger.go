package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// LogEntry is one recorded log call.
type LogEntry struct {
	Level string
	Msg   string
	KV    []interface{}
}

// RecordingLogger records log calls for assertions. It is safe for
// concurrent use.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

func (l *RecordingLogger) record(level, msg string, kv []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, KV: kv})
}

// Debug records a debug message.
func (l *RecordingLogger) Debug(msg string, kv ...interface{}) { l.record("debug", msg, kv) }

// Info records an info message.
func (l *RecordingLogger) Info(msg string, kv ...interface{}) { l.record("info", msg, kv) }

// Warn records a warning.
func (l *RecordingLogger) Warn(msg string, kv ...interface{}) { l.record("warn", msg, kv) }

// Error records an error.
func (l *RecordingLogger) Error(msg string, kv ...interface{}) { l.record("error", msg, kv) }

// Entries returns a copy of the recorded entries.
func (l *RecordingLogger) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]LogEntry(nil), l.entries...)
}

// Messages returns "level: msg" for every recorded entry.
func (l *RecordingLogger) Messages() []string {
	entries := l.Entries()
	msgs := make([]string, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Level, e.Msg))
	}
	return msgs
}

// Contains reports whether any message at level contains substr.
func (l *RecordingLogger) Contains(level, substr string) bool {
	for _, e := range l.Entries() {
		if e.Level == level && strings.Contains(e.Msg, substr) {
			return true
		}
	}
	return false
}
