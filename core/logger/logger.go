// Package logger records shell session events as newline delimited JSON
// so sessions can be audited or replayed offline.
package logger

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event names for LogEntry.Event.
const (
	EventCommand    = "command"
	EventLaunch     = "launch"
	EventJobDone    = "job_done"
	EventModeChange = "mode_change"
	EventInterrupt  = "interrupt"
)

// LogEntry is one session event.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Event     string    `json:"event"`

	// Command holds the argument vector for command/launch events.
	Command []string `json:"command,omitempty"`
	// PID of the child for launch/job_done/interrupt events.
	PID int `json:"pid,omitempty"`
	// Background marks launch events for background jobs.
	Background bool `json:"background,omitempty"`
	// Status is the human readable completion status, e.g. "exit value 0".
	Status string `json:"status,omitempty"`
	// ForegroundOnly is the new mode for mode_change events.
	ForegroundOnly bool `json:"foreground_only,omitempty"`
}

// Log writes entries to a single writer. A nil *Log discards everything
// so callers don't need to guard each call site.
type Log struct {
	mu  sync.Mutex
	enc *json.Encoder
	now func() time.Time
}

func New(w io.Writer) *Log {
	return &Log{enc: json.NewEncoder(w), now: time.Now}
}

func (l *Log) record(entry LogEntry) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry.Timestamp = l.now().UTC()
	// Best effort: a full disk shouldn't take the shell down.
	_ = l.enc.Encode(&entry)
}

// Command records a parsed command line about to be dispatched.
func (l *Log) Command(args []string) {
	l.record(LogEntry{Event: EventCommand, Command: args})
}

// Launch records a spawned child process.
func (l *Log) Launch(args []string, pid int, background bool) {
	l.record(LogEntry{Event: EventLaunch, Command: args, PID: pid, Background: background})
}

// JobDone records a reaped background job.
func (l *Log) JobDone(pid int, status string) {
	l.record(LogEntry{Event: EventJobDone, PID: pid, Status: status})
}

// ModeChange records a foreground-only mode toggle.
func (l *Log) ModeChange(foregroundOnly bool) {
	l.record(LogEntry{Event: EventModeChange, ForegroundOnly: foregroundOnly})
}

// Interrupt records a foreground child killed by the interrupt handler.
func (l *Log) Interrupt(pid int) {
	l.record(LogEntry{Event: EventInterrupt, PID: pid})
}

// ReadJSONLinesLog parses a newline delimited JSON session log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}
		handler(&logEntry)
	}
	return nil
}
