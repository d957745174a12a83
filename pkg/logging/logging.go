// Package logging provides the severity-based diagnostic sink used by the
// protocol engine and robot API.
package logging

import (
	"fmt"
	"strings"
	"sync"
)

// Severity orders diagnostic messages.
type Severity int

// Severities from least to most severe.
const (
	Debug Severity = iota
	Info
	Warn
	Error
	Critical
	Always
)

var severityNames = []string{"debug", "info", "warn", "error", "critical", "always"}

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s < Debug || s > Always {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// ParseSeverity parses a severity name, case insensitive.
func ParseSeverity(name string) (Severity, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "warning" {
		name = "warn"
	}
	for n, s := range severityNames {
		if s == name {
			return Severity(n), nil
		}
	}
	return Debug, fmt.Errorf("unknown severity %q", name)
}

// Logger accepts formatted messages with a severity.
type Logger interface {
	Logf(sev Severity, format string, args ...interface{})
}

// LogFunc is the func form of Logger.
type LogFunc func(sev Severity, format string, args ...interface{})

// Logf implements Logger.
func (f LogFunc) Logf(sev Severity, format string, args ...interface{}) {
	f(sev, format, args...)
}

// Discard drops everything.
var Discard Logger = LogFunc(func(Severity, string, ...interface{}) {})

// Filter drops messages less severe than Level.
type Filter struct {
	Logger Logger
	Level  Severity
}

// Logf implements Logger.
func (f *Filter) Logf(sev Severity, format string, args ...interface{}) {
	if sev >= f.Level {
		f.Logger.Logf(sev, format, args...)
	}
}

// Tee fans out messages to multiple loggers.
type Tee []Logger

// Logf implements Logger.
func (t Tee) Logf(sev Severity, format string, args ...interface{}) {
	for _, l := range t {
		l.Logf(sev, format, args...)
	}
}

// Entry is a message collected by Recorder.
type Entry struct {
	Severity Severity
	Message  string
}

// Recorder keeps every message in memory.
type Recorder struct {
	lock    sync.Mutex
	entries []Entry
}

// Logf implements Logger.
func (r *Recorder) Logf(sev Severity, format string, args ...interface{}) {
	r.lock.Lock()
	r.entries = append(r.entries, Entry{Severity: sev, Message: fmt.Sprintf(format, args...)})
	r.lock.Unlock()
}

// Entries returns a copy of recorded messages.
func (r *Recorder) Entries() []Entry {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Find returns recorded messages at sev containing substr.
func (r *Recorder) Find(sev Severity, substr string) []Entry {
	var found []Entry
	for _, e := range r.Entries() {
		if e.Severity == sev && strings.Contains(e.Message, substr) {
			found = append(found, e)
		}
	}
	return found
}
