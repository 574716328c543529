// Package diag provides the diagnostics sink the parsers report into.
// Parsers never log directly; everything goes through a Sink so the caller
// decides whether findings end up in a logger, a UI, or a test assertion.
package diag

import (
	"sync"

	"go.uber.org/zap"
)

// Sink collects parser diagnostics. AddData attaches a raw data dump (for
// example the offending source record) to the preceding message. HasData
// reports whether anything was collected at all.
type Sink interface {
	AddDebug(msg string)
	AddInfo(msg string)
	AddWarning(msg string)
	AddError(msg string)
	AddData(msg string)
	HasData() bool
}

// Logger is a Sink backed by a zap.SugaredLogger.
type Logger struct {
	log *zap.SugaredLogger

	mu      sync.Mutex
	hasData bool
}

// NewLogger wraps the given zap logger into a Sink. A nil logger falls back
// to zap's no-op logger so tests can pass nil safely.
func NewLogger(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{log: l.Sugar()}
}

func (l *Logger) mark() {
	l.mu.Lock()
	l.hasData = true
	l.mu.Unlock()
}

func (l *Logger) AddDebug(msg string)   { l.mark(); l.log.Debug(msg) }
func (l *Logger) AddInfo(msg string)    { l.mark(); l.log.Info(msg) }
func (l *Logger) AddWarning(msg string) { l.mark(); l.log.Warn(msg) }
func (l *Logger) AddError(msg string)   { l.mark(); l.log.Error(msg) }

func (l *Logger) AddData(msg string) {
	l.mark()
	l.log.Debugw("record data", "data", msg)
}

func (l *Logger) HasData() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasData
}

// Level classifies recorded diagnostics.
type Level string

const (
	LevelDebug   Level = "debug"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
	LevelData    Level = "data"
)

// Entry is one recorded diagnostic.
type Entry struct {
	Level   Level
	Message string
}

// Recorder is a Sink that keeps every diagnostic in memory. The dispatcher
// uses it to present a per-file report; tests use it to assert on parser
// behavior.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.entries = append(r.entries, Entry{Level: level, Message: msg})
	r.mu.Unlock()
}

func (r *Recorder) AddDebug(msg string)   { r.add(LevelDebug, msg) }
func (r *Recorder) AddInfo(msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) AddWarning(msg string) { r.add(LevelWarning, msg) }
func (r *Recorder) AddError(msg string)   { r.add(LevelError, msg) }
func (r *Recorder) AddData(msg string)    { r.add(LevelData, msg) }

func (r *Recorder) HasData() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries) > 0
}

// Entries returns a copy of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Messages returns the recorded messages of the given level.
func (r *Recorder) Messages(level Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		if e.Level == level {
			out = append(out, e.Message)
		}
	}
	return out
}
