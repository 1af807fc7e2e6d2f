package core

import (
	"log/slog"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelError
)

// Notifier shows a single message to the operator.
type Notifier interface {
	Notify(level Level, msg string)
}

type NotifierFunc func(level Level, msg string)

func (f NotifierFunc) Notify(level Level, msg string) { f(level, msg) }

// Note is a recorded notification.
type Note struct {
	Level Level
	Msg   string
}

// Recorder keeps every notification; used by tests and dry runs.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func (r *Recorder) Notify(level Level, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, Note{Level: level, Msg: msg})
}

func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Last returns the most recent note, or the zero Note.
func (r *Recorder) Last() Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.notes) == 0 {
		return Note{}
	}
	return r.notes[len(r.notes)-1]
}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return NotifierFunc(func(Level, string) {})
	}
	return n
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
