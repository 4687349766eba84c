// Package notify carries short user-facing notices from the session layer
// (expired login, login required) to whatever surface shows them.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier shows a notice to the user. Implementations must not block for
// long; notices are fire and forget.
type Notifier interface {
	Notify(ctx context.Context, level Level, message string)
}

// LogNotifier writes notices as log records, for headless clients.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, level Level, message string) {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lvl slog.Level
	switch level {
	case LevelWarning:
		lvl = slog.LevelWarn
	case LevelError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger.Log(ctx, lvl, "user_notice", "message", message)
}

// Notice is one recorded notification.
type Notice struct {
	Level   Level
	Message string
}

// Recorder keeps every notice it receives. Used by tests and by the CLI to
// print notices after a command finishes.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *Recorder) Notify(_ context.Context, level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Tee fans a notice out to several notifiers in order.
type Tee []Notifier

func (t Tee) Notify(ctx context.Context, level Level, message string) {
	for _, n := range t {
		if n != nil {
			n.Notify(ctx, level, message)
		}
	}
}
