package session

import "log/slog"

type Option func(*Store)

// WithLogger sets the logger used for non-fatal storage problems.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithSweepSubstrings replaces the legacy logout sweep list. Passing nothing
// disables the sweep so only registered keys are removed.
func WithSweepSubstrings(subs ...string) Option {
	return func(s *Store) { s.sweep = append([]string(nil), subs...) }
}

// WithSessionKeys registers extra session-scoped durable keys at open time.
func WithSessionKeys(keys ...string) Option {
	return func(s *Store) {
		for _, k := range keys {
			s.registerLocked(k)
		}
	}
}
