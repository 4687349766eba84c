package router

import (
	"context"

	"github.com/aussiebroadwan/quill/pkg/notify"
)

// LoginRequiredNotice is shown when a protected route is refused.
const LoginRequiredNotice = "Please log in."

// AuthState is the read side of the session the guard needs.
type AuthState interface {
	IsLoggedIn() bool
}

// RequireAuth refuses routes marked RequiresAuth while the session is not
// logged in, warning the user and redirecting to entry. It only reads
// in-memory session state.
func RequireAuth(state AuthState, entry string, n notify.Notifier) Guard {
	return func(ctx context.Context, to, _ Location) Decision {
		if !to.RequiresAuth() || state.IsLoggedIn() {
			return Allow()
		}
		if n != nil {
			n.Notify(ctx, notify.LevelWarning, LoginRequiredNotice)
		}
		return Redirect(entry)
	}
}
