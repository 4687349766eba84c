package session

// Durable storage keys. These names are shared with other clients of the same
// storage, so they must not change.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUserName     = "userName"
	KeyAvatar       = "avatar"
)

// KeyLoggedOut is the session-scoped flag set by Logout and cleared by Login.
const KeyLoggedOut = "userLoggedOut"

// DefaultSweepSubstrings are the legacy substrings of user data keys that
// Logout removes on a best-effort basis. Not a complete list of session keys.
var DefaultSweepSubstrings = []string{"paper-writing", "user-", "session"}

// defaultRegistry seeds every Store's session key registry.
func defaultRegistry() []string {
	return []string{KeyToken, KeyRefreshToken, KeyUserName, KeyAvatar}
}
