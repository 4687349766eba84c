package authsdk

// TokenResponse is the body of a successful login exchange.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`

	// RefreshToken is only present on deployments that issue one at login.
	RefreshToken string `json:"refresh_token,omitempty"`
}

// User is a user record as the backend returns it.
type User struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	Avatar      string `json:"avatar"`
}

// LoginResult is what LoginWithPassword stored in the session.
type LoginResult struct {
	Username string
	Avatar   string

	// AvatarErr is set when the login succeeded but the profile lookup for
	// the avatar did not.
	AvatarErr error
}
