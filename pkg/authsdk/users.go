package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Profile fetches the user record for username.
func (c *SDKClient) Profile(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	var user User
	if err := c.api.DoJSON(ctx, http.MethodGet, PathUsers+"/name/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the record of the logged in user.
func (c *SDKClient) Me(ctx context.Context) (*User, error) {
	return c.Profile(ctx, c.session.Identity())
}

// Hello checks that the backend is reachable and accepts the credential.
func (c *SDKClient) Hello(ctx context.Context) error {
	return c.api.DoJSON(ctx, http.MethodGet, PathHello, nil, nil)
}
