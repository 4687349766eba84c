package authsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// LoginWithPassword exchanges username and password for a credential and
// stores the new session. The avatar comes from a follow-up profile lookup;
// a failed lookup does not fail the login.
func (c *SDKClient) LoginWithPassword(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrEmptyUsername
	}

	form := url.Values{
		"username": {username},
		"password": {password},
	}

	var tokenResp TokenResponse
	if err := c.login.DoForm(ctx, PathToken, form, &tokenResp); err != nil {
		return nil, fmt.Errorf("login failed: %w", classifyLoginError(err))
	}
	if tokenResp.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	// The profile lookup needs the new credential attached.
	if err := c.session.SetCredential(ctx, tokenResp.AccessToken); err != nil {
		return nil, fmt.Errorf("failed to store credential: %w", err)
	}

	result := &LoginResult{Username: username}
	if user, err := c.Profile(ctx, username); err != nil {
		result.AvatarErr = err
		c.logger.WarnContext(ctx, "avatar lookup after login failed", "username", username, "error", err)
	} else {
		result.Avatar = user.Avatar
	}

	if err := c.session.Login(ctx, username, tokenResp.AccessToken, result.Avatar); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	// A login without a refresh token must not inherit the previous one.
	if tokenResp.RefreshToken == "" {
		if err := c.session.ClearRefreshCredential(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear refresh credential: %w", err)
		}
	} else if err := c.session.SetRefreshCredential(ctx, tokenResp.RefreshToken); err != nil {
		return nil, fmt.Errorf("failed to store refresh credential: %w", err)
	}

	c.logger.InfoContext(ctx, "logged in", "username", username)
	return result, nil
}

// Logout tells the backend the session is over, then clears the local
// session. The local logout always runs; a failed server call is only logged.
func (c *SDKClient) Logout(ctx context.Context) error {
	if c.session.Credential() != "" {
		if err := c.api.DoJSON(ctx, http.MethodGet, PathLogout, nil, nil); err != nil {
			c.logger.WarnContext(ctx, "server logout failed", "error", err)
		}
	}

	if err := c.session.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.logger.InfoContext(ctx, "logged out")
	return nil
}
