package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aussiebroadwan/quill/pkg/session"
	"github.com/aussiebroadwan/quill/pkg/storage"
)

// Login runs the password exchange and lands on the index route.
func (app *Application) Login(ctx context.Context, w io.Writer, username, password string) error {
	res, err := app.sdk.LoginWithPassword(ctx, username, password)
	if err != nil {
		return err
	}

	if _, err := app.router.Push(ctx, "/index"); err != nil {
		return fmt.Errorf("failed to open index: %w", err)
	}

	fmt.Fprintf(w, "logged in as %s\n", res.Username)
	if res.Avatar != "" {
		fmt.Fprintf(w, "avatar: %s\n", res.Avatar)
	}
	return nil
}

// Logout ends the session on the server and locally, then returns to the
// entry route.
func (app *Application) Logout(ctx context.Context, w io.Writer) error {
	if err := app.sdk.Logout(ctx); err != nil {
		return err
	}
	if err := app.router.Navigate(ctx, "/"); err != nil {
		return err
	}
	fmt.Fprintln(w, "logged out")
	return nil
}

// Status prints the session as held in storage and whether that storage is
// reachable. Claims are decoded without verification and only shown for
// information.
func (app *Application) Status(ctx context.Context, w io.Writer) error {
	sess := app.session

	if err := storage.Ping(ctx, app.durable); err != nil {
		fmt.Fprintf(w, "storage: %s unreachable: %v\n", app.cfg.Storage, err)
	} else {
		fmt.Fprintf(w, "storage: %s ok\n", app.cfg.Storage)
	}

	if !sess.IsLoggedIn() {
		fmt.Fprintln(w, "not logged in")
		return nil
	}

	fmt.Fprintf(w, "logged in as %s\n", sess.Identity())
	if avatar := sess.Avatar(); avatar != "" {
		fmt.Fprintf(w, "avatar: %s\n", avatar)
	}

	claims, err := sess.Claims()
	switch {
	case errors.Is(err, session.ErrOpaqueCredential):
		fmt.Fprintln(w, "credential: opaque")
	case err != nil:
		return err
	default:
		if claims.Subject != "" {
			fmt.Fprintf(w, "subject: %s\n", claims.Subject)
		}
		if !claims.ExpiresAt.IsZero() {
			state, err := app.expiryState(ctx, claims)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "expires: %s (%s)\n", claims.ExpiresAt.Format(time.RFC3339), state)
		}
	}
	return nil
}

// expiryState says what the next request will do with this credential.
// Renewal needs a stored refresh credential; without one the user has to
// log in again.
func (app *Application) expiryState(ctx context.Context, claims session.Claims) (string, error) {
	if !claims.ExpiredAt(time.Now()) {
		return "valid", nil
	}
	refresh, err := app.session.RefreshCredential(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read refresh credential: %w", err)
	}
	if refresh == "" {
		return "expired, log in again", nil
	}
	return "expired, will renew on next request", nil
}

// Open navigates to path through the route guard and prints where the user
// ended up.
func (app *Application) Open(ctx context.Context, w io.Writer, path string) error {
	loc, err := app.router.Push(ctx, path)
	if err != nil {
		return err
	}
	name := loc.Name
	if name == "" {
		name = "-"
	}
	fmt.Fprintf(w, "%s %s\n", loc.Path, name)
	return nil
}

// Request sends an authenticated request and copies the response body to w.
func (app *Application) Request(ctx context.Context, w io.Writer, method, path string, body io.Reader) error {
	req, err := app.api.NewRequest(ctx, strings.ToUpper(method), path, body)
	if err != nil {
		return err
	}

	resp, err := app.api.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	return nil
}
