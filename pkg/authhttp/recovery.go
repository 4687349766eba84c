package authhttp

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/quill/pkg/notify"
)

// recoveryState names where a request is in the expiry recovery. Only used
// for tracing; the flow itself is straight-line code with no loop.
type recoveryState int

const (
	stateDispatched recoveryState = iota
	statePassthrough
	stateRecovering
	stateDone
	stateUnrecoverable
)

func (s recoveryState) String() string {
	switch s {
	case stateDispatched:
		return "dispatched"
	case statePassthrough:
		return "passthrough"
	case stateRecovering:
		return "recovering"
	case stateDone:
		return "done"
	case stateUnrecoverable:
		return "unrecoverable"
	default:
		return fmt.Sprintf("recoveryState(%d)", int(s))
	}
}

// ExpiredNotice is shown when the session cannot be renewed.
const ExpiredNotice = "Your session has expired, please log in again."

// recoverExpiry handles a 401 for req. It makes at most one renewal and at
// most one replay.
func (c *Client) recoverExpiry(req *http.Request, resp *http.Response) (*http.Response, error) {
	ctx := req.Context()
	original := newAPIError(resp)
	c.trace(ctx, stateRecovering, req)

	pending, err := capturePending(req)
	if err != nil {
		original.Cause = err
		c.trace(ctx, stateUnrecoverable, req, "error", err)
		return nil, original
	}

	refresh, err := c.session.RefreshCredential(ctx)
	if err != nil {
		original.Cause = fmt.Errorf("failed to read refresh credential: %w", err)
		c.trace(ctx, stateUnrecoverable, req, "error", original.Cause)
		return nil, original
	}
	if refresh == "" {
		// Nothing to renew with; the caller decides what to do with the 401.
		original.Cause = ErrNoRefreshCredential
		c.trace(ctx, stateUnrecoverable, req, "error", original.Cause)
		return nil, original
	}

	tokens, err := c.renew(ctx, refresh)
	if err != nil {
		original.Cause = err
		c.trace(ctx, stateUnrecoverable, req, "error", err)
		c.expire(ctx)
		return nil, original
	}

	if err := c.session.ApplyRenewal(ctx, tokens.Token, tokens.RefreshToken); err != nil {
		// The replay still carries the new credential explicitly.
		c.logger.WarnContext(ctx, "failed to persist renewed credential", "error", err)
	}

	replay, err := pending.rebuild(ctx, tokens.Token)
	if err != nil {
		original.Cause = err
		c.trace(ctx, stateUnrecoverable, req, "error", err)
		return nil, original
	}

	c.trace(ctx, stateDone, req)
	return c.replay(replay)
}

// replay sends the rebuilt request through the pipeline without recovery.
func (c *Client) replay(req *http.Request) (*http.Response, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.StatusCode) {
		return nil, newAPIError(resp)
	}
	return resp, nil
}

// expire tells the user and sends them to the entry route.
func (c *Client) expire(ctx context.Context) {
	if c.notifier != nil {
		c.notifier.Notify(ctx, notify.LevelError, ExpiredNotice)
	}
	if c.navigator != nil {
		if err := c.navigator.Navigate(ctx, c.cfg.EntryRoute); err != nil {
			c.logger.WarnContext(ctx, "redirect after failed renewal failed",
				"route", c.cfg.EntryRoute,
				"error", err,
			)
		}
	}
}

func (c *Client) trace(ctx context.Context, state recoveryState, req *http.Request, args ...any) {
	args = append([]any{"state", state.String(), "method", req.Method, "path", req.URL.Path}, args...)
	c.logger.DebugContext(ctx, "expiry_recovery", args...)
}
