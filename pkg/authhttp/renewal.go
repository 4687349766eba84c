package authhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

type renewalRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type renewalTokens struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// renewalResponse accepts the pair at the top level or inside a "data"
// envelope.
type renewalResponse struct {
	renewalTokens

	Data *renewalTokens `json:"data,omitempty"`
}

func (r renewalResponse) tokens() renewalTokens {
	if r.Token == "" && r.Data != nil {
		return *r.Data
	}
	return r.renewalTokens
}

// renew performs the one renewal exchange. It goes through the bare renewal
// client, so it never carries the stale credential and never recovers.
func (c *Client) renew(ctx context.Context, refresh string) (renewalTokens, error) {
	payload, err := json.Marshal(renewalRequest{RefreshToken: refresh})
	if err != nil {
		return renewalTokens{}, &RenewalError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+c.cfg.RefreshPath, bytes.NewReader(payload))
	if err != nil {
		return renewalTokens{}, &RenewalError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.renewal.Do(req)
	if err != nil {
		return renewalTokens{}, &RenewalError{Err: err}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return renewalTokens{}, &RenewalError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("refresh endpoint said: %s", bytes.TrimSpace(body)),
		}
	}

	var out renewalResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return renewalTokens{}, &RenewalError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	tokens := out.tokens()
	if tokens.Token == "" {
		return renewalTokens{}, &RenewalError{
			StatusCode: resp.StatusCode,
			Err:        errors.New("response has no token"),
		}
	}
	return tokens, nil
}
