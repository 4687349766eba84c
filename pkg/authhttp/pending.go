package authhttp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// pendingRequest is what is kept of a request that got a 401 so it can be
// sent once more. Never persisted.
type pendingRequest struct {
	method string
	url    string
	header http.Header
	body   []byte
}

// makeReplayable buffers req.Body when the request cannot rewind it itself.
// Requests built from bytes/strings readers already have GetBody.
func makeReplayable(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody || req.GetBody != nil {
		return nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to buffer request body: %w", err)
	}

	req.Body = io.NopCloser(bytes.NewReader(buf))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}
	req.ContentLength = int64(len(buf))
	return nil
}

func capturePending(req *http.Request) (*pendingRequest, error) {
	p := &pendingRequest{
		method: req.Method,
		url:    req.URL.String(),
		header: req.Header.Clone(),
	}

	if req.GetBody != nil {
		rc, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}
		defer rc.Close()

		if p.body, err = io.ReadAll(rc); err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
	}
	return p, nil
}

// rebuild makes a fresh request carrying credential.
func (p *pendingRequest) rebuild(ctx context.Context, credential string) (*http.Request, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}

	req, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild request: %w", err)
	}
	if h := p.header.Clone(); h != nil {
		req.Header = h
	}
	req.Header.Set("Authorization", bearer(credential))
	return req, nil
}
