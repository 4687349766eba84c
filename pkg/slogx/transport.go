package slogx

import (
	"log/slog"
	"net/http"
	"time"
)

// Transport logs every outbound request that passes through it. The logger
// attached to the request context wins over base, so callers that tagged the
// context (request id, user) get those attributes on the log line.
type Transport struct {
	Base   http.RoundTripper
	Logger *slog.Logger
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	logger := t.Logger
	if l, ok := Lookup(req.Context()); ok {
		logger = l
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		"method", req.Method,
		"host", req.URL.Host,
		"path", req.URL.Path,
	)

	resp, err := t.base().RoundTrip(req)
	duration := time.Since(start).Milliseconds()
	if err != nil {
		logger.Warn("http_request_failed",
			"duration_ms", duration,
			"error", err,
		)
		return nil, err
	}

	logger.Debug("http_request",
		"status", resp.StatusCode,
		"duration_ms", duration,
	)
	return resp, nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}
