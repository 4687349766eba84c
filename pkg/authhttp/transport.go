package authhttp

import (
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/quill/pkg/idx"
	"github.com/aussiebroadwan/quill/pkg/slogx"
	"golang.org/x/time/rate"
)

const HeaderRequestID = "X-Request-ID"

// requestIDTransport stamps each request with a ULID and tags the contextual
// logger with it, so the logging stage and the server can correlate.
type requestIDTransport struct {
	base   http.RoundTripper
	logger *slog.Logger
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqID := req.Header.Get(HeaderRequestID)
	if reqID == "" {
		reqID = idx.New().String()
	}

	ctx := req.Context()
	if _, ok := slogx.Lookup(ctx); !ok {
		ctx = slogx.WithContext(ctx, t.logger)
	}
	ctx = slogx.WithRequestID(ctx, reqID)
	out := req.Clone(ctx)
	out.Header.Set(HeaderRequestID, reqID)

	return t.base.RoundTrip(out)
}

// rateLimitTransport waits for a token before sending. A cancelled context
// while waiting is a transport error like any other.
type rateLimitTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}
