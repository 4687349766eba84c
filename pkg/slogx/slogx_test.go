package slogx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		out = append(out, rec)
	}
	return out
}

func TestNewAddsServiceAttributes(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "quill", Version: "dev", Env: "test", Level: "warn", Output: &buf})

	logger.Info("dropped")
	logger.Warn("kept")

	recs := jsonLines(t, &buf)
	require.Len(t, recs, 1)
	require.Equal(t, "kept", recs[0]["msg"])
	require.Equal(t, "quill", recs[0]["service"])
	require.Equal(t, "test", recs[0]["env"])
}

func TestContextLogger(t *testing.T) {
	t.Parallel()

	_, ok := slogx.Lookup(context.Background())
	require.False(t, ok)
	require.NotNil(t, slogx.FromContext(context.Background()))

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := slogx.WithRequestID(slogx.WithContext(context.Background(), logger), "01ABC")

	slogx.FromContext(ctx).Info("hello")
	recs := jsonLines(t, &buf)
	require.Len(t, recs, 1)
	require.Equal(t, "01ABC", recs[0]["req_id"])
}

func TestTransportLogsRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	client := &http.Client{Transport: &slogx.Transport{Logger: logger}}

	resp, err := client.Get(srv.URL + "/users_api/hello")
	require.NoError(t, err)
	resp.Body.Close()

	recs := jsonLines(t, &buf)
	require.Len(t, recs, 1)
	require.Equal(t, "http_request", recs[0]["msg"])
	require.Equal(t, "GET", recs[0]["method"])
	require.Equal(t, "/users_api/hello", recs[0]["path"])
	require.EqualValues(t, http.StatusTeapot, recs[0]["status"])
}

func TestTransportPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, tagged bytes.Buffer
	boom := errors.New("connection refused")
	tr := &slogx.Transport{
		Base:   roundTripFunc(func(*http.Request) (*http.Response, error) { return nil, boom }),
		Logger: slog.New(slog.NewJSONHandler(&base, nil)),
	}

	ctx := slogx.WithRequestID(slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&tagged, nil))), "req-1")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://example.invalid/x", nil)
	require.NoError(t, err)

	_, err = tr.RoundTrip(req)
	require.ErrorIs(t, err, boom)

	require.Empty(t, base.String())
	recs := jsonLines(t, &tagged)
	require.Len(t, recs, 1)
	require.Equal(t, "http_request_failed", recs[0]["msg"])
	require.Equal(t, "req-1", recs[0]["req_id"])
}
