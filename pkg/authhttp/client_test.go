package authhttp_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	"github.com/aussiebroadwan/quill/pkg/slogx"
	"github.com/aussiebroadwan/quill/pkg/storage"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

func newMemory() *storage.Memory { return storage.NewMemory() }

func requireStored(t *testing.T, h *harness, key, want string) {
	t.Helper()
	got, err := h.durable.Get(context.Background(), key)
	require.NoError(t, err)
	require.Equal(t, want, got, "stored %q", key)
}

func TestPresets(t *testing.T) {
	t.Parallel()

	api := authhttp.APIConfig("https://quill.example.com/")
	login := authhttp.LoginConfig("https://quill.example.com")

	require.True(t, api.AttachCredential)
	require.True(t, login.AttachCredential)
	require.True(t, api.RecoverExpiry)
	require.False(t, login.RecoverExpiry)
	require.Greater(t, api.Timeout, login.Timeout)

	c := authhttp.New(api, nil)
	require.Equal(t, "https://quill.example.com/users_api/hello", c.URL("/users_api/hello"))
	require.Equal(t, authhttp.DefaultRefreshPath, c.Config().RefreshPath)
}

func TestURLJoinsBasePath(t *testing.T) {
	t.Parallel()
	c := authhttp.New(authhttp.Config{BaseURL: "http://h", BasePath: "/api/"}, nil)

	require.Equal(t, "http://h/api/chat", c.URL("chat"))
	require.Equal(t, "http://h/api/chat", c.URL("/chat"))
}

func TestRequestIDIsStamped(t *testing.T) {
	t.Parallel()
	h := newHarness(t, authhttp.APIConfig, "tok123")

	resp, err := h.get(t, "/api/profile")
	require.NoError(t, err)
	_ = readBody(t, resp)

	req, err := h.client.NewRequest(context.Background(), http.MethodGet, "/api/profile", nil)
	require.NoError(t, err)
	req.Header.Set(authhttp.HeaderRequestID, "caller-chosen")
	resp, err = h.client.Do(req)
	require.NoError(t, err)
	_ = readBody(t, resp)

	seen := h.backend.dataRequests()
	require.Len(t, seen, 2)

	_, err = ulid.ParseStrict(seen[0].RequestID)
	require.NoError(t, err, "generated ids are ULIDs")
	require.Equal(t, "caller-chosen", seen[1].RequestID)
}

func TestDoJSON(t *testing.T) {
	t.Parallel()
	h := newHarness(t, authhttp.APIConfig, "tok123")

	var out struct {
		Echo string `json:"echo"`
		Path string `json:"path"`
	}
	err := h.client.DoJSON(context.Background(), http.MethodPost, "/api/echo", map[string]string{"a": "b"}, &out)
	require.NoError(t, err)
	require.Equal(t, "/api/echo", out.Path)
	require.JSONEq(t, `{"a":"b"}`, out.Echo)

	err = h.client.DoJSON(context.Background(), http.MethodGet, "/api/missing", nil, &out)
	require.Equal(t, http.StatusNotFound, authhttp.StatusCode(err))
}

func TestDoForm(t *testing.T) {
	t.Parallel()

	type seen struct {
		contentType string
		form        url.Values
	}
	seenCh := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		seenCh <- seen{contentType: r.Header.Get("Content-Type"), form: r.PostForm}
		_, _ = w.Write([]byte(`{"access_token":"tok123","token_type":"bearer"}`))
	}))
	t.Cleanup(srv.Close)

	client := authhttp.New(authhttp.LoginConfig(srv.URL), nil, authhttp.WithLogger(slogx.Discard()))

	var out struct {
		AccessToken string `json:"access_token"`
	}
	err := client.DoForm(context.Background(), "/users_api/token", url.Values{"username": {"alice"}, "password": {"pw"}}, &out)
	require.NoError(t, err)
	require.Equal(t, "tok123", out.AccessToken)
	got := <-seenCh
	require.Equal(t, "application/x-www-form-urlencoded", got.contentType)
	require.Equal(t, "alice", got.form.Get("username"))
}

func TestRateLimitHonoursContext(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	t.Cleanup(srv.Close)

	cfg := authhttp.Config{BaseURL: srv.URL, RateLimit: 0.01, RateBurst: 1}
	client := authhttp.New(cfg, nil, authhttp.WithLogger(slogx.Discard()))

	req, err := client.NewRequest(context.Background(), http.MethodGet, "/", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	_ = resp.Body.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	req, err = client.NewRequest(ctx, http.MethodGet, "/", nil)
	require.NoError(t, err)
	_, err = client.Do(req)
	require.Error(t, err, "second request cannot get a token before the deadline")
	require.EqualValues(t, 1, hits.Load())
}

func TestUnbufferedBodyIsReplayable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	h := newHarness(t, authhttp.APIConfig, "tok123")
	require.NoError(t, h.session.SetRefreshCredential(ctx, "ref456"))
	h.backend.setValid("other")
	h.backend.renewTo("tok789", "ref999")

	// A reader http.NewRequest cannot rewind on its own.
	req, err := h.client.NewRequest(ctx, http.MethodPut, "/api/draft", &onceReader{data: []byte("draft text")})
	require.NoError(t, err)
	require.Nil(t, req.GetBody)

	resp, err := h.client.Do(req)
	require.NoError(t, err)
	_ = readBody(t, resp)

	data := h.backend.dataRequests()
	require.Len(t, data, 2)
	require.Equal(t, "draft text", data[0].Body)
	require.Equal(t, "draft text", data[1].Body)
}

type onceReader struct {
	data []byte
	done bool
}

func (r *onceReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, io.EOF
	}
	r.done = true
	return copy(p, r.data), nil
}
