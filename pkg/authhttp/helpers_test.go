package authhttp_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	"github.com/aussiebroadwan/quill/pkg/notify"
	"github.com/aussiebroadwan/quill/pkg/session"
	"github.com/aussiebroadwan/quill/pkg/slogx"
	"github.com/aussiebroadwan/quill/pkg/storage"
	"github.com/stretchr/testify/require"
)

/*
 * A fake backend: /api/* accepts one valid bearer credential, everything
 * else is a 401. /api/auth/refresh answers with whatever the test set.
 */

type seenRequest struct {
	Method        string
	Path          string
	Authorization string
	RequestID     string
	Body          string
}

type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	valid     string
	seen      []seenRequest
	renewals  []string // refresh credentials presented
	onRefresh func(w http.ResponseWriter, refresh string)

	dataHits atomic.Int32
}

func newFakeBackend(t *testing.T, valid string) *fakeBackend {
	t.Helper()
	b := &fakeBackend{t: t, valid: valid}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/refresh", b.handleRefresh)
	mux.HandleFunc("/api/", b.handleData)
	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) URL() string { return b.srv.URL }

func (b *fakeBackend) setValid(tok string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.valid = tok
}

func (b *fakeBackend) handleData(w http.ResponseWriter, r *http.Request) {
	b.dataHits.Add(1)
	body, _ := io.ReadAll(r.Body)

	b.mu.Lock()
	b.seen = append(b.seen, seenRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		RequestID:     r.Header.Get(authhttp.HeaderRequestID),
		Body:          string(body),
	})
	valid := b.valid
	b.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+valid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"Could not validate credentials"}`)
		return
	}

	switch r.URL.Path {
	case "/api/missing":
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"User not found"}`)
	case "/api/forbidden":
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":"insufficient_scope","error_description":"admin only"}`)
	case "/api/broken":
		w.WriteHeader(http.StatusInternalServerError)
	default:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"echo": string(body), "path": r.URL.Path})
	}
}

func (b *fakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = json.NewDecoder(r.Body).Decode(&in)

	b.mu.Lock()
	b.renewals = append(b.renewals, in.RefreshToken)
	b.seen = append(b.seen, seenRequest{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
	})
	handler := b.onRefresh
	b.mu.Unlock()

	if handler == nil {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	handler(w, in.RefreshToken)
}

func (b *fakeBackend) setOnRefresh(fn func(w http.ResponseWriter, refresh string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRefresh = fn
}

// renewTo makes the refresh endpoint issue tok/ref and accept tok afterwards.
func (b *fakeBackend) renewTo(tok, ref string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onRefresh = func(w http.ResponseWriter, _ string) {
		b.setValid(tok)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": tok, "refreshToken": ref})
	}
}

func (b *fakeBackend) renewalCalls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.renewals...)
}

func (b *fakeBackend) requests() []seenRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]seenRequest(nil), b.seen...)
}

func (b *fakeBackend) dataRequests() []seenRequest {
	var out []seenRequest
	for _, r := range b.requests() {
		if r.Path != "/api/auth/refresh" {
			out = append(out, r)
		}
	}
	return out
}

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
	return nil
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

type harness struct {
	backend   *fakeBackend
	durable   *storage.Memory
	session   *session.Store
	notices   *notify.Recorder
	navigator *recordingNavigator
	client    *authhttp.Client
}

func newHarness(t *testing.T, cfg func(string) authhttp.Config, credential string) *harness {
	t.Helper()
	ctx := context.Background()

	h := &harness{
		backend:   newFakeBackend(t, credential),
		durable:   storage.NewMemory(),
		notices:   &notify.Recorder{},
		navigator: &recordingNavigator{},
	}

	sess, err := session.Open(ctx, h.durable, storage.NewMemory(), session.WithLogger(slogx.Discard()))
	require.NoError(t, err)
	if credential != "" {
		require.NoError(t, sess.Login(ctx, "alice", credential, "/a.png"))
	}
	h.session = sess

	h.client = authhttp.New(cfg(h.backend.URL()), sess,
		authhttp.WithLogger(slogx.Discard()),
		authhttp.WithNotifier(h.notices),
		authhttp.WithNavigator(h.navigator),
	)
	return h
}

func (h *harness) get(t *testing.T, path string) (*http.Response, error) {
	t.Helper()
	req, err := h.client.NewRequest(context.Background(), http.MethodGet, path, nil)
	require.NoError(t, err)
	return h.client.Do(req)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return strings.TrimSpace(string(b))
}
