package authhttp

import (
	"log/slog"
	"net/http"
)

// CredentialSource is the read side of the session the attacher needs.
type CredentialSource interface {
	Credential() string
}

// credentialTransport sets the bearer credential on every request. It reads
// the source on each call so a credential renewed a moment ago is used.
type credentialTransport struct {
	base        http.RoundTripper
	source      CredentialSource
	placeholder string
	logger      *slog.Logger
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.base.RoundTrip(t.attach(req))
}

// attach returns req with the Authorization header set, or req untouched.
// Nothing in here may stop the request from being sent.
func (t *credentialTransport) attach(req *http.Request) (out *http.Request) {
	out = req
	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn("credential attach failed, sending request unmodified",
				"path", req.URL.Path,
				"panic", r,
			)
			out = req
		}
	}()

	token := t.source.Credential()
	if token == "" || token == t.placeholder {
		return req
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", bearer(token))
	return clone
}

func bearer(token string) string {
	return "Bearer " + token
}
