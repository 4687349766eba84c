package authsdk

import (
	"log/slog"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	"github.com/aussiebroadwan/quill/pkg/session"
)

const (
	PathToken  = "/users_api/token"
	PathLogout = "/users_api/logout"
	PathHello  = "/users_api/hello"
	PathUsers  = "/users_api/users"
)

// SDKClient runs the account operations against the backend and keeps the
// session in step with them.
type SDKClient struct {
	login   *authhttp.Client
	api     *authhttp.Client
	session *session.Store
	logger  *slog.Logger
}

type Option func(*SDKClient)

func WithLogger(l *slog.Logger) Option {
	return func(c *SDKClient) { c.logger = l }
}

// NewSDKClient wires the SDK. login should come from authhttp.LoginConfig and
// api from authhttp.APIConfig, both built on sess.
func NewSDKClient(login, api *authhttp.Client, sess *session.Store, opts ...Option) *SDKClient {
	c := &SDKClient{
		login:   login,
		api:     api,
		session: sess,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the SDK updates.
func (c *SDKClient) Session() *session.Store { return c.session }
