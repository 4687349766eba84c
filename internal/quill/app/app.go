package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/aussiebroadwan/quill/pkg/authhttp"
	"github.com/aussiebroadwan/quill/pkg/authsdk"
	"github.com/aussiebroadwan/quill/pkg/notify"
	"github.com/aussiebroadwan/quill/pkg/router"
	"github.com/aussiebroadwan/quill/pkg/session"
	"github.com/aussiebroadwan/quill/pkg/slogx"
	"github.com/aussiebroadwan/quill/pkg/storage"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

var _ authhttp.Navigator = (*router.Router)(nil)

// Application owns the one session of a running client and everything that
// reads or writes it.
type Application struct {
	cfg    Config
	logger *slog.Logger

	durable storage.Storage
	closer  io.Closer
	session *session.Store

	notices *notify.Recorder
	router  *router.Router
	login   *authhttp.Client
	api     *authhttp.Client
	sdk     *authsdk.SDKClient
}

type Option func(*options)

type options struct {
	logger    *slog.Logger
	transport http.RoundTripper
	durable   storage.Storage
}

// WithLogger replaces the logger built from the config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithTransport replaces the network transport of both clients.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithStorage uses st as durable storage instead of opening cfg.Storage.
func WithStorage(st storage.Storage) Option {
	return func(o *options) { o.durable = st }
}

// New creates an Application with all dependencies initialized.
func New(ctx context.Context, cfg Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slogx.New(slogx.Config{
			Service: "quill",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		})
	}

	app := &Application{
		cfg:     cfg,
		logger:  o.logger,
		notices: &notify.Recorder{},
	}

	if err := app.initStorage(ctx, o.durable); err != nil {
		return nil, err
	}
	if err := app.initSession(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	app.initRouter()
	app.initClients(o.transport)

	return app, nil
}

// Close releases the storage connection.
func (app *Application) Close() error {
	if app.closer == nil {
		return nil
	}
	return app.closer.Close()
}

func (app *Application) initStorage(ctx context.Context, injected storage.Storage) error {
	if injected != nil {
		app.durable, app.closer = injected, nopCloser{}
		return nil
	}

	st, closer, err := openStorage(ctx, app.cfg, app.logger)
	if err != nil {
		return err
	}
	app.durable, app.closer = st, closer
	return nil
}

// initSession opens the session. Session-scoped state lives for the process
// only, like a browser tab.
func (app *Application) initSession(ctx context.Context) error {
	sess, err := session.Open(ctx, app.durable, storage.NewMemory(),
		session.WithLogger(app.logger.With("component", "session")),
	)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	app.session = sess

	app.logger.Debug("session opened",
		"identity", sess.Identity(),
		"logged_in", sess.IsLoggedIn(),
	)
	return nil
}

func (app *Application) notifier() notify.Notifier {
	return notify.Tee{
		notify.LogNotifier{Logger: app.logger.With("component", "notify")},
		app.notices,
	}
}

func (app *Application) initRouter() {
	app.router = router.New(router.DefaultRoutes(),
		router.WithLogger(app.logger.With("component", "router")),
	)
	app.router.BeforeEach(router.RequireAuth(app.session, router.Entry, app.notifier()))
}

func (app *Application) initClients(transport http.RoundTripper) {
	clientOpts := []authhttp.Option{
		authhttp.WithLogger(app.logger),
		authhttp.WithNotifier(app.notifier()),
		authhttp.WithNavigator(app.router),
	}
	if transport != nil {
		clientOpts = append(clientOpts, authhttp.WithTransport(transport))
	}

	apiCfg := authhttp.APIConfig(app.cfg.BaseURL)
	apiCfg.Timeout = app.cfg.APITimeout
	apiCfg.RefreshPath = app.cfg.RefreshPath
	apiCfg.EntryRoute = router.Entry

	loginCfg := authhttp.LoginConfig(app.cfg.BaseURL)
	loginCfg.Timeout = app.cfg.LoginTimeout

	if app.cfg.RateLimitRPS > 0 {
		apiCfg.RateLimit, apiCfg.RateBurst = rate.Limit(app.cfg.RateLimitRPS), app.cfg.RateBurst
		loginCfg.RateLimit, loginCfg.RateBurst = rate.Limit(app.cfg.RateLimitRPS), app.cfg.RateBurst
	}

	app.api = authhttp.New(apiCfg, app.session, clientOpts...)
	app.login = authhttp.New(loginCfg, app.session, clientOpts...)
	app.sdk = authsdk.NewSDKClient(app.login, app.api, app.session,
		authsdk.WithLogger(app.logger.With("component", "sdk")),
	)
}

func (app *Application) Session() *session.Store { return app.session }

func (app *Application) Router() *router.Router { return app.router }

func (app *Application) API() *authhttp.Client { return app.api }

func (app *Application) SDK() *authsdk.SDKClient { return app.sdk }

// Notices returns every user notice raised so far.
func (app *Application) Notices() []notify.Notice { return app.notices.Notices() }
