package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hail-faro/public-backend/internal/auth/config"
	"github.com/hail-faro/public-backend/internal/auth/cookie"
	httpapi "github.com/hail-faro/public-backend/internal/auth/http"
	"github.com/hail-faro/public-backend/internal/auth/idp"
	"github.com/hail-faro/public-backend/internal/auth/idp/cognito"
	"github.com/hail-faro/public-backend/internal/auth/service"
	"github.com/hail-faro/public-backend/internal/metrics"
	"github.com/hail-faro/public-backend/pkg/jwtx"
	"github.com/hail-faro/public-backend/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the login gateway with all its dependencies
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	// Core dependencies
	provider idp.Provider
	keys     *jwtx.RemoteKeySets
	verifier *jwtx.Verifier
	metrics  *metrics.Metrics

	// Services
	loginService     *service.LoginService
	authorizeService *service.AuthorizeService
	keyRefresher     *service.KeyRefresher // nil when JWKS_REFRESH_INTERVAL is 0

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// Option adjusts an Application before its services are built.
type Option func(*Application)

// WithProvider replaces the Cognito client, for local stacks and tests.
func WithProvider(p idp.Provider) Option {
	return func(app *Application) { app.provider = p }
}

// New creates a new Application instance with all dependencies initialized
func New(cfg config.Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "login-gateway",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}
	for _, opt := range opts {
		opt(app)
	}

	// Missing pool settings are reported, not fatal: the failing request
	// gets the normalized error for whatever is absent.
	if err := cfg.Validate(); err != nil {
		app.logger.Warn("incomplete user pool configuration", "error", err)
	}

	if err := app.initMetrics(); err != nil {
		return nil, err
	}
	if err := app.initProvider(context.Background()); err != nil {
		return nil, err
	}
	app.initKeys()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	if app.keyRefresher != nil {
		app.keyRefresher.Start()
	}

	app.logger.Info("login gateway starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down login gateway...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	var shutdownErr error
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		shutdownErr = err
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if app.keyRefresher != nil {
		app.keyRefresher.Stop()
	}

	app.logger.Info("login gateway stopped")
	return shutdownErr
}

func (app *Application) initMetrics() error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}
	app.metrics = m
	return nil
}

// initProvider builds the Cognito client from the default AWS credential chain
func (app *Application) initProvider(ctx context.Context) error {
	if app.provider != nil {
		return nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(app.cfg.Region))
	if err != nil {
		return fmt.Errorf("failed to load aws config: %w", err)
	}
	app.provider = cognito.New(awsCfg)
	return nil
}

func (app *Application) initKeys() {
	opts := []jwtx.RemoteOption{
		jwtx.WithTTL(app.cfg.JWKSCacheTTL),
		jwtx.WithFetchObserver(app.metrics.JWKSFetch),
	}
	if app.cfg.JWKSIssuerURL != "" {
		opts = append(opts, jwtx.WithIssuerBase(app.cfg.JWKSIssuerURL))
	}
	app.keys = jwtx.NewRemoteKeySets(opts...)
	app.verifier = jwtx.NewVerifier(app.keys)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.loginService = &service.LoginService{
		Provider:    app.provider,
		Credentials: app.cfg.Credentials(),
		Metrics:     app.metrics,
	}
	app.authorizeService = &service.AuthorizeService{
		Keys:       app.keys,
		Verifier:   app.verifier,
		ClientID:   app.cfg.ClientID,
		Region:     app.cfg.Region,
		UserPoolID: app.cfg.UserPoolID,
		Metrics:    app.metrics,
	}

	if app.cfg.JWKSRefreshInterval > 0 && app.cfg.UserPoolID != "" {
		app.keyRefresher = service.NewKeyRefresher(
			app.keys,
			app.cfg.Region,
			app.cfg.UserPoolID,
			app.logger,
			app.cfg.JWKSRefreshInterval,
		)
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.metrics, app.logger)
	router.Cookies = cookie.Factory{
		Domain: app.cfg.CookieDomain,
		Secure: app.cfg.CookieSecure,
	}
	router.LoginService = app.loginService
	router.AuthorizeService = app.authorizeService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              app.cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
