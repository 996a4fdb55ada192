// Command catalogd serves the books catalog behind the access guard.
//
// Configuration is read from CATALOGD_* environment variables; see the
// config package.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonwraymond/catalogd/account"
	"github.com/jonwraymond/catalogd/auth"
	"github.com/jonwraymond/catalogd/catalog"
	"github.com/jonwraymond/catalogd/config"
	"github.com/jonwraymond/catalogd/credential"
	"github.com/jonwraymond/catalogd/health"
	"github.com/jonwraymond/catalogd/httpapi"
	"github.com/jonwraymond/catalogd/observe"
	"github.com/jonwraymond/catalogd/store/gormstore"
	"github.com/jonwraymond/catalogd/token"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		observe.NewLogger("error").Error(context.Background(), "catalogd exited",
			observe.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	obsCfg := cfg.Observe()
	obsCfg.Version = version
	obs, err := observe.NewObserver(ctx, obsCfg)
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	log := obs.Logger()

	accountsMW, err := observe.MiddlewareFromObserver(obs, observe.WithClassifier(account.Reason))
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}
	guardMW, err := observe.MiddlewareFromObserver(obs, observe.WithClassifier(auth.Reason))
	if err != nil {
		return fmt.Errorf("observe: %w", err)
	}

	db, err := gormstore.Open(cfg.Store())
	if err != nil {
		return err
	}
	store, err := gormstore.New(db)
	if err != nil {
		return err
	}

	hasher, err := credential.New(credential.WithCost(cfg.BcryptCost))
	if err != nil {
		return err
	}
	tokens, err := token.New(cfg.Keys(), cfg.JWT.TTL,
		token.WithKeyID(cfg.JWT.KeyID),
		token.WithIssuer(cfg.JWT.Issuer),
	)
	if err != nil {
		return fmt.Errorf("token: %w", err)
	}

	accounts := account.NewService(store, hasher, tokens,
		account.WithMiddleware(accountsMW),
	)
	guard := auth.NewGuard(
		auth.NewJWTAuthenticator(auth.JWTConfig{}, tokens),
		auth.NewRoleAuthorizer(),
		auth.WithMiddleware(guardMW),
	)

	checks := health.NewAggregator(health.DefaultTimeout)
	checks.Register(health.NewPingChecker("store", store))
	checks.Register(health.NewSigningKeyChecker("signing_key", health.RoundTripFunc(tokens.Probe)))

	deps := httpapi.Deps{
		Accounts: accounts,
		Books:    catalog.NewService(),
		Guard:    guard,
		Health:   checks,
		Logger:   log,
	}
	if cfg.Telemetry.MetricsExporter == "prometheus" {
		deps.Metrics = promhttp.Handler()
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.New(deps).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "catalogd listening",
			observe.Field{Key: "addr", Value: cfg.HTTPAddr},
			observe.Field{Key: "database", Value: cfg.Database.Driver},
			observe.Field{Key: "version", Value: version},
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	closeStore := func(context.Context) error { return store.Close() }

	select {
	case err := <-serveErr:
		if err != nil {
			return errors.Join(fmt.Errorf("http: %w", err),
				shutdown(cfg.ShutdownTimeout, obs.Shutdown, closeStore))
		}
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	return shutdown(cfg.ShutdownTimeout, srv.Shutdown, obs.Shutdown, closeStore)
}

// shutdown runs every step in order under one timeout and joins their
// errors. A failing step does not stop the ones after it.
func shutdown(timeout time.Duration, steps ...func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	errs := make([]error, 0, len(steps))
	for _, step := range steps {
		errs = append(errs, step(ctx))
	}
	return errors.Join(errs...)
}
