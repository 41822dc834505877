package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"nebula/pkg/chat"
	"nebula/pkg/config"
	"nebula/pkg/gateway"
	"nebula/pkg/logger"
	"nebula/pkg/store"
	"nebula/pkg/telemetry"
)

// App encapsulates the server components and lifecycle.
type App struct {
	cfg     *config.Config
	source  string
	version string

	gw      *gateway.Google
	session *chat.Session

	srv *http.Server
}

// New initializes resources that do not require a running context: env
// files, logging, the store, the gateway client and the session. It does
// not start the HTTP server; call Run to start it and block until shutdown.
func New(cfg *config.Config, source, version string) (*App, error) {
	_ = godotenv.Load(".env")

	logger.InitWithLevel(cfg.Logging.Level)

	if err := store.Open(cfg.Server.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", cfg.Server.DBPath, err)
	}
	store.Load()

	gw := gateway.NewGoogle(cfg.Gateway.Endpoint, cfg.Gateway.APIKey, cfg.Gateway.Model, cfg.Gateway.Timeout.Duration())
	if !gw.Configured() {
		logger.Warn("gateway_key_missing", "hint", "set GOOGLE_API_KEY")
	}

	session := chat.NewSession(gw, notifyCue)

	return &App{cfg: cfg, source: source, version: version, gw: gw, session: session}, nil
}

// Run starts the HTTP server and blocks until ctx is canceled or a fatal
// server error occurs. The store is closed on the way out.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	errCh := a.startHTTP()

	select {
	case <-ctx.Done():
		a.shutdown()
		return nil
	case err := <-errCh:
		a.shutdown()
		return err
	}
}

func (a *App) shutdown() {
	if a.srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.srv.Shutdown(ctx); err != nil {
			logger.Error("http_shutdown_failed", "error", err)
		}
	}
	if err := store.Close(); err != nil {
		logger.Error("store_close_failed", "error", err)
	}
	logger.Info("server_stopped")
}

// notifyCue is the server-side stand-in for the client's send sound: an
// audit log line plus a counter.
func notifyCue() {
	telemetry.NotificationsTotal.Inc()
	logger.Debug("notify_cue")
}
