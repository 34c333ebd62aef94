// Command sitedeck serves the site management dashboard on a local address.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/fruitsalade/sitedeck/internal/access"
	"github.com/fruitsalade/sitedeck/internal/config"
	"github.com/fruitsalade/sitedeck/internal/dashboard"
	"github.com/fruitsalade/sitedeck/internal/events"
	"github.com/fruitsalade/sitedeck/internal/logging"
	"github.com/fruitsalade/sitedeck/internal/metrics"
	"github.com/fruitsalade/sitedeck/internal/notify"
	"github.com/fruitsalade/sitedeck/internal/prefs"
	"github.com/fruitsalade/sitedeck/internal/web"
	"github.com/fruitsalade/sitedeck/pkg/client"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("configuration error: " + err.Error())
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	}); err != nil {
		panic("logging init error: " + err.Error())
	}
	defer logging.Sync()

	logging.Info("sitedeck starting...",
		zap.String("listen", cfg.ListenAddr),
		zap.String("metrics", cfg.MetricsAddr),
		zap.String("api", cfg.APIBase))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Preferences are optional: without a store dark mode simply resets on
	// restart.
	var store dashboard.Preferences
	if s, err := prefs.Open(cfg.PrefsPath); err != nil {
		logging.Warn("preferences unavailable", zap.String("path", cfg.PrefsPath), zap.Error(err))
	} else {
		defer s.Close()
		store = s
	}

	apiClient := client.New(client.Config{
		BaseURL: cfg.APIBase,
		Timeout: cfg.APITimeout,
		Logger:  logging.Named("client"),
	})

	broadcaster := events.NewBroadcaster()
	notes := notify.New(cfg.NotifyLifetime, broadcaster, logging.Named("notify"))
	defer notes.Close()

	ctrl := dashboard.NewController(dashboard.Config{
		API:       apiClient,
		Notifier:  notes,
		Prefs:     store,
		Publisher: broadcaster,
		Logger:    logging.Named("dashboard"),
	})
	// Dark mode must be applied before anything renders.
	ctrl.LoadPreferences()

	srv, err := web.NewServer(web.Config{
		Dashboard:     ctrl,
		Notifications: notes,
		Broadcaster:   broadcaster,
		MaxUploadSize: cfg.MaxUploadSize,
		Guard: access.Guard{
			User:   cfg.DashboardUser,
			Bcrypt: cfg.DashboardPasswordBcrypt,
		},
		Logger:  logging.Named("web"),
		APIBase: cfg.APIBase,
	})
	if err != nil {
		logging.Fatal("server init failed", zap.Error(err))
	}
	if !cfg.GuardEnabled() {
		logging.Warn("dashboard is not password protected; keep LISTEN_ADDR on loopback")
	}

	metricsServer := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: metrics.Handler(),
	}
	if cfg.MetricsAddr != "" {
		go func() {
			logging.Info("metrics server listening", zap.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				logging.Error("metrics server error", zap.Error(err))
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Cancelling ctx ends open event streams so Shutdown can finish.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logging.Info("shutting down...")
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			httpServer.Close()
		}
		metricsServer.Close()
	}()

	go func() {
		ctrl.Dispatch(ctx, dashboard.CheckStatus{})
		st := ctrl.State()
		logging.Info("initial status resolved",
			zap.Stringer("view", st.View),
			zap.Bool("api_online", apiClient.IsOnline()),
			zap.Time("api_last_seen", apiClient.LastSeen()))
	}()

	logging.Info("dashboard listening", zap.String("addr", "http://"+cfg.ListenAddr))
	if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		logging.Fatal("server error", zap.Error(err))
	}
	logging.Info("sitedeck stopped")
}
