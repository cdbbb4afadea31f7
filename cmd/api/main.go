package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/notihub/notification-backend-go/internal/config"
	appHTTP "github.com/notihub/notification-backend-go/internal/handler/http"
	"github.com/notihub/notification-backend-go/internal/pkg/cron"
	"github.com/notihub/notification-backend-go/internal/pkg/jwt"
	"github.com/notihub/notification-backend-go/internal/pkg/sse"
	serviceAuth "github.com/notihub/notification-backend-go/internal/service/auth"
	notificationService "github.com/notihub/notification-backend-go/internal/service/notification"
	"github.com/redis/go-redis/v9"
)

const version = "v1.0.0"

func main() {
	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})).With(
		slog.String("app", "notification-backend"),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	slog.Info("Store connected", "driver", cfg.Store.Driver)

	hub := sse.NewHub()
	var publisher sse.Publisher = hub
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()

		bridge := sse.NewRedisBridge(redisClient, cfg.Redis.Channel, hub)
		go bridge.Serve(ctx)
		publisher = bridge
	}

	if cfg.App.MonitorInterval > 0 {
		scheduler := cron.NewScheduler()
		cron.NewMonitorJobs(st.ping, hub).RegisterJobs(scheduler, cfg.App.MonitorInterval)
		scheduler.Start(ctx)
		defer scheduler.Stop()
	}

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	authService := serviceAuth.NewAuthService(JWTService)
	notifService := notificationService.NewNotificationService(st.repo, hub, notificationService.Config{Publisher: publisher})

	authHandler := appHTTP.NewAuthHandler(authService)
	notificationHandler := appHTTP.NewNotificationHandler(notifService)
	healthHandler := appHTTP.NewHealthHandler(st.ping, hub)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			AllowedOrigins: cfg.App.AllowedOrigins,
			Env:            cfg.App.Env,
			Version:        version,
			LogLevel:       cfg.SlogLevel(),
		},
		JWTService,
		authHandler,
		notificationHandler,
		healthHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		// Open SSE streams end with the signal context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down", "grace", cfg.App.ShutdownGrace)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownGrace)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}
