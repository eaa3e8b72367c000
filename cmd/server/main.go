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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"wms/internal/config"
	"wms/internal/database"
	"wms/internal/handlers"
	"wms/internal/logging"
	"wms/internal/server"
	"wms/internal/services"
	"wms/internal/websocket"
)

func main() {
	dotenv := config.LoadDotEnv()

	cfg, err := config.LoadServer()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ FATAL ERROR:", err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.Development(), cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌ FATAL ERROR:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := run(cfg, log, dotenv); err != nil {
		log.Fatal("❌ FATAL ERROR", zap.Error(err))
	}
}

func run(cfg config.Server, log *zap.Logger, dotenv bool) error {
	log.Info("🚀 WMS BACKEND SERVER STARTING")
	if dotenv {
		log.Info("✅ .env file loaded successfully")
	} else {
		log.Info("⚠️  .env file not found, using environment variables from system")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeRepo()

	log.Info("🌱 Seeding database with initial data...")
	if err := database.SeedDrivers(ctx, repo, log); err != nil {
		return fmt.Errorf("seed drivers: %w", err)
	}
	if err := database.SeedBins(ctx, repo, log); err != nil {
		return fmt.Errorf("seed bins: %w", err)
	}
	if cfg.AdminEmail != "" {
		if err := database.SeedAdmin(ctx, repo, cfg.AdminEmail, cfg.AdminPassword, log); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	log.Info("✅ Seeding completed")

	alerter := openAlerter(ctx, cfg, log)

	hub := websocket.NewHub(log)
	done := make(chan struct{})
	go hub.Run(done)
	defer close(done)
	log.Info("✅ WebSocket hub started")

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: server.NewRouter(server.Deps{
			Repo:     repo,
			Secret:   cfg.JWTSecret,
			Hub:      hub,
			Alerter:  alerter,
			Log:      log,
			Registry: reg,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("🚀 Server starting", zap.String("addr", "http://localhost:"+cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed on port %s: %w", cfg.Port, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("🛑 Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openRepository connects to Postgres when DATABASE_URL is set and falls back
// to the in-memory store otherwise.
func openRepository(ctx context.Context, cfg config.Server, log *zap.Logger) (database.Repository, func(), error) {
	if cfg.DatabaseURL == "" {
		log.Warn("⚠️  DATABASE_URL not set, using in-memory repository")
		return database.NewMemoryRepository(), func() {}, nil
	}

	log.Info("🔌 Connecting to database...")
	db, err := database.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	log.Info("🔄 Running database migrations...")
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("database migrations failed: %w", err)
	}
	log.Info("✅ Database migrations completed")

	return database.NewPostgresRepository(db), func() { db.Close() }, nil
}

// openAlerter initialises Firebase Cloud Messaging. Push alerts are disabled
// when no credentials are configured or initialisation fails.
func openAlerter(ctx context.Context, cfg config.Server, log *zap.Logger) handlers.Alerter {
	var (
		fcm *services.FCMService
		err error
	)
	switch {
	case cfg.FirebaseCredsBase64 != "":
		fcm, err = services.NewFCMServiceFromBase64(ctx, cfg.FirebaseCredsBase64, log)
	case cfg.FirebaseCredsFile != "":
		fcm, err = services.NewFCMService(ctx, cfg.FirebaseCredsFile, log)
	default:
		log.Info("⚠️  Firebase credentials not set (push notifications disabled)")
		return nil
	}
	if err != nil {
		log.Warn("⚠️  Failed to initialize FCM (push notifications disabled)", zap.Error(err))
		return nil
	}
	log.Info("✅ Firebase Cloud Messaging initialized")
	return fcm
}
