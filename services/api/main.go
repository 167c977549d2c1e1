package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/workdesk/internal/appstate"
	"github.com/workdesk/internal/config"
	"github.com/workdesk/internal/handler"
	"github.com/workdesk/internal/logger"
	"github.com/workdesk/internal/middleware"
	"github.com/workdesk/internal/repository"
	"github.com/workdesk/internal/startup"
	"github.com/workdesk/internal/storage"
	filestorage "github.com/workdesk/internal/storage/file"
	"github.com/workdesk/internal/storage/memory"
	pgstorage "github.com/workdesk/internal/storage/postgres"
	"github.com/workdesk/internal/ws"
	"github.com/workdesk/migrations"
)

func main() {
	logger.SetPrefix("api")
	dev := flag.Bool("dev", false, "start with embedded PostgreSQL (no external DB required)")
	flag.Parse()

	logger.Info("starting API service")
	cfg := config.Load()

	backend := cfg.Storage.Backend
	if *dev {
		backend = "postgres"
	}

	var embeddedDB *embeddedpostgres.EmbeddedPostgres
	if *dev {
		var err error
		embeddedDB, err = startEmbeddedPostgres(cfg)
		if err != nil {
			logger.Errorf("embedded postgres: %v", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("stopping embedded postgres...")
			if err := embeddedDB.Stop(); err != nil {
				logger.Errorf("embedded postgres stop: %v", err)
			}
		}()
	}

	// Бэкенд хранилища выбирается один раз здесь и передаётся репозиториям
	// как готовая возможность.
	kvClient, err := openStorage(cfg, backend)
	if err != nil {
		logger.Errorf("storage: %v", err)
		os.Exit(1)
	}
	defer kvClient.Close()
	store := storage.NewStore(kvClient)
	logger.Infof("storage backend: %s", backend)

	hubCtx, hubCancel := context.WithCancel(context.Background())
	hub := ws.NewHub(cfg.MaxWSConnections)
	var hubWg sync.WaitGroup
	hubWg.Add(1)
	go func() {
		defer hubWg.Done()
		hub.Run(hubCtx)
	}()

	metricsRepo := repository.NewMetricsRepository(store)
	notifRepo := repository.NewNotificationRepository(store, metricsRepo, hub)
	chatRepo := repository.NewChatRepository(store, notifRepo)
	draftRepo := repository.NewDraftRepository(store)

	appStore := appstate.NewStore(store, nil)
	hydrateCtx, hydrateCancel := context.WithTimeout(context.Background(), 5*time.Second)
	appStore.Hydrate(hydrateCtx)
	hydrateCancel()
	logger.Info("session state hydrated")

	chatH := handler.NewChatHandler(chatRepo)
	notifH := handler.NewNotificationHandler(notifRepo)
	metricsH := handler.NewMetricsHandler(metricsRepo)
	draftH := handler.NewDraftHandler(draftRepo)
	stateH := handler.NewStateHandler(appStore, hub)
	configH := handler.NewAppConfigHandler(cfg)
	wsH := handler.NewWSHandler(hub, cfg.CORSAllowedOrigins)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(middleware.RecoverJSON)
	// Не сжимать WebSocket — иначе ResponseWriter не реализует http.Hijacker и upgrade даёт 500.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if strings.EqualFold(req.Header.Get("Upgrade"), "websocket") {
				next.ServeHTTP(w, req)
				return
			}
			chimw.Compress(5)(next).ServeHTTP(w, req)
		})
	})
	r.Use(middleware.RequestLog)
	r.Use(middleware.RateLimitAPI)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSAllowedOrigins},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK); w.Write([]byte("ok")) })
	r.Get("/api/config/app", configH.GetAppConfig)

	r.Get("/api/chats", chatH.ListChats)
	r.Post("/api/chats/dm", chatH.CreateDMChat)
	r.Post("/api/chats/group", chatH.CreateGroupChat)
	r.Get("/api/chats/{id}", chatH.GetChat)
	r.Post("/api/chats/{id}/messages", chatH.SendMessage)
	r.Post("/api/chats/{id}/read", chatH.MarkChatRead)
	r.Put("/api/chats/{id}/members", chatH.SetChatMembers)

	r.Get("/api/notifications", notifH.List)
	r.Post("/api/notifications/{id}/read", notifH.MarkRead)

	r.Get("/api/metrics/config", metricsH.GetSeriesConfig)
	r.Put("/api/metrics/config", metricsH.SaveSeriesConfig)
	r.Get("/api/metrics/series", metricsH.GetSeries)

	r.Get("/api/drafts", draftH.List)
	r.Post("/api/drafts", draftH.Upsert)
	r.Post("/api/drafts/rich", draftH.UpsertRich)
	r.Delete("/api/drafts/{id}", draftH.Delete)

	r.Get("/api/state", stateH.Get)
	r.Post("/api/state/role", stateH.SetRole)
	r.Post("/api/state/pro", stateH.SetPro)
	r.Post("/api/state/profile", stateH.SetProfile)
	r.Post("/api/state/email", stateH.SetEmail)
	r.Post("/api/state/language", stateH.SetLanguage)
	r.Post("/api/state/toast", stateH.Toast)

	r.Get("/ws", wsH.ServeWS)

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	var srvWg sync.WaitGroup
	errCh := make(chan error, 1)
	srvWg.Add(1)
	go func() {
		defer srvWg.Done()
		logger.Infof("server listening on %s", cfg.ServerAddr)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Errorf("server error: %v", err)
			os.Exit(1)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("server shutdown: %v", err)
	}
	logger.Info("server stopped accepting connections")
	hubCancel()
	hubWg.Wait()
	logger.Info("hub stopped")
	srvWg.Wait()
	logger.Info("server goroutine exited")
}

// openStorage создаёт клиент выбранного бэкенда.
func openStorage(cfg *config.Config, backend string) (storage.Client, error) {
	switch backend {
	case "postgres":
		poolCfg, err := pgxpool.ParseConfig(cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("parse db config: %w", err)
		}
		poolCfg.MaxConns = int32(cfg.DBMaxConnections())
		pool := startup.ConnectDBWithRetry(poolCfg, 60*time.Second)
		if err := runMigrations(pool); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info("database connected, migrations applied")
		return pgstorage.New(pool), nil
	case "redis":
		return startup.ConnectRedisWithRetry(cfg.Storage.RedisURL, 60*time.Second), nil
	case "memory":
		return memory.New(), nil
	case "file", "":
		return filestorage.Open(cfg.Storage.FilePath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func runMigrations(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	entries, err := migrations.Files.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	for _, e := range entries {
		data, err := migrations.Files.ReadFile(e.Name())
		if err != nil {
			return fmt.Errorf("read migration %s: %w", e.Name(), err)
		}
		if _, err := pool.Exec(ctx, string(data)); err != nil {
			return fmt.Errorf("run migration %s: %w", e.Name(), err)
		}
	}
	logger.Info("migrations applied")
	return nil
}

func startEmbeddedPostgres(cfg *config.Config) (*embeddedpostgres.EmbeddedPostgres, error) {
	const (
		port     = 5432
		user     = "workdesk"
		password = "workdesk_secret"
		database = "workdesk"
	)

	dataDir := filepath.Join(".", ".pgdata")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create pgdata dir: %w", err)
	}

	db := embeddedpostgres.NewDatabase(
		embeddedpostgres.DefaultConfig().
			Port(port).
			Username(user).
			Password(password).
			Database(database).
			DataPath(dataDir).
			RuntimePath(filepath.Join(os.TempDir(), "embedded-pg-runtime")),
	)

	logger.Info("starting embedded PostgreSQL...")
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("start: %w", err)
	}

	cfg.Storage.DatabaseURL = fmt.Sprintf(
		"postgres://%s:%s@localhost:%d/%s?sslmode=disable",
		user, password, port, database,
	)
	logger.Infof("embedded PostgreSQL running on port %d", port)
	return db, nil
}
