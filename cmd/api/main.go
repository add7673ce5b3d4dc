package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"outbound-dialer/internal/audit"
	"outbound-dialer/internal/auth"
	"outbound-dialer/internal/calls"
	"outbound-dialer/internal/config"
	"outbound-dialer/internal/credentials"
	"outbound-dialer/internal/directory"
	"outbound-dialer/internal/httpapi"
	"outbound-dialer/internal/metrics"
	"outbound-dialer/internal/reporting"
	"outbound-dialer/internal/session"
	"outbound-dialer/internal/telephony"
	"outbound-dialer/internal/ws"
	"outbound-dialer/pkg/logger"
	"outbound-dialer/pkg/utils"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real environment wins.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn(".env load failed", "err", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	callRepo, auditRepo, db, err := openStorage(rootCtx, cfg, log)
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	kv, rdb, err := openCredentialKV(rootCtx, cfg, log)
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	if rdb != nil {
		defer rdb.Close()
	}

	m := metrics.New()
	hub := ws.NewHub(log)
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)

	tel := telephony.NewClient(cfg.Pearl.BaseURL, cfg.Pearl.Timeout, nil)
	callLog := calls.NewLog(callRepo)

	// Sequencers run on rootCtx: shutdown aborts calls in flight.
	sessions := session.NewRegistry(rootCtx, session.Deps{
		KV:               kv,
		Telephony:        tel,
		Calls:            callLog,
		Audit:            audit.NewService(auditRepo),
		Metrics:          m,
		Events:           hub,
		NotifyLimit:      cfg.Notify.Limit,
		DefaultTimeframe: cfg.Bulk.DefaultTimeframe,
		Log:              log,
	})

	h := &httpapi.Handlers{
		Sessions:     sessions,
		Telephony:    tel,
		Directory:    directory.NewClient(cfg.Directory.BaseURL, cfg.Directory.Timeout, nil),
		Calls:        callLog,
		Reports:      reporting.NewService(callLog),
		Hub:          hub,
		AccountToken: cfg.Pearl.AccountToken(),
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))
	r.Use(m.Gin())

	registerRoutes(r, h, auth.RequireAccessToken(authManager), m, db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env,
			"postgres", cfg.UsePostgres(), "redis", cfg.UseRedis())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}
	sessions.Wait()
	stopHub()
	log.Info("shutdown complete", "sessions", sessions.Len())
}

// openStorage returns Postgres-backed logs when DB_HOST is set, in-memory ones otherwise.
func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (calls.Repository, audit.Repository, *sql.DB, error) {
	if !cfg.UsePostgres() {
		log.Warn("DB_HOST not set, placed calls and audit events are kept in memory")
		return calls.NewMemoryRepo(), audit.NewMemoryRepo(), nil, nil
	}
	db, err := utils.OpenPostgres(ctx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		return nil, nil, nil, err
	}
	callRepo := calls.NewPostgresRepo(db)
	auditRepo := audit.NewPostgresRepo(db)
	if err := callRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	if err := auditRepo.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, nil, err
	}
	return callRepo, auditRepo, db, nil
}

// openCredentialKV returns a Redis-backed store when REDIS_HOST is set, an in-memory one otherwise.
func openCredentialKV(ctx context.Context, cfg config.Config, log *slog.Logger) (credentials.KV, *redis.Client, error) {
	if !cfg.UseRedis() {
		log.Warn("REDIS_HOST not set, credentials are kept in memory")
		return credentials.NewMemoryKV(), nil, nil
	}
	rdb, err := utils.OpenRedis(ctx, utils.RedisConfig{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		return nil, nil, err
	}
	return credentials.NewRedisKV(rdb), rdb, nil
}
