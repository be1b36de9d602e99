package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"corredora-platform/internal/auth"
	"corredora-platform/internal/catalog"
	"corredora-platform/internal/config"
	"corredora-platform/internal/httpapi"
	"corredora-platform/internal/notify"
	"corredora-platform/internal/poliza"
	"corredora-platform/internal/solicitud"
	"corredora-platform/internal/users"
	"corredora-platform/pkg/logger"
	"corredora-platform/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

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

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	var mailer notify.Mailer
	if cfg.SMTP.Host != "" {
		mailer, err = notify.NewSMTPMailer(cfg.SMTP)
		if err != nil {
			log.Error("smtp init failed", "err", err)
			os.Exit(1)
		}
	} else {
		log.Warn("SMTP_HOST not set, outgoing mail is discarded")
		mailer = notify.NewRecorder()
	}

	userRepo := users.NewPostgresRepo(db)
	catalogRepo := catalog.NewPostgresRepo(db)
	catalogSvc := catalog.NewService(catalogRepo)
	solRepo := solicitud.NewPostgresRepo(db)
	solSvc := solicitud.NewService(solRepo, catalogRepo, userRepo, mailer)
	polSvc := poliza.NewService(poliza.NewPostgresRepo(db), solRepo, userRepo, mailer)
	authSvc := auth.NewService(authManager, userRepo, mailer, auth.NewRedisResetStore(rdb))

	h := httpapi.Handlers{
		Auth:        authSvc,
		Users:       userRepo,
		Catalog:     catalogSvc,
		Solicitudes: solSvc,
		Polizas:     polSvc,
		Cookie: httpapi.CookieConfig{
			Domain: cfg.Auth.CookieDomain,
			Secure: cfg.Auth.CookieSecure,
			MaxAge: cfg.Auth.RefreshTTL,
		},
		DefaultOrigin: cfg.App.FrontendOrigin,
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.RequireAccessToken(authManager), db)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
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
}
