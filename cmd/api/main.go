package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/widiatmoko/jurnalku/internal/auth"
	"github.com/widiatmoko/jurnalku/internal/config"
	"github.com/widiatmoko/jurnalku/internal/db"
	httpx "github.com/widiatmoko/jurnalku/internal/http"
	"github.com/widiatmoko/jurnalku/internal/http/middlewares"
	"github.com/widiatmoko/jurnalku/internal/observability"
	"github.com/widiatmoko/jurnalku/internal/repo/memory"
	"github.com/widiatmoko/jurnalku/internal/repo/postgres"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)

	// tracing is optional; without an endpoint spans go nowhere
	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(context.Background(), "jurnalku-api", cfg.OTLPEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}
	}

	deps := httpx.Deps{
		JWT:  auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		Prom: observability.NewProm(prometheus.DefaultRegisterer),
		CORS: cfg.CORSOrigins,
	}

	if cfg.DBURL != "" {
		if err := db.Migrate(cfg.DBURL); err != nil {
			log.Error("migrations failed", "err", err)
			os.Exit(1)
		}

		pool, err := db.NewPool(cfg.DBURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		deps.Users = postgres.NewUsersRepo(pool, deps.Prom)
		deps.Journals = postgres.NewJournalsRepo(pool, deps.Prom)
		deps.Ping = func() error {
			ctx, cancel := config.WithTimeout(time.Second)
			defer cancel()
			return pool.Ping(ctx)
		}
	} else {
		log.Warn("DATABASE_URL not set, using in-memory store")
		deps.Users = memory.NewUsersRepo()
		deps.Journals = memory.NewJournalsRepo()
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		defer rdb.Close()
		deps.Limiter = middlewares.NewRedisLimiter(rdb, cfg.LoginRateLimit, cfg.LoginRateWindow)
	} else {
		deps.Limiter = middlewares.NewMemoryLimiter(cfg.LoginRateLimit, cfg.LoginRateWindow)
	}

	router := httpx.NewRouter(log, deps)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	ctx, cancel := config.WithTimeout(10 * time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return
	}
	log.Info("shutdown complete")
}
