package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/parkinghub/internal/auth"
	"github.com/geocoder89/parkinghub/internal/cache"
	"github.com/geocoder89/parkinghub/internal/config"
	"github.com/geocoder89/parkinghub/internal/db"
	httpx "github.com/geocoder89/parkinghub/internal/http"
	"github.com/geocoder89/parkinghub/internal/http/handlers"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/geocoder89/parkinghub/internal/redisclient"
	"github.com/geocoder89/parkinghub/internal/repo/memory"
	"github.com/geocoder89/parkinghub/internal/repo/postgres"
	"github.com/geocoder89/parkinghub/internal/service/account"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName: cfg.ServiceName,
		Env:         cfg.Env,
		Endpoint:    cfg.OTLPEndpoint,
	})

	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	deps := httpx.Deps{
		Env:         cfg.Env,
		ServiceName: cfg.ServiceName,
		TokenTTL:    cfg.JWTTTL(),
		DBTimeout:   cfg.DBTimeout,
		CORSOrigin:  cfg.CORSAllowedOrigins,
		Readiness:   map[string]handlers.PingFunc{},
		Prom:        prom,
		Gatherer:    reg,
	}

	var (
		users account.UserStore
		roles account.RoleStore
	)

	switch cfg.Store {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")

		accounts := memory.NewAccountsRepo()
		users, roles = accounts.Users(), accounts.Roles()
		deps.Parking = memory.NewParkingRepo()

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)

		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := db.Migrate(ctx, pool); err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
		}

		if len(cfg.SeedRoles) > 0 {
			n, err := db.EnsureRoles(ctx, pool, cfg.SeedRoles)
			if err != nil {
				log.Error("role seed failed", "err", err)
				os.Exit(1)
			}
			log.Info("roles seeded", "inserted", n)
		}

		users = postgres.NewUsersRepo(pool, prom)
		roles = postgres.NewRolesRepo(pool, prom)
		deps.Parking = postgres.NewParkingRepo(pool, prom)
		deps.Readiness["db"] = pool.Ping
	}

	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rc.Close() }()

		deps.Cache = cache.NewRedis(rc.Raw(), cfg.CacheTTL)
		deps.Readiness["redis"] = rc.Ping
	} else {
		deps.Cache = cache.NewMemory(cfg.CacheTTL)
	}

	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL())

	deps.Accounts = account.NewService(users, roles, tokens, account.Options{
		StoreTimeout: cfg.DBTimeout,
		Logger:       log,
		Prom:         prom,
	})

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
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
