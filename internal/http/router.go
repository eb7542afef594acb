package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/geocoder89/parkinghub/internal/cache"
	"github.com/geocoder89/parkinghub/internal/http/handlers"
	"github.com/geocoder89/parkinghub/internal/http/middlewares"
	"github.com/geocoder89/parkinghub/internal/observability"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20

type Deps struct {
	Env         string
	ServiceName string

	Accounts   handlers.AccountService
	TokenTTL   time.Duration
	Parking    handlers.ParkingStore
	Cache      cache.Cache
	DBTimeout  time.Duration
	Readiness  map[string]handlers.PingFunc
	CORSOrigin []string

	Prom     *observability.Prom
	Gatherer prometheus.Gatherer
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if deps.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(deps.ServiceName))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.CORSOrigin))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	// health
	checks := make(map[string]handlers.PingFunc, len(deps.Readiness))
	for name, ping := range deps.Readiness {
		checks[name] = withTimeout(ping, time.Second)
	}

	h := handlers.NewHealthHandler(checks)
	r.GET("/", h.Root)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// accounts
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.TokenTTL, deps.Env == "prod")

	jsonOnly := middlewares.RequireJSON()

	r.POST("/roles", jsonOnly, authHandler.CreateRole)
	r.POST("/signup", jsonOnly, authHandler.SignUp)
	r.POST("/login", jsonOnly, authHandler.Login)
	r.GET("/user", authHandler.CurrentUser)
	r.GET("/users", authHandler.ListUsers)

	// parking reference data
	if deps.Parking != nil {
		listingCache := deps.Cache
		if listingCache == nil {
			listingCache = cache.NewMemory(cache.DefaultTTL)
		}

		parkingHandler := handlers.NewParkingHandler(deps.Parking, listingCache, deps.Prom.ObserveCache, deps.DBTimeout)

		r.GET("/dzongkhags", parkingHandler.Dzongkhags)
		r.GET("/parking_areas", parkingHandler.Areas)
		r.GET("/parking_details", parkingHandler.Details)
		r.GET("/parking_slots", parkingHandler.Slots)
		r.POST("/add_data", jsonOnly, parkingHandler.AddData)
	}

	return r
}

func withTimeout(ping handlers.PingFunc, d time.Duration) handlers.PingFunc {
	if ping == nil {
		return nil
	}

	return func(ctx context.Context) error {
		cctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()

		return ping(cctx)
	}
}
