package http

import (
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/widiatmoko/jurnalku/internal/db"
	"github.com/widiatmoko/jurnalku/internal/http/handlers"
	"github.com/widiatmoko/jurnalku/internal/http/middlewares"
	"github.com/widiatmoko/jurnalku/internal/observability"
)

// Deps carries everything the router wires into handlers. Users/Journals are
// satisfied by either the postgres or the in-memory repositories.
type Deps struct {
	Users    routerUsersStore
	Journals routerJournalsStore
	JWT      tokenManager
	Prom     *observability.Prom
	Limiter  middlewares.Limiter
	Ping     func() error
	CORS     []string
}

type routerUsersStore interface {
	handlers.UsersStore
	handlers.UserReader
}

type routerJournalsStore interface {
	handlers.JournalsStore
	handlers.JournalsWiper
}

type tokenManager interface {
	handlers.TokenIssuer
	middlewares.TokenVerifier
}

func NewRouter(log *slog.Logger, deps Deps) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// The clients rely on a hard 405 for wrong methods on known paths.
	r.HandleMethodNotAllowed = true
	r.NoMethod(handlers.RespondMethodNotAllowed)
	r.NoRoute(func(c *gin.Context) {
		handlers.RespondNotFound(c, "Route not found")
	})

	// middleware
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("jurnalku-api"))
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.SecurityHeaders())
	if len(deps.CORS) > 0 {
		r.Use(middlewares.CORSMiddleware(deps.CORS))
	}
	r.Use(middlewares.NoStore())
	if deps.JWT != nil {
		r.Use(middlewares.Identity(deps.JWT))
	}

	// health + metrics
	h := handlers.NewHealthHandler(deps.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up handlers
	authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT)
	usersHandler := handlers.NewUsersHandler(deps.Users, deps.Journals, db.SeedRoster, log)
	journalsHandler := handlers.NewJournalsHandler(deps.Journals)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	login := []gin.HandlerFunc{authHandler.Login}
	if deps.Limiter != nil {
		login = append([]gin.HandlerFunc{middlewares.RateLimit(deps.Limiter, middlewares.KeyByIP)}, login...)
	}
	api.POST("/login", login...)

	api.GET("/users", usersHandler.List)
	api.POST("/users", usersHandler.Create)
	api.PUT("/users", usersHandler.Update)
	api.DELETE("/users", usersHandler.Delete)

	api.GET("/journals", journalsHandler.List)
	api.POST("/journals", journalsHandler.Create)
	api.PUT("/journals", journalsHandler.Update)
	api.DELETE("/journals", journalsHandler.Delete)

	return r
}
