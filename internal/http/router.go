package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/platemate/orderhub/internal/auth"
	"github.com/platemate/orderhub/internal/cache"
	"github.com/platemate/orderhub/internal/config"
	"github.com/platemate/orderhub/internal/http/handlers"
	"github.com/platemate/orderhub/internal/http/middlewares"
	"github.com/platemate/orderhub/internal/observability"
	"github.com/platemate/orderhub/internal/repo/postgres"
	"github.com/platemate/orderhub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxBodyBytes = 1 << 20 // 1 MiB

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics registry local to this router
	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(otelgin.Middleware("orderhub"))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	r.GET("/", func(ctx *gin.Context) {
		ctx.String(http.StatusOK, "Food Ordering Backend API is running!")
	})

	// menu list cache: redis when configured, in-process fallback

	var listCache cache.Store

	if cfg.RedisAddr != "" {
		listCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      5 * time.Second,
		})
	} else {
		listCache = cache.NewMemory(5 * time.Second)
	}

	// wire up repositories
	menusRepo := postgres.NewMenusRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool, prom)
	sessions := postgres.NewSessionsRepo(pool)

	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)

	// wire up handlers
	menusHandler := handlers.NewMenusHandler(menusRepo, listCache, prom)
	authHandler := handlers.NewAuthHandler(usersRepo, sessions, hasher, jwtManager, cfg, log)
	usersHandler := handlers.NewUsersHandler(usersRepo)

	authMW := middlewares.NewAuthMiddleware(jwtManager)
	authLimiter := middlewares.NewRateLimiter(cfg.AuthRateLimit, cfg.AuthRateWindow)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	api.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// catalog
	api.GET("/all-menus", menusHandler.ListMenus)
	api.POST("/menus", menusHandler.CreateMenu)
	api.GET("/menus/:id", menusHandler.GetMenu)
	api.PUT("/menus/:id", menusHandler.UpdateMenu)
	api.DELETE("/menus/:id", menusHandler.DeleteMenu)

	// credentials
	api.POST("/register", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
	api.POST("/login", authLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)

	// authenticated
	api.GET("/me", authMW.RequireAuth(), usersHandler.Me)

	admin := api.Group("/admin")
	admin.Use(authMW.RequireAuth(), authMW.RequireRole("admin"))
	admin.GET("/users", usersHandler.ListUsers)

	return r
}
