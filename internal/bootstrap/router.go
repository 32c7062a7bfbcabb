package bootstrap

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	httpapi "github.com/GoSim-25-26J-441/research-doc-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/research-doc-backend/internal/auth"
)

// Registrar mounts a feature's routes on the authenticated group.
type Registrar interface {
	Register(rg *gin.RouterGroup)
}

type RouterDeps struct {
	ServiceName    string
	Version        string
	AllowedOrigins []string
	Logger         *zap.Logger

	DB    *pgxpool.Pool
	Redis *redis.Client

	// Gatherer backs /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// Authenticate sets the firebase uid; Users maps it to a users row.
	Authenticate gin.HandlerFunc
	Users        auth.UserEnsurer

	Features []Registrar
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(dep.Logger))
	r.Use(cors.New(corsConfig(dep.AllowedOrigins)))

	checks := map[string]httpapi.Check{"database": nil, "redis": nil}
	if dep.DB != nil {
		checks["database"] = dep.DB
	}
	if dep.Redis != nil {
		rdb := dep.Redis
		checks["redis"] = httpapi.CheckFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})
	}
	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, checks).RegisterRoutes(r)

	if dep.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(dep.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api/v1")
	if dep.Authenticate != nil {
		api.Use(dep.Authenticate)
	}
	api.Use(auth.WithUser(dep.Users))

	for _, f := range dep.Features {
		f.Register(api)
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-User-Id", "X-User-Email", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Disposition", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
