package bootstrap

import (
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/pcbuildsite/pcbuild-backend/internal/api/http"
	"github.com/pcbuildsite/pcbuild-backend/internal/api/http/middleware"
	"github.com/pcbuildsite/pcbuild-backend/internal/catalog"
	cataloghttp "github.com/pcbuildsite/pcbuild-backend/internal/catalog/http"
	drafthttp "github.com/pcbuildsite/pcbuild-backend/internal/drafts/http"
	"github.com/pcbuildsite/pcbuild-backend/internal/drafts/service"
)

type RouterDeps struct {
	ServiceName    string
	Version        string
	Logger         *zap.Logger
	Catalog        *catalog.Catalog
	Drafts         *service.DraftService
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
	StaticDir      string
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	if dep.Logger == nil {
		dep.Logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinZapLogger(dep.Logger))
	r.Use(cors.New(corsConfig(dep.CORSOrigins)))

	// A nil *DraftService must not reach the Pinger interface as a typed nil.
	var store httpapi.Pinger
	if dep.Drafts != nil {
		store = dep.Drafts
	}
	var components httpapi.ComponentCounter
	if dep.Catalog != nil {
		components = func() int { return len(dep.Catalog.List()) }
	}

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, store, components)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	if dep.Catalog != nil {
		cataloghttp.New(dep.Catalog).Register(api.Group("/components"))
	}
	if dep.Drafts != nil {
		drafthttp.New(dep.Drafts).Register(
			api.Group("/drafts"),
			middleware.RateLimit(dep.RateLimitRPS, dep.RateLimitBurst),
		)
	}

	if dep.StaticDir != "" {
		r.Static("/static", dep.StaticDir)
		index := filepath.Join(dep.StaticDir, "index.html")
		r.GET("/", func(c *gin.Context) {
			c.File(index)
		})
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = append(cfg.AllowHeaders, middleware.RequestIDHeader)
	cfg.ExposeHeaders = []string{middleware.RequestIDHeader}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
