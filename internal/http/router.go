package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/ondrasimku/info-service-go/internal/config"
	"github.com/ondrasimku/info-service-go/internal/domain"
	"github.com/ondrasimku/info-service-go/internal/http/handler"
	"github.com/ondrasimku/info-service-go/internal/http/middleware"
	"github.com/ondrasimku/info-service-go/internal/storage"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(storage storage.Store, info domain.Info, cfg *config.Config, logger *slog.Logger) (*gin.Engine, error) {
	router := gin.New()
	// Unmatched paths must reach NoRoute as requested, not a redirect.
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(secure.New(secure.Config{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	healthHandler := handler.NewHealthHandler()
	infoHandler := handler.NewInfoHandler(storage, info, cfg.MaxBodyBytes, logger)
	staticHandler, err := handler.NewStaticHandler(cfg.PublicDir, logger)
	if err != nil {
		return nil, err
	}

	api := router.Group("/api")
	{
		api.GET("/info", infoHandler.Get)
		api.PUT("/info", middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst), infoHandler.Update)
	}

	router.GET("/", staticHandler.Index)
	router.GET("/index.html", staticHandler.Index)

	router.GET("/healthz", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			if name := strings.TrimPrefix(c.Request.URL.Path, "/"); name != "" {
				staticHandler.Serve(c, name)
				return
			}
		}
		c.Data(http.StatusNotFound, "text/plain", []byte("Not Found"))
	})

	return router, nil
}
