package api

import (
	"net/http"
	"time"

	"github.com/arencloud/pagevault/internal/config"
	"github.com/arencloud/pagevault/internal/media"
	"github.com/arencloud/pagevault/internal/middleware"
	"github.com/arencloud/pagevault/internal/version"

	"github.com/gin-contrib/requestid"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func Router(cfg *config.Config, logger *zap.Logger, svc *media.Service) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(requestid.New())
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/api/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"name": "pagevault", "version": version.Version})
	})

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Identity())
	registerPages(v1, svc)
	registerAccounts(v1)
	return r
}
