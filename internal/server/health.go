package server

import (
	"context"
	"net/http"
	"time"

	"github.com/abduss/flickpick/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const readinessTimeout = 5 * time.Second

func registerHealthRoutes(router *gin.Engine, deps Dependencies) {
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readinessTimeout)
		defer cancel()

		if deps.Store != nil {
			if err := deps.Store.Ping(ctx); err != nil {
				degraded(c, deps.Config.Store.Driver, err)
				return
			}
		}

		if err := checkMinIO(ctx, deps); err != nil {
			degraded(c, "minio", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func degraded(c *gin.Context, component string, err error) {
	logger.FromContext(c).Warn("readiness check failed", zap.String("component", component), zap.Error(err))
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "component": component})
}

func checkMinIO(ctx context.Context, deps Dependencies) error {
	if deps.ObjectStore == nil {
		return nil
	}
	_, err := deps.ObjectStore.BucketExists(ctx, deps.Config.MinIO.Bucket)
	return err
}
