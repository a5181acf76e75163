package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/estebanSulcaInfante/envaperu-catalog/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// BreakerReporter is satisfied by *infra.Mailer.
type BreakerReporter interface {
	BreakerState() infra.CBState
}

// Health returns a JSON health check response.
// Checks DB and Redis connectivity; never exposes credentials or internals.
// The mail breaker state is informational and does not affect the status.
func Health(db *gorm.DB, rdb *redis.Client, mail BreakerReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb == nil || rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		body := gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": redisStatus,
		}
		if mail != nil {
			body["smtp_breaker"] = mail.BreakerState().String()
		}
		c.JSON(status, body)
	}
}
