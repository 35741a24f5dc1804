package handler

import (
	"context"
	"net/http"
	"time"

	"fieldsync/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Health returns a JSON health check response.
// Checks the local store and remote reachability; never exposes credentials.
func Health(db *gorm.DB, sync service.SyncService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		remoteStatus := "online"
		if !sync.Online(ctx) {
			remoteStatus = "offline"
		}

		// The daemon is healthy offline; only a broken local store degrades it.
		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":     status == http.StatusOK,
			"db":     dbStatus,
			"remote": remoteStatus,
		})
	}
}
