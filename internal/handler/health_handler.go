package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/cmsdash/internal/db"
	"github.com/gin-gonic/gin"
)

// Health reports whether the database answers a ping.
func (a *API) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, a.db); err != nil {
		c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
