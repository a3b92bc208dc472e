package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness. It does not touch the store or the broker.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
