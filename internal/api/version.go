package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is stamped at build time via -ldflags
var Version = "dev"

// SetupVersionRoutes registers the version endpoint under /api
func SetupVersionRoutes(apiGroup *gin.RouterGroup) {
	apiGroup.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": Version})
	})
}
