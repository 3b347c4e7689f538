package handler

import (
	"github.com/gin-gonic/gin"
)

// Health reports liveness only; dependencies are checked at startup
func Health(c *gin.Context) {
	RespondOK(c, gin.H{"status": "ok"})
}
