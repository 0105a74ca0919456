package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Home answers GET /.
func Home(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "You are on the home page",
	})
}
