package utils

import "github.com/gin-gonic/gin"

// RespondWithError aborts the request with the standard error body.
func RespondWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
