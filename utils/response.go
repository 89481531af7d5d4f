package utils

import (
	"github.com/gin-gonic/gin"
)

// JSONResponse sends a structured JSON response
func JSONResponse(c *gin.Context, status int, data any, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// JSONError sends a structured error response. code is a stable machine-readable
// reason such as "bid_too_low"; the message and error text are for humans.
func JSONError(c *gin.Context, status int, code string, err error, message string) {
	c.JSON(status, gin.H{
		"status":  status,
		"code":    code,
		"message": message,
		"error":   err.Error(),
	})
}
