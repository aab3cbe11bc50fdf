package utils

import (
	"github.com/gin-gonic/gin"

	"menufic/apperr"
)

// Respond writes the success envelope.
func Respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": message,
		"data":    data,
	})
}

// RespondError maps err to a status code and writes the error envelope.
// Internal causes are never shown to the caller.
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.Status(err), gin.H{
		"success": false,
		"error":   apperr.Message(err),
		"code":    apperr.KindOf(err),
	})
}
