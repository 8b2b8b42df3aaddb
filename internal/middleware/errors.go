package middleware

import (
	apperrors "tonetranslate-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// abortEnvelope writes the shared {success:false,error} body for middleware rejections.
func abortEnvelope(c *gin.Context, status int, code, errType, message string) {
	err := apperrors.New(status, code, errType, message)
	payload, marshalErr := err.ToJSON()
	if marshalErr != nil {
		c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
		return
	}
	c.Data(status, "application/json; charset=utf-8", payload)
	c.Abort()
}
