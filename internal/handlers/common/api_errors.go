package common

import (
	"net/http"
	"strings"

	apperrors "tonetranslate-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// AbortWithAPIError writes the {success:false,error,details} envelope and aborts.
func AbortWithAPIError(c *gin.Context, err *apperrors.APIError) {
	if err == nil {
		err = apperrors.New(http.StatusInternalServerError, "server_error", "server_error", "unknown error")
	}
	payload, marshalErr := err.ToJSON()
	if marshalErr != nil {
		c.AbortWithStatusJSON(safeStatus(err.HTTPStatus), gin.H{"success": false, "error": err.Message})
		return
	}
	c.Data(safeStatus(err.HTTPStatus), "application/json; charset=utf-8", payload)
	c.Abort()
}

// AbortWithError constructs an APIError from the provided fields and aborts the request.
func AbortWithError(c *gin.Context, status int, typ, message string) {
	typ = normalizeType(typ)
	AbortWithAPIError(c, apperrors.New(safeStatus(status), typ, typ, firstNonEmpty(message, "internal error")))
}

// BadRequest aborts with a 400 and message as the error field.
func BadRequest(c *gin.Context, message string) {
	AbortWithAPIError(c, apperrors.New(http.StatusBadRequest, "invalid_request_error", "invalid_request_error", message))
}

func normalizeType(typ string) string {
	if strings.TrimSpace(typ) == "" {
		return "server_error"
	}
	return typ
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func safeStatus(status int) int {
	if status >= 400 && status <= 599 {
		return status
	}
	return http.StatusInternalServerError
}
