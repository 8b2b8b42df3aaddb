package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// PanicError is returned by SafeCallWithValue when fn panics.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Recovery 捕获 handler panic，返回统一的 {success:false} 信封
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.WithFields(log.Fields{
				"error":      r,
				"stack":      string(debug.Stack()),
				"request_id": GetRequestID(c),
				"path":       c.Request.URL.Path,
				"method":     c.Request.Method,
				"client_ip":  c.ClientIP(),
			}).Error("panic recovered")
			if c.Writer.Written() {
				c.Abort()
				return
			}
			abortEnvelope(c, http.StatusInternalServerError, "internal_error", "server_error", "Internal server error")
		}()
		c.Next()
	}
}

// SafeCallWithValue runs fn and turns a panic into a *PanicError.
func SafeCallWithValue[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := &PanicError{Value: r, Stack: debug.Stack()}
			log.WithFields(log.Fields{"error": r, "stack": string(pe.Stack)}).Error("panic in call")
			var zero T
			result, err = zero, pe
		}
	}()
	return fn()
}
