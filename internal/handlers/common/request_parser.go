package common

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	apperrors "tonetranslate-go/internal/errors"

	"github.com/gin-gonic/gin"
)

// MaxBodyBytes caps request bodies read by ReadJSONObject.
const MaxBodyBytes = 1 << 20

// ValidationError is a client mistake that maps to a 4xx envelope.
type ValidationError struct {
	Status  int
	Message string
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "validation error"
	}
	return e.Message
}

// APIError converts the validation failure for AbortWithAPIError.
func (e *ValidationError) APIError() *apperrors.APIError {
	status := e.Status
	if status == 0 {
		status = http.StatusBadRequest
	}
	msg := e.Message
	if msg == "" {
		msg = "invalid request"
	}
	return apperrors.New(status, "invalid_request_error", "invalid_request_error", msg)
}

// ReadJSONObject decodes the body as a single JSON object, keeping values raw so
// callers can check their JSON types. Anything else (arrays, scalars, null,
// malformed or trailing data) is reported with invalidMsg.
func ReadJSONObject(c *gin.Context, invalidMsg string) (map[string]json.RawMessage, *ValidationError) {
	if c.Request == nil || c.Request.Body == nil {
		return nil, &ValidationError{Message: invalidMsg}
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, &ValidationError{Message: invalidMsg}
	}
	if len(raw) > MaxBodyBytes {
		return nil, &ValidationError{Status: http.StatusRequestEntityTooLarge, Message: "Request body too large"}
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, &ValidationError{Message: invalidMsg}
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, &ValidationError{Message: invalidMsg}
	}
	// 对象之后只允许 EOF
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ValidationError{Message: invalidMsg}
	}
	return obj, nil
}
