package logging

import (
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// WithReq returns an entry carrying the request's id, method, route, client
// ip and, once chosen, the provider. Extras override those keys.
func WithReq(c *gin.Context, extras log.Fields) *log.Entry {
	if c == nil || c.Request == nil {
		return log.WithFields(extras)
	}
	fields := make(log.Fields, 5+len(extras))
	fields["request_id"] = c.GetString("request_id")
	fields["method"] = c.Request.Method
	fields["ip"] = c.ClientIP()
	if route := c.FullPath(); route != "" {
		fields["path"] = route
	} else if c.Request.URL != nil {
		fields["path"] = c.Request.URL.Path
	}
	if p, ok := c.Get("provider"); ok {
		fields["provider"] = p
	}
	for k, v := range extras {
		fields[k] = v
	}
	return log.WithFields(fields)
}

// WithTone is used by the orchestrator for per-tone entries.
func WithTone(provider, model, tone string) *log.Entry {
	return log.WithFields(log.Fields{"provider": provider, "model": model, "tone": tone})
}

// DurationMS converts a duration to integer milliseconds for logging.
func DurationMS(d time.Duration) int64 { return d.Milliseconds() }
