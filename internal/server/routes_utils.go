package server

import (
	pp "net/http/pprof"
	"strings"

	"github.com/gin-gonic/gin"
)

func setNoCacheHeaders(c *gin.Context) {
	h := c.Writer.Header()
	h.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	h.Set("Pragma", "no-cache")
	h.Set("Expires", "0")
}

// pprofProfiles are served through pprof.Handler under /debug/pprof/<name>.
var pprofProfiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// registerPprof mounts the runtime profiler; only called in debug mode.
func registerPprof(r *gin.Engine) {
	g := r.Group("/debug/pprof")
	g.GET("/", gin.WrapF(pp.Index))
	g.GET("/cmdline", gin.WrapF(pp.Cmdline))
	g.GET("/profile", gin.WrapF(pp.Profile))
	g.GET("/symbol", gin.WrapF(pp.Symbol))
	g.GET("/trace", gin.WrapF(pp.Trace))
	for _, name := range pprofProfiles {
		g.GET("/"+name, gin.WrapH(pp.Handler(name)))
	}
}

// joinBasePath prefixes suffix with basePath, inserting one slash between them.
func joinBasePath(basePath, suffix string) string {
	switch {
	case basePath == "", suffix == "":
		return basePath + suffix
	case strings.HasPrefix(suffix, "/"):
		return basePath + suffix
	default:
		return basePath + "/" + suffix
	}
}
