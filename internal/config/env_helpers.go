package config

import (
	"os"
	"path"
	"strconv"
	"strings"
)

// getenv returns the variable, or def when it is unset or empty.
func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// setIntFromEnv calls setter only for a well-formed integer.
func setIntFromEnv(key string, setter func(int)) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	if n, err := strconv.Atoi(raw); err == nil {
		setter(n)
	}
}

var toggles = map[string]bool{
	"1": true, "true": true, "yes": true, "on": true,
	"0": false, "false": false, "no": false, "off": false,
}

// setToggleFromEnv ignores values it does not recognize.
func setToggleFromEnv(key string, setter func(bool)) {
	if v, ok := toggles[strings.ToLower(strings.TrimSpace(os.Getenv(key)))]; ok {
		setter(v)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeBasePath yields "" or "/a/b": one leading slash, no trailing or
// repeated slashes.
func normalizeBasePath(raw string) string {
	p := strings.TrimSpace(raw)
	if p == "" {
		return ""
	}
	p = path.Clean("/" + p)
	if p == "/" {
		return ""
	}
	return p
}
