package server

import (
	"net/http"
	"slices"
)

// SecurityConfig lists the origins allowed to call the API from a browser.
// "*" allows any origin; an empty list turns CORS off.
type SecurityConfig struct {
	AllowedOrigins []string
}

// DefaultSecurityConfig allows every origin.
func DefaultSecurityConfig() SecurityConfig {
	return SecurityConfig{AllowedOrigins: []string{"*"}}
}

// jsonAPIHeaders are set on every response. The API only serves JSON and
// Prometheus text, so nothing may be framed, sniffed or loaded from it.
var jsonAPIHeaders = map[string]string{
	"X-Content-Type-Options":  "nosniff",
	"X-Frame-Options":         "DENY",
	"Referrer-Policy":         "no-referrer",
	"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
}

func (c SecurityConfig) allowOrigin(origin string) string {
	if slices.Contains(c.AllowedOrigins, "*") {
		return "*"
	}
	if origin != "" && slices.Contains(c.AllowedOrigins, origin) {
		return origin
	}
	return ""
}

// SecurityMiddleware sets jsonAPIHeaders and, when CORS is on, answers
// preflight requests with 204. Browsers may read X-Request-ID.
func SecurityMiddleware(config SecurityConfig, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for name, value := range jsonAPIHeaders {
			h.Set(name, value)
		}

		if len(config.AllowedOrigins) == 0 {
			next(w, r)
			return
		}

		if origin := config.allowOrigin(r.Header.Get("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Accept, "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", RequestIDHeader+", Retry-After")
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}
