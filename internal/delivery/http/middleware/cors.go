package middleware

import (
	"net/http"
	"strings"
)

const (
	corsMethods     = "GET, POST, PATCH, PUT, DELETE, OPTIONS"
	corsHeaders     = "Authorization, Content-Type, Accept"
	corsMaxAgeSecs  = "86400"
	corsCredentials = "true"
)

// CORS answers preflight requests and stamps allow headers for origins on
// the allowlist. Headers are set before the request is handed on rather
// than through a wrapping ResponseWriter, so handlers downstream keep the
// writer's http.Hijacker and websocket upgrades work cross-origin.
func CORS(allowedOrigins []string, next http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimSuffix(strings.TrimSpace(origin), "/"); origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := w.Header()
		header.Add("Vary", "Origin")

		origin := r.Header.Get("Origin")
		if _, ok := allowed[origin]; ok {
			header.Set("Access-Control-Allow-Origin", origin)
			header.Set("Access-Control-Allow-Credentials", corsCredentials)
			if r.Method == http.MethodOptions {
				header.Set("Access-Control-Allow-Methods", corsMethods)
				header.Set("Access-Control-Allow-Headers", corsHeaders)
				header.Set("Access-Control-Max-Age", corsMaxAgeSecs)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		} else if r.Method == http.MethodOptions {
			// Preflight from an unknown origin gets no allow headers;
			// the browser fails the cross-origin request.
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
