package middleware

import "net/http"

// SecurityHeaders sets the response headers appropriate for a JSON API
// that is never rendered as a document. The CSP forbids everything; a
// browser should only ever see these responses through fetch calls from
// the admin dashboard.
func SecurityHeaders(env string) func(http.Handler) http.Handler {
	production := env == "production"

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Cache-Control", "no-store")

			if production && r.Header.Get("X-Forwarded-Proto") == "https" {
				h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
