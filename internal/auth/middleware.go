package auth

import (
	"log/slog"
	"net/http"

	"github.com/steffise60/Suivi-de-chantier/internal/httputil"
)

// HeaderName is the request header carrying the API key.
const HeaderName = "X-API-Key"

// RequireKey gates a route group behind the given Policy.
func RequireKey(policy Policy, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(HeaderName)
			if !policy.Authorize(key) {
				logger.Warn("rejected request with invalid or missing API key", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing API key.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
