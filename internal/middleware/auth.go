package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docsgraph/internal/auth"
	"docsgraph/internal/domain/models"
	"docsgraph/internal/httputil"
)

// AuthMiddleware resolves the caller from a Bearer token. A request without a
// token continues anonymously; an invalid token is rejected with 401.
// Without a verifier every request runs as devUser.
func AuthMiddleware(verifier auth.JWTVerifier, devUser *models.User, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				if devUser != nil {
					r = r.WithContext(httputil.WithUser(r.Context(), devUser))
				}
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("request token rejected", "path", r.URL.Path)
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user := models.NewUserFromClaims(claims)
			next.ServeHTTP(w, r.WithContext(httputil.WithUser(r.Context(), user)))
		})
	}
}
