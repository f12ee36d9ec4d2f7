package middleware

import (
	"log/slog"
	"net/http"

	"planetinfo-server/internal/auth"
	"planetinfo-server/internal/shared/errors"
	"planetinfo-server/internal/shared/response"
)

func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := slog.With(
			"middleware", "admin",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
		)
		logger.Debug("Processing admin authorization")

		claims := GetUserFromContext(r)
		if claims == nil {
			response.Error(w, r, logger, errors.Unauthorized("authentication required"))
			return
		}

		if claims.Role != auth.RoleAdmin {
			logger.Warn("Non-admin token used on admin endpoint",
				"subject", claims.Subject,
				"role", claims.Role)
			response.Error(w, r, logger, errors.Forbidden("admin access required"))
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireAdmin guards next with token validation and the admin role check.
// A nil signer means admin access is not configured and every request is
// refused.
func RequireAdmin(signer *auth.Signer, next http.Handler) http.Handler {
	if signer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := slog.With("middleware", "admin", "path", r.URL.Path)
			response.Error(w, r, logger, errors.Forbidden("admin access is not configured"))
		})
	}
	return JWTMiddleware(signer, AdminMiddleware(next))
}
