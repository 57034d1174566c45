package core

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"econsim/internal/types"
)

// RequireAuth wraps handlers requiring a verified caller identity.
//
//  1. Extracts the Bearer token from the Authorization header.
//  2. Verifies it against the configured signing key.
//  3. Injects the resulting Identity into the request context.
//
// Failure outcomes are distinct:
//   - 503 auth_not_configured when no verifier key is configured
//   - 401 auth_token_missing when the header is absent
//   - 401 auth_token_invalid for a malformed scheme or bad signature
//   - 401 auth_token_expired for stale tokens
//
// The core pipeline itself stays free of identity concerns; handlers that
// want the caller read it from context.
func (s *Server) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Verifier == nil || !s.Verifier.Configured() {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthNotConfigured,
				"authentication service is not configured",
				nil,
			))
			return
		}

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenMissing,
				"Authorization header missing",
				nil,
			))
			return
		}

		token := extractBearerToken(authHeader)
		if token == "" {
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenInvalid,
				"invalid authorization scheme, use Bearer token",
				nil,
			))
			return
		}

		identity, err := s.Verifier.Verify(token)
		if err != nil {
			var appErr *types.AppError
			if errors.As(err, &appErr) {
				s.Logger.Warn("authentication failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("error_code", string(appErr.Code)),
				)
				Error(w, r, appErr)
				return
			}
			s.Logger.Error("authentication failed: unexpected error",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("error", err.Error()),
			)
			Error(w, r, types.NewAppError(
				types.ErrCodeAuthTokenInvalid,
				"authentication failed",
				err,
			))
			return
		}

		next.ServeHTTP(w, r.WithContext(types.WithIdentity(r.Context(), identity)))
	})
}

// extractBearerToken parses the Authorization header value and returns the
// token string. It expects "Bearer <token>" (case-insensitive scheme per
// RFC 7235). Returns empty string if the format is invalid.
func extractBearerToken(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) < len(prefix) {
		return ""
	}
	if !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(prefix):])
}
