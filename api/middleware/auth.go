package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/sijangmap/marketmap-backend/api/responses"
	pkgauth "github.com/sijangmap/marketmap-backend/pkg/auth"
	"github.com/sijangmap/marketmap-backend/pkg/config"
	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
	"github.com/sijangmap/marketmap-backend/pkg/logger"
)

// SessionChecker verifies that an access session is still live.
type SessionChecker interface {
	HasSession(ctx context.Context, adminID int64, accessID string) (bool, error)
}

// AdminAuth validates a bearer token and seeds the request context with
// the admin identity. When a checker is supplied the session must also
// still exist in the session store, so revoked tokens die immediately.
func AdminAuth(cfg config.JWTConfig, checker SessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgauth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			if checker != nil {
				ok, err := checker.HasSession(r.Context(), claims.AdminID, claims.AccessID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
					return
				}
				if !ok {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
			}

			ctx := WithAdminSession(r.Context(), claims.AdminID, claims.Username, claims.AccessID)
			if logg != nil {
				ctx = logg.WithAdminID(ctx, claims.AdminID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the credential from the Authorization header. A bare
// token without the Bearer prefix is accepted too.
func BearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(raw), "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
