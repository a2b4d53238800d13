package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/internal/platform/session"
)

type contextKey string

const (
	sessionContextKey = "auth_session"
	roleKey           contextKey = "role"
)

// Middleware authenticates requests with a gateway bearer token, resolves
// the live session and attaches it as the backend credential source. A token
// whose session was torn down (logout, expiry) is rejected even if the JWT
// itself is still valid.
func Middleware(secret []byte, store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			claims, err := ParseToken(secret, raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			sess, ok := store.Get(claims.SessionID)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
			}

			SetSession(c, sess)
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// SessionReaper tears the gateway session down when a request ends in 401,
// so a revoked upstream token forces a clean re-login instead of a session
// that fails every call.
func SessionReaper(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if he, ok := err.(*echo.HTTPError); ok && he.Code == http.StatusUnauthorized {
				if sess := SessionFromContext(c); sess != nil {
					store.Delete(sess.ID())
				}
			}
			return err
		}
	}
}

// SetSession binds a session to the request: echo context for handlers,
// request context for repositories (credentials and role).
func SetSession(c echo.Context, sess *session.Session) {
	c.Set(sessionContextKey, sess)
	ctx := backend.WithCredentials(c.Request().Context(), sess)
	ctx = context.WithValue(ctx, roleKey, sess.Role())
	c.SetRequest(c.Request().WithContext(ctx))
}

// SessionFromContext returns the session placed by Middleware, or nil on
// unauthenticated routes.
func SessionFromContext(c echo.Context) *session.Session {
	s, _ := c.Get(sessionContextKey).(*session.Session)
	return s
}

// RoleFromContext returns the authenticated role, or "" when absent.
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey).(string)
	return role
}
