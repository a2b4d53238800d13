package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/internal/platform/session"
)

// LoginResult is what the upstream API hands back on a successful sign-in.
type LoginResult struct {
	Token    string
	Identity session.Identity
}

// Authenticator signs staff in and out against the upstream API.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context) error
}

// Handler serves the gateway auth surface: login, logout and the current
// session used by the navigation bar.
type Handler struct {
	store  *session.Store
	users  Authenticator
	client *backend.Client
	secret []byte
	ttl    time.Duration
	logger zerolog.Logger
}

func NewHandler(store *session.Store, users Authenticator, client *backend.Client, secret []byte, ttl time.Duration, logger zerolog.Logger) *Handler {
	return &Handler{
		store:  store,
		users:  users,
		client: client,
		secret: secret,
		ttl:    ttl,
		logger: logger.With().Str("component", "auth").Logger(),
	}
}

// RegisterRoutes mounts the public login route on e and the session routes
// on the authenticated group.
func (h *Handler) RegisterRoutes(e *echo.Echo, authed *echo.Group) {
	e.POST("/api/login", h.Login)
	authed.POST("/api/logout", h.Logout)
	authed.GET("/api/session", h.Session)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	Role  string           `json:"role"`
	User  session.Identity `json:"user"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Username == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	result, err := h.users.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		switch backend.KindOf(err) {
		case backend.KindConnectivity:
			return echo.NewHTTPError(http.StatusServiceUnavailable, "backend unreachable, check your connection")
		case backend.KindUnauthorized, backend.KindValidation, backend.KindNotFound:
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		default:
			h.logger.Error().Err(err).Str("username", req.Username).Msg("login failed")
			return echo.NewHTTPError(http.StatusBadGateway, "login failed")
		}
	}

	sess := h.store.Create(result.Identity, result.Token)

	// Prime the CSRF token now so the first mutating call does not need a
	// refresh round-trip. Failure is non-fatal: the client refreshes on 419.
	ctx := backend.WithCredentials(c.Request().Context(), sess)
	if err := h.client.RefreshCSRF(ctx); err != nil {
		h.logger.Warn().Err(err).Msg("csrf priming failed")
	}

	token, err := IssueToken(h.secret, sess, h.ttl)
	if err != nil {
		h.store.Delete(sess.ID())
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to issue session token")
	}

	h.logger.Info().Str("username", req.Username).Str("role", sess.Role()).Msg("login")
	return c.JSON(http.StatusOK, loginResponse{
		Token: token,
		Role:  sess.Role(),
		User:  sess.Identity(),
	})
}

// Logout revokes the upstream token best-effort and always tears the
// gateway session down, so a dead backend cannot keep a session alive.
func (h *Handler) Logout(c echo.Context) error {
	sess := SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}

	if err := h.users.Logout(c.Request().Context()); err != nil {
		h.logger.Warn().Err(err).Msg("upstream logout failed")
	}
	h.store.Delete(sess.ID())
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Session(c echo.Context) error {
	sess := SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"role": sess.Role(),
		"user": sess.Identity(),
	})
}
