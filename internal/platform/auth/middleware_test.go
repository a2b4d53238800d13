package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/platform/backend"
)

func doAuthed(t *testing.T, mw echo.MiddlewareFunc, token string, handler echo.HandlerFunc) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/appointments", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, mw(handler)(c)
}

func TestMiddleware_ValidToken(t *testing.T) {
	store, sess := newTestSession(t, "employee")
	raw, _ := IssueToken(testSecret, sess, time.Hour)

	_, err := doAuthed(t, Middleware(testSecret, store), raw, func(c echo.Context) error {
		if got := SessionFromContext(c); got == nil || got.ID() != sess.ID() {
			t.Error("expected session in echo context")
		}
		if RoleFromContext(c.Request().Context()) != "employee" {
			t.Error("expected role in request context")
		}
		if backend.CredentialsFromContext(c.Request().Context()) == nil {
			t.Error("expected session attached as credential source")
		}
		return c.NoContent(http.StatusOK)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMiddleware_MissingToken(t *testing.T) {
	store, _ := newTestSession(t, "employee")
	_, err := doAuthed(t, Middleware(testSecret, store), "", nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %v", err)
	}
}

func TestMiddleware_RevokedSession(t *testing.T) {
	store, sess := newTestSession(t, "admin")
	raw, _ := IssueToken(testSecret, sess, time.Hour)
	store.Delete(sess.ID())

	_, err := doAuthed(t, Middleware(testSecret, store), raw, nil)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked session, got %v", err)
	}
}

func TestRequireRole(t *testing.T) {
	store, sess := newTestSession(t, "employee")
	raw, _ := IssueToken(testSecret, sess, time.Hour)

	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	chain := func(inner echo.MiddlewareFunc) echo.HandlerFunc {
		return Middleware(testSecret, store)(func(c echo.Context) error {
			return inner(ok)(c)
		})
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)

	// Employee may enter employee routes.
	c := e.NewContext(req, httptest.NewRecorder())
	if err := chain(RequireRole("employee"))(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	// Employee is kept out of admin routes.
	c = e.NewContext(req, httptest.NewRecorder())
	err := chain(RequireRole("admin"))(c)
	he, ok2 := err.(*echo.HTTPError)
	if !ok2 || he.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %v", err)
	}
}

func TestSessionReaper_DropsSessionOnUpstream401(t *testing.T) {
	store, sess := newTestSession(t, "employee")
	raw, _ := IssueToken(testSecret, sess, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	h := Middleware(testSecret, store)(SessionReaper(store)(func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}))
	if err := h(c); err == nil {
		t.Fatal("expected 401 passed through")
	}
	if _, ok := store.Get(sess.ID()); ok {
		t.Error("expected session torn down after upstream 401")
	}
}

func TestSessionReaper_KeepsSessionOnSuccess(t *testing.T) {
	store, sess := newTestSession(t, "employee")
	raw, _ := IssueToken(testSecret, sess, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	h := Middleware(testSecret, store)(SessionReaper(store)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}))
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store.Get(sess.ID()); !ok {
		t.Error("expected session kept on success")
	}
}

func TestRequireRole_AdminBypass(t *testing.T) {
	store, sess := newTestSession(t, "admin")
	raw, _ := IssueToken(testSecret, sess, time.Hour)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	c := e.NewContext(req, httptest.NewRecorder())

	h := Middleware(testSecret, store)(func(c echo.Context) error {
		return RequireRole("employee")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})(c)
	})
	if err := h(c); err != nil {
		t.Errorf("expected admin to pass employee check, got %v", err)
	}
}
