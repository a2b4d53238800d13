package user

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/platform/auth"
	"github.com/abrigo/intake/internal/platform/session"
)

func contextWithSession(t *testing.T, method, target string, identity session.Identity) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	store := session.NewStore(time.Hour)
	auth.SetSession(c, store.Create(identity, "upstream-tok"))
	return c, rec
}

func TestGet_EmployeeReadsOwnAccount(t *testing.T) {
	repo := newMockRepo()
	repo.users[5] = &User{ID: 5, Username: "joao", Role: RoleEmployee}
	h := NewHandler(newTestService(repo))

	c, rec := contextWithSession(t, http.MethodGet, "/api/users/5", session.Identity{UserID: 5, Role: RoleEmployee})
	c.SetParamNames("id")
	c.SetParamValues("5")

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestGet_EmployeeBlockedFromOtherAccounts(t *testing.T) {
	repo := newMockRepo()
	repo.users[6] = &User{ID: 6, Username: "ana"}
	h := NewHandler(newTestService(repo))

	c, _ := contextWithSession(t, http.MethodGet, "/api/users/6", session.Identity{UserID: 5, Role: RoleEmployee})
	c.SetParamNames("id")
	c.SetParamValues("6")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestGet_AdminReadsAnyAccount(t *testing.T) {
	repo := newMockRepo()
	repo.users[6] = &User{ID: 6, Username: "ana"}
	h := NewHandler(newTestService(repo))

	c, _ := contextWithSession(t, http.MethodGet, "/api/users/6", session.Identity{UserID: 1, Role: RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("6")

	if err := h.Get(c); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDelete_RejectsSelfDeletion(t *testing.T) {
	h := NewHandler(newTestService(newMockRepo()))

	c, _ := contextWithSession(t, http.MethodDelete, "/api/users/1", session.Identity{UserID: 1, Role: RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("1")

	err := h.Delete(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for self-deletion, got %v", err)
	}
}

func TestDelete_AdminDeletesOther(t *testing.T) {
	repo := newMockRepo()
	h := NewHandler(newTestService(repo))

	c, rec := contextWithSession(t, http.MethodDelete, "/api/users/9", session.Identity{UserID: 1, Role: RoleAdmin})
	c.SetParamNames("id")
	c.SetParamValues("9")

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != 9 {
		t.Errorf("expected delete call for 9, got %v", repo.deleted)
	}
}
