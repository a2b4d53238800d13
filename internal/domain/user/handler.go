package user

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/platform/auth"
	"github.com/abrigo/intake/internal/platform/backend"
)

// maxPhotoBytes caps uploaded profile photos at 5 MB.
const maxPhotoBytes = 5 << 20

// Handler serves staff account management. Listing, registering and
// deleting are admin-only; reading and photo upload are allowed for the
// account owner too.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	admin := auth.RequireRole(RoleAdmin)
	g.GET("/api/users", h.List, admin)
	g.POST("/api/register", h.Register, admin)
	g.GET("/api/users/:id", h.Get)
	g.PUT("/api/users/:id", h.Update, admin)
	g.DELETE("/api/users/:id", h.Delete, admin)
	g.POST("/api/users/:id/upload-photo", h.UploadPhoto)
}

func (h *Handler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context())
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, users)
}

// Get returns one account. Employees may only read their own.
func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.requireSelfOrAdmin(c, id); err != nil {
		return err
	}
	u, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Register(c echo.Context) error {
	var reg Registration
	if err := c.Bind(&reg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), &reg)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, u)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	var upd Update
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.UpdateUser(c.Request().Context(), id, &upd)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if sess := auth.SessionFromContext(c); sess != nil && sess.Identity().UserID == id {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete your own account")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return backend.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadPhoto forwards a profile photo upstream and refreshes the cached
// photo on the session when the owner uploads their own.
func (h *Handler) UploadPhoto(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	if err := h.requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	fh, err := c.FormFile("photo")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "photo file is required")
	}
	if fh.Size > maxPhotoBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "photo exceeds 5MB")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read photo file")
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read photo file")
	}

	u, err := h.svc.UploadPhoto(c.Request().Context(), id, fh.Filename, content)
	if err != nil {
		return backend.HTTPError(err)
	}

	if sess := auth.SessionFromContext(c); sess != nil && sess.Identity().UserID == id {
		sess.SetPhotoURL(u.PhotoURL)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *Handler) requireSelfOrAdmin(c echo.Context, id int) error {
	sess := auth.SessionFromContext(c)
	if sess == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "no active session")
	}
	if sess.Role() == RoleAdmin || sess.Identity().UserID == id {
		return nil
	}
	return echo.NewHTTPError(http.StatusForbidden, "access restricted to your own account")
}
