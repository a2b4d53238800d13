package appointment

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/domain/housing"
	"github.com/abrigo/intake/internal/domain/reference"
	"github.com/abrigo/intake/internal/platform/backend"
	"github.com/abrigo/intake/pkg/pagination"
)

// HousingView is the slice of the housing service the editor needs.
type HousingView interface {
	Rooms(ctx context.Context) []*housing.Room
	AvailableBeds(ctx context.Context) int
}

// ReferenceView is the slice of the reference service the editor needs.
type ReferenceView interface {
	States(ctx context.Context) []*reference.State
	Nationalities(ctx context.Context) []string
}

// Handler serves the appointment directory, the intake form and the editor.
type Handler struct {
	svc     *Service
	housing HousingView
	refs    ReferenceView
}

func NewHandler(svc *Service, housing HousingView, refs ReferenceView) *Handler {
	return &Handler{svc: svc, housing: housing, refs: refs}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/api/appointments", h.List)
	g.POST("/api/appointments", h.Create)
	g.GET("/api/appointments/:id", h.Get)
	g.PUT("/api/appointments/:id", h.Update)
	g.GET("/api/appointments/:id/editor", h.Editor)
	g.PATCH("/api/appointments/:id/hide", h.SetHidden)
	g.PUT("/api/appointments/:id/hide", h.SetHidden)
	g.POST("/api/appointments/:id/upload-photo", h.UploadPhoto)
	g.GET("/api/available-beds", h.AvailableBeds)
}

// List serves the directory: search, sort, paginate.
func (h *Handler) List(c echo.Context) error {
	term := c.QueryParam("search")
	sortBy := c.QueryParam("sort")

	list, err := h.svc.Directory(c.Request().Context(), term, sortBy)
	if err != nil {
		return backend.HTTPError(err)
	}

	pg := pagination.FromContext(c)
	lo, hi := pg.Slice(len(list))
	return c.JSON(http.StatusOK, pagination.NewResponse(list[lo:hi], len(list), pg.Limit, pg.Offset))
}

func (h *Handler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, a)
}

// Create registers a new intake. A duplicate CPF comes back as 409; the
// form resubmits with replace=true after the operator confirms the
// overwrite.
func (h *Handler) Create(c echo.Context) error {
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	replace := a.Replace || c.QueryParam("replace") == "true"

	created, err := h.svc.Create(c.Request().Context(), &a, replace)
	if err != nil {
		if backend.IsConflict(err) {
			return echo.NewHTTPError(http.StatusConflict,
				"a record with this CPF already exists; resubmit with replace=true to overwrite it")
		}
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) Update(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var a Appointment
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.svc.Save(c.Request().Context(), id, &a)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

type visibilityRequest struct {
	IsHidden bool `json:"isHidden"`
}

func (h *Handler) SetHidden(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	var req visibilityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.svc.SetHidden(c.Request().Context(), id, req.IsHidden); err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "isHidden": req.IsHidden})
}

// maxPhotoBytes caps uploaded intake photos at 5 MB.
const maxPhotoBytes = 5 << 20

// UploadPhoto forwards the intake photo upstream as multipart form data.
func (h *Handler) UploadPhoto(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
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

	updated, err := h.svc.UploadPhoto(c.Request().Context(), id, fh.Filename, content)
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// editorContext bundles everything the edit screen needs in one payload.
type editorContext struct {
	Appointment   *Appointment       `json:"appointment"`
	States        []*reference.State `json:"states"`
	Nationalities []string           `json:"nationalities"`
	Rooms         []*housing.Room    `json:"rooms"`
}

// Editor loads the record and its reference data concurrently. Reference
// lookups degrade to fallbacks inside their services; only a missing
// appointment fails the whole load.
func (h *Handler) Editor(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid appointment id")
	}
	ctx := c.Request().Context()

	var (
		wg     sync.WaitGroup
		out    editorContext
		getErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		out.Appointment, getErr = h.svc.Get(ctx, id)
	}()
	go func() {
		defer wg.Done()
		out.States = h.refs.States(ctx)
	}()
	go func() {
		defer wg.Done()
		out.Nationalities = h.refs.Nationalities(ctx)
	}()
	go func() {
		defer wg.Done()
		out.Rooms = h.housing.Rooms(ctx)
	}()
	wg.Wait()

	if getErr != nil {
		return backend.HTTPError(getErr)
	}
	return c.JSON(http.StatusOK, out)
}

// AvailableBeds serves the free-bed counter on the intake form. The backend
// figure wins; when it cannot answer, the reconciler's derived count is
// served instead.
func (h *Handler) AvailableBeds(c echo.Context) error {
	ctx := c.Request().Context()
	count, err := h.svc.AvailableBeds(ctx)
	if err != nil {
		count = h.housing.AvailableBeds(ctx)
	}
	return c.JSON(http.StatusOK, map[string]int{"availableBeds": count})
}
