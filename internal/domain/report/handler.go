package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abrigo/intake/internal/platform/backend"
)

// Handler serves the operational report.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/api/reports", h.Summary)
}

func (h *Handler) Summary(c echo.Context) error {
	summary, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return backend.HTTPError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
