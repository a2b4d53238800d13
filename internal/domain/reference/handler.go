package reference

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler serves the reference lookups behind the intake form dropdowns.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/api/states", h.States)
	g.GET("/api/states/:id/cities", h.CitiesByState)
	g.GET("/api/nationalities", h.Nationalities)
}

func (h *Handler) States(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.States(c.Request().Context()))
}

func (h *Handler) CitiesByState(c echo.Context) error {
	stateID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid state id")
	}
	return c.JSON(http.StatusOK, h.svc.CitiesByState(c.Request().Context(), stateID))
}

func (h *Handler) Nationalities(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Nationalities(c.Request().Context()))
}
