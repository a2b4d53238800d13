package housing

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handler serves the availability dashboard and the bed picker.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/api/availability", h.Availability)
	g.GET("/api/rooms", h.Rooms)
	g.GET("/api/rooms/:id/beds", h.BedsByRoom)
}

func (h *Handler) Availability(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Availability(c.Request().Context()))
}

func (h *Handler) Rooms(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Rooms(c.Request().Context()))
}

func (h *Handler) BedsByRoom(c echo.Context) error {
	roomID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid room id")
	}
	beds, err := h.svc.BedsByRoom(c.Request().Context(), roomID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "failed to load beds")
	}
	return c.JSON(http.StatusOK, beds)
}
