package backend

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// HTTPError maps a classified backend failure onto the status and payload
// the gateway returns to the browser. Handlers funnel every repository
// error through here so the UI sees one consistent taxonomy.
func HTTPError(err error) *echo.HTTPError {
	var be *Error
	if !errors.As(err, &be) {
		return echo.NewHTTPError(http.StatusBadGateway, "backend request failed")
	}

	switch be.Kind {
	case KindConnectivity:
		return echo.NewHTTPError(http.StatusServiceUnavailable, "backend unreachable, check your connection")
	case KindUnauthorized:
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	case KindSessionExpired:
		return echo.NewHTTPError(http.StatusUnauthorized, map[string]string{
			"code":    "session_expired",
			"message": "session expired, sign in again",
		})
	case KindValidation:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, map[string]string{
			"field":   be.Field,
			"message": be.Message,
		})
	case KindConflict:
		return echo.NewHTTPError(http.StatusConflict, be.Message)
	case KindNotFound:
		return echo.NewHTTPError(http.StatusNotFound, be.Message)
	default:
		return echo.NewHTTPError(http.StatusBadGateway, be.Message)
	}
}
