package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avassel/stagebook/internal/model"
)

// respondError translates the domain error kinds into HTTP responses.
// Validation and precondition failures carry their message so the
// operator UI can display it; unexpected errors stay opaque.
func respondError(c echo.Context, err error) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation failed", "field": ve.Field, "detail": ve.Error()})
	case errors.Is(err, model.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, model.ErrDuplicateReservation):
		return c.JSON(http.StatusConflict, echo.Map{"error": "customer already booked this session"})
	case errors.Is(err, model.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no remaining seats"})
	case errors.Is(err, model.ErrPrecondition):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, model.ErrGeneration):
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "document generation failed"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
