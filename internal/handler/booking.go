package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service"
)

// BookingHandler exposes the reservation workflow over HTTP: booking,
// the payment-processor callback, cancellation and transfer.  All
// state transitions happen inside the workflow's transactions; the
// handler only parses, delegates and translates errors.
type BookingHandler struct {
	Workflow *service.ReservationWorkflow
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(workflow *service.ReservationWorkflow) *BookingHandler {
	if workflow == nil {
		panic("nil workflow passed to NewBookingHandler")
	}
	return &BookingHandler{Workflow: workflow}
}

type createBookingRequest struct {
	SessionID     uint64 `json:"session_id"`
	CustomerID    uint64 `json:"customer_id"`
	StageType     uint8  `json:"stage_type"`
	PaymentMethod string `json:"payment_method"`
}

// CreateBooking handles POST /v1/bookings.  It returns 201 with the
// created reservation, 409 when the session is full or the customer
// already booked it, and 404 when session or customer are unknown.
// When the reservation committed but the payment-instructions mail
// could not be dispatched, the response carries a warning next to the
// created item.
func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == 0 || body.CustomerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id and customer_id are required"})
	}
	result, err := h.Workflow.Create(c.Request().Context(),
		body.CustomerID, body.SessionID,
		model.StageType(body.StageType), model.PaymentMethod(body.PaymentMethod))
	if err != nil {
		return respondError(c, err)
	}
	resp := echo.Map{"item": reservationView(result.Reservation)}
	if result.NotifyWarning != "" {
		resp["warning"] = result.NotifyWarning
	}
	return c.JSON(http.StatusCreated, resp)
}

type paymentCallbackRequest struct {
	ReservationID uint64 `json:"reservation_id"`
}

// PaymentCallback handles POST /v1/payments/callback, invoked by the
// external payment processor.  The underlying transition is
// idempotent, so processor retries always get a 200 for a paid
// reservation.
func (h *BookingHandler) PaymentCallback(c echo.Context) error {
	var body paymentCallbackRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ReservationID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "reservation_id is required"})
	}
	res, err := h.Workflow.ConfirmPayment(c.Request().Context(), body.ReservationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": reservationView(res)})
}

// Cancel handles POST /v1/reservations/:id/cancel.  Cancelling a
// reservation with an outstanding invoice is rejected; the invoice
// must be voided first.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Workflow.Cancel(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": reservationView(res)})
}

type transferRequest struct {
	SessionID uint64 `json:"session_id"`
}

// Transfer handles POST /v1/reservations/:id/transfer.  A full target
// session yields 409 and leaves the original booking untouched.
func (h *BookingHandler) Transfer(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body transferRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SessionID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "session_id is required"})
	}
	res, err := h.Workflow.Transfer(c.Request().Context(), id, body.SessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": reservationView(res)})
}

// paramID parses the :id path parameter shared by the reservation
// endpoints.
func paramID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}

func reservationView(r *model.Reservation) echo.Map {
	view := echo.Map{
		"id":             r.ID,
		"customer_id":    r.CustomerID,
		"session_id":     r.SessionID,
		"status":         r.Status,
		"stage_type":     r.StageType,
		"payment_method": r.PaymentMethod,
		"booked_at":      r.BookedAt,
	}
	if r.PaidAt != nil {
		view["paid_at"] = *r.PaidAt
	}
	if r.CancelledAt != nil {
		view["cancelled_at"] = *r.CancelledAt
	}
	return view
}
