package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avassel/stagebook/internal/service"
)

// MailHandler triggers the operator-initiated reservation mail.  The
// core only decides that and what to send; formatting and transport
// belong to the notification collaborator behind the queue.
type MailHandler struct {
	Workflow *service.ReservationWorkflow
}

// NewMailHandler constructs a MailHandler.
func NewMailHandler(workflow *service.ReservationWorkflow) *MailHandler {
	if workflow == nil {
		panic("nil workflow passed to NewMailHandler")
	}
	return &MailHandler{Workflow: workflow}
}

type sendMailRequest struct {
	CustomMessage string `json:"custom_message"`
}

// Send handles POST /v1/reservations/:id/email.  It publishes a mail
// event carrying session, invoice and address facts plus the optional
// operator message, then answers 202: delivery happens downstream.
func (h *MailHandler) Send(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body sendMailRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.Workflow.SendReservationMail(c.Request().Context(), id, body.CustomMessage); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusAccepted, echo.Map{"status": "queued"})
}
