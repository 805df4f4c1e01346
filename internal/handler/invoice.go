package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service"
)

// InvoiceHandler exposes invoice issuance, re-issuance and voiding.
type InvoiceHandler struct {
	Issuer *service.InvoiceIssuer
}

// NewInvoiceHandler constructs an InvoiceHandler.
func NewInvoiceHandler(issuer *service.InvoiceIssuer) *InvoiceHandler {
	if issuer == nil {
		panic("nil issuer passed to NewInvoiceHandler")
	}
	return &InvoiceHandler{Issuer: issuer}
}

type issueInvoiceRequest struct {
	InvoiceNumber string `json:"invoice_number"`
	AmountCents   uint32 `json:"amount_cents"`
}

// Issue handles POST /v1/reservations/:id/invoice.  Issuing twice
// updates the existing invoice instead of creating a second one; the
// response includes a billing_info descriptor stating which address
// was used, for the operator's confirmation toast.
func (h *InvoiceHandler) Issue(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var body issueInvoiceRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	inv, info, err := h.Issuer.Issue(c.Request().Context(), id, service.IssueOptions{
		Number:      body.InvoiceNumber,
		AmountCents: body.AmountCents,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"item":         invoiceView(inv),
		"billing_info": info,
	})
}

// Void handles POST /v1/reservations/:id/invoice/void.  Voiding the
// invoice is the explicit step that unlocks cancellation of an
// invoiced reservation.
func (h *InvoiceHandler) Void(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	inv, err := h.Issuer.Void(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"item": invoiceView(inv)})
}

func invoiceView(inv *model.Invoice) echo.Map {
	return echo.Map{
		"id":             inv.ID,
		"reservation_id": inv.ReservationID,
		"number":         inv.Number,
		"amount_cents":   inv.AmountCents,
		"net_cents":      inv.NetCents,
		"tax_cents":      inv.TaxCents,
		"currency":       inv.Currency,
		"status":         inv.Status,
		"issued_at":      inv.IssuedAt,
		"billing_kind":   inv.Billing.Kind,
	}
}
