package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/avassel/stagebook/internal/document"
	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/service/ports"
)

// DocumentHandler renders and serves the two printable documents.  A
// failed logo load degrades the document instead of failing the
// request; only an irrecoverable composition error surfaces as 500.
type DocumentHandler struct {
	Store           ports.Store
	Composer        *document.Composer
	Company         document.CompanyInfo
	AssetBaseURL    string
	VATRatePermille int
	Log             *zap.Logger
}

// NewDocumentHandler constructs a DocumentHandler.
func NewDocumentHandler(store ports.Store, composer *document.Composer, company document.CompanyInfo, assetBaseURL string, vatPermille int, log *zap.Logger) *DocumentHandler {
	if store == nil || composer == nil {
		panic("nil dependency passed to NewDocumentHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &DocumentHandler{
		Store:           store,
		Composer:        composer,
		Company:         company,
		AssetBaseURL:    assetBaseURL,
		VATRatePermille: vatPermille,
		Log:             log,
	}
}

// Download handles GET /v1/reservations/:id/documents/:kind with kind
// "convocation" or "invoice".  Both documents require a paid
// reservation; the invoice additionally requires an active invoice
// row.  The response is a PDF with a filename encoding the session
// number and the customer surname.
func (h *DocumentHandler) Download(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	kind := c.Param("kind")
	if kind != "convocation" && kind != "invoice" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown document kind"})
	}

	ctx := c.Request().Context()
	res, err := h.Store.Reservation(ctx, id)
	if err != nil {
		return respondError(c, err)
	}
	if res.Status != model.ReservationPaid {
		return respondError(c, fmt.Errorf("%w: reservation is not paid", model.ErrPrecondition))
	}
	cust, err := h.Store.Customer(ctx, res.CustomerID)
	if err != nil {
		return respondError(c, err)
	}
	sess, err := h.Store.Session(ctx, res.SessionID)
	if err != nil {
		return respondError(c, err)
	}

	logo, err := document.LoadLogo(ctx, h.AssetBaseURL)
	if err != nil {
		// Degrade: the document is still valid without the logo.
		h.Log.Warn("logo load failed, rendering without it", zap.Error(err))
		logo = nil
	}

	var blocks []document.Block
	switch kind {
	case "convocation":
		blocks = document.BuildConvocation(document.ConvocationData{
			Customer:  cust,
			Session:   sess,
			StageType: res.StageType,
			Company:   h.Company,
			IssueDate: time.Now().UTC(),
			Logo:      logo,
		})
	case "invoice":
		inv, err := h.Store.ActiveInvoice(ctx, id)
		if err != nil {
			return respondError(c, err)
		}
		blocks = document.BuildInvoice(document.InvoiceData{
			Invoice:         inv,
			Customer:        cust,
			Session:         sess,
			Company:         h.Company,
			VATRatePermille: h.VATRatePermille,
			Logo:            logo,
		})
	}

	out, err := h.Composer.Render(blocks)
	if err != nil {
		return respondError(c, err)
	}
	filename := document.Filename(kind, sess.Number, cust.LastName)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, filename))
	return c.Blob(http.StatusOK, "application/pdf", out)
}
