package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avassel/stagebook/internal/model"
	"github.com/avassel/stagebook/internal/repository"
)

// SessionHandler exposes session administration and the public
// listing.  Creation is an administrator operation; the listing backs
// the booking UI and is served through the response cache.
type SessionHandler struct {
	Sessions *repository.SessionRepo
}

// NewSessionHandler constructs a SessionHandler.
func NewSessionHandler(sessions *repository.SessionRepo) *SessionHandler {
	if sessions == nil {
		panic("nil repository passed to NewSessionHandler")
	}
	return &SessionHandler{Sessions: sessions}
}

type createSessionRequest struct {
	Number         string `json:"session_number"`
	Title          string `json:"title"`
	Street         string `json:"street"`
	PostalCode     string `json:"postal_code"`
	City           string `json:"city"`
	StartDate      string `json:"start_date"` // YYYY-MM-DD
	EndDate        string `json:"end_date"`
	MorningStart   string `json:"morning_start"`
	MorningEnd     string `json:"morning_end"`
	AfternoonStart string `json:"afternoon_start"`
	AfternoonEnd   string `json:"afternoon_end"`
	PriceCents     uint32 `json:"price_cents"`
	TotalSeats     uint32 `json:"total_seats"`

	AgreementDepartmentCode string  `json:"agreement_department_code"`
	AgreementNumber         string  `json:"agreement_number"`
	AgreementDepartmentName *string `json:"agreement_department_name"`
}

// Create handles POST /v1/sessions.  It validates the request,
// persists the session with its seat counter at full capacity and
// returns 201 with the created record.
func (h *SessionHandler) Create(c echo.Context) error {
	var body createSessionRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	for _, req := range []struct{ field, value string }{
		{"session_number", body.Number},
		{"title", body.Title},
		{"street", body.Street},
		{"postal_code", body.PostalCode},
		{"city", body.City},
	} {
		if strings.TrimSpace(req.value) == "" {
			return respondError(c, &model.ValidationError{Field: req.field, Reason: "is required"})
		}
	}
	if body.TotalSeats == 0 {
		return respondError(c, &model.ValidationError{Field: "total_seats", Reason: "must be positive"})
	}
	start, err := time.Parse("2006-01-02", body.StartDate)
	if err != nil {
		return respondError(c, &model.ValidationError{Field: "start_date", Reason: "must be YYYY-MM-DD"})
	}
	end, err := time.Parse("2006-01-02", body.EndDate)
	if err != nil {
		return respondError(c, &model.ValidationError{Field: "end_date", Reason: "must be YYYY-MM-DD"})
	}
	if end.Before(start) {
		return respondError(c, &model.ValidationError{Field: "end_date", Reason: "must not precede start_date"})
	}

	sess := &model.Session{
		Number:         body.Number,
		Title:          body.Title,
		Street:         body.Street,
		PostalCode:     body.PostalCode,
		City:           body.City,
		StartDate:      start,
		EndDate:        end,
		MorningStart:   body.MorningStart,
		MorningEnd:     body.MorningEnd,
		AfternoonStart: body.AfternoonStart,
		AfternoonEnd:   body.AfternoonEnd,
		PriceCents:     body.PriceCents,
		TotalSeats:     body.TotalSeats,
	}
	if body.AgreementDepartmentCode != "" && body.AgreementNumber != "" {
		sess.Agreement = &model.Agreement{
			DepartmentCode: body.AgreementDepartmentCode,
			Number:         body.AgreementNumber,
			DepartmentName: body.AgreementDepartmentName,
		}
	}
	if err := h.Sessions.Create(c.Request().Context(), sess); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"item": sessionView(sess)})
}

// List handles GET /v1/sessions.  It returns all sessions ordered by
// start date; remaining seat counts let the booking UI grey out full
// sessions.
func (h *SessionHandler) List(c echo.Context) error {
	sessions, err := h.Sessions.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
	}
	items := make([]echo.Map, 0, len(sessions))
	for i := range sessions {
		items = append(items, sessionView(&sessions[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func sessionView(s *model.Session) echo.Map {
	view := echo.Map{
		"id":              s.ID,
		"session_number":  s.Number,
		"title":           s.Title,
		"street":          s.Street,
		"postal_code":     s.PostalCode,
		"city":            s.City,
		"start_date":      s.StartDate.Format("2006-01-02"),
		"end_date":        s.EndDate.Format("2006-01-02"),
		"morning_start":   s.MorningStart,
		"morning_end":     s.MorningEnd,
		"afternoon_start": s.AfternoonStart,
		"afternoon_end":   s.AfternoonEnd,
		"price_cents":     s.PriceCents,
		"total_seats":     s.TotalSeats,
		"remaining_seats": s.RemainingSeats,
	}
	if s.Agreement != nil {
		agr := echo.Map{
			"department_code": s.Agreement.DepartmentCode,
			"number":          s.Agreement.Number,
		}
		if s.Agreement.DepartmentName != nil {
			agr["department_name"] = *s.Agreement.DepartmentName
		}
		view["agreement"] = agr
	}
	return view
}
