package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/event-reservation/internal/model"
	"github.com/iliyamo/event-reservation/internal/repository"
)

// EventHandler exposes the organizer-facing event management surface
// and the public browse endpoints.
type EventHandler struct {
	Events *repository.EventRepo
}

func NewEventHandler(e *repository.EventRepo) *EventHandler {
	return &EventHandler{Events: e}
}

// ----- DTOs -----

type createEventReq struct {
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	PricingType          string          `json:"pricing_type"` // free | paid
	PriceAmount          decimal.Decimal `json:"price_amount"`
	PriceCurrency        string          `json:"price_currency"`
	StartsAt             time.Time       `json:"starts_at"`
	EndsAt               time.Time       `json:"ends_at"`
	RegistrationDeadline time.Time       `json:"registration_deadline"`
	MaxAttendees         int             `json:"max_attendees"`
}

type eventResp struct {
	ID                   uint64          `json:"id"`
	OrganizerID          uint64          `json:"organizer_id"`
	Title                string          `json:"title"`
	Description          string          `json:"description"`
	Status               string          `json:"status"`
	PricingType          string          `json:"pricing_type"`
	PriceAmount          decimal.Decimal `json:"price_amount"`
	PriceCurrency        string          `json:"price_currency,omitempty"`
	StartsAt             time.Time       `json:"starts_at"`
	EndsAt               time.Time       `json:"ends_at"`
	RegistrationDeadline time.Time       `json:"registration_deadline"`
	MaxAttendees         int             `json:"max_attendees"`
	CurrentAttendees     int             `json:"current_attendees"`
	AvailableSpots       int             `json:"available_spots"`
	CreatedAt            time.Time       `json:"created_at"`
}

func toEventResp(ev *model.Event) eventResp {
	return eventResp{
		ID:                   ev.ID,
		OrganizerID:          ev.OrganizerID,
		Title:                ev.Title,
		Description:          ev.Description,
		Status:               ev.Status,
		PricingType:          ev.PricingType,
		PriceAmount:          ev.PriceAmount,
		PriceCurrency:        ev.PriceCurrency,
		StartsAt:             ev.StartsAt,
		EndsAt:               ev.EndsAt,
		RegistrationDeadline: ev.RegistrationDeadline,
		MaxAttendees:         ev.MaxAttendees,
		CurrentAttendees:     ev.CurrentAttendees,
		AvailableSpots:       ev.AvailableSpots(),
		CreatedAt:            ev.CreatedAt,
	}
}

// Create registers a new draft event owned by the authenticated
// organizer.  Draft events are invisible to browse endpoints and
// closed for registration until published.
func (h *EventHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createEventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}
	if req.MaxAttendees < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "max_attendees must be at least 1"})
	}
	if !req.StartsAt.Before(req.EndsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be before ends_at"})
	}
	if req.RegistrationDeadline.IsZero() {
		req.RegistrationDeadline = req.StartsAt
	}
	if req.RegistrationDeadline.After(req.StartsAt) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "registration_deadline cannot be after starts_at"})
	}
	pricing := strings.ToLower(strings.TrimSpace(req.PricingType))
	switch pricing {
	case "", model.PricingFree:
		pricing = model.PricingFree
		req.PriceAmount = decimal.Zero
		req.PriceCurrency = ""
	case model.PricingPaid:
		if req.PriceAmount.LessThanOrEqual(decimal.Zero) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_amount must be positive for paid events"})
		}
		if strings.TrimSpace(req.PriceCurrency) == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "price_currency required for paid events"})
		}
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "pricing_type must be free or paid"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev := &model.Event{
		OrganizerID:          uid,
		Title:                req.Title,
		Description:          req.Description,
		Status:               model.EventStatusDraft,
		PricingType:          pricing,
		PriceAmount:          req.PriceAmount,
		PriceCurrency:        strings.ToUpper(strings.TrimSpace(req.PriceCurrency)),
		StartsAt:             req.StartsAt.UTC(),
		EndsAt:               req.EndsAt.UTC(),
		RegistrationDeadline: req.RegistrationDeadline.UTC(),
		MaxAttendees:         req.MaxAttendees,
	}
	if err := h.Events.Create(ctx, ev); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toEventResp(ev))
}

// Publish transitions one of the organizer's events from draft to
// published, opening it for registration.
func (h *EventHandler) Publish(c echo.Context) error {
	return h.setStatus(c, model.EventStatusPublished)
}

// Cancel closes one of the organizer's events.  Existing reservations
// are untouched; they can still be cancelled individually.
func (h *EventHandler) Cancel(c echo.Context) error {
	return h.setStatus(c, model.EventStatusCancelled)
}

func (h *EventHandler) setStatus(c echo.Context, status string) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Events.UpdateStatus(ctx, id, uid, status); err != nil {
		return writeError(c, err)
	}
	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// Get returns a single event by ID.
func (h *EventHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ev, err := h.Events.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toEventResp(ev))
}

// ListPublished returns all events currently open for browsing.
func (h *EventHandler) ListPublished(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	events, err := h.Events.ListPublished(ctx)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]eventResp, 0, len(events))
	for i := range events {
		out = append(out, toEventResp(&events[i]))
	}
	return c.JSON(http.StatusOK, out)
}
