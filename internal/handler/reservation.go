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
	"github.com/iliyamo/event-reservation/internal/service"
)

// ReservationHandler exposes the booking lifecycle to authenticated
// users.  All business rules live in the service; the handler binds,
// validates shapes and maps errors.
type ReservationHandler struct {
	Svc *service.ReservationService
}

func NewReservationHandler(svc *service.ReservationService) *ReservationHandler {
	return &ReservationHandler{Svc: svc}
}

// ----- DTOs -----

type attendeePart struct {
	Name                string `json:"name"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	Age                 *int   `json:"age,omitempty"`
	DietaryRestrictions string `json:"dietary_restrictions,omitempty"`
	SpecialRequirements string `json:"special_requirements,omitempty"`
}

type cancellationPart struct {
	CancelledAt time.Time `json:"cancelled_at"`
	CancelledBy uint64    `json:"cancelled_by"`
	Reason      string    `json:"reason,omitempty"`
}

type reservationResp struct {
	ID                uint64            `json:"id"`
	EventID           uint64            `json:"event_id"`
	UserID            uint64            `json:"user_id"`
	Code              string            `json:"reservation_code"`
	Status            string            `json:"status"`
	Attendees         []attendeePart    `json:"attendees"`
	NumberOfAttendees int               `json:"number_of_attendees"`
	TotalAmount       decimal.Decimal   `json:"total_amount"`
	PaymentStatus     string            `json:"payment_status"`
	PaymentMethod     string            `json:"payment_method"`
	PaymentDate       *time.Time        `json:"payment_date,omitempty"`
	CheckInTime       *time.Time        `json:"check_in_time,omitempty"`
	Cancellation      *cancellationPart `json:"cancellation,omitempty"`
	UserNotes         string            `json:"notes,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
}

func toReservationResp(res *model.Reservation) reservationResp {
	out := reservationResp{
		ID:                res.ID,
		EventID:           res.EventID,
		UserID:            res.UserID,
		Code:              res.Code,
		Status:            res.Status,
		Attendees:         make([]attendeePart, 0, len(res.Attendees)),
		NumberOfAttendees: res.NumberOfAttendees,
		TotalAmount:       res.TotalAmount,
		PaymentStatus:     res.PaymentStatus,
		PaymentMethod:     res.PaymentMethod,
		PaymentDate:       res.PaymentDate,
		CheckInTime:       res.CheckInTime,
		UserNotes:         res.UserNotes,
		CreatedAt:         res.CreatedAt,
	}
	for _, a := range res.Attendees {
		out.Attendees = append(out.Attendees, attendeePart{
			Name:                a.Name,
			Email:               a.Email,
			Phone:               a.Phone,
			Age:                 a.Age,
			DietaryRestrictions: a.DietaryRestrictions,
			SpecialRequirements: a.SpecialRequirements,
		})
	}
	if res.Cancellation != nil {
		out.Cancellation = &cancellationPart{
			CancelledAt: res.Cancellation.CancelledAt,
			CancelledBy: res.Cancellation.CancelledBy,
			Reason:      res.Cancellation.Reason,
		}
	}
	return out
}

func toReservationList(reservations []model.Reservation) []reservationResp {
	out := make([]reservationResp, 0, len(reservations))
	for i := range reservations {
		out = append(out, toReservationResp(&reservations[i]))
	}
	return out
}

// reservationID parses the :id path parameter.
func reservationID(c echo.Context) (uint64, error) {
	return strconv.ParseUint(c.Param("id"), 10, 64)
}

// Create books seats on an event for the authenticated user.
func (h *ReservationHandler) Create(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in service.CreateReservationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if in.EventID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "event_id required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.CreateReservation(ctx, uid, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toReservationResp(res))
}

// ListMine returns all reservations belonging to the caller.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservations, err := h.Svc.ListUserReservations(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationList(reservations))
}

// Get returns a single reservation to its owning user.
func (h *ReservationHandler) Get(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.GetReservation(ctx, id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// GetByCode looks a reservation up by its public code.  Used by door
// staff with a scanned or typed code.
func (h *ReservationHandler) GetByCode(c echo.Context) error {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Svc.GetReservationByCode(ctx, code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

// Update replaces attendee details and notes on a non-terminal
// reservation owned by the caller.
func (h *ReservationHandler) Update(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var in service.UpdateReservationInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	res, err := h.Svc.UpdateReservation(ctx, id, uid, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}

type cancelReq struct {
	Reason string `json:"reason"`
}

// Cancel soft-deletes the caller's reservation and releases its seats.
func (h *ReservationHandler) Cancel(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req cancelReq
	_ = c.Bind(&req) // reason is optional; ignore malformed bodies

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.CancelReservation(ctx, id, uid, strings.TrimSpace(req.Reason)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type confirmPaymentReq struct {
	TransactionID string `json:"transaction_id"`
}

// ConfirmPayment marks the caller's reservation as paid and confirmed.
func (h *ReservationHandler) ConfirmPayment(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	var req confirmPaymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	// Ownership gate first; the payment transition itself has no actor.
	if _, err := h.Svc.GetReservation(ctx, id, uid); err != nil {
		return writeError(c, err)
	}
	if err := h.Svc.ConfirmPayment(ctx, id, strings.TrimSpace(req.TransactionID)); err != nil {
		return writeError(c, err)
	}
	res, err := h.Svc.GetReservation(ctx, id, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationResp(res))
}
