package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-reservation/internal/service"
)

// OrganizerHandler exposes the organizer-side reservation surface:
// attendee lists, check-in, no-show marking and statistics.
type OrganizerHandler struct {
	Svc   *service.ReservationService
	Stats *service.StatsService
}

func NewOrganizerHandler(svc *service.ReservationService, stats *service.StatsService) *OrganizerHandler {
	return &OrganizerHandler{Svc: svc, Stats: stats}
}

// ListEventReservations returns all reservations for one of the
// organizer's events.
func (h *OrganizerHandler) ListEventReservations(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	reservations, err := h.Svc.ListEventReservations(ctx, eventID, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toReservationList(reservations))
}

// CheckIn marks a confirmed reservation as attended at the door.
func (h *OrganizerHandler) CheckIn(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.CheckIn(ctx, id, uid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "attended"})
}

// MarkNoShow records that a confirmed party never arrived.
func (h *OrganizerHandler) MarkNoShow(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := reservationID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Svc.MarkNoShow(ctx, id, uid); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "no_show"})
}

// OrganizerStats returns aggregate reservation statistics across all
// of the organizer's events.
func (h *OrganizerHandler) OrganizerStats(c echo.Context) error {
	uid, ok := currentUserID(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stats, err := h.Stats.OrganizerStats(ctx, uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
