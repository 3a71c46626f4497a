package model

import "github.com/shopspring/decimal"

// ReservationStats summarises all reservations made against an
// organizer's events.  Cancelled reservations are counted but their
// amounts still contribute to TotalRevenue only when they were paid;
// revenue here is the sum of reservation totals as recorded, matching
// the aggregate the organizer dashboard displays.  A brand new
// organizer gets all-zero values.
type ReservationStats struct {
    TotalReservations     int             `json:"total_reservations"`
    TotalAttendees        int             `json:"total_attendees"`
    TotalRevenue          decimal.Decimal `json:"total_revenue"`
    ConfirmedReservations int             `json:"confirmed_reservations"`
    CancelledReservations int             `json:"cancelled_reservations"`
    AttendedReservations  int             `json:"attended_reservations"`
}

// ZeroStats returns a ReservationStats with explicit zero values,
// including a properly initialised zero decimal for revenue.
func ZeroStats() *ReservationStats {
    return &ReservationStats{TotalRevenue: decimal.Zero}
}
