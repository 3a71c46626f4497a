// Package monitoring exposes Prometheus metrics for the reservation
// lifecycle.  Counters are registered with promauto on the default
// registry and served by the /metrics endpoint.
package monitoring

import (
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
    reservationsCreated = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "reservations_created_total",
            Help: "Reservations successfully created per event",
        },
        []string{"event_id"},
    )

    reservationsCancelled = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "reservations_cancelled_total",
            Help: "Reservations cancelled per event",
        },
        []string{"event_id"},
    )

    capacityRejections = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "reservation_capacity_rejections_total",
            Help: "Booking attempts rejected because the event was full",
        },
        []string{"event_id"},
    )

    checkIns = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "reservation_check_ins_total",
            Help: "Reservations checked in per event",
        },
        []string{"event_id"},
    )

    codeRetries = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "reservation_code_retries_total",
            Help: "Reservation code candidates discarded due to collisions",
        },
    )

    capacityClamps = promauto.NewCounter(
        prometheus.CounterOpts{
            Name: "reservation_capacity_clamps_total",
            Help: "Cancellations where the attendee counter had to be floored at zero",
        },
    )
)

// ReservationCreated records one successful booking against an event.
func ReservationCreated(eventID uint64) {
    reservationsCreated.WithLabelValues(formatID(eventID)).Inc()
}

// ReservationCancelled records one cancellation against an event.
func ReservationCancelled(eventID uint64) {
    reservationsCancelled.WithLabelValues(formatID(eventID)).Inc()
}

// CapacityRejected records a booking attempt that failed the capacity
// guard.
func CapacityRejected(eventID uint64) {
    capacityRejections.WithLabelValues(formatID(eventID)).Inc()
}

// CheckedIn records one check-in against an event.
func CheckedIn(eventID uint64) {
    checkIns.WithLabelValues(formatID(eventID)).Inc()
}

// CodeRetry records one discarded reservation code candidate.
func CodeRetry() { codeRetries.Inc() }

// CapacityClamped records a decrement that had to be floored at zero.
func CapacityClamped() { capacityClamps.Inc() }

// Handler returns the Prometheus scrape endpoint wrapped for echo.
func Handler() echo.HandlerFunc {
    return echo.WrapHandler(promhttp.Handler())
}

func formatID(id uint64) string { return strconv.FormatUint(id, 10) }
