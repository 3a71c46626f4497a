package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-reservation/internal/model"
)

// fakeStatsStore returns a fixed aggregate and counts calls.
type fakeStatsStore struct {
	stats *model.ReservationStats
	calls int
}

func (s *fakeStatsStore) StatsByOrganizer(_ context.Context, _ uint64) (*model.ReservationStats, error) {
	s.calls++
	return s.stats, nil
}

func sampleStats() *model.ReservationStats {
	return &model.ReservationStats{
		TotalReservations:     12,
		TotalAttendees:        31,
		TotalRevenue:          decimal.RequireFromString("420.50"),
		ConfirmedReservations: 8,
		CancelledReservations: 3,
		AttendedReservations:  5,
	}
}

func TestOrganizerStatsWithoutCache(t *testing.T) {
	store := &fakeStatsStore{stats: sampleStats()}
	svc := NewStatsService(store, nil, time.Minute)

	for i := 0; i < 3; i++ {
		stats, err := svc.OrganizerStats(context.Background(), organizerID)
		require.NoError(t, err)
		assert.Equal(t, 12, stats.TotalReservations)
	}
	assert.Equal(t, 3, store.calls, "nil cache means every call hits the store")
}

func TestOrganizerStatsZeroDefaults(t *testing.T) {
	store := &fakeStatsStore{stats: model.ZeroStats()}
	svc := NewStatsService(store, nil, time.Minute)

	stats, err := svc.OrganizerStats(context.Background(), organizerID)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalReservations)
	assert.Zero(t, stats.TotalAttendees)
	assert.True(t, stats.TotalRevenue.IsZero())
}

func TestOrganizerStatsCacheMissThenHit(t *testing.T) {
	store := &fakeStatsStore{stats: sampleStats()}
	rdb, mock := redismock.NewClientMock()
	svc := NewStatsService(store, rdb, time.Minute)

	key := "stats:organizer:99"
	raw, err := json.Marshal(sampleStats())
	require.NoError(t, err)

	// First call misses the cache, computes and writes.
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, raw, time.Minute).SetVal("OK")
	stats, err := svc.OrganizerStats(context.Background(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("420.50")))

	// Second call is served from the cache.
	mock.ExpectGet(key).SetVal(string(raw))
	stats, err = svc.OrganizerStats(context.Background(), organizerID)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "cached result must not hit the store")
	assert.Equal(t, 31, stats.TotalAttendees)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizerStatsCacheFailureDegrades(t *testing.T) {
	store := &fakeStatsStore{stats: sampleStats()}
	rdb, mock := redismock.NewClientMock()
	svc := NewStatsService(store, rdb, time.Minute)

	mock.ExpectGet("stats:organizer:99").SetErr(assert.AnError)
	raw, err := json.Marshal(sampleStats())
	require.NoError(t, err)
	mock.ExpectSet("stats:organizer:99", raw, time.Minute).SetErr(assert.AnError)

	stats, err := svc.OrganizerStats(context.Background(), organizerID)
	require.NoError(t, err, "cache failures must never fail the request")
	assert.Equal(t, 12, stats.TotalReservations)
	assert.Equal(t, 1, store.calls)
}
