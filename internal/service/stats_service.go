package service

import (
    "context"
    "encoding/json"
    "fmt"
    "log"
    "time"

    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/event-reservation/internal/model"
)

// StatsStore computes the per-organizer reservation aggregate.
// Satisfied by repository.ReservationRepo.
type StatsStore interface {
    StatsByOrganizer(ctx context.Context, organizerID uint64) (*model.ReservationStats, error)
}

// StatsService serves organizer dashboards.  Results are cached in
// Redis for a short TTL because the aggregate scans every reservation
// the organizer ever received; a nil client disables caching and every
// call hits the store.
type StatsService struct {
    store StatsStore
    cache *redis.Client
    ttl   time.Duration
}

// NewStatsService builds a StatsService.  cache may be nil.
func NewStatsService(store StatsStore, cache *redis.Client, ttl time.Duration) *StatsService {
    if ttl <= 0 {
        ttl = 30 * time.Second
    }
    return &StatsService{store: store, cache: cache, ttl: ttl}
}

// OrganizerStats returns reservation statistics for the organizer's
// events, from cache when fresh.  Cache failures degrade to a direct
// store read; they never fail the request.
func (s *StatsService) OrganizerStats(ctx context.Context, organizerID uint64) (*model.ReservationStats, error) {
    key := fmt.Sprintf("stats:organizer:%d", organizerID)
    if s.cache != nil {
        raw, err := s.cache.Get(ctx, key).Bytes()
        if err == nil {
            var stats model.ReservationStats
            if err := json.Unmarshal(raw, &stats); err == nil {
                return &stats, nil
            }
            // Corrupt entry; fall through and recompute.
        }
    }

    stats, err := s.store.StatsByOrganizer(ctx, organizerID)
    if err != nil {
        return nil, err
    }

    if s.cache != nil {
        if raw, err := json.Marshal(stats); err == nil {
            if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
                log.Printf("stats: cache write failed: %v", err)
            }
        }
    }
    return stats, nil
}
