package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

const (
	statsCacheKey = "helpdesk:ticket_stats"
	statsCacheTTL = 30 * time.Second
)

// TicketStats is the dashboard aggregate: one counter per lifecycle status
// plus the overall total.
type TicketStats struct {
	Total    int64                         `json:"total"`
	ByStatus map[domain.TicketStatus]int64 `json:"by_status"`
}

// StatsService serves status counters, caching them briefly in redis so the
// dashboard does not hammer postgres.
type StatsService struct {
	tickets repository.TicketRepository
	cache   *redis.Client
	logger  *zap.Logger
}

func NewStatsService(tickets repository.TicketRepository, cache *redis.Client, logger *zap.Logger) *StatsService {
	return &StatsService{tickets: tickets, cache: cache, logger: logger}
}

// Stats returns ticket counts per status. Every status appears in the result
// even when its count is zero. Cache trouble degrades to a direct count, it
// never fails the request.
func (s *StatsService) Stats(ctx context.Context) (*TicketStats, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, statsCacheKey).Bytes()
		if err == nil {
			var cached TicketStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		} else if err != redis.Nil && s.logger != nil {
			s.logger.Warn("stats cache read failed", zap.Error(err))
		}
	}

	counts, err := s.tickets.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &TicketStats{ByStatus: map[domain.TicketStatus]int64{
		domain.TicketStatusPending:              0,
		domain.TicketStatusInProgress:           0,
		domain.TicketStatusEscalated:            0,
		domain.TicketStatusAwaitingConfirmation: 0,
		domain.TicketStatusClosed:               0,
	}}
	for status, count := range counts {
		stats.ByStatus[status] = count
		stats.Total += count
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, raw, statsCacheTTL).Err(); err != nil && s.logger != nil {
				s.logger.Warn("stats cache write failed", zap.Error(err))
			}
		}
	}
	return stats, nil
}
