package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techexpert/helpdesk/internal/domain"
)

func TestStatsZeroFillsEveryStatus(t *testing.T) {
	tickets := newFakeTicketRepo()
	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{Status: domain.TicketStatusPending}))
	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{Status: domain.TicketStatusPending}))
	require.NoError(t, tickets.Create(context.Background(), &domain.Ticket{Status: domain.TicketStatusClosed}))

	svc := NewStatsService(tickets, nil, nil)
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, stats.Total)
	assert.EqualValues(t, 2, stats.ByStatus[domain.TicketStatusPending])
	assert.EqualValues(t, 1, stats.ByStatus[domain.TicketStatusClosed])
	assert.EqualValues(t, 0, stats.ByStatus[domain.TicketStatusEscalated])
	assert.Len(t, stats.ByStatus, 5)
}
