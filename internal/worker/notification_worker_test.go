package worker

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techexpert/helpdesk/internal/observability"
)

type captureMailer struct {
	mu   sync.Mutex
	sent [][]string
}

func (m *captureMailer) Send(_ context.Context, to []string, _ string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func TestMailQueueDrainsOnClose(t *testing.T) {
	mailer := &captureMailer{}
	queue := NewMailQueue(mailer, nil, observability.NewMetrics(), 8)

	for i := 0; i < 5; i++ {
		require.NoError(t, queue.Send(context.Background(), []string{"x@example.com"}, "s", "b"))
	}
	queue.Close()

	assert.Equal(t, 5, mailer.count())
}

func TestMailQueueSkipsEmptyRecipients(t *testing.T) {
	mailer := &captureMailer{}
	queue := NewMailQueue(mailer, nil, observability.NewMetrics(), 8)
	defer queue.Close()

	require.NoError(t, queue.Send(context.Background(), nil, "s", "b"))
}

func TestMailQueueRejectsWhenFull(t *testing.T) {
	metrics := observability.NewMetrics()
	blocked := make(chan struct{})
	mailer := newBlockingMailer(blocked)
	queue := NewMailQueue(mailer, nil, metrics, 1)

	// first message occupies the worker, second fills the buffer
	require.NoError(t, queue.Send(context.Background(), []string{"a@example.com"}, "s", "b"))
	mailer.waitBusy()
	require.NoError(t, queue.Send(context.Background(), []string{"b@example.com"}, "s", "b"))

	err := queue.Send(context.Background(), []string{"c@example.com"}, "s", "b")
	assert.ErrorIs(t, err, ErrQueueFull)
	assert.EqualValues(t, 1, metrics.DeliveryFailures("queue_full"))

	close(blocked)
	queue.Close()
}

type blockingMailer struct {
	once    sync.Once
	started chan struct{}
	release chan struct{}
}

func newBlockingMailer(release chan struct{}) *blockingMailer {
	return &blockingMailer{started: make(chan struct{}), release: release}
}

func (m *blockingMailer) Send(context.Context, []string, string, string) error {
	m.once.Do(func() { close(m.started) })
	<-m.release
	return nil
}

func (m *blockingMailer) waitBusy() {
	<-m.started
}
