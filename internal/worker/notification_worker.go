package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/techexpert/helpdesk/internal/mail"
	"github.com/techexpert/helpdesk/internal/observability"
)

// ErrQueueFull is returned when the outbound queue cannot accept more mail.
var ErrQueueFull = errors.New("notification queue full")

const defaultQueueSize = 256

type outboundMail struct {
	to      []string
	subject string
	body    string
}

// MailQueue decouples mail delivery from the request path. It implements
// mail.Mailer: Send enqueues and returns immediately, a background worker
// drains the queue against the real SMTP mailer. Lifecycle operations have
// already committed when a mail is enqueued, so a lost message is degraded
// success, not data loss.
type MailQueue struct {
	mailer  mail.Mailer
	logger  *zap.Logger
	metrics *observability.Metrics

	queue chan outboundMail
	wg    sync.WaitGroup
	once  sync.Once
}

// NewMailQueue builds the queue and starts its worker.
func NewMailQueue(mailer mail.Mailer, logger *zap.Logger, metrics *observability.Metrics, size int) *MailQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	q := &MailQueue{
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
		queue:   make(chan outboundMail, size),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// Send queues the message. The context only guards the enqueue; delivery has
// its own timeout inside the worker.
func (q *MailQueue) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case q.queue <- outboundMail{to: to, subject: subject, body: body}:
		return nil
	default:
		q.metrics.RecordDeliveryFailure("queue_full")
		return ErrQueueFull
	}
}

func (q *MailQueue) run() {
	defer q.wg.Done()
	for msg := range q.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err := q.mailer.Send(ctx, msg.to, msg.subject, msg.body)
		cancel()
		if err != nil && q.logger != nil {
			q.logger.Error("queued mail delivery failed",
				zap.Strings("to", msg.to),
				zap.String("subject", msg.subject),
				zap.Error(err))
		}
	}
}

// Close stops accepting mail and waits for the drain to finish.
func (q *MailQueue) Close() {
	q.once.Do(func() {
		close(q.queue)
	})
	q.wg.Wait()
}
