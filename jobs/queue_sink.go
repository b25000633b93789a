package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/reserva-app/reserva/internal/audit"
)

// QueueSink enqueues audit records for out-of-band persistence by the
// worker, keeping the request path free of audit-log writes.
type QueueSink struct {
	client *asynq.Client
}

// NewQueueSink constructs a QueueSink.
func NewQueueSink(client *asynq.Client) *QueueSink {
	return &QueueSink{client: client}
}

// Write enqueues the record.
func (s *QueueSink) Write(ctx context.Context, record audit.Record) error {
	if s == nil || s.client == nil {
		return errors.New("jobs: queue sink not initialised")
	}
	task, err := NewAuditRecordTask(record)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	return err
}

var _ audit.Sink = (*QueueSink)(nil)
