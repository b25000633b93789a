package jobs

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/reserva-app/reserva/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord is the task type for persisting audit records.
	TaskTypeAuditRecord = "audit:record"
)

// NewAuditRecordTask constructs an Asynq task carrying one audit record.
func NewAuditRecordTask(record audit.Record) (*asynq.Task, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data), nil
}

// NewAuditRecordHandler returns the processor for TaskTypeAuditRecord,
// writing each record through the given sink. A nil Metrics disables
// instrumentation.
func NewAuditRecordHandler(sink audit.Sink, metrics *Metrics) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		tracker := metrics.Track(TaskTypeAuditRecord)
		var record audit.Record
		if err := json.Unmarshal(t.Payload(), &record); err != nil {
			return tracker.End(asynq.SkipRetry)
		}
		return tracker.End(sink.Write(ctx, record))
	}
}
