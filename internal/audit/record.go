package audit

import (
	"context"
	"time"
)

// Record is one audit-log entry: who did what, produced once per allowed
// invocation of a mutating operation.
type Record struct {
	ActorID     int64     `json:"actor_id"`
	ActorEmail  string    `json:"actor_email"`
	OperationID string    `json:"operation_id"`
	Entity      string    `json:"entity"`
	Action      string    `json:"action"`
	Description string    `json:"description,omitempty"`
	At          time.Time `json:"at"`
}

// Sink receives audit records. Implementations must tolerate concurrent
// calls.
type Sink interface {
	Write(ctx context.Context, record Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, record Record) error

// Write implements Sink.
func (f SinkFunc) Write(ctx context.Context, record Record) error {
	return f(ctx, record)
}
