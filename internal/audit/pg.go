package audit

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGSink writes records into the audit_logs table.
type PGSink struct {
	pool *pgxpool.Pool
}

// NewPGSink returns a new PGSink.
func NewPGSink(pool *pgxpool.Pool) *PGSink {
	return &PGSink{pool: pool}
}

// Write persists the record.
func (s *PGSink) Write(ctx context.Context, record Record) error {
	if s == nil || s.pool == nil {
		return errors.New("audit: sink not initialised")
	}
	if record.Action == "" || record.Entity == "" {
		return errors.New("audit: record requires action and entity")
	}
	_, err := s.pool.Exec(ctx, `
INSERT INTO audit_logs (actor_id, actor_email, operation_id, entity, action, description, occurred_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))`,
		record.ActorID, record.ActorEmail, record.OperationID,
		record.Entity, record.Action, record.Description, record.At)
	return err
}

var _ Sink = (*PGSink)(nil)
