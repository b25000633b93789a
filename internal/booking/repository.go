package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates that the requested appointment does not exist.
var ErrNotFound = errors.New("booking: not found")

// Repository defines persistence operations for appointments.
type Repository interface {
	List(ctx context.Context, from, to time.Time) ([]Appointment, error)
	Create(ctx context.Context, appt Appointment) (Appointment, error)
	Cancel(ctx context.Context, id int64) error
	Summarize(ctx context.Context, now time.Time) (Summary, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// List returns appointments starting inside the window, earliest first.
func (r *PGRepository) List(ctx context.Context, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, branch_id, customer_name, service_name, starts_at, ends_at,
       status, created_by, created_at, updated_at
FROM appointments
WHERE starts_at >= $1 AND starts_at < $2
ORDER BY starts_at`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appts []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.BranchID, &a.CustomerName, &a.ServiceName,
			&a.StartsAt, &a.EndsAt, &a.Status, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		appts = append(appts, a)
	}
	return appts, rows.Err()
}

// Create inserts a new appointment and returns it with generated fields.
func (r *PGRepository) Create(ctx context.Context, appt Appointment) (Appointment, error) {
	err := r.pool.QueryRow(ctx, `
INSERT INTO appointments (branch_id, customer_name, service_name, starts_at, ends_at, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, created_at, updated_at`,
		appt.BranchID, appt.CustomerName, appt.ServiceName,
		appt.StartsAt, appt.EndsAt, appt.Status, appt.CreatedBy,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)
	if err != nil {
		return Appointment{}, err
	}
	return appt, nil
}

// Cancel marks an appointment cancelled. Returns ErrNotFound when the id
// does not exist.
func (r *PGRepository) Cancel(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE appointments SET status = $1, updated_at = NOW() WHERE id = $2`,
		StatusCancelled, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Summarize counts upcoming, today's, and cancelled appointments.
func (r *PGRepository) Summarize(ctx context.Context, now time.Time) (Summary, error) {
	var s Summary
	err := r.pool.QueryRow(ctx, `
SELECT
  COUNT(*) FILTER (WHERE status = $1 AND starts_at >= $2),
  COUNT(*) FILTER (WHERE status = $1 AND starts_at::date = $2::date),
  COUNT(*) FILTER (WHERE status = $3)
FROM appointments`, StatusScheduled, now, StatusCancelled,
	).Scan(&s.Upcoming, &s.Today, &s.Cancelled)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Summary{}, err
	}
	return s, nil
}

var _ Repository = (*PGRepository)(nil)
