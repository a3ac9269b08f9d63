package reminder

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"notify-dispatch/internal/common/config"
	"notify-dispatch/internal/common/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS service_reminders (
	id             BIGSERIAL PRIMARY KEY,
	service_type   TEXT        NOT NULL,
	vehicle        TEXT        NOT NULL DEFAULT '',
	description    TEXT        NOT NULL,
	due_date       DATE        NOT NULL,
	contact_method TEXT        NOT NULL,
	status         TEXT        NOT NULL DEFAULT 'pending',
	notified_at    TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_service_reminders_due
	ON service_reminders (status, due_date);
`

// Store persists reminders in Postgres.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres using the configured DSN and verifies the
// connection before returning a store.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.Database.Postgres.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.Database.Postgres.MaxConnections)
	db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle. Used by tests with sqlmock.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the reminder table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.NewReminderStoreFailedError(err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a reminder. A pending reminder with the same service
// type, vehicle and due date is treated as a duplicate.
func (s *Store) Create(ctx context.Context, r *Reminder) (*Reminder, error) {
	var existing int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM service_reminders
		 WHERE service_type = $1 AND vehicle = $2 AND due_date = $3 AND status = 'pending'`,
		r.ServiceType, r.Vehicle, r.DueDate,
	).Scan(&existing)
	if err == nil {
		return nil, errors.NewDuplicateReminderError(fmt.Sprintf("existing reminder %d", existing))
	}
	if err != sql.ErrNoRows {
		return nil, errors.NewReminderStoreFailedError(err)
	}

	err = s.db.QueryRowContext(ctx,
		`INSERT INTO service_reminders
			(service_type, vehicle, description, due_date, contact_method, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		r.ServiceType, r.Vehicle, r.Description, r.DueDate, r.ContactMethod, StatusPending,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	r.Status = StatusPending
	return r, nil
}

const selectColumns = `id, service_type, vehicle, description, due_date,
	contact_method, status, notified_at, created_at, updated_at`

func scanReminder(row interface{ Scan(...interface{}) error }) (*Reminder, error) {
	var r Reminder
	var notifiedAt sql.NullTime
	err := row.Scan(&r.ID, &r.ServiceType, &r.Vehicle, &r.Description, &r.DueDate,
		&r.ContactMethod, &r.Status, &notifiedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if notifiedAt.Valid {
		r.NotifiedAt = &notifiedAt.Time
	}
	return &r, nil
}

// GetByID returns one reminder or a REMINDER_NOT_FOUND error.
func (s *Store) GetByID(ctx context.Context, id int64) (*Reminder, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM service_reminders WHERE id = $1`, id)
	r, err := scanReminder(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewReminderNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	return r, nil
}

// List returns reminders ordered by due date. An empty status returns
// all of them.
func (s *Store) List(ctx context.Context, status Status) ([]*Reminder, error) {
	query := `SELECT ` + selectColumns + ` FROM service_reminders`
	args := []interface{}{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY due_date ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	defer rows.Close()

	var reminders []*Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, errors.NewReminderStoreFailedError(err)
		}
		reminders = append(reminders, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	return reminders, nil
}

// Due returns pending reminders whose due date falls within daysAhead
// days from now, including overdue ones.
func (s *Store) Due(ctx context.Context, now time.Time, daysAhead int) ([]*Reminder, error) {
	horizon := now.AddDate(0, 0, daysAhead)
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM service_reminders
		 WHERE status = 'pending' AND due_date <= $1
		 ORDER BY due_date ASC`, horizon)
	if err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	defer rows.Close()

	var due []*Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, errors.NewReminderStoreFailedError(err)
		}
		due = append(due, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewReminderStoreFailedError(err)
	}
	return due, nil
}

// MarkNotified flips a reminder to notified and stamps the time.
func (s *Store) MarkNotified(ctx context.Context, id int64, at time.Time) error {
	return s.setStatus(ctx, id,
		`UPDATE service_reminders
		 SET status = 'notified', notified_at = $2, updated_at = now()
		 WHERE id = $1`, at)
}

// Complete marks a reminder done.
func (s *Store) Complete(ctx context.Context, id int64) error {
	return s.setStatus(ctx, id,
		`UPDATE service_reminders
		 SET status = 'completed', updated_at = now()
		 WHERE id = $1`)
}

// Delete removes a reminder permanently.
func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM service_reminders WHERE id = $1`, id)
	if err != nil {
		return errors.NewReminderStoreFailedError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewReminderStoreFailedError(err)
	}
	if n == 0 {
		return errors.NewReminderNotFoundError(id)
	}
	return nil
}

func (s *Store) setStatus(ctx context.Context, id int64, query string, extra ...interface{}) error {
	args := append([]interface{}{id}, extra...)
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return errors.NewReminderStoreFailedError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewReminderStoreFailedError(err)
	}
	if n == 0 {
		return errors.NewReminderNotFoundError(id)
	}
	return nil
}
