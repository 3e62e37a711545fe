package availability

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/clinicdesk/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type slotRepoPG struct{ pool *pgxpool.Pool }

// NewSlotRepoPG creates the Postgres-backed slot repository.
func NewSlotRepoPG(pool *pgxpool.Pool) SlotRepository { return &slotRepoPG{pool: pool} }

func (r *slotRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const slotCols = `id, provider_id, provider_kind, day_of_week, specific_date,
	start_minute, end_minute, is_available, max_appointments, notes,
	created_at, updated_at`

func (r *slotRepoPG) scanSlot(row pgx.Row) (*ScheduleSlot, error) {
	var s ScheduleSlot
	err := row.Scan(&s.ID, &s.ProviderID, &s.ProviderKind, &s.DayOfWeek, &s.SpecificDate,
		&s.StartMinute, &s.EndMinute, &s.IsAvailable, &s.MaxAppointments, &s.Notes,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *slotRepoPG) Create(ctx context.Context, s *ScheduleSlot) error {
	s.ID = uuid.New()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO schedule_slot (id, provider_id, provider_kind, day_of_week, specific_date,
			start_minute, end_minute, is_available, max_appointments, notes, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		s.ID, s.ProviderID, s.ProviderKind, s.DayOfWeek, s.SpecificDate,
		s.StartMinute, s.EndMinute, s.IsAvailable, s.MaxAppointments, s.Notes,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *slotRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*ScheduleSlot, error) {
	return r.scanSlot(r.conn(ctx).QueryRow(ctx, `SELECT `+slotCols+` FROM schedule_slot WHERE id = $1`, id))
}

func (r *slotRepoPG) Update(ctx context.Context, s *ScheduleSlot) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE schedule_slot SET day_of_week=$2, specific_date=$3, start_minute=$4, end_minute=$5,
			is_available=$6, max_appointments=$7, notes=$8, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.DayOfWeek, s.SpecificDate, s.StartMinute, s.EndMinute,
		s.IsAvailable, s.MaxAppointments, s.Notes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM schedule_slot WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *slotRepoPG) ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*ScheduleSlot, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM schedule_slot WHERE provider_id = $1`, providerID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+slotCols+` FROM schedule_slot
		WHERE provider_id = $1
		ORDER BY specific_date NULLS FIRST, day_of_week, start_minute
		LIMIT $2 OFFSET $3`, providerID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*ScheduleSlot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}

func (r *slotRepoPG) ListRecurring(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]*ScheduleSlot, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+slotCols+` FROM schedule_slot
		WHERE provider_id = $1 AND specific_date IS NULL AND day_of_week = $2
		ORDER BY start_minute`, providerID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ScheduleSlot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

func (r *slotRepoPG) ListActiveOn(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*ScheduleSlot, error) {
	day := truncateToDay(date)
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+slotCols+` FROM schedule_slot
		WHERE provider_id = $1
		  AND (specific_date = $2 OR (specific_date IS NULL AND day_of_week = $3))
		ORDER BY start_minute`, providerID, day, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*ScheduleSlot
	for rows.Next() {
		s, err := r.scanSlot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
