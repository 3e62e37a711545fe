package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotRepository is the persistence boundary for schedule slots. The two
// list-scope methods back the overlap detector: ListRecurring fetches the
// weekly rules for one weekday, ListActiveOn fetches the union of recurring
// and specific-date slots active on a concrete calendar date.
type SlotRepository interface {
	Create(ctx context.Context, s *ScheduleSlot) error
	GetByID(ctx context.Context, id uuid.UUID) (*ScheduleSlot, error)
	Update(ctx context.Context, s *ScheduleSlot) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListByProvider(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*ScheduleSlot, int, error)
	ListRecurring(ctx context.Context, providerID uuid.UUID, dayOfWeek int) ([]*ScheduleSlot, error)
	ListActiveOn(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*ScheduleSlot, error)
}

// TxRunner executes a function inside a database transaction, making the
// transaction available to repositories through the context. Used to keep
// the overlap check and the subsequent write atomic.
type TxRunner interface {
	InTx(ctx context.Context, fn func(context.Context) error) error
}
