package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AppointmentRepository is the persistence boundary for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error)
}
