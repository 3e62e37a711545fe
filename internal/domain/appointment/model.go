package appointment

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Appointment statuses.
const (
	StatusBooked    = "booked"
	StatusCancelled = "cancelled"
)

// Appointment is a patient booking against a provider's availability on a
// specific date. Times are minutes of day, matching the schedule slots the
// booking was validated against.
type Appointment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	ProviderID  uuid.UUID `db:"provider_id" json:"provider_id"`
	PatientID   uuid.UUID `db:"patient_id" json:"patient_id"`
	Date        time.Time `db:"date" json:"date"`
	StartMinute int       `db:"start_minute" json:"start_minute"`
	EndMinute   int       `db:"end_minute" json:"end_minute"`
	Status      string    `db:"status" json:"status"`
	Reason      *string   `db:"reason" json:"reason,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Validate checks the structural invariants of an appointment.
func (a *Appointment) Validate() error {
	if a.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if a.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if a.Date.IsZero() {
		return fmt.Errorf("date is required")
	}
	if a.StartMinute < 0 || a.EndMinute > 24*60 {
		return fmt.Errorf("appointment times must fall within a single day")
	}
	if a.StartMinute >= a.EndMinute {
		return fmt.Errorf("start_time must be before end_time")
	}
	if a.Status != StatusBooked && a.Status != StatusCancelled {
		return fmt.Errorf("status must be %q or %q", StatusBooked, StatusCancelled)
	}
	return nil
}

// Actor identifies the authenticated caller. Elevated actors (staff and
// admins) may operate on any patient's appointments; everyone else sees only
// appointments they are party to, as patient or as provider.
type Actor struct {
	UserID   uuid.UUID
	Elevated bool
}

// PartyTo reports whether the actor may see the appointment.
func (a Actor) PartyTo(appt *Appointment) bool {
	return a.Elevated || appt.PatientID == a.UserID || appt.ProviderID == a.UserID
}

// BookingRequest carries the raw booking input. Times arrive as clock strings
// and are normalized before any scheduling decision is made.
type BookingRequest struct {
	ProviderID uuid.UUID `json:"provider_id"`
	PatientID  uuid.UUID `json:"patient_id"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Reason     *string   `json:"reason,omitempty"`
}
