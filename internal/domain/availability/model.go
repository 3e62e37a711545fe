package availability

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Provider kinds. A schedule slot belongs to exactly one provider, who is
// either a doctor or a member of the clinical staff. The same overlap and
// resolution rules apply to both.
const (
	ProviderDoctor = "doctor"
	ProviderStaff  = "staff"
)

var validProviderKinds = map[string]bool{
	ProviderDoctor: true,
	ProviderStaff:  true,
}

// ScheduleSlot maps to the schedule_slot table. A slot is either a weekly
// recurring rule (SpecificDate nil, recurs on DayOfWeek) or a one-off entry
// for a single calendar date (SpecificDate set). Times are stored as minutes
// since midnight; the interval is half-open [StartMinute, EndMinute).
type ScheduleSlot struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ProviderID      uuid.UUID  `db:"provider_id" json:"provider_id"`
	ProviderKind    string     `db:"provider_kind" json:"provider_kind"`
	DayOfWeek       int        `db:"day_of_week" json:"day_of_week"`
	SpecificDate    *time.Time `db:"specific_date" json:"specific_date,omitempty"`
	StartMinute     int        `db:"start_minute" json:"start_minute"`
	EndMinute       int        `db:"end_minute" json:"end_minute"`
	IsAvailable     bool       `db:"is_available" json:"is_available"`
	MaxAppointments int        `db:"max_appointments" json:"max_appointments"`
	Notes           *string    `db:"notes" json:"notes,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// StartClock returns the start boundary as "HH:MM".
func (s *ScheduleSlot) StartClock() string { return FormatClockTime(s.StartMinute) }

// EndClock returns the end boundary as "HH:MM".
func (s *ScheduleSlot) EndClock() string { return FormatClockTime(s.EndMinute) }

// Recurring reports whether the slot is a weekly rule rather than a one-off
// entry for a single date.
func (s *ScheduleSlot) Recurring() bool { return s.SpecificDate == nil }

// ActiveOn reports whether the slot applies to the given calendar date.
// A specific-date slot applies only to its own date, regardless of weekday.
// A recurring slot applies to every date falling on its weekday.
func (s *ScheduleSlot) ActiveOn(date time.Time) bool {
	if s.SpecificDate != nil {
		return sameDate(*s.SpecificDate, date)
	}
	return int(date.Weekday()) == s.DayOfWeek
}

// Validate checks the field invariants that do not require looking at other
// slots. The no-overlap invariant is enforced by the service.
func (s *ScheduleSlot) Validate() error {
	if s.ProviderID == uuid.Nil {
		return fmt.Errorf("provider_id is required")
	}
	if !validProviderKinds[s.ProviderKind] {
		return fmt.Errorf("invalid provider_kind: %s", s.ProviderKind)
	}
	if s.DayOfWeek < 0 || s.DayOfWeek > 6 {
		return fmt.Errorf("day_of_week must be between 0 and 6, got %d", s.DayOfWeek)
	}
	if s.StartMinute < 0 || s.EndMinute > minutesPerDay {
		return fmt.Errorf("time range out of bounds")
	}
	if s.StartMinute >= s.EndMinute {
		return fmt.Errorf("start_time must be before end_time")
	}
	if s.MaxAppointments < 1 {
		return fmt.Errorf("max_appointments must be at least 1")
	}
	return nil
}

// SlotCandidate is an unnormalized slot as submitted by a caller. Times and
// the specific date are raw strings in any of the accepted representations;
// the service normalizes them before validation.
type SlotCandidate struct {
	ProviderID      uuid.UUID `json:"provider_id"`
	ProviderKind    string    `json:"provider_kind"`
	DayOfWeek       int       `json:"day_of_week"`
	SpecificDate    *string   `json:"specific_date,omitempty"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	IsAvailable     *bool     `json:"is_available,omitempty"`
	MaxAppointments int       `json:"max_appointments"`
	Notes           *string   `json:"notes,omitempty"`
}

// SlotChanges carries a partial update. Nil fields keep the stored value, so
// a caller can change notes or capacity without re-stating the time range.
type SlotChanges struct {
	DayOfWeek         *int    `json:"day_of_week,omitempty"`
	SpecificDate      *string `json:"specific_date,omitempty"`
	ClearSpecificDate bool    `json:"clear_specific_date,omitempty"`
	StartTime         *string `json:"start_time,omitempty"`
	EndTime           *string `json:"end_time,omitempty"`
	IsAvailable       *bool   `json:"is_available,omitempty"`
	MaxAppointments   *int    `json:"max_appointments,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

// Actor identifies the authenticated caller for ownership checks. Elevated
// actors (staff and admins managing schedules on behalf of providers) may
// operate on any provider's slots.
type Actor struct {
	ProviderID uuid.UUID
	Elevated   bool
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
