package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/availability"
)

// SlotSource resolves the schedule slots active for a provider on a date.
// The availability service satisfies it.
type SlotSource interface {
	DayView(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*availability.ScheduleSlot, error)
}

type Service struct {
	appts AppointmentRepository
	slots SlotSource
	tx    availability.TxRunner
}

func NewService(appts AppointmentRepository, slots SlotSource, tx availability.TxRunner) *Service {
	return &Service{appts: appts, slots: slots, tx: tx}
}

func (s *Service) runTx(ctx context.Context, fn func(context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

// Book validates a booking request against the provider's availability for
// the requested date and creates the appointment. A patient may only book
// for themselves; staff and admins may book on any patient's behalf. The
// capacity check and the insert run in one transaction so two concurrent
// bookings cannot both take the last opening of a slot.
func (s *Service) Book(ctx context.Context, actor Actor, req BookingRequest) (*Appointment, error) {
	if !actor.Elevated && req.PatientID != actor.UserID {
		return nil, ErrNotAuthorized
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}

	start, err := availability.ParseClockTime(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := availability.ParseClockTime(req.EndTime)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ProviderID:  req.ProviderID,
		PatientID:   req.PatientID,
		Date:        date.UTC(),
		StartMinute: start,
		EndMinute:   end,
		Status:      StatusBooked,
		Reason:      req.Reason,
	}
	if err := appt.Validate(); err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		slot, err := s.coveringSlot(ctx, appt)
		if err != nil {
			return err
		}

		booked, err := s.countBooked(ctx, appt.ProviderID, appt.Date, slot)
		if err != nil {
			return err
		}
		if booked >= slot.MaxAppointments {
			return ErrSlotFull
		}

		return s.appts.Create(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel marks a booked appointment cancelled. Cancelling an already
// cancelled appointment is a no-op. An appointment the actor is not party to
// is reported as not found so callers cannot tell which appointment ids exist.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.PartyTo(appt) {
		return nil, ErrNotFound
	}
	if appt.Status == StatusCancelled {
		return appt, nil
	}
	if err := s.appts.UpdateStatus(ctx, id, StatusCancelled); err != nil {
		return nil, err
	}
	appt.Status = StatusCancelled
	return appt, nil
}

// Get fetches one appointment. Like Cancel, foreign appointments read as not
// found.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	appt, err := s.appts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.PartyTo(appt) {
		return nil, ErrNotFound
	}
	return appt, nil
}

// ProviderDay returns all appointments for a provider on a date. A doctor
// sees only their own day; staff and admins see any provider's.
func (s *Service) ProviderDay(ctx context.Context, actor Actor, providerID uuid.UUID, date time.Time) ([]*Appointment, error) {
	if !actor.Elevated && providerID != actor.UserID {
		return nil, ErrNotAuthorized
	}
	return s.appts.ListByProviderDate(ctx, providerID, date)
}

// PatientHistory returns a patient's appointments, newest first. Patients
// may only read their own history.
func (s *Service) PatientHistory(ctx context.Context, actor Actor, patientID uuid.UUID, limit, offset int) ([]*Appointment, int, error) {
	if !actor.Elevated && patientID != actor.UserID {
		return nil, 0, ErrNotAuthorized
	}
	return s.appts.ListByPatient(ctx, patientID, limit, offset)
}

// coveringSlot finds an available schedule slot that fully contains the
// requested time range on the requested date.
func (s *Service) coveringSlot(ctx context.Context, appt *Appointment) (*availability.ScheduleSlot, error) {
	slots, err := s.slots.DayView(ctx, appt.ProviderID, appt.Date)
	if err != nil {
		return nil, err
	}
	for _, slot := range slots {
		if !slot.IsAvailable {
			continue
		}
		if slot.StartMinute <= appt.StartMinute && appt.EndMinute <= slot.EndMinute {
			return slot, nil
		}
	}
	return nil, ErrSlotUnavailable
}

// countBooked counts booked appointments on the date that fall inside the
// slot's range.
func (s *Service) countBooked(ctx context.Context, providerID uuid.UUID, date time.Time, slot *availability.ScheduleSlot) (int, error) {
	appts, err := s.appts.ListByProviderDate(ctx, providerID, date)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, a := range appts {
		if a.Status != StatusBooked {
			continue
		}
		if a.StartMinute < slot.EndMinute && slot.StartMinute < a.EndMinute {
			count++
		}
	}
	return count, nil
}
