package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service is the only writer of schedule slots. Every mutation normalizes
// times, resolves the comparison scope, and runs the overlap check before
// touching the store. The check and the write share one transaction when a
// TxRunner is configured.
type Service struct {
	slots SlotRepository
	tx    TxRunner
}

// NewService creates the availability service. tx may be nil, in which case
// mutations run without transactional protection (tests, in-memory stores).
func NewService(slots SlotRepository, tx TxRunner) *Service {
	return &Service{slots: slots, tx: tx}
}

func (s *Service) runTx(ctx context.Context, fn func(context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.InTx(ctx, fn)
}

// CreateSlot validates the candidate and persists it unless its interval
// overlaps an existing slot in scope. On conflict it returns a
// *ConflictError naming the blocking slot and writes nothing.
func (s *Service) CreateSlot(ctx context.Context, actor Actor, cand SlotCandidate) (*ScheduleSlot, error) {
	if !actor.Elevated && actor.ProviderID != cand.ProviderID {
		return nil, ErrNotAuthorized
	}

	slot, err := s.normalize(cand)
	if err != nil {
		return nil, err
	}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		scope, err := s.conflictScope(ctx, slot)
		if err != nil {
			return err
		}
		if c := findConflict(scope, slot.StartMinute, slot.EndMinute, uuid.Nil); c != nil {
			return &ConflictError{SlotID: c.ID, StartMinute: c.StartMinute, EndMinute: c.EndMinute}
		}
		return s.slots.Create(ctx, slot)
	})
	if err != nil {
		return nil, err
	}
	return slot, nil
}

// UpdateSlot merges the given changes into the stored slot and re-validates
// against the same rules as create, excluding the slot itself from the
// overlap scan. The stored row is untouched on any failure.
func (s *Service) UpdateSlot(ctx context.Context, actor Actor, id uuid.UUID, ch SlotChanges) (*ScheduleSlot, error) {
	var updated *ScheduleSlot
	err := s.runTx(ctx, func(ctx context.Context) error {
		slot, err := s.slots.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !actor.Elevated && slot.ProviderID != actor.ProviderID {
			return ErrNotAuthorized
		}

		if err := applyChanges(slot, ch); err != nil {
			return err
		}
		if err := slot.Validate(); err != nil {
			return err
		}

		scope, err := s.conflictScope(ctx, slot)
		if err != nil {
			return err
		}
		if c := findConflict(scope, slot.StartMinute, slot.EndMinute, slot.ID); c != nil {
			return &ConflictError{SlotID: c.ID, StartMinute: c.StartMinute, EndMinute: c.EndMinute}
		}
		if err := s.slots.Update(ctx, slot); err != nil {
			return err
		}
		updated = slot
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteSlot removes the slot permanently. A slot the actor does not own is
// reported as not found so callers cannot tell which slot ids exist.
// Existing appointments are never cascaded.
func (s *Service) DeleteSlot(ctx context.Context, actor Actor, id uuid.UUID) error {
	slot, err := s.slots.GetByID(ctx, id)
	if err != nil {
		return ErrNotFound
	}
	if !actor.Elevated && slot.ProviderID != actor.ProviderID {
		return ErrNotFound
	}
	return s.slots.Delete(ctx, id)
}

// GetSlot fetches a single slot by id.
func (s *Service) GetSlot(ctx context.Context, id uuid.UUID) (*ScheduleSlot, error) {
	return s.slots.GetByID(ctx, id)
}

// ListProviderSlots returns a provider's slots, recurring and specific alike.
func (s *Service) ListProviderSlots(ctx context.Context, providerID uuid.UUID, limit, offset int) ([]*ScheduleSlot, int, error) {
	return s.slots.ListByProvider(ctx, providerID, limit, offset)
}

// DayView resolves the set of slots active on one calendar date: the union
// of recurring slots matching the weekday and specific-date slots matching
// the exact date, ordered by start minute.
func (s *Service) DayView(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*ScheduleSlot, error) {
	return s.slots.ListActiveOn(ctx, providerID, date)
}

// ImportItem reports the outcome of one candidate in a batch import.
type ImportItem struct {
	Index  int        `json:"index"`
	SlotID *uuid.UUID `json:"slot_id,omitempty"`
	Error  string     `json:"error,omitempty"`
}

// ImportReport summarizes a batch import.
type ImportReport struct {
	Created int          `json:"created"`
	Failed  int          `json:"failed"`
	Items   []ImportItem `json:"items"`
}

// ImportSlots processes candidates in input order with per-item commit
// semantics: a conflicting candidate is rejected individually and the rest
// still go through. Because each accepted item is persisted before the next
// is checked, conflicts between candidates within the same batch are caught
// the same way as conflicts with pre-existing slots.
func (s *Service) ImportSlots(ctx context.Context, actor Actor, candidates []SlotCandidate) (*ImportReport, error) {
	report := &ImportReport{Items: make([]ImportItem, 0, len(candidates))}
	for i, cand := range candidates {
		item := ImportItem{Index: i}
		slot, err := s.CreateSlot(ctx, actor, cand)
		if err != nil {
			item.Error = err.Error()
			report.Failed++
		} else {
			item.SlotID = &slot.ID
			report.Created++
		}
		report.Items = append(report.Items, item)
	}
	return report, nil
}

// normalize converts a raw candidate into a canonical slot: times parsed to
// minutes, specific dates truncated to day precision with day_of_week kept
// in sync, defaults applied.
func (s *Service) normalize(cand SlotCandidate) (*ScheduleSlot, error) {
	start, err := ParseClockTime(cand.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClockTime(cand.EndTime)
	if err != nil {
		return nil, err
	}

	slot := &ScheduleSlot{
		ProviderID:      cand.ProviderID,
		ProviderKind:    cand.ProviderKind,
		DayOfWeek:       cand.DayOfWeek,
		StartMinute:     start,
		EndMinute:       end,
		IsAvailable:     true,
		MaxAppointments: cand.MaxAppointments,
		Notes:           cand.Notes,
	}
	if cand.IsAvailable != nil {
		slot.IsAvailable = *cand.IsAvailable
	}
	if slot.MaxAppointments == 0 {
		slot.MaxAppointments = 1
	}
	if cand.SpecificDate != nil {
		d, err := ParseDate(*cand.SpecificDate)
		if err != nil {
			return nil, err
		}
		slot.SpecificDate = &d
		slot.DayOfWeek = int(d.Weekday())
	}
	return slot, nil
}

func applyChanges(slot *ScheduleSlot, ch SlotChanges) error {
	if ch.DayOfWeek != nil {
		slot.DayOfWeek = *ch.DayOfWeek
	}
	if ch.ClearSpecificDate {
		slot.SpecificDate = nil
	} else if ch.SpecificDate != nil {
		d, err := ParseDate(*ch.SpecificDate)
		if err != nil {
			return err
		}
		slot.SpecificDate = &d
		slot.DayOfWeek = int(d.Weekday())
	}
	if ch.StartTime != nil {
		start, err := ParseClockTime(*ch.StartTime)
		if err != nil {
			return err
		}
		slot.StartMinute = start
	}
	if ch.EndTime != nil {
		end, err := ParseClockTime(*ch.EndTime)
		if err != nil {
			return err
		}
		slot.EndMinute = end
	}
	if ch.IsAvailable != nil {
		slot.IsAvailable = *ch.IsAvailable
	}
	if ch.MaxAppointments != nil {
		slot.MaxAppointments = *ch.MaxAppointments
	}
	if ch.Notes != nil {
		slot.Notes = ch.Notes
	}
	return nil
}

// conflictScope fetches the stored slots a candidate must be compared
// against. A specific-date candidate competes with everything active on that
// date. A recurring candidate competes only with other recurring slots on
// the same weekday; specific-date slots act as overrides for their single
// date and do not block a weekly rule.
func (s *Service) conflictScope(ctx context.Context, slot *ScheduleSlot) ([]*ScheduleSlot, error) {
	if slot.SpecificDate != nil {
		return s.slots.ListActiveOn(ctx, slot.ProviderID, *slot.SpecificDate)
	}
	return s.slots.ListRecurring(ctx, slot.ProviderID, slot.DayOfWeek)
}

// overlaps tests two half-open intervals. Intervals that merely touch at a
// boundary do not overlap.
func overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// findConflict returns the first stored slot whose interval overlaps
// [start, end), skipping exclude (the slot being updated). The scope is
// ordered by start minute, which makes the reported conflict deterministic.
func findConflict(scope []*ScheduleSlot, start, end int, exclude uuid.UUID) *ScheduleSlot {
	for _, existing := range scope {
		if existing.ID == exclude {
			continue
		}
		if overlaps(start, end, existing.StartMinute, existing.EndMinute) {
			return existing
		}
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
