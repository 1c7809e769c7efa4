package scheduling

import (
	"context"
	"errors"
	"time"

	slotRepo "slotify/database/repository/slot"
	"slotify/models"
	"slotify/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// bookingAttempts bounds the claim loop in BookMeeting: one initial pass plus
// a single retry after a lost race.
const bookingAttempts = 2

// SchedulingEngine defines the stateful scheduling operations.
type SchedulingEngine interface {
	// BookMeeting commits a meeting over [start, end), either by claiming an
	// offered slot that matches the window exactly or by creating a new
	// booked slot. It never double-books a committed interval.
	BookMeeting(ctx context.Context, req models.MeetingRequest) (*models.Slot, error)
	// GetFreeSlots returns the unbooked slots overlapping [start, end),
	// ordered by start time.
	GetFreeSlots(ctx context.Context, start, end time.Time) ([]models.Slot, error)
	// AddPotentialSlot records an offered, unbooked slot. Potential slots may
	// overlap each other; only booked slots are mutually exclusive.
	AddPotentialSlot(ctx context.Context, req models.MeetingRequest) (*models.Slot, error)
	// GetSlot looks up a single slot by id.
	GetSlot(ctx context.Context, slotID string) (*models.Slot, error)
}

// DefaultSchedulingEngine is our production implementation. It is stateless
// and safe for concurrent use: all serialization of conflicting intent is
// pushed down to the store's conditional update.
type DefaultSchedulingEngine struct {
	Repo    slotRepo.SlotRepository
	Metrics *utils.Metrics
}

func (se *DefaultSchedulingEngine) BookMeeting(ctx context.Context, req models.MeetingRequest) (*models.Slot, error) {
	logger := utils.GetLogger()

	// 1. Validate before any I/O.
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if err := validateRange(start, end); err != nil {
		se.Metrics.IncBooking(CodeInvalidRange)
		return nil, err
	}

	for attempt := 0; attempt < bookingAttempts; attempt++ {
		// 2. Fetch every slot overlapping the requested window.
		t0 := time.Now()
		overlapping, err := se.Repo.FindOverlapping(ctx, start, end)
		se.Metrics.ObserveStoreOp("find_overlapping", time.Since(t0))
		if err != nil {
			se.Metrics.IncBooking(CodeUnavailable)
			return nil, NewUnavailableError("failed to query overlapping slots", err)
		}

		// 3. A committed slot anywhere in the window is a definitive rejection.
		if HasConflict(start, end, FilterBooked(overlapping)) {
			se.Metrics.IncBooking(CodeConflict)
			return nil, NewConflictError("requested range overlaps a booked slot")
		}

		// 4. Claim an offered slot matching the window exactly, if one exists.
		if candidate := findExactFreeSlot(overlapping, start, end); candidate != nil {
			t0 = time.Now()
			ok, err := se.Repo.BookIfFree(ctx, candidate.ID, req)
			se.Metrics.ObserveStoreOp("book_if_free", time.Since(t0))
			if err != nil {
				se.Metrics.IncBooking(CodeUnavailable)
				return nil, NewUnavailableError("failed to book slot", err)
			}
			if !ok {
				// Lost the race to a concurrent booking; re-run the whole
				// procedure once against current store state.
				logger.Warn("Lost booking race on offered slot",
					zap.String("slotID", candidate.ID), zap.Int("attempt", attempt+1))
				continue
			}
			booked := *candidate
			booked.Booked = true
			booked.Title = req.Title
			booked.Description = req.Description
			booked.Name = req.Name
			booked.PhoneNumber = req.PhoneNumber
			logger.Info("Booked offered slot",
				zap.String("slotID", booked.ID),
				zap.Time("start", booked.StartTime), zap.Time("end", booked.EndTime))
			se.Metrics.IncBooking("booked")
			return &booked, nil
		}

		// 5. No offered slot covers the window; commit a new booked record.
		// The gap between the conflict check above and this insert is a known
		// race window (the store has no insert-if-no-overlap primitive);
		// conflict resolution across callers remains first-committer-wins on
		// offered slots, best-effort here.
		t0 = time.Now()
		created, err := se.Repo.Create(ctx, models.Slot{
			Title:       req.Title,
			Description: req.Description,
			Name:        req.Name,
			PhoneNumber: req.PhoneNumber,
			StartTime:   start,
			EndTime:     end,
			Booked:      true,
		})
		se.Metrics.ObserveStoreOp("create", time.Since(t0))
		if err != nil {
			se.Metrics.IncBooking(CodeUnavailable)
			return nil, NewUnavailableError("failed to create booked slot", err)
		}
		logger.Info("Booked new slot",
			zap.String("slotID", created.ID),
			zap.Time("start", created.StartTime), zap.Time("end", created.EndTime))
		se.Metrics.IncBooking("booked")
		return created, nil
	}

	se.Metrics.IncBooking(CodeConflict)
	return nil, NewConflictError("slot was claimed by a concurrent booking")
}

func (se *DefaultSchedulingEngine) GetFreeSlots(ctx context.Context, start, end time.Time) ([]models.Slot, error) {
	start, end = start.UTC(), end.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	t0 := time.Now()
	slots, err := se.Repo.ListUnbooked(ctx, start, end)
	se.Metrics.ObserveStoreOp("list_unbooked", time.Since(t0))
	if err != nil {
		return nil, NewUnavailableError("failed to list free slots", err)
	}
	se.Metrics.IncFreeSlotQuery()
	return slots, nil
}

func (se *DefaultSchedulingEngine) AddPotentialSlot(ctx context.Context, req models.MeetingRequest) (*models.Slot, error) {
	start, end := req.StartTime.UTC(), req.EndTime.UTC()
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	// Potential slots are created unconditionally; overlap among offered
	// slots is allowed.
	t0 := time.Now()
	created, err := se.Repo.Create(ctx, models.Slot{
		Title:       req.Title,
		Description: req.Description,
		Name:        req.Name,
		PhoneNumber: req.PhoneNumber,
		StartTime:   start,
		EndTime:     end,
		Booked:      false,
	})
	se.Metrics.ObserveStoreOp("create", time.Since(t0))
	if err != nil {
		return nil, NewUnavailableError("failed to create potential slot", err)
	}
	se.Metrics.IncPotentialSlotCreated()
	return created, nil
}

func (se *DefaultSchedulingEngine) GetSlot(ctx context.Context, slotID string) (*models.Slot, error) {
	t0 := time.Now()
	slot, err := se.Repo.GetByID(ctx, slotID)
	se.Metrics.ObserveStoreOp("get_by_id", time.Since(t0))
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSlotNotFound
		}
		return nil, NewUnavailableError("failed to fetch slot", err)
	}
	return slot, nil
}

// validateRange rejects zero or inverted bounds before any store I/O.
func validateRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return NewInvalidRangeError("start and end times are required")
	}
	if !start.Before(end) {
		return NewInvalidRangeError("start time must be before end time")
	}
	return nil
}

// findExactFreeSlot returns the first unbooked slot whose interval equals
// [start, end) exactly, or nil.
func findExactFreeSlot(slots []models.Slot, start, end time.Time) *models.Slot {
	for i := range slots {
		s := &slots[i]
		if !s.Booked && s.StartTime.Equal(start) && s.EndTime.Equal(end) {
			return s
		}
	}
	return nil
}
