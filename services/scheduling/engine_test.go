package scheduling

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"

	slotRepo "slotify/database/repository/slot"
	"slotify/models"
)

// fakeSlotRepo is an in-memory SlotRepository. BookIfFree performs the same
// conditional update the Mongo implementation does, under a mutex, so booking
// races against it behave like races against the real store.
type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]models.Slot

	findErr   error
	listErr   error
	createErr error
	bookErr   error
	getErr    error

	// forceBookFailure makes every BookIfFree report a lost race without
	// changing state.
	forceBookFailure bool

	// beforeBook runs at the top of BookIfFree, outside the lock, to let a
	// test interleave a competing write.
	beforeBook func(slotID string)

	bookCalls int
}

var _ slotRepo.SlotRepository = (*fakeSlotRepo)(nil)

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]models.Slot)}
}

func (f *fakeSlotRepo) seed(slot models.Slot) models.Slot {
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	f.slots[slot.ID] = slot
	return slot
}

func (f *fakeSlotRepo) markBooked(slotID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	slot := f.slots[slotID]
	slot.Booked = true
	f.slots[slotID] = slot
}

func (f *fakeSlotRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slots)
}

func (f *fakeSlotRepo) bookAttempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bookCalls
}

func (f *fakeSlotRepo) Create(ctx context.Context, slot models.Slot) (*models.Slot, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.New().String()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}
	f.slots[slot.ID] = slot
	return &slot, nil
}

func (f *fakeSlotRepo) GetByID(ctx context.Context, slotID string) (*models.Slot, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	slot, ok := f.slots[slotID]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &slot, nil
}

func (f *fakeSlotRepo) FindOverlapping(ctx context.Context, start, end time.Time) ([]models.Slot, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Slot
	for _, s := range f.slots {
		if s.StartTime.Before(end) && start.Before(s.EndTime) {
			out = append(out, s)
		}
	}
	sortByStart(out)
	return out, nil
}

func (f *fakeSlotRepo) ListUnbooked(ctx context.Context, start, end time.Time) ([]models.Slot, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Slot
	for _, s := range f.slots {
		if !s.Booked && s.StartTime.Before(end) && start.Before(s.EndTime) {
			out = append(out, s)
		}
	}
	sortByStart(out)
	return out, nil
}

func (f *fakeSlotRepo) BookIfFree(ctx context.Context, slotID string, meeting models.MeetingRequest) (bool, error) {
	if f.bookErr != nil {
		return false, f.bookErr
	}
	if f.beforeBook != nil {
		f.beforeBook(slotID)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bookCalls++
	if f.forceBookFailure {
		return false, nil
	}
	slot, ok := f.slots[slotID]
	if !ok || slot.Booked {
		return false, nil
	}
	slot.Booked = true
	slot.Title = meeting.Title
	slot.Description = meeting.Description
	slot.Name = meeting.Name
	slot.PhoneNumber = meeting.PhoneNumber
	f.slots[slotID] = slot
	return true, nil
}

func (f *fakeSlotRepo) DeleteUnbookedEndingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var removed int64
	for id, s := range f.slots {
		if !s.Booked && s.EndTime.Before(cutoff) {
			delete(f.slots, id)
			removed++
		}
	}
	return removed, nil
}

func (f *fakeSlotRepo) EnsureIndexes() error { return nil }

func sortByStart(slots []models.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartTime.Before(slots[j].StartTime)
	})
}

func newTestEngine(repo *fakeSlotRepo) *DefaultSchedulingEngine {
	return &DefaultSchedulingEngine{Repo: repo}
}

func meetingAt(start, end time.Time) models.MeetingRequest {
	return models.MeetingRequest{
		Title:       "Planning sync",
		Description: "Quarterly planning",
		Name:        "Dana",
		PhoneNumber: "+15550100",
		StartTime:   start,
		EndTime:     end,
	}
}

func TestBookMeeting_InvalidRange(t *testing.T) {
	tests := []struct {
		name  string
		start time.Time
		end   time.Time
	}{
		{"zero start", time.Time{}, at(14, 0)},
		{"zero end", at(14, 0), time.Time{}},
		{"start equals end", at(14, 0), at(14, 0)},
		{"start after end", at(15, 0), at(14, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSlotRepo()
			engine := newTestEngine(repo)

			slot, err := engine.BookMeeting(context.Background(), meetingAt(tt.start, tt.end))

			assert.Nil(t, slot)
			assert.True(t, IsInvalidRange(err), "expected invalid_range, got %v", err)
			assert.Equal(t, 0, repo.count(), "validation failures must not touch the store")
		})
	}
}

func TestBookMeeting_CreatesBookedSlotWhenNothingOffered(t *testing.T) {
	repo := newFakeSlotRepo()
	engine := newTestEngine(repo)

	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))

	require.NoError(t, err)
	require.NotNil(t, slot)
	assert.NotEmpty(t, slot.ID)
	assert.True(t, slot.Booked)
	assert.Equal(t, "Planning sync", slot.Title)
	assert.Equal(t, "Dana", slot.Name)
	assert.True(t, slot.StartTime.Equal(at(14, 0)))
	assert.True(t, slot.EndTime.Equal(at(14, 30)))
	assert.Equal(t, 1, repo.count())
}

func TestBookMeeting_NormalizesToUTC(t *testing.T) {
	repo := newFakeSlotRepo()
	engine := newTestEngine(repo)

	nairobi := time.FixedZone("EAT", 3*60*60)
	req := meetingAt(
		time.Date(2025, 6, 5, 17, 0, 0, 0, nairobi),
		time.Date(2025, 6, 5, 17, 30, 0, 0, nairobi),
	)

	slot, err := engine.BookMeeting(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, time.UTC, slot.StartTime.Location())
	assert.True(t, slot.StartTime.Equal(at(14, 0)))
	assert.True(t, slot.EndTime.Equal(at(14, 30)))
}

func TestBookMeeting_ClaimsExactOfferedSlot(t *testing.T) {
	repo := newFakeSlotRepo()
	offered := repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(14, 30), Booked: false})
	engine := newTestEngine(repo)

	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))

	require.NoError(t, err)
	assert.Equal(t, offered.ID, slot.ID, "must claim the existing offer, not create a new slot")
	assert.True(t, slot.Booked)
	assert.Equal(t, "Planning sync", slot.Title)
	assert.Equal(t, "+15550100", slot.PhoneNumber)
	assert.Equal(t, 1, repo.count())

	stored, err := repo.GetByID(context.Background(), offered.ID)
	require.NoError(t, err)
	assert.True(t, stored.Booked)
	assert.Equal(t, "Dana", stored.Name)
}

func TestBookMeeting_RejectsOverlapWithBookedSlot(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(15, 0), Booked: true})
	engine := newTestEngine(repo)

	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 30), at(15, 30)))

	assert.Nil(t, slot)
	assert.True(t, IsConflict(err), "expected conflict, got %v", err)
	assert.Equal(t, 1, repo.count(), "rejected bookings must not write")
	assert.Equal(t, 0, repo.bookAttempts())
}

func TestBookMeeting_AllowsTouchingBookedSlots(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.seed(models.Slot{StartTime: at(13, 0), EndTime: at(14, 0), Booked: true})
	repo.seed(models.Slot{StartTime: at(15, 0), EndTime: at(15, 30), Booked: true})
	engine := newTestEngine(repo)

	// [14:00, 15:00) touches both neighbours; half-open intervals do not
	// conflict at shared endpoints.
	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(15, 0)))

	require.NoError(t, err)
	assert.True(t, slot.Booked)
	assert.Equal(t, 3, repo.count())
}

func TestBookMeeting_IgnoresInexactOfferedOverlap(t *testing.T) {
	repo := newFakeSlotRepo()
	offered := repo.seed(models.Slot{StartTime: at(13, 30), EndTime: at(14, 30), Booked: false})
	engine := newTestEngine(repo)

	// The offer overlaps the request but does not match it exactly, so the
	// booking lands in a fresh slot and the offer stays open.
	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(15, 0)))

	require.NoError(t, err)
	assert.NotEqual(t, offered.ID, slot.ID)
	assert.Equal(t, 2, repo.count())

	stored, err := repo.GetByID(context.Background(), offered.ID)
	require.NoError(t, err)
	assert.False(t, stored.Booked)
}

func TestBookMeeting_LostRaceSurfacesConflict(t *testing.T) {
	repo := newFakeSlotRepo()
	offered := repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(14, 30), Booked: false})
	// A competing booking lands between the overlap scan and the claim.
	repo.beforeBook = func(slotID string) {
		repo.beforeBook = nil
		repo.markBooked(slotID)
	}
	engine := newTestEngine(repo)

	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))

	assert.Nil(t, slot)
	assert.True(t, IsConflict(err), "expected conflict after lost race, got %v", err)
	assert.Equal(t, 1, repo.bookAttempts(), "retry must re-scan, not blindly re-claim")

	stored, getErr := repo.GetByID(context.Background(), offered.ID)
	require.NoError(t, getErr)
	assert.True(t, stored.Booked, "the competing booking must stand")
}

func TestBookMeeting_GivesUpAfterSingleRetry(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(14, 30), Booked: false})
	repo.forceBookFailure = true
	engine := newTestEngine(repo)

	slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))

	assert.Nil(t, slot)
	assert.True(t, IsConflict(err), "expected conflict, got %v", err)
	assert.Equal(t, 2, repo.bookAttempts(), "one initial claim plus exactly one retry")
}

func TestBookMeeting_ConcurrentClaimsSingleWinner(t *testing.T) {
	repo := newFakeSlotRepo()
	offered := repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(14, 30), Booked: false})
	engine := newTestEngine(repo)

	const callers = 2
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		switch {
		case err == nil:
			wins++
		case IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, wins, "exactly one caller may book the slot")
	assert.Equal(t, callers-1, conflicts)
	assert.Equal(t, 1, repo.count(), "losers must not create duplicate slots")

	stored, err := repo.GetByID(context.Background(), offered.ID)
	require.NoError(t, err)
	assert.True(t, stored.Booked)
}

func TestBookMeeting_StoreFailuresAreUnavailable(t *testing.T) {
	boom := errors.New("socket was unexpectedly closed")

	tests := []struct {
		name  string
		setup func(*fakeSlotRepo)
	}{
		{"overlap scan fails", func(f *fakeSlotRepo) {
			f.findErr = boom
		}},
		{"claim fails", func(f *fakeSlotRepo) {
			f.seed(models.Slot{StartTime: at(14, 0), EndTime: at(14, 30), Booked: false})
			f.bookErr = boom
		}},
		{"insert fails", func(f *fakeSlotRepo) {
			f.createErr = boom
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeSlotRepo()
			tt.setup(repo)
			engine := newTestEngine(repo)

			slot, err := engine.BookMeeting(context.Background(), meetingAt(at(14, 0), at(14, 30)))

			assert.Nil(t, slot)
			assert.True(t, IsUnavailable(err), "expected unavailable, got %v", err)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestGetFreeSlots_ReturnsOnlyUnbookedInWindow(t *testing.T) {
	repo := newFakeSlotRepo()
	early := repo.seed(models.Slot{StartTime: at(9, 0), EndTime: at(9, 30), Booked: false})
	late := repo.seed(models.Slot{StartTime: at(16, 0), EndTime: at(16, 30), Booked: false})
	repo.seed(models.Slot{StartTime: at(12, 0), EndTime: at(13, 0), Booked: true})
	// Outside the window: fully before, ending exactly at the window start,
	// and starting exactly at the window end.
	repo.seed(models.Slot{StartTime: at(7, 0), EndTime: at(8, 0), Booked: false})
	repo.seed(models.Slot{StartTime: at(8, 0), EndTime: at(9, 0), Booked: false})
	repo.seed(models.Slot{StartTime: at(17, 0), EndTime: at(18, 0), Booked: false})
	engine := newTestEngine(repo)

	slots, err := engine.GetFreeSlots(context.Background(), at(9, 0), at(17, 0))

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, early.ID, slots[0].ID, "results ordered by start time")
	assert.Equal(t, late.ID, slots[1].ID)
	for _, s := range slots {
		assert.False(t, s.Booked)
	}
}

func TestGetFreeSlots_InvalidRange(t *testing.T) {
	engine := newTestEngine(newFakeSlotRepo())

	slots, err := engine.GetFreeSlots(context.Background(), at(15, 0), at(14, 0))

	assert.Nil(t, slots)
	assert.True(t, IsInvalidRange(err), "expected invalid_range, got %v", err)
}

func TestGetFreeSlots_ReadsAreIdempotent(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.seed(models.Slot{StartTime: at(10, 0), EndTime: at(10, 30), Booked: false})
	repo.seed(models.Slot{StartTime: at(11, 0), EndTime: at(11, 30), Booked: false})
	engine := newTestEngine(repo)

	first, err := engine.GetFreeSlots(context.Background(), at(9, 0), at(17, 0))
	require.NoError(t, err)
	second, err := engine.GetFreeSlots(context.Background(), at(9, 0), at(17, 0))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, repo.count())
}

func TestGetFreeSlots_StoreFailureIsUnavailable(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.listErr = errors.New("no reachable servers")
	engine := newTestEngine(repo)

	slots, err := engine.GetFreeSlots(context.Background(), at(9, 0), at(17, 0))

	assert.Nil(t, slots)
	assert.True(t, IsUnavailable(err), "expected unavailable, got %v", err)
}

func TestAddPotentialSlot_AllowsOverlapWithBooked(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.seed(models.Slot{StartTime: at(14, 0), EndTime: at(15, 0), Booked: true})
	engine := newTestEngine(repo)

	// Offers are recorded without a conflict check, even over booked time.
	slot, err := engine.AddPotentialSlot(context.Background(), meetingAt(at(14, 0), at(15, 0)))

	require.NoError(t, err)
	assert.False(t, slot.Booked)
	assert.NotEmpty(t, slot.ID)
	assert.Equal(t, 2, repo.count())
}

func TestAddPotentialSlot_ImmediatelyListedAsFree(t *testing.T) {
	repo := newFakeSlotRepo()
	engine := newTestEngine(repo)

	created, err := engine.AddPotentialSlot(context.Background(), meetingAt(at(14, 0), at(15, 0)))
	require.NoError(t, err)

	slots, err := engine.GetFreeSlots(context.Background(), at(9, 0), at(17, 0))

	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, created.ID, slots[0].ID, "a fresh offer must appear in the next free-slot query")
}

func TestAddPotentialSlot_InvalidRange(t *testing.T) {
	repo := newFakeSlotRepo()
	engine := newTestEngine(repo)

	slot, err := engine.AddPotentialSlot(context.Background(), meetingAt(at(14, 0), at(14, 0)))

	assert.Nil(t, slot)
	assert.True(t, IsInvalidRange(err), "expected invalid_range, got %v", err)
	assert.Equal(t, 0, repo.count())
}

func TestGetSlot_ReturnsSlot(t *testing.T) {
	repo := newFakeSlotRepo()
	seeded := repo.seed(models.Slot{StartTime: at(10, 0), EndTime: at(10, 30), Booked: false})
	engine := newTestEngine(repo)

	slot, err := engine.GetSlot(context.Background(), seeded.ID)

	require.NoError(t, err)
	assert.Equal(t, seeded.ID, slot.ID)
}

func TestGetSlot_NotFound(t *testing.T) {
	engine := newTestEngine(newFakeSlotRepo())

	slot, err := engine.GetSlot(context.Background(), "no-such-id")

	assert.Nil(t, slot)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}

func TestGetSlot_StoreFailureIsUnavailable(t *testing.T) {
	repo := newFakeSlotRepo()
	repo.getErr = errors.New("context deadline exceeded")
	engine := newTestEngine(repo)

	slot, err := engine.GetSlot(context.Background(), "any")

	assert.Nil(t, slot)
	assert.True(t, IsUnavailable(err), "expected unavailable, got %v", err)
}
