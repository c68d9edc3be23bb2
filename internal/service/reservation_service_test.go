package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studyroom/reservation-service/internal/models"
	"github.com/studyroom/reservation-service/internal/repository"
	"github.com/studyroom/reservation-service/internal/timeslot"
)

const (
	day     = "2026-03-02"
	nextDay = "2026-03-03"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) set(t *testing.T, date, hhmm string) {
	t.Helper()
	at, err := timeslot.Combine(date, hhmm)
	require.NoError(t, err)
	f.now = at
}

type recordingPublisher struct {
	keys []string
}

func (p *recordingPublisher) Publish(key string, payload any) error {
	p.keys = append(p.keys, key)
	return nil
}

func (p *recordingPublisher) count(key string) int {
	n := 0
	for _, k := range p.keys {
		if k == key {
			n++
		}
	}
	return n
}

func newTestEngine(t *testing.T, policy Policy) (ReservationService, *repository.MemoryStore, *fakeClock, *recordingPublisher) {
	t.Helper()
	store := repository.NewMemoryStore()
	clock := &fakeClock{}
	clock.set(t, day, "09:00")
	events := &recordingPublisher{}
	return NewReservationService(store, events, clock, policy), store, clock, events
}

func submitInput() SubmitInput {
	return SubmitInput{
		Department: "Food Science",
		RepName:    "Kim Jiwoo",
		RepID:      "2024123456",
		PartySize:  3,
		Date:       day,
		StartTime:  "10:00",
		EndTime:    "11:00",
		RoomID:     "room1",
	}
}

func TestSubmit_Success(t *testing.T) {
	svc, store, _, events := newTestEngine(t, DefaultPolicy())

	rec, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	assert.NotZero(t, rec.ID)
	assert.Equal(t, models.StatusNotCheckedIn, rec.Status)
	assert.Equal(t, "room1", rec.RoomID)

	rows, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, events.count("reservation.created"))
}

func TestSubmit_InvalidIdentity(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	cases := []func(*SubmitInput){
		func(in *SubmitInput) { in.RepName = "  " },
		func(in *SubmitInput) { in.RepID = "2024" },
		func(in *SubmitInput) { in.RepID = "20241234ab" },
		func(in *SubmitInput) { in.TeamMemberIDs = []string{"bad"} },
	}
	for _, mutate := range cases {
		in := submitInput()
		mutate(&in)
		_, err := svc.Submit(context.Background(), in)
		assert.ErrorIs(t, err, ErrInvalidIdentity)
	}
}

func TestSubmit_BelowMinimumParty(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	in := submitInput()
	in.PartySize = 2
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrBelowMinimumParty)
}

func TestSubmit_DurationCap(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	in := submitInput()
	in.StartTime, in.EndTime = "09:00", "13:00" // 4 hours
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrDurationExceeded)

	in.StartTime, in.EndTime = "09:00", "12:00" // exactly 3 hours
	_, err = svc.Submit(context.Background(), in)
	assert.NoError(t, err)
}

func TestSubmit_BackToBackAllowed(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	second := submitInput()
	second.RepName, second.RepID = "Lee Haeun", "2024987654"
	second.StartTime, second.EndTime = "11:00", "12:00"
	_, err = svc.Submit(context.Background(), second)
	assert.NoError(t, err)
}

func TestSubmit_TimeConflict(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	first := submitInput()
	first.StartTime, first.EndTime = "10:00", "12:00"
	_, err := svc.Submit(context.Background(), first)
	require.NoError(t, err)

	second := submitInput()
	second.RepName, second.RepID = "Lee Haeun", "2024987654"
	second.StartTime, second.EndTime = "10:30", "11:00"
	_, err = svc.Submit(context.Background(), second)
	assert.ErrorIs(t, err, ErrTimeConflict)

	// Same window in the other room is fine.
	second.RoomID = "room2"
	_, err = svc.Submit(context.Background(), second)
	assert.NoError(t, err)
}

func TestSubmit_OnePerDay(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	// Same person, same day, different room and time: rejected.
	second := submitInput()
	second.RoomID = "room2"
	second.StartTime, second.EndTime = "13:00", "14:00"
	_, err = svc.Submit(context.Background(), second)
	assert.ErrorIs(t, err, ErrDuplicateBooking)

	// Next day succeeds.
	second.Date = nextDay
	_, err = svc.Submit(context.Background(), second)
	assert.NoError(t, err)
}

func TestSubmit_TeamMemberSharesOnePerDay(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	first := submitInput()
	first.TeamMemberIDs = []string{"2024000002", "2024000003"}
	_, err := svc.Submit(context.Background(), first)
	require.NoError(t, err)

	// A team member of the first booking cannot represent a second one.
	second := submitInput()
	second.RepName, second.RepID = "Park Minseo", "2024000003"
	second.StartTime, second.EndTime = "13:00", "14:00"
	second.RoomID = "room2"
	_, err = svc.Submit(context.Background(), second)
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.Contains(t, err.Error(), "2024000003")
}

func TestSubmit_Validation(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	in := submitInput()
	in.RoomID = "room9"
	_, err := svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrUnknownRoom)

	in = submitInput()
	in.StartTime = "10:15"
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	in = submitInput()
	in.StartTime, in.EndTime = "11:00", "11:00"
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	in = submitInput()
	in.Date = "2026-03-01" // yesterday
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidDate)

	in = submitInput()
	in.Date = "2026-03-16" // beyond the 14-day horizon
	_, err = svc.Submit(context.Background(), in)
	assert.ErrorIs(t, err, ErrInvalidDate)

	in = submitInput()
	in.Date = "2026-03-15" // last day inside the horizon
	_, err = svc.Submit(context.Background(), in)
	assert.NoError(t, err)
}

func TestSubmit_RejectsUnpaddedTimes(t *testing.T) {
	svc, store, _, _ := newTestEngine(t, DefaultPolicy())

	first := submitInput()
	first.StartTime, first.EndTime = "08:00", "09:00"
	_, err := svc.Submit(context.Background(), first)
	require.NoError(t, err)

	// "9:00" parses as a clock time, but stored times are compared
	// lexicographically and "9:00" sorts after every padded slot of the day.
	// Letting it through would blind the follower bound on extension and
	// allow two live rows to overlap in one room.
	second := submitInput()
	second.RepName, second.RepID = "Lee Haeun", "2024987654"
	second.StartTime, second.EndTime = "9:00", "9:30"
	_, err = svc.Submit(context.Background(), second)
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	rows, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestExtend_RejectsUnpaddedNewEnd(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())
	checkedInBooking(t, svc, clock) // 10:00-11:00 room1

	// "9:30" > "11:00" lexicographically, so without the canonical-form
	// check this would slip past the end-time comparison entirely.
	clock.set(t, day, "10:35")
	_, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "9:30")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestNoShowExpiry(t *testing.T) {
	svc, store, clock, events := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput()) // 10:00-11:00
	require.NoError(t, err)

	// Within the 15-minute grace period the booking survives.
	clock.set(t, day, "10:14")
	rows, err := svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// Past the grace period the sweep removes it.
	clock.set(t, day, "10:16")
	_, err = svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	assert.ErrorIs(t, err, ErrNotFound)

	remaining, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, remaining)
	assert.Equal(t, 1, events.count("reservation.expired"))

	// Running the sweep again deletes nothing further.
	_, err = svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, events.count("reservation.expired"))
}

func TestNoShowExpiry_SkipsCheckedInAndOtherDays(t *testing.T) {
	svc, store, clock, _ := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	tomorrow := submitInput()
	tomorrow.Date = nextDay
	_, err = svc.Submit(context.Background(), tomorrow)
	require.NoError(t, err)

	clock.set(t, day, "09:55")
	_, err = svc.CheckIn(context.Background(), "room1")
	require.NoError(t, err)

	// Long past start+grace, but the checked-in row and tomorrow's row stay.
	clock.set(t, day, "10:30")
	rows, err := svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	remaining, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestCheckIn_Window(t *testing.T) {
	svc, _, clock, events := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput()) // 10:00-11:00 room1
	require.NoError(t, err)

	// Too early: the window opens 10 minutes before start.
	clock.set(t, day, "09:49")
	_, err = svc.CheckIn(context.Background(), "room1")
	assert.ErrorIs(t, err, ErrCheckinWindowMiss)

	// Wrong room.
	clock.set(t, day, "09:51")
	_, err = svc.CheckIn(context.Background(), "room2")
	assert.ErrorIs(t, err, ErrCheckinWindowMiss)

	rec, err := svc.CheckIn(context.Background(), "room1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, rec.Status)
	assert.Equal(t, 1, events.count("reservation.checked_in"))

	// A second scan after success is a plain failure, no mutation.
	_, err = svc.CheckIn(context.Background(), "room1")
	assert.ErrorIs(t, err, ErrCheckinWindowMiss)
	assert.Equal(t, 1, events.count("reservation.checked_in"))
}

func TestCheckIn_EndExclusive(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())

	// Booked late so the no-show grace (measured from the later of start and
	// submission) has not yet elapsed near the end of the window.
	clock.set(t, day, "10:50")
	_, err := svc.Submit(context.Background(), submitInput()) // 10:00-11:00
	require.NoError(t, err)

	clock.set(t, day, "10:59")
	rec, err := svc.CheckIn(context.Background(), "room1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, rec.Status)
}

func TestCheckIn_AtEndFails(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())

	clock.set(t, day, "10:50")
	_, err := svc.Submit(context.Background(), submitInput()) // 10:00-11:00
	require.NoError(t, err)

	clock.set(t, day, "11:00")
	_, err = svc.CheckIn(context.Background(), "room1")
	assert.ErrorIs(t, err, ErrCheckinWindowMiss)
}

func checkedInBooking(t *testing.T, svc ReservationService, clock *fakeClock) {
	t.Helper()
	clock.set(t, day, "09:00")
	_, err := svc.Submit(context.Background(), submitInput()) // 10:00-11:00 room1
	require.NoError(t, err)
	clock.set(t, day, "09:55")
	_, err = svc.CheckIn(context.Background(), "room1")
	require.NoError(t, err)
}

func TestExtend_Silent(t *testing.T) {
	svc, _, clock, events := newTestEngine(t, DefaultPolicy())
	checkedInBooking(t, svc, clock)

	// Outside the last 30 minutes.
	clock.set(t, day, "10:20")
	_, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:30")
	assert.ErrorIs(t, err, ErrExtensionWindowMiss)

	clock.set(t, day, "10:35")
	rec, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:30")
	require.NoError(t, err)
	assert.Equal(t, "11:30", rec.EndTime)
	assert.Equal(t, models.StatusCheckedIn, rec.Status)
	assert.Equal(t, 1, events.count("reservation.extended"))
}

func TestExtend_Conflict(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())
	checkedInBooking(t, svc, clock)

	// A follower holds 11:30-12:30 in the same room.
	clock.set(t, day, "09:00")
	follower := submitInput()
	follower.RepName, follower.RepID = "Lee Haeun", "2024987654"
	follower.StartTime, follower.EndTime = "11:30", "12:30"
	_, err := svc.Submit(context.Background(), follower)
	require.NoError(t, err)

	// Extending up to the follower's start is allowed, past it is not.
	clock.set(t, day, "10:35")
	_, err = svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "12:00")
	assert.ErrorIs(t, err, ErrExtensionConflict)

	rec, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:30")
	require.NoError(t, err)
	assert.Equal(t, "11:30", rec.EndTime)
}

func TestExtend_Validation(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())
	checkedInBooking(t, svc, clock)

	clock.set(t, day, "10:35")

	_, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:15")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "10:30")
	assert.ErrorIs(t, err, ErrInvalidTimeRange)

	_, err = svc.Extend(context.Background(), "Nobody", "2020000000", "11:30")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtend_RequiresCheckin(t *testing.T) {
	svc, _, clock, _ := newTestEngine(t, DefaultPolicy())

	clock.set(t, day, "10:50")
	_, err := svc.Submit(context.Background(), submitInput()) // still pending
	require.NoError(t, err)

	clock.set(t, day, "10:55")
	_, err = svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:30")
	assert.ErrorIs(t, err, ErrNotCheckedIn)
}

func TestExtend_ReverifyRearmsNoShowTimer(t *testing.T) {
	policy := DefaultPolicy()
	policy.ExtensionPolicy = ExtendReverify
	svc, _, clock, _ := newTestEngine(t, policy)
	checkedInBooking(t, svc, clock)

	clock.set(t, day, "10:35")
	rec, err := svc.Extend(context.Background(), "Kim Jiwoo", "2024123456", "11:30")
	require.NoError(t, err)
	assert.Equal(t, models.StatusNotCheckedIn, rec.Status)

	// Grace now runs from the extension moment: alive at 10:49,
	// swept at 10:51.
	clock.set(t, day, "10:49")
	rows, err := svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	clock.set(t, day, "10:51")
	_, err = svc.Lookup(context.Background(), "Kim Jiwoo", "2024123456")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCancel(t *testing.T) {
	svc, store, _, events := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	other := submitInput()
	other.Date = nextDay
	_, err = svc.Submit(context.Background(), other)
	require.NoError(t, err)

	// date + start_time disambiguates two bookings by the same person.
	err = svc.Cancel(context.Background(), "Kim Jiwoo", "2024123456", day, "10:00")
	require.NoError(t, err)
	assert.Equal(t, 1, events.count("reservation.cancelled"))

	rows, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, nextDay, rows[0].Date)

	err = svc.Cancel(context.Background(), "Kim Jiwoo", "2024123456", day, "10:00")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAdmin(t *testing.T) {
	svc, _, clock, events := newTestEngine(t, DefaultPolicy())

	rec, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	// The admin view is raw: no expiry sweep runs, so the stale pending row
	// is still visible long after its grace period.
	clock.set(t, day, "12:00")
	rows, err := svc.AdminList(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.AdminDelete(context.Background(), rec.ID))
	assert.Equal(t, 1, events.count("reservation.deleted"))

	assert.ErrorIs(t, svc.AdminDelete(context.Background(), rec.ID), ErrNotFound)
}

func TestRoomStatuses(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput()) // room1 10:00-11:00
	require.NoError(t, err)

	statuses, err := svc.RoomStatuses(context.Background(), day, "10:30")
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, "room1", statuses[0].RoomID)
	assert.True(t, statuses[0].Occupied)
	assert.Equal(t, models.StatusNotCheckedIn, statuses[0].Status)
	assert.Equal(t, "11:00", statuses[0].EndTime)

	assert.Equal(t, "room2", statuses[1].RoomID)
	assert.False(t, statuses[1].Occupied)

	// Before the slot the room is free and the booking shows as next.
	statuses, err = svc.RoomStatuses(context.Background(), day, "09:30")
	require.NoError(t, err)
	assert.False(t, statuses[0].Occupied)
	assert.Equal(t, "10:00", statuses[0].NextStart)

	// End is exclusive.
	statuses, err = svc.RoomStatuses(context.Background(), day, "11:00")
	require.NoError(t, err)
	assert.False(t, statuses[0].Occupied)
}

func TestLookup_TrimsInput(t *testing.T) {
	svc, _, _, _ := newTestEngine(t, DefaultPolicy())

	_, err := svc.Submit(context.Background(), submitInput())
	require.NoError(t, err)

	rows, err := svc.Lookup(context.Background(), "  Kim Jiwoo ", " 2024123456 ")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
