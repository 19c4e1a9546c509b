package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	bookingerrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/lifecycle"
	"slotkeeper/internal/bookings/validator"
	calendarservice "slotkeeper/internal/calendar/service"
	"slotkeeper/internal/occupancy"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/lock"
	"slotkeeper/pkg/logger"
	"slotkeeper/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryBookings struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	// readDelay widens the read-then-write window in race tests.
	readDelay time.Duration
	createErr error
}

func newMemoryBookings() *memoryBookings {
	return &memoryBookings{bookings: map[string]*model.Booking{}}
}

func (m *memoryBookings) Create(ctx context.Context, booking *model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	cp := *booking
	m.bookings[booking.ID] = &cp
	return nil
}

func (m *memoryBookings) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingerrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) FindOccupying(ctx context.Context, specialistID, date string) ([]*model.Booking, error) {
	if m.readDelay > 0 {
		time.Sleep(m.readDelay)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.SpecialistID == specialistID && b.Date == date && lifecycle.Occupying(b.Status) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out, nil
}

func (m *memoryBookings) UpdateStatus(ctx context.Context, id string, from, to model.BookingStatus) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, bookingerrors.ErrNotFound
	}
	if b.Status != from {
		return nil, bookingerrors.ErrStatusChanged
	}
	b.Status = to
	cp := *b
	return &cp, nil
}

func (m *memoryBookings) Search(ctx context.Context, filter *model.BookingFilter) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if filter.ClientID != "" && b.ClientID != filter.ClientID {
			continue
		}
		if filter.From != "" && b.Date < filter.From {
			continue
		}
		if filter.To != "" && b.Date > filter.To {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryBookings) Count(ctx context.Context, filter *model.BookingFilter) (int64, error) {
	out, err := m.Search(ctx, filter)
	return int64(len(out)), err
}

type noBlocks struct{}

func (noBlocks) FindByDay(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error) {
	return nil, nil
}

type mockCalendar struct {
	getDayFunc func(ctx context.Context, specialistID, date string) (*calendarservice.Day, error)
}

func (m *mockCalendar) GetDay(ctx context.Context, specialistID, date string) (*calendarservice.Day, error) {
	if m.getDayFunc != nil {
		return m.getDayFunc(ctx, specialistID, date)
	}
	w := daytime.NewRange(daytime.MustParseMinute("09:00"), daytime.MustParseMinute("12:00"))
	return &calendarservice.Day{
		Specialist: &model.Specialist{ID: specialistID},
		Date:       date,
		Window:     &w,
		Location:   time.UTC,
	}, nil
}

type mockCatalog struct {
	getServiceFunc func(ctx context.Context, id string) (*model.Service, error)
}

func (m *mockCatalog) GetService(ctx context.Context, id string) (*model.Service, error) {
	if m.getServiceFunc != nil {
		return m.getServiceFunc(ctx, id)
	}
	return &model.Service{ID: id, Name: "Haircut", DurationMin: 30}, nil
}

type mockDirectory struct {
	known map[string]bool
	err   error
}

func (m *mockDirectory) ClientExists(ctx context.Context, id string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	if m.known == nil {
		return true, nil
	}
	return m.known[id], nil
}

type testEnv struct {
	svc      *bookingService
	repo     *memoryBookings
	calendar *mockCalendar
	catalog  *mockCatalog
	clients  *mockDirectory
}

// Sunday 2026-10-25 08:00 UTC, the day before the Monday used below.
var testNow = time.Date(2026, 10, 25, 8, 0, 0, 0, time.UTC)

const monday = "2026-10-26"

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := logger.NewNop()
	repo := newMemoryBookings()
	env := &testEnv{
		repo:     repo,
		calendar: &mockCalendar{},
		catalog:  &mockCatalog{},
		clients:  &mockDirectory{},
	}

	svc := NewBookingService(Dependencies{
		Repo:       repo,
		Validator:  validator.NewBookingValidator(log),
		Calendar:   env.calendar,
		Catalog:    env.catalog,
		Clients:    env.clients,
		Occupancy:  occupancy.NewAggregator(repo, noBlocks{}),
		Serializer: lock.NewSerializer("local", lock.NewLocalLocker(2*time.Second), nil, log, nil),
	}, &config.Config{Log: log, DefaultTimeZone: "UTC"}).(*bookingService)
	svc.now = func() time.Time { return testNow }
	env.svc = svc
	return env
}

func request(clientID, start string) *model.BookingRequest {
	return &model.BookingRequest{
		SpecialistID: "sp-1",
		ServiceID:    "svc-1",
		ClientID:     clientID,
		Date:         monday,
		StartTime:    start,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, apperrors.AsAppError(err).Code, "error: %v", err)
}

func TestCreateBooking_InitialStatusByActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.CreateBooking(ctx, model.ClientActor("c-1"), request("c-1", "10:00"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, "10:00", b.Start.String())
	assert.Equal(t, "10:30", b.End.String())
	assert.Equal(t, model.RoleClient, b.CreatedBy)
	assert.NotEmpty(t, b.ID)

	admin, err := env.svc.CreateBooking(ctx, model.AdminActor(), request("c-2", "11:00"))
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, admin.Status)
}

func TestCreateBooking_ExampleScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CreateBooking(ctx, model.ClientActor("c-1"), request("c-1", "10:00"))
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(ctx, model.ClientActor("c-2"), request("c-2", "10:15"))
	assertCode(t, err, apperrors.CodeConflict)

	_, err = env.svc.CreateBooking(ctx, model.ClientActor("c-2"), request("c-2", "11:45"))
	assertCode(t, err, apperrors.CodeOutOfWindow)

	_, err = env.svc.CreateBooking(ctx, model.AdminActor(), request("c-2", "10:00"))
	assertCode(t, err, apperrors.CodeConflict)

	assert.Len(t, env.repo.bookings, 1, "rejected attempts must leave no trace")
}

func TestCreateBooking_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *model.BookingRequest
		code string
	}{
		{"nil request", nil, apperrors.CodeInvalidInput},
		{"missing specialist", &model.BookingRequest{ServiceID: "svc-1", ClientID: "c-1", Date: monday, StartTime: "10:00"}, apperrors.CodeValidation},
		{"bad date", &model.BookingRequest{SpecialistID: "sp-1", ServiceID: "svc-1", ClientID: "c-1", Date: "26/10/2026", StartTime: "10:00"}, apperrors.CodeValidation},
		{"bad time", request("c-1", "10:7"), apperrors.CodeValidation},
		{"start at midnight end", request("c-1", "24:00"), apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.CreateBooking(ctx, model.ClientActor("c-1"), tt.req)
			assertCode(t, err, tt.code)
		})
	}
}

func TestCreateBooking_ClientMayOnlyBookForThemselves(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.CreateBooking(context.Background(), model.ClientActor("c-1"), request("c-2", "10:00"))
	assertCode(t, err, apperrors.CodeForbidden)
}

func TestCreateBooking_UnknownReferences(t *testing.T) {
	ctx := context.Background()

	t.Run("specialist", func(t *testing.T) {
		env := newTestEnv(t)
		env.calendar.getDayFunc = func(ctx context.Context, id, date string) (*calendarservice.Day, error) {
			return nil, apperrors.NotFoundWithID("Specialist", id)
		}
		_, err := env.svc.CreateBooking(ctx, model.AdminActor(), request("c-1", "10:00"))
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("service", func(t *testing.T) {
		env := newTestEnv(t)
		env.catalog.getServiceFunc = func(ctx context.Context, id string) (*model.Service, error) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		_, err := env.svc.CreateBooking(ctx, model.AdminActor(), request("c-1", "10:00"))
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("client", func(t *testing.T) {
		env := newTestEnv(t)
		env.clients.known = map[string]bool{"c-2": true}
		_, err := env.svc.CreateBooking(ctx, model.AdminActor(), request("c-1", "10:00"))
		assertCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("directory down", func(t *testing.T) {
		env := newTestEnv(t)
		env.clients.err = errors.New("connection refused")
		_, err := env.svc.CreateBooking(ctx, model.AdminActor(), request("c-1", "10:00"))
		assertCode(t, err, apperrors.CodeUnavailable)
	})
}

func TestCreateBooking_PastDateTime(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time { return time.Date(2026, 10, 26, 10, 0, 0, 0, time.UTC) }

	_, err := env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:00"))
	assertCode(t, err, apperrors.CodePastDateTime)

	_, err = env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:30"))
	require.NoError(t, err)
}

func TestCreateBooking_NoWorkingWindow(t *testing.T) {
	env := newTestEnv(t)
	env.calendar.getDayFunc = func(ctx context.Context, id, date string) (*calendarservice.Day, error) {
		return &calendarservice.Day{Specialist: &model.Specialist{ID: id}, Date: date, Location: time.UTC}, nil
	}

	_, err := env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:00"))
	assertCode(t, err, apperrors.CodeOutOfWindow)
}

func TestCreateBooking_StorageErrorsAreNotConflicts(t *testing.T) {
	env := newTestEnv(t)
	env.repo.createErr = errors.New("write concern timeout")

	_, err := env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:00"))
	assertCode(t, err, apperrors.CodeInternal)

	env.repo.createErr = bookingerrors.ErrTimeConflict
	_, err = env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:00"))
	assertCode(t, err, apperrors.CodeConflict)
}

func TestCreateBooking_ConcurrentOverlapsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	env.repo.readDelay = 10 * time.Millisecond

	starts := []string{"10:00", "10:15"}
	errs := make([]error, len(starts))

	var wg sync.WaitGroup
	for i, start := range starts {
		i, start := i, start
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", start))
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperrors.HasCode(err, apperrors.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, env.repo.bookings, 1)
}

func TestCreateBooking_LockTimeoutIsConflict(t *testing.T) {
	env := newTestEnv(t)
	locker := lock.NewLocalLocker(20 * time.Millisecond)
	env.svc.serializer = lock.NewSerializer("local", locker, nil, logger.NewNop(), nil)

	release, err := locker.Acquire(context.Background(), lock.Key("sp-1", monday))
	require.NoError(t, err)
	defer release(context.Background())

	_, err = env.svc.CreateBooking(context.Background(), model.AdminActor(), request("c-1", "10:00"))
	assertCode(t, err, apperrors.CodeConflict)
	assert.Empty(t, env.repo.bookings)
}

func TestChangeStatus_CancellationFreesTime(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	client := model.ClientActor("c-1")

	b, err := env.svc.CreateBooking(ctx, client, request("c-1", "10:00"))
	require.NoError(t, err)

	_, err = env.svc.CreateBooking(ctx, model.ClientActor("c-2"), request("c-2", "10:00"))
	assertCode(t, err, apperrors.CodeConflict)

	cancelled, err := env.svc.ChangeStatus(ctx, client, b.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)

	_, err = env.svc.CreateBooking(ctx, model.ClientActor("c-2"), request("c-2", "10:00"))
	require.NoError(t, err)
}

func TestChangeStatus_TerminalStatesAreImmutable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := model.AdminActor()

	b, err := env.svc.CreateBooking(ctx, admin, request("c-1", "10:00"))
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(ctx, admin, b.ID, model.StatusCompleted)
	require.NoError(t, err)

	for _, to := range []model.BookingStatus{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted} {
		_, err = env.svc.ChangeStatus(ctx, admin, b.ID, to)
		assertCode(t, err, apperrors.CodeInvalidTransition)
	}

	stored, err := env.repo.FindByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, stored.Status)

	client := model.ClientActor("c-1")
	own, err := env.svc.CreateBooking(ctx, client, request("c-1", "11:00"))
	require.NoError(t, err)
	_, err = env.svc.ChangeStatus(ctx, client, own.ID, model.StatusCancelled)
	require.NoError(t, err)

	for _, to := range []model.BookingStatus{model.StatusPending, model.StatusConfirmed, model.StatusCancelled, model.StatusCompleted} {
		_, err = env.svc.ChangeStatus(ctx, client, own.ID, to)
		assertCode(t, err, apperrors.CodeInvalidTransition)
	}
}

func TestChangeStatus_ActorRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.CreateBooking(ctx, model.ClientActor("c-1"), request("c-1", "10:00"))
	require.NoError(t, err)

	_, err = env.svc.ChangeStatus(ctx, model.ClientActor("c-1"), b.ID, model.StatusConfirmed)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = env.svc.ChangeStatus(ctx, model.ClientActor("c-2"), b.ID, model.StatusCancelled)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.svc.ChangeStatus(ctx, model.AdminActor(), b.ID, model.StatusCompleted)
	assertCode(t, err, apperrors.CodeInvalidTransition)

	confirmed, err := env.svc.ChangeStatus(ctx, model.AdminActor(), b.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, confirmed.Status)
}

func TestChangeStatus_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.ChangeStatus(ctx, model.AdminActor(), "missing", model.StatusCancelled)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.svc.ChangeStatus(ctx, model.AdminActor(), "any", model.BookingStatus("ARCHIVED"))
	assertCode(t, err, apperrors.CodeValidation)
}

func TestGetBooking_HidesOtherClients(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	b, err := env.svc.CreateBooking(ctx, model.ClientActor("c-1"), request("c-1", "10:00"))
	require.NoError(t, err)

	got, err := env.svc.GetBooking(ctx, model.ClientActor("c-1"), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)

	_, err = env.svc.GetBooking(ctx, model.ClientActor("c-2"), b.ID)
	assertCode(t, err, apperrors.CodeNotFound)

	_, err = env.svc.GetBooking(ctx, model.AdminActor(), "")
	assertCode(t, err, apperrors.CodeInvalidInput)
}

func TestListBookings_ScopeAndClientRestriction(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.repo.bookings["past"] = &model.Booking{ID: "past", SpecialistID: "sp-1", ClientID: "c-1", Date: "2026-10-01", Status: model.StatusCompleted}
	env.repo.bookings["today"] = &model.Booking{ID: "today", SpecialistID: "sp-1", ClientID: "c-1", Date: "2026-10-25", Status: model.StatusConfirmed}
	env.repo.bookings["future"] = &model.Booking{ID: "future", SpecialistID: "sp-1", ClientID: "c-1", Date: monday, Status: model.StatusPending}
	env.repo.bookings["other"] = &model.Booking{ID: "other", SpecialistID: "sp-1", ClientID: "c-2", Date: monday, Status: model.StatusPending}

	upcoming, total, err := env.svc.ListBookings(ctx, model.ClientActor("c-1"), &model.BookingFilter{ClientID: "c-2", Scope: model.ScopeUpcoming})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.ElementsMatch(t, []string{"today", "future"}, ids(upcoming))

	past, _, err := env.svc.ListBookings(ctx, model.ClientActor("c-1"), &model.BookingFilter{Scope: model.ScopePast})
	require.NoError(t, err)
	assert.Equal(t, []string{"past"}, ids(past))

	empty, total, err := env.svc.ListBookings(ctx, model.AdminActor(), &model.BookingFilter{Scope: model.ScopePast, From: monday})
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.Zero(t, total)

	_, _, err = env.svc.ListBookings(ctx, model.ClientActor(""), nil)
	assertCode(t, err, apperrors.CodeForbidden)

	_, _, err = env.svc.ListBookings(ctx, model.AdminActor(), &model.BookingFilter{From: "2026-11-01", To: "2026-10-01"})
	assertCode(t, err, apperrors.CodeValidation)
}

func ids(bookings []*model.Booking) []string {
	out := make([]string, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, b.ID)
	}
	return out
}
