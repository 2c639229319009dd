package monitoring

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/shifts"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
	"github.com/shiftwatch/shiftwatch/pkg/events"
)

type fakeShifts struct {
	shifts    []shifts.Shift
	breaks    map[uuid.UUID][]shifts.BreakInterval
	missed    []uuid.UUID
	failFor   map[uuid.UUID]error
}

func (f *fakeShifts) Get(_ context.Context, id uuid.UUID) (*shifts.Shift, error) {
	for i := range f.shifts {
		if f.shifts[i].ID == id {
			return &f.shifts[i], nil
		}
	}
	return nil, errors.New("shift not found")
}

func (f *fakeShifts) TodayShifts(_ context.Context, companyID uuid.UUID, _ time.Time) ([]shifts.Shift, error) {
	if err := f.failFor[companyID]; err != nil {
		return nil, err
	}
	var out []shifts.Shift
	for _, s := range f.shifts {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShifts) ActiveByCompany(_ context.Context, companyID uuid.UUID) ([]shifts.Shift, error) {
	if err := f.failFor[companyID]; err != nil {
		return nil, err
	}
	var out []shifts.Shift
	for _, s := range f.shifts {
		if s.CompanyID == companyID && s.Status == shifts.StatusActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeShifts) BreakIntervals(_ context.Context, shiftID uuid.UUID) ([]shifts.BreakInterval, error) {
	return f.breaks[shiftID], nil
}

func (f *fakeShifts) MarkMissed(_ context.Context, shiftID uuid.UUID) error {
	f.missed = append(f.missed, shiftID)
	return nil
}

type fakeStore struct {
	violations []*violations.Violation
	exceptions []*violations.Exception
	rules      map[string]*violations.CompanyRule
}

func (f *fakeStore) Create(_ context.Context, v *violations.Violation) error {
	f.violations = append(f.violations, v)
	return nil
}

func (f *fakeStore) CreateException(_ context.Context, x *violations.Exception) error {
	f.exceptions = append(f.exceptions, x)
	return nil
}

func (f *fakeStore) HasUnresolvedException(_ context.Context, employeeID uuid.UUID, shiftDate time.Time, violationType string) (bool, error) {
	for _, x := range f.exceptions {
		if x.EmployeeID == employeeID && x.ShiftDate.Equal(shiftDate) && x.Type == violationType && !x.Resolved {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ActiveRule(_ context.Context, _ uuid.UUID, code string) (*violations.CompanyRule, error) {
	return f.rules[code], nil
}

type fakeRatings struct {
	calls []uuid.UUID
}

func (f *fakeRatings) UpdateFromViolations(_ context.Context, companyID, employeeID uuid.UUID, start, end time.Time) (*rating.EmployeeRating, error) {
	f.calls = append(f.calls, employeeID)
	return &rating.EmployeeRating{CompanyID: companyID, EmployeeID: employeeID, Rating: 90, Status: rating.StatusActive}, nil
}

type fakeCompanies struct {
	ids []uuid.UUID
}

func (f *fakeCompanies) CompanyIDs(_ context.Context) ([]uuid.UUID, error) {
	return f.ids, nil
}

type enqueued struct {
	queue   string
	jobType jobs.JobType
	payload map[string]any
}

type fakeEnqueuer struct {
	jobs []enqueued
}

func (f *fakeEnqueuer) Enqueue(queue string, jobType jobs.JobType, payload map[string]any, _ jobs.EnqueueOptions) (*jobs.Job, error) {
	f.jobs = append(f.jobs, enqueued{queue: queue, jobType: jobType, payload: payload})
	return jobs.NewJob(jobType, payload, jobs.EnqueueOptions{}), nil
}

type fixture struct {
	handler   *Handler
	shifts    *fakeShifts
	store     *fakeStore
	ratings   *fakeRatings
	companies *fakeCompanies
	enqueuer  *fakeEnqueuer
	bus       *events.Bus
	now       time.Time
}

func newFixture(t *testing.T, companyIDs ...uuid.UUID) *fixture {
	t.Helper()
	f := &fixture{
		shifts: &fakeShifts{
			breaks:  make(map[uuid.UUID][]shifts.BreakInterval),
			failFor: make(map[uuid.UUID]error),
		},
		store: &fakeStore{rules: map[string]*violations.CompanyRule{
			violations.TypeLateStart:   {Code: violations.TypeLateStart, PenaltyPercent: 10, IsActive: true},
			violations.TypeEarlyEnd:    {Code: violations.TypeEarlyEnd, PenaltyPercent: 10, IsActive: true},
			violations.TypeMissedShift: {Code: violations.TypeMissedShift, PenaltyPercent: 25, IsActive: true},
			violations.TypeLongBreak:   {Code: violations.TypeLongBreak, PenaltyPercent: 5, IsActive: true},
			violations.TypeNoBreakEnd:  {Code: violations.TypeNoBreakEnd, PenaltyPercent: 5, IsActive: true},
		}},
		ratings:   &fakeRatings{},
		companies: &fakeCompanies{ids: companyIDs},
		enqueuer:  &fakeEnqueuer{},
		bus:       events.NewBus(slog.Default()),
		now:       time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC),
	}
	f.handler = NewHandler(f.shifts, f.store, f.ratings, f.companies, f.enqueuer, f.bus, slog.Default())
	f.handler.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) addShift(companyID uuid.UUID, status string, plannedStart, plannedEnd time.Time, actualStart, actualEnd *time.Time) shifts.Shift {
	s := shifts.Shift{
		ID:           uuid.New(),
		CompanyID:    companyID,
		EmployeeID:   uuid.New(),
		Date:         time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		PlannedStart: plannedStart,
		PlannedEnd:   plannedEnd,
		ActualStart:  actualStart,
		ActualEnd:    actualEnd,
		Status:       status,
	}
	f.shifts.shifts = append(f.shifts.shifts, s)
	return s
}

func ptr(t time.Time) *time.Time { return &t }

func TestHandler_LateStartSeverityOne(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Planned 09:00, started 09:20.
	f.addShift(company, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)

	var published []events.Event
	f.bus.Subscribe(events.TopicLateStart, func(ev events.Event) {
		published = append(published, ev)
	})

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	v := f.store.violations[0]
	assert.Equal(t, violations.TypeLateStart, v.Type)
	assert.Equal(t, 1, v.Severity)
	assert.Equal(t, 20, v.Minutes)
	assert.Equal(t, 10, v.Penalty)
	assert.Equal(t, violations.SourceAuto, v.Source)

	require.Len(t, f.store.exceptions, 1)
	assert.False(t, f.store.exceptions[0].Resolved)

	assert.Len(t, f.ratings.calls, 1)

	require.Len(t, f.enqueuer.jobs, 1)
	assert.Equal(t, jobs.NotificationsQueue, f.enqueuer.jobs[0].queue)
	assert.Equal(t, jobs.TypeSendViolationNotification, f.enqueuer.jobs[0].jobType)

	require.Len(t, published, 1)
	assert.Equal(t, 20, published[0].Minutes)
	assert.Equal(t, 1, published[0].Severity)
}

func TestHandler_LateStartSeverityTwo(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Planned 09:00, started 09:45.
	f.addShift(company, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 45)), nil)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, 2, f.store.violations[0].Severity)
	assert.Equal(t, 45, f.store.violations[0].Minutes)
}

func TestHandler_LateStartIdempotent(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	f.addShift(company, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)

	job := jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{})
	require.True(t, f.handler.Handle(job).Success)
	require.True(t, f.handler.Handle(job).Success)

	// Second sweep finds the unresolved exception and skips.
	assert.Len(t, f.store.violations, 1)
	assert.Len(t, f.store.exceptions, 1)
	assert.Len(t, f.ratings.calls, 1)
	assert.Len(t, f.enqueuer.jobs, 1)
}

func TestHandler_NoActiveRule(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)
	delete(f.store.rules, violations.TypeLateStart)

	f.addShift(company, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)

	var published int
	f.bus.Subscribe(events.TopicLateStart, func(events.Event) { published++ })

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	// Event still fires but nothing is persisted.
	assert.Equal(t, 1, published)
	assert.Empty(t, f.store.violations)
	assert.Empty(t, f.store.exceptions)
	assert.Empty(t, f.ratings.calls)
	assert.Empty(t, f.enqueuer.jobs)
}

func TestHandler_EarlyEnd(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Planned end 18:00, left at 17:00.
	f.addShift(company, shifts.StatusCompleted, at(8, 0), at(18, 0), ptr(at(8, 0)), ptr(at(17, 0)))
	f.now = at(18, 30)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorEarlyEnds, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, violations.TypeEarlyEnd, f.store.violations[0].Type)
	assert.Equal(t, 2, f.store.violations[0].Severity)
	assert.Equal(t, 60, f.store.violations[0].Minutes)
}

func TestHandler_MissedShift(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Planned 09:00, never started, checked at 11:30.
	s := f.addShift(company, shifts.StatusPlanned, at(9, 0), at(18, 0), nil, nil)
	f.now = at(11, 30)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorMissedShifts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, violations.TypeMissedShift, f.store.violations[0].Type)
	assert.Equal(t, 2, f.store.violations[0].Severity)
	assert.Equal(t, []uuid.UUID{s.ID}, f.shifts.missed)
}

func TestHandler_ActiveShiftContinuousWork(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Started 07:00, no breaks, checked at 12:00: five hours straight.
	f.addShift(company, shifts.StatusActive, at(7, 0), at(18, 0), ptr(at(7, 0)), nil)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorActiveShifts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, violations.TypeLongBreak, f.store.violations[0].Type)
	assert.Equal(t, 1, f.store.violations[0].Severity)
	assert.Equal(t, 300, f.store.violations[0].Minutes)
}

func TestHandler_ActiveShiftBreakResetsStretch(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Started 07:00 but took a break ending 10:00: only two hours since.
	s := f.addShift(company, shifts.StatusActive, at(7, 0), at(18, 0), ptr(at(7, 0)), nil)
	f.shifts.breaks[s.ID] = []shifts.BreakInterval{
		{ShiftID: s.ID, StartedAt: at(9, 30), EndedAt: ptr(at(10, 0))},
	}

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorActiveShifts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)
	assert.Empty(t, f.store.violations)
}

func TestHandler_ActiveShiftOpenBreak(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	// Break started 10:30, still open at 12:00.
	s := f.addShift(company, shifts.StatusActive, at(7, 0), at(18, 0), ptr(at(7, 0)), nil)
	f.shifts.breaks[s.ID] = []shifts.BreakInterval{
		{ShiftID: s.ID, StartedAt: at(10, 30)},
	}

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorActiveShifts, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, violations.TypeNoBreakEnd, f.store.violations[0].Type)
	assert.Equal(t, 1, f.store.violations[0].Severity)
	assert.Equal(t, 90, f.store.violations[0].Minutes)
}

func TestHandler_CheckSpecificShift(t *testing.T) {
	company := uuid.New()
	f := newFixture(t, company)

	s := f.addShift(company, shifts.StatusCompleted, at(9, 0), at(18, 0), ptr(at(9, 45)), ptr(at(18, 0)))

	result := f.handler.Handle(jobs.NewJob(jobs.TypeCheckSpecificShift,
		map[string]any{"shiftId": s.ID.String()}, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, violations.TypeLateStart, f.store.violations[0].Type)
}

func TestHandler_CheckSpecificShiftMissingID(t *testing.T) {
	f := newFixture(t)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeCheckSpecificShift, nil, jobs.EnqueueOptions{}))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid_payload")
	assert.Contains(t, result.Error, "shiftId")

	result = f.handler.Handle(jobs.NewJob(jobs.TypeCheckSpecificShift,
		map[string]any{"shiftId": "not-a-uuid"}, jobs.EnqueueOptions{}))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid_payload")
	assert.Contains(t, result.Error, "shiftId")
}

func TestHandler_SweepContinuesPastFailingCompany(t *testing.T) {
	broken := uuid.New()
	healthy := uuid.New()
	f := newFixture(t, broken, healthy)

	f.shifts.failFor[broken] = errors.New("store unavailable")
	f.addShift(healthy, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{}))

	// Partial progress: the failing company is logged and skipped.
	require.True(t, result.Success)
	assert.Len(t, f.store.violations, 1)
}

func TestHandler_CompanyScopedPayload(t *testing.T) {
	inScope := uuid.New()
	outOfScope := uuid.New()
	f := newFixture(t, inScope, outOfScope)

	f.addShift(inScope, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)
	f.addShift(outOfScope, shifts.StatusActive, at(9, 0), at(18, 0), ptr(at(9, 20)), nil)

	result := f.handler.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts,
		map[string]any{"companyId": inScope.String()}, jobs.EnqueueOptions{}))
	require.True(t, result.Success)

	require.Len(t, f.store.violations, 1)
	assert.Equal(t, inScope, f.store.violations[0].CompanyID)
}
