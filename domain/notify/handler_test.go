package notify

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwatch/shiftwatch/domain/employees"
	"github.com/shiftwatch/shiftwatch/domain/rating"
	"github.com/shiftwatch/shiftwatch/domain/violations"
	"github.com/shiftwatch/shiftwatch/internal/jobs"
)

type fakeDirectory struct {
	employees map[uuid.UUID]*employees.Employee
}

func (f *fakeDirectory) Get(_ context.Context, id uuid.UUID) (*employees.Employee, error) {
	e, ok := f.employees[id]
	if !ok {
		return nil, errors.New("employee not found")
	}
	return e, nil
}

func (f *fakeDirectory) ListByCompany(_ context.Context, companyID uuid.UUID) ([]employees.Employee, error) {
	var out []employees.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeDirectory) CompanyIDs(_ context.Context) ([]uuid.UUID, error) {
	seen := make(map[uuid.UUID]bool)
	var out []uuid.UUID
	for _, e := range f.employees {
		if !seen[e.CompanyID] {
			seen[e.CompanyID] = true
			out = append(out, e.CompanyID)
		}
	}
	return out, nil
}

type fakeRatingReader struct {
	ratings map[uuid.UUID]*rating.EmployeeRating
}

func (f *fakeRatingReader) Get(_ context.Context, companyID, employeeID uuid.UUID, _, _ time.Time) (*rating.EmployeeRating, error) {
	if r, ok := f.ratings[employeeID]; ok {
		return r, nil
	}
	return &rating.EmployeeRating{CompanyID: companyID, EmployeeID: employeeID, Rating: 100, Status: rating.StatusActive}, nil
}

type fakeViolationLister struct {
	byEmployee map[uuid.UUID][]violations.Violation
}

func (f *fakeViolationLister) ListByEmployee(_ context.Context, employeeID uuid.UUID, _, _ time.Time) ([]violations.Violation, error) {
	return f.byEmployee[employeeID], nil
}

type sentMessage struct {
	recipient string
	text      string
}

type fakeTransport struct {
	sent []sentMessage
	err  error
}

func (f *fakeTransport) Send(_ context.Context, recipientID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{recipient: recipientID, text: text})
	return nil
}

func newTestHandler(t *testing.T, enabled bool) (*Handler, *fakeDirectory, *fakeTransport, *fakeViolationLister) {
	t.Helper()
	directory := &fakeDirectory{employees: make(map[uuid.UUID]*employees.Employee)}
	transport := &fakeTransport{}
	lister := &fakeViolationLister{byEmployee: make(map[uuid.UUID][]violations.Violation)}
	h := NewHandler(directory, &fakeRatingReader{ratings: make(map[uuid.UUID]*rating.EmployeeRating)}, lister, transport, enabled, slog.Default())
	return h, directory, transport, lister
}

func addEmployee(d *fakeDirectory, name, chatID string) *employees.Employee {
	e := &employees.Employee{
		ID:        uuid.New(),
		CompanyID: uuid.New(),
		FullName:  name,
		ChatID:    chatID,
		Status:    employees.StatusActive,
	}
	d.employees[e.ID] = e
	return e
}

func TestHandler_ViolationNotification(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "chat-1")

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    e.ID.String(),
		"violationType": violations.TypeLateStart,
		"severity":      1,
		"minutes":       20,
	}, jobs.EnqueueOptions{}))

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "chat-1", transport.sent[0].recipient)
	assert.Contains(t, transport.sent[0].text, "Alex Smith")
	assert.Contains(t, transport.sent[0].text, "20 minutes late")
	assert.NotContains(t, transport.sent[0].text, "serious")
}

func TestHandler_ViolationNotificationSevere(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "chat-1")

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    e.ID.String(),
		"violationType": violations.TypeLateStart,
		"severity":      2,
		"minutes":       45,
	}, jobs.EnqueueOptions{}))

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "serious")
}

func TestHandler_MissingEmployeeDoesNotPanic(t *testing.T) {
	h, _, transport, _ := newTestHandler(t, true)

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    uuid.New().String(),
		"violationType": violations.TypeLateStart,
	}, jobs.EnqueueOptions{}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "employee lookup failed")
	assert.Empty(t, transport.sent)
}

func TestHandler_MissingEmployeeID(t *testing.T) {
	h, _, _, _ := newTestHandler(t, true)

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, nil, jobs.EnqueueOptions{}))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid_payload")
	assert.Contains(t, result.Error, "employeeId")
}

func TestHandler_UnknownNotificationType(t *testing.T) {
	h, _, _, _ := newTestHandler(t, true)

	result := h.Handle(jobs.NewJob(jobs.TypeMonitorLateStarts, nil, jobs.EnqueueOptions{}))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown notification type")
}

func TestHandler_DisabledDropsMessage(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, false)
	e := addEmployee(directory, "Alex Smith", "chat-1")

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    e.ID.String(),
		"violationType": violations.TypeLateStart,
	}, jobs.EnqueueOptions{}))

	assert.True(t, result.Success)
	assert.Empty(t, transport.sent)
}

func TestHandler_NoChatID(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "")

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    e.ID.String(),
		"violationType": violations.TypeLateStart,
	}, jobs.EnqueueOptions{}))

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "chat id")
	assert.Empty(t, transport.sent)
}

func TestHandler_TransportErrorRetries(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "chat-1")
	transport.err = errors.New("gateway timeout")

	result := h.Handle(jobs.NewJob(jobs.TypeSendViolationNotification, map[string]any{
		"employeeId":    e.ID.String(),
		"violationType": violations.TypeLateStart,
	}, jobs.EnqueueOptions{}))

	assert.False(t, result.Success)
	assert.True(t, result.Retry)
}

func TestHandler_ReminderDefaultPhase(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "chat-1")

	result := h.Handle(jobs.NewJob(jobs.TypeSendShiftReminder, map[string]any{
		"employeeId": e.ID.String(),
	}, jobs.EnqueueOptions{}))

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "check in")
}

func TestHandler_Welcome(t *testing.T) {
	h, directory, transport, _ := newTestHandler(t, true)
	e := addEmployee(directory, "Alex Smith", "chat-1")

	result := h.Handle(jobs.NewJob(jobs.TypeSendEmployeeWelcome, map[string]any{
		"employeeId": e.ID.String(),
	}, jobs.EnqueueOptions{}))

	require.True(t, result.Success)
	require.Len(t, transport.sent, 1)
	assert.Contains(t, transport.sent[0].text, "Welcome aboard")
}

func TestHandler_WeeklyReport(t *testing.T) {
	h, directory, transport, lister := newTestHandler(t, true)
	addEmployee(directory, "Clean Record", "chat-1")
	offender := addEmployee(directory, "Late Often", "chat-2")

	lister.byEmployee[offender.ID] = []violations.Violation{
		{Type: violations.TypeLateStart, Penalty: 10},
		{Type: violations.TypeEarlyEnd, Penalty: 10},
	}

	result := h.Handle(jobs.NewJob(jobs.TypeSendWeeklyReport, nil, jobs.EnqueueOptions{}))
	require.True(t, result.Success)
	require.Len(t, transport.sent, 2)

	byRecipient := make(map[string]string)
	for _, m := range transport.sent {
		byRecipient[m.recipient] = m.text
	}
	assert.Contains(t, byRecipient["chat-1"], "Great week")
	assert.Contains(t, byRecipient["chat-2"], "Violations this week: 2")
}
