package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

type fakeAttendance struct {
	repository.AttendanceRepository
	record *model.Attendance

	breakOpen     bool
	breaksStarted int
	breaksEnded   int
	checkOutAt    *time.Time
	totalHours    float64
}

func (f *fakeAttendance) GetForDay(ctx context.Context, employeeID string, day time.Time) (*model.Attendance, error) {
	return f.record, nil
}

func (f *fakeAttendance) UpsertCheckIn(ctx context.Context, employeeID string, day, checkIn time.Time) (*model.Attendance, error) {
	if f.record == nil {
		f.record = &model.Attendance{
			ID:         "att-1",
			EmployeeID: employeeID,
			Date:       model.DayTruncate(day),
			CheckIn:    &checkIn,
			Status:     model.AttendanceActive,
		}
	} else {
		f.record.Status = model.AttendanceActive
	}
	return f.record, nil
}

func (f *fakeAttendance) SetCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64) error {
	f.checkOutAt = &checkOut
	f.totalHours = totalHours
	return nil
}

func (f *fakeAttendance) StartBreak(ctx context.Context, attendanceID string, start time.Time) (bool, error) {
	if f.breakOpen {
		return false, nil
	}
	f.breakOpen = true
	f.breaksStarted++
	return true, nil
}

func (f *fakeAttendance) EndBreak(ctx context.Context, attendanceID string, end time.Time) (bool, error) {
	if !f.breakOpen {
		return false, nil
	}
	f.breakOpen = false
	f.breaksEnded++
	return true, nil
}

type fakePresence struct {
	repository.EmployeeRepository
	employee   *model.Employee
	tabCount   int
	checkedIn  bool
	checkedOut bool
	heartbeats int
}

func (f *fakePresence) GetByID(ctx context.Context, id string) (*model.Employee, error) {
	return f.employee, nil
}

func (f *fakePresence) IncrementTabCount(ctx context.Context, id string) (int, error) {
	f.tabCount++
	if f.employee != nil {
		f.employee.ActiveTabCount = f.tabCount
		f.employee.IsOnline = true
	}
	return f.tabCount, nil
}

func (f *fakePresence) DecrementTabCount(ctx context.Context, id string, closedAt time.Time) (int, error) {
	if f.tabCount > 0 {
		f.tabCount--
	}
	if f.employee != nil {
		f.employee.ActiveTabCount = f.tabCount
		f.employee.IsOnline = f.tabCount > 0
	}
	return f.tabCount, nil
}

func (f *fakePresence) Heartbeat(ctx context.Context, id string, at time.Time) error {
	f.heartbeats++
	return nil
}

func (f *fakePresence) MarkCheckedIn(ctx context.Context, id string) error {
	f.checkedIn = true
	return nil
}

func (f *fakePresence) MarkCheckedOut(ctx context.Context, id string) error {
	f.checkedOut = true
	return nil
}

var now = time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC)

func newTestService(att *fakeAttendance, pres *fakePresence) *Service {
	s := NewService(att, pres, 5*time.Second)
	s.now = func() time.Time { return now }
	// Run scheduled auto-breaks synchronously so tests control the ordering.
	s.afterFunc = func(d time.Duration, f func()) { f() }
	return s
}

func TestCheckInIdempotent(t *testing.T) {
	att := &fakeAttendance{}
	pres := &fakePresence{employee: &model.Employee{ID: "e1"}}
	s := newTestService(att, pres)

	first, err := s.CheckIn(context.Background(), "e1")
	require.NoError(t, err)
	require.True(t, pres.checkedIn)
	originalCheckIn := *first.CheckIn

	second, err := s.CheckIn(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, originalCheckIn, *second.CheckIn)
	require.Equal(t, model.AttendanceActive, second.Status)
}

func TestCheckInUnknownEmployee(t *testing.T) {
	s := newTestService(&fakeAttendance{}, &fakePresence{})

	_, err := s.CheckIn(context.Background(), "ghost")
	require.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestCheckOutComputesRoundedHours(t *testing.T) {
	checkIn := now.Add(-7*time.Hour - 20*time.Minute)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	pres := &fakePresence{employee: &model.Employee{ID: "e1"}}
	s := newTestService(att, pres)

	rec, err := s.CheckOut(context.Background(), "e1")
	require.NoError(t, err)
	require.InDelta(t, 7.33, rec.TotalHours, 0.001)
	require.Equal(t, model.AttendanceInactive, rec.Status)
	require.True(t, pres.checkedOut)
}

func TestCheckOutClampsNegativeDuration(t *testing.T) {
	checkIn := now.Add(time.Hour) // clock skew: check-in recorded in the future
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	s := newTestService(att, &fakePresence{employee: &model.Employee{ID: "e1"}})

	rec, err := s.CheckOut(context.Background(), "e1")
	require.NoError(t, err)
	require.Zero(t, rec.TotalHours)
}

func TestCheckOutWithoutCheckInConflicts(t *testing.T) {
	s := newTestService(&fakeAttendance{}, &fakePresence{employee: &model.Employee{ID: "e1"}})

	_, err := s.CheckOut(context.Background(), "e1")
	require.True(t, fault.IsKind(err, fault.KindConflict))
}

func TestStartBreakTwiceConflicts(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	s := newTestService(att, &fakePresence{})

	require.NoError(t, s.StartBreak(context.Background(), "e1"))

	err := s.StartBreak(context.Background(), "e1")
	require.True(t, fault.IsKind(err, fault.KindConflict))
}

func TestStartBreakWithoutAttendance(t *testing.T) {
	s := newTestService(&fakeAttendance{}, &fakePresence{})

	err := s.StartBreak(context.Background(), "e1")
	require.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestEndBreakWithoutOpenBreak(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	s := newTestService(att, &fakePresence{})

	err := s.EndBreak(context.Background(), "e1")
	require.True(t, fault.IsKind(err, fault.KindNotFound))
}

func TestTabCloseToZeroStartsAutoBreak(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	pres := &fakePresence{employee: &model.Employee{ID: "e1"}, tabCount: 1}
	s := newTestService(att, pres)

	count, err := s.TabClosed(context.Background(), "e1")
	require.NoError(t, err)
	require.Zero(t, count)
	require.Equal(t, 1, att.breaksStarted)
}

func TestTabReopenSupersedesPendingAutoBreak(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	pres := &fakePresence{employee: &model.Employee{ID: "e1"}, tabCount: 1}
	s := newTestService(att, pres)

	// Capture the timer instead of firing it, as the real clock would.
	var fire func()
	s.afterFunc = func(d time.Duration, f func()) { fire = f }

	_, err := s.TabClosed(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, fire)

	// A new tab opens inside the grace window, then the timer fires.
	_, err = s.TabOpened(context.Background(), "e1")
	require.NoError(t, err)
	fire()

	require.Zero(t, att.breaksStarted)
}

func TestAutoBreakSkippedWhenTabsReopened(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}}
	pres := &fakePresence{employee: &model.Employee{ID: "e1", ActiveTabCount: 2}, tabCount: 2}
	s := newTestService(att, pres)

	var fire func()
	s.afterFunc = func(d time.Duration, f func()) { fire = f }

	// Counter drops to 1, not 0: no timer scheduled at all.
	_, err := s.TabClosed(context.Background(), "e1")
	require.NoError(t, err)
	require.Nil(t, fire)
	require.Zero(t, att.breaksStarted)
}

func TestTabOpenEndsOpenBreak(t *testing.T) {
	checkIn := now.Add(-time.Hour)
	att := &fakeAttendance{record: &model.Attendance{ID: "att-1", CheckIn: &checkIn}, breakOpen: true}
	pres := &fakePresence{employee: &model.Employee{ID: "e1"}}
	s := newTestService(att, pres)

	count, err := s.TabOpened(context.Background(), "e1")
	require.NoError(t, err)
	require.Equal(t, 1, count)
	require.Equal(t, 1, att.breaksEnded)
}

func TestHeartbeatDelegates(t *testing.T) {
	pres := &fakePresence{}
	s := newTestService(&fakeAttendance{}, pres)

	require.NoError(t, s.Heartbeat(context.Background(), "e1"))
	require.Equal(t, 1, pres.heartbeats)
}
