// Package attendance implements the per-employee-per-day attendance state
// machine (check-in/out, manual breaks) and the presence sub-model fed by
// tab events and heartbeats, including the debounced auto-break.
package attendance

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/metrics"
	"salescrm.service/internal/ports/repository"
)

// Service drives the attendance state machine:
//
//	NoRecord -> CheckedIn(active) <-> OnBreak -> CheckedIn(active) -> CheckedOut(inactive)
//
// At most one break is open at any time; the store enforces that with a
// conditional write so concurrent duplicates lose cleanly.
type Service struct {
	attendance repository.AttendanceRepository
	employees  repository.EmployeeRepository
	grace      time.Duration
	now        func() time.Time

	// afterFunc schedules the deferred auto-break; swapped out in tests.
	afterFunc func(d time.Duration, f func())

	// pending tracks, per employee, the generation of the latest tab event.
	// A scheduled auto-break captures the generation at schedule time and
	// no-ops if any later tab event moved it: supersession by freshness
	// check rather than timer cancellation, so it also survives restarts
	// (the sweeper is the second chance).
	mu      sync.Mutex
	pending map[string]uint64
}

// NewService wires the attendance state machine. grace is the debounce
// between the last tab closing and the automatic break.
func NewService(attendance repository.AttendanceRepository, employees repository.EmployeeRepository, grace time.Duration) *Service {
	return &Service{
		attendance: attendance,
		employees:  employees,
		grace:      grace,
		now:        time.Now,
		afterFunc:  func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		pending:    make(map[string]uint64),
	}
}

// CheckIn is idempotent per day: an existing record merely flips back to
// active and keeps its original check-in time.
func (s *Service) CheckIn(ctx context.Context, employeeID string) (*model.Attendance, error) {
	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("loading employee: %w", err)
	}
	if emp == nil {
		return nil, fault.NotFound("employee %s not found", employeeID)
	}

	now := s.now()
	att, err := s.attendance.UpsertCheckIn(ctx, employeeID, now, now)
	if err != nil {
		return nil, fmt.Errorf("recording check-in: %w", err)
	}

	if err := s.employees.MarkCheckedIn(ctx, employeeID); err != nil {
		return nil, fmt.Errorf("updating presence: %w", err)
	}

	log.Ctx(ctx).Info().Str("employee_id", employeeID).Msg("Checked in")
	return att, nil
}

// CheckOut requires a prior check-in today. It computes total hours worked,
// rounded to two decimals and never negative, and marks the day inactive.
func (s *Service) CheckOut(ctx context.Context, employeeID string) (*model.Attendance, error) {
	now := s.now()
	att, err := s.attendance.GetForDay(ctx, employeeID, now)
	if err != nil {
		return nil, fmt.Errorf("loading attendance: %w", err)
	}
	if att == nil || att.CheckIn == nil {
		return nil, fault.Conflict("check-in not found for today")
	}

	checkOut := now
	total := round2(math.Max(checkOut.Sub(*att.CheckIn).Hours(), 0))

	if err := s.attendance.SetCheckOut(ctx, att.ID, checkOut, total); err != nil {
		return nil, fmt.Errorf("recording check-out: %w", err)
	}
	if err := s.employees.MarkCheckedOut(ctx, employeeID); err != nil {
		return nil, fmt.Errorf("updating presence: %w", err)
	}

	att.CheckOut = &checkOut
	att.TotalHours = total
	att.Status = model.AttendanceInactive

	log.Ctx(ctx).Info().Str("employee_id", employeeID).Float64("hours", total).Msg("Checked out")
	return att, nil
}

// StartBreak opens a manual break. A break already in progress is a conflict.
func (s *Service) StartBreak(ctx context.Context, employeeID string) error {
	att, err := s.attendance.GetForDay(ctx, employeeID, s.now())
	if err != nil {
		return fmt.Errorf("loading attendance: %w", err)
	}
	if att == nil {
		return fault.NotFound("attendance not found for today")
	}

	started, err := s.attendance.StartBreak(ctx, att.ID, s.now())
	if err != nil {
		return fmt.Errorf("starting break: %w", err)
	}
	if !started {
		return fault.Conflict("there is already an ongoing break")
	}
	return nil
}

// EndBreak closes the open break. Ending with none open is not-found.
func (s *Service) EndBreak(ctx context.Context, employeeID string) error {
	att, err := s.attendance.GetForDay(ctx, employeeID, s.now())
	if err != nil {
		return fmt.Errorf("loading attendance: %w", err)
	}
	if att == nil {
		return fault.NotFound("attendance not found for today")
	}

	ended, err := s.attendance.EndBreak(ctx, att.ID, s.now())
	if err != nil {
		return fmt.Errorf("ending break: %w", err)
	}
	if !ended {
		return fault.NotFound("no ongoing break found")
	}
	return nil
}

// TabOpened bumps the tab count, marks the employee online, supersedes any
// pending auto-break and implicitly ends an open break: resuming work closes
// the break.
func (s *Service) TabOpened(ctx context.Context, employeeID string) (int, error) {
	s.bumpGeneration(employeeID)

	count, err := s.employees.IncrementTabCount(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("incrementing tab count: %w", err)
	}

	// Best effort: an open break ends when the employee is back.
	att, err := s.attendance.GetForDay(ctx, employeeID, s.now())
	if err == nil && att != nil {
		if _, err := s.attendance.EndBreak(ctx, att.ID, s.now()); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("employee_id", employeeID).Msg("Failed to end break on tab open")
		}
	}

	return count, nil
}

// TabClosed lowers the tab count. When it reaches zero the employee goes
// offline and an auto-break is scheduled after the grace period; if tabs
// reopen meanwhile the timer finds a moved generation and does nothing.
func (s *Service) TabClosed(ctx context.Context, employeeID string) (int, error) {
	gen := s.bumpGeneration(employeeID)

	count, err := s.employees.DecrementTabCount(ctx, employeeID, s.now())
	if err != nil {
		return 0, fmt.Errorf("decrementing tab count: %w", err)
	}

	if count == 0 {
		s.afterFunc(s.grace, func() {
			s.fireAutoBreak(context.Background(), employeeID, gen)
		})
	}

	return count, nil
}

// Heartbeat refreshes lastSeen and marks the employee online, independent of
// tab counting.
func (s *Service) Heartbeat(ctx context.Context, employeeID string) error {
	if err := s.employees.Heartbeat(ctx, employeeID, s.now()); err != nil {
		return fmt.Errorf("recording heartbeat: %w", err)
	}
	return nil
}

// Log returns the employee's attendance records for the last seven days.
func (s *Service) Log(ctx context.Context, employeeID string) ([]model.Attendance, error) {
	since := s.now().AddDate(0, 0, -6)
	return s.attendance.ListSince(ctx, employeeID, since)
}

// fireAutoBreak runs when the grace period elapses. It reads the current
// state: a moved generation or reopened tabs means the break is skipped.
func (s *Service) fireAutoBreak(ctx context.Context, employeeID string, gen uint64) {
	if s.generation(employeeID) != gen {
		metrics.AutoBreaksSkipped.Inc()
		return
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		log.Error().Err(err).Str("employee_id", employeeID).Msg("Auto-break state check failed")
		return
	}
	if emp == nil || emp.ActiveTabCount != 0 {
		metrics.AutoBreaksSkipped.Inc()
		return
	}

	if s.startBreakIfNone(ctx, employeeID) {
		metrics.AutoBreaksStarted.WithLabelValues("grace_timer").Inc()
		log.Info().Str("employee_id", employeeID).Msg("Auto break started after tab close")
	}
}

// startBreakIfNone opens a break for the employee's current day unless one
// is already open or there is no attendance record. Used by the grace timer
// and the sweeper; reports whether a break was started.
func (s *Service) startBreakIfNone(ctx context.Context, employeeID string) bool {
	att, err := s.attendance.GetForDay(ctx, employeeID, s.now())
	if err != nil || att == nil {
		return false
	}
	started, err := s.attendance.StartBreak(ctx, att.ID, s.now())
	if err != nil {
		log.Error().Err(err).Str("employee_id", employeeID).Msg("Failed to auto-start break")
		return false
	}
	return started
}

func (s *Service) bumpGeneration(employeeID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[employeeID]++
	return s.pending[employeeID]
}

func (s *Service) generation(employeeID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[employeeID]
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
