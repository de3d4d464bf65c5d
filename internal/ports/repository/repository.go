// Package repository defines the store contracts the core services depend on,
// plus their PostgreSQL implementations.
package repository

import (
	"context"
	"time"

	"salescrm.service/internal/core/model"
)

// EmployeeRepository is the store contract for employees, including the
// presence fields driven by tab events and heartbeats.
type EmployeeRepository interface {
	Create(ctx context.Context, e *model.Employee) error
	GetByID(ctx context.Context, id string) (*model.Employee, error)
	GetByEmail(ctx context.Context, email string) (*model.Employee, error)
	// FindActiveByName resolves an active employee by exact first+last name,
	// case-insensitively. Returns (nil, nil) when no such employee exists.
	FindActiveByName(ctx context.Context, firstName, lastName string) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	ListActive(ctx context.Context) ([]model.Employee, error)
	ListActiveOnline(ctx context.Context) ([]model.Employee, error)
	// ListActiveMatching returns active employees whose locations or languages
	// intersect the given sets.
	ListActiveMatching(ctx context.Context, locations, languages []string) ([]model.Employee, error)
	ListActiveExcept(ctx context.Context, excludeID string) ([]model.Employee, error)
	Update(ctx context.Context, e *model.Employee) error
	Delete(ctx context.Context, id string) error

	// Presence mutations, each a single atomic statement.
	IncrementTabCount(ctx context.Context, id string) (int, error)
	DecrementTabCount(ctx context.Context, id string, closedAt time.Time) (int, error)
	Heartbeat(ctx context.Context, id string, at time.Time) error
	MarkCheckedIn(ctx context.Context, id string) error
	MarkCheckedOut(ctx context.Context, id string) error
	// ListOfflineSince returns employees that are offline and whose last tab
	// closed at or before the threshold.
	ListOfflineSince(ctx context.Context, threshold time.Time) ([]model.Employee, error)
	CountOnline(ctx context.Context) (int, error)
}

// LeadFilter narrows admin/employee lead listings.
type LeadFilter struct {
	Search     string
	Status     model.LeadStatus
	EmployeeID string
}

// LeadRepository is the store contract for leads and their assignment state.
type LeadRepository interface {
	Create(ctx context.Context, l *model.Lead) error
	InsertBatch(ctx context.Context, leads []*model.Lead) error
	GetByID(ctx context.Context, id string) (*model.Lead, error)
	Update(ctx context.Context, l *model.Lead) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f LeadFilter) ([]model.Lead, error)

	ListUnassigned(ctx context.Context) ([]model.Lead, error)
	// ListUnassignedMatching returns unassigned leads whose locations or
	// languages intersect the given sets.
	ListUnassignedMatching(ctx context.Context, locations, languages []string) ([]model.Lead, error)
	ListAssignedTo(ctx context.Context, employeeID string, statuses []model.LeadStatus) ([]model.Lead, error)

	// Assign stamps the assignee and assignment date and resets the async
	// processing statuses, as one atomic update of the lead record.
	Assign(ctx context.Context, leadID, employeeID string, at time.Time) error
	AssignMany(ctx context.Context, leadIDs []string, employeeID string, at time.Time) (int64, error)

	// HasScheduleOverlap reports whether another lead assigned to the same
	// employee has a reservation interval overlapping [start, end].
	HasScheduleOverlap(ctx context.Context, excludeLeadID, employeeID string, start, end time.Time) (bool, error)

	// Reporting aggregations.
	CountAll(ctx context.Context) (int, error)
	CountUnassigned(ctx context.Context) (int, error)
	CountAssignedSince(ctx context.Context, since time.Time) (int, error)
	// CountGroupedByEmployee counts leads per assigned employee, optionally
	// restricted to one status (pass "" for all).
	CountGroupedByEmployee(ctx context.Context, status model.LeadStatus) (map[string]int, error)
	CountByEmployee(ctx context.Context, employeeID string, status model.LeadStatus) (int, error)
	ListClosedBetween(ctx context.Context, from, to time.Time) ([]model.Lead, error)

	// Worker-side status bookkeeping.
	UpdateCrmSyncStatus(ctx context.Context, id string, status model.SyncStatus, retryCount int) error
	UpdateEmailStatus(ctx context.Context, id string, status model.SyncStatus, retryCount int) error
}

// AttendanceRepository is the store contract for per-day attendance records.
type AttendanceRepository interface {
	// GetForDay returns the record for (employee, day), or (nil, nil) when absent.
	GetForDay(ctx context.Context, employeeID string, day time.Time) (*model.Attendance, error)
	// UpsertCheckIn creates the day's record with the given check-in time, or,
	// when it already exists, flips status to active without touching the
	// original check-in. Relies on the (employee, day) unique key.
	UpsertCheckIn(ctx context.Context, employeeID string, day, checkIn time.Time) (*model.Attendance, error)
	SetCheckOut(ctx context.Context, id string, checkOut time.Time, totalHours float64) error
	// StartBreak opens a break only when none is open; reports whether it did.
	StartBreak(ctx context.Context, attendanceID string, start time.Time) (bool, error)
	// EndBreak closes the open break, computing its duration; reports whether
	// an open break existed.
	EndBreak(ctx context.Context, attendanceID string, end time.Time) (bool, error)
	ListSince(ctx context.Context, employeeID string, since time.Time) ([]model.Attendance, error)
}

// ActivityRepository is the append-only store contract for the activity feed.
type ActivityRepository interface {
	Create(ctx context.Context, a *model.Activity) error
	ListRecent(ctx context.Context, limit int) ([]model.Activity, error)
	ListByEmployee(ctx context.Context, employeeID string, limit int, types []model.ActivityType) ([]model.Activity, error)
}

// CallFilter narrows call listings.
type CallFilter struct {
	EmployeeID string
	LeadID     string
	Status     model.CallStatus
}

// CallRepository is the store contract for scheduled calls.
type CallRepository interface {
	Create(ctx context.Context, c *model.Call) error
	GetByID(ctx context.Context, id string) (*model.Call, error)
	Update(ctx context.Context, c *model.Call) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f CallFilter) ([]model.Call, error)
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
}

// CsvUploadRepository records bulk import history.
type CsvUploadRepository interface {
	Create(ctx context.Context, u *model.CsvUpload) error
	List(ctx context.Context) ([]model.CsvUpload, error)
}
