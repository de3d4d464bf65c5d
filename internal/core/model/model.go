package model

import (
	"time"
)

// EmployeeStatus defines whether an employee can receive leads.
type EmployeeStatus string

const (
	EmployeeActive   EmployeeStatus = "active"
	EmployeeInactive EmployeeStatus = "inactive"
)

// LeadStatus defines the lifecycle state of a lead.
type LeadStatus string

const (
	LeadOpen    LeadStatus = "open"
	LeadOngoing LeadStatus = "ongoing"
	LeadPending LeadStatus = "pending"
	LeadClosed  LeadStatus = "closed"
)

// LeadType is the temperature classification of a lead.
type LeadType string

const (
	LeadHot  LeadType = "hot"
	LeadWarm LeadType = "warm"
	LeadCold LeadType = "cold"
)

// AttendanceStatus marks whether the employee is currently checked in.
type AttendanceStatus string

const (
	AttendanceActive   AttendanceStatus = "active"
	AttendanceInactive AttendanceStatus = "inactive"
)

// ActivityType identifies what a logged activity records.
type ActivityType string

const (
	ActivityAssigned ActivityType = "assigned"
	ActivityClosed   ActivityType = "closed"
	ActivityUpdated  ActivityType = "updated"
)

// SyncStatus tracks asynchronous processing of a lead assignment
// (legacy CRM mirror and notification email), one column per concern.
type SyncStatus string

const (
	SyncPending   SyncStatus = "PENDING"
	SyncCompleted SyncStatus = "COMPLETED"
	SyncFailed    SyncStatus = "FAILED"
)

type Employee struct {
	ID              string         `json:"id"`
	Code            string         `json:"employeeId"` // human-readable, e.g. EMP-3F9A21
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email"`
	Locations       []string       `json:"locations"`
	Languages       []string       `json:"languages"`
	Status          EmployeeStatus `json:"status"`
	IsOnline        bool           `json:"isOnline"`
	ActiveTabCount  int            `json:"activeTabCount"`
	LastSeen        *time.Time     `json:"lastSeen,omitempty"`
	LastTabClosedAt *time.Time     `json:"lastTabClosedAt,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// FullName joins first and last name the way the admin UI displays it.
func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

type Lead struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	ReceivedDate     time.Time  `json:"receivedDate"`
	Status           LeadStatus `json:"status"`
	Type             LeadType   `json:"type"`
	Languages        []string   `json:"languages"`
	Locations        []string   `json:"locations"`
	AssignedEmployee string     `json:"assignedEmployee,omitempty"` // empty = unassigned
	AssignedDate     *time.Time `json:"assignedDate,omitempty"`
	ScheduledDate    *time.Time `json:"scheduledDate,omitempty"`
	ScheduledEndTime *time.Time `json:"scheduledEndTime,omitempty"`
	ClosedDate       *time.Time `json:"closedDate,omitempty"`
	CrmSyncStatus    SyncStatus `json:"crmSyncStatus,omitempty"`
	EmailStatus      SyncStatus `json:"emailStatus,omitempty"`
	CrmSyncRetries   int        `json:"crmSyncRetries,omitempty"`
	EmailRetries     int        `json:"emailRetries,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Assigned reports whether the lead currently has an owner.
func (l Lead) Assigned() bool {
	return l.AssignedEmployee != ""
}

// Break is one pause inside an attendance day. An open break has no EndTime.
type Break struct {
	StartTime       time.Time  `json:"startTime"`
	EndTime         *time.Time `json:"endTime,omitempty"`
	DurationMinutes int        `json:"durationMinutes,omitempty"`
}

// Open reports whether the break has not been ended yet.
func (b Break) Open() bool {
	return b.EndTime == nil
}

// Attendance is the per-employee-per-day record. The (EmployeeID, Date)
// pair is unique; Date is truncated to midnight UTC.
type Attendance struct {
	ID         string           `json:"id"`
	EmployeeID string           `json:"employeeId"`
	Date       time.Time        `json:"date"`
	CheckIn    *time.Time       `json:"checkIn,omitempty"`
	CheckOut   *time.Time       `json:"checkOut,omitempty"`
	TotalHours float64          `json:"totalHours"`
	Breaks     []Break          `json:"breaks"`
	Status     AttendanceStatus `json:"status"`
}

// OpenBreak returns the index of the currently open break, or -1.
func (a Attendance) OpenBreak() int {
	for i, b := range a.Breaks {
		if b.Open() {
			return i
		}
	}
	return -1
}

// Activity is an immutable log entry produced by the engines.
type Activity struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	LeadID     string       `json:"lead"`
	EmployeeID string       `json:"employee"`
	CreatedAt  time.Time    `json:"createdAt"`
}

// CallType classifies a scheduled interaction.
type CallType string

const (
	CallCold     CallType = "cold"
	CallFollowUp CallType = "follow_up"
	CallReferral CallType = "referral"
	CallDemo     CallType = "demo"
	CallOther    CallType = "other"
)

// CallStatus is the scheduling state of a call.
type CallStatus string

const (
	CallScheduled   CallStatus = "scheduled"
	CallCompleted   CallStatus = "completed"
	CallMissed      CallStatus = "missed"
	CallRescheduled CallStatus = "rescheduled"
)

type Call struct {
	ID              string     `json:"id"`
	LeadID          string     `json:"lead"`
	EmployeeID      string     `json:"employee"`
	ScheduledTime   time.Time  `json:"scheduledTime"`
	CallType        CallType   `json:"callType"`
	Status          CallStatus `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	DurationMinutes int        `json:"duration,omitempty"`
	Outcome         string     `json:"outcome,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
}

// CsvUpload records one bulk import for the upload history view.
type CsvUpload struct {
	ID              string    `json:"id"`
	FileName        string    `json:"fileName"`
	UploadDate      time.Time `json:"uploadDate"`
	TotalLeads      int       `json:"totalLeads"`
	AssignedLeads   int       `json:"assignedLeads"`
	UnassignedLeads int       `json:"unassignedLeads"`
}

// DayTruncate normalizes a timestamp to the calendar day used as the
// attendance uniqueness key.
func DayTruncate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
