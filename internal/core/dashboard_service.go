package core

import (
	"context"
	"fmt"
	"math"
	"time"

	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

type DashboardService struct {
	leads     repository.LeadRepository
	employees repository.EmployeeRepository
	calls     repository.CallRepository
	now       func() time.Time
}

func NewDashboardService(leads repository.LeadRepository, employees repository.EmployeeRepository, calls repository.CallRepository) *DashboardService {
	return &DashboardService{leads: leads, employees: employees, calls: calls, now: time.Now}
}

// AdminMetrics is the admin dashboard headline row.
type AdminMetrics struct {
	TotalLeads       int     `json:"totalLeads"`
	UnassignedLeads  int     `json:"unassignedLeads"`
	AssignedThisWeek int     `json:"assignedThisWeek"`
	ActiveEmployees  int     `json:"activeEmployees"`
	OnlineEmployees  int     `json:"onlineEmployees"`
	ConversionRate   float64 `json:"conversionRate"`
}

// EmployeeMetrics is the per-salesperson dashboard card.
type EmployeeMetrics struct {
	TotalLeads     int `json:"totalLeads"`
	OpenLeads      int `json:"openLeads"`
	ClosedLeads    int `json:"closedLeads"`
	ScheduledCalls int `json:"scheduledCalls"`
}

// TrendPoint is one day in the closed-leads trend.
type TrendPoint struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Closed int    `json:"closed"`
}

// EmployeeWithStats decorates an employee with lead counts for the team view.
type EmployeeWithStats struct {
	model.Employee
	TotalLeads  int `json:"totalLeads"`
	ClosedLeads int `json:"closedLeads"`
}

// Admin aggregates the headline metrics. Conversion rate is closed over
// total, zero when there are no leads.
func (s *DashboardService) Admin(ctx context.Context) (*AdminMetrics, error) {
	total, err := s.leads.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}
	unassigned, err := s.leads.CountUnassigned(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting unassigned leads: %w", err)
	}

	weekAgo := s.now().AddDate(0, 0, -7)
	assignedWeek, err := s.leads.CountAssignedSince(ctx, weekAgo)
	if err != nil {
		return nil, fmt.Errorf("counting recent assignments: %w", err)
	}

	active, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing active employees: %w", err)
	}
	online, err := s.employees.CountOnline(ctx)
	if err != nil {
		return nil, fmt.Errorf("counting online employees: %w", err)
	}

	closedByEmp, err := s.leads.CountGroupedByEmployee(ctx, model.LeadClosed)
	if err != nil {
		return nil, fmt.Errorf("counting closed leads: %w", err)
	}
	closed := 0
	for _, n := range closedByEmp {
		closed += n
	}

	m := &AdminMetrics{
		TotalLeads:       total,
		UnassignedLeads:  unassigned,
		AssignedThisWeek: assignedWeek,
		ActiveEmployees:  len(active),
		OnlineEmployees:  online,
	}
	if total > 0 {
		m.ConversionRate = round2(float64(closed) / float64(total) * 100)
	}
	return m, nil
}

// ForEmployee aggregates one salesperson's counters.
func (s *DashboardService) ForEmployee(ctx context.Context, employeeID string) (*EmployeeMetrics, error) {
	total, err := s.leads.CountByEmployee(ctx, employeeID, "")
	if err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}
	open, err := s.leads.CountByEmployee(ctx, employeeID, model.LeadOpen)
	if err != nil {
		return nil, fmt.Errorf("counting open leads: %w", err)
	}
	closed, err := s.leads.CountByEmployee(ctx, employeeID, model.LeadClosed)
	if err != nil {
		return nil, fmt.Errorf("counting closed leads: %w", err)
	}
	calls, err := s.calls.CountByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("counting calls: %w", err)
	}

	return &EmployeeMetrics{
		TotalLeads:     total,
		OpenLeads:      open,
		ClosedLeads:    closed,
		ScheduledCalls: calls,
	}, nil
}

// ClosedTrend buckets the last 14 days of closed leads by calendar day,
// including empty days.
func (s *DashboardService) ClosedTrend(ctx context.Context) ([]TrendPoint, error) {
	to := s.now()
	from := model.DayTruncate(to.AddDate(0, 0, -13))

	closed, err := s.leads.ListClosedBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("listing closed leads: %w", err)
	}

	byDay := make(map[string]int)
	for _, l := range closed {
		if l.ClosedDate == nil {
			continue
		}
		byDay[l.ClosedDate.UTC().Format("2006-01-02")]++
	}

	points := make([]TrendPoint, 0, 14)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		points = append(points, TrendPoint{Date: key, Closed: byDay[key]})
	}
	return points, nil
}

// TeamStats lists all employees decorated with their lead counts using two
// group-count queries instead of a query per employee.
func (s *DashboardService) TeamStats(ctx context.Context) ([]EmployeeWithStats, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing employees: %w", err)
	}

	totals, err := s.leads.CountGroupedByEmployee(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("counting leads: %w", err)
	}
	closed, err := s.leads.CountGroupedByEmployee(ctx, model.LeadClosed)
	if err != nil {
		return nil, fmt.Errorf("counting closed leads: %w", err)
	}

	stats := make([]EmployeeWithStats, 0, len(employees))
	for _, e := range employees {
		stats = append(stats, EmployeeWithStats{
			Employee:    e,
			TotalLeads:  totals[e.ID],
			ClosedLeads: closed[e.ID],
		})
	}
	return stats, nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
