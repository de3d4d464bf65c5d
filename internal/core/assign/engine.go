package assign

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/csvimport"
	"salescrm.service/internal/metrics"
	"salescrm.service/internal/ports/messaging"
	"salescrm.service/internal/ports/repository"
)

// Triggers label which operation caused an assignment, for activity and
// metric bookkeeping.
const (
	TriggerOnboarding   = "onboarding"
	TriggerReassignment = "reassignment"
	TriggerImport       = "import"
	TriggerImportDirect = "import_direct"
	TriggerSweep        = "sweep"
)

// Engine orchestrates lead distribution for the four assignment triggers.
// Batches are serialized by a mutex: the service runs as a single logical
// instance and two concurrent batches reading the same employee snapshot
// would skew the round-robin.
type Engine struct {
	mu         sync.Mutex
	leads      repository.LeadRepository
	employees  repository.EmployeeRepository
	activities repository.ActivityRepository
	uploads    repository.CsvUploadRepository
	producer   messaging.EventProducer
	now        func() time.Time
}

// NewEngine wires the assignment engine with its store and event collaborators.
func NewEngine(
	leads repository.LeadRepository,
	employees repository.EmployeeRepository,
	activities repository.ActivityRepository,
	uploads repository.CsvUploadRepository,
	producer messaging.EventProducer,
) *Engine {
	return &Engine{
		leads:      leads,
		employees:  employees,
		activities: activities,
		uploads:    uploads,
		producer:   producer,
		now:        time.Now,
	}
}

// ImportResult reports what a bulk import did.
type ImportResult struct {
	Total          int `json:"totalLeads"`
	Assigned       int `json:"assignedLeads"`
	DirectAssigned int `json:"directAssigned"`
	Unassigned     int `json:"unassignedLeads"`
}

// OnboardEmployee distributes existing unassigned leads that match the new
// hire's locations or languages across all active employees matching either
// dimension. Returns the number of leads assigned.
func (e *Engine) OnboardEmployee(ctx context.Context, hire model.Employee) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.employees.ListActiveMatching(ctx, hire.Locations, hire.Languages)
	if err != nil {
		return 0, fmt.Errorf("listing matching employees: %w", err)
	}
	if len(pool) == 0 {
		// The hire itself is active and matches, so this only happens when
		// the hire has not been persisted yet.
		return 0, nil
	}

	leads, err := e.leads.ListUnassignedMatching(ctx, hire.Locations, hire.Languages)
	if err != nil {
		return 0, fmt.Errorf("listing unassigned leads: %w", err)
	}

	var d Distributor
	for _, lead := range leads {
		emp := d.Next(Rank(lead, pool))
		if err := e.assign(ctx, lead, *emp, TriggerOnboarding); err != nil {
			return d.Assigned() - 1, err
		}
	}

	log.Ctx(ctx).Info().
		Str("employee_id", hire.ID).
		Int("assigned", d.Assigned()).
		Int("pool", len(pool)).
		Msg("Onboarding distribution complete")
	return d.Assigned(), nil
}

// ReassignFrom moves every open/ongoing/pending lead owned by the departing
// employee to the remaining active employees, round-robin over the fixed
// pool with no matching filter: availability beats fit, since the
// alternative is orphaned leads. Closed leads never move.
func (e *Engine) ReassignFrom(ctx context.Context, employeeID string) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pool, err := e.employees.ListActiveExcept(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("listing active employees: %w", err)
	}
	if len(pool) == 0 {
		metrics.AssignmentBatchesAborted.Inc()
		return 0, fault.ResourceExhausted("no other active employees available for reassignment")
	}

	leads, err := e.leads.ListAssignedTo(ctx, employeeID,
		[]model.LeadStatus{model.LeadOpen, model.LeadOngoing, model.LeadPending})
	if err != nil {
		return 0, fmt.Errorf("listing reassignable leads: %w", err)
	}

	var d Distributor
	for _, lead := range leads {
		emp := d.Next(pool)
		if err := e.assign(ctx, lead, *emp, TriggerReassignment); err != nil {
			return d.Assigned() - 1, err
		}
	}

	log.Ctx(ctx).Info().
		Str("employee_id", employeeID).
		Int("reassigned", d.Assigned()).
		Msg("Reassignment complete")
	return d.Assigned(), nil
}

// ImportLeads inserts the parsed rows and assigns each one: directly when the
// row names an existing active employee (exact first+last match,
// case-insensitive), otherwise by matching policy plus round-robin. The
// round-robin index counts only round-robin placements; direct matches do
// not skew the modulo. With no active employees the whole batch aborts
// before anything is inserted.
func (e *Engine) ImportLeads(ctx context.Context, fileName string, rows []csvimport.Row) (ImportResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(rows) == 0 {
		return ImportResult{}, fault.Validation("no valid leads found in CSV")
	}

	pool, err := e.employees.ListActive(ctx)
	if err != nil {
		return ImportResult{}, fmt.Errorf("listing active employees: %w", err)
	}
	if len(pool) == 0 {
		metrics.AssignmentBatchesAborted.Inc()
		return ImportResult{}, fault.ResourceExhausted("no active employees available for assignment")
	}

	leads := make([]*model.Lead, len(rows))
	for i, row := range rows {
		lead := row.Lead()
		lead.CreatedAt = e.now()
		leads[i] = &lead
	}
	if err := e.leads.InsertBatch(ctx, leads); err != nil {
		return ImportResult{}, fmt.Errorf("inserting imported leads: %w", err)
	}

	res := ImportResult{Total: len(rows)}
	var d Distributor
	for i, row := range rows {
		lead := *leads[i]

		if row.AssignedEmployeeName != "" {
			emp, err := e.findByFullName(ctx, row.AssignedEmployeeName)
			if err != nil {
				return res, err
			}
			if emp != nil {
				if err := e.assign(ctx, lead, *emp, TriggerImportDirect); err != nil {
					return res, err
				}
				res.DirectAssigned++
				res.Assigned++
				continue
			}
		}

		emp := d.Next(Rank(lead, pool))
		if err := e.assign(ctx, lead, *emp, TriggerImport); err != nil {
			return res, err
		}
		res.Assigned++
	}
	res.Unassigned = res.Total - res.Assigned

	upload := &model.CsvUpload{
		FileName:        fileName,
		UploadDate:      e.now(),
		TotalLeads:      res.Total,
		AssignedLeads:   res.Assigned,
		UnassignedLeads: res.Unassigned,
	}
	if err := e.uploads.Create(ctx, upload); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to record CSV upload history")
	}

	log.Ctx(ctx).Info().
		Str("file", fileName).
		Int("total", res.Total).
		Int("assigned", res.Assigned).
		Int("direct", res.DirectAssigned).
		Msg("Bulk import complete")
	return res, nil
}

// DistributeUnassigned hands every currently unassigned lead to an employee
// that is both active and online. With nobody online it distributes nothing
// and mutates nothing.
func (e *Engine) DistributeUnassigned(ctx context.Context) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	leads, err := e.leads.ListUnassigned(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing unassigned leads: %w", err)
	}
	if len(leads) == 0 {
		return 0, nil
	}

	pool, err := e.employees.ListActiveOnline(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing online employees: %w", err)
	}
	if len(pool) == 0 {
		log.Ctx(ctx).Info().Int("pending", len(leads)).Msg("No employees online, leaving leads unassigned")
		return 0, nil
	}

	var d Distributor
	for _, lead := range leads {
		emp := d.Next(Rank(lead, pool))
		if err := e.assign(ctx, lead, *emp, TriggerSweep); err != nil {
			return d.Assigned() - 1, err
		}
	}

	log.Ctx(ctx).Info().Int("distributed", d.Assigned()).Msg("Unassigned sweep complete")
	return d.Assigned(), nil
}

// assign persists one lead's new owner as a single atomic update, logs the
// activity and publishes the async side effects.
func (e *Engine) assign(ctx context.Context, lead model.Lead, emp model.Employee, trigger string) error {
	at := e.now()

	if err := e.leads.Assign(ctx, lead.ID, emp.ID, at); err != nil {
		return fmt.Errorf("assigning lead %s: %w", lead.ID, err)
	}

	activity := &model.Activity{
		Type:       model.ActivityAssigned,
		LeadID:     lead.ID,
		EmployeeID: emp.ID,
		CreatedAt:  at,
	}
	if err := e.activities.Create(ctx, activity); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to log assignment activity")
	}

	if err := e.producer.PublishCrmSync(ctx, messaging.LeadAssignedEvent{
		LeadID:     lead.ID,
		LeadName:   lead.Name,
		EmployeeID: emp.ID,
		Trigger:    trigger,
		AssignedAt: at,
	}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to publish CRM sync event")
	}

	if err := e.producer.PublishEmail(ctx, messaging.AssignmentEmailEvent{
		LeadID:        lead.ID,
		LeadName:      lead.Name,
		EmployeeID:    emp.ID,
		EmployeeEmail: emp.Email,
		OccurredAt:    at,
	}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to publish email event")
	}

	metrics.LeadsAssignedTotal.WithLabelValues(trigger).Inc()
	return nil
}

func (e *Engine) findByFullName(ctx context.Context, fullName string) (*model.Employee, error) {
	parts := strings.Fields(fullName)
	if len(parts) < 2 {
		return nil, nil
	}
	first := parts[0]
	last := strings.Join(parts[1:], " ")
	emp, err := e.employees.FindActiveByName(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("resolving employee %q: %w", fullName, err)
	}
	return emp, nil
}
