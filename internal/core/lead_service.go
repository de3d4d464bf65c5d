// Package core holds the application services the HTTP handlers and workers
// call into. Services own validation and cross-entity rules; the stores own
// persistence and the assign/attendance packages own the two engines.
package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/messaging"
	"salescrm.service/internal/ports/repository"
)

type LeadService struct {
	leads      repository.LeadRepository
	employees  repository.EmployeeRepository
	activities repository.ActivityRepository
	uploads    repository.CsvUploadRepository
	producer   messaging.EventProducer
	now        func() time.Time
}

func NewLeadService(
	leads repository.LeadRepository,
	employees repository.EmployeeRepository,
	activities repository.ActivityRepository,
	uploads repository.CsvUploadRepository,
	producer messaging.EventProducer,
) *LeadService {
	return &LeadService{
		leads:      leads,
		employees:  employees,
		activities: activities,
		uploads:    uploads,
		producer:   producer,
		now:        time.Now,
	}
}

// Create stores a new, unassigned lead. Missing status and type fall back to
// open/warm, and a missing received date to now.
func (s *LeadService) Create(ctx context.Context, l *model.Lead) (*model.Lead, error) {
	l.Name = strings.TrimSpace(l.Name)
	if l.Name == "" {
		return nil, fault.Validation("lead name is required")
	}
	if l.Email == "" && l.Phone == "" {
		return nil, fault.Validation("lead needs an email or a phone number")
	}

	now := s.now()
	l.ID = uuid.NewString()
	l.CreatedAt = now
	if l.ReceivedDate.IsZero() {
		l.ReceivedDate = now
	}
	if l.Status == "" {
		l.Status = model.LeadOpen
	}
	if l.Type == "" {
		l.Type = model.LeadWarm
	}
	l.AssignedEmployee = ""
	l.CrmSyncStatus = model.SyncPending
	l.EmailStatus = model.SyncPending

	if err := s.leads.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("creating lead: %w", err)
	}
	return l, nil
}

func (s *LeadService) Get(ctx context.Context, id string) (*model.Lead, error) {
	l, err := s.leads.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading lead: %w", err)
	}
	if l == nil {
		return nil, fault.NotFound("lead %s not found", id)
	}
	return l, nil
}

func (s *LeadService) List(ctx context.Context, f repository.LeadFilter) ([]model.Lead, error) {
	return s.leads.List(ctx, f)
}

func (s *LeadService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.leads.Delete(ctx, id)
}

// StatusUpdate carries the mutable scheduling fields alongside the new status.
type StatusUpdate struct {
	Status           model.LeadStatus
	ScheduledDate    *time.Time
	ScheduledEndTime *time.Time
}

// UpdateStatus moves a lead through its lifecycle. Closing a lead that still
// has a call scheduled in the future is rejected, and a new reservation that
// overlaps another lead of the same employee is rejected.
func (s *LeadService) UpdateStatus(ctx context.Context, id string, upd StatusUpdate) (*model.Lead, error) {
	lead, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()

	if upd.Status == model.LeadClosed && lead.ScheduledDate != nil && lead.ScheduledDate.After(now) {
		return nil, fault.Conflict("cannot close a lead with an upcoming scheduled call")
	}

	if upd.ScheduledDate != nil && upd.ScheduledEndTime != nil && lead.Assigned() {
		overlap, err := s.leads.HasScheduleOverlap(ctx, lead.ID, lead.AssignedEmployee, *upd.ScheduledDate, *upd.ScheduledEndTime)
		if err != nil {
			return nil, fmt.Errorf("checking schedule overlap: %w", err)
		}
		if overlap {
			return nil, fault.Conflict("employee already has a call scheduled in that window")
		}
		lead.ScheduledDate = upd.ScheduledDate
		lead.ScheduledEndTime = upd.ScheduledEndTime
	}

	lead.Status = upd.Status
	if upd.Status == model.LeadClosed {
		lead.ClosedDate = &now
	} else {
		lead.ClosedDate = nil
	}

	if err := s.leads.Update(ctx, lead); err != nil {
		return nil, fmt.Errorf("updating lead: %w", err)
	}

	actType := model.ActivityUpdated
	if upd.Status == model.LeadClosed {
		actType = model.ActivityClosed
	}
	s.logActivity(ctx, actType, lead.ID, lead.AssignedEmployee)

	return lead, nil
}

// BulkAssign hands a picked set of leads to one employee in a single
// update-many, then emits the per-lead side effects.
func (s *LeadService) BulkAssign(ctx context.Context, leadIDs []string, employeeID string) (int64, error) {
	if len(leadIDs) == 0 {
		return 0, fault.Validation("no leads selected")
	}

	emp, err := s.employees.GetByID(ctx, employeeID)
	if err != nil {
		return 0, fmt.Errorf("loading employee: %w", err)
	}
	if emp == nil {
		return 0, fault.NotFound("employee %s not found", employeeID)
	}
	if emp.Status != model.EmployeeActive {
		return 0, fault.Conflict("employee %s is not active", emp.Code)
	}

	now := s.now()
	updated, err := s.leads.AssignMany(ctx, leadIDs, employeeID, now)
	if err != nil {
		return 0, fmt.Errorf("assigning leads: %w", err)
	}

	for _, id := range leadIDs {
		lead, err := s.leads.GetByID(ctx, id)
		if err != nil || lead == nil || lead.AssignedEmployee != employeeID {
			continue
		}
		s.logActivity(ctx, model.ActivityAssigned, lead.ID, employeeID)
		event := messaging.LeadAssignedEvent{
			LeadID:     lead.ID,
			LeadName:   lead.Name,
			EmployeeID: employeeID,
			Trigger:    "bulk",
			AssignedAt: now,
		}
		if err := s.producer.PublishCrmSync(ctx, event); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to publish CRM sync event")
		}
		emailEvent := messaging.AssignmentEmailEvent{
			LeadID:        lead.ID,
			LeadName:      lead.Name,
			EmployeeID:    employeeID,
			EmployeeEmail: emp.Email,
			OccurredAt:    now,
		}
		if err := s.producer.PublishEmail(ctx, emailEvent); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("lead_id", lead.ID).Msg("Failed to publish email event")
		}
	}

	return updated, nil
}

// UploadHistory lists past bulk imports, newest first.
func (s *LeadService) UploadHistory(ctx context.Context) ([]model.CsvUpload, error) {
	return s.uploads.List(ctx)
}

func (s *LeadService) logActivity(ctx context.Context, t model.ActivityType, leadID, employeeID string) {
	act := &model.Activity{
		ID:         uuid.NewString(),
		Type:       t,
		LeadID:     leadID,
		EmployeeID: employeeID,
		CreatedAt:  s.now(),
	}
	if err := s.activities.Create(ctx, act); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("lead_id", leadID).Msg("Failed to record activity")
	}
}
