package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

type CallService struct {
	calls     repository.CallRepository
	leads     repository.LeadRepository
	employees repository.EmployeeRepository
	now       func() time.Time
}

func NewCallService(calls repository.CallRepository, leads repository.LeadRepository, employees repository.EmployeeRepository) *CallService {
	return &CallService{calls: calls, leads: leads, employees: employees, now: time.Now}
}

// Schedule creates a call against an existing lead and employee.
func (s *CallService) Schedule(ctx context.Context, c *model.Call) (*model.Call, error) {
	if c.ScheduledTime.IsZero() {
		return nil, fault.Validation("scheduled time is required")
	}

	lead, err := s.leads.GetByID(ctx, c.LeadID)
	if err != nil {
		return nil, fmt.Errorf("loading lead: %w", err)
	}
	if lead == nil {
		return nil, fault.NotFound("lead %s not found", c.LeadID)
	}

	emp, err := s.employees.GetByID(ctx, c.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("loading employee: %w", err)
	}
	if emp == nil {
		return nil, fault.NotFound("employee %s not found", c.EmployeeID)
	}

	c.ID = uuid.NewString()
	if c.CallType == "" {
		c.CallType = model.CallOther
	}
	if c.Status == "" {
		c.Status = model.CallScheduled
	}
	c.CreatedAt = s.now()

	if err := s.calls.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("creating call: %w", err)
	}
	return c, nil
}

func (s *CallService) Get(ctx context.Context, id string) (*model.Call, error) {
	c, err := s.calls.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading call: %w", err)
	}
	if c == nil {
		return nil, fault.NotFound("call %s not found", id)
	}
	return c, nil
}

func (s *CallService) List(ctx context.Context, f repository.CallFilter) ([]model.Call, error) {
	return s.calls.List(ctx, f)
}

// Update applies outcome edits after the call happened or moved.
func (s *CallService) Update(ctx context.Context, c *model.Call) (*model.Call, error) {
	current, err := s.Get(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if !c.ScheduledTime.IsZero() {
		current.ScheduledTime = c.ScheduledTime
	}
	if c.CallType != "" {
		current.CallType = c.CallType
	}
	if c.Status != "" {
		current.Status = c.Status
	}
	if c.Notes != "" {
		current.Notes = c.Notes
	}
	if c.DurationMinutes != 0 {
		current.DurationMinutes = c.DurationMinutes
	}
	if c.Outcome != "" {
		current.Outcome = c.Outcome
	}

	if err := s.calls.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("updating call: %w", err)
	}
	return current, nil
}

func (s *CallService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.calls.Delete(ctx, id)
}
