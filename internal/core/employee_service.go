package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core/assign"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

type EmployeeService struct {
	employees repository.EmployeeRepository
	engine    *assign.Engine
	now       func() time.Time
}

func NewEmployeeService(employees repository.EmployeeRepository, engine *assign.Engine) *EmployeeService {
	return &EmployeeService{employees: employees, engine: engine, now: time.Now}
}

// Create validates and stores a new employee, then runs the onboarding
// distribution so matching unassigned leads land on the team right away.
// Returns the employee plus the number of leads distributed.
func (s *EmployeeService) Create(ctx context.Context, e *model.Employee) (*model.Employee, int, error) {
	e.FirstName = strings.TrimSpace(e.FirstName)
	e.LastName = strings.TrimSpace(e.LastName)
	e.Email = strings.TrimSpace(strings.ToLower(e.Email))

	if e.FirstName == "" || e.LastName == "" {
		return nil, 0, fault.Validation("first and last name are required")
	}
	if e.Email == "" {
		return nil, 0, fault.Validation("email is required")
	}
	if len(e.Locations) == 0 {
		return nil, 0, fault.Validation("at least one location is required")
	}
	if len(e.Languages) == 0 {
		return nil, 0, fault.Validation("at least one language is required")
	}

	existing, err := s.employees.GetByEmail(ctx, e.Email)
	if err != nil {
		return nil, 0, fmt.Errorf("checking email: %w", err)
	}
	if existing != nil {
		return nil, 0, fault.Conflict("email %s is already in use", e.Email)
	}

	e.ID = uuid.NewString()
	e.Code, err = newEmployeeCode()
	if err != nil {
		return nil, 0, fmt.Errorf("generating employee code: %w", err)
	}
	if e.Status == "" {
		e.Status = model.EmployeeActive
	}
	e.IsOnline = false
	e.ActiveTabCount = 0
	e.CreatedAt = s.now()

	if err := s.employees.Create(ctx, e); err != nil {
		return nil, 0, fmt.Errorf("creating employee: %w", err)
	}

	distributed, err := s.engine.OnboardEmployee(ctx, *e)
	if err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("employee_id", e.ID).Msg("Onboarding distribution failed")
		distributed = 0
	}

	log.Ctx(ctx).Info().Str("employee_id", e.ID).Str("code", e.Code).
		Int("leads_distributed", distributed).Msg("Employee created")
	return e, distributed, nil
}

func (s *EmployeeService) Get(ctx context.Context, id string) (*model.Employee, error) {
	e, err := s.employees.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading employee: %w", err)
	}
	if e == nil {
		return nil, fault.NotFound("employee %s not found", id)
	}
	return e, nil
}

func (s *EmployeeService) List(ctx context.Context) ([]model.Employee, error) {
	return s.employees.List(ctx)
}

// Update applies partial edits. Locations and languages may be replaced but
// never emptied.
func (s *EmployeeService) Update(ctx context.Context, e *model.Employee) (*model.Employee, error) {
	current, err := s.Get(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	if e.FirstName != "" {
		current.FirstName = e.FirstName
	}
	if e.LastName != "" {
		current.LastName = e.LastName
	}
	if e.Email != "" && !strings.EqualFold(e.Email, current.Email) {
		email := strings.ToLower(e.Email)
		other, err := s.employees.GetByEmail(ctx, email)
		if err != nil {
			return nil, fmt.Errorf("checking email: %w", err)
		}
		if other != nil && other.ID != current.ID {
			return nil, fault.Conflict("email %s is already in use", email)
		}
		current.Email = email
	}
	if e.Locations != nil {
		if len(e.Locations) == 0 {
			return nil, fault.Validation("at least one location is required")
		}
		current.Locations = e.Locations
	}
	if e.Languages != nil {
		if len(e.Languages) == 0 {
			return nil, fault.Validation("at least one language is required")
		}
		current.Languages = e.Languages
	}
	if e.Status != "" {
		current.Status = e.Status
	}

	if err := s.employees.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("updating employee: %w", err)
	}
	return current, nil
}

// Delete reassigns the employee's working leads to the rest of the team and
// then removes the record. With no other active employees the reassignment
// fails and nothing is deleted.
func (s *EmployeeService) Delete(ctx context.Context, id string) (int, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return 0, err
	}

	moved, err := s.engine.ReassignFrom(ctx, id)
	if err != nil {
		return 0, err
	}

	if err := s.employees.Delete(ctx, id); err != nil {
		return 0, fmt.Errorf("deleting employee: %w", err)
	}

	log.Ctx(ctx).Info().Str("employee_id", id).Int("leads_reassigned", moved).Msg("Employee deleted")
	return moved, nil
}

// newEmployeeCode builds the human-readable EMP-XXXXXX identifier shown in
// the admin UI.
func newEmployeeCode() (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return "EMP-" + strings.ToUpper(hex.EncodeToString(buf)), nil
}
