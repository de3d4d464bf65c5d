package core

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/assign"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
)

// stubTeam extends the employee stub with the listing methods the assignment
// engine touches during onboarding and deletion.
type stubTeam struct {
	stubEmployees
	created []*model.Employee
	deleted []string
	others  []model.Employee
}

func (s *stubTeam) Create(ctx context.Context, e *model.Employee) error {
	s.created = append(s.created, e)
	return nil
}

func (s *stubTeam) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubTeam) GetByEmail(ctx context.Context, email string) (*model.Employee, error) {
	for _, e := range s.byID {
		if e.Email == email {
			return e, nil
		}
	}
	return nil, nil
}

func (s *stubTeam) ListActiveMatching(ctx context.Context, locations, languages []string) ([]model.Employee, error) {
	return nil, nil
}

func (s *stubTeam) ListActiveExcept(ctx context.Context, excludeID string) ([]model.Employee, error) {
	return s.others, nil
}

func newEmployeeService(team *stubTeam, leads *stubLeads) *EmployeeService {
	engine := assign.NewEngine(leads, team, &stubActivities{}, nil, &stubProducer{})
	s := NewEmployeeService(team, engine)
	s.now = func() time.Time { return testNow }
	return s
}

func TestCreateEmployeeGeneratesCode(t *testing.T) {
	team := &stubTeam{stubEmployees: stubEmployees{byID: map[string]*model.Employee{}}}
	s := newEmployeeService(team, &stubLeads{})

	emp, _, err := s.Create(context.Background(), &model.Employee{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "Alice@Example.com",
		Locations: []string{"New York"},
		Languages: []string{"English"},
	})
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^EMP-[0-9A-F]{6}$`), emp.Code)
	require.Equal(t, "alice@example.com", emp.Email)
	require.Equal(t, model.EmployeeActive, emp.Status)
	require.Len(t, team.created, 1)
}

func TestCreateEmployeeValidation(t *testing.T) {
	s := newEmployeeService(&stubTeam{stubEmployees: stubEmployees{byID: map[string]*model.Employee{}}}, &stubLeads{})

	cases := []model.Employee{
		{LastName: "Smith", Email: "a@b.com", Locations: []string{"x"}, Languages: []string{"y"}},
		{FirstName: "Alice", LastName: "Smith", Locations: []string{"x"}, Languages: []string{"y"}},
		{FirstName: "Alice", LastName: "Smith", Email: "a@b.com", Languages: []string{"y"}},
		{FirstName: "Alice", LastName: "Smith", Email: "a@b.com", Locations: []string{"x"}},
	}
	for _, c := range cases {
		_, _, err := s.Create(context.Background(), &c)
		require.True(t, fault.IsKind(err, fault.KindValidation))
	}
}

func TestCreateEmployeeDuplicateEmail(t *testing.T) {
	team := &stubTeam{stubEmployees: stubEmployees{byID: map[string]*model.Employee{
		"e1": {ID: "e1", Email: "taken@example.com"},
	}}}
	s := newEmployeeService(team, &stubLeads{})

	_, _, err := s.Create(context.Background(), &model.Employee{
		FirstName: "Bob",
		LastName:  "Jones",
		Email:     "taken@example.com",
		Locations: []string{"Berlin"},
		Languages: []string{"German"},
	})
	require.True(t, fault.IsKind(err, fault.KindConflict))
	require.Empty(t, team.created)
}

func TestDeleteBlockedWhenNoOtherActiveEmployees(t *testing.T) {
	team := &stubTeam{stubEmployees: stubEmployees{byID: map[string]*model.Employee{
		"e1": {ID: "e1", Status: model.EmployeeActive},
	}}}
	leads := &stubLeads{}
	s := newEmployeeService(team, leads)

	_, err := s.Delete(context.Background(), "e1")
	require.True(t, fault.IsKind(err, fault.KindResourceExhausted))
	require.Empty(t, team.deleted)
}

func TestDeleteReassignsThenRemoves(t *testing.T) {
	team := &stubTeam{
		stubEmployees: stubEmployees{byID: map[string]*model.Employee{
			"e1": {ID: "e1", Status: model.EmployeeActive},
		}},
		others: []model.Employee{{ID: "e2", Status: model.EmployeeActive}},
	}
	leads := &stubLeads{byID: map[string]*model.Lead{}}
	s := newEmployeeService(team, leads)

	moved, err := s.Delete(context.Background(), "e1")
	require.NoError(t, err)
	require.Zero(t, moved)
	require.Equal(t, []string{"e1"}, team.deleted)
}
