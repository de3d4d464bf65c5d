package assign

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/fault"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/csvimport"
	"salescrm.service/internal/ports/repository"
)

// The fakes embed the interface so only the methods an engine path touches
// need implementing; anything else panics loudly.

type fakeEmployees struct {
	repository.EmployeeRepository
	employees []model.Employee
}

func (f *fakeEmployees) ListActive(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range f.employees {
		if e.Status == model.EmployeeActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) ListActiveOnline(ctx context.Context) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range f.employees {
		if e.Status == model.EmployeeActive && e.IsOnline {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) ListActiveExcept(ctx context.Context, excludeID string) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range f.employees {
		if e.Status == model.EmployeeActive && e.ID != excludeID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) ListActiveMatching(ctx context.Context, locations, languages []string) ([]model.Employee, error) {
	var out []model.Employee
	for _, e := range f.employees {
		if e.Status != model.EmployeeActive {
			continue
		}
		if sliceIntersects(e.Locations, locations) || sliceIntersects(e.Languages, languages) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployees) FindActiveByName(ctx context.Context, firstName, lastName string) (*model.Employee, error) {
	for _, e := range f.employees {
		if e.Status == model.EmployeeActive && strings.EqualFold(e.FirstName, firstName) && strings.EqualFold(e.LastName, lastName) {
			emp := e
			return &emp, nil
		}
	}
	return nil, nil
}

func sliceIntersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

type assignment struct {
	LeadID     string
	EmployeeID string
}

type fakeLeads struct {
	repository.LeadRepository
	unassigned  []model.Lead
	assignedTo  map[string][]model.Lead
	inserted    []*model.Lead
	assignments []assignment
}

func (f *fakeLeads) ListUnassigned(ctx context.Context) ([]model.Lead, error) {
	return f.unassigned, nil
}

func (f *fakeLeads) ListUnassignedMatching(ctx context.Context, locations, languages []string) ([]model.Lead, error) {
	var out []model.Lead
	for _, l := range f.unassigned {
		if sliceIntersects(l.Locations, locations) || sliceIntersects(l.Languages, languages) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLeads) ListAssignedTo(ctx context.Context, employeeID string, statuses []model.LeadStatus) ([]model.Lead, error) {
	var out []model.Lead
	for _, l := range f.assignedTo[employeeID] {
		for _, s := range statuses {
			if l.Status == s {
				out = append(out, l)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeLeads) InsertBatch(ctx context.Context, leads []*model.Lead) error {
	for i, l := range leads {
		if l.ID == "" {
			l.ID = "imported-" + string(rune('a'+i))
		}
	}
	f.inserted = append(f.inserted, leads...)
	return nil
}

func (f *fakeLeads) Assign(ctx context.Context, leadID, employeeID string, at time.Time) error {
	f.assignments = append(f.assignments, assignment{LeadID: leadID, EmployeeID: employeeID})
	return nil
}

type fakeActivities struct {
	repository.ActivityRepository
	entries []model.Activity
}

func (f *fakeActivities) Create(ctx context.Context, a *model.Activity) error {
	f.entries = append(f.entries, *a)
	return nil
}

type fakeUploads struct {
	repository.CsvUploadRepository
	uploads []model.CsvUpload
}

func (f *fakeUploads) Create(ctx context.Context, u *model.CsvUpload) error {
	f.uploads = append(f.uploads, *u)
	return nil
}

type fakeProducer struct {
	crmEvents   []interface{}
	emailEvents []interface{}
}

func (f *fakeProducer) PublishCrmSync(ctx context.Context, body interface{}) error {
	f.crmEvents = append(f.crmEvents, body)
	return nil
}

func (f *fakeProducer) PublishEmail(ctx context.Context, body interface{}) error {
	f.emailEvents = append(f.emailEvents, body)
	return nil
}

func newTestEngine(employees *fakeEmployees, leads *fakeLeads) (*Engine, *fakeActivities, *fakeUploads, *fakeProducer) {
	activities := &fakeActivities{}
	uploads := &fakeUploads{}
	producer := &fakeProducer{}
	e := NewEngine(leads, employees, activities, uploads, producer)
	e.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return e, activities, uploads, producer
}

func TestOnboardAssignsMatchingLeadsToBestFit(t *testing.T) {
	hire := emp("e1", []string{"New York"}, []string{"English"})
	employees := &fakeEmployees{employees: []model.Employee{
		hire,
		emp("e2", []string{"New York"}, []string{"German"}),
	}}
	leads := &fakeLeads{unassigned: []model.Lead{
		{ID: "l1", Locations: []string{"New York"}, Languages: []string{"English"}},
	}}

	engine, activities, _, producer := newTestEngine(employees, leads)

	n, err := engine.OnboardEmployee(context.Background(), hire)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	// e1 matches both dimensions, e2 only location; tier one wins.
	require.Equal(t, []assignment{{LeadID: "l1", EmployeeID: "e1"}}, leads.assignments)
	require.Len(t, activities.entries, 1)
	require.Equal(t, model.ActivityAssigned, activities.entries[0].Type)
	require.Len(t, producer.crmEvents, 1)
	require.Len(t, producer.emailEvents, 1)
}

func TestReassignRoundRobinOverRemainingTeam(t *testing.T) {
	employees := &fakeEmployees{employees: []model.Employee{
		emp("gone", nil, nil),
		emp("ea", []string{"Berlin"}, []string{"German"}),
		emp("eb", []string{"Tokyo"}, []string{"Japanese"}),
	}}
	leads := &fakeLeads{assignedTo: map[string][]model.Lead{
		"gone": {
			{ID: "l1", Status: model.LeadOpen},
			{ID: "l2", Status: model.LeadOngoing},
			{ID: "l3", Status: model.LeadPending},
			{ID: "l4", Status: model.LeadClosed}, // stays put
		},
	}}

	engine, _, _, _ := newTestEngine(employees, leads)

	n, err := engine.ReassignFrom(context.Background(), "gone")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.Equal(t, []assignment{
		{LeadID: "l1", EmployeeID: "ea"},
		{LeadID: "l2", EmployeeID: "eb"},
		{LeadID: "l3", EmployeeID: "ea"},
	}, leads.assignments)
}

func TestReassignWithNoOtherEmployeesAborts(t *testing.T) {
	employees := &fakeEmployees{employees: []model.Employee{emp("gone", nil, nil)}}
	leads := &fakeLeads{assignedTo: map[string][]model.Lead{
		"gone": {{ID: "l1", Status: model.LeadOpen}},
	}}

	engine, _, _, _ := newTestEngine(employees, leads)

	_, err := engine.ReassignFrom(context.Background(), "gone")
	require.Error(t, err)
	require.True(t, fault.IsKind(err, fault.KindResourceExhausted))
	require.Empty(t, leads.assignments)
}

func TestImportDirectNameDoesNotSkewRoundRobin(t *testing.T) {
	employees := &fakeEmployees{employees: []model.Employee{
		{ID: "alice", FirstName: "Alice", LastName: "Smith", Status: model.EmployeeActive},
		{ID: "ea", FirstName: "A", LastName: "A", Status: model.EmployeeActive},
		{ID: "eb", FirstName: "B", LastName: "B", Status: model.EmployeeActive},
	}}
	leads := &fakeLeads{}

	engine, _, uploads, _ := newTestEngine(employees, leads)

	rows := []csvimport.Row{
		{Name: "Lead 1"},
		{Name: "Lead 2", AssignedEmployeeName: "alice smith"},
		{Name: "Lead 3"},
		{Name: "Lead 4"},
	}

	res, err := engine.ImportLeads(context.Background(), "leads.csv", rows)
	require.NoError(t, err)
	require.Equal(t, 4, res.Total)
	require.Equal(t, 4, res.Assigned)
	require.Equal(t, 1, res.DirectAssigned)
	require.Equal(t, 0, res.Unassigned)

	// The direct match lands on alice without advancing the rotation, so the
	// remaining three rows walk the pool from index 0.
	require.Len(t, leads.assignments, 4)
	require.Equal(t, "alice", leads.assignments[0].EmployeeID)
	require.Equal(t, "alice", leads.assignments[1].EmployeeID)
	require.Equal(t, "ea", leads.assignments[2].EmployeeID)
	require.Equal(t, "eb", leads.assignments[3].EmployeeID)

	require.Len(t, uploads.uploads, 1)
	require.Equal(t, "leads.csv", uploads.uploads[0].FileName)
	require.Equal(t, 4, uploads.uploads[0].TotalLeads)
}

func TestImportWithNoActiveEmployeesInsertsNothing(t *testing.T) {
	employees := &fakeEmployees{}
	leads := &fakeLeads{}

	engine, _, uploads, _ := newTestEngine(employees, leads)

	_, err := engine.ImportLeads(context.Background(), "leads.csv", []csvimport.Row{{Name: "Lead 1"}})
	require.Error(t, err)
	require.True(t, fault.IsKind(err, fault.KindResourceExhausted))
	require.Empty(t, leads.inserted)
	require.Empty(t, leads.assignments)
	require.Empty(t, uploads.uploads)
}

func TestImportEmptyRowsRejected(t *testing.T) {
	engine, _, _, _ := newTestEngine(&fakeEmployees{}, &fakeLeads{})

	_, err := engine.ImportLeads(context.Background(), "empty.csv", nil)
	require.True(t, fault.IsKind(err, fault.KindValidation))
}

func TestDistributeUnassignedUsesOnlyOnlineEmployees(t *testing.T) {
	online := emp("on", []string{"Berlin"}, []string{"German"})
	online.IsOnline = true
	employees := &fakeEmployees{employees: []model.Employee{
		online,
		emp("off", []string{"Berlin"}, []string{"German"}),
	}}
	leads := &fakeLeads{unassigned: []model.Lead{
		{ID: "l1", Locations: []string{"Berlin"}},
		{ID: "l2", Locations: []string{"Berlin"}},
	}}

	engine, _, _, _ := newTestEngine(employees, leads)

	n, err := engine.DistributeUnassigned(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, n)
	for _, a := range leads.assignments {
		require.Equal(t, "on", a.EmployeeID)
	}
}

func TestDistributeUnassignedNobodyOnline(t *testing.T) {
	employees := &fakeEmployees{employees: []model.Employee{
		emp("off", []string{"Berlin"}, []string{"German"}),
	}}
	leads := &fakeLeads{unassigned: []model.Lead{{ID: "l1"}}}

	engine, _, _, _ := newTestEngine(employees, leads)

	n, err := engine.DistributeUnassigned(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, leads.assignments)
}
