package csvimport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/model"
)

var testNow = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

func TestParseNormalizesHeadersAndValues(t *testing.T) {
	csv := `Name, Email ,Phone,Received Date,Status,Type,Language,Location,Assigned Employee
John Doe,john@example.com,555-1234,2025-05-20,ongoing,hot,"English, German",New York,Alice Smith
`
	rows, err := Parse(strings.NewReader(csv), testNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, "John Doe", row.Name)
	require.Equal(t, "john@example.com", row.Email)
	require.Equal(t, model.LeadOngoing, row.Status)
	require.Equal(t, model.LeadHot, row.Type)
	require.Equal(t, []string{"English", "German"}, row.Languages)
	require.Equal(t, []string{"New York"}, row.Locations)
	require.Equal(t, "Alice Smith", row.AssignedEmployeeName)
	require.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), row.ReceivedDate)
}

func TestParseDefaults(t *testing.T) {
	csv := `name,email,language,location,receiveddate,status,type
Jane,jane@example.com,English,Berlin,not-a-date,,
`
	rows, err := Parse(strings.NewReader(csv), testNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	require.Equal(t, model.LeadOpen, row.Status)
	require.Equal(t, model.LeadWarm, row.Type)
	require.Equal(t, testNow(), row.ReceivedDate)
}

func TestParseSkipsIncompleteRows(t *testing.T) {
	csv := `name,email,phone,language,location
,missing-name@example.com,,English,Berlin
No Contact,,,English,Berlin
No Language,x@example.com,,,Berlin
Valid,v@example.com,,English,Berlin
`
	rows, err := Parse(strings.NewReader(csv), testNow)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "Valid", rows[0].Name)
}

func TestParseEmptyInput(t *testing.T) {
	_, err := Parse(strings.NewReader(""), testNow)
	require.Error(t, err)
}

func TestRowLeadConversion(t *testing.T) {
	row := Row{Name: "X", Email: "x@example.com", Status: model.LeadOpen, Type: model.LeadWarm}
	lead := row.Lead()
	require.Equal(t, model.SyncPending, lead.CrmSyncStatus)
	require.Equal(t, model.SyncPending, lead.EmailStatus)
	require.False(t, lead.Assigned())
}
