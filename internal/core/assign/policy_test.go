package assign

import (
	"testing"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/model"
)

func emp(id string, locations, languages []string) model.Employee {
	return model.Employee{ID: id, Locations: locations, Languages: languages, Status: model.EmployeeActive}
}

func TestRankPrefersBothDimensions(t *testing.T) {
	lead := model.Lead{Locations: []string{"New York"}, Languages: []string{"English"}}
	pool := []model.Employee{
		emp("e1", []string{"New York"}, []string{"English"}),
		emp("e2", []string{"New York"}, []string{"German"}),
		emp("e3", []string{"Berlin"}, []string{"English"}),
	}

	ranked := Rank(lead, pool)
	require.Len(t, ranked, 1)
	require.Equal(t, "e1", ranked[0].ID)
}

func TestRankFallsBackToEitherDimension(t *testing.T) {
	lead := model.Lead{Locations: []string{"New York"}, Languages: []string{"English"}}
	pool := []model.Employee{
		emp("e1", []string{"New York"}, []string{"German"}),
		emp("e2", []string{"Berlin"}, []string{"English"}),
		emp("e3", []string{"Berlin"}, []string{"German"}),
	}

	ranked := Rank(lead, pool)
	require.Len(t, ranked, 2)
	require.Equal(t, "e1", ranked[0].ID)
	require.Equal(t, "e2", ranked[1].ID)
}

func TestRankFallsBackToFullPool(t *testing.T) {
	lead := model.Lead{Locations: []string{"Tokyo"}, Languages: []string{"Japanese"}}
	pool := []model.Employee{
		emp("e1", []string{"New York"}, []string{"English"}),
		emp("e2", []string{"Berlin"}, []string{"German"}),
	}

	ranked := Rank(lead, pool)
	require.Len(t, ranked, 2)
}
