package assign

import (
	"testing"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/model"
)

func TestDistributorRoundRobin(t *testing.T) {
	pool := []model.Employee{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	var d Distributor
	var got []string
	for i := 0; i < 7; i++ {
		got = append(got, d.Next(pool).ID)
	}

	require.Equal(t, []string{"a", "b", "c", "a", "b", "c", "a"}, got)
	require.Equal(t, 7, d.Assigned())
}

func TestDistributorCounterSharedAcrossPools(t *testing.T) {
	big := []model.Employee{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	small := []model.Employee{{ID: "x"}, {ID: "y"}}

	// The counter keeps advancing even when the pool changes between leads.
	var d Distributor
	require.Equal(t, "a", d.Next(big).ID)
	require.Equal(t, "y", d.Next(small).ID)
	require.Equal(t, "c", d.Next(big).ID)
	require.Equal(t, "y", d.Next(small).ID)
}

func TestDistributorEmptyPool(t *testing.T) {
	var d Distributor
	require.Nil(t, d.Next(nil))
	require.Equal(t, 0, d.Assigned())
}
