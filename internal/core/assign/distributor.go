package assign

import (
	"salescrm.service/internal/core/model"
)

// Distributor spreads a batch of leads across employee pools with a rotating
// index. The counter is scoped to one batch and shared across every lead in
// it, even when the per-lead pool differs, so load stays spread when most
// leads rank the same candidates. Never shared process state.
type Distributor struct {
	next int
}

// Next picks the employee for the current lead and advances the counter.
// Returns nil for an empty pool.
func (d *Distributor) Next(pool []model.Employee) *model.Employee {
	if len(pool) == 0 {
		return nil
	}
	emp := pool[d.next%len(pool)]
	d.next++
	return &emp
}

// Assigned reports how many leads the distributor has placed so far.
func (d *Distributor) Assigned() int {
	return d.next
}
