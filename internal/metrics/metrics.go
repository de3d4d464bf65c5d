// Package metrics provides Prometheus observability metrics for the CRM
// backend: lead distribution outcomes and attendance/presence health.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry is the custom prometheus registry for our application
var Registry = prometheus.NewRegistry()

// factory allows us to register metrics to our custom Registry directly
var factory = promauto.With(Registry)

// LeadsAssignedTotal counts leads assigned to an employee, labeled by the
// trigger that caused the assignment (onboarding, reassignment, import,
// import_direct, sweep, bulk).
var LeadsAssignedTotal = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "assignment",
	Name:      "leads_assigned_total",
	Help:      "Total leads assigned to employees, by trigger",
}, []string{"trigger"})

// AssignmentBatchesAborted counts whole batches that aborted because no
// active employee was available.
var AssignmentBatchesAborted = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "assignment",
	Name:      "batches_aborted_total",
	Help:      "Assignment batches aborted with zero partial assignments",
})

// ImportRowsTotal counts CSV rows parsed during bulk import.
var ImportRowsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "importer",
	Name:      "rows_total",
	Help:      "Total CSV lead rows successfully parsed",
})

// ImportRowErrors counts CSV rows rejected during parsing.
var ImportRowErrors = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "importer",
	Name:      "row_errors_total",
	Help:      "Total CSV lead rows rejected by the parser",
})

// AutoBreaksStarted counts breaks started by the grace timer or the sweeper.
var AutoBreaksStarted = factory.NewCounterVec(prometheus.CounterOpts{
	Namespace: "presence",
	Name:      "auto_breaks_started_total",
	Help:      "Breaks started automatically, by source (grace_timer, sweeper)",
}, []string{"source"})

// AutoBreaksSkipped counts grace timers that fired but found tabs reopened.
var AutoBreaksSkipped = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "presence",
	Name:      "auto_breaks_skipped_total",
	Help:      "Grace timers that no-opped because tabs reopened in time",
})

// SweepRunsTotal counts presence sweeper ticks.
var SweepRunsTotal = factory.NewCounter(prometheus.CounterOpts{
	Namespace: "presence",
	Name:      "sweep_runs_total",
	Help:      "Background presence sweep executions",
})

// OnlineEmployees tracks the number of employees currently marked online.
var OnlineEmployees = factory.NewGauge(prometheus.GaugeOpts{
	Namespace: "presence",
	Name:      "online_employees",
	Help:      "Employees currently marked online",
})
