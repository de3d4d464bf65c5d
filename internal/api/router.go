package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salescrm.service/internal/api/handler"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/assign"
	"salescrm.service/internal/core/attendance"
	"salescrm.service/internal/metrics"
)

// Services bundles everything the router needs wired in.
type Services struct {
	Leads      *core.LeadService
	Employees  *core.EmployeeService
	Calls      *core.CallService
	Activities *core.ActivityService
	Dashboard  *core.DashboardService
	Attendance *attendance.Service
	Engine     *assign.Engine
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(s Services) *mux.Router {
	leadHandler := handler.LeadHandler{Service: s.Leads, Engine: s.Engine}
	employeeHandler := handler.EmployeeHandler{Service: s.Employees}
	attendanceHandler := handler.AttendanceHandler{Service: s.Attendance}
	callHandler := handler.CallHandler{Service: s.Calls}
	activityHandler := handler.ActivityHandler{Service: s.Activities}
	dashboardHandler := handler.DashboardHandler{Service: s.Dashboard}

	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/leads", leadHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/leads", leadHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/leads/import", leadHandler.Import).Methods(http.MethodPost)
	api.HandleFunc("/leads/distribute", leadHandler.Distribute).Methods(http.MethodPost)
	api.HandleFunc("/leads/bulk-assign", leadHandler.BulkAssign).Methods(http.MethodPost)
	api.HandleFunc("/leads/uploads", leadHandler.UploadHistory).Methods(http.MethodGet)
	api.HandleFunc("/leads/{id}", leadHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leads/{id}", leadHandler.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/leads/{id}/status", leadHandler.UpdateStatus).Methods(http.MethodPatch)

	api.HandleFunc("/employees", employeeHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/employees", employeeHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", employeeHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/employees/{id}", employeeHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/attendance/{employeeId}/check-in", attendanceHandler.CheckIn).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/check-out", attendanceHandler.CheckOut).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/break/start", attendanceHandler.StartBreak).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/break/end", attendanceHandler.EndBreak).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/tab-open", attendanceHandler.TabOpened).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/tab-close", attendanceHandler.TabClosed).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/heartbeat", attendanceHandler.Heartbeat).Methods(http.MethodPost)
	api.HandleFunc("/attendance/{employeeId}/log", attendanceHandler.Log).Methods(http.MethodGet)

	api.HandleFunc("/calls", callHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/calls", callHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/calls/{id}", callHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/calls/{id}", callHandler.Update).Methods(http.MethodPut)
	api.HandleFunc("/calls/{id}", callHandler.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/activities", activityHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/activities/employee/{employeeId}", activityHandler.ForEmployee).Methods(http.MethodGet)

	api.HandleFunc("/dashboard/metrics", dashboardHandler.Admin).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/employee/{employeeId}", dashboardHandler.ForEmployee).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/trend", dashboardHandler.ClosedTrend).Methods(http.MethodGet)
	api.HandleFunc("/dashboard/team", dashboardHandler.TeamStats).Methods(http.MethodGet)

	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Service is operational."))
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return r
}
