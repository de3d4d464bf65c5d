package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core"
)

type DashboardHandler struct {
	Service *core.DashboardService
}

func (h *DashboardHandler) Admin(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.Admin(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *DashboardHandler) ForEmployee(w http.ResponseWriter, r *http.Request) {
	m, err := h.Service.ForEmployee(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *DashboardHandler) ClosedTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.Service.ClosedTrend(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, points)
}

func (h *DashboardHandler) TeamStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.TeamStats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
