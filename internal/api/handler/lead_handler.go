// Package handler holds the HTTP handlers. They decode, call into a service
// and encode; all rules live in the services.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/assign"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/csvimport"
	"salescrm.service/internal/ports/repository"
)

type LeadHandler struct {
	Service *core.LeadService
	Engine  *assign.Engine
}

type createLeadRequest struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Phone        string   `json:"phone"`
	ReceivedDate string   `json:"receivedDate"`
	Status       string   `json:"status"`
	Type         string   `json:"type"`
	Languages    []string `json:"languages"`
	Locations    []string `json:"locations"`
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	lead := &model.Lead{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Status:    model.LeadStatus(req.Status),
		Type:      model.LeadType(req.Type),
		Languages: req.Languages,
		Locations: req.Locations,
	}
	if req.ReceivedDate != "" {
		if t, err := time.Parse(time.RFC3339, req.ReceivedDate); err == nil {
			lead.ReceivedDate = t
		}
	}

	created, err := h.Service.Create(r.Context(), lead)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := repository.LeadFilter{
		Search:     q.Get("search"),
		Status:     model.LeadStatus(q.Get("status")),
		EmployeeID: q.Get("employee"),
	}
	leads, err := h.Service.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, leads)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type updateStatusRequest struct {
	Status           string     `json:"status"`
	ScheduledDate    *time.Time `json:"scheduledDate"`
	ScheduledEndTime *time.Time `json:"scheduledEndTime"`
}

func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status == "" {
		http.Error(w, "Status is required", http.StatusBadRequest)
		return
	}

	lead, err := h.Service.UpdateStatus(r.Context(), mux.Vars(r)["id"], core.StatusUpdate{
		Status:           model.LeadStatus(req.Status),
		ScheduledDate:    req.ScheduledDate,
		ScheduledEndTime: req.ScheduledEndTime,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type bulkAssignRequest struct {
	LeadIDs    []string `json:"leadIds"`
	EmployeeID string   `json:"employeeId"`
}

func (h *LeadHandler) BulkAssign(w http.ResponseWriter, r *http.Request) {
	var req bulkAssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	updated, err := h.Service.BulkAssign(r.Context(), req.LeadIDs, req.EmployeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"assigned": updated})
}

// Distribute spreads the unassigned backlog over the online team.
func (h *LeadHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	n, err := h.Engine.DistributeUnassigned(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"distributed": n})
}

// Import parses a CSV body and runs the bulk import. The file name rides on
// a query parameter since the body is the raw CSV.
func (h *LeadHandler) Import(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("fileName")
	if fileName == "" {
		fileName = "upload.csv"
	}

	rows, err := csvimport.Parse(r.Body, time.Now)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.Engine.ImportLeads(r.Context(), fileName, rows)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *LeadHandler) UploadHistory(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.Service.UploadHistory(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}
