package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/model"
	"salescrm.service/internal/ports/repository"
)

type CallHandler struct {
	Service *core.CallService
}

type callRequest struct {
	LeadID          string    `json:"lead"`
	EmployeeID      string    `json:"employee"`
	ScheduledTime   time.Time `json:"scheduledTime"`
	CallType        string    `json:"callType"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes"`
	DurationMinutes int       `json:"duration"`
	Outcome         string    `json:"outcome"`
}

func (r callRequest) model(id string) *model.Call {
	return &model.Call{
		ID:              id,
		LeadID:          r.LeadID,
		EmployeeID:      r.EmployeeID,
		ScheduledTime:   r.ScheduledTime,
		CallType:        model.CallType(r.CallType),
		Status:          model.CallStatus(r.Status),
		Notes:           r.Notes,
		DurationMinutes: r.DurationMinutes,
		Outcome:         r.Outcome,
	}
}

func (h *CallHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	call, err := h.Service.Schedule(r.Context(), req.model(""))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, call)
}

func (h *CallHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	calls, err := h.Service.List(r.Context(), repository.CallFilter{
		EmployeeID: q.Get("employee"),
		LeadID:     q.Get("lead"),
		Status:     model.CallStatus(q.Get("status")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calls)
}

func (h *CallHandler) Get(w http.ResponseWriter, r *http.Request) {
	call, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req callRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	call, err := h.Service.Update(r.Context(), req.model(mux.Vars(r)["id"]))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, call)
}

func (h *CallHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
