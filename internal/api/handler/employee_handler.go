package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/model"
)

type EmployeeHandler struct {
	Service *core.EmployeeService
}

type employeeRequest struct {
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Email     string   `json:"email"`
	Locations []string `json:"locations"`
	Languages []string `json:"languages"`
	Status    string   `json:"status"`
}

func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	emp, distributed, err := h.Service.Create(r.Context(), &model.Employee{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Locations: req.Locations,
		Languages: req.Languages,
		Status:    model.EmployeeStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"employee":         emp,
		"leadsDistributed": distributed,
	})
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Service.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	emp, err := h.Service.Update(r.Context(), &model.Employee{
		ID:        mux.Vars(r)["id"],
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Locations: req.Locations,
		Languages: req.Languages,
		Status:    model.EmployeeStatus(req.Status),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, emp)
}

// Delete removes an employee; their working leads move to the rest of the
// team first, so the response reports how many were reassigned.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	moved, err := h.Service.Delete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"leadsReassigned": moved})
}
