package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core/attendance"
)

type AttendanceHandler struct {
	Service *attendance.Service
}

func (h *AttendanceHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	att, err := h.Service.CheckIn(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	att, err := h.Service.CheckOut(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, att)
}

func (h *AttendanceHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.StartBreak(r.Context(), mux.Vars(r)["employeeId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Break started"})
}

func (h *AttendanceHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.EndBreak(r.Context(), mux.Vars(r)["employeeId"]); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Break ended"})
}

func (h *AttendanceHandler) TabOpened(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.TabOpened(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"activeTabCount": count})
}

func (h *AttendanceHandler) TabClosed(w http.ResponseWriter, r *http.Request) {
	count, err := h.Service.TabClosed(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"activeTabCount": count})
}

func (h *AttendanceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Heartbeat(r.Context(), mux.Vars(r)["employeeId"]); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AttendanceHandler) Log(w http.ResponseWriter, r *http.Request) {
	records, err := h.Service.Log(r.Context(), mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
