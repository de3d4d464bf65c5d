package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"salescrm.service/internal/core"
	"salescrm.service/internal/core/model"
)

type ActivityHandler struct {
	Service *core.ActivityService
}

func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	acts, err := h.Service.Recent(r.Context(), parseLimit(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func (h *ActivityHandler) ForEmployee(w http.ResponseWriter, r *http.Request) {
	var types []model.ActivityType
	if raw := r.URL.Query().Get("types"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			types = append(types, model.ActivityType(strings.TrimSpace(t)))
		}
	}

	acts, err := h.Service.ForEmployee(r.Context(), mux.Vars(r)["employeeId"], parseLimit(r), types)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}

func parseLimit(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}
