package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"salescrm.service/internal/core/fault"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps the service error kinds onto HTTP statuses. Anything
// unclassified is a 500 and gets logged; classified errors are the caller's
// problem and only surface in the response body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case fault.IsKind(err, fault.KindValidation):
		status = http.StatusBadRequest
	case fault.IsKind(err, fault.KindNotFound):
		status = http.StatusNotFound
	case fault.IsKind(err, fault.KindConflict):
		status = http.StatusConflict
	case fault.IsKind(err, fault.KindResourceExhausted):
		status = http.StatusUnprocessableEntity
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
