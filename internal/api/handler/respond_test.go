package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"salescrm.service/internal/core/fault"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fault.Validation("missing name"), http.StatusBadRequest},
		{fault.NotFound("lead not found"), http.StatusNotFound},
		{fault.Conflict("break already open"), http.StatusConflict},
		{fault.ResourceExhausted("no active employees"), http.StatusUnprocessableEntity},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, c := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)

		writeError(rec, req, c.err)

		require.Equal(t, c.want, rec.Code)
		require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Body.String(), "error")
	}
}
