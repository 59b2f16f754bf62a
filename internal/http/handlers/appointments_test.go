package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

type stubLedger struct {
	appts []ledger.Appointment
	err   error
}

func (s *stubLedger) ListAll(context.Context) ([]ledger.Appointment, error) {
	return s.appts, s.err
}

func TestAppointmentsList(t *testing.T) {
	h := NewAppointmentsHandler(&stubLedger{appts: []ledger.Appointment{
		{ID: "a1", PatientName: "Asha Rao"},
		{ID: "a2", PatientName: "Ravi Kumar"},
	}}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Count        int                  `json:"count"`
		Appointments []ledger.Appointment `json:"appointments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "a1", resp.Appointments[0].ID)
}

func TestAppointmentsListFailure(t *testing.T) {
	h := NewAppointmentsHandler(&stubLedger{err: errors.New("scan failed")}, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
