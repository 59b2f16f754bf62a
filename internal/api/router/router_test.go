package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medvoice-ai/hospital-scheduler/internal/availability"
	"github.com/medvoice-ai/hospital-scheduler/internal/booking"
	"github.com/medvoice-ai/hospital-scheduler/internal/http/handlers"
	"github.com/medvoice-ai/hospital-scheduler/internal/ledger"
	"github.com/medvoice-ai/hospital-scheduler/pkg/logging"
)

const testAdminSecret = "router-test-secret"

type memoryStore struct {
	specs []availability.Specialty
}

func (m *memoryStore) ListSpecialties(context.Context) ([]availability.Specialty, error) {
	return m.specs, nil
}

func (m *memoryStore) GetSpecialty(_ context.Context, name string) (*availability.Specialty, error) {
	for i := range m.specs {
		if m.specs[i].Name == name {
			return &m.specs[i], nil
		}
	}
	return nil, availability.ErrSpecialtyNotFound
}

type memoryLedger struct {
	appts []ledger.Appointment
}

func (m *memoryLedger) Append(_ context.Context, appt *ledger.Appointment) error {
	if appt.ID == "" {
		appt.ID = "appt-test"
	}
	m.appts = append(m.appts, *appt)
	return nil
}

func (m *memoryLedger) ListAll(context.Context) ([]ledger.Appointment, error) {
	return m.appts, nil
}

type routerEngine struct{}

func (routerEngine) Book(_ context.Context, req booking.Request) (*booking.Result, error) {
	return &booking.Result{Appointment: ledger.Appointment{
		ID:          "appt-1",
		PatientName: req.PatientName,
		DoctorName:  req.DoctorName,
	}}, nil
}

func (routerEngine) SuggestSlots(context.Context, string, string) ([]string, []string, error) {
	return []string{"11 July at 09 AM"}, nil, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.Default()

	store := &memoryStore{specs: []availability.Specialty{
		{Name: "Cardiology", Doctors: []availability.Doctor{{Name: "Dr Sambaji"}}},
	}}
	ml := &memoryLedger{appts: []ledger.Appointment{{ID: "a1"}}}

	return New(&Config{
		Logger:              logger,
		BookingHandler:      handlers.NewBookingHandler(routerEngine{}, logger),
		SpecialtiesHandler:  handlers.NewSpecialtiesHandler(store, logger),
		AppointmentsHandler: handlers.NewAppointmentsHandler(ml, logger),
		AdminAuthSecret:     testAdminSecret,
	})
}

func TestRouterHealth(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestRouterSpecialties(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/specialties/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/specialties/Cardiology/doctors/Dr%20Sambaji/slots", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "11 July at 09 AM")
}

func TestRouterAdminRequiresJWT(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	signed, err := token.SignedString([]byte(testAdminSecret))
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/admin/appointments", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a1")
}
