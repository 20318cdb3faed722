package api

import (
	"context"
	"cruise-status-service/internal/adapters/zonelookup"
	"cruise-status-service/internal/api/dto"
	"cruise-status-service/internal/domain"
	"cruise-status-service/internal/services"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	rows []domain.ScheduleRow
	err  error
}

func (r stubRepo) ListRows(ctx context.Context) ([]domain.ScheduleRow, error) {
	return r.rows, r.err
}

func testRows() []domain.ScheduleRow {
	return []domain.ScheduleRow{
		{Ship: "Wind Spirit", Port: "Nice", Date: "2026-03-10", Arrival: "2026-03-10T08:00:00Z", Departure: "2026-03-10T18:00:00Z"},
		{Ship: "Wind Spirit", Port: "Valletta", Date: "2026-03-11", Arrival: "2026-03-11T08:00:00Z", Departure: "2026-03-11T17:00:00Z"},
		{Ship: "Star Pride", Port: "Juneau", Country: "USA", Date: "2026-03-12"},
	}
}

func newTestRouter(repo stubRepo) http.Handler {
	zones := services.NewZoneTableResolver(domain.ZoneTables{
		Ports: map[string]string{"Nice": "Europe/Paris", "Valletta": "Europe/Malta"},
		Ships: map[string]string{"WIND SPIRIT": "Europe/Berlin"},
	})
	enricher := &services.ZoneEnricher{
		Lookup: zonelookup.NewMockZoneLookup(map[string]string{"Juneau, USA": "America/Juneau"}),
		Known:  zones.HasPort,
	}
	svc := services.NewStatusService(repo, services.NewEngine(zones), enricher, nil)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("metrics"))
	})
	return NewRouter(svc, RouterOptions{Metrics: metrics})
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestRouter(stubRepo{}), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	newTestRouter(stubRepo{}).ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestListStatuses(t *testing.T) {
	rec := do(t, newTestRouter(stubRepo{rows: testRows()}), "/statuses?at=2026-03-10T12:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var res dto.ListStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Len(t, res.Statuses, 2)

	pride, wind := res.Statuses[0], res.Statuses[1]
	assert.Equal(t, "STAR PRIDE", pride.Ship)
	assert.Equal(t, "InTransit", pride.Status)
	assert.Equal(t, "Juneau", pride.CurrentPort)
	assert.Equal(t, "America/Juneau", pride.Zone, "zone filled by the lookup")

	assert.Equal(t, "WIND SPIRIT", wind.Ship)
	assert.Equal(t, "AtPort", wind.Status)
	assert.Equal(t, "At Port (Departs in 6h 0m)", wind.Display)
	assert.Equal(t, int64(360), wind.RemainingMinutes)
	assert.Equal(t, []string{"Valletta"}, wind.NextPorts)
	assert.Equal(t, "Europe/Berlin", wind.Zone)
}

func TestListStatusesBadAt(t *testing.T) {
	rec := do(t, newTestRouter(stubRepo{rows: testRows()}), "/statuses?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStatusesSourceError(t *testing.T) {
	rec := do(t, newTestRouter(stubRepo{err: errors.New("csv missing")}), "/statuses")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestShipStatus(t *testing.T) {
	h := newTestRouter(stubRepo{rows: testRows()})

	rec := do(t, h, "/ships/wind%20spirit/status?at=2026-03-10T20:00:00Z")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "InTransit", res.Status)
	assert.Equal(t, "Nice ➜ Valletta", res.CurrentPort)
	assert.Equal(t, "Nice", res.PreviousPort)
	assert.Equal(t, "In Transit (ETA: 12h 0m)", res.Display)

	rec = do(t, h, "/ships/Queen%20Mary/status")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShipSchedule(t *testing.T) {
	h := newTestRouter(stubRepo{rows: testRows()})

	rec := do(t, h, "/ships/STAR%20PRIDE/schedule")
	require.Equal(t, http.StatusOK, rec.Code)

	var res dto.ScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "STAR PRIDE", res.Ship)
	require.Len(t, res.Stops, 1)
	assert.Equal(t, "Juneau", res.Stops[0].Port)
	assert.Equal(t, "America/Juneau", res.Stops[0].Zone)
	require.NotNil(t, res.Stops[0].Arrival)
	require.NotNil(t, res.Stops[0].Departure)
	assert.Equal(t, 12.0, res.Stops[0].Departure.Sub(*res.Stops[0].Arrival).Hours())

	rec = do(t, h, "/ships/nobody/schedule")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsRoute(t *testing.T) {
	rec := do(t, newTestRouter(stubRepo{}), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "metrics", rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(stubRepo{}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/statuses", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
