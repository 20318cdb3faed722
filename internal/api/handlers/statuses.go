package handlers

import (
	"cruise-status-service/internal/api/dto"
	"cruise-status-service/internal/platform/obs"
	"cruise-status-service/internal/services"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type StatusHandler struct {
	Service *services.StatusService
	// Clock for requests without ?at=. Defaults to time.Now.
	Now func() time.Time
}

// now returns the evaluation instant: the RFC 3339 ?at= parameter when
// present, else the handler clock.
func (h *StatusHandler) now(r *http.Request) (time.Time, bool) {
	if raw := strings.TrimSpace(r.URL.Query().Get("at")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	if h.Now != nil {
		return h.Now(), true
	}
	return time.Now(), true
}

// List reports the status of every ship.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	now, ok := h.now(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
		return
	}

	statuses, err := h.Service.Statuses(r.Context(), now)
	if err != nil {
		log.Error().Err(err).Str("req_id", obs.RequestID(r.Context())).Msg("compute statuses failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListStatusResponse{Statuses: make([]dto.StatusResponse, 0, len(statuses))}
	for _, s := range statuses {
		res.Statuses = append(res.Statuses, dto.NewStatusResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Ship reports the status of the ship named in the path.
func (h *StatusHandler) Ship(w http.ResponseWriter, r *http.Request) {
	ship := strings.TrimSpace(chi.URLParam(r, "ship"))
	if ship == "" {
		writeError(w, r, http.StatusBadRequest, "ship is required")
		return
	}

	now, ok := h.now(r)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "at must be an RFC 3339 timestamp")
		return
	}

	rec, found, err := h.Service.ShipStatus(r.Context(), ship, now)
	if err != nil {
		log.Error().Err(err).Str("req_id", obs.RequestID(r.Context())).Str("ship", ship).Msg("compute ship status failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "ship not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewStatusResponse(rec))
}

// Schedule returns the reconciled itinerary of the ship named in the path.
func (h *StatusHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	ship := strings.TrimSpace(chi.URLParam(r, "ship"))
	if ship == "" {
		writeError(w, r, http.StatusBadRequest, "ship is required")
		return
	}

	sched, found, err := h.Service.ShipSchedule(r.Context(), ship)
	if err != nil {
		log.Error().Err(err).Str("req_id", obs.RequestID(r.Context())).Str("ship", ship).Msg("load ship schedule failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !found {
		writeError(w, r, http.StatusNotFound, "ship not found")
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewScheduleResponse(sched))
}
