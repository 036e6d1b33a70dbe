package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gazestack/gazestack/internal/alerts"
	"github.com/gazestack/gazestack/internal/compute"
	"github.com/gazestack/gazestack/internal/session"
	"github.com/gazestack/gazestack/internal/store"
)

// Handler is the HTTP handler for all /api/v1/* endpoints. It reads live
// session state from the manager and historical snapshots from the store.
type Handler struct {
	sessions *session.Manager
	store    *store.Store
	alerts   *alerts.Engine
	mux      *http.ServeMux
}

// New creates a Handler and registers all routes.
func New(mgr *session.Manager, st *store.Store, al *alerts.Engine) http.Handler {
	h := &Handler{sessions: mgr, store: st, alerts: al, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/health", h.health)
	h.mux.HandleFunc("/api/v1/sessions", h.listSessions)
	h.mux.HandleFunc("/api/v1/sessions/", h.sessionSubtree) // {id} and {id}/{command}
	h.mux.HandleFunc("/api/v1/tuning", h.tuning)
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/api/v1/snapshot", h.snapshot)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// health returns GET /api/v1/health — session counts by state plus the
// average concentration level over tracking sessions.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	live := h.sessions.List()
	resp := HealthResponse{
		SessionCount: len(live),
		AlertCount:   len(h.alerts.Active()),
	}

	var total float64
	for _, s := range live {
		m := s.Metrics()
		switch m.State {
		case compute.StateTracking:
			resp.TrackingCount++
			total += m.ConcentrationLevel
		case compute.StateCalibrating:
			resp.CalibratingCount++
		default:
			resp.IdleCount++
		}
	}
	if resp.TrackingCount > 0 {
		resp.AverageLevel = total / float64(resp.TrackingCount)
	}

	jsonResp(w, http.StatusOK, resp)
}

// listSessions returns GET /api/v1/sessions — all live sessions.
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	live := h.sessions.List()
	out := make([]SessionResponse, 0, len(live))
	for _, s := range live {
		out = append(out, h.toSessionResponse(s))
	}
	jsonResp(w, http.StatusOK, out)
}

// sessionSubtree dispatches /api/v1/sessions/{id} and
// /api/v1/sessions/{id}/{command}.
func (h *Handler) sessionSubtree(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/sessions/")
	if rest == "" {
		h.listSessions(w, r)
		return
	}

	id, cmd, hasCmd := strings.Cut(rest, "/")
	s := h.sessions.Get(id)
	if s == nil {
		jsonErr(w, http.StatusNotFound, "session not found")
		return
	}

	if !hasCmd {
		if r.Method != http.MethodGet {
			jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		jsonResp(w, http.StatusOK, h.toSessionResponse(s))
		return
	}

	h.command(w, r, s, cmd)
}

// command handles POST /api/v1/sessions/{id}/start|stop|recalibrate.
func (h *Handler) command(w http.ResponseWriter, r *http.Request, s *session.Session, cmd string) {
	if r.Method != http.MethodPost {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	m, err := s.Command(cmd)
	if err != nil {
		jsonErr(w, http.StatusBadRequest, err.Error())
		return
	}
	h.store.Put(s.ID, m)
	jsonResp(w, http.StatusOK, h.toSessionResponse(s))
}

// tuning handles GET and PUT /api/v1/tuning.
func (h *Handler) tuning(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		jsonResp(w, http.StatusOK, toTuningResponse(h.sessions.Tuning()))

	case http.MethodPut:
		var payload TuningPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			jsonErr(w, http.StatusBadRequest, "malformed tuning body")
			return
		}
		h.sessions.SetTuning(payload.Apply(h.sessions.Tuning()))
		jsonResp(w, http.StatusOK, toTuningResponse(h.sessions.Tuning()))

	default:
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, h.alerts.Active())
}

// snapshot returns GET /api/v1/snapshot — the same full dump the dashboard
// stream broadcasts.
func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jsonResp(w, http.StatusOK, BuildSnapshot(h.sessions, h.store))
}

// BuildSnapshot assembles the full session snapshot. Shared with the
// dashboard stream hub so both surfaces emit identical payloads.
func BuildSnapshot(mgr *session.Manager, st *store.Store) SnapshotResponse {
	live := mgr.List()
	out := make([]SessionResponse, 0, len(live))
	for _, s := range live {
		out = append(out, sessionResponse(s, st))
	}
	return SnapshotResponse{
		Sessions:    out,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// --- helpers ----------------------------------------------------------------

func (h *Handler) toSessionResponse(s *session.Session) SessionResponse {
	return sessionResponse(s, h.store)
}

// sessionResponse maps a live session plus its stored trend to JSON.
func sessionResponse(s *session.Session, st *store.Store) SessionResponse {
	resp := SessionResponse{
		SessionID: s.ID,
		Label:     s.Label,
		CreatedAt: s.CreatedAt.UTC().Format(time.RFC3339),
		Metrics:   s.Metrics(),
	}
	// A snapshot older than the TTL means the detector is connected but has
	// gone quiet; exclude the stale trend, matching the store's List cutoff.
	if e, ok := st.Get(s.ID); ok && time.Since(e.UpdatedAt) <= st.TTL() {
		resp.UpdatedAt = e.UpdatedAt.UTC().Format(time.RFC3339)
		resp.Trend = e.Trend
	}
	return resp
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}
