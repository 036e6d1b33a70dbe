package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gazestack/gazestack/internal/alerts"
	"github.com/gazestack/gazestack/internal/api"
	"github.com/gazestack/gazestack/internal/compute"
	"github.com/gazestack/gazestack/internal/config"
	"github.com/gazestack/gazestack/internal/session"
	"github.com/gazestack/gazestack/internal/store"
)

// --- test helpers -----------------------------------------------------------

type fixture struct {
	sessions *session.Manager
	store    *store.Store
	handler  http.Handler
}

func newFixture() *fixture {
	mgr := session.NewManager(compute.DefaultTuning())
	st := store.New(5 * time.Minute)
	al := alerts.New(config.AlertsConfig{})
	return &fixture{
		sessions: mgr,
		store:    st,
		handler:  api.New(mgr, st, al),
	}
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	f.handler.ServeHTTP(rr, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/health ---------------------------------------------------------

func TestHealth_Empty(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/api/v1/health", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.SessionCount != 0 || resp.AverageLevel != 0 {
		t.Errorf("empty health: %+v", resp)
	}
}

func TestHealth_CountsByState(t *testing.T) {
	f := newFixture()
	f.sessions.Open("idle-cam")
	calibrating := f.sessions.Open("cal-cam")
	if _, err := calibrating.Command(session.CommandStart); err != nil {
		t.Fatalf("start: %v", err)
	}

	rr := f.do(t, http.MethodGet, "/api/v1/health", "")
	var resp api.HealthResponse
	decode(t, rr, &resp)

	if resp.SessionCount != 2 {
		t.Errorf("session_count = %d, want 2", resp.SessionCount)
	}
	if resp.IdleCount != 1 || resp.CalibratingCount != 1 {
		t.Errorf("counts: idle=%d calibrating=%d, want 1/1", resp.IdleCount, resp.CalibratingCount)
	}
}

// --- /api/v1/sessions -------------------------------------------------------

func TestSessions_ListAndGet(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam-a")

	rr := f.do(t, http.MethodGet, "/api/v1/sessions", "")
	var list []api.SessionResponse
	decode(t, rr, &list)
	if len(list) != 1 || list[0].SessionID != s.ID {
		t.Fatalf("list: %+v", list)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/sessions/"+s.ID, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status: %d", rr.Code)
	}
	var one api.SessionResponse
	decode(t, rr, &one)
	if one.Label != "cam-a" {
		t.Errorf("label = %q, want cam-a", one.Label)
	}
	if one.Metrics.State != compute.StateIdle {
		t.Errorf("state = %q, want idle", one.Metrics.State)
	}
}

func TestSessions_GetMissingIs404(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/api/v1/sessions/nope", "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestSessions_CommandLifecycle(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")

	rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/start", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("start status: %d (body: %s)", rr.Code, rr.Body.String())
	}
	var resp api.SessionResponse
	decode(t, rr, &resp)
	if resp.Metrics.State != compute.StateCalibrating {
		t.Errorf("state after start = %q, want calibrating", resp.Metrics.State)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/recalibrate", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("recalibrate status: %d", rr.Code)
	}

	rr = f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/stop", "")
	decode(t, rr, &resp)
	if resp.Metrics.State != compute.StateIdle {
		t.Errorf("state after stop = %q, want idle", resp.Metrics.State)
	}
}

func TestSessions_UnknownCommandIs400(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")
	rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/reboot", "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func TestSessions_CommandRequiresPost(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")
	rr := f.do(t, http.MethodGet, "/api/v1/sessions/"+s.ID+"/start", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status: got %d, want 405", rr.Code)
	}
}

// --- /api/v1/tuning ---------------------------------------------------------

func TestTuning_GetReturnsDefaults(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/api/v1/tuning", "")

	var resp api.TuningResponse
	decode(t, rr, &resp)
	if resp.SmoothingFactor != compute.DefaultSmoothingFactor {
		t.Errorf("smoothing_factor = %v, want %v", resp.SmoothingFactor, compute.DefaultSmoothingFactor)
	}
	if resp.CalibrationFrames != compute.DefaultCalibrationFrames {
		t.Errorf("calibration_frames = %d, want %d", resp.CalibrationFrames, compute.DefaultCalibrationFrames)
	}
}

func TestTuning_PutIsPartialAndClamped(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")

	rr := f.do(t, http.MethodPut, "/api/v1/tuning", `{"sensitivity": 99, "smoothing_factor": 0.5}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d (body: %s)", rr.Code, rr.Body.String())
	}
	var resp api.TuningResponse
	decode(t, rr, &resp)

	if resp.Sensitivity != 5.0 { // clamped to the max
		t.Errorf("sensitivity = %v, want 5.0", resp.Sensitivity)
	}
	if resp.SmoothingFactor != 0.5 {
		t.Errorf("smoothing_factor = %v, want 0.5", resp.SmoothingFactor)
	}
	// Untouched fields keep their values.
	if resp.CalibrationFrames != compute.DefaultCalibrationFrames {
		t.Errorf("calibration_frames = %d, want unchanged", resp.CalibrationFrames)
	}
	// Live sessions picked up the change.
	if got := s.Tuning().SmoothingFactor; got != 0.5 {
		t.Errorf("live session smoothing = %v, want 0.5", got)
	}
}

func TestTuning_PutZeroWeightDisablesTerm(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")

	rr := f.do(t, http.MethodPut, "/api/v1/tuning", `{"focus_weight": 0, "stability_weight": 0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d (body: %s)", rr.Code, rr.Body.String())
	}
	var resp api.TuningResponse
	decode(t, rr, &resp)

	if resp.FocusWeight != 0 || resp.StabilityWeight != 0 {
		t.Errorf("weights = %v/%v, want 0/0", resp.StabilityWeight, resp.FocusWeight)
	}
	if got := s.Tuning().FocusWeight; got != 0 {
		t.Errorf("live session FocusWeight = %v, want 0", got)
	}
}

func TestTuning_MalformedBodyIs400(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodPut, "/api/v1/tuning", `{not json`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

// --- /api/v1/alerts and snapshot --------------------------------------------

func TestAlerts_EmptyList(t *testing.T) {
	f := newFixture()
	rr := f.do(t, http.MethodGet, "/api/v1/alerts", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	var resp []interface{}
	decode(t, rr, &resp)
	if len(resp) != 0 {
		t.Errorf("alerts: got %d, want 0", len(resp))
	}
}

func TestSnapshot_IncludesTrend(t *testing.T) {
	f := newFixture()
	s := f.sessions.Open("cam")
	f.store.Put(s.ID, compute.Metrics{State: compute.StateIdle})
	f.store.Put(s.ID, compute.Metrics{State: compute.StateIdle, ConcentrationLevel: 12})

	rr := f.do(t, http.MethodGet, "/api/v1/snapshot", "")
	var resp api.SnapshotResponse
	decode(t, rr, &resp)

	if resp.GeneratedAt == "" {
		t.Error("generated_at missing")
	}
	if len(resp.Sessions) != 1 {
		t.Fatalf("sessions: got %d, want 1", len(resp.Sessions))
	}
	if len(resp.Sessions[0].Trend) != 2 {
		t.Errorf("trend length = %d, want 2", len(resp.Sessions[0].Trend))
	}
}

func TestSessions_StaleTrendExcluded(t *testing.T) {
	mgr := session.NewManager(compute.DefaultTuning())
	st := store.New(time.Nanosecond) // everything is instantly stale
	h := api.New(mgr, st, alerts.New(config.AlertsConfig{}))

	s := mgr.Open("cam")
	st.Put(s.ID, compute.Metrics{State: compute.StateIdle, ConcentrationLevel: 10})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/sessions/"+s.ID, nil))

	var resp api.SessionResponse
	decode(t, rr, &resp)
	if len(resp.Trend) != 0 || resp.UpdatedAt != "" {
		t.Errorf("stale snapshot leaked: trend=%v updated_at=%q", resp.Trend, resp.UpdatedAt)
	}
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics_Exposition(t *testing.T) {
	mgr := session.NewManager(compute.DefaultTuning())
	mgr.Open("cam")
	h := api.NewMetricsHandler(mgr, alerts.New(config.AlertsConfig{}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status: %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		"gazestack_sessions",
		`state="idle"`,
		"gazestack_alerts_firing",
		"gazestack_concentration_level",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("exposition missing %q\n%s", want, body)
		}
	}
}
