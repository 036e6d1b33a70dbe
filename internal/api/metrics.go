package api

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/gazestack/gazestack/internal/alerts"
	"github.com/gazestack/gazestack/internal/compute"
	"github.com/gazestack/gazestack/internal/session"
)

// MetricsHandler serves GET /metrics in the Prometheus text exposition
// format. Families are assembled per scrape from live session state, so
// there is no registry to keep in sync with session churn.
type MetricsHandler struct {
	sessions *session.Manager
	alerts   *alerts.Engine
}

// NewMetricsHandler returns the /metrics handler.
func NewMetricsHandler(mgr *session.Manager, al *alerts.Engine) *MetricsHandler {
	return &MetricsHandler{sessions: mgr, alerts: al}
}

func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	families := h.collect()

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return
		}
	}
}

// collect builds the metric families for one scrape.
func (h *MetricsHandler) collect() []*dto.MetricFamily {
	live := h.sessions.List()

	counts := map[string]int{
		compute.StateIdle:        0,
		compute.StateCalibrating: 0,
		compute.StateTracking:    0,
	}
	levels := &dto.MetricFamily{
		Name: proto.String("gazestack_concentration_level"),
		Help: proto.String("Current concentration level (0-100) per session."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	baselines := &dto.MetricFamily{
		Name: proto.String("gazestack_baseline_diameter_px"),
		Help: proto.String("Calibrated pupil baseline in pixels per session."),
		Type: dto.MetricType_GAUGE.Enum(),
	}

	for _, s := range live {
		m := s.Metrics()
		counts[m.State]++

		labels := []*dto.LabelPair{{
			Name:  proto.String("session_id"),
			Value: proto.String(s.ID),
		}}
		levels.Metric = append(levels.Metric, &dto.Metric{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(m.ConcentrationLevel)},
		})
		if m.IsCalibrated {
			baselines.Metric = append(baselines.Metric, &dto.Metric{
				Label: labels,
				Gauge: &dto.Gauge{Value: proto.Float64(m.BaselineDiameter)},
			})
		}
	}

	sessions := &dto.MetricFamily{
		Name: proto.String("gazestack_sessions"),
		Help: proto.String("Live sessions by tracker state."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for _, state := range []string{compute.StateIdle, compute.StateCalibrating, compute.StateTracking} {
		sessions.Metric = append(sessions.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{
				Name:  proto.String("state"),
				Value: proto.String(state),
			}},
			Gauge: &dto.Gauge{Value: proto.Float64(float64(counts[state]))},
		})
	}

	firing := 0
	for _, a := range h.alerts.Active() {
		if a.State == "firing" {
			firing++
		}
	}
	alertsFam := &dto.MetricFamily{
		Name: proto.String("gazestack_alerts_firing"),
		Help: proto.String("Alerts currently firing."),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Gauge: &dto.Gauge{Value: proto.Float64(float64(firing))},
		}},
	}

	out := []*dto.MetricFamily{sessions, alertsFam}
	if len(levels.Metric) > 0 {
		out = append(out, levels)
	}
	if len(baselines.Metric) > 0 {
		out = append(out, baselines)
	}
	return out
}
