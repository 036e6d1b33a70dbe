package ingest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"github.com/gazestack/gazestack/internal/alerts"
	"github.com/gazestack/gazestack/internal/api"
	"github.com/gazestack/gazestack/internal/compute"
	"github.com/gazestack/gazestack/internal/landmark"
	"github.com/gazestack/gazestack/internal/session"
	"github.com/gazestack/gazestack/internal/store"
)

const (
	// writeTimeout is the deadline for a single reply write.
	writeTimeout = 10 * time.Second

	// readTimeout is how long a detector may go silent before the
	// connection is treated as dead. Refreshed on every inbound message.
	readTimeout = 60 * time.Second

	// maxFrameBytes bounds one inbound envelope. A refined 478-point frame
	// with float coordinates sits well under this.
	maxFrameBytes = 64 * 1024
)

// json is the hot-path codec. Frames arrive at up to 60/s per detector, so
// the stdlib encoder's reflection cost adds up.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var upgrader = websocket.Upgrader{
	ReadBufferSize:  maxFrameBytes,
	WriteBufferSize: 4096,
	// Origin checks belong to the reverse proxy in front of this server.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// envelope is the inbound message union. Type selects which other fields
// are meaningful.
type envelope struct {
	Type    string            `json:"type"` // "frame" | "command" | "tune"
	Points  []landmark.Point  `json:"points,omitempty"`
	Command string            `json:"command,omitempty"`
	Tuning  api.TuningPayload `json:"tuning,omitempty"`
}

// reply is the outbound message union.
type reply struct {
	Type      string           `json:"type"` // "hello" | "metrics" | "error"
	SessionID string           `json:"session_id,omitempty"`
	Metrics   *compute.Metrics `json:"metrics,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// Handler upgrades detector connections and runs their session loops.
type Handler struct {
	sessions *session.Manager
	store    *store.Store
	alerts   *alerts.Engine
}

// New creates the /ws/ingest handler.
func New(mgr *session.Manager, st *store.Store, al *alerts.Engine) *Handler {
	return &Handler{sessions: mgr, store: st, alerts: al}
}

// ServeHTTP upgrades the connection, opens a session, and serves envelopes
// until the detector disconnects. On return the session and its stored
// snapshot are both dropped; the TTL eviction loop only covers sessions
// whose connection died without a close.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader has already written the error response.
		return
	}
	defer conn.Close()

	s := h.sessions.Open(r.URL.Query().Get("label"))
	defer func() {
		h.sessions.Close(s.ID)
		h.store.Remove(s.ID)
	}()

	conn.SetReadLimit(maxFrameBytes)

	if err := h.send(conn, reply{Type: "hello", SessionID: s.ID}); err != nil {
		return
	}

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout)) //nolint:errcheck
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("ingest: connection dropped", "session_id", s.ID, "err", err)
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(data, &env); err != nil {
			if err := h.send(conn, reply{Type: "error", Error: "malformed envelope"}); err != nil {
				return
			}
			continue
		}

		if err := h.send(conn, h.handle(s, env)); err != nil {
			return
		}
	}
}

// handle applies one envelope to the session and builds the reply. Invalid
// input degrades to an error reply; the connection and session survive.
func (h *Handler) handle(s *session.Session, env envelope) reply {
	switch env.Type {
	case "frame":
		m := s.Observe(env.Points)
		h.publish(s.ID, m)
		return reply{Type: "metrics", Metrics: &m}

	case "command":
		m, err := s.Command(env.Command)
		if err != nil {
			return reply{Type: "error", Error: err.Error()}
		}
		h.publish(s.ID, m)
		return reply{Type: "metrics", Metrics: &m}

	case "tune":
		s.SetTuning(env.Tuning.Apply(s.Tuning()))
		m := s.Metrics()
		return reply{Type: "metrics", Metrics: &m}

	default:
		return reply{Type: "error", Error: "unknown envelope type"}
	}
}

// publish records the metrics snapshot and runs alert evaluation.
func (h *Handler) publish(sessionID string, m compute.Metrics) {
	h.store.Put(sessionID, m)
	h.alerts.Evaluate(sessionID, m)
}

// send marshals and writes one reply under the write deadline.
func (h *Handler) send(conn *websocket.Conn, r reply) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout)) //nolint:errcheck
	return conn.WriteMessage(websocket.TextMessage, data)
}
