package ws

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
	"github.com/ernestbuffington/embedkit/internal/providers/oembed"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// Handler manages WebSocket connections
type Handler struct {
	sessions *session.Manager
	upgrader websocket.Upgrader
	metrics  *monitoring.Metrics
	log      *logging.Logger
}

// NewHandler creates a new WebSocket handler. Upgrades honor the same
// origin pinning as the HTTP surface: an empty origins list allows any
// host.
func NewHandler(sessions *session.Manager, origins []string, metrics *monitoring.Metrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		sessions: sessions,
		upgrader: websocket.Upgrader{CheckOrigin: originChecker(origins)},
		metrics:  metrics,
		log:      logger.Named("ws"),
	}
}

// originChecker builds the upgrade origin check from the pinned origin
// list. Requests without an Origin header are not cross-site and pass.
func originChecker(origins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(origins) == 0 {
			return true
		}
		for _, allowed := range origins {
			if allowed == "*" || strings.EqualFold(allowed, origin) {
				return true
			}
		}
		return false
	}
}

// conn is one live connection bound to a session. It doubles as the
// session's progress notifier and notice surface while open.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex

	session *session.Session
	metrics *monitoring.Metrics
	log     *logging.Logger

	// in-flight exchanges by client request id, for cancel
	mu       sync.Mutex
	inflight map[string]*oembed.Exchange
}

// HandleConnection handles WebSocket upgrade and messages. The session
// is selected with the "session" query parameter.
func (h *Handler) HandleConnection(c *gin.Context) {
	s, ok := h.sessions.Get(id.SessionID(c.Query("session")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	ws, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer ws.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	cn := &conn{
		ws:       ws,
		session:  s,
		metrics:  h.metrics,
		log:      h.log,
		inflight: make(map[string]*oembed.Exchange),
	}

	// The connection becomes the session's progress display and notice
	// surface until it drops.
	s.SetNotifier(cn)
	s.SetNotices(cn)
	defer func() {
		s.SetNotifier(nil)
		s.SetNotices(nil)
	}()

	cn.send("system", map[string]interface{}{
		"message":    "Connected to embedkit",
		"session_id": s.ID.String(),
	})

	for {
		var msg types.WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn("websocket read error", zap.Error(err))
			}
			break
		}
		if h.metrics != nil {
			h.metrics.RecordWSMessage(msg.Type, "in")
		}

		switch msg.Type {
		case "resolve":
			cn.handleResolve(msg)
		case "cancel":
			cn.handleCancel(msg)
		case "validate":
			cn.handleValidate(msg)
		case "ping":
			cn.send("pong", nil)
		default:
			cn.sendError(msg.RequestID, "unknown message type")
		}
	}
}

// handleResolve runs a load on the session loop. Without a consumer_id
// a consumer is spawned for the request; the reply carries whichever
// id ends up serving it.
func (cn *conn) handleResolve(msg types.WSMessage) {
	if msg.Definition == "" || msg.URL == "" {
		cn.sendError(msg.RequestID, "definition and url are required")
		return
	}

	s := cn.session
	s.Loop.Call(func() {
		consumerID := id.ConsumerID(msg.ConsumerID)
		if consumerID == "" {
			c, err := s.Consumers.Spawn(msg.Definition, msg.URL)
			if err != nil {
				cn.sendError(msg.RequestID, err.Error())
				return
			}
			consumerID = c.ID
		}

		requestID := msg.RequestID
		exchange := s.Coordinator.Load(consumerID, msg.URL, embed.Options{
			Callback: func(r embed.Result) {
				cn.dropInflight(requestID)
				payload := map[string]interface{}{
					"consumer_id": consumerID.String(),
					"source":      r.Source,
					"response":    r.Response,
				}
				if r.Content != nil {
					payload["html"] = r.Content.Render()
				}
				cn.sendWithID("resolve.result", requestID, payload)
			},
			ErrorCallback: func(e *types.EmbedError) {
				cn.dropInflight(requestID)
				cn.sendWithID("resolve.error", requestID, map[string]interface{}{
					"consumer_id": consumerID.String(),
					"kind":        string(e.Kind),
					"message":     e.Error(),
				})
			},
			NoNotifications: msg.NoNotifications,
		})
		if exchange != nil && requestID != "" {
			cn.trackInflight(requestID, exchange)
		}
	})
}

func (cn *conn) handleCancel(msg types.WSMessage) {
	cn.mu.Lock()
	exchange, ok := cn.inflight[msg.RequestID]
	delete(cn.inflight, msg.RequestID)
	cn.mu.Unlock()

	if !ok {
		// Nothing in flight: either a cache hit (nil handle) or already
		// terminal. Cancel is idempotent from the client's view.
		return
	}
	exchange.Cancel()
	if cn.metrics != nil {
		cn.metrics.Cancellations.Inc()
	}
}

func (cn *conn) handleValidate(msg types.WSMessage) {
	valid := cn.session.Coordinator.ValidateURL(msg.Definition, msg.URL)
	payload := map[string]interface{}{
		"definition": msg.Definition,
		"url":        msg.URL,
		"valid":      valid,
	}
	if !valid {
		payload["message"] = types.ErrorMessage(types.ErrUnsupportedURL, msg.URL, "given")
	}
	cn.sendWithID("validate.result", msg.RequestID, payload)
}

func (cn *conn) trackInflight(requestID string, exchange *oembed.Exchange) {
	cn.mu.Lock()
	cn.inflight[requestID] = exchange
	cn.mu.Unlock()
}

func (cn *conn) dropInflight(requestID string) {
	if requestID == "" {
		return
	}
	cn.mu.Lock()
	delete(cn.inflight, requestID)
	cn.mu.Unlock()
}

// Update implements progress.Notifier.
func (cn *conn) Update(done, failed, total int) {
	cn.send("progress.update", map[string]interface{}{
		"done":   done,
		"failed": failed,
		"total":  total,
	})
}

// Finished implements progress.Notifier.
func (cn *conn) Finished(failed int) {
	cn.send("progress.finished", map[string]interface{}{
		"failed": failed,
	})
}

// Notify implements embed.Notices.
func (cn *conn) Notify(message, severity string) {
	cn.send("notification", map[string]interface{}{
		"message":  message,
		"severity": severity,
	})
}

func (cn *conn) send(msgType string, payload map[string]interface{}) {
	cn.sendWithID(msgType, "", payload)
}

func (cn *conn) sendWithID(msgType, requestID string, payload map[string]interface{}) {
	data := map[string]interface{}{
		"type":      msgType,
		"timestamp": time.Now().Unix(),
	}
	if requestID != "" {
		data["request_id"] = requestID
	}
	for k, v := range payload {
		data[k] = v
	}

	cn.writeMu.Lock()
	err := cn.ws.WriteJSON(data)
	cn.writeMu.Unlock()
	if err != nil {
		cn.log.Warn("websocket write failed", zap.String("type", msgType), zap.Error(err))
		return
	}
	if cn.metrics != nil {
		cn.metrics.RecordWSMessage(msgType, "out")
	}
}

func (cn *conn) sendError(requestID, msg string) {
	cn.sendWithID("error", requestID, map[string]interface{}{
		"message": msg,
	})
}
