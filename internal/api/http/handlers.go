package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ernestbuffington/embedkit/internal/domain/catalog"
	"github.com/ernestbuffington/embedkit/internal/domain/registry"
	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/logging"
	"github.com/ernestbuffington/embedkit/internal/infrastructure/monitoring"
)

// DefaultResolveTimeout bounds how long a synchronous resolve request
// waits for the terminal callback.
const DefaultResolveTimeout = 15 * time.Second

// Handlers carries the HTTP handler dependencies.
type Handlers struct {
	sessions    *session.Manager
	definitions *registry.Manager
	catalog     *catalog.Catalog
	metrics     *monitoring.Metrics
	log         *logging.Logger

	resolveTimeout time.Duration
	startTime      time.Time
}

// NewHandlers creates the HTTP handler set.
func NewHandlers(sessions *session.Manager, definitions *registry.Manager, cat *catalog.Catalog, metrics *monitoring.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		sessions:       sessions,
		definitions:    definitions,
		catalog:        cat,
		metrics:        metrics,
		log:            logger.Named("http"),
		resolveTimeout: DefaultResolveTimeout,
		startTime:      time.Now(),
	}
}

// Health reports service liveness
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(h.startTime).Seconds()),
		"sessions":       h.sessions.Count(),
		"definitions":    h.definitions.Count(),
	})
}
