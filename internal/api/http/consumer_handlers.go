package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ernestbuffington/embedkit/internal/domain/embed"
	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
	"github.com/ernestbuffington/embedkit/internal/shared/types"
)

// findConsumer locates a consumer, preferring the session query
// parameter and falling back to scanning open sessions.
func (h *Handlers) findConsumer(c *gin.Context, cid id.ConsumerID) (*session.Session, *embed.Consumer, bool) {
	if sid := c.Query("session"); sid != "" {
		s, ok := h.sessions.Get(id.SessionID(sid))
		if !ok {
			return nil, nil, false
		}
		consumer, ok := s.Consumers.Get(cid)
		return s, consumer, ok
	}
	for _, s := range h.sessions.List() {
		if consumer, ok := s.Consumers.Get(cid); ok {
			return s, consumer, true
		}
	}
	return nil, nil, false
}

func consumerJSON(c *embed.Consumer) gin.H {
	out := gin.H{
		"consumer_id": c.ID.String(),
		"definition":  c.Definition,
		"url":         c.URL,
		"hash":        c.Hash,
		"created_at":  c.CreatedAt,
	}
	if f := c.Frame(); f != nil {
		out["frame_id"] = f.ID.String()
		out["frame_state"] = string(f.State())
		out["height"] = f.Height()
	}
	return out
}

// SpawnConsumer creates a consumer inside a session
func (h *Handlers) SpawnConsumer(c *gin.Context) {
	var req types.SpawnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	s, ok := h.sessions.Get(id.SessionID(req.SessionID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	var consumer *embed.Consumer
	var spawnErr error
	s.Loop.Call(func() {
		consumer, spawnErr = s.Consumers.Spawn(req.Definition, req.URL)
	})
	if spawnErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   spawnErr.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"consumer": consumerJSON(consumer),
	})
}

// GetConsumer reports one consumer's state
func (h *Handlers) GetConsumer(c *gin.Context) {
	_, consumer, ok := h.findConsumer(c, id.ConsumerID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "consumer not found",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"consumer": consumerJSON(consumer),
	})
}

// DeleteConsumer destroys a consumer, capturing populated content
func (h *Handlers) DeleteConsumer(c *gin.Context) {
	s, consumer, ok := h.findConsumer(c, id.ConsumerID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "consumer not found",
		})
		return
	}

	s.Loop.Call(func() {
		s.Consumers.Destroy(consumer.ID)
	})
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Resolve runs one acquisition and waits for its terminal callback.
// The pipeline itself never completes synchronously; this handler
// bridges it to a blocking HTTP shape with a bounded wait.
func (h *Handlers) Resolve(c *gin.Context) {
	var req types.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	s, ok := h.sessions.Get(id.SessionID(req.SessionID))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	results := make(chan embed.Result, 1)
	failures := make(chan *types.EmbedError, 1)

	var spawnErr error
	var consumerID id.ConsumerID
	s.Loop.Call(func() {
		consumerID = id.ConsumerID(req.ConsumerID)
		if consumerID == "" {
			consumer, err := s.Consumers.Spawn(req.Definition, req.URL)
			if err != nil {
				spawnErr = err
				return
			}
			consumerID = consumer.ID
		}

		s.Coordinator.Load(consumerID, req.URL, embed.Options{
			Callback:        func(r embed.Result) { results <- r },
			ErrorCallback:   func(e *types.EmbedError) { failures <- e },
			NoNotifications: req.NoNotifications,
		})
	})
	if spawnErr != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   spawnErr.Error(),
		})
		return
	}

	select {
	case r := <-results:
		payload := gin.H{
			"success":     true,
			"consumer_id": consumerID.String(),
			"source":      r.Source,
			"response":    r.Response,
		}
		if r.Content != nil {
			payload["html"] = r.Content.Render()
		}
		c.JSON(http.StatusOK, payload)
	case e := <-failures:
		status := http.StatusBadGateway
		if e.Kind == types.ErrUnsupportedURL {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{
			"success":     false,
			"consumer_id": consumerID.String(),
			"kind":        string(e.Kind),
			"error":       e.Error(),
		})
	case <-c.Request.Context().Done():
		// Client went away; nothing useful to write.
	case <-time.After(h.resolveTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"success":     false,
			"consumer_id": consumerID.String(),
			"error":       "resolve timed out",
		})
	}
}

// Validate runs the syntactic pre-flight check
func (h *Handlers) Validate(c *gin.Context) {
	var req types.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request: " + err.Error(),
		})
		return
	}

	def, ok := h.definitions.Get(req.Definition)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "definition not found",
		})
		return
	}

	valid := def.AcceptsURL(req.URL)
	payload := gin.H{
		"success":    true,
		"definition": req.Definition,
		"url":        req.URL,
		"valid":      valid,
	}
	if !valid {
		payload["message"] = types.ErrorMessage(types.ErrUnsupportedURL, req.URL, "given")
	}
	c.JSON(http.StatusOK, payload)
}
