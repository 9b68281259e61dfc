package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ernestbuffington/embedkit/internal/domain/session"
	"github.com/ernestbuffington/embedkit/internal/shared/id"
)

// CreateSession opens a session context
func (h *Handlers) CreateSession(c *gin.Context) {
	s := h.sessions.Create(nil, nil)
	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"session_id": s.ID.String(),
		"created_at": s.CreatedAt,
	})
}

// GetSession reports one session's state
func (h *Handlers) GetSession(c *gin.Context) {
	s, ok := h.sessions.Get(id.SessionID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"session_id":    s.ID.String(),
		"created_at":    s.CreatedAt,
		"consumers":     s.Consumers.Count(),
		"frames":        s.Frames.Count(),
		"captures_held": s.ContentCache.Held(),
	})
}

// DeleteSession closes a session context
func (h *Handlers) DeleteSession(c *gin.Context) {
	if err := h.sessions.Close(id.SessionID(c.Param("id"))); err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SaveSession snapshots a session to disk
func (h *Handlers) SaveSession(c *gin.Context) {
	s, ok := h.sessions.Get(id.SessionID(c.Param("id")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	// Body is optional; an empty name falls back to a default.
	_ = c.ShouldBindJSON(&req)

	path, err := h.sessions.Save(s, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"path":    path,
	})
}

// RestoreSession rebuilds a session from a snapshot. The session in
// the path is closed and replaced; the reply carries the new id.
func (h *Handlers) RestoreSession(c *gin.Context) {
	sid := id.SessionID(c.Param("id"))
	if _, ok := h.sessions.Get(sid); !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	var req struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || (req.Path == "" && req.Name == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "path or name is required",
		})
		return
	}

	path := req.Path
	if path == "" {
		found, err := h.sessions.FindSnapshot(req.Name)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   err.Error(),
			})
			return
		}
		path = found
	}

	restored, err := h.sessions.Restore(path, nil, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	_ = h.sessions.Close(sid)

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"session_id": restored.ID.String(),
		"consumers":  restored.Consumers.Count(),
	})
}

// ListSnapshots lists saved session snapshots
func (h *Handlers) ListSnapshots(c *gin.Context) {
	infos, err := h.sessions.Snapshots()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}
	if infos == nil {
		infos = []session.SnapshotInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"snapshots": infos,
	})
}

// ListFrames reports the attached frames of a session
func (h *Handlers) ListFrames(c *gin.Context) {
	s, ok := h.sessions.Get(id.SessionID(c.Query("session")))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   "session not found",
		})
		return
	}

	frames := make([]string, 0)
	for _, fid := range s.Frames.List() {
		frames = append(frames, fid.String())
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"frames":        frames,
		"captures_held": s.ContentCache.Held(),
	})
}
