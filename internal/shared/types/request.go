package types

// ResolveRequest asks the pipeline to resolve a resource URL
type ResolveRequest struct {
	SessionID       string `json:"session_id" binding:"required"`
	Definition      string `json:"definition" binding:"required"`
	URL             string `json:"url" binding:"required"`
	ConsumerID      string `json:"consumer_id,omitempty"`
	NoNotifications bool   `json:"no_notifications,omitempty"`
}

// ValidateRequest asks for a syntactic pre-flight check of a resource URL
type ValidateRequest struct {
	Definition string `json:"definition" binding:"required"`
	URL        string `json:"url" binding:"required"`
}

// SpawnRequest creates a consumer instance inside a session
type SpawnRequest struct {
	SessionID  string `json:"session_id" binding:"required"`
	Definition string `json:"definition" binding:"required"`
	URL        string `json:"url,omitempty"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type            string `json:"type"`
	RequestID       string `json:"request_id,omitempty"`
	Definition      string `json:"definition,omitempty"`
	URL             string `json:"url,omitempty"`
	ConsumerID      string `json:"consumer_id,omitempty"`
	NoNotifications bool   `json:"no_notifications,omitempty"`
}
