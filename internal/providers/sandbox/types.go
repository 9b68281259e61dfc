package sandbox

import (
	"time"
)

// Config defines sandbox configuration
type Config struct {
	MaxMemoryMB   int64         // Maximum heap size in MB
	Timeout       time.Duration // Execution timeout
	EnableConsole bool          // Allow console.log/warn/error
	EnableDOM     bool          // Enable document proxy
}

// Result holds execution result
type Result struct {
	Value    interface{}   // Return value
	Console  []LogEntry    // Console output
	Duration time.Duration // Execution time
	Error    error         // Execution error
}

// CallbackResult holds the outcome of a callback-bound evaluation
type CallbackResult struct {
	Invoked  bool          // Whether the bound callback was called
	Payload  []byte        // JSON-serialized first callback argument
	Console  []LogEntry    // Console output
	Duration time.Duration // Execution time
}

// LogEntry represents console output
type LogEntry struct {
	Level   string    // log, warn, error
	Message string    // Log message
	Time    time.Time // Timestamp
}

// Default configuration
func DefaultConfig() Config {
	return Config{
		MaxMemoryMB:   50,
		Timeout:       5 * time.Second,
		EnableConsole: true,
		EnableDOM:     true,
	}
}
