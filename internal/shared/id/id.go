// Package id provides centralized ID generation for the embed service.
//
// This package offers type-safe ULID generation with:
//   - Lexicographic sortability: Enables efficient time-based queries
//   - Prefixed types: Type-specific prefixes for debugging (sess_*, emb_*, frm_*)
//   - Type safety: Separate types prevent ID misuse
//   - Performance: ~2μs per ULID under a single entropy mutex
//
// Design Principles:
//   - ULIDs only: Single ID format across the entire service
//   - K-sortable: Timeline queries without timestamps
//   - Debuggable: Prefixes make logs readable
//   - Script-safe: prefix + "_" + ULID is a valid script identifier, so
//     callback IDs can be addressed directly from provider response scripts
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ============================================================================
// Type-Safe ID Wrappers
// ============================================================================

// SessionID identifies a session context (one authoring surface)
type SessionID string

// ConsumerID identifies an embed consumer instance
type ConsumerID string

// FrameID identifies an isolated rendering surface
type FrameID string

// RequestID identifies an in-flight acquisition request
type RequestID string

// TaskID identifies a progress-aggregator task
type TaskID string

// CallbackID identifies a registered transport callback
type CallbackID string

// ============================================================================
// ID Prefixes (for debugging and type identification)
// ============================================================================

const (
	SessionPrefix  = "sess"
	ConsumerPrefix = "emb"
	FramePrefix    = "frm"
	RequestPrefix  = "req"
	TaskPrefix     = "task"
	CallbackPrefix = "cb"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex // Protects entropy reader
}

var (
	// Default generator with cryptographically secure entropy
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a new ULID generator
func NewGenerator() *Generator {
	return &Generator{
		entropy: rand.Reader,
	}
}

// NewGeneratorWithEntropy creates a generator with custom entropy source
// Useful for testing with deterministic entropy
func NewGeneratorWithEntropy(entropy io.Reader) *Generator {
	return &Generator{
		entropy: entropy,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy)
}

// GenerateString creates a new ULID as a string
func (g *Generator) GenerateString() string {
	return g.Generate().String()
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.GenerateString())
}

// ============================================================================
// Typed ID Generators
// ============================================================================

// NewSessionID generates a new session ID
func NewSessionID() SessionID {
	return SessionID(Default().GenerateWithPrefix(SessionPrefix))
}

// NewConsumerID generates a new consumer ID
func NewConsumerID() ConsumerID {
	return ConsumerID(Default().GenerateWithPrefix(ConsumerPrefix))
}

// NewFrameID generates a new frame ID
func NewFrameID() FrameID {
	return FrameID(Default().GenerateWithPrefix(FramePrefix))
}

// NewRequestID generates a new request ID
func NewRequestID() RequestID {
	return RequestID(Default().GenerateWithPrefix(RequestPrefix))
}

// NewTaskID generates a new task ID
func NewTaskID() TaskID {
	return TaskID(Default().GenerateWithPrefix(TaskPrefix))
}

// NewCallbackID generates a new callback ID
func NewCallbackID() CallbackID {
	return CallbackID(Default().GenerateWithPrefix(CallbackPrefix))
}

// ============================================================================
// Type Conversion and Validation
// ============================================================================

// String methods for ID types
func (id SessionID) String() string  { return string(id) }
func (id ConsumerID) String() string { return string(id) }
func (id FrameID) String() string    { return string(id) }
func (id RequestID) String() string  { return string(id) }
func (id TaskID) String() string     { return string(id) }
func (id CallbackID) String() string { return string(id) }

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Parse parses a ULID string
func Parse(id string) (ulid.ULID, error) {
	return ulid.Parse(id)
}

// Timestamp extracts the timestamp from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
