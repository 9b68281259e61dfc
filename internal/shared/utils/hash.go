package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
	// Extensible: add more algorithms here
)

// Hasher provides extensible hashing functionality
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	default:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	}
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields computes a hash from multiple fields
// Fields are concatenated with a delimiter for consistent hashing
func (h *Hasher) HashFields(fields ...string) string {
	// Sort fields for deterministic ordering
	sorted := make([]string, len(fields))
	copy(sorted, fields)
	sort.Strings(sorted)

	combined := strings.Join(sorted, "|")
	return h.HashString(combined)
}

// EmbedIdentifier generates deterministic identity hashes for consumers.
// Snapshot restore matches a recreated consumer to its captured state by
// this hash rather than by instance ID, which changes across recreation.
type EmbedIdentifier struct {
	hasher *Hasher
}

// NewEmbedIdentifier creates a new embed identifier
func NewEmbedIdentifier(hasher *Hasher) *EmbedIdentifier {
	if hasher == nil {
		hasher = DefaultHasher()
	}
	return &EmbedIdentifier{hasher: hasher}
}

// GenerateHash generates a deterministic hash for a consumer
// Uses the definition name and resource URL for uniqueness
func (ei *EmbedIdentifier) GenerateHash(definition, url string) string {
	return ei.hasher.HashFields(
		fmt.Sprintf("def:%s", definition),
		fmt.Sprintf("url:%s", url),
	)
}

// GenerateShortHash generates a short (8-character) hash for display
func (ei *EmbedIdentifier) GenerateShortHash(fullHash string) string {
	if len(fullHash) < 8 {
		return fullHash
	}
	return fullHash[:8]
}

// VerifyHash checks if a hash matches the expected consumer properties
func (ei *EmbedIdentifier) VerifyHash(hash, definition, url string) bool {
	return hash == ei.GenerateHash(definition, url)
}
