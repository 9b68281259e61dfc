package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Payload size limits (in bytes)
const (
	MaxPayloadSize    = 1 * 1024 * 1024 // 1MB - provider payload size limit
	MaxDefinitionSize = 256 * 1024      // 256KB - definition file size limit
	MaxMarkupSize     = 512 * 1024      // 512KB - embeddable markup size limit
	MaxMessageSize    = 16 * 1024       // 16KB - single WS message size limit
)

// String length limits
const (
	MaxURLLength   = 2048
	MaxIDLength    = 128
	MaxNameLength  = 256
	MaxTitleLength = 1024
)

// Regular expressions for validation
var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// DefinitionNamePattern allows lowercase names with hyphens (youtube, twitter-post)
	DefinitionNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)
)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil // Optional field, empty is OK
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Check for null bytes (security issue)
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateDefinitionName validates a definition name field
func ValidateDefinitionName(name string) error {
	if err := ValidateString(name, "definition name", 1, MaxNameLength, true); err != nil {
		return err
	}

	if !DefinitionNamePattern.MatchString(name) {
		return fmt.Errorf("definition name must contain only lowercase letters, numbers, and hyphens")
	}

	return nil
}

// ValidateResourceURL performs basic shape checks on a resource URL before it
// enters the pipeline. Scheme-level acceptance is the coordinator's concern;
// this only rejects strings that cannot be a URL at all.
func ValidateResourceURL(url string) error {
	if err := ValidateString(url, "url", 1, MaxURLLength, true); err != nil {
		return err
	}

	trimmed := strings.TrimSpace(url)
	if trimmed != url {
		return fmt.Errorf("url must not contain leading or trailing whitespace")
	}
	if strings.ContainsAny(url, " \t\r\n") {
		return fmt.Errorf("url must not contain whitespace")
	}

	return nil
}
