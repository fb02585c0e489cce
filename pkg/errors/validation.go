package errors

import (
	"regexp"
	"strings"
	"unicode"
)

const maxNameLength = 256

// ValidateName checks a component or diagram name. Names end up inside
// Graphviz labels and node keys, so control characters are rejected.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// kindRegex matches terraform resource types such as azurerm_key_vault.
var kindRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)

// ValidateKind checks that kind looks like a terraform resource type.
func ValidateKind(kind string) error {
	if kind == "" {
		return New(ErrCodeInvalidInput, "resource type cannot be empty")
	}
	if !kindRegex.MatchString(kind) {
		return New(ErrCodeInvalidInput, "invalid resource type: %q", kind)
	}
	return nil
}

// ValidateRedisURL checks that rawURL uses a redis scheme.
func ValidateRedisURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "redis URL cannot be empty")
	}
	if !strings.HasPrefix(rawURL, "redis://") && !strings.HasPrefix(rawURL, "rediss://") {
		return New(ErrCodeInvalidInput, "redis URL must use redis or rediss scheme")
	}
	return nil
}
