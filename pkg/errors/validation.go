package errors

import (
	"net/url"
	"strings"
	"unicode"
)

// MaxFlowNameLength bounds the flow name accepted at save time.
const MaxFlowNameLength = 200

// ValidateFlowName validates the operator-supplied flow name before a save.
// An empty (or whitespace-only) name blocks the save.
func ValidateFlowName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return New(ErrCodeValidation, "flow name is required")
	}

	if len(name) > MaxFlowNameLength {
		return New(ErrCodeValidation, "flow name too long (max %d characters)", MaxFlowNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeValidation, "flow name contains invalid control characters")
		}
	}

	return nil
}

// ValidateLabel validates a node display label after trimming.
// Node labels may never be blank.
func ValidateLabel(label string) error {
	if strings.TrimSpace(label) == "" {
		return New(ErrCodeStructuralRejection, "label cannot be empty")
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL is absolute with an http or https scheme.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return New(ErrCodeInvalidInput, "URL is malformed: %q", rawURL)
	}

	return nil
}
