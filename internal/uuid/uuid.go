// Package uuid provides UUID generation and validation utilities.
package uuid

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

// UUID v4 format: xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx
// where y is one of [8, 9, a, b] (variant bits)
var uuidV4Regex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// New generates a new UUID v4 for entity identifiers.
func New() string {
	return uuid.New().String()
}

// NewSortable generates a UUID v7. The leading bits carry a millisecond
// timestamp, so ids sort in creation order even under concurrent writers.
// Used for sync log entry ids.
func NewSortable() string {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source is exhausted;
		// fall back to v4 rather than stalling a dispatch.
		return uuid.New().String()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID v4.
// Enforces strict format with dashes and correct variant bits.
func IsValid(s string) bool {
	return uuidV4Regex.MatchString(s)
}

// IsValidAny checks if a string parses as any UUID version.
func IsValidAny(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// Validate returns an error if the string is not a valid UUID.
func Validate(s string) error {
	if !IsValidAny(s) {
		return fmt.Errorf("invalid UUID format: %q", s)
	}
	return nil
}
