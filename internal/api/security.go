package api

import (
	"errors"
	"regexp"
	"strings"
)

// Input limits for the JSON surface. Descriptions come from pasted
// bill-of-quantities rows, so the caps are generous but hard.
const (
	MaxDescriptionLength = 1024
	MaxUnitLength        = 32
	MaxJSONPayloadBytes  = 10 * 1024
)

var unitPattern = regexp.MustCompile(`^[A-Za-z0-9./\-\s]{0,32}$`)

var (
	errDescriptionRequired = errors.New("description is required")
	errDescriptionEmpty    = errors.New("description cannot be empty")
	errDescriptionTooLong  = errors.New("description is too long")
	errUnitInvalid         = errors.New("unit contains invalid characters")
)

// sanitizeDescription trims and validates a description payload.
func sanitizeDescription(raw *string) (string, error) {
	if raw == nil {
		return "", errDescriptionRequired
	}

	description := strings.TrimSpace(*raw)
	if description == "" {
		return "", errDescriptionEmpty
	}
	if len(description) > MaxDescriptionLength {
		return "", errDescriptionTooLong
	}
	return description, nil
}

// sanitizeUnit validates an optional unit. Absent or blank units
// collapse to the empty string.
func sanitizeUnit(raw *string) (string, error) {
	if raw == nil {
		return "", nil
	}

	unit := strings.TrimSpace(*raw)
	if unit == "" {
		return "", nil
	}
	if len(unit) > MaxUnitLength || !unitPattern.MatchString(unit) {
		return "", errUnitInvalid
	}
	return unit, nil
}
