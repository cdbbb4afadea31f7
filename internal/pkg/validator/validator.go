package validator

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

// ToMap keeps the first message reported for each field.
func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		if _, exists := result[err.Field]; exists {
			continue
		}
		result[err.Field] = err.Message
	}
	return result
}

// Add appends a field error.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// Err returns nil when no errors were collected, so callers can
// `return errs.Err()` without the typed-nil trap.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsEmpty checks if a string is empty after trimming whitespace.
func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// Length counts runes, not bytes.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}

// Owner IDs: letters, numbers, underscores and hyphens.
var ownerIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

func IsValidOwnerID(ownerID string) bool {
	return ownerIDRegex.MatchString(ownerID)
}

// IsInSlice reports whether value is one of slice
func IsInSlice(value string, slice []string) bool {
	for _, item := range slice {
		if item == value {
			return true
		}
	}
	return false
}

// Itoa converts an integer to a string.
func Itoa(i int) string {
	return strconv.Itoa(i)
}

const MaxOwnerIDLength = 64

// CheckOwnerID appends every rule an owner ID breaks under field.
func CheckOwnerID(errs *ValidationErrors, field, ownerID string, minLength int) {
	if IsEmpty(ownerID) {
		errs.Add(field, field+" is required")
		return
	}
	if Length(ownerID) < minLength {
		errs.Add(field, field+" must be at least "+Itoa(minLength)+" characters long")
	}
	if Length(ownerID) > MaxOwnerIDLength {
		errs.Add(field, field+" must not exceed "+Itoa(MaxOwnerIDLength)+" characters")
	}
	if !IsValidOwnerID(ownerID) {
		errs.Add(field, field+" may only contain letters, numbers, - or _")
	}
}
