package entity

import "github.com/google/uuid"

// NewID returns a new time-ordered identifier. Version 7 UUIDs embed a
// millisecond timestamp and random bits, so ids stay unique within any list
// even when several are created in the same millisecond.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}
