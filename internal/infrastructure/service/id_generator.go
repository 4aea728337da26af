package service

import "github.com/google/uuid"

// UUIDGenerator produces random identifiers for entries and goals.
type UUIDGenerator struct{}

// NewID returns a random UUIDv4 string.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}
