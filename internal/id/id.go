package id

import "github.com/google/uuid"

// NewUUIDv7 generates a UUIDv7 identifier. V7 IDs are time-ordered, which
// keeps index locality in Postgres for append-heavy tables.
func NewUUIDv7() string {
	v7, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the random source fails; fall back to v4.
		return uuid.NewString()
	}
	return v7.String()
}
