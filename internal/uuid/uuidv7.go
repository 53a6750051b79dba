// Package uuid issues time-ordered identifiers for rows that are processed
// in creation order, such as the email outbox.
package uuid

import (
	"fmt"
	"time"

	googleuuid "github.com/google/uuid"
)

// New generates a UUIDv7 string. The leading 48 bits carry the Unix time in
// milliseconds, so lexical order follows creation order.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		// Fallback to standard UUIDv4 if the random source fails
		return googleuuid.New().String()
	}
	return id.String()
}

// Timestamp returns the creation time embedded in a UUIDv7 string.
func Timestamp(s string) (time.Time, error) {
	id, err := googleuuid.Parse(s)
	if err != nil {
		return time.Time{}, err
	}
	if id.Version() != 7 {
		return time.Time{}, fmt.Errorf("uuid %s is version %d, not 7", s, id.Version())
	}
	sec, nsec := id.Time().UnixTime()
	return time.Unix(sec, nsec), nil
}
