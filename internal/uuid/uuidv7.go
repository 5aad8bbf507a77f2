// Package uuid generates record identifiers for the ledger.
//
// Identifiers are UUIDv7 strings: the leading 48 bits carry the Unix time in
// milliseconds, so ids of records created later sort after earlier ones.
package uuid

import (
	googleuuid "github.com/google/uuid"
)

// New returns a fresh UUIDv7 string. If the random source fails it falls back
// to a UUIDv4 so callers never have to handle an error.
func New() string {
	id, err := googleuuid.NewV7()
	if err != nil {
		return googleuuid.New().String()
	}
	return id.String()
}

// Parse validates and normalises a UUID string.
func Parse(s string) (string, error) {
	parsed, err := googleuuid.Parse(s)
	if err != nil {
		return "", err
	}
	return parsed.String(), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(s string) bool {
	_, err := googleuuid.Parse(s)
	return err == nil
}
