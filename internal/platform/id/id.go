// Package id generates opaque identifiers for streams and events.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// NewID generates a URL-safe identifier from a v4 UUID encoded as base32.
// The identifier is 26 characters long, lowercase, and contains no padding.
func NewID() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return strings.ToLower(encoding.EncodeToString(raw[:])), nil
}

// NewStreamID returns a save-slot stream id.
func NewStreamID() (string, error) {
	raw, err := NewID()
	if err != nil {
		return "", err
	}
	return "save_" + raw, nil
}
