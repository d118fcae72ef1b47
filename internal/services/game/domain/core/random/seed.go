// Package random provides cryptographic seed generation helpers.
//
// Battle resolution is deterministic for a given seed. Seeds are drawn here, at
// the edge of the domain, and recorded in the event log so replays reproduce
// the same rolls.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
)

// SeedSource identifies where a resolved seed came from.
type SeedSource string

const (
	// SeedSourceGenerated marks a seed drawn from the injected generator.
	SeedSourceGenerated SeedSource = "generated"
	// SeedSourceCommand marks a seed supplied by the caller.
	SeedSourceCommand SeedSource = "command"
)

// ErrSeedGeneratorRequired indicates a seed had to be generated but no
// generator was configured.
var ErrSeedGeneratorRequired = errors.New("seed generator is required")

// Generator returns a fresh seed.
type Generator func() (int64, error)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// ResolveSeed returns the requested seed when present, otherwise a seed from
// the generator.
func ResolveSeed(requested *int64, generate Generator) (int64, SeedSource, error) {
	if requested != nil {
		return *requested, SeedSourceCommand, nil
	}
	if generate == nil {
		return 0, "", ErrSeedGeneratorRequired
	}
	seed, err := generate()
	if err != nil {
		return 0, "", err
	}
	return seed, SeedSourceGenerated, nil
}
