package event

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	coreencoding "github.com/shawndeggans/space-fortress/internal/services/game/domain/core/encoding"
)

// hashEnvelope is the canonical shape hashed for an event's content.
// Field order is irrelevant because CanonicalJSON sorts keys.
type hashEnvelope struct {
	StreamID  string          `json:"stream_id"`
	Type      string          `json:"type"`
	Timestamp string          `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

type chainEnvelope struct {
	StreamID  string `json:"stream_id"`
	Seq       uint64 `json:"seq"`
	EventHash string `json:"event_hash"`
	PrevHash  string `json:"prev_hash"`
}

// EventHash computes the content hash for a single event.
//
// Sequence and integrity fields are excluded: the hash identifies what
// happened, not where it landed in the stream.
func EventHash(evt Event) (string, error) {
	if strings.TrimSpace(evt.StreamID) == "" {
		return "", ErrStreamIDRequired
	}
	payload := evt.PayloadJSON
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if !json.Valid(payload) {
		return "", ErrPayloadInvalid
	}
	return coreencoding.ContentHash(hashEnvelope{
		StreamID:  evt.StreamID,
		Type:      string(evt.Type),
		Timestamp: evt.Timestamp.UTC().Format(time.RFC3339Nano),
		Payload:   json.RawMessage(payload),
	})
}

// ChainHash computes the SHA-256 hash that links an event to its predecessor.
func ChainHash(evt Event, prevHash string) (string, error) {
	if strings.TrimSpace(evt.Hash) == "" {
		return "", fmt.Errorf("event hash is required")
	}
	if evt.Seq == 0 {
		return "", fmt.Errorf("event seq is required")
	}
	canonical, err := coreencoding.CanonicalJSON(chainEnvelope{
		StreamID:  evt.StreamID,
		Seq:       evt.Seq,
		EventHash: evt.Hash,
		PrevHash:  prevHash,
	})
	if err != nil {
		return "", fmt.Errorf("canonical chain envelope: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
