// Package journal defines the append-only event log contract and its
// integrity chain.
//
// A stream is one save slot. Appends assign a per-stream sequence starting at
// 1, a content hash, and a chain hash linking each event to its predecessor.
// Reads return events in sequence order and drop records that fail their
// content hash; the drop is logged, never returned as an error.
package journal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shawndeggans/space-fortress/internal/services/game/domain/event"
)

// ErrEmptyBatch indicates an append with no events.
var ErrEmptyBatch = errors.New("event batch is empty")

// Log is the event log contract the engine and replay depend on.
type Log interface {
	// Append stores one event and returns its assigned id.
	Append(ctx context.Context, streamID string, evt event.Event) (string, error)
	// AppendBatch stores events atomically and in order, returning them
	// with sequence and integrity fields set.
	AppendBatch(ctx context.Context, streamID string, events []event.Event) ([]event.Event, error)
	// ReadAll returns every readable event of the stream in sequence order.
	ReadAll(ctx context.Context, streamID string) ([]event.Event, error)
	// ReadAfter returns readable events with a sequence above afterSeq.
	ReadAfter(ctx context.Context, streamID string, afterSeq uint64) ([]event.Event, error)
}

// Signer signs chain hashes. A nil Signer leaves events unsigned.
type Signer interface {
	SignChainHash(streamID, chainHash string) (signature, keyID string, err error)
}

// Verifier checks chain hash signatures.
type Verifier interface {
	VerifyChainHash(streamID, chainHash, signature, keyID string) error
}

// Seal sets the sequence and integrity fields of evt, linking it after
// prevChainHash. The payload must already be canonical JSON.
func Seal(evt event.Event, seq uint64, prevChainHash string, signer Signer) (event.Event, error) {
	evt.Seq = seq
	hash, err := event.EventHash(evt)
	if err != nil {
		return event.Event{}, fmt.Errorf("hash event %s: %w", evt.Type, err)
	}
	evt.Hash = hash
	evt.PrevHash = prevChainHash
	chain, err := event.ChainHash(evt, prevChainHash)
	if err != nil {
		return event.Event{}, fmt.Errorf("chain event %s: %w", evt.Type, err)
	}
	evt.ChainHash = chain
	if signer != nil {
		sig, keyID, err := signer.SignChainHash(evt.StreamID, chain)
		if err != nil {
			return event.Event{}, fmt.Errorf("sign event %s: %w", evt.Type, err)
		}
		evt.Signature = sig
		evt.SignatureKeyID = keyID
	}
	return evt, nil
}

// CheckContent reports whether a stored event still matches its content
// hash.
func CheckContent(evt event.Event) error {
	if !json.Valid(evt.PayloadJSON) {
		return fmt.Errorf("event %d: %w", evt.Seq, event.ErrPayloadInvalid)
	}
	hash, err := event.EventHash(evt)
	if err != nil {
		return fmt.Errorf("event %d: %w", evt.Seq, err)
	}
	if hash != evt.Hash {
		return fmt.Errorf("event %d: content hash mismatch", evt.Seq)
	}
	return nil
}

// IntegrityError reports the first broken link of a stream.
type IntegrityError struct {
	StreamID string
	Seq      uint64
	Reason   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("stream %s broken at seq %d: %s", e.StreamID, e.Seq, e.Reason)
}

// VerifyChain walks events in order and returns an *IntegrityError for the
// first event whose sequence, content hash, chain link, or signature does
// not check out. Signatures are only checked when verifier is set.
func VerifyChain(streamID string, events []event.Event, verifier Verifier) error {
	prev := ""
	for i, evt := range events {
		fail := func(reason string) error {
			return &IntegrityError{StreamID: streamID, Seq: evt.Seq, Reason: reason}
		}
		if evt.Seq != uint64(i+1) {
			return fail(fmt.Sprintf("expected seq %d", i+1))
		}
		if err := CheckContent(evt); err != nil {
			return fail(err.Error())
		}
		if evt.PrevHash != prev {
			return fail("previous hash mismatch")
		}
		chain, err := event.ChainHash(evt, prev)
		if err != nil {
			return fail(err.Error())
		}
		if chain != evt.ChainHash {
			return fail("chain hash mismatch")
		}
		if verifier != nil {
			if err := verifier.VerifyChainHash(streamID, evt.ChainHash, evt.Signature, evt.SignatureKeyID); err != nil {
				return fail(err.Error())
			}
		}
		prev = evt.ChainHash
	}
	return nil
}
