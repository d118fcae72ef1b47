// Package integrity signs and verifies event chain hashes with HMAC keys.
//
// Root keys are never used directly: each stream gets its own key derived
// with HKDF, so a signature cannot be replayed onto another save slot.
package integrity
