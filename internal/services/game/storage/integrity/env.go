package integrity

import (
	"fmt"
	"os"
	"strings"
)

const (
	envHMACKeys  = "FORTRESS_EVENT_HMAC_KEYS"
	envHMACKey   = "FORTRESS_EVENT_HMAC_KEY"
	envHMACKeyID = "FORTRESS_EVENT_HMAC_KEY_ID"
	defaultKeyID = "v1"

	// devKey signs local save slots when no key is configured.
	devKey = "space-fortress-dev-key"
)

// KeyringFromEnv loads the HMAC keyring from the environment.
//
// FORTRESS_EVENT_HMAC_KEYS holds comma separated id=secret pairs and takes
// precedence over the single FORTRESS_EVENT_HMAC_KEY. With neither set the
// development key is used.
func KeyringFromEnv() (*Keyring, error) {
	keyID := strings.TrimSpace(os.Getenv(envHMACKeyID))
	if keyID == "" {
		keyID = defaultKeyID
	}

	keySpec := strings.TrimSpace(os.Getenv(envHMACKeys))
	if keySpec == "" {
		raw := strings.TrimSpace(os.Getenv(envHMACKey))
		if raw == "" {
			raw = devKey
		}
		return NewKeyring(map[string][]byte{keyID: []byte(raw)}, keyID)
	}

	keys := make(map[string][]byte)
	for _, entry := range strings.Split(keySpec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		id, value, ok := strings.Cut(entry, "=")
		id = strings.TrimSpace(id)
		value = strings.TrimSpace(value)
		if !ok || id == "" || value == "" {
			return nil, fmt.Errorf("invalid %s entry", envHMACKeys)
		}
		keys[id] = []byte(value)
	}
	return NewKeyring(keys, keyID)
}
