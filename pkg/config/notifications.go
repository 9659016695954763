package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

const compressedPubKeySize = 33

// parseNotificationKeys decodes the CONNECTOR_NOTIFICATION_KEYS JSON object
// mapping ledger URIs to hex-encoded verification keys.
func parseNotificationKeys(raw string) (map[string]string, error) {
	keys := map[string]string{}
	if raw == "" {
		return keys, nil
	}
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, fmt.Errorf("CONNECTOR_NOTIFICATION_KEYS contains invalid JSON: %w", err)
	}
	return keys, nil
}

// validateVerificationKey checks that a configured notification key is a
// structurally valid compressed secp256k1 public key. Only the structure is
// checked here; signature verification happens on the notification path.
func validateVerificationKey(key string) error {
	decoded, err := hex.DecodeString(strings.TrimPrefix(key, "0x"))
	if err != nil {
		return fmt.Errorf("key is not valid hex: %w", err)
	}
	if len(decoded) != compressedPubKeySize {
		return fmt.Errorf("key must be a %d-byte compressed public key, got %d bytes", compressedPubKeySize, len(decoded))
	}
	if _, err := crypto.DecompressPubkey(decoded); err != nil {
		return fmt.Errorf("key is not a valid secp256k1 public key: %w", err)
	}
	return nil
}

// resolveNotificationPolicy builds the notification policy from its parsed
// parts. Verification defaults to on in production mode and off in test mode.
func resolveNotificationPolicy(env *EnvSource, keys map[string]string, testMode bool) NotificationPolicy {
	return NotificationPolicy{
		MustVerify: env.GetBool(keyNotificationVerify, !testMode),
		Keys:       keys,
	}
}
