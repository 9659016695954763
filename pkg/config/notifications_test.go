package config

import (
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
)

func generateVerificationKey(t *testing.T) string {
	t.Helper()

	privateKey, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey() failed: %v", err)
	}
	return hex.EncodeToString(crypto.CompressPubkey(&privateKey.PublicKey))
}

func TestValidateVerificationKey(t *testing.T) {
	key := generateVerificationKey(t)
	if err := validateVerificationKey(key); err != nil {
		t.Errorf("expected valid key, got %v", err)
	}
	if err := validateVerificationKey("0x" + key); err != nil {
		t.Errorf("expected 0x-prefixed key to validate, got %v", err)
	}
}

func TestValidateVerificationKeyRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not hex":      "zzzz",
		"wrong length": "02abcd",
		"bad point":    "09" + "00000000000000000000000000000000000000000000000000000000000000ff",
	}
	for name, key := range cases {
		if err := validateVerificationKey(key); err == nil {
			t.Errorf("%s: expected error for key %q, got nil", name, key)
		}
	}
}

func TestParseNotificationKeys(t *testing.T) {
	keys, err := parseNotificationKeys(`{"https://l1.example":"aa"}`)
	if err != nil {
		t.Fatalf("parseNotificationKeys failed: %v", err)
	}
	if keys["https://l1.example"] != "aa" {
		t.Errorf("unexpected keys map: %v", keys)
	}

	if _, err := parseNotificationKeys("{broken"); err == nil {
		t.Error("expected error for malformed JSON, got nil")
	}

	keys, err = parseNotificationKeys("")
	if err != nil || len(keys) != 0 {
		t.Errorf("expected empty map for unset variable, got %v, %v", keys, err)
	}
}
