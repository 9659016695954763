package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// rawCredential is the wire shape of one entry in CONNECTOR_CREDENTIALS.
// Key, Cert and CA are file paths at this stage; resolution loads them.
type rawCredential struct {
	Account    string `json:"account"`
	AccountURI string `json:"account_uri"`
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password"`
	Key        string `json:"key"`
	Cert       string `json:"cert"`
	CA         string `json:"ca"`
	Type       string `json:"type"`
}

// rawAdminCredential is the admin credential as read from the individual
// CONNECTOR_ADMIN_* variables before file resolution.
type rawAdminCredential struct {
	Username string
	Password string
	Key      string
	Cert     string
	CA       string
}

// parseCredentials decodes the CONNECTOR_CREDENTIALS JSON object. An unset
// variable yields an empty map; malformed JSON is a fatal configuration
// error.
func parseCredentials(raw string) (map[string]rawCredential, error) {
	creds := map[string]rawCredential{}
	if raw == "" {
		return creds, nil
	}
	if err := json.Unmarshal([]byte(raw), &creds); err != nil {
		return nil, fmt.Errorf("CONNECTOR_CREDENTIALS contains invalid JSON: %w", err)
	}
	return creds, nil
}

// resolveCredentials turns raw per-ledger credentials into their final form,
// loading every referenced key/cert/CA file into memory. This is the only
// disk I/O on the assembly path.
func resolveCredentials(raw map[string]rawCredential) (map[string]LedgerCredential, error) {
	resolved := make(map[string]LedgerCredential, len(raw))
	for _, ledgerID := range sortedKeys(raw) {
		rc := raw[ledgerID]
		cred := LedgerCredential{
			LedgerID:   ledgerID,
			Account:    rc.Account,
			AccountURI: rc.AccountURI,
			Username:   rc.Username,
			Password:   rc.Password,
			Type:       rc.Type,
		}
		var err error
		if cred.Key, err = loadFileField(ledgerID, "key", rc.Key); err != nil {
			return nil, err
		}
		if cred.Cert, err = loadFileField(ledgerID, "cert", rc.Cert); err != nil {
			return nil, err
		}
		if cred.CA, err = loadFileField(ledgerID, "ca", rc.CA); err != nil {
			return nil, err
		}
		resolved[ledgerID] = cred
	}
	return resolved, nil
}

func loadFileField(ledgerID, field, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ledger %s: unable to read %s file %s: %w", ledgerID, field, path, err)
	}
	return data, nil
}

// readAdminCredential collects the CONNECTOR_ADMIN_* variables. The result
// is nil unless both a username and a password-or-key are supplied; a
// partially specified admin credential is treated as absent, matching the
// opt-in nature of the auto-funding feature.
func readAdminCredential(env *EnvSource) *rawAdminCredential {
	admin := &rawAdminCredential{
		Username: env.Get(keyAdminUser),
		Password: env.Get(keyAdminPass),
		Key:      env.Get(keyAdminKey),
		Cert:     env.Get(keyAdminCert),
		CA:       env.Get(keyAdminCA),
	}
	if admin.Username == "" || (admin.Password == "" && admin.Key == "") {
		return nil
	}
	return admin
}

// resolveAdminCredential loads the admin credential's file-backed fields.
func resolveAdminCredential(raw *rawAdminCredential) (*AdminCredential, error) {
	if raw == nil {
		return nil, nil
	}
	admin := &AdminCredential{
		Username: raw.Username,
		Password: raw.Password,
	}
	var err error
	if admin.Key, err = loadAdminFileField("key", raw.Key); err != nil {
		return nil, err
	}
	if admin.Cert, err = loadAdminFileField("cert", raw.Cert); err != nil {
		return nil, err
	}
	if admin.CA, err = loadAdminFileField("ca", raw.CA); err != nil {
		return nil, err
	}
	return admin, nil
}

func loadAdminFileField(field, path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("admin credential: unable to read %s file %s: %w", field, path, err)
	}
	return data, nil
}

// sortedKeys gives a deterministic iteration order over a credential map so
// the first error reported for a given invalid input never varies.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
