package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
)

var structValidator = validator.New(validator.WithRequiredStructEnabled())

// validationInput carries the raw parsed values checked before any defaults
// are merged or files are loaded.
type validationInput struct {
	Ledgers            []CurrencyLedger
	Credentials        map[string]rawCredential
	Admin              *rawAdminCredential
	NotificationVerify bool
	NotificationKeys   map[string]string
}

// validateConfig is a pure verification pass over the raw resolved values.
// The check order is fixed (notifications, then credentials, then admin) so
// the first error reported for a given invalid input is deterministic.
func validateConfig(in validationInput) error {
	if err := validateNotifications(in); err != nil {
		return err
	}
	if err := validateCredentials(in.Credentials); err != nil {
		return err
	}
	return validateAdmin(in.Admin)
}

func validateNotifications(in validationInput) error {
	if !in.NotificationVerify {
		return nil
	}
	for _, ledger := range in.Ledgers {
		key, ok := in.NotificationKeys[ledger.Ledger]
		if !ok || key == "" {
			return fmt.Errorf("notification verification is enabled but no key is configured for ledger %s", ledger.Ledger)
		}
		if err := validateVerificationKey(key); err != nil {
			return fmt.Errorf("notification key for ledger %s is invalid: %w", ledger.Ledger, err)
		}
	}
	return nil
}

func validateCredentials(creds map[string]rawCredential) error {
	for _, ledgerID := range sortedKeys(creds) {
		cred := creds[ledgerID]
		if err := structValidator.Struct(cred); err != nil {
			return fmt.Errorf("ledger %s credential is missing a username", ledgerID)
		}
		if cred.Password == "" && cred.Key == "" {
			return fmt.Errorf("ledger %s credential must specify a password or a key", ledgerID)
		}
		if (cred.Cert == "") != (cred.Key == "") {
			return fmt.Errorf("ledger %s credential must specify both cert and key, or neither", ledgerID)
		}
		if cred.Account == "" && cred.AccountURI == "" {
			return fmt.Errorf("ledger %s credential is missing an account", ledgerID)
		}
		for _, file := range []struct{ field, path string }{
			{"key", cred.Key}, {"cert", cred.Cert}, {"ca", cred.CA},
		} {
			if err := checkReadable(file.path); err != nil {
				return fmt.Errorf("ledger %s credential %s file %s is unreadable: %w", ledgerID, file.field, file.path, err)
			}
		}
	}
	return nil
}

func validateAdmin(admin *rawAdminCredential) error {
	if admin == nil {
		return nil
	}
	if (admin.Cert == "") != (admin.Key == "") {
		return fmt.Errorf("admin credential must specify both cert and key, or neither")
	}
	for _, file := range []struct{ field, path string }{
		{"key", admin.Key}, {"cert", admin.Cert}, {"ca", admin.CA},
	} {
		if err := checkReadable(file.path); err != nil {
			return fmt.Errorf("admin credential %s file %s is unreadable: %w", file.field, file.path, err)
		}
	}
	return nil
}

// checkReadable probes that a file path can actually be opened. Empty paths
// are fine; the field-presence rules are enforced separately.
func checkReadable(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}
