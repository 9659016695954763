package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fixtureCredential mirrors LedgerCredential in YAML form. Key material is
// inline rather than file-backed so fixtures stay self-contained.
type fixtureCredential struct {
	Account  string `yaml:"account"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Key      string `yaml:"key"`
	Cert     string `yaml:"cert"`
	CA       string `yaml:"ca"`
	Type     string `yaml:"type"`
}

// applyTestFixtures substitutes fixture-sourced ledger credentials and
// trading pairs into cfg. Without a credential fixture the ledger credential
// set is empty (raw environment credentials are never file-resolved in test
// mode); without a pair fixture the environment-derived pairs stand.
func applyTestFixtures(cfg *ResolvedConfig, opts Options) error {
	if opts.TestCredentialsFile != "" {
		creds, err := loadCredentialFixtures(opts.TestCredentialsFile)
		if err != nil {
			return err
		}
		cfg.LedgerCredentials = creds
	}
	if cfg.LedgerCredentials == nil {
		cfg.LedgerCredentials = map[string]LedgerCredential{}
	}
	if opts.TestPairsFile != "" {
		pairs, err := loadPairFixtures(opts.TestPairsFile)
		if err != nil {
			return err
		}
		cfg.Pairs = pairs
	}
	return nil
}

func loadCredentialFixtures(path string) (map[string]LedgerCredential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credential fixtures %s: %w", path, err)
	}
	var fixtures map[string]fixtureCredential
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parsing credential fixtures %s: %w", path, err)
	}
	creds := make(map[string]LedgerCredential, len(fixtures))
	for ledgerID, fc := range fixtures {
		creds[ledgerID] = LedgerCredential{
			LedgerID: ledgerID,
			Account:  fc.Account,
			Username: fc.Username,
			Password: fc.Password,
			Key:      bytesOrNil(fc.Key),
			Cert:     bytesOrNil(fc.Cert),
			CA:       bytesOrNil(fc.CA),
			Type:     fc.Type,
		}
	}
	return creds, nil
}

func loadPairFixtures(path string) ([]TradingPair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pair fixtures %s: %w", path, err)
	}
	var entries [][]string
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing pair fixtures %s: %w", path, err)
	}
	pairs := make([]TradingPair, 0, len(entries))
	for _, entry := range entries {
		if len(entry) != 2 {
			return nil, fmt.Errorf("pair fixture %v must have exactly two elements", entry)
		}
		source, err := ParseCurrencyLedger(entry[0])
		if err != nil {
			return nil, fmt.Errorf("pair fixtures %s: %w", path, err)
		}
		destination, err := ParseCurrencyLedger(entry[1])
		if err != nil {
			return nil, fmt.Errorf("pair fixtures %s: %w", path, err)
		}
		pairs = append(pairs, TradingPair{Source: source, Destination: destination})
	}
	return pairs, nil
}

func bytesOrNil(s string) []byte {
	if s == "" {
		return nil
	}
	return []byte(s)
}
