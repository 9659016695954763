package config

import (
	"encoding/json"
	"fmt"
)

// parseLedgers decodes CONNECTOR_LEDGERS, a JSON array of "currency@ledger"
// tokens.
func parseLedgers(raw string) ([]CurrencyLedger, error) {
	if raw == "" {
		return nil, nil
	}
	var tokens []string
	if err := json.Unmarshal([]byte(raw), &tokens); err != nil {
		return nil, fmt.Errorf("CONNECTOR_LEDGERS contains invalid JSON: %w", err)
	}
	ledgers := make([]CurrencyLedger, 0, len(tokens))
	for _, token := range tokens {
		cl, err := ParseCurrencyLedger(token)
		if err != nil {
			return nil, fmt.Errorf("CONNECTOR_LEDGERS: %w", err)
		}
		ledgers = append(ledgers, cl)
	}
	return ledgers, nil
}

// parsePairs decodes CONNECTOR_PAIRS, a JSON array of two-element
// ["CUR@ledger", "CUR@ledger"] arrays.
func parsePairs(raw string) ([]TradingPair, error) {
	if raw == "" {
		return nil, nil
	}
	var entries [][]string
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("CONNECTOR_PAIRS contains invalid JSON: %w", err)
	}
	pairs := make([]TradingPair, 0, len(entries))
	for _, entry := range entries {
		if len(entry) != 2 {
			return nil, fmt.Errorf("CONNECTOR_PAIRS: pair %v must have exactly two elements", entry)
		}
		source, err := ParseCurrencyLedger(entry[0])
		if err != nil {
			return nil, fmt.Errorf("CONNECTOR_PAIRS: %w", err)
		}
		destination, err := ParseCurrencyLedger(entry[1])
		if err != nil {
			return nil, fmt.Errorf("CONNECTOR_PAIRS: %w", err)
		}
		pairs = append(pairs, TradingPair{Source: source, Destination: destination})
	}
	return pairs, nil
}

// generatePairs derives the default trading pairs as every ordered
// combination of distinct configured ledgers. A ledger is never paired with
// itself, and each ordered combination appears exactly once.
func generatePairs(ledgers []CurrencyLedger) []TradingPair {
	var pairs []TradingPair
	seen := map[string]bool{}
	for _, source := range ledgers {
		for _, destination := range ledgers {
			if source.Ledger == destination.Ledger {
				continue
			}
			key := source.String() + ";" + destination.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			pairs = append(pairs, TradingPair{Source: source, Destination: destination})
		}
	}
	return pairs
}
