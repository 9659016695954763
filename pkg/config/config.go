// Package config resolves the connector's startup configuration from the
// process environment into a single validated ResolvedConfig value.
//
// Resolution is a one-shot, synchronous pass: environment lookup, credential
// file loading and cross-field validation all happen before any other
// connector component starts. The resulting ResolvedConfig is immutable and
// is passed explicitly to every consumer; nothing in this package holds
// process-wide mutable state.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencyLedger identifies one side of a trading pair: a currency code on a
// specific ledger, serialized as "<currency>@<ledger>".
type CurrencyLedger struct {
	Currency string
	Ledger   string
}

// ParseCurrencyLedger splits a "<currency>@<ledger>" token on the first '@'.
// Ledger URIs may themselves contain '@', so only the first separator counts.
func ParseCurrencyLedger(token string) (CurrencyLedger, error) {
	currency, ledger, found := strings.Cut(token, "@")
	if !found || currency == "" || ledger == "" {
		return CurrencyLedger{}, fmt.Errorf("invalid currency@ledger token %q", token)
	}
	return CurrencyLedger{Currency: currency, Ledger: ledger}, nil
}

func (cl CurrencyLedger) String() string {
	return cl.Currency + "@" + cl.Ledger
}

// TradingPair is an ordered source/destination combination the connector is
// willing to quote between.
type TradingPair struct {
	Source      CurrencyLedger
	Destination CurrencyLedger
}

// LedgerCredential holds the resolved connection material for one ledger.
// Key, Cert and CA are the loaded file contents, not paths. Exactly one of
// Password or (Key and Cert) is present once validation has passed.
type LedgerCredential struct {
	LedgerID string
	Account  string
	// AccountURI is the legacy spelling of Account. It survives resolution
	// so the registry can migrate it with a deprecation warning; after
	// migration only Account is set.
	//
	// Deprecated: use Account.
	AccountURI string
	Username   string
	Password   string
	Key        []byte
	Cert       []byte
	CA         []byte
	Type       string
}

// AdminCredential is the optional administrative credential used for debug
// auto-funding. Same shape as a ledger credential without the ledger binding.
type AdminCredential struct {
	Username string
	Password string
	Key      []byte
	Cert     []byte
	CA       []byte
}

// NotificationPolicy controls verification of inbound ledger notifications.
// Keys maps a ledger URI to the hex-encoded compressed secp256k1 public key
// used to verify events from that ledger.
type NotificationPolicy struct {
	MustVerify bool
	Keys       map[string]string
}

// ResolvedConfig is the root configuration aggregate. It is assembled exactly
// once at process start and treated as read-only afterwards.
type ResolvedConfig struct {
	Backend    string
	BackendURI string
	BaseURI    string

	Spread   decimal.Decimal
	Slippage decimal.Decimal

	MinMessageWindow time.Duration
	MaxHoldTime      time.Duration

	RouteBroadcastInterval time.Duration
	RouteCleanupInterval   time.Duration
	RouteExpiry            time.Duration

	DebugAutoFund           bool
	DebugReplyNotifications bool

	Admin             *AdminCredential
	Ledgers           []CurrencyLedger
	LedgerCredentials map[string]LedgerCredential
	Pairs             []TradingPair
	Notifications     NotificationPolicy

	TestMode bool
}
