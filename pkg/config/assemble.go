package config

import (
	"fmt"
	"time"

	"github.com/creasty/defaults"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Options controls the assembly mode. TestMode is the only way to enable the
// fixture path; the assembler never inspects how the process was launched.
type Options struct {
	TestMode bool
	// TestCredentialsFile and TestPairsFile point at YAML fixtures that
	// replace the environment-derived ledger credentials and trading pairs
	// when TestMode is set. Either may be empty.
	TestCredentialsFile string
	TestPairsFile       string
}

// tuning holds the numeric knobs with their documented defaults. Values that
// are absent from the environment, or fail to parse, keep the default rather
// than failing assembly.
type tuning struct {
	Backend                  string `default:"fixerio"`
	BaseURI                  string `default:"http://localhost:4000"`
	Spread                   string `default:"0.002"`
	Slippage                 string `default:"0.001"`
	MinMessageWindowSec      int    `default:"1"`
	MaxHoldTimeSec           int    `default:"10"`
	RouteBroadcastIntervalMS int    `default:"30000"`
	RouteCleanupIntervalMS   int    `default:"1000"`
	RouteExpiryMS            int    `default:"45000"`
}

// Assemble resolves the complete connector configuration from the
// environment. It either returns one fully populated ResolvedConfig or an
// error describing the first violation found; it never leaves partial state
// behind.
//
// Assembly validates first, then resolves: ledger list, trading pairs,
// numeric knobs, admin credential, and finally the per-ledger credentials
// (loading any referenced key/cert/CA files). In test mode the fixture files
// substitute the credentials and pairs, reply notifications are forced on,
// and the credential/file validation pass is bypassed.
func Assemble(env *EnvSource, opts Options, logger *zap.Logger) (*ResolvedConfig, error) {
	rawCreds, err := parseCredentials(env.Get(keyCredentials))
	if err != nil {
		return nil, err
	}
	ledgers, err := parseLedgers(env.Get(keyLedgers))
	if err != nil {
		return nil, err
	}
	explicitPairs, err := parsePairs(env.Get(keyPairs))
	if err != nil {
		return nil, err
	}
	notificationKeys, err := parseNotificationKeys(env.Get(keyNotificationKeys))
	if err != nil {
		return nil, err
	}

	rawAdmin := readAdminCredential(env)
	policy := resolveNotificationPolicy(env, notificationKeys, opts.TestMode)

	if !opts.TestMode {
		err := validateConfig(validationInput{
			Ledgers:            ledgers,
			Credentials:        rawCreds,
			Admin:              rawAdmin,
			NotificationVerify: policy.MustVerify,
			NotificationKeys:   notificationKeys,
		})
		if err != nil {
			return nil, err
		}
	}

	// An explicit pair list wins; an absent or empty one falls back to the
	// full ordered combination over the configured ledgers.
	pairs := explicitPairs
	if len(pairs) == 0 {
		pairs = generatePairs(ledgers)
	}

	knobs, err := resolveTuning(env)
	if err != nil {
		return nil, err
	}
	spread, err := decimal.NewFromString(knobs.Spread)
	if err != nil {
		return nil, fmt.Errorf("invalid fx spread %q: %w", knobs.Spread, err)
	}
	slippage, err := decimal.NewFromString(knobs.Slippage)
	if err != nil {
		return nil, fmt.Errorf("invalid slippage %q: %w", knobs.Slippage, err)
	}

	admin, err := resolveAdminCredential(rawAdmin)
	if err != nil {
		return nil, err
	}

	cfg := &ResolvedConfig{
		Backend:                 knobs.Backend,
		BackendURI:              env.Get(keyBackendURI),
		BaseURI:                 knobs.BaseURI,
		Spread:                  spread,
		Slippage:                slippage,
		MinMessageWindow:        time.Duration(knobs.MinMessageWindowSec) * time.Second,
		MaxHoldTime:             time.Duration(knobs.MaxHoldTimeSec) * time.Second,
		RouteBroadcastInterval:  time.Duration(knobs.RouteBroadcastIntervalMS) * time.Millisecond,
		RouteCleanupInterval:    time.Duration(knobs.RouteCleanupIntervalMS) * time.Millisecond,
		RouteExpiry:             time.Duration(knobs.RouteExpiryMS) * time.Millisecond,
		DebugAutoFund:           env.GetBool(keyDebugAutoFund, false),
		DebugReplyNotifications: env.GetBool(keyDebugReplyNotifications, false),
		Admin:                   admin,
		Ledgers:                 ledgers,
		Pairs:                   pairs,
		Notifications:           policy,
		TestMode:                opts.TestMode,
	}

	if cfg.DebugAutoFund && cfg.Admin == nil {
		return nil, fmt.Errorf("debug auto-funding requires an admin credential (CONNECTOR_ADMIN_USER plus a password or key)")
	}

	if opts.TestMode {
		if err := applyTestFixtures(cfg, opts); err != nil {
			return nil, err
		}
		cfg.DebugReplyNotifications = true
	} else {
		cfg.LedgerCredentials, err = resolveCredentials(rawCreds)
		if err != nil {
			return nil, err
		}
	}

	logger.Info("configuration assembled",
		zap.Int("ledgers", len(cfg.Ledgers)),
		zap.Int("pairs", len(cfg.Pairs)),
		zap.Bool("notification_verify", cfg.Notifications.MustVerify),
		zap.Bool("test_mode", cfg.TestMode))

	return cfg, nil
}

func resolveTuning(env *EnvSource) (*tuning, error) {
	knobs := &tuning{}
	if err := defaults.Set(knobs); err != nil {
		return nil, fmt.Errorf("setting tuning defaults: %w", err)
	}
	if backend := env.Get(keyBackend); backend != "" {
		knobs.Backend = backend
	}
	if baseURI := env.Get(keyBaseURI); baseURI != "" {
		knobs.BaseURI = baseURI
	}
	if spread := env.Get(keyFxSpread); spread != "" {
		if _, err := decimal.NewFromString(spread); err == nil {
			knobs.Spread = spread
		}
	}
	if slippage := env.Get(keySlippage); slippage != "" {
		if _, err := decimal.NewFromString(slippage); err == nil {
			knobs.Slippage = slippage
		}
	}
	knobs.MinMessageWindowSec = env.GetInt(keyMinMessageWindow, knobs.MinMessageWindowSec)
	knobs.MaxHoldTimeSec = env.GetInt(keyMaxHoldTime, knobs.MaxHoldTimeSec)
	knobs.RouteBroadcastIntervalMS = env.GetInt(keyRouteBroadcastInterval, knobs.RouteBroadcastIntervalMS)
	knobs.RouteCleanupIntervalMS = env.GetInt(keyRouteCleanupInterval, knobs.RouteCleanupIntervalMS)
	knobs.RouteExpiryMS = env.GetInt(keyRouteExpiry, knobs.RouteExpiryMS)
	return knobs, nil
}
