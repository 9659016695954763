package multiledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearstream/connector/internal/metrics"
	"github.com/clearstream/connector/pkg/config"
)

// ErrAlreadyBuilt is returned when Build is invoked on a registry that has
// already instantiated its handles. The registry is built exactly once at
// startup; rebuilding is not supported.
var ErrAlreadyBuilt = errors.New("multiledger registry already built")

// Registry owns one LedgerPlugin per configured ledger and exposes lookup,
// enumeration and aggregate connectivity health over them.
type Registry struct {
	cfg    *config.ResolvedConfig
	logger *zap.Logger

	mu      sync.RWMutex
	built   bool
	handles map[string]LedgerPlugin
	types   map[string]string
}

// New returns an unbuilt registry for the given configuration.
func New(cfg *config.ResolvedConfig, logger *zap.Logger) *Registry {
	return &Registry{
		cfg:     cfg,
		logger:  logger,
		handles: map[string]LedgerPlugin{},
		types:   map[string]string{},
	}
}

// Build instantiates one handle per ledger credential. Deprecated
// credential fields are migrated first, then the type-keyed factory is
// invoked with the ledger's resolved credential and debug settings. A
// credential naming an unregistered type fails the whole build.
func (r *Registry) Build() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.built {
		return ErrAlreadyBuilt
	}

	ledgerIDs := make([]string, 0, len(r.cfg.LedgerCredentials))
	for id := range r.cfg.LedgerCredentials {
		ledgerIDs = append(ledgerIDs, id)
	}
	sort.Strings(ledgerIDs)

	for _, ledgerID := range ledgerIDs {
		cred := migrateCredential(r.cfg.LedgerCredentials[ledgerID], r.logger)

		pluginType := cred.Type
		if pluginType == "" {
			pluginType = DefaultPluginType
		}
		factory, ok := lookupFactory(pluginType)
		if !ok {
			return fmt.Errorf("ledger %s: %w: %q", ledgerID, ErrNoSuchPluginType, pluginType)
		}

		instanceID := uuid.NewString()
		opts := PluginOpts{
			LedgerID:                ledgerID,
			InstanceID:              instanceID,
			Credential:              cred,
			DebugReplyNotifications: r.cfg.DebugReplyNotifications,
			DebugAutoFund:           r.cfg.DebugAutoFund,
			Logger: r.logger.With(
				zap.String("ledger", ledgerID),
				zap.String("plugin", pluginType),
				zap.String("instance", instanceID)),
		}
		if r.cfg.DebugAutoFund {
			opts.Admin = r.cfg.Admin
		}

		handle, err := factory(opts)
		if err != nil {
			return fmt.Errorf("building plugin for ledger %s: %w", ledgerID, err)
		}
		r.handles[ledgerID] = handle
		r.types[ledgerID] = pluginType
	}

	r.built = true
	metrics.LedgersRegistered.Set(float64(len(r.handles)))
	r.logger.Info("multiledger registry built", zap.Int("ledgers", len(r.handles)))
	return nil
}

// migrateCredential returns a copy of cred with the legacy account_uri field
// folded into Account. The input is never mutated; after migration only
// Account is set.
func migrateCredential(cred config.LedgerCredential, logger *zap.Logger) config.LedgerCredential {
	if cred.AccountURI == "" {
		return cred
	}
	logger.Warn("credential uses deprecated account_uri field, use account instead",
		zap.String("ledger", cred.LedgerID))
	migrated := cred
	if migrated.Account == "" {
		migrated.Account = cred.AccountURI
	}
	migrated.AccountURI = ""
	return migrated
}

// Connect brings every handle up. Handles are independent; the first failure
// aborts since a partially connected connector must not start routing.
func (r *Registry) Connect(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for ledgerID, handle := range r.handles {
		if err := handle.Connect(ctx); err != nil {
			return fmt.Errorf("connecting ledger %s: %w", ledgerID, err)
		}
	}
	return nil
}

// Disconnect tears every handle down, returning the first error encountered
// after attempting all of them.
func (r *Registry) Disconnect(ctx context.Context) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var firstErr error
	for ledgerID, handle := range r.handles {
		if err := handle.Disconnect(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("disconnecting ledger %s: %w", ledgerID, err)
		}
	}
	return firstErr
}

// Get returns the handle for a ledger id. It never constructs on demand.
func (r *Registry) Get(ledgerID string) (LedgerPlugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[ledgerID]
	return handle, ok
}

// GetAll returns a copy of the ledger-id to handle mapping. Mutating the
// returned map cannot affect the registry.
func (r *Registry) GetAll() map[string]LedgerPlugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make(map[string]LedgerPlugin, len(r.handles))
	for id, handle := range r.handles {
		all[id] = handle
	}
	return all
}

// GetType returns the plugin type tag of a ledger's handle.
func (r *Registry) GetType(ledgerID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pluginType, ok := r.types[ledgerID]
	if !ok {
		return "", fmt.Errorf("unknown ledger %s", ledgerID)
	}
	return pluginType, nil
}

// GetStatus reports whether every registered handle is currently connected.
// It is an instantaneous poll over the handles, not a subscription. An empty
// registry reports healthy: with no ledgers configured there is nothing to
// be disconnected from.
func (r *Registry) GetStatus() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connected := 0
	for _, handle := range r.handles {
		if handle.IsConnected() {
			connected++
		}
	}
	healthy := connected == len(r.handles)
	metrics.LedgersConnected.Set(float64(connected))
	if healthy {
		metrics.LedgersHealthy.Set(1)
	} else {
		metrics.LedgersHealthy.Set(0)
	}
	return healthy
}
