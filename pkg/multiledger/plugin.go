// Package multiledger bootstraps one connectivity handle per configured
// ledger and aggregates their live connection state.
//
// Plugin types are a finite, compile-time-known set registered through
// RegisterPluginType rather than resolved dynamically by name at runtime.
package multiledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/clearstream/connector/pkg/config"
)

// DefaultPluginType is assumed for credentials that do not name a
// connectivity type.
const DefaultPluginType = "bells"

// ErrNoSuchPluginType is returned when a credential names a connectivity
// type with no registered factory.
var ErrNoSuchPluginType = errors.New("no such plugin type")

// LedgerPlugin is the capability interface every ledger connectivity handle
// implements.
type LedgerPlugin interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	IsConnected() bool
	Type() string
}

// PluginOpts is passed to a plugin factory when the registry instantiates a
// handle for one ledger.
type PluginOpts struct {
	LedgerID   string
	InstanceID string
	Credential config.LedgerCredential

	DebugReplyNotifications bool
	DebugAutoFund           bool
	// Admin is only set when DebugAutoFund is enabled; plugins use it to
	// seed their ledger account.
	Admin *config.AdminCredential

	Logger *zap.Logger
}

// Factory constructs a plugin handle from its options.
type Factory func(opts PluginOpts) (LedgerPlugin, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// RegisterPluginType makes a plugin type available to Registry.Build.
// Built-in types are registered at package init; additional types must be
// registered before the registry is built. Registering a duplicate type
// panics, as it would for a stdlib driver registry.
func RegisterPluginType(name string, factory Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	if _, exists := factories[name]; exists {
		panic(fmt.Sprintf("multiledger: plugin type %q already registered", name))
	}
	factories[name] = factory
}

func lookupFactory(name string) (Factory, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	factory, ok := factories[name]
	return factory, ok
}

func init() {
	RegisterPluginType("bells", newBellsPlugin)
	RegisterPluginType("mock", newMockPlugin)
}
