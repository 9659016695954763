package multiledger

import (
	"context"
	"sync"
)

// MockPlugin is an in-memory handle with settable connectivity. Test-mode
// fixtures and package tests use it in place of a real ledger session.
type MockPlugin struct {
	ledgerID string

	mu        sync.Mutex
	connected bool
}

func newMockPlugin(opts PluginOpts) (LedgerPlugin, error) {
	return &MockPlugin{ledgerID: opts.LedgerID}, nil
}

func (m *MockPlugin) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = true
	return nil
}

func (m *MockPlugin) Disconnect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	return nil
}

func (m *MockPlugin) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// SetConnected forces the connectivity state, bypassing Connect/Disconnect.
func (m *MockPlugin) SetConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = connected
}

func (m *MockPlugin) Type() string { return "mock" }
