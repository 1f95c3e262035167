package lua

import (
	"fmt"
	"sync"
)

// MockHost implements Host for testing.
type MockHost struct {
	mu sync.Mutex

	// Captured calls
	NotifyCalls  []string
	ActionCalls  []string
	PaletteCalls []struct{ Attr, Spec string }
	ConfigCalls  int

	// KnownActions are accepted by Action; others fail.
	KnownActions map[string]bool
}

func NewMockHost() *MockHost {
	return &MockHost{
		KnownActions: map[string]bool{"refresh": true, "compose": true, "quit": true, "top": true},
	}
}

func (m *MockHost) Notify(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifyCalls = append(m.NotifyCalls, text)
}

func (m *MockHost) Action(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.KnownActions[name] {
		return fmt.Errorf("unknown action %q", name)
	}
	m.ActionCalls = append(m.ActionCalls, name)
	return nil
}

func (m *MockHost) SetPalette(attr, spec string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if spec == "" {
		return fmt.Errorf("empty style for %s", attr)
	}
	m.PaletteCalls = append(m.PaletteCalls, struct{ Attr, Spec string }{attr, spec})
	return nil
}

func (m *MockHost) OnConfigChange() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfigCalls++
}

// DrainActions returns and clears the recorded actions.
func (m *MockHost) DrainActions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.ActionCalls
	m.ActionCalls = nil
	return calls
}

// DrainNotifications returns and clears the recorded notifications.
func (m *MockHost) DrainNotifications() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := m.NotifyCalls
	m.NotifyCalls = nil
	return calls
}
