package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Manager holds the registered definitions. Copy-on-return: callers
// never share the stored structs.
type Manager struct {
	mu          sync.RWMutex
	definitions map[string]*Definition
	onChange    func(count int)
}

// NewManager creates an empty definition manager.
func NewManager() *Manager {
	return &Manager{
		definitions: make(map[string]*Definition),
	}
}

// OnChange installs a hook called with the definition count after every
// mutation. The metrics gauge binds here.
func (m *Manager) OnChange(fn func(count int)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Register validates and stores a definition, replacing any previous
// one with the same name.
func (m *Manager) Register(def *Definition) error {
	if def == nil {
		return fmt.Errorf("nil definition")
	}
	if err := def.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	m.definitions[def.Name] = def.Clone()
	count := len(m.definitions)
	hook := m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return nil
}

// Get returns a copy of the named definition.
func (m *Manager) Get(name string) (*Definition, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.definitions[name]
	if !ok {
		return nil, false
	}
	return def.Clone(), true
}

// List returns copies of all definitions, sorted by name.
func (m *Manager) List() []*Definition {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Definition, 0, len(m.definitions))
	for _, def := range m.definitions {
		out = append(out, def.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Remove deletes a definition by name.
func (m *Manager) Remove(name string) bool {
	m.mu.Lock()
	_, ok := m.definitions[name]
	delete(m.definitions, name)
	count := len(m.definitions)
	hook := m.onChange
	m.mu.Unlock()

	if ok && hook != nil {
		hook(count)
	}
	return ok
}

// ReplaceAll swaps the full definition set atomically. Used by the hot
// reloader so a re-seed also drops definitions whose files went away.
func (m *Manager) ReplaceAll(defs []*Definition) error {
	next := make(map[string]*Definition, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return err
		}
		next[def.Name] = def.Clone()
	}

	m.mu.Lock()
	m.definitions = next
	count := len(m.definitions)
	hook := m.onChange
	m.mu.Unlock()

	if hook != nil {
		hook(count)
	}
	return nil
}

// Count returns the number of registered definitions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.definitions)
}
