// Package state persists the last observed status of every checked URL.
// This allows watch mode to report status transitions across restarts.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/certwatch-app/cw-sslcheck/internal/checker"
)

// State holds persisted run state
type State struct {
	LastRunAt   time.Time         `json:"last_run_at,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
	Statuses    map[string]string `json:"statuses"`
}

// Transition is a status change of one URL between two runs.
// From is empty when the URL was not seen before.
type Transition struct {
	URL  string
	From string
	To   string
}

// Manager handles state persistence
type Manager struct {
	state    *State
	filePath string
	mu       sync.RWMutex
}

// stateFileName is the name of the state file stored alongside config
const stateFileName = ".cw-sslcheck-state.json"

// NewManager creates a state manager for the given config file path.
// The state file will be stored in the same directory as the config file.
func NewManager(configPath string) *Manager {
	return NewManagerWithStateDir(filepath.Dir(configPath))
}

// NewManagerWithStateDir creates a state manager with an explicit state directory
func NewManagerWithStateDir(stateDir string) *Manager {
	return &Manager{
		filePath: filepath.Join(stateDir, stateFileName),
		state:    newState(),
	}
}

func newState() *State {
	return &State{Statuses: map[string]string{}}
}

// Path returns the state file location
func (m *Manager) Path() string {
	return m.filePath
}

// Load reads state from disk
// Returns nil if file doesn't exist (first run)
// Returns error if file exists but cannot be read/parsed
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			m.state = newState()
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	state := newState()
	if err := json.Unmarshal(data, state); err != nil {
		m.state = newState()
		return fmt.Errorf("failed to parse state file (treating as first run): %w", err)
	}
	if state.Statuses == nil {
		state.Statuses = map[string]string{}
	}

	m.state = state
	return nil
}

// Save writes state to disk with secure permissions (0600)
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(m.filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// Status derives the persisted status string of an outcome
func Status(o checker.Outcome) string {
	switch {
	case o.Err != nil:
		return "failed:" + o.Err.Kind.String()
	case o.Verdict == nil:
		return "failed:unknown"
	case !o.Verdict.Valid:
		return "invalid"
	default:
		return o.Verdict.Freshness.String()
	}
}

// Update replaces the stored statuses with those of outcomes and returns the
// URLs whose status differs from the previous run, sorted by URL. URLs no
// longer checked are forgotten.
func (m *Manager) Update(outcomes []checker.Outcome, at time.Time) []Transition {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]string, len(outcomes))
	var transitions []Transition
	for _, o := range outcomes {
		status := Status(o)
		next[o.URL] = status
		if prev := m.state.Statuses[o.URL]; prev != status {
			transitions = append(transitions, Transition{URL: o.URL, From: prev, To: status})
		}
	}

	sort.Slice(transitions, func(i, j int) bool {
		return transitions[i].URL < transitions[j].URL
	})

	m.state.Statuses = next
	m.state.LastRunAt = at.UTC()
	return transitions
}

// GetStatus returns the stored status of url
func (m *Manager) GetStatus(url string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Statuses[url]
}

// GetLastRunAt returns the last run timestamp
func (m *Manager) GetLastRunAt() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.LastRunAt
}

// HasState returns true if there is persisted state (not first run)
func (m *Manager) HasState() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state.Statuses) > 0
}

// Reset clears all state
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = newState()

	if err := os.Remove(m.filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove state file: %w", err)
	}

	return nil
}
