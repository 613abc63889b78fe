package utils

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"offer-tracker/internal/config"
)

// Preference keys. Values are stored as strings and parsed by the caller.
const (
	PrefPollInterval      = "poll_interval_ms"
	PrefDashboardInterval = "dashboard_interval_ms"
)

const DefaultPreferencesTable = "tracker_preferences"

// PreferenceStore is a string key/value store for dashboard preferences.
type PreferenceStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Backend() string
	Close() error
}

// HasStorage checks if the desired backend exists in the configured list.
func HasStorage(backends []string, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	for _, b := range backends {
		if strings.ToLower(strings.TrimSpace(b)) == want {
			return true
		}
	}
	return false
}

// OpenPreferenceStore opens the backend named by PREFERENCES_STORAGE. A
// database backend that cannot be opened degrades to memory.
func OpenPreferenceStore(ctx context.Context) PreferenceStore {
	env := config.GetEnvConfig()
	backend := env.PreferencesStorage

	var (
		store PreferenceStore
		err   error
	)
	switch {
	case HasStorage([]string{"sqlite"}, backend):
		store, err = OpenSQLitePreferences(ctx, env.GetDatabasePath(), DefaultPreferencesTable)
	case HasStorage([]string{"postgres"}, backend):
		store, err = OpenPostgresPreferences(ctx, env.GetPostgresDSN(), DefaultPreferencesTable)
	default:
		return NewMemoryPreferences()
	}
	if err != nil {
		LogErrorWithContext("preferences", fmt.Sprintf("failed to open %s store, using memory", backend), err)
		return NewMemoryPreferences()
	}
	LogInfo("preferences stored in %s", store.Backend())
	return store
}

// MemoryPreferences keeps preferences for the lifetime of the process.
type MemoryPreferences struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryPreferences() *MemoryPreferences {
	return &MemoryPreferences{values: make(map[string]string)}
}

func (m *MemoryPreferences) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryPreferences) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *MemoryPreferences) Backend() string { return "memory" }

func (m *MemoryPreferences) Close() error { return nil }
