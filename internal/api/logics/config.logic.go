package logics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/chart"
	"offer-tracker/internal/config"
	"offer-tracker/internal/source"
	"offer-tracker/internal/utils"
)

var (
	trackerConfig     *models.TrackerConfig
	trackerConfigOnce sync.Once
	trackerConfigMu   sync.RWMutex
	configListeners   []func(models.TrackerConfig)
)

// InitTrackerConfig loads the tracker file once at startup.
func InitTrackerConfig() {
	trackerConfigOnce.Do(func() {
		cfg := defaultTrackerConfig()
		if path := getConfigPath(); path != "" {
			if loaded, err := LoadTrackerConfigFile(path); err == nil {
				cfg = loaded
				utils.LogInfo("tracker config loaded from %s", path)
			} else {
				utils.LogWarnWithContext("config", "using default tracker config", err)
			}
		}

		trackerConfigMu.Lock()
		if trackerConfig == nil {
			trackerConfig = &cfg
		}
		trackerConfigMu.Unlock()
	})
}

// GetTrackerConfig returns the current tracker configuration.
func GetTrackerConfig() models.TrackerConfig {
	InitTrackerConfig()

	trackerConfigMu.RLock()
	defer trackerConfigMu.RUnlock()
	return *trackerConfig
}

// OnTrackerConfigChange registers fn to run after every successful reload.
func OnTrackerConfigChange(fn func(models.TrackerConfig)) {
	trackerConfigMu.Lock()
	defer trackerConfigMu.Unlock()
	configListeners = append(configListeners, fn)
}

func setTrackerConfig(cfg models.TrackerConfig) {
	trackerConfigMu.Lock()
	trackerConfig = &cfg
	listeners := slices.Clone(configListeners)
	trackerConfigMu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

func defaultTrackerConfig() models.TrackerConfig {
	env := config.GetEnvConfig()
	rangeKey := env.GetDashboardDefaultRange()
	if rangeKey == "" {
		rangeKey = string(chart.DefaultRange().Key)
	}
	return models.TrackerConfig{
		APIURL:       env.TrackerAPIURL,
		Fields:       source.DefaultFields,
		DefaultRange: rangeKey,
		Timezone:     env.DefaultTimezone,
	}
}

// LoadTrackerConfigFile parses a YAML or JSON tracker file over the defaults.
// Invalid entries are replaced by their default with a warning.
func LoadTrackerConfigFile(path string) (models.TrackerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TrackerConfig{}, utils.NewConfigError("read", fmt.Sprintf("failed to read %s", path), fmt.Errorf("%w: %v", utils.ErrConfigNotFound, err))
	}

	cfg := defaultTrackerConfig()
	// JSON documents are valid YAML, so one decoder serves both file kinds.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return models.TrackerConfig{}, utils.NewConfigError("parse", fmt.Sprintf("failed to parse %s", path), fmt.Errorf("%w: %v", utils.ErrInvalidConfig, err))
	}
	return sanitizeTrackerConfig(cfg), nil
}

func sanitizeTrackerConfig(cfg models.TrackerConfig) models.TrackerConfig {
	defaults := defaultTrackerConfig()

	if utils.IsEmptyOrWhitespace(cfg.APIURL) {
		cfg.APIURL = defaults.APIURL
	}
	cfg.Fields = source.WithDefaults(cfg.Fields)
	if err := source.ValidateFields(cfg.Fields); err != nil {
		utils.LogWarnWithContext("config", "invalid field paths, using defaults", err)
		cfg.Fields = source.DefaultFields
	}
	if r, ok := chart.LookupRange(cfg.DefaultRange); ok {
		cfg.DefaultRange = string(r.Key)
	} else {
		if cfg.DefaultRange != "" {
			utils.LogWarnWithContext("config", fmt.Sprintf("unknown default_range %q", cfg.DefaultRange), utils.ErrInvalidRange)
		}
		cfg.DefaultRange = defaults.DefaultRange
	}
	if cfg.Timezone != "" {
		if err := utils.ValidateTimezone(cfg.Timezone); err != nil {
			utils.LogWarnWithContext("config", "invalid timezone", err)
			cfg.Timezone = defaults.Timezone
		}
	}
	return cfg
}

// ReloadTrackerConfig re-reads path and notifies listeners.
func ReloadTrackerConfig(path string) error {
	cfg, err := LoadTrackerConfigFile(path)
	if err != nil {
		return err
	}
	setTrackerConfig(cfg)
	utils.LogInfoWithContext("config", "tracker config reloaded from "+path, nil)
	return nil
}

// WatchTrackerConfig reloads the tracker file whenever it is written or
// replaced, until ctx is done.
func WatchTrackerConfig(ctx context.Context, path string) error {
	if path == "" {
		return utils.NewConfigError("watch", "no tracker config file to watch", utils.ErrConfigNotFound)
	}
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return utils.NewConfigError("watch", "failed to create config watcher", err)
	}
	// Editors replace files by rename, so the directory is watched instead.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return utils.NewConfigError("watch", "failed to watch "+filepath.Dir(path), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := ReloadTrackerConfig(path); err != nil {
					utils.LogWarnWithContext("config", "reload skipped", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				utils.LogWarnWithContext("config", "watcher error", err)
			}
		}
	}()
	return nil
}

// getConfigPath returns TRACKER_CONFIG_PATH or the first of configs.yaml,
// configs.yml and configs.json found in the project root.
func getConfigPath() string {
	if p := config.GetEnvConfig().TrackerConfigPath; p != "" {
		return p
	}

	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}
	root := findProjectRoot(cwd)
	for _, name := range []string{"configs.yaml", "configs.yml", "configs.json"} {
		candidate := filepath.Join(root, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// ConfigPath exposes the resolved tracker file path, empty when none exists.
func ConfigPath() string {
	return getConfigPath()
}

func findProjectRoot(startPath string) string {
	current := startPath
	for {
		if _, err := os.Stat(filepath.Join(current, "go.mod")); err == nil {
			return current
		}
		parent := filepath.Dir(current)
		if parent == current {
			return startPath
		}
		current = parent
	}
}
