package logics

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"offer-tracker/internal/api/models"
	"offer-tracker/internal/utils"
)

const (
	DefaultPollIntervalMs      int64 = 60_000
	DefaultDashboardIntervalMs int64 = 300_000

	// MaxIntervalMs is the longest interval a time.Duration can hold.
	MaxIntervalMs = math.MaxInt64 / int64(time.Millisecond)
)

func DefaultPreferences() models.Preferences {
	return models.Preferences{
		PollIntervalMs:      DefaultPollIntervalMs,
		DashboardIntervalMs: DefaultDashboardIntervalMs,
	}
}

// ParseIntervalMs reads a stored interval. Anything that is not a positive
// whole number of milliseconds up to MaxIntervalMs yields def.
func ParseIntervalMs(raw string, def int64) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 1 || f > float64(MaxIntervalMs) {
		return def
	}
	return int64(f)
}

// LoadPreferences reads both intervals, falling back to defaults for
// missing or malformed values and for store errors.
func LoadPreferences(ctx context.Context, store utils.PreferenceStore) models.Preferences {
	prefs := DefaultPreferences()
	if store == nil {
		return prefs
	}

	read := func(key string, def int64) int64 {
		raw, ok, err := store.Get(ctx, key)
		if err != nil {
			utils.LogWarnWithContext("preferences", fmt.Sprintf("failed to read %s", key), err)
			return def
		}
		if !ok {
			return def
		}
		return ParseIntervalMs(raw, def)
	}
	prefs.PollIntervalMs = read(utils.PrefPollInterval, DefaultPollIntervalMs)
	prefs.DashboardIntervalMs = read(utils.PrefDashboardInterval, DefaultDashboardIntervalMs)
	return prefs
}

// ValidatePreferences rejects intervals that are not positive or do not fit
// in a time.Duration.
func ValidatePreferences(p models.Preferences) error {
	if err := validateIntervalMs("poll_interval_ms", p.PollIntervalMs); err != nil {
		return err
	}
	return validateIntervalMs("dashboard_interval_ms", p.DashboardIntervalMs)
}

func validateIntervalMs(field string, ms int64) error {
	switch {
	case ms <= 0:
		return utils.NewValidationError(field, field+" must be positive", utils.ErrInvalidPreference)
	case ms > MaxIntervalMs:
		return utils.NewValidationError(field, fmt.Sprintf("%s must not exceed %d", field, MaxIntervalMs), utils.ErrInvalidPreference)
	}
	return nil
}

// SavePreferences stores both intervals as strings.
func SavePreferences(ctx context.Context, store utils.PreferenceStore, p models.Preferences) error {
	if err := ValidatePreferences(p); err != nil {
		return err
	}
	if store == nil {
		return utils.ErrDatabaseNotInit
	}
	if err := store.Set(ctx, utils.PrefPollInterval, strconv.FormatInt(p.PollIntervalMs, 10)); err != nil {
		return err
	}
	return store.Set(ctx, utils.PrefDashboardInterval, strconv.FormatInt(p.DashboardIntervalMs, 10))
}
