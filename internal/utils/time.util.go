package utils

import (
	"fmt"
	"strings"
	"time"

	"offer-tracker/internal/config"
)

// TimeConfig holds timezone configuration
type TimeConfig struct {
	UseUTC      bool
	DefaultZone *time.Location
}

var timeConfig = &TimeConfig{
	UseUTC:      true,
	DefaultZone: time.UTC,
}

// InitTimeConfig initializes timezone configuration from environment
func InitTimeConfig() {
	envConfig := config.GetEnvConfig()

	if envConfig.DisableUTCEnforcement {
		timeConfig.UseUTC = false
		timeConfig.DefaultZone = time.Local
		LogInfo("UTC enforcement disabled, using local timezone")
	} else {
		timeConfig.UseUTC = true
		timeConfig.DefaultZone = time.UTC
	}

	if envConfig.DefaultTimezone != "" && envConfig.DefaultTimezone != "UTC" {
		if loc, err := time.LoadLocation(envConfig.DefaultTimezone); err == nil {
			timeConfig.DefaultZone = loc
			LogInfo("using custom timezone: %s", envConfig.DefaultTimezone)
		} else {
			LogWarnWithContext("time-config", fmt.Sprintf("invalid timezone '%s', falling back to UTC", envConfig.DefaultTimezone), err)
		}
	}
}

// NowUTC returns the current time in UTC
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatTimestamp formats a time using RFC3339Nano in the default timezone
func FormatTimestamp(t time.Time) string {
	if timeConfig.UseUTC {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t.In(timeConfig.DefaultZone).Format(time.RFC3339Nano)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// ParseTimestamp parses listing API timestamps. Values without a zone are
// read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.In(timeConfig.DefaultZone), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

// ResolveTimezone returns the named location, or the default zone when the
// name is empty or unknown.
func ResolveTimezone(name string) *time.Location {
	name = strings.TrimSpace(name)
	if name == "" {
		return timeConfig.DefaultZone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	LogWarnWithContext("time-config", fmt.Sprintf("unknown timezone '%s'", name), nil)
	return timeConfig.DefaultZone
}

// GetDefaultTimezone returns the configured default timezone
func GetDefaultTimezone() *time.Location {
	return timeConfig.DefaultZone
}

// ValidateTimezone validates if a timezone string is valid
func ValidateTimezone(tz string) error {
	if tz == "" {
		return fmt.Errorf("timezone cannot be empty")
	}
	if tz == "UTC" || tz == "Local" {
		return nil
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return fmt.Errorf("invalid timezone '%s': %w", tz, err)
	}
	return nil
}
