// Package config loads the dashboard agent configuration.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/parking.report/internal/fsutil"
	"github.com/banshee-data/parking.report/internal/units"
)

// DefaultConfigPath is the path to the canonical dashboard defaults file.
const DefaultConfigPath = "config/dashboard.defaults.json"

// Built-in defaults used when a field is absent from the file.
const (
	DefaultAPIBaseURL        = "http://localhost:5000"
	DefaultListen            = "localhost:8080"
	DefaultUpdateInterval    = 30 * time.Second
	DefaultRequestTimeout    = 10 * time.Second
	DefaultNotificationTTL   = 5 * time.Second
	DefaultSimulatorDebounce = 300 * time.Millisecond
	DefaultHistoryRetention  = 7 * 24 * time.Hour
)

const maxFileSize = 1 * 1024 * 1024 // 1MB

// DashboardConfig is the dashboard agent configuration. Every field is
// optional; the Get* methods fall back to the built-in defaults.
type DashboardConfig struct {
	APIBaseURL *string `json:"api_base_url,omitempty"`
	Listen     *string `json:"listen,omitempty"`

	// Polling
	UpdateInterval        *string `json:"update_interval,omitempty"` // duration string like "30s"
	RequestTimeout        *string `json:"request_timeout,omitempty"` // "0s" disables the timeout
	DiscardStaleResponses *bool   `json:"discard_stale_responses,omitempty"`

	// Page behaviour
	NotificationTTL   *string        `json:"notification_ttl,omitempty"`
	SimulatorDebounce *string        `json:"simulator_debounce,omitempty"`
	Rates             map[string]int `json:"rates,omitempty"` // hourly rate per vehicle type

	// Occupancy history; an empty path disables it
	HistoryDB        *string `json:"history_db,omitempty"`
	HistoryRetention *string `json:"history_retention,omitempty"`
}

func ptrString(v string) *string { return &v }
func ptrBool(v bool) *bool       { return &v }

// EmptyDashboardConfig returns a DashboardConfig with all fields unset.
func EmptyDashboardConfig() *DashboardConfig {
	return &DashboardConfig{}
}

// LoadDashboardConfig loads a DashboardConfig from a JSON file on fsys.
// The file must have a .json extension and be under 1MB. Fields omitted
// from the file keep their defaults, so partial configs are safe.
func LoadDashboardConfig(fsys fsutil.FileSystem, path string) (*DashboardConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := fsys.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := fsys.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyDashboardConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath from the current directory
// or a parent. Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *DashboardConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadDashboardConfig(fsutil.OSFileSystem{}, path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *DashboardConfig) Validate() error {
	if c.APIBaseURL != nil {
		u, err := url.Parse(*c.APIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api_base_url must be an absolute http(s) URL, got %q", *c.APIBaseURL)
		}
	}

	durations := []struct {
		name     string
		value    *string
		positive bool
	}{
		{"update_interval", c.UpdateInterval, true},
		{"request_timeout", c.RequestTimeout, false},
		{"notification_ttl", c.NotificationTTL, true},
		{"simulator_debounce", c.SimulatorDebounce, false},
		{"history_retention", c.HistoryRetention, false},
	}
	for _, d := range durations {
		if d.value == nil || *d.value == "" {
			continue
		}
		v, err := time.ParseDuration(*d.value)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", d.name, *d.value, err)
		}
		if v < 0 || (d.positive && v == 0) {
			return fmt.Errorf("%s must be positive, got %s", d.name, v)
		}
	}

	for t, r := range c.Rates {
		if !units.IsValidVehicleType(t) {
			return fmt.Errorf("unknown vehicle type %q in rates (valid: %s)", t, units.GetValidVehicleTypesString())
		}
		if r < 0 {
			return fmt.Errorf("rate for %s must be non-negative, got %d", t, r)
		}
	}

	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// GetAPIBaseURL returns the backend base URL.
func (c *DashboardConfig) GetAPIBaseURL() string {
	if c.APIBaseURL == nil || *c.APIBaseURL == "" {
		return DefaultAPIBaseURL
	}
	return *c.APIBaseURL
}

// GetListen returns the live view listen address.
func (c *DashboardConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetUpdateInterval returns the poll period.
func (c *DashboardConfig) GetUpdateInterval() time.Duration {
	return durationOr(c.UpdateInterval, DefaultUpdateInterval)
}

// GetRequestTimeout returns the per-request timeout. Zero means none.
func (c *DashboardConfig) GetRequestTimeout() time.Duration {
	return durationOr(c.RequestTimeout, DefaultRequestTimeout)
}

// GetDiscardStaleResponses returns whether out-of-order responses are dropped.
func (c *DashboardConfig) GetDiscardStaleResponses() bool {
	if c.DiscardStaleResponses == nil {
		return true
	}
	return *c.DiscardStaleResponses
}

// GetNotificationTTL returns how long a notification stays visible.
func (c *DashboardConfig) GetNotificationTTL() time.Duration {
	return durationOr(c.NotificationTTL, DefaultNotificationTTL)
}

// GetSimulatorDebounce returns the fee simulator keystroke debounce.
func (c *DashboardConfig) GetSimulatorDebounce() time.Duration {
	return durationOr(c.SimulatorDebounce, DefaultSimulatorDebounce)
}

// GetRates returns the hourly rate per vehicle type, filling unset types
// with the stock tariff.
func (c *DashboardConfig) GetRates() map[string]int {
	out := make(map[string]int, len(units.ValidVehicleTypes))
	for _, t := range units.ValidVehicleTypes {
		out[t] = units.DefaultHourlyRate(t)
	}
	for t, r := range c.Rates {
		out[strings.ToLower(strings.TrimSpace(t))] = r
	}
	return out
}

// GetHistoryDB returns the history database path, or "" when disabled.
func (c *DashboardConfig) GetHistoryDB() string {
	if c.HistoryDB == nil {
		return ""
	}
	return *c.HistoryDB
}

// GetHistoryRetention returns how long samples are kept. Zero keeps all.
func (c *DashboardConfig) GetHistoryRetention() time.Duration {
	return durationOr(c.HistoryRetention, DefaultHistoryRetention)
}

// WithAPIBaseURL sets the backend URL, e.g. from a command-line flag.
func (c *DashboardConfig) WithAPIBaseURL(v string) *DashboardConfig {
	c.APIBaseURL = ptrString(v)
	return c
}

// WithListen sets the listen address.
func (c *DashboardConfig) WithListen(v string) *DashboardConfig {
	c.Listen = ptrString(v)
	return c
}

// WithHistoryDB sets the history database path.
func (c *DashboardConfig) WithHistoryDB(v string) *DashboardConfig {
	c.HistoryDB = ptrString(v)
	return c
}

// WithDiscardStaleResponses toggles the stale-response guard.
func (c *DashboardConfig) WithDiscardStaleResponses(v bool) *DashboardConfig {
	c.DiscardStaleResponses = ptrBool(v)
	return c
}
