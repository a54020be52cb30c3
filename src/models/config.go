package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Backend  MBackendConfig `yaml:"backend"`
	Network  MNetworkConfig `yaml:"network"`
	Sync     MSyncConfig    `yaml:"sync"`
	Metrics  MMetricsConfig `yaml:"metrics"`
	Storage  MStorageConfig `yaml:"storage"`
}

// MBackendConfig selects and addresses the source of truth.
// Kind is one of "http", "postgres", "sqlite".
type MBackendConfig struct {
	Kind    string `yaml:"kind"`
	BaseURL string `yaml:"base_url"`
	WSURL   string `yaml:"ws_url"`
}

type MNetworkConfig struct {
	RequestTimeout int `yaml:"timeout"`
	MaxRetries     int `yaml:"retries"`
}

type MSyncConfig struct {
	Channel        string `yaml:"channel"`
	DebounceMs     int    `yaml:"debounce_ms"`
	EventBufferLen int    `yaml:"event_buffer_len"`
}

type MMetricsConfig struct {
	KitchenHandles      int `yaml:"kitchen_handles"`
	DefaultPrepMinutes  int `yaml:"default_prep_minutes"`
	RushWindowMinutes   int `yaml:"rush_window_minutes"`
	AutoCancelMinutes   int `yaml:"auto_cancel_minutes"`
	SweepIntervalSec    int `yaml:"sweep_interval_sec"`
	RateLimitMax        int `yaml:"rate_limit_max"`
	RateLimitWindowMs   int `yaml:"rate_limit_window_ms"`
}

// MStorageConfig addresses the LAN backends (postgres / sqlite kinds).
type MStorageConfig struct {
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}
