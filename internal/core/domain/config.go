package domain

import "time"

// Config is the resolved configuration of a store.
type Config struct {
	Store       StoreConfig  `yaml:"store"`
	API         APIConfig    `yaml:"api"`
	Versions    []string     `yaml:"versions"`
	Strategy    string       `yaml:"strategy"`
	Bootstrap   bool         `yaml:"bootstrap"`
	Concurrency int          `yaml:"concurrency"`
	Filters     FilterConfig `yaml:"filters"`
	Log         LogConfig    `yaml:"log"`
}

// StoreConfig selects the storage backend.
type StoreConfig struct {
	// Backend is one of "fs", "memory" or "http".
	Backend string `yaml:"backend"`
	// Path is the store root for the fs backend.
	Path string `yaml:"path"`
	// Remote is the base URL for the http backend.
	Remote string `yaml:"remote"`
}

// APIConfig configures the remote API client.
type APIConfig struct {
	BaseURL  string        `yaml:"baseURL"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheDir string        `yaml:"cacheDir"`
}

// FilterConfig holds include and exclude glob patterns.
type FilterConfig struct {
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultAPIBaseURL is the public UCD API.
const DefaultAPIBaseURL = "https://api.ucdjs.dev"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: "fs",
			Path:    ".",
		},
		API: APIConfig{
			BaseURL: DefaultAPIBaseURL,
			Timeout: 30 * time.Second,
		},
		Strategy:    string(StrategyStrict),
		Bootstrap:   true,
		Concurrency: DefaultConcurrency,
		Log: LogConfig{
			Level: "info",
		},
	}
}
