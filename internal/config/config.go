// Package config holds the chidata configuration model and its loader.
//
// Values come from, in increasing precedence: built-in defaults, a config
// file (YAML/JSON/TOML, ./chidata.yaml when present), CHIDATA_* environment
// variables (a .env file is loaded first), and command-line flags.
package config

import (
	"time"
)

// Config is the full runtime configuration.
type Config struct {
	LogLevel  string      `mapstructure:"log_level"`
	LogPretty bool        `mapstructure:"log_pretty"`
	DataDir   string      `mapstructure:"data_dir"`
	Job       string      `mapstructure:"job"`
	Datasets  Datasets    `mapstructure:"datasets"`
	Storage   Storage     `mapstructure:"storage"`
	Load      LoadOptions `mapstructure:"load"`
	Filters   Filters     `mapstructure:"filters"`
	HTTP      HTTP        `mapstructure:"http"`
	Metrics   Metrics     `mapstructure:"metrics"`
}

// Datasets locates the two source exports.
type Datasets struct {
	Licenses    Dataset `mapstructure:"licenses"`
	Inspections Dataset `mapstructure:"inspections"`
}

// Dataset is one remote export and its cache file name under DataDir.
type Dataset struct {
	URL  string `mapstructure:"url"`
	File string `mapstructure:"file"`
}

// Storage selects the target database.
type Storage struct {
	Kind string `mapstructure:"kind"`
	DSN  string `mapstructure:"dsn"`
}

// LoadOptions toggles optional parts of a load run.
type LoadOptions struct {
	Applications bool `mapstructure:"applications"`
	Vacuum       bool `mapstructure:"vacuum"`
}

// Filters are the row-exclusion lists applied while preparing sources.
type Filters struct {
	TargetState              string   `mapstructure:"target_state"`
	ExcludedLicenseCities    []string `mapstructure:"excluded_license_cities"`
	TargetCity               string   `mapstructure:"target_city"`
	CityMisspellings         []string `mapstructure:"city_misspellings"`
	ExcludedFacilityKeywords []string `mapstructure:"excluded_facility_keywords"`
}

// HTTP tunes dataset downloads.
type HTTP struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// Metrics selects where step metrics go.
type Metrics struct {
	Backend        string `mapstructure:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr"`
}

// Default returns the built-in configuration. Its filter lists reproduce the
// reference database for the public exports.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogPretty: true,
		DataDir:   "data",
		Job:       "chidata",
		Datasets: Datasets{
			Licenses: Dataset{
				URL:  "https://data.cityofchicago.org/api/views/r5kz-chrr/rows.csv",
				File: "business_licenses.csv",
			},
			Inspections: Dataset{
				URL:  "https://data.cityofchicago.org/api/views/qizy-d2wf/rows.csv",
				File: "food_inspections.csv",
			},
		},
		Storage: Storage{Kind: "sqlite", DSN: "chi.db"},
		Load:    LoadOptions{Applications: true, Vacuum: true},
		Filters: Filters{
			TargetState:           "IL",
			ExcludedLicenseCities: []string{"SCHILLER PARK"},
			TargetCity:            "Chicago",
			CityMisspellings: []string{
				"Cchicago", "Chicago.", "Chicagochicago", "312chicago", "Chicagoc", "Chicagoo",
			},
			ExcludedFacilityKeywords: []string{"school"},
		},
		HTTP: HTTP{
			Timeout:        10 * time.Minute,
			MaxRetries:     3,
			InitialBackoff: time.Second,
			MaxBackoff:     30 * time.Second,
		},
		Metrics: Metrics{Backend: "none"},
	}
}
