package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced but does not block.
	SeverityWarning IssueSeverity = "warning"
)

// Issue is a single finding. Path is the dotted config key.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// KnownStorageKinds lists the storage backends compiled into the binary.
// The cli package fills it from the storage registry.
var KnownStorageKinds = []string{"sqlite", "postgres", "mysql", "mssql"}

// Validate lints cfg without mutating it.
func Validate(cfg *Config) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil || cfg.LogLevel == "" {
		add(SeverityWarning, "log_level", "unknown level %q; info is used", cfg.LogLevel)
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		add(SeverityError, "data_dir", "must not be empty")
	}
	if strings.TrimSpace(cfg.Job) == "" {
		add(SeverityWarning, "job", "empty job name; metrics will be unlabeled")
	}

	for name, ds := range map[string]Dataset{
		"licenses":    cfg.Datasets.Licenses,
		"inspections": cfg.Datasets.Inspections,
	} {
		path := "datasets." + name
		if strings.TrimSpace(ds.File) == "" {
			add(SeverityError, path+".file", "must not be empty")
		}
		if ds.URL == "" {
			add(SeverityWarning, path+".url", "no url; pull will skip this dataset")
		} else if u, err := url.Parse(ds.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			add(SeverityError, path+".url", "not an http(s) url: %q", ds.URL)
		}
	}

	known := false
	for _, k := range KnownStorageKinds {
		if cfg.Storage.Kind == k {
			known = true
			break
		}
	}
	if !known {
		add(SeverityError, "storage.kind", "unknown kind %q (known: %s)", cfg.Storage.Kind, strings.Join(KnownStorageKinds, ", "))
	}
	if strings.TrimSpace(cfg.Storage.DSN) == "" {
		add(SeverityError, "storage.dsn", "must not be empty")
	}

	if cfg.Filters.TargetState == "" {
		add(SeverityWarning, "filters.target_state", "empty; every license row will be dropped")
	}
	if cfg.Filters.TargetCity == "" {
		add(SeverityWarning, "filters.target_city", "empty; every inspection row will be dropped")
	}

	if cfg.HTTP.MaxRetries < 0 {
		add(SeverityError, "http.max_retries", "must be >= 0")
	}
	if cfg.HTTP.MaxBackoff > 0 && cfg.HTTP.InitialBackoff > cfg.HTTP.MaxBackoff {
		add(SeverityWarning, "http.initial_backoff", "greater than max_backoff")
	}

	switch cfg.Metrics.Backend {
	case "", "none":
	case "pushgateway":
		if cfg.Metrics.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "required for the pushgateway backend")
		}
	case "datadog":
		if cfg.Metrics.DatadogAddr == "" {
			add(SeverityWarning, "metrics.datadog_addr", "empty; 127.0.0.1:8125 is used")
		}
	default:
		add(SeverityError, "metrics.backend", "unknown backend %q", cfg.Metrics.Backend)
	}
	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}
