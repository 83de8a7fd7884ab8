// Package config loads runtime configuration and resolves logical table
// names to their physical identifiers (export file paths and workbook sheet
// names).
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tmori/recruitsum/internal/db"
)

// ErrTableNotBound is returned when a logical table name has no binding.
var ErrTableNotBound = errors.New("logical table not bound")

// EventFields names the export columns holding the composite-key fields of
// a process event.
type EventFields struct {
	Identity  string
	Category  string
	EventDate string
	GroupCode string
	GroupName string
}

// ServeConfig controls the periodic serve mode.
type ServeConfig struct {
	Addr     string
	Interval time.Duration
}

// Config is the full runtime configuration.
type Config struct {
	Workbook  string
	SourceDir string
	Tables    map[string]string

	Categories      []string
	Routes          []string
	OverallSection  string
	TotalLabel      string
	ExcludedMarkers []string
	CategoryField   string
	RouteField      string
	Event           EventFields

	DatabaseEnabled bool
	Database        db.Config

	SlackWebhookURL string
	Serve           ServeConfig
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workbook:  "reports.xlsx",
		SourceDir: "exports",
		Tables: map[string]string{
			"users_export":        "users.csv",
			"users_report":        "UserPhases",
			"entryprocess_export": "entry_events.csv",
			"entryprocess_ledger": "EntryEvents",
		},
		Categories: []string{
			"Applied", "Screening", "1st Interview", "2nd Interview",
			"Final Interview", "Offer", "Hired", "Declined", "Rejected",
		},
		Routes:          []string{"Referral", "Agency", "Direct", "Scout"},
		OverallSection:  "Overall",
		TotalLabel:      "Total",
		ExcludedMarkers: []string{"diff", "delta", "subtotal", "前日比", "小計"},
		CategoryField:   "Phase",
		RouteField:      "Route",
		Event: EventFields{
			Identity:  "Candidate ID",
			Category:  "Phase",
			EventDate: "Event Date",
			GroupCode: "Group Code",
			GroupName: "Group Name",
		},
		Database: db.DefaultConfig(),
		Serve: ServeConfig{
			Addr:     ":9310",
			Interval: time.Hour,
		},
	}
}

// Load reads config.yaml from configPath (falling back to defaults when the
// file is absent) with environment overrides under the RECRUITSUM prefix.
func Load(configPath string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)
	v.AutomaticEnv()
	v.SetEnvPrefix("RECRUITSUM")

	v.BindEnv("workbook")
	v.BindEnv("source_dir")
	v.BindEnv("slack.webhook_url")
	v.BindEnv("database.host")
	v.BindEnv("database.port")
	v.BindEnv("database.user")
	v.BindEnv("database.password")
	v.BindEnv("database.dbname")
	v.BindEnv("database.sslmode")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if v.IsSet("workbook") {
		cfg.Workbook = v.GetString("workbook")
	}
	if v.IsSet("source_dir") {
		cfg.SourceDir = v.GetString("source_dir")
	}
	if v.IsSet("tables") {
		for logical, physical := range v.GetStringMapString("tables") {
			cfg.Tables[logical] = physical
		}
	}
	if v.IsSet("vocabulary.categories") {
		cfg.Categories = v.GetStringSlice("vocabulary.categories")
	}
	if v.IsSet("vocabulary.routes") {
		cfg.Routes = v.GetStringSlice("vocabulary.routes")
	}
	if v.IsSet("vocabulary.overall_section") {
		cfg.OverallSection = v.GetString("vocabulary.overall_section")
	}
	if v.IsSet("vocabulary.total_label") {
		cfg.TotalLabel = v.GetString("vocabulary.total_label")
	}
	if v.IsSet("vocabulary.excluded_markers") {
		cfg.ExcludedMarkers = v.GetStringSlice("vocabulary.excluded_markers")
	}
	if v.IsSet("fields.category") {
		cfg.CategoryField = v.GetString("fields.category")
	}
	if v.IsSet("fields.route") {
		cfg.RouteField = v.GetString("fields.route")
	}
	if v.IsSet("fields.event.identity") {
		cfg.Event.Identity = v.GetString("fields.event.identity")
	}
	if v.IsSet("fields.event.category") {
		cfg.Event.Category = v.GetString("fields.event.category")
	}
	if v.IsSet("fields.event.event_date") {
		cfg.Event.EventDate = v.GetString("fields.event.event_date")
	}
	if v.IsSet("fields.event.group_code") {
		cfg.Event.GroupCode = v.GetString("fields.event.group_code")
	}
	if v.IsSet("fields.event.group_name") {
		cfg.Event.GroupName = v.GetString("fields.event.group_name")
	}
	if v.IsSet("database.enabled") {
		cfg.DatabaseEnabled = v.GetBool("database.enabled")
	}
	if v.IsSet("database.host") {
		cfg.Database.Host = v.GetString("database.host")
	}
	if v.IsSet("database.port") {
		cfg.Database.Port = v.GetInt("database.port")
	}
	if v.IsSet("database.user") {
		cfg.Database.User = v.GetString("database.user")
	}
	if v.IsSet("database.password") {
		cfg.Database.Password = v.GetString("database.password")
	}
	if v.IsSet("database.dbname") {
		cfg.Database.DBName = v.GetString("database.dbname")
	}
	if v.IsSet("database.sslmode") {
		cfg.Database.SSLMode = v.GetString("database.sslmode")
	}
	if v.IsSet("slack.webhook_url") {
		cfg.SlackWebhookURL = v.GetString("slack.webhook_url")
	}
	if v.IsSet("serve.addr") {
		cfg.Serve.Addr = v.GetString("serve.addr")
	}
	if v.IsSet("serve.interval") {
		cfg.Serve.Interval = v.GetDuration("serve.interval")
	}

	return cfg, nil
}

// Resolve maps a logical table name to its physical identifier.
func (c Config) Resolve(logical string) (string, error) {
	physical, ok := c.Tables[logical]
	if !ok || physical == "" {
		return "", fmt.Errorf("%w: %s", ErrTableNotBound, logical)
	}
	return physical, nil
}
