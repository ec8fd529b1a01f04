package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// AdminConfig holds configuration for the admin endpoints.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// QuotaConfig controls quota accounting and its currency display form.
type QuotaConfig struct {
	// PerUnit is the number of quota units equal to one currency unit.
	PerUnit int `yaml:"per_unit"`
	// DisplayDecimals is the precision used when rendering quota as currency.
	DisplayDecimals int `yaml:"display_decimals"`
}

// GroupConfig describes one selectable access group.
type GroupConfig struct {
	Desc  string  `yaml:"desc" json:"desc"`
	Ratio float64 `yaml:"ratio" json:"ratio"`
}

// Config holds the configuration for the token service.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Admin    AdminConfig    `yaml:"admin"`
	Quota    QuotaConfig    `yaml:"quota"`
	// Models is the list of model identifiers tokens may be scoped to.
	Models []string `yaml:"models"`
	// Groups maps group keys to their description and pricing ratio.
	Groups map[string]GroupConfig `yaml:"groups"`
	// DefaultUseAutoGroup makes new tokens default to the "auto" group.
	DefaultUseAutoGroup bool `yaml:"default_use_auto_group"`
	Port                int  `yaml:"port"`
	Debug               bool `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file. It returns the config and a potential warning message.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warning string

	data, err := os.ReadFile(path)
	if err == nil {
		// File exists, so unmarshal it
		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		// An error other than "not found" occurred
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}
	// If file does not exist, we continue with an empty config and rely on environment variables.

	// Set default values
	if config.Quota.PerUnit == 0 {
		config.Quota.PerUnit = 500000
		warning = "quota.per_unit not set, using default value of 500000"
	}
	if config.Quota.DisplayDecimals == 0 {
		config.Quota.DisplayDecimals = 2
	}
	if config.Port == 0 {
		config.Port = 3000
	}

	// Override with environment variables if they exist
	if dsn := os.Getenv("TOKENHUB_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("TOKENHUB_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if port := os.Getenv("TOKENHUB_PORT"); port != "" {
		if p, err := fmt.Sscanf(port, "%d", &config.Port); err == nil && p == 1 {
			// Value was updated
		}
	}
	if password := os.Getenv("TOKENHUB_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if debug := os.Getenv("TOKENHUB_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Final validation after overrides
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must be configured in config.yaml or via environment variables")
	}

	return &config, warning, nil
}
