package core

import (
	"fmt"
	"strings"
)

type DirectoryConfig struct {
	BaseURL          string `koanf:"base_url" mapstructure:"base_url"`
	AccessToken      string `koanf:"access_token" mapstructure:"access_token"`
	ProjectGID       string `koanf:"project_gid" mapstructure:"project_gid"`
	TargetSectionGID string `koanf:"target_section_gid" mapstructure:"target_section_gid"`
}

type ExclusionsConfig struct {
	Emails []string `koanf:"emails" mapstructure:"emails"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" mapstructure:"driver"`
	DSN    string `koanf:"dsn" mapstructure:"dsn"`
}

// Enabled reports whether the optional delivery ledger should be wired.
func (c DatabaseConfig) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

type Config struct {
	ServiceName string           `koanf:"service_name" mapstructure:"service_name"`
	Port        int              `koanf:"port" mapstructure:"port"`
	Debug       bool             `koanf:"debug" mapstructure:"debug"`
	Directory   DirectoryConfig  `koanf:"directory" mapstructure:"directory"`
	Exclusions  ExclusionsConfig `koanf:"exclusions" mapstructure:"exclusions"`
	Database    DatabaseConfig   `koanf:"database" mapstructure:"database"`
}

func DefaultConfig() Config {
	return Config{
		ServiceName: "conversation-relay",
		Port:        8080,
		Directory: DirectoryConfig{
			BaseURL: "https://app.asana.com/api/1.0",
		},
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return fmt.Errorf("core: service_name is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("core: port %d is out of range", c.Port)
	}
	switch strings.TrimSpace(strings.ToLower(c.Database.Driver)) {
	case "", "sqlite3", "postgres":
	default:
		return fmt.Errorf("core: unsupported database driver %q", c.Database.Driver)
	}
	return nil
}
