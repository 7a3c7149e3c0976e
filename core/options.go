package core

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-config/cfgx"
	opts "github.com/goliatone/go-options"
)

type ConfigProvider interface {
	Load(ctx context.Context, defaults Config) (Config, error)
}

type RawConfigLoader interface {
	LoadRaw(ctx context.Context) (map[string]any, error)
}

type OptionsResolver interface {
	Resolve(defaults Config, loaded Config, runtime Config) (Config, error)
}

type staticRawConfigLoader struct {
	Values map[string]any
}

func (l staticRawConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	if len(l.Values) == 0 {
		return map[string]any{}, nil
	}
	out := make(map[string]any, len(l.Values))
	for key, value := range l.Values {
		out[key] = value
	}
	return out, nil
}

// EnvConfigLoader maps the process environment onto the raw configuration
// tree. The variable names match the original deployment contract.
type EnvConfigLoader struct {
	Lookup func(key string) (string, bool)
}

func NewEnvConfigLoader() *EnvConfigLoader {
	return &EnvConfigLoader{Lookup: os.LookupEnv}
}

func (l *EnvConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	lookup := os.LookupEnv
	if l != nil && l.Lookup != nil {
		lookup = l.Lookup
	}

	raw := map[string]any{}
	directory := map[string]any{}
	if value, ok := lookup("ASANA_BASE_URL"); ok && strings.TrimSpace(value) != "" {
		directory["base_url"] = strings.TrimSpace(value)
	}
	if value, ok := lookup("ASANA_ACCESS_TOKEN"); ok {
		directory["access_token"] = strings.TrimSpace(value)
	}
	if value, ok := lookup("ASANA_PROJECT_GID"); ok {
		directory["project_gid"] = strings.TrimSpace(value)
	}
	if value, ok := lookup("ASANA_TARGET_SECTION_GID"); ok {
		directory["target_section_gid"] = strings.TrimSpace(value)
	}
	if len(directory) > 0 {
		raw["directory"] = directory
	}

	if value, ok := lookup("INTERCOM_EXCLUDED_EMAILS"); ok {
		raw["exclusions"] = map[string]any{
			"emails": splitEmailList(value),
		}
	}

	database := map[string]any{}
	if value, ok := lookup("RELAY_DB_DRIVER"); ok && strings.TrimSpace(value) != "" {
		database["driver"] = strings.TrimSpace(strings.ToLower(value))
	}
	if value, ok := lookup("RELAY_DB_DSN"); ok && strings.TrimSpace(value) != "" {
		database["dsn"] = strings.TrimSpace(value)
	}
	if len(database) > 0 {
		raw["database"] = database
	}

	if value, ok := lookup("PORT"); ok && strings.TrimSpace(value) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("core: parse PORT: %w", err)
		}
		raw["port"] = port
	}
	if value, ok := lookup("DEBUG"); ok && strings.TrimSpace(value) != "" {
		debug, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("core: parse DEBUG: %w", err)
		}
		raw["debug"] = debug
	}
	return raw, nil
}

func splitEmailList(value string) []string {
	parts := strings.Split(value, ",")
	emails := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		emails = append(emails, trimmed)
	}
	return emails
}

type CfgxConfigProvider struct {
	Loader RawConfigLoader
}

func NewCfgxConfigProvider(loader RawConfigLoader) *CfgxConfigProvider {
	return &CfgxConfigProvider{Loader: loader}
}

func (p *CfgxConfigProvider) Load(ctx context.Context, defaults Config) (Config, error) {
	if p == nil {
		return defaults, nil
	}
	loader := p.Loader
	if loader == nil {
		loader = staticRawConfigLoader{}
	}
	raw, err := loader.LoadRaw(ctx)
	if err != nil {
		return Config{}, err
	}
	cfg, err := cfgx.Build[Config](raw,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type GoOptionsResolver struct{}

func (GoOptionsResolver) Resolve(defaults Config, loaded Config, runtime Config) (Config, error) {
	defaultLayer := configToLayerMap(defaults, true)
	loadedLayer := configToLayerMap(loaded, false)
	runtimeLayer := configToLayerMap(runtime, false)

	stack, err := opts.NewStack(
		opts.NewLayer(
			opts.NewScope("defaults", 0),
			defaultLayer,
			opts.WithSnapshotID[map[string]any]("defaults"),
		),
		opts.NewLayer(
			opts.NewScope("config", 10),
			loadedLayer,
			opts.WithSnapshotID[map[string]any]("config"),
		),
		opts.NewLayer(
			opts.NewScope("runtime", 20),
			runtimeLayer,
			opts.WithSnapshotID[map[string]any]("runtime"),
		),
	)
	if err != nil {
		return Config{}, fmt.Errorf("core: options stack build failed: %w", err)
	}
	merged, err := stack.Merge()
	if err != nil {
		return Config{}, fmt.Errorf("core: options merge failed: %w", err)
	}
	resolved, err := cfgx.Build[Config](merged.Value,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
	if err != nil {
		return Config{}, err
	}
	if err := resolved.Validate(); err != nil {
		return Config{}, err
	}
	return resolved, nil
}

func configToLayerMap(cfg Config, includeZero bool) map[string]any {
	layer := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.ServiceName) != "" {
		layer["service_name"] = cfg.ServiceName
	}
	if includeZero || cfg.Port != 0 {
		layer["port"] = cfg.Port
	}
	if includeZero || cfg.Debug {
		layer["debug"] = cfg.Debug
	}

	directory := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Directory.BaseURL) != "" {
		directory["base_url"] = cfg.Directory.BaseURL
	}
	if includeZero || strings.TrimSpace(cfg.Directory.AccessToken) != "" {
		directory["access_token"] = cfg.Directory.AccessToken
	}
	if includeZero || strings.TrimSpace(cfg.Directory.ProjectGID) != "" {
		directory["project_gid"] = cfg.Directory.ProjectGID
	}
	if includeZero || strings.TrimSpace(cfg.Directory.TargetSectionGID) != "" {
		directory["target_section_gid"] = cfg.Directory.TargetSectionGID
	}
	if len(directory) > 0 {
		layer["directory"] = directory
	}

	if includeZero || len(cfg.Exclusions.Emails) > 0 {
		layer["exclusions"] = map[string]any{
			"emails": append([]string(nil), cfg.Exclusions.Emails...),
		}
	}

	database := map[string]any{}
	if includeZero || strings.TrimSpace(cfg.Database.Driver) != "" {
		database["driver"] = cfg.Database.Driver
	}
	if includeZero || strings.TrimSpace(cfg.Database.DSN) != "" {
		database["dsn"] = cfg.Database.DSN
	}
	if len(database) > 0 {
		layer["database"] = database
	}
	return layer
}
