package core

import (
	"context"
	"testing"
)

func envLookup(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}

func TestEnvConfigLoader_MapsDeploymentVariables(t *testing.T) {
	loader := &EnvConfigLoader{Lookup: envLookup(map[string]string{
		"ASANA_ACCESS_TOKEN":       "secret-token",
		"ASANA_PROJECT_GID":        "1200001",
		"ASANA_TARGET_SECTION_GID": "1200002",
		"INTERCOM_EXCLUDED_EMAILS": "Help@example.com, support@example.com ,",
		"PORT":                     "9090",
		"DEBUG":                    "true",
		"RELAY_DB_DRIVER":          "SQLITE3",
		"RELAY_DB_DSN":             "file:relay.db",
	})}

	raw, err := loader.LoadRaw(context.Background())
	if err != nil {
		t.Fatalf("load raw config: %v", err)
	}

	directory, ok := raw["directory"].(map[string]any)
	if !ok {
		t.Fatalf("expected directory section, got %#v", raw["directory"])
	}
	if directory["access_token"] != "secret-token" {
		t.Fatalf("expected access token, got %#v", directory["access_token"])
	}
	if directory["project_gid"] != "1200001" {
		t.Fatalf("expected project gid, got %#v", directory["project_gid"])
	}
	if raw["port"] != 9090 {
		t.Fatalf("expected parsed port, got %#v", raw["port"])
	}
	if raw["debug"] != true {
		t.Fatalf("expected parsed debug flag, got %#v", raw["debug"])
	}

	exclusions, ok := raw["exclusions"].(map[string]any)
	if !ok {
		t.Fatalf("expected exclusions section")
	}
	emails, ok := exclusions["emails"].([]string)
	if !ok || len(emails) != 2 {
		t.Fatalf("expected two trimmed exclusion emails, got %#v", exclusions["emails"])
	}
	if emails[0] != "Help@example.com" {
		t.Fatalf("expected email preserved verbatim, got %q", emails[0])
	}

	database, ok := raw["database"].(map[string]any)
	if !ok {
		t.Fatalf("expected database section")
	}
	if database["driver"] != "sqlite3" {
		t.Fatalf("expected lowered driver, got %#v", database["driver"])
	}
}

func TestEnvConfigLoader_RejectsMalformedPort(t *testing.T) {
	loader := &EnvConfigLoader{Lookup: envLookup(map[string]string{
		"PORT": "eighty",
	})}
	if _, err := loader.LoadRaw(context.Background()); err == nil {
		t.Fatalf("expected port parse error")
	}
}

func TestGoOptionsResolver_RuntimeWinsOverLoaded(t *testing.T) {
	defaults := DefaultConfig()
	loaded := Config{
		ServiceName: "from-env",
		Port:        9000,
		Directory:   DirectoryConfig{AccessToken: "env-token"},
	}
	runtime := Config{Port: 9999}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, runtime)
	if err != nil {
		t.Fatalf("resolve layered config: %v", err)
	}
	if resolved.Port != 9999 {
		t.Fatalf("expected runtime port to win, got %d", resolved.Port)
	}
	if resolved.ServiceName != "from-env" {
		t.Fatalf("expected loaded service name, got %q", resolved.ServiceName)
	}
	if resolved.Directory.AccessToken != "env-token" {
		t.Fatalf("expected loaded access token, got %q", resolved.Directory.AccessToken)
	}
	if resolved.Directory.BaseURL != defaults.Directory.BaseURL {
		t.Fatalf("expected default base url to survive, got %q", resolved.Directory.BaseURL)
	}
}

func TestConfigResolution_LoadThenResolve(t *testing.T) {
	defaults := DefaultConfig()
	provider := NewCfgxConfigProvider(&EnvConfigLoader{Lookup: envLookup(map[string]string{
		"ASANA_ACCESS_TOKEN": "secret-token",
		"ASANA_PROJECT_GID":  "1200001",
		"PORT":               "9090",
	})})

	loaded, err := provider.Load(context.Background(), defaults)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	resolved, err := GoOptionsResolver{}.Resolve(defaults, loaded, Config{})
	if err != nil {
		t.Fatalf("resolve config: %v", err)
	}
	if resolved.Port != 9090 {
		t.Fatalf("expected env port to survive resolution, got %d", resolved.Port)
	}
	if resolved.Directory.AccessToken != "secret-token" {
		t.Fatalf("expected env token to survive resolution, got %q", resolved.Directory.AccessToken)
	}
	if resolved.Directory.BaseURL != defaults.Directory.BaseURL {
		t.Fatalf("expected default base url, got %q", resolved.Directory.BaseURL)
	}
	if resolved.ServiceName != defaults.ServiceName {
		t.Fatalf("expected default service name, got %q", resolved.ServiceName)
	}

	resolved, err = GoOptionsResolver{}.Resolve(defaults, loaded, Config{Port: 9999})
	if err != nil {
		t.Fatalf("resolve config with runtime override: %v", err)
	}
	if resolved.Port != 9999 {
		t.Fatalf("expected runtime port to win, got %d", resolved.Port)
	}
}

func TestCfgxConfigProvider_AppliesDefaultsAndValidation(t *testing.T) {
	provider := NewCfgxConfigProvider(staticRawConfigLoader{Values: map[string]any{
		"port": 65536,
	}})
	if _, err := provider.Load(context.Background(), DefaultConfig()); err == nil {
		t.Fatalf("expected out-of-range port to fail validation")
	}

	provider = NewCfgxConfigProvider(nil)
	cfg, err := provider.Load(context.Background(), DefaultConfig())
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}
	if cfg.ServiceName != "conversation-relay" {
		t.Fatalf("expected default service name, got %q", cfg.ServiceName)
	}
}
