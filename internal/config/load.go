package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

const (
	configFileName = "socchat.json"
	dbFileName     = "socchat.db"
	envPrefix      = "SOCCHAT_"
)

// Load finds and loads configuration from standard locations.
// It merges the global config with the nearest project config (project takes
// precedence), then applies SOCCHAT_* environment overrides and defaults.
func Load() (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(GlobalConfigPath(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading global config: %w", err)
	}

	if projectPath := findProjectConfig(); projectPath != "" {
		projectCfg := NewConfig()
		if err := loadFile(projectPath, projectCfg); err != nil {
			return nil, fmt.Errorf("loading project config: %w", err)
		}
		mergeConfig(cfg, projectCfg)
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific file path without
// consulting the environment.
func LoadFromFile(path string) (*Config, error) {
	cfg := NewConfig()
	if err := loadFile(path, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a configuration built from defaults only.
func Default() *Config {
	cfg := NewConfig()
	applyDefaults(cfg)
	return cfg
}

func loadFile(path string, cfg *Config) error {
	//nolint:gosec // G304: Path is from trusted config locations, not user input.
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		path := filepath.Join(dir, configFileName)
		if _, err := os.Stat(path); err == nil {
			return path
		}

		hiddenPath := filepath.Join(dir, "."+configFileName)
		if _, err := os.Stat(hiddenPath); err == nil {
			return hiddenPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// mergeConfig overlays every field src sets onto dst.
func mergeConfig(dst, src *Config) {
	if src.Server.Addr != "" {
		dst.Server.Addr = src.Server.Addr
	}
	if src.Storage.Driver != "" {
		dst.Storage.Driver = src.Storage.Driver
	}
	if src.Storage.Path != "" {
		dst.Storage.Path = src.Storage.Path
	}
	if src.DefaultProvider != "" {
		dst.DefaultProvider = src.DefaultProvider
	}

	if src.Chat.DefaultModel != "" {
		dst.Chat.DefaultModel = src.Chat.DefaultModel
	}
	if src.Chat.DefaultMaxTokens != 0 {
		dst.Chat.DefaultMaxTokens = src.Chat.DefaultMaxTokens
	}
	if src.Chat.WindowSize != 0 {
		dst.Chat.WindowSize = src.Chat.WindowSize
	}
	if src.Chat.Persona != "" {
		dst.Chat.Persona = src.Chat.Persona
	}
	if src.Chat.Temperature != nil {
		dst.Chat.Temperature = src.Chat.Temperature
	}
	if src.Chat.TopP != nil {
		dst.Chat.TopP = src.Chat.TopP
	}
	if len(src.Chat.Stop) > 0 {
		dst.Chat.Stop = src.Chat.Stop
	}
	if src.Chat.GenerationTimeout != 0 {
		dst.Chat.GenerationTimeout = src.Chat.GenerationTimeout
	}

	for id, p := range src.Providers {
		dst.Providers[id] = p
	}

	if src.Options != nil {
		if dst.Options == nil {
			dst.Options = &Options{}
		}
		if src.Options.DataDir != "" {
			dst.Options.DataDir = src.Options.DataDir
		}
		if src.Options.LogLevel != "" {
			dst.Options.LogLevel = src.Options.LogLevel
		}
		dst.Options.Debug = dst.Options.Debug || src.Options.Debug
	}
}

// applyEnv applies SOCCHAT_* overrides read through lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := lookup(envPrefix + "ADDR"); ok && v != "" {
		cfg.Server.Addr = v
	}
	if v, ok := lookup(envPrefix + "DB_PATH"); ok && v != "" {
		cfg.Storage.Path = v
	}
	if v, ok := lookup(envPrefix + "DEFAULT_MODEL"); ok && v != "" {
		cfg.Chat.DefaultModel = v
	}
	if v, ok := lookup(envPrefix + "LOG_LEVEL"); ok && v != "" {
		if cfg.Options == nil {
			cfg.Options = &Options{}
		}
		cfg.Options.LogLevel = v
	}
	if v, ok := lookup(envPrefix + "GENERATION_TIMEOUT_MS"); ok && v != "" {
		ms, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sGENERATION_TIMEOUT_MS: %w", envPrefix, err)
		}
		cfg.Chat.GenerationTimeout = Duration(time.Duration(ms) * time.Millisecond)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Options == nil {
		cfg.Options = &Options{}
	}
	if cfg.Options.DataDir == "" {
		cfg.Options.DataDir = filepath.Join(xdg.DataHome, appName)
	}
	if cfg.Options.LogLevel == "" {
		cfg.Options.LogLevel = DefaultLogLevel
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageSQLite
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = filepath.Join(cfg.Options.DataDir, dbFileName)
	}

	chat := &cfg.Chat
	if chat.DefaultModel == "" {
		chat.DefaultModel = DefaultModel
	}
	if chat.DefaultMaxTokens == 0 {
		chat.DefaultMaxTokens = DefaultMaxTokens
	}
	if chat.WindowSize == 0 {
		chat.WindowSize = DefaultWindowSize
	}
	if chat.Temperature == nil {
		t := DefaultTemperature
		chat.Temperature = &t
	}
	if chat.TopP == nil {
		p := DefaultTopP
		chat.TopP = &p
	}
	if len(chat.Stop) == 0 {
		chat.Stop = append([]string(nil), DefaultStop...)
	}
	if chat.GenerationTimeout == 0 {
		chat.GenerationTimeout = Duration(DefaultGenerationTimeout)
	}

	if cfg.Providers == nil {
		cfg.Providers = make(map[string]*ProviderConfig)
	}
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = DefaultProviderID
	}
	if _, ok := cfg.Providers[cfg.DefaultProvider]; !ok {
		if t, ok := GetTemplate(cfg.DefaultProvider); ok {
			cfg.Providers[cfg.DefaultProvider] = t.ProviderConfig()
		}
	}
	configureProviders(cfg)
}

// configureProviders fills provider IDs and template defaults.
func configureProviders(cfg *Config) {
	for id, p := range cfg.Providers {
		if p == nil {
			delete(cfg.Providers, id)
			continue
		}
		if p.ID == "" {
			p.ID = id
		}
		if t, ok := GetTemplate(id); ok {
			p.fillFromTemplate(t)
		}
		if p.Name == "" {
			p.Name = id
		}
	}
}

// GlobalConfigPath returns the path to the global configuration file.
func GlobalConfigPath() string {
	return filepath.Join(xdg.ConfigHome, appName, configFileName)
}

// DataDir returns the data directory path from configuration.
func (c *Config) DataDir() string {
	if c.Options != nil && c.Options.DataDir != "" {
		return c.Options.DataDir
	}
	return filepath.Join(xdg.DataHome, appName)
}

// Resolve resolves environment variables in a configuration value.
func (c *Config) Resolve(value string) (string, error) {
	return NewResolver().Resolve(value)
}

// LogLevel returns the configured log level name, lower-cased.
func (c *Config) LogLevel() string {
	if c.Options == nil || c.Options.LogLevel == "" {
		return DefaultLogLevel
	}
	return strings.ToLower(c.Options.LogLevel)
}
