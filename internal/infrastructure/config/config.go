package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the application configuration.
type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Log      LogConfig     `mapstructure:"log"`
	Storage  StorageConfig `mapstructure:"storage"`
	DeepSeek ModelConfig   `mapstructure:"deepseek"`
	Telegram RelayConfig   `mapstructure:"telegram"`
	Agents   AgentsConfig  `mapstructure:"agents"`

	// MemoryEnabled is the default for the conversation-memory toggle;
	// the persisted state overrides it once a snapshot exists.
	MemoryEnabled bool `mapstructure:"memory_enabled"`
}

// ServerConfig configures the console HTTP server.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // local, production
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StorageConfig selects the snapshot backend.
type StorageConfig struct {
	Type string `mapstructure:"type"` // file, sqlite, postgres
	Path string `mapstructure:"path"` // state file path (type=file)
	DSN  string `mapstructure:"dsn"`  // database DSN (type=sqlite/postgres)
}

// ModelConfig holds the model API settings. The json tags match the
// persisted state document and the export file format.
type ModelConfig struct {
	APIKey  string `mapstructure:"api_key" json:"apiKey"`
	BaseURL string `mapstructure:"base_url" json:"baseURL"`
	Model   string `mapstructure:"model" json:"model"`
}

// RelayConfig holds the Telegram relay settings.
type RelayConfig struct {
	BotToken string `mapstructure:"bot_token" json:"botToken"`
	ChatID   string `mapstructure:"chat_id" json:"chatId"`
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`

	// Listen starts the inbound bridge that mirrors replies typed in
	// the Telegram chat back into the current conversation.
	Listen bool `mapstructure:"listen" json:"-"`
}

// AgentsConfig points at an optional YAML preset file seeding the
// registry at first start.
type AgentsConfig struct {
	Presets string `mapstructure:"presets"`
}

// Load reads configuration with priority (low to high):
// defaults -> ~/.hive/config.yaml -> ./config.yaml -> HIVE_* environment.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".hive"))
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read global config: %w", err)
		}
	}

	// Project-local overlay
	if _, err := os.Stat("config.yaml"); err == nil {
		v2 := viper.New()
		v2.SetConfigFile("config.yaml")
		if err := v2.ReadInConfig(); err == nil {
			_ = v.MergeConfigMap(v2.AllSettings())
		}
	}

	v.SetEnvPrefix("HIVE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8790)
	v.SetDefault("server.mode", "local")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("storage.type", "file")
	v.SetDefault("storage.path", filepath.Join(os.Getenv("HOME"), ".hive", "state.json"))
	v.SetDefault("storage.dsn", "hive.db")

	v.SetDefault("deepseek.base_url", DefaultBaseURL)
	v.SetDefault("deepseek.model", DefaultModel)

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.listen", false)

	v.SetDefault("memory_enabled", true)
}

// Default model API settings (DeepSeek-compatible endpoint).
const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"
)
