package config

import "os"

// Environment variables read once at process start. Secrets supplied
// this way always take precedence over stored values and are never
// written back to persistent storage.
const (
	EnvAPIKey   = "HIVE_DEEPSEEK_API_KEY"
	EnvBaseURL  = "HIVE_DEEPSEEK_BASE_URL"
	EnvModel    = "HIVE_DEEPSEEK_MODEL"
	EnvBotToken = "HIVE_TELEGRAM_BOT_TOKEN"
	EnvChatID   = "HIVE_TELEGRAM_CHAT_ID"
)

// EnvSecrets captures the environment-sourced configuration.
type EnvSecrets struct {
	APIKey   string
	BaseURL  string
	Model    string
	BotToken string
	ChatID   string
}

// ReadEnvSecrets reads the HIVE_* variables from the process
// environment.
func ReadEnvSecrets() EnvSecrets {
	return EnvSecrets{
		APIKey:   os.Getenv(EnvAPIKey),
		BaseURL:  os.Getenv(EnvBaseURL),
		Model:    os.Getenv(EnvModel),
		BotToken: os.Getenv(EnvBotToken),
		ChatID:   os.Getenv(EnvChatID),
	}
}

// HasModelKey reports whether the environment supplies the model API key.
func (e EnvSecrets) HasModelKey() bool {
	return e.APIKey != ""
}

// HasRelay reports whether the environment supplies both relay
// credentials; when it does, the relay is force-enabled.
func (e EnvSecrets) HasRelay() bool {
	return e.BotToken != "" && e.ChatID != ""
}

// ResolveSecret applies the environment-over-stored precedence rule in
// one place. It returns the value to use at runtime and the value that
// may be written to persistent storage: an environment-sourced secret
// is never persisted, so persistable is empty whenever env is set.
func ResolveSecret(envValue, storedValue string) (effective, persistable string) {
	if envValue != "" {
		return envValue, ""
	}
	return storedValue, storedValue
}

// EffectiveModel merges stored model settings with environment
// overrides, environment last (highest priority).
func EffectiveModel(env EnvSecrets, stored ModelConfig) ModelConfig {
	out := stored
	out.APIKey, _ = ResolveSecret(env.APIKey, stored.APIKey)
	if env.BaseURL != "" {
		out.BaseURL = env.BaseURL
	}
	if env.Model != "" {
		out.Model = env.Model
	}
	if out.BaseURL == "" {
		out.BaseURL = DefaultBaseURL
	}
	if out.Model == "" {
		out.Model = DefaultModel
	}
	return out
}

// PersistableModel returns the model settings safe to write to storage:
// the api key is blanked when it originated from the environment.
func PersistableModel(env EnvSecrets, stored ModelConfig) ModelConfig {
	out := stored
	_, out.APIKey = ResolveSecret(env.APIKey, stored.APIKey)
	return out
}

// EffectiveRelay merges stored relay settings with environment
// overrides and derives the enabled flag: the relay is on when the
// environment supplies both credentials, or when the stored flag is set.
func EffectiveRelay(env EnvSecrets, stored RelayConfig) RelayConfig {
	out := stored
	out.BotToken, _ = ResolveSecret(env.BotToken, stored.BotToken)
	out.ChatID, _ = ResolveSecret(env.ChatID, stored.ChatID)
	out.Enabled = env.HasRelay() || stored.Enabled
	return out
}

// PersistableRelay returns the relay settings safe to write to storage.
func PersistableRelay(env EnvSecrets, stored RelayConfig) RelayConfig {
	out := stored
	_, out.BotToken = ResolveSecret(env.BotToken, stored.BotToken)
	_, out.ChatID = ResolveSecret(env.ChatID, stored.ChatID)
	return out
}
