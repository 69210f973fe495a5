package application

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/internal/infrastructure/persistence"
	"github.com/colmeia/hive/pkg/errors"
)

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

type stubStore struct {
	data []byte
}

func (s *stubStore) Load() ([]byte, error) {
	if s.data == nil {
		return nil, persistence.ErrNoSnapshot
	}
	return s.data, nil
}

func (s *stubStore) Save(data []byte) error {
	s.data = data
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		MemoryEnabled: true,
		DeepSeek: config.ModelConfig{
			BaseURL: config.DefaultBaseURL,
			Model:   config.DefaultModel,
		},
	}
}

func newTestApp(t *testing.T, env config.EnvSecrets, store persistence.SnapshotStore) *App {
	t.Helper()
	if store == nil {
		store = &stubStore{}
	}
	app, err := NewApp(testConfig(), env, store, nil, testLogger())
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	return app
}

// === Agents ===

func TestApp_CreateAndDeleteAgent(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, config.EnvSecrets{}, nil)

	agent, err := app.CreateAgent(ctx, "Poeta", "🪶", "Responda em versos.")
	if err != nil {
		t.Fatal(err)
	}

	agents, _ := app.Agents(ctx)
	if len(agents) != 1 {
		t.Fatalf("expected 1 agent, got %d", len(agents))
	}

	if err := app.DeleteAgent(ctx, agent.ID); err != nil {
		t.Fatal(err)
	}
	agents, _ = app.Agents(ctx)
	if len(agents) != 0 {
		t.Error("agent should be gone")
	}
}

func TestApp_CreateAgentEmptyName(t *testing.T) {
	app := newTestApp(t, config.EnvSecrets{}, nil)
	if _, err := app.CreateAgent(context.Background(), "", "", ""); !errors.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %v", err)
	}
}

func TestApp_InterceptAgentProtected(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	presets := filepath.Join(dir, "agents.yaml")
	content := "agents:\n  - name: Tradutor\n    intercept: true\n"
	if err := os.WriteFile(presets, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Agents.Presets = presets
	app, err := NewApp(cfg, config.EnvSecrets{}, &stubStore{}, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	agents, _ := app.Agents(ctx)
	if len(agents) != 1 || !agents[0].Intercept {
		t.Fatalf("preset should seed one intercept agent: %+v", agents)
	}

	if err := app.DeleteAgent(ctx, agents[0].ID); !errors.IsInvalidInput(err) {
		t.Errorf("intercept agent deletion should be rejected, got %v", err)
	}
}

// === Conversations ===

func TestApp_CreateConversationDefaults(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, config.EnvSecrets{}, nil)

	conv, err := app.CreateConversation(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if conv.Title != "Nova Conversa 1" {
		t.Errorf("default title: got %q", conv.Title)
	}
	if app.CurrentConversation() != conv.ID {
		t.Error("new conversation should become current")
	}

	conv2, _ := app.CreateConversation(ctx, "")
	if conv2.Title != "Nova Conversa 2" {
		t.Errorf("sequential default title: got %q", conv2.Title)
	}
}

func TestApp_ConversationExcludesInterceptAgents(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	presets := filepath.Join(dir, "agents.yaml")
	content := "agents:\n  - name: Tradutor\n    intercept: true\n  - name: Poeta\n"
	if err := os.WriteFile(presets, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Agents.Presets = presets
	app, err := NewApp(cfg, config.EnvSecrets{}, &stubStore{}, nil, testLogger())
	if err != nil {
		t.Fatal(err)
	}

	conv, err := app.CreateConversation(ctx, "t")
	if err != nil {
		t.Fatal(err)
	}
	if len(conv.AgentIDs) != 1 {
		t.Fatalf("only the non-intercept agent should attach, got %d", len(conv.AgentIDs))
	}

	agents, _ := app.Agents(ctx)
	for _, a := range agents {
		if a.Intercept && a.ID == conv.AgentIDs[0] {
			t.Error("intercept agent attached to a new conversation")
		}
	}
}

func TestApp_SelectConversation(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, config.EnvSecrets{}, nil)

	c1, _ := app.CreateConversation(ctx, "one")
	c2, _ := app.CreateConversation(ctx, "two")
	if app.CurrentConversation() != c2.ID {
		t.Fatal("latest conversation should be current")
	}

	if err := app.SelectConversation(ctx, c1.ID); err != nil {
		t.Fatal(err)
	}
	if app.CurrentConversation() != c1.ID {
		t.Error("select should switch the current conversation")
	}

	if err := app.SelectConversation(ctx, "missing"); !errors.IsNotFound(err) {
		t.Errorf("selecting a missing conversation: got %v", err)
	}
}

// === Settings ===

func TestApp_EnvKeyWinsOverUpdate(t *testing.T) {
	env := config.EnvSecrets{APIKey: "env-key"}
	app := newTestApp(t, env, nil)

	app.UpdateModelConfig(config.ModelConfig{APIKey: "user-key", Model: "other-model"})

	got := app.ModelConfig()
	if got.APIKey != "env-key" {
		t.Errorf("env key must win at read time, got %q", got.APIKey)
	}
	if got.Model != "other-model" {
		t.Errorf("non-env field should apply, got %q", got.Model)
	}
	if !app.HasAPIKey() {
		t.Error("HasAPIKey should be true")
	}
}

func TestApp_MemoryToggle(t *testing.T) {
	app := newTestApp(t, config.EnvSecrets{}, nil)
	if !app.MemoryEnabled() {
		t.Fatal("memory should default to enabled")
	}
	app.SetMemoryEnabled(false)
	if app.MemoryEnabled() {
		t.Error("toggle should stick")
	}
}

// === State restart round trip ===

func TestApp_RestartRestoresState(t *testing.T) {
	ctx := context.Background()
	store := &stubStore{}

	app := newTestApp(t, config.EnvSecrets{}, store)
	app.CreateAgent(ctx, "Poeta", "", "versos")
	conv, _ := app.CreateConversation(ctx, "persisted")
	app.SetMemoryEnabled(false)

	// Fresh process, same store
	app2 := newTestApp(t, config.EnvSecrets{}, store)
	agents, _ := app2.Agents(ctx)
	if len(agents) != 1 || agents[0].Name != "Poeta" {
		t.Errorf("agents after restart: %+v", agents)
	}
	convs, _ := app2.Conversations(ctx)
	if len(convs) != 1 || convs[0].ID != conv.ID {
		t.Errorf("conversations after restart: %+v", convs)
	}
	if app2.CurrentConversation() != conv.ID {
		t.Error("current conversation should survive restart")
	}
	if app2.MemoryEnabled() {
		t.Error("memory toggle should survive restart")
	}
}

// === Export / import ===

func TestApp_ExportBlanksSecrets(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, config.EnvSecrets{}, nil)
	app.UpdateModelConfig(config.ModelConfig{APIKey: "stored-key", BaseURL: "https://b", Model: "m"})
	app.UpdateRelayConfig(config.RelayConfig{BotToken: "tok", ChatID: "42", Enabled: true})

	doc, err := app.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Version != "2.0-deepseek" {
		t.Errorf("version: got %q", doc.Version)
	}
	if doc.DeepSeek.APIKey != "" {
		t.Errorf("export must blank the api key, got %q", doc.DeepSeek.APIKey)
	}
	if doc.Telegram.BotToken != "" || doc.Telegram.ChatID != "" {
		t.Error("export must blank relay credentials")
	}
	if doc.DeepSeek.BaseURL != "https://b" {
		t.Errorf("non-secret config should export, got %q", doc.DeepSeek.BaseURL)
	}
	if !doc.Telegram.Enabled {
		t.Error("relay enabled flag should export")
	}
}

func TestApp_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t, config.EnvSecrets{}, nil)
	app.CreateAgent(ctx, "Poeta", "🪶", "versos")
	app.CreateConversation(ctx, "viagem")

	doc, err := app.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}

	// Import into a fresh app
	other := newTestApp(t, config.EnvSecrets{}, nil)
	if err := other.Import(ctx, data); err != nil {
		t.Fatalf("Import: %v", err)
	}

	agents, _ := other.Agents(ctx)
	if len(agents) != 1 || agents[0].Name != "Poeta" {
		t.Errorf("imported agents: %+v", agents)
	}
	convs, _ := other.Conversations(ctx)
	if len(convs) != 1 || convs[0].Title != "viagem" {
		t.Errorf("imported conversations: %+v", convs)
	}
}

func TestApp_ImportMalformed(t *testing.T) {
	app := newTestApp(t, config.EnvSecrets{}, nil)
	err := app.Import(context.Background(), []byte("{not json"))
	if !errors.IsPersistenceParse(err) {
		t.Errorf("expected PERSISTENCE_PARSE, got %v", err)
	}
}

func TestApp_ImportDoesNotShadowEnvSecrets(t *testing.T) {
	ctx := context.Background()
	env := config.EnvSecrets{APIKey: "env-key"}
	app := newTestApp(t, env, nil)

	doc := `{"agents":[],"conversations":[{"id":"c1","title":"t","messages":[],"agents":[],"createdAt":"2026-01-01T00:00:00Z"}],"memoryEnabled":true,"deepSeekConfig":{"apiKey":"imported-key","baseURL":"","model":""},"telegramConfig":{"botToken":"","chatId":"","enabled":false}}`
	if err := app.Import(ctx, []byte(doc)); err != nil {
		t.Fatal(err)
	}

	if got := app.ModelConfig().APIKey; got != "env-key" {
		t.Errorf("env key must survive import, got %q", got)
	}
}
