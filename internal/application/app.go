package application

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application/usecase"
	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/domain/repository"
	"github.com/colmeia/hive/internal/domain/service"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/internal/infrastructure/llm"
	"github.com/colmeia/hive/internal/infrastructure/persistence"
	"github.com/colmeia/hive/internal/infrastructure/relay"
	"github.com/colmeia/hive/pkg/errors"
)

// App wires the repositories, the model client, the relay and the
// usecases together and owns the runtime settings (model config, relay
// config, memory toggle, current conversation). All settings access is
// guarded by one mutex; the infrastructure clients read settings through
// provider funcs so updates apply immediately.
type App struct {
	cfg    *config.Config
	env    config.EnvSecrets
	logger *zap.Logger

	agents        repository.AgentRepository
	conversations repository.ConversationRepository
	manager       *persistence.Manager

	mu            sync.RWMutex
	model         config.ModelConfig
	relay         config.RelayConfig
	memoryEnabled bool
	currentConv   string

	modelClient service.ModelClient
	notifier    service.Notifier

	sender    *usecase.SendMessageUseCase
	generator *usecase.GenerateInstructionUseCase
}

// NewApp loads the persisted state and assembles the application.
// broadcaster may be nil (CLI commands run without the hub).
func NewApp(
	cfg *config.Config,
	env config.EnvSecrets,
	store persistence.SnapshotStore,
	broadcaster service.Broadcaster,
	logger *zap.Logger,
) (*App, error) {
	app := &App{
		cfg:           cfg,
		env:           env,
		logger:        logger,
		agents:        persistence.NewMemoryAgentRepository(),
		conversations: persistence.NewMemoryConversationRepository(),
		manager:       persistence.NewManager(store, env, cfg, logger),
	}

	state := app.manager.Load()
	ctx := context.Background()
	if err := app.agents.Replace(ctx, state.Agents); err != nil {
		return nil, err
	}
	if err := app.conversations.Replace(ctx, state.Conversations); err != nil {
		return nil, err
	}
	app.model = state.DeepSeek
	app.relay = state.Telegram
	app.memoryEnabled = state.MemoryEnabled
	app.currentConv = state.CurrentConversation

	if err := app.seedPresets(ctx); err != nil {
		return nil, err
	}

	app.modelClient = llm.New(app.ModelConfig, logger)
	app.notifier = relay.NewNotifier(app.RelayConfig, logger)

	app.sender = usecase.NewSendMessageUseCase(
		app.agents,
		app.conversations,
		app.modelClient,
		app.notifier,
		broadcaster,
		app.MemoryEnabled,
		app.persist,
		logger,
	)
	app.generator = usecase.NewGenerateInstructionUseCase(app.modelClient, logger)

	return app, nil
}

// seedPresets loads agents.yaml into an empty registry. Presets never
// overwrite an existing registry: a snapshot wins over the preset file.
func (a *App) seedPresets(ctx context.Context) error {
	existing, err := a.agents.FindAll(ctx)
	if err != nil || len(existing) > 0 {
		return err
	}

	presets, err := config.LoadPresets(a.cfg.Agents.Presets)
	if err != nil {
		return err
	}
	for _, p := range presets {
		agent, err := entity.NewAgent(p.Name, p.Avatar, p.SystemInstruction, p.Intercept)
		if err != nil {
			a.logger.Warn("Skipping invalid agent preset", zap.String("name", p.Name), zap.Error(err))
			continue
		}
		if err := a.agents.Save(ctx, agent); err != nil {
			return err
		}
	}
	if len(presets) > 0 {
		a.logger.Info("Seeded agent presets", zap.Int("count", len(presets)))
	}
	return nil
}

// === settings ===

// ModelConfig returns the effective model settings, environment
// overrides applied.
func (a *App) ModelConfig() config.ModelConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return config.EffectiveModel(a.env, a.model)
}

// RelayConfig returns the effective relay settings.
func (a *App) RelayConfig() config.RelayConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return config.EffectiveRelay(a.env, a.relay)
}

// HasAPIKey reports whether a model API key is resolvable from the
// environment or the stored settings.
func (a *App) HasAPIKey() bool {
	return a.ModelConfig().APIKey != ""
}

// UpdateModelConfig stores new model settings. An empty field keeps the
// current stored value, so the console can submit only what changed.
// Environment overrides still win at read time.
func (a *App) UpdateModelConfig(in config.ModelConfig) {
	a.mu.Lock()
	if in.APIKey != "" {
		a.model.APIKey = in.APIKey
	}
	if in.BaseURL != "" {
		a.model.BaseURL = in.BaseURL
	}
	if in.Model != "" {
		a.model.Model = in.Model
	}
	a.mu.Unlock()
	a.persist()
}

// UpdateRelayConfig stores new relay settings. The enabled flag is
// always taken from the input; credentials only when non-empty.
func (a *App) UpdateRelayConfig(in config.RelayConfig) {
	a.mu.Lock()
	if in.BotToken != "" {
		a.relay.BotToken = in.BotToken
	}
	if in.ChatID != "" {
		a.relay.ChatID = in.ChatID
	}
	a.relay.Enabled = in.Enabled
	a.mu.Unlock()
	a.persist()
}

// MemoryEnabled reports the conversation-memory toggle.
func (a *App) MemoryEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.memoryEnabled
}

// SetMemoryEnabled flips the conversation-memory toggle.
func (a *App) SetMemoryEnabled(enabled bool) {
	a.mu.Lock()
	a.memoryEnabled = enabled
	a.mu.Unlock()
	a.persist()
}

// CurrentConversation returns the selected conversation id, which may
// be empty.
func (a *App) CurrentConversation() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentConv
}

// SelectConversation makes an existing conversation current.
func (a *App) SelectConversation(ctx context.Context, id string) error {
	if _, err := a.conversations.FindByID(ctx, id); err != nil {
		return err
	}
	a.mu.Lock()
	a.currentConv = id
	a.mu.Unlock()
	a.persist()
	return nil
}

// === agents ===

// Agents lists all registered agents in registration order.
func (a *App) Agents(ctx context.Context) ([]*entity.Agent, error) {
	return a.agents.FindAll(ctx)
}

// CreateAgent registers a new (non-intercept) agent.
func (a *App) CreateAgent(ctx context.Context, name, avatar, systemInstruction string) (*entity.Agent, error) {
	agent, err := entity.NewAgent(name, avatar, systemInstruction, false)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if err := a.agents.Save(ctx, agent); err != nil {
		return nil, err
	}
	a.persist()
	a.logger.Info("Agent created", zap.String("agent_id", agent.ID), zap.String("name", agent.Name))
	return agent, nil
}

// DeleteAgent removes an agent. Intercept agents are protected.
// Existing conversations keep the dangling id; the orchestrator skips it.
func (a *App) DeleteAgent(ctx context.Context, id string) error {
	agent, err := a.agents.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if agent.Intercept {
		return errors.NewInvalidInputError(entity.ErrAgentProtected.Error())
	}
	if err := a.agents.Delete(ctx, id); err != nil {
		return err
	}
	a.persist()
	a.logger.Info("Agent deleted", zap.String("agent_id", id))
	return nil
}

// GenerateInstruction drafts a system instruction from a description.
func (a *App) GenerateInstruction(ctx context.Context, description string) (string, error) {
	return a.generator.Execute(ctx, description)
}

// === conversations ===

// Conversations lists all conversations in creation order.
func (a *App) Conversations(ctx context.Context) ([]*entity.Conversation, error) {
	return a.conversations.FindAll(ctx)
}

// CreateConversation creates a conversation attached to every
// non-intercept agent registered right now, makes it current and
// returns it. An empty title gets a sequential default.
func (a *App) CreateConversation(ctx context.Context, title string) (*entity.Conversation, error) {
	all, err := a.conversations.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if title == "" {
		title = fmt.Sprintf("Nova Conversa %d", len(all)+1)
	}

	agents, err := a.agents.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(agents))
	for _, ag := range agents {
		if !ag.Intercept {
			ids = append(ids, ag.ID)
		}
	}

	conv, err := entity.NewConversation(title, ids)
	if err != nil {
		return nil, errors.NewInvalidInputError(err.Error())
	}
	if err := a.conversations.Save(ctx, conv); err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.currentConv = conv.ID
	a.mu.Unlock()
	a.persist()

	a.logger.Info("Conversation created",
		zap.String("conversation_id", conv.ID),
		zap.Int("agents", len(ids)),
	)
	return conv, nil
}

// Conversation returns one conversation by id.
func (a *App) Conversation(ctx context.Context, id string) (*entity.Conversation, error) {
	return a.conversations.FindByID(ctx, id)
}

// === messaging ===

// SendMessage runs the orchestration flow against a conversation.
func (a *App) SendMessage(ctx context.Context, conversationID, text string, files []service.File) (*usecase.SendResult, error) {
	return a.sender.Execute(ctx, conversationID, text, files)
}

// HandleInboundText feeds a message typed in the mirrored relay chat
// into the current conversation, as if the user typed it in the console.
func (a *App) HandleInboundText(ctx context.Context, text string) {
	conversationID := a.CurrentConversation()
	if conversationID == "" {
		a.logger.Debug("Inbound relay message with no current conversation, dropping")
		return
	}
	if _, err := a.sender.Execute(ctx, conversationID, text, nil); err != nil {
		a.logger.Warn("Inbound relay send failed", zap.Error(err))
	}
}

// === persistence ===

// persist snapshots the full state. Failures are logged, never
// propagated: the in-memory state stays authoritative.
func (a *App) persist() {
	ctx := context.Background()
	agents, err := a.agents.FindAll(ctx)
	if err != nil {
		a.logger.Error("Snapshot skipped, agent listing failed", zap.Error(err))
		return
	}
	convs, err := a.conversations.FindAll(ctx)
	if err != nil {
		a.logger.Error("Snapshot skipped, conversation listing failed", zap.Error(err))
		return
	}

	a.mu.RLock()
	state := &persistence.PersistedState{
		Agents:              agents,
		Conversations:       convs,
		CurrentConversation: a.currentConv,
		MemoryEnabled:       a.memoryEnabled,
		DeepSeek:            a.model,
		Telegram:            a.relay,
	}
	a.mu.RUnlock()

	if err := a.manager.Save(state); err != nil {
		a.logger.Error("Snapshot save failed", zap.Error(err))
	}
}
