package persistence

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/infrastructure/config"
)

// PersistedState is the single JSON document holding all console state.
// The field names match the browser version's local-storage blob, so a
// state file exported from it loads unchanged.
type PersistedState struct {
	Agents              []*entity.Agent        `json:"agents"`
	Conversations       []*entity.Conversation `json:"conversations"`
	CurrentConversation string                 `json:"currentConversation"`
	MemoryEnabled       bool                   `json:"memoryEnabled"`
	DeepSeek            config.ModelConfig     `json:"deepSeekConfig"`
	Telegram            config.RelayConfig     `json:"telegramConfig"`
	Timestamp           time.Time              `json:"timestamp"`
}

// Manager owns the load/save cycle for the snapshot, applying the
// environment-secret precedence rules in both directions.
type Manager struct {
	store  SnapshotStore
	env    config.EnvSecrets
	cfg    *config.Config
	logger *zap.Logger
}

// NewManager creates a snapshot manager.
func NewManager(store SnapshotStore, env config.EnvSecrets, cfg *config.Config, logger *zap.Logger) *Manager {
	return &Manager{
		store:  store,
		env:    env,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "persistence")),
	}
}

func (m *Manager) defaultState() *PersistedState {
	return &PersistedState{
		Agents:        []*entity.Agent{},
		Conversations: []*entity.Conversation{},
		MemoryEnabled: m.cfg.MemoryEnabled,
		DeepSeek:      m.cfg.DeepSeek,
		Telegram:      m.cfg.Telegram,
	}
}

// Load reads the snapshot and returns a ready-to-use state. It never
// fails: a missing snapshot yields the config defaults and a corrupt
// one is logged and discarded. Environment-sourced secrets are
// re-applied last (highest priority) and the relay enabled flag is
// recomputed as "env supplies both credentials OR stored flag".
func (m *Manager) Load() *PersistedState {
	state := m.defaultState()

	blob, err := m.store.Load()
	switch {
	case err == ErrNoSnapshot:
		m.logger.Info("No snapshot found, starting with defaults")
	case err != nil:
		m.logger.Warn("Snapshot load failed, starting with defaults", zap.Error(err))
	default:
		if err := json.Unmarshal(blob, state); err != nil {
			m.logger.Warn("Snapshot is corrupt, starting with defaults", zap.Error(err))
			state = m.defaultState()
		}
	}

	// Stored blobs never carry the listen toggle; it comes from config.
	state.Telegram.Listen = m.cfg.Telegram.Listen

	state.DeepSeek = config.EffectiveModel(m.env, state.DeepSeek)
	state.Telegram = config.EffectiveRelay(m.env, state.Telegram)

	if state.Agents == nil {
		state.Agents = []*entity.Agent{}
	}
	if state.Conversations == nil {
		state.Conversations = []*entity.Conversation{}
	}
	return state
}

// Save writes the snapshot, redacting every secret that originated from
// the environment so it never crosses the environment boundary.
func (m *Manager) Save(state *PersistedState) error {
	doc := *state
	doc.DeepSeek = config.PersistableModel(m.env, state.DeepSeek)
	doc.Telegram = config.PersistableRelay(m.env, state.Telegram)
	doc.Timestamp = time.Now()

	blob, err := json.Marshal(&doc)
	if err != nil {
		return err
	}
	if err := m.store.Save(blob); err != nil {
		return err
	}
	m.logger.Debug("Snapshot saved",
		zap.Int("agents", len(doc.Agents)),
		zap.Int("conversations", len(doc.Conversations)),
	)
	return nil
}
