package application

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/domain/entity"
	"github.com/colmeia/hive/internal/infrastructure/config"
	"github.com/colmeia/hive/pkg/errors"
)

// exportVersion marks the export file format, kept compatible with the
// browser version's backup files.
const exportVersion = "2.0-deepseek"

// ExportDocument is the backup file format. Unlike the snapshot it
// carries no currentConversation or timestamp, and secrets are always
// blanked on export, whatever their origin.
type ExportDocument struct {
	Agents        []*entity.Agent        `json:"agents"`
	Conversations []*entity.Conversation `json:"conversations"`
	MemoryEnabled bool                   `json:"memoryEnabled"`
	DeepSeek      config.ModelConfig     `json:"deepSeekConfig"`
	Telegram      config.RelayConfig     `json:"telegramConfig"`
	ExportDate    time.Time              `json:"exportDate"`
	Version       string                 `json:"version"`
}

// Export builds a backup document of the current state. Unlike the
// snapshot, the export blanks every secret unconditionally: a backup
// file is meant to travel.
func (a *App) Export(ctx context.Context) (*ExportDocument, error) {
	agents, err := a.agents.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	convs, err := a.conversations.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	a.mu.RLock()
	doc := &ExportDocument{
		Agents:        agents,
		Conversations: convs,
		MemoryEnabled: a.memoryEnabled,
		DeepSeek: config.ModelConfig{
			BaseURL: a.model.BaseURL,
			Model:   a.model.Model,
		},
		Telegram: config.RelayConfig{
			Enabled: a.relay.Enabled,
		},
		ExportDate: time.Now(),
		Version:    exportVersion,
	}
	a.mu.RUnlock()
	return doc, nil
}

// Import restores state from a backup document. Agents, conversations
// and the memory toggle always apply; config fields apply field-wise and
// only where the environment does not already supply the value, so an
// import can never shadow an env secret or blank a setting it does not
// carry.
func (a *App) Import(ctx context.Context, data []byte) error {
	// Absent memoryEnabled means enabled, same as snapshot loading.
	doc := ExportDocument{MemoryEnabled: true}
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.NewPersistenceParseError("parse import document", err)
	}
	if doc.Agents == nil && doc.Conversations == nil {
		return errors.NewInvalidInputError("import document has no agents or conversations")
	}

	if doc.Agents == nil {
		doc.Agents = []*entity.Agent{}
	}
	if doc.Conversations == nil {
		doc.Conversations = []*entity.Conversation{}
	}

	if err := a.agents.Replace(ctx, doc.Agents); err != nil {
		return err
	}
	if err := a.conversations.Replace(ctx, doc.Conversations); err != nil {
		return err
	}

	a.mu.Lock()
	a.memoryEnabled = doc.MemoryEnabled
	// Backups carry no conversation selection; the console starts fresh.
	a.currentConv = ""
	if doc.DeepSeek.APIKey != "" && a.env.APIKey == "" {
		a.model.APIKey = doc.DeepSeek.APIKey
	}
	if doc.DeepSeek.BaseURL != "" && a.env.BaseURL == "" {
		a.model.BaseURL = doc.DeepSeek.BaseURL
	}
	if doc.DeepSeek.Model != "" && a.env.Model == "" {
		a.model.Model = doc.DeepSeek.Model
	}
	if doc.Telegram.BotToken != "" && a.env.BotToken == "" {
		a.relay.BotToken = doc.Telegram.BotToken
	}
	if doc.Telegram.ChatID != "" && a.env.ChatID == "" {
		a.relay.ChatID = doc.Telegram.ChatID
	}
	a.relay.Enabled = doc.Telegram.Enabled
	a.mu.Unlock()

	a.persist()
	a.logger.Info("State imported",
		zap.Int("agents", len(doc.Agents)),
		zap.Int("conversations", len(doc.Conversations)),
		zap.String("version", doc.Version),
	)
	return nil
}
