package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
	"github.com/colmeia/hive/internal/infrastructure/config"
)

// SettingsHandler serves the runtime settings endpoints. Secrets are
// write-only: responses carry a set/unset flag, never the value.
type SettingsHandler struct {
	app    *application.App
	logger *zap.Logger
}

// NewSettingsHandler creates the settings handler.
func NewSettingsHandler(app *application.App, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{
		app:    app,
		logger: logger.With(zap.String("handler", "settings")),
	}
}

// Get handles GET /api/v1/settings.
func (h *SettingsHandler) Get(c *gin.Context) {
	model := h.app.ModelConfig()
	relay := h.app.RelayConfig()

	c.JSON(http.StatusOK, gin.H{
		"deepSeekConfig": gin.H{
			"apiKeySet": model.APIKey != "",
			"baseURL":   model.BaseURL,
			"model":     model.Model,
		},
		"telegramConfig": gin.H{
			"botTokenSet": relay.BotToken != "",
			"chatIdSet":   relay.ChatID != "",
			"enabled":     relay.Enabled,
		},
		"memoryEnabled": h.app.MemoryEnabled(),
	})
}

// UpdateSettingsRequest is the JSON body for PUT /api/v1/settings.
// Absent or empty fields keep their current values.
type UpdateSettingsRequest struct {
	DeepSeek *config.ModelConfig `json:"deepSeekConfig"`
	Telegram *config.RelayConfig `json:"telegramConfig"`
}

// Update handles PUT /api/v1/settings.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	if req.DeepSeek != nil {
		h.app.UpdateModelConfig(*req.DeepSeek)
	}
	if req.Telegram != nil {
		h.app.UpdateRelayConfig(*req.Telegram)
	}
	h.Get(c)
}

// SetMemoryRequest is the JSON body for PUT /api/v1/settings/memory.
type SetMemoryRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetMemory handles PUT /api/v1/settings/memory.
func (h *SettingsHandler) SetMemory(c *gin.Context) {
	var req SetMemoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	h.app.SetMemoryEnabled(*req.Enabled)
	c.JSON(http.StatusOK, gin.H{"memoryEnabled": h.app.MemoryEnabled()})
}
