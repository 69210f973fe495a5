package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
)

// AgentHandler serves the agent registry endpoints.
type AgentHandler struct {
	app    *application.App
	logger *zap.Logger
}

// NewAgentHandler creates the agent registry handler.
func NewAgentHandler(app *application.App, logger *zap.Logger) *AgentHandler {
	return &AgentHandler{
		app:    app,
		logger: logger.With(zap.String("handler", "agents")),
	}
}

// List handles GET /api/v1/agents.
func (h *AgentHandler) List(c *gin.Context) {
	agents, err := h.app.Agents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"agents": agents})
}

// CreateAgentRequest is the JSON body for POST /api/v1/agents.
type CreateAgentRequest struct {
	Name              string `json:"name" binding:"required"`
	Avatar            string `json:"avatar"`
	SystemInstruction string `json:"systemInstruction"`
}

// Create handles POST /api/v1/agents.
func (h *AgentHandler) Create(c *gin.Context) {
	var req CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	agent, err := h.app.CreateAgent(c.Request.Context(), req.Name, req.Avatar, req.SystemInstruction)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

// Delete handles DELETE /api/v1/agents/:id.
func (h *AgentHandler) Delete(c *gin.Context) {
	if err := h.app.DeleteAgent(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GenerateInstructionRequest is the JSON body for
// POST /api/v1/agents/generate-instruction.
type GenerateInstructionRequest struct {
	Description string `json:"description" binding:"required"`
}

// GenerateInstruction handles POST /api/v1/agents/generate-instruction.
func (h *AgentHandler) GenerateInstruction(c *gin.Context) {
	var req GenerateInstructionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return
	}

	instruction, err := h.app.GenerateInstruction(c.Request.Context(), req.Description)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"systemInstruction": instruction})
}
