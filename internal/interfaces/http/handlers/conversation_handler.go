package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
)

// ConversationHandler serves the conversation endpoints.
type ConversationHandler struct {
	app    *application.App
	logger *zap.Logger
}

// NewConversationHandler creates the conversation handler.
func NewConversationHandler(app *application.App, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{
		app:    app,
		logger: logger.With(zap.String("handler", "conversations")),
	}
}

// List handles GET /api/v1/conversations.
func (h *ConversationHandler) List(c *gin.Context) {
	convs, err := h.app.Conversations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"conversations":       convs,
		"currentConversation": h.app.CurrentConversation(),
	})
}

// CreateConversationRequest is the JSON body for POST /api/v1/conversations.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// Create handles POST /api/v1/conversations. The new conversation
// becomes current and is attached to the current non-intercept agents.
func (h *ConversationHandler) Create(c *gin.Context) {
	var req CreateConversationRequest
	// An empty body is fine, the title defaults server-side.
	_ = c.ShouldBindJSON(&req)

	conv, err := h.app.CreateConversation(c.Request.Context(), req.Title)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

// Get handles GET /api/v1/conversations/:id.
func (h *ConversationHandler) Get(c *gin.Context) {
	conv, err := h.app.Conversation(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Current handles GET /api/v1/conversations/current.
func (h *ConversationHandler) Current(c *gin.Context) {
	id := h.app.CurrentConversation()
	if id == "" {
		c.JSON(http.StatusOK, gin.H{"currentConversation": ""})
		return
	}
	conv, err := h.app.Conversation(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Select handles PUT /api/v1/conversations/:id/select.
func (h *ConversationHandler) Select(c *gin.Context) {
	if err := h.app.SelectConversation(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"currentConversation": c.Param("id")})
}
