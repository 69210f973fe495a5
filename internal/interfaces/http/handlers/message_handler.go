package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
	"github.com/colmeia/hive/internal/domain/service"
)

// maxAttachmentBytes caps one staged attachment.
const maxAttachmentBytes = 10 << 20

// MessageHandler serves the send-message endpoint.
type MessageHandler struct {
	app    *application.App
	logger *zap.Logger
}

// NewMessageHandler creates the message handler.
func NewMessageHandler(app *application.App, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		app:    app,
		logger: logger.With(zap.String("handler", "messages")),
	}
}

// SendRequest is the JSON body for POST /api/v1/conversations/:id/messages.
// Multipart form-data with a "text" field and "files" parts is accepted
// as an alternative for browser uploads.
type SendRequest struct {
	Text  string     `json:"text"`
	Files []SendFile `json:"files"`
}

// SendFile is one staged attachment; Data is base64 in JSON.
type SendFile struct {
	Name string `json:"name"`
	Data []byte `json:"data"`
}

// Send handles POST /api/v1/conversations/:id/messages. Answers 409
// before touching the model API when no key is resolvable.
func (h *MessageHandler) Send(c *gin.Context) {
	if !h.app.HasAPIKey() {
		c.JSON(http.StatusConflict, gin.H{
			"error": gin.H{
				"code":    "CONFIG_ERROR",
				"message": "model API key not configured",
			},
		})
		return
	}

	text, files, ok := h.parseRequest(c)
	if !ok {
		return
	}

	result, err := h.app.SendMessage(c.Request.Context(), c.Param("id"), text, files)
	if err != nil {
		// Partial replies stay appended; report both the error and what
		// landed before it.
		status := http.StatusBadGateway
		body := gin.H{"error": gin.H{"code": "TRANSPORT_ERROR", "message": err.Error()}}
		if result != nil {
			body["userMessage"] = result.UserMessage
			body["replies"] = result.Replies
			body["state"] = result.State
		}
		c.JSON(status, body)
		return
	}
	if result == nil {
		// Empty text or unknown conversation is a silent no-op.
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"userMessage": result.UserMessage,
		"replies":     result.Replies,
		"skipped":     result.Skipped,
		"notices":     result.Notices,
		"state":       result.State,
	})
}

func (h *MessageHandler) parseRequest(c *gin.Context) (string, []service.File, bool) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		return h.parseMultipart(c)
	}

	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return "", nil, false
	}
	files := make([]service.File, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, service.File{Name: f.Name, Data: f.Data})
	}
	return req.Text, files, true
}

func (h *MessageHandler) parseMultipart(c *gin.Context) (string, []service.File, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
		return "", nil, false
	}

	text := c.PostForm("text")
	var files []service.File
	for _, fh := range form.File["files"] {
		if fh.Size > maxAttachmentBytes {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{
				"code":    "INVALID_INPUT",
				"message": "attachment too large: " + fh.Filename,
			}})
			return "", nil, false
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
			return "", nil, false
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
			return "", nil, false
		}
		files = append(files, service.File{Name: fh.Filename, Data: data})
	}
	return text, files, true
}
