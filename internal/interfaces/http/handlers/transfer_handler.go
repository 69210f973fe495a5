package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/colmeia/hive/internal/application"
)

// maxImportBytes caps one import document.
const maxImportBytes = 50 << 20

// TransferHandler serves the export/import endpoints.
type TransferHandler struct {
	app    *application.App
	logger *zap.Logger
}

// NewTransferHandler creates the export/import handler.
func NewTransferHandler(app *application.App, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		app:    app,
		logger: logger.With(zap.String("handler", "transfer")),
	}
}

// Export handles GET /api/v1/export, returning the backup document as a
// download.
func (h *TransferHandler) Export(c *gin.Context) {
	doc, err := h.app.Export(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="hive-backup.json"`)
	c.JSON(http.StatusOK, doc)
}

// Import handles POST /api/v1/import. The body is the backup document,
// either raw JSON or a multipart upload under "file".
func (h *TransferHandler) Import(c *gin.Context) {
	var data []byte

	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
			return
		}
		data, err = io.ReadAll(io.LimitReader(f, maxImportBytes))
		f.Close()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
			return
		}
	} else {
		var err error
		data, err = io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": "INVALID_INPUT", "message": err.Error()}})
			return
		}
	}

	if err := h.app.Import(c.Request.Context(), data); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "imported"})
}
