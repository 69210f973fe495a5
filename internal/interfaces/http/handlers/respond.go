package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/colmeia/hive/pkg/errors"
)

// writeError maps application error codes to HTTP statuses.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.CodeInternal
	switch {
	case apperrors.IsNotFound(err):
		status, code = http.StatusNotFound, apperrors.CodeNotFound
	case apperrors.IsInvalidInput(err):
		status, code = http.StatusBadRequest, apperrors.CodeInvalidInput
	case apperrors.IsConfig(err):
		status, code = http.StatusConflict, apperrors.CodeConfig
	case apperrors.IsTransport(err):
		status, code = http.StatusBadGateway, apperrors.CodeTransport
	case apperrors.IsResponseFormat(err):
		status, code = http.StatusBadGateway, apperrors.CodeResponseFormat
	case apperrors.IsPersistenceParse(err):
		status, code = http.StatusBadRequest, apperrors.CodePersistenceParse
	}

	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": err.Error(),
		},
	})
}
