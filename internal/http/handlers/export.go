package handlers

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/safetywatch-backend/internal/services"
)

type ExportHandler struct {
	export services.ExportService
}

func NewExportHandler(export services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// GET /export
func (h *ExportHandler) XLSX(c *gin.Context) {
	var buf bytes.Buffer
	if _, err := h.export.WriteXLSX(c.Request.Context(), &buf); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+services.ExportFilename)
	c.Data(http.StatusOK, services.ExportContentType, buf.Bytes())
}
