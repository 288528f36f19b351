package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/6610545011/cn331-project/internal/service"
	"github.com/6610545011/cn331-project/pkg/response"
)

// 导出格式对应的 Content-Type
var exportContentTypes = map[string]string{
	service.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	service.ExportFormatICS:  "text/calendar",
}

// ExportHandler 导出模块 Handler
type ExportHandler struct {
	svc service.ExportService
}

// NewExportHandler 创建 ExportHandler 实例
func NewExportHandler(svc service.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportTimetable 导出当前计划的课程表
// GET /api/v1/export/timetable?format=xlsx|ics
func (h *ExportHandler) ExportTimetable(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	format := c.DefaultQuery("format", service.ExportFormatXLSX)

	buf, filename, err := h.svc.ExportTimetable(c.Request.Context(), userID, format)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	contentType := exportContentTypes[format]
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportBadFormat):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, service.ErrExportNoSchedules):
		response.NotFound(c, 14002, "no schedules to export")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
