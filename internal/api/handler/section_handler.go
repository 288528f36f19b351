package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/service"
	"github.com/6610545011/cn331-project/pkg/response"
)

// SectionHandler 班次检索模块 Handler
type SectionHandler struct {
	svc service.SectionService
}

// NewSectionHandler 创建 SectionHandler 实例
func NewSectionHandler(svc service.SectionService) *SectionHandler {
	return &SectionHandler{svc: svc}
}

// Search 检索班次
// GET /api/v1/planner/sections/search?q=xxx
func (h *SectionHandler) Search(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	var req dto.SectionSearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 13000, err.Error())
		return
	}

	results, err := h.svc.Search(c.Request.Context(), req.Query)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, results)
}
