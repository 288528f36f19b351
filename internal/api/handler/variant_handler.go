package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/service"
	"github.com/6610545011/cn331-project/pkg/response"
)

// VariantHandler 计划方案模块 Handler
type VariantHandler struct {
	svc service.VariantService
}

// NewVariantHandler 创建 VariantHandler 实例
func NewVariantHandler(svc service.VariantService) *VariantHandler {
	return &VariantHandler{svc: svc}
}

// Create 新建空方案
// POST /api/v1/variants
func (h *VariantHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12000, err.Error())
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.Created(c, resp)
}

// List 列出当前用户的全部方案
// GET /api/v1/variants
func (h *VariantHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.OK(c, resp)
}

// SaveCurrent 将当前计划保存为方案
// POST /api/v1/variants/save-current
func (h *VariantHandler) SaveCurrent(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SaveVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12000, err.Error())
		return
	}

	resp, err := h.svc.SaveCurrent(c.Request.Context(), userID, &req)
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.Created(c, resp)
}

// Load 将方案载入当前计划
// POST /api/v1/variants/:id/load
func (h *VariantHandler) Load(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.Load(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.OK(c, resp)
}

// Delete 删除方案
// DELETE /api/v1/variants/:id
func (h *VariantHandler) Delete(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		handleVariantError(c, err)
		return
	}
	response.OK(c, gin.H{"id": c.Param("id")})
}

// AddSection 将班次加入方案
// POST /api/v1/variants/:id/sections/:sectionId
func (h *VariantHandler) AddSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.AddSection(c.Request.Context(), userID, c.Param("id"), c.Param("sectionId"))
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.OK(c, resp)
}

// RemoveSection 从方案移除班次
// DELETE /api/v1/variants/:id/sections/:sectionId
func (h *VariantHandler) RemoveSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.RemoveSection(c.Request.Context(), userID, c.Param("id"), c.Param("sectionId"))
	if err != nil {
		handleVariantError(c, err)
		return
	}
	response.OK(c, resp)
}

func handleVariantError(c *gin.Context, err error) {
	var conflict *service.ScheduleConflictError
	var bound *service.CreditBoundError

	switch {
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12001, "schedule conflict", err.Error())
	case errors.As(err, &bound):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12002, "credit bound violation", err.Error())
	case errors.Is(err, service.ErrVariantNotFound):
		response.NotFound(c, 12003, err.Error())
	case errors.Is(err, service.ErrVariantNotOwner):
		response.Forbidden(c, 12004, err.Error())
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 12005, err.Error())
	case errors.Is(err, service.ErrPlannerNotFound):
		response.NotFound(c, 12006, err.Error())
	default:
		response.InternalError(c)
	}
}
