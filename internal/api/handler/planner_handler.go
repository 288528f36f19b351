package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/6610545011/cn331-project/internal/dto"
	"github.com/6610545011/cn331-project/internal/service"
	pkgerrors "github.com/6610545011/cn331-project/pkg/errors"
	"github.com/6610545011/cn331-project/pkg/response"
)

// PlannerHandler 当前计划模块 Handler
type PlannerHandler struct {
	svc service.PlannerService
}

// NewPlannerHandler 创建 PlannerHandler 实例
func NewPlannerHandler(svc service.PlannerService) *PlannerHandler {
	return &PlannerHandler{svc: svc}
}

// GetTimetable 获取当前计划的课程表视图
// GET /api/v1/planner
func (h *PlannerHandler) GetTimetable(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.GetTimetable(c.Request.Context(), userID)
	if err != nil {
		handlePlannerError(c, err)
		return
	}
	response.OK(c, resp)
}

// AddSection 将班次加入当前计划
// POST /api/v1/planner/sections/:id
func (h *PlannerHandler) AddSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sectionID := c.Param("id")
	if _, err := uuid.Parse(sectionID); err != nil {
		response.BadRequest(c, 11000, "invalid section id")
		return
	}

	resp, err := h.svc.AddSection(c.Request.Context(), userID, sectionID)
	if err != nil {
		handlePlannerError(c, err)
		return
	}
	response.OK(c, resp)
}

// RemoveSection 从当前计划移除班次
// DELETE /api/v1/planner/sections/:id
func (h *PlannerHandler) RemoveSection(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.RemoveSection(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		handlePlannerError(c, err)
		return
	}
	response.OK(c, resp)
}

// AddSchedule 手动为班次登记一段上课时间
// POST /api/v1/planner/schedules
func (h *PlannerHandler) AddSchedule(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 11000, err.Error())
		return
	}

	resp, err := h.svc.AddSchedule(c.Request.Context(), &req)
	if err != nil {
		handlePlannerError(c, err)
		return
	}
	response.Created(c, resp)
}

func handlePlannerError(c *gin.Context, err error) {
	var conflict *service.ScheduleConflictError
	var overlap *pkgerrors.ScheduleOverlapError

	switch {
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusBadRequest, 11001, "schedule conflict", err.Error())
	case errors.As(err, &overlap):
		response.ErrorWithDetails(c, http.StatusBadRequest, 11002, "schedule overlap", err.Error())
	case errors.Is(err, service.ErrSectionNotFound):
		response.NotFound(c, 11003, err.Error())
	case errors.Is(err, service.ErrPlannerNotFound):
		response.NotFound(c, 11004, err.Error())
	case errors.Is(err, service.ErrScheduleInvalidTime),
		errors.Is(err, service.ErrScheduleEndNotAfterStart),
		errors.Is(err, service.ErrScheduleOutsideHours),
		errors.Is(err, service.ErrScheduleNotAligned),
		errors.Is(err, service.ErrScheduleSlotOutOfBounds):
		response.BadRequest(c, 11005, err.Error())
	default:
		response.InternalError(c)
	}
}
