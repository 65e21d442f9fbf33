package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/dto"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/service"
	pkgerrors "github.com/SCMS-Project/scms-app-v2-sub001/pkg/errors"
	"github.com/SCMS-Project/scms-app-v2-sub001/pkg/response"
)

// ScheduleHandler 周课程安排模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc}
}

// ListByResource 获取某资源的课程安排
// GET /api/v1/schedules?resource_id=FAC001
func (h *ScheduleHandler) ListByResource(c *gin.Context) {
	resourceID := c.Query("resource_id")
	if resourceID == "" {
		response.BadRequest(c, 10001, "resource_id 不能为空")
		return
	}

	items, err := h.scheduleSvc.ListByResource(c.Request.Context(), resourceID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// GetScheduleEvent 获取课程安排详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetScheduleEvent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程安排ID不能为空")
		return
	}

	event, err := h.scheduleSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, event)
}

// CreateScheduleEvent 手动创建课程安排
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateScheduleEvent(c *gin.Context) {
	var req dto.CreateScheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.scheduleSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, event)
}

// UpdateScheduleEvent 更新课程安排
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateScheduleEvent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程安排ID不能为空")
		return
	}

	var req dto.UpdateScheduleEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	event, err := h.scheduleSvc.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, event)
}

// DeleteScheduleEvent 删除课程安排
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteScheduleEvent(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "课程安排ID不能为空")
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportICS 导入 ICS 课表
// POST /api/v1/schedules/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"，form 字段 resource_id
//   - URL 导入: application/json, body={"url": "...", "resource_id": "..."}
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	// 尝试文件上传方式
	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()

		resourceID := c.PostForm("resource_id")
		if resourceID == "" {
			response.BadRequest(c, 10001, "resource_id 不能为空")
			return
		}

		content, err := io.ReadAll(file)
		if err != nil {
			response.BadRequest(c, 24002, "读取上传文件失败")
			return
		}

		resp, err := h.scheduleSvc.ImportICS(c.Request.Context(), resourceID, string(content), userID)
		if err != nil {
			h.handleScheduleError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	// URL 方式
	var req dto.ImportICSRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" || req.ResourceID == "" {
		response.BadRequest(c, 24003, "请上传 ICS 文件或提供 ICS URL 与 resource_id")
		return
	}

	resp, err := h.scheduleSvc.ImportICSFromURL(c.Request.Context(), req.ResourceID, req.URL, userID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleEventNotFound):
		response.NotFound(c, 24001, "课程安排不存在")
	case errors.Is(err, service.ErrICSParseFailed):
		response.BadRequest(c, 24002, err.Error())
	case errors.Is(err, service.ErrICSFetchFailed):
		response.BadRequest(c, 24003, err.Error())
	case errors.Is(err, service.ErrICSEmptyCalendar):
		response.BadRequest(c, 24004, "ICS 日历中没有可导入的课程事件")
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 21001, "资源不存在")
	case errors.Is(err, service.ErrResourceInactive):
		response.BadRequest(c, 21002, "资源已停用")
	case errors.Is(err, service.ErrInvalidTimeWindow):
		response.BadRequest(c, 21003, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 24005, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/schedule_handler.go
