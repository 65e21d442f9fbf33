package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/dto"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/service"
	pkgerrors "github.com/SCMS-Project/scms-app-v2-sub001/pkg/errors"
	"github.com/SCMS-Project/scms-app-v2-sub001/pkg/response"
)

// BlackoutHandler 停用时段模块 HTTP 处理器
type BlackoutHandler struct {
	blackoutSvc service.BlackoutService
}

// NewBlackoutHandler 创建 BlackoutHandler
func NewBlackoutHandler(blackoutSvc service.BlackoutService) *BlackoutHandler {
	return &BlackoutHandler{blackoutSvc: blackoutSvc}
}

// ListBlackouts 获取停用时段列表
// GET /api/v1/blackouts
func (h *BlackoutHandler) ListBlackouts(c *gin.Context) {
	var req dto.ListBlackoutsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.blackoutSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleBlackoutError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// GetBlackout 获取停用时段详情
// GET /api/v1/blackouts/:id
func (h *BlackoutHandler) GetBlackout(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "停用时段ID不能为空")
		return
	}

	blackout, err := h.blackoutSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleBlackoutError(c, err)
		return
	}

	response.OK(c, blackout)
}

// CreateBlackout 创建停用时段
// POST /api/v1/blackouts
func (h *BlackoutHandler) CreateBlackout(c *gin.Context) {
	var req dto.CreateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, 23002, err.Error())
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	blackout, err := h.blackoutSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleBlackoutError(c, err)
		return
	}

	response.Created(c, blackout)
}

// UpdateBlackout 更新停用时段
// PUT /api/v1/blackouts/:id
func (h *BlackoutHandler) UpdateBlackout(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "停用时段ID不能为空")
		return
	}

	var req dto.UpdateBlackoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	blackout, err := h.blackoutSvc.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleBlackoutError(c, err)
		return
	}

	response.OK(c, blackout)
}

// DeleteBlackout 删除停用时段
// DELETE /api/v1/blackouts/:id
func (h *BlackoutHandler) DeleteBlackout(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "停用时段ID不能为空")
		return
	}

	if err := h.blackoutSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleBlackoutError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *BlackoutHandler) handleBlackoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBlackoutNotFound):
		response.NotFound(c, 23001, "停用时段不存在")
	case errors.Is(err, service.ErrResourceNotFound):
		response.NotFound(c, 21001, "资源不存在")
	case errors.Is(err, service.ErrResourceInactive):
		response.BadRequest(c, 21002, "资源已停用")
	case errors.Is(err, service.ErrInvalidTimeWindow), errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 23002, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 23003, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/blackout_handler.go
