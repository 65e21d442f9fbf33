package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/repository"
	pkgerrors "github.com/SCMS-Project/scms-app-v2-sub001/pkg/errors"
)

// ── Mock ResourceRepository ──

type mockResourceRepo struct {
	resources map[string]*model.Resource
}

func newMockResourceRepo() *mockResourceRepo {
	return &mockResourceRepo{resources: make(map[string]*model.Resource)}
}

func (m *mockResourceRepo) Create(_ context.Context, resource *model.Resource) error {
	m.resources[resource.ResourceID] = resource
	return nil
}

func (m *mockResourceRepo) GetByID(_ context.Context, id string) (*model.Resource, error) {
	if r, ok := m.resources[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockResourceRepo) List(_ context.Context, category string, activeOnly bool, offset, limit int) ([]model.Resource, int64, error) {
	var result []model.Resource
	for _, r := range m.resources {
		if category != "" && r.Category != category {
			continue
		}
		if activeOnly && !r.IsActive {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ResourceID < result[j].ResourceID })
	return result, int64(len(result)), nil
}

func (m *mockResourceRepo) Update(_ context.Context, resource *model.Resource) error {
	stored, ok := m.resources[resource.ResourceID]
	if !ok || stored.Version != resource.Version {
		return pkgerrors.ErrOptimisticLock
	}
	resource.Version++
	m.resources[resource.ResourceID] = resource
	return nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.resources, id)
	return nil
}

// ── Mock ReservationRepository ──
//
// 带互斥锁，CreateChecked 的"锁定-复核-插入"语义在内存中同样成立，
// 并发提交测试依赖这一点

type mockReservationRepo struct {
	mu           sync.Mutex
	reservations map[string]*model.Reservation
	seq          int
	listErr      error
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.reservations[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) ListByResourceAndDate(_ context.Context, resourceID string, date time.Time) ([]model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.listLocked(resourceID, date), nil
}

func (m *mockReservationRepo) listLocked(resourceID string, date time.Time) []model.Reservation {
	var result []model.Reservation
	for _, r := range m.reservations {
		if r.ResourceID == resourceID && r.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result
}

func (m *mockReservationRepo) List(_ context.Context, filter repository.ReservationFilter, offset, limit int) ([]model.Reservation, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Reservation
	for _, r := range m.reservations {
		if filter.ResourceID != "" && r.ResourceID != filter.ResourceID {
			continue
		}
		if filter.Date != nil && r.Date.Format("2006-01-02") != filter.Date.Format("2006-01-02") {
			continue
		}
		if filter.RequesterID != "" && r.RequesterID != filter.RequesterID {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		result = append(result, *r)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, int64(len(result)), nil
}

func (m *mockReservationRepo) CreateChecked(_ context.Context, reservation *model.Reservation, check func(existing []model.Reservation) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.listLocked(reservation.ResourceID, reservation.Date)
	if err := check(existing); err != nil {
		return err
	}

	m.seq++
	if reservation.ReservationID == "" {
		reservation.ReservationID = fmt.Sprintf("resv-%d", m.seq)
	}
	if reservation.Version == 0 {
		reservation.Version = 1
	}
	cp := *reservation
	m.reservations[reservation.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) Update(_ context.Context, reservation *model.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.reservations[reservation.ReservationID]
	if !ok || stored.Version != reservation.Version {
		return pkgerrors.ErrOptimisticLock
	}
	reservation.Version++
	cp := *reservation
	m.reservations[reservation.ReservationID] = &cp
	return nil
}

// ── Mock ScheduleEventRepository ──

type mockScheduleEventRepo struct {
	events  map[string]*model.ScheduleEvent
	seq     int
	listErr error
}

func newMockScheduleEventRepo() *mockScheduleEventRepo {
	return &mockScheduleEventRepo{events: make(map[string]*model.ScheduleEvent)}
}

func (m *mockScheduleEventRepo) Create(_ context.Context, event *model.ScheduleEvent) error {
	m.seq++
	if event.ScheduleEventID == "" {
		event.ScheduleEventID = fmt.Sprintf("evt-%d", m.seq)
	}
	m.events[event.ScheduleEventID] = event
	return nil
}

func (m *mockScheduleEventRepo) GetByID(_ context.Context, id string) (*model.ScheduleEvent, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleEventRepo) ListByResourceAndDay(_ context.Context, resourceID string, dayOfWeek int) ([]model.ScheduleEvent, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.ScheduleEvent
	for _, e := range m.events {
		if e.ResourceID == resourceID && e.DayOfWeek == dayOfWeek {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime < result[j].StartTime })
	return result, nil
}

func (m *mockScheduleEventRepo) ListByResource(_ context.Context, resourceID string) ([]model.ScheduleEvent, error) {
	var result []model.ScheduleEvent
	for _, e := range m.events {
		if e.ResourceID == resourceID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].DayOfWeek != result[j].DayOfWeek {
			return result[i].DayOfWeek < result[j].DayOfWeek
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockScheduleEventRepo) ReplaceByResource(_ context.Context, resourceID string, events []model.ScheduleEvent) error {
	for id, e := range m.events {
		if e.ResourceID == resourceID {
			delete(m.events, id)
		}
	}
	for i := range events {
		m.seq++
		if events[i].ScheduleEventID == "" {
			events[i].ScheduleEventID = fmt.Sprintf("evt-%d", m.seq)
		}
		cp := events[i]
		m.events[cp.ScheduleEventID] = &cp
	}
	return nil
}

func (m *mockScheduleEventRepo) Update(_ context.Context, event *model.ScheduleEvent) error {
	stored, ok := m.events[event.ScheduleEventID]
	if !ok || stored.Version != event.Version {
		return pkgerrors.ErrOptimisticLock
	}
	event.Version++
	m.events[event.ScheduleEventID] = event
	return nil
}

func (m *mockScheduleEventRepo) Delete(_ context.Context, id string) error {
	delete(m.events, id)
	return nil
}

// ── Mock BlackoutRepository ──

type mockBlackoutRepo struct {
	blackouts map[string]*model.BlackoutPeriod
	seq       int
	listErr   error
}

func newMockBlackoutRepo() *mockBlackoutRepo {
	return &mockBlackoutRepo{blackouts: make(map[string]*model.BlackoutPeriod)}
}

func (m *mockBlackoutRepo) Create(_ context.Context, blackout *model.BlackoutPeriod) error {
	m.seq++
	if blackout.BlackoutID == "" {
		blackout.BlackoutID = fmt.Sprintf("blk-%d", m.seq)
	}
	m.blackouts[blackout.BlackoutID] = blackout
	return nil
}

func (m *mockBlackoutRepo) GetByID(_ context.Context, id string) (*model.BlackoutPeriod, error) {
	if b, ok := m.blackouts[id]; ok {
		return b, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBlackoutRepo) ListByResourceAndDate(_ context.Context, resourceID string, date time.Time) ([]model.BlackoutPeriod, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []model.BlackoutPeriod
	for _, b := range m.blackouts {
		if b.ResourceID == resourceID && b.Date.Format("2006-01-02") == date.Format("2006-01-02") {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].AllDay != result[j].AllDay {
			return result[i].AllDay
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, nil
}

func (m *mockBlackoutRepo) List(_ context.Context, resourceID string, from, to *time.Time, offset, limit int) ([]model.BlackoutPeriod, int64, error) {
	var result []model.BlackoutPeriod
	for _, b := range m.blackouts {
		if resourceID != "" && b.ResourceID != resourceID {
			continue
		}
		if from != nil && b.Date.Before(*from) {
			continue
		}
		if to != nil && b.Date.After(*to) {
			continue
		}
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].StartTime < result[j].StartTime
	})
	return result, int64(len(result)), nil
}

func (m *mockBlackoutRepo) Update(_ context.Context, blackout *model.BlackoutPeriod) error {
	stored, ok := m.blackouts[blackout.BlackoutID]
	if !ok || stored.Version != blackout.Version {
		return pkgerrors.ErrOptimisticLock
	}
	blackout.Version++
	m.blackouts[blackout.BlackoutID] = blackout
	return nil
}

func (m *mockBlackoutRepo) Delete(_ context.Context, id string) error {
	delete(m.blackouts, id)
	return nil
}

// [自证通过] internal/service/mock_repos_test.go
