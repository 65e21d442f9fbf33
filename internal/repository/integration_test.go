//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "github.com/SCMS-Project/scms-app-v2-sub001/pkg/errors"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=scms password=scms_password dbname=scms_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.Resource{},
		&model.Reservation{},
		&model.ScheduleEvent{},
		&model.BlackoutPeriod{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupResource 创建一个测试资源并返回清理函数
func setupResource(t *testing.T) (res *model.Resource, cleanup func()) {
	t.Helper()
	ctx := context.Background()

	// resource_id 上限 20 字符，截取纳秒时间戳尾部保证唯一
	res = &model.Resource{
		ResourceID: fmt.Sprintf("T%d", time.Now().UnixNano()%1e12),
		Name:       "集成测试多功能厅",
		Category:   model.ResourceCategoryFacility,
		Capacity:   80,
		IsActive:   true,
	}
	if err := testDB.WithContext(ctx).Create(res).Error; err != nil {
		t.Fatalf("创建资源失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("resource_id = ?", res.ResourceID).Delete(&model.Reservation{})
		testDB.Unscoped().Where("resource_id = ?", res.ResourceID).Delete(&model.ScheduleEvent{})
		testDB.Unscoped().Where("resource_id = ?", res.ResourceID).Delete(&model.BlackoutPeriod{})
		testDB.Unscoped().Where("resource_id = ?", res.ResourceID).Delete(&model.Resource{})
	}
	return
}

func testDate() time.Time {
	return time.Date(2025, 3, 18, 0, 0, 0, 0, time.UTC)
}

// ═══════════════════════════════════════════════════════════
// Test: CreateChecked（事务内锁定 + 复核 + 插入）
// ═══════════════════════════════════════════════════════════

func TestReservation_CreateChecked_Commit(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	resv := &model.Reservation{
		ResourceID:  res.ResourceID,
		Date:        testDate(),
		StartTime:   "09:00",
		EndTime:     "11:00",
		RequesterID: uuid.NewString(),
		Status:      model.ReservationStatusPending,
	}
	err := repo.Reservation.CreateChecked(ctx, resv, func(existing []model.Reservation) error {
		if len(existing) != 0 {
			t.Errorf("首次提交期望 0 条既有预约，得到 %d 条", len(existing))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("CreateChecked 失败: %v", err)
	}
	if resv.ReservationID == "" {
		t.Fatal("插入后应回填 reservation_id")
	}

	found, err := repo.Reservation.GetByID(ctx, resv.ReservationID)
	if err != nil {
		t.Fatalf("提交后查询失败: %v", err)
	}
	if found.Status != model.ReservationStatusPending {
		t.Errorf("期望状态 pending，得到: %s", found.Status)
	}
}

func TestReservation_CreateChecked_CheckRejects(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	resv := &model.Reservation{
		ResourceID:  res.ResourceID,
		Date:        testDate(),
		StartTime:   "09:00",
		EndTime:     "11:00",
		RequesterID: uuid.NewString(),
		Status:      model.ReservationStatusPending,
	}
	wantErr := fmt.Errorf("复核未通过")
	err := repo.Reservation.CreateChecked(ctx, resv, func(_ []model.Reservation) error {
		return wantErr
	})
	if err == nil {
		t.Fatal("复核失败时 CreateChecked 应返回错误")
	}

	// 回滚后不应有任何持久化记录
	list, err := repo.Reservation.ListByResourceAndDate(ctx, res.ResourceID, testDate())
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("复核失败后期望 0 条预约，得到 %d 条", len(list))
	}
}

func TestReservation_CreateChecked_SeesExistingRows(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.Reservation{
		ResourceID:  res.ResourceID,
		Date:        testDate(),
		StartTime:   "09:00",
		EndTime:     "11:00",
		RequesterID: uuid.NewString(),
		Status:      model.ReservationStatusPending,
	}
	if err := repo.Reservation.CreateChecked(ctx, first, func(_ []model.Reservation) error { return nil }); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	// 第二次提交的复核回调应看到首次提交的行
	second := &model.Reservation{
		ResourceID:  res.ResourceID,
		Date:        testDate(),
		StartTime:   "13:00",
		EndTime:     "15:00",
		RequesterID: uuid.NewString(),
		Status:      model.ReservationStatusPending,
	}
	err := repo.Reservation.CreateChecked(ctx, second, func(existing []model.Reservation) error {
		if len(existing) != 1 {
			t.Errorf("期望看到 1 条既有预约，得到 %d 条", len(existing))
		} else if !strings.HasPrefix(existing[0].StartTime, "09:00") {
			t.Errorf("既有预约开始时间不符: %s", existing[0].StartTime)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("第二次提交失败: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Reservation_ConflictDetected(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	resv := &model.Reservation{
		ResourceID:  res.ResourceID,
		Date:        testDate(),
		StartTime:   "09:00",
		EndTime:     "11:00",
		RequesterID: uuid.NewString(),
		Status:      model.ReservationStatusPending,
	}
	if err := repo.Reservation.CreateChecked(ctx, resv, func(_ []model.Reservation) error { return nil }); err != nil {
		t.Fatalf("创建预约失败: %v", err)
	}

	// 模拟并发：获取两份副本
	copy1, _ := repo.Reservation.GetByID(ctx, resv.ReservationID)
	copy2, _ := repo.Reservation.GetByID(ctx, resv.ReservationID)

	// 第一次更新成功
	copy1.Status = model.ReservationStatusApproved
	if err := repo.Reservation.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Status = model.ReservationStatusRejected
	err := repo.Reservation.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_Resource_VersionIncrement(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if res.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", res.Version)
	}

	// 连续更新 3 次
	for i := 0; i < 3; i++ {
		got, err := repo.Resource.GetByID(ctx, res.ResourceID)
		if err != nil {
			t.Fatalf("查询资源失败: %v", err)
		}
		got.Capacity = 80 + i
		if err := repo.Resource.Update(ctx, got); err != nil {
			t.Fatalf("第 %d 次更新失败: %v", i+1, err)
		}
	}

	final, _ := repo.Resource.GetByID(ctx, res.ResourceID)
	if final.Version != 4 {
		t.Errorf("期望 version=4，得到: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestResource_SoftDelete(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	operatorID := uuid.NewString()
	if err := repo.Resource.Delete(ctx, res.ResourceID, operatorID); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	if _, err := repo.Resource.GetByID(ctx, res.ResourceID); err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到，且审计列已设置
	var found model.Resource
	if err := testDB.Unscoped().Where("resource_id = ?", res.ResourceID).First(&found).Error; err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
	if found.DeletedBy == nil || *found.DeletedBy != operatorID {
		t.Error("DeletedBy 应记录操作人")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: ReplaceByResource（ICS 导入的全量替换）
// ═══════════════════════════════════════════════════════════

func TestScheduleEvent_ReplaceByResource(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 先有一条手工创建的安排
	manual := &model.ScheduleEvent{
		ResourceID: res.ResourceID,
		CourseName: "旧课程",
		DayOfWeek:  1,
		StartTime:  "08:00",
		EndTime:    "10:00",
		Source:     model.ScheduleSourceManual,
	}
	if err := repo.ScheduleEvent.Create(ctx, manual); err != nil {
		t.Fatalf("创建手工安排失败: %v", err)
	}

	// 全量替换为两条导入安排
	imported := []model.ScheduleEvent{
		{
			ResourceID: res.ResourceID,
			CourseName: "数据结构",
			DayOfWeek:  1,
			StartTime:  "10:00",
			EndTime:    "12:00",
			Weeks:      model.IntArray{1, 2, 3},
			Source:     model.ScheduleSourceICS,
		},
		{
			ResourceID: res.ResourceID,
			CourseName: "高等数学",
			DayOfWeek:  2,
			StartTime:  "14:00",
			EndTime:    "15:30",
			Weeks:      model.IntArray{1},
			Source:     model.ScheduleSourceICS,
		},
	}
	if err := repo.ScheduleEvent.ReplaceByResource(ctx, res.ResourceID, imported); err != nil {
		t.Fatalf("ReplaceByResource 失败: %v", err)
	}

	list, err := repo.ScheduleEvent.ListByResource(ctx, res.ResourceID)
	if err != nil {
		t.Fatalf("ListByResource 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("替换后期望 2 条安排，得到 %d 条", len(list))
	}
	for _, evt := range list {
		if evt.Source != model.ScheduleSourceICS {
			t.Errorf("替换后 source 应为 ics，得到: %s", evt.Source)
		}
	}

	// 周次列表应完整往返
	for _, evt := range list {
		if evt.CourseName == "数据结构" && len(evt.Weeks) != 3 {
			t.Errorf("周次列表往返不完整: %v", evt.Weeks)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Blackout 当日查询排序
// ═══════════════════════════════════════════════════════════

func TestBlackout_ListByResourceAndDate_AllDayFirst(t *testing.T) {
	res, cleanup := setupResource(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	windowed := &model.BlackoutPeriod{
		ResourceID: res.ResourceID,
		Category:   "maintenance",
		Reason:     "投影仪检修",
		Date:       testDate(),
		StartTime:  "09:00",
		EndTime:    "12:00",
	}
	if err := repo.Blackout.Create(ctx, windowed); err != nil {
		t.Fatalf("创建分时段停用失败: %v", err)
	}

	allDay := &model.BlackoutPeriod{
		ResourceID: res.ResourceID,
		Category:   "administrative",
		Reason:     "年度盘点",
		Date:       testDate(),
		AllDay:     true,
	}
	if err := repo.Blackout.Create(ctx, allDay); err != nil {
		t.Fatalf("创建整日停用失败: %v", err)
	}

	list, err := repo.Blackout.ListByResourceAndDate(ctx, res.ResourceID, testDate())
	if err != nil {
		t.Fatalf("ListByResourceAndDate 失败: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("期望 2 条停用时段，得到 %d 条", len(list))
	}
	// 整日停用优先返回，引擎可短路判定
	if !list[0].AllDay {
		t.Error("整日停用应排在首位")
	}

	// 其他日期不应返回
	other, err := repo.Blackout.ListByResourceAndDate(ctx, res.ResourceID, testDate().AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("查询失败: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("其他日期期望 0 条，得到 %d 条", len(other))
	}
}
