package dto

// ── 资源模块 DTO ──

// CreateResourceRequest 创建资源请求
// resource_id 为业务编码（如 FAC001），由管理方分配
type CreateResourceRequest struct {
	ResourceID string `json:"resource_id" binding:"required,min=3,max=20"`
	Name       string `json:"name"        binding:"required,min=1,max=100"`
	Category   string `json:"category"    binding:"required,oneof=facility equipment venue document"`
	Capacity   int    `json:"capacity"    binding:"omitempty,min=0"`
	Building   string `json:"building"    binding:"omitempty,max=100"`
}

// UpdateResourceRequest 更新资源请求
type UpdateResourceRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Category *string `json:"category"  binding:"omitempty,oneof=facility equipment venue document"`
	Capacity *int    `json:"capacity"  binding:"omitempty,min=0"`
	Building *string `json:"building"  binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

// ListResourcesRequest 资源列表查询参数
type ListResourcesRequest struct {
	Category   string `form:"category"    binding:"omitempty,oneof=facility equipment venue document"`
	ActiveOnly bool   `form:"active_only"`
	PaginationRequest
}

// ResourceResponse 资源响应
type ResourceResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Capacity  int    `json:"capacity"`
	Building  string `json:"building,omitempty"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ResourceBrief 资源简要信息
type ResourceBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// [自证通过] internal/dto/resource.go
