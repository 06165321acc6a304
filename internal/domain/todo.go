package domain

import "time"

// Todo 优先级的取值范围: 1=low, 2=medium, 3=high。
const (
	PriorityLow    = 1
	PriorityMedium = 2
	PriorityHigh   = 3
)

// Todo 表示属于某个用户的待办事项。
// 所有读写都必须同时按 id 和 owner_id 过滤，非所有者一律视为未找到。
type Todo struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(191);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Completed   bool      `gorm:"not null;default:false" json:"completed"`
	Priority    int       `gorm:"not null;default:2" json:"priority"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
	OwnerID     uint      `gorm:"index:idx_owner_id;not null" json:"owner_id"` // 外键 -> users.id
}

// ValidPriority 判断给定优先级是否在允许的集合 {1,2,3} 内。
func ValidPriority(p int) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}
