// Package domain 定义了应用程序中使用的数据结构 (数据库模型)。
package domain

import "time"

// User 表示应用程序中的用户。
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(191);uniqueIndex:idx_username;not null" json:"username"`
	Email     string    `gorm:"type:varchar(191);uniqueIndex:idx_email;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"` // 存储的是 bcrypt 哈希，绝不序列化输出
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
