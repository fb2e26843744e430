package db

import (
	"time"
)

// User 定义了本地身份提供方的用户模型，ID 为 UUID 字符串
type User struct {
	ID        string `gorm:"primaryKey;size:36"`
	Email     string `gorm:"uniqueIndex;not null"`
	Username  string
	Password  string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
