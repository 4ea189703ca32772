package models

import "time"

// Admin is a back-office account allowed to manage the directory.
type Admin struct {
	AdminID      int64      `gorm:"column:admin_id;primaryKey;autoIncrement" json:"admin_id"`
	Username     string     `gorm:"column:username;size:50;not null;uniqueIndex" json:"username"`
	PasswordHash string     `gorm:"column:password_hash;size:255;not null" json:"-"`
	DisplayName  *string    `gorm:"column:display_name;size:100" json:"display_name,omitempty"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Admin) TableName() string { return "admins" }
