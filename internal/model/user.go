package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	PasswordMinLength = 6
	EmailMaxLength    = 100
)

type User struct {
	ID             uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username       string    `gorm:"column:username;type:varchar(50);uniqueIndex;not null"`
	Email          string    `gorm:"column:email;type:varchar(100);uniqueIndex;not null"`
	HashedPassword string    `gorm:"column:hashed_password;type:varchar(255);not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	IsAdmin        bool      `gorm:"column:is_admin;not null;default:false"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }

// Validate 校验用户名与邮箱（密码在哈希前单独校验）
func (u *User) Validate() error {
	name := strings.TrimSpace(u.Username)
	if n := utf8.RuneCountInString(name); n < UsernameMinLength || n > UsernameMaxLength {
		return NewValidationError("username", "username must be %d-%d characters", UsernameMinLength, UsernameMaxLength)
	}
	email := strings.TrimSpace(u.Email)
	if email == "" || !strings.Contains(email, "@") {
		return NewValidationError("email", "invalid email format")
	}
	if len(email) > EmailMaxLength {
		return NewValidationError("email", "email must be at most %d characters", EmailMaxLength)
	}
	if u.HashedPassword == "" {
		return NewValidationError("hashed_password", "hashed password is required")
	}
	return nil
}
