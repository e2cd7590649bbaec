package model

import (
	"time"

	"learnhub/internal/pkg/principal"
	"learnhub/pkg/model"
)

const (
	RoleUser  = principal.RoleUser
	RoleAdmin = principal.RoleAdmin
)

const (
	StatusNormal  = 1
	StatusBanned  = 2
	StatusDeleted = 3
)

// User 用户模型
type User struct {
	model.BaseModel
	Mobile        string     `gorm:"size:20;uniqueIndex" json:"mobile"`
	Nickname      string     `gorm:"size:64" json:"nickname"`
	Email         string     `gorm:"size:128" json:"email"`
	AvatarURL     string     `gorm:"size:512" json:"avatarUrl"`
	Role          int        `gorm:"not null;default:1" json:"role"`
	Status        int        `gorm:"not null;default:1" json:"status"`
	BannedUntil   *time.Time `json:"bannedUntil,omitempty"`
	Token         string     `gorm:"size:512" json:"-"`
	TokenExpireAt *time.Time `json:"-"`
}

func (User) TableName() string { return "users" }
