package model

import (
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	"learnhub/pkg/model"
)

// License 用户对某个商品的使用授权
// 同一用户同一商品最多只有一条 is_active 的记录（部分唯一索引 licenses_user_product_active_idx）
type License struct {
	model.LedgerModel
	UserID      string                   `gorm:"type:uuid;not null;index" json:"userId"`
	ProductType catalogmodel.ProductType `gorm:"size:20;not null" json:"productType"`
	ProductID   string                   `gorm:"type:uuid;not null" json:"productId"`
	OrderID     *string                  `gorm:"type:uuid;index" json:"orderId,omitempty"`
	StartAt     time.Time                `gorm:"not null" json:"startAt"`
	ExpireAt    *time.Time               `json:"expireAt"` // nil 表示永久
	IsActive    bool                     `gorm:"not null" json:"isActive"`
}

func (License) TableName() string { return "licenses" }

// ValidAt 授权在 t 时刻是否有效
func (l *License) ValidAt(t time.Time) bool {
	if !l.IsActive {
		return false
	}
	return l.ExpireAt == nil || l.ExpireAt.After(t)
}

// Ref 授权对应的商品
func (l *License) Ref() (catalogmodel.ProductRef, error) {
	return catalogmodel.ParseProductRef(string(l.ProductType), l.ProductID)
}

// AccessVia 访问权限来源
type AccessVia string

const (
	ViaFree       AccessVia = "free"
	ViaCourse     AccessVia = "course"
	ViaMembership AccessVia = "membership"
	ViaNone       AccessVia = "none"
)

// Access 访问检查结果
type Access struct {
	HasAccess bool      `json:"hasAccess"`
	Via       AccessVia `json:"via"`
}

var NoAccess = Access{HasAccess: false, Via: ViaNone}
