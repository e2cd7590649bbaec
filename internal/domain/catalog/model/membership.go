package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"

	"learnhub/pkg/model"

	"github.com/shopspring/decimal"
)

// PlanType 会员方案类型
type PlanType string

const (
	PlanMonthly    PlanType = "monthly"
	PlanQuarterly  PlanType = "quarterly"
	PlanYearly     PlanType = "yearly"
	PlanEnterprise PlanType = "enterprise"
)

func (t PlanType) Valid() bool {
	switch t {
	case PlanMonthly, PlanQuarterly, PlanYearly, PlanEnterprise:
		return true
	}
	return false
}

// Features 方案权益列表，存储为 jsonb
type Features []string

func (f Features) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	return string(b), err
}

func (f *Features) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = nil
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("features: unsupported scan type")
	}
	return json.Unmarshal(raw, f)
}

// MembershipPlan 会员方案
type MembershipPlan struct {
	model.BaseModel
	Code          string          `gorm:"size:64;uniqueIndex" json:"code"`
	Name          string          `gorm:"size:128;not null" json:"name"`
	Type          PlanType        `gorm:"size:16;not null" json:"type"`
	Price         decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	OriginalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null;default:0" json:"originalPrice"`
	DurationDays  int             `gorm:"not null" json:"durationDays"`
	Features      Features        `gorm:"type:jsonb;not null;default:'[]'" json:"features"`
	IsActive      bool            `gorm:"not null" json:"isActive"`
	SortOrder     int             `gorm:"not null;default:0" json:"sortOrder"`
}

func (MembershipPlan) TableName() string { return "membership_plans" }
