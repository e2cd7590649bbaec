package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ProductType 可购买商品类型
type ProductType string

const (
	ProductCourse     ProductType = "course"
	ProductMembership ProductType = "membership"
)

// ProductRef 商品引用，只有 CourseRef 和 MembershipRef 两种实现
type ProductRef interface {
	Type() ProductType
	ID() string
	isProductRef()
}

// CourseRef 课程
type CourseRef struct{ CourseID string }

func (r CourseRef) Type() ProductType { return ProductCourse }
func (r CourseRef) ID() string        { return r.CourseID }
func (CourseRef) isProductRef()       {}
func (r CourseRef) String() string    { return "course:" + r.CourseID }

// MembershipRef 会员方案
type MembershipRef struct{ PlanID string }

func (r MembershipRef) Type() ProductType { return ProductMembership }
func (r MembershipRef) ID() string        { return r.PlanID }
func (MembershipRef) isProductRef()       {}
func (r MembershipRef) String() string    { return "membership:" + r.PlanID }

// ParseProductRef 从持久化的 (type, id) 还原商品引用
func ParseProductRef(productType, id string) (ProductRef, error) {
	if id == "" {
		return nil, fmt.Errorf("empty product id")
	}
	switch ProductType(productType) {
	case ProductCourse:
		return CourseRef{CourseID: id}, nil
	case ProductMembership:
		return MembershipRef{PlanID: id}, nil
	default:
		return nil, fmt.Errorf("unknown product type %q", productType)
	}
}

// Product 下单时读取的商品快照
type Product struct {
	Ref          ProductRef
	Title        string
	Price        decimal.Decimal
	IsFree       bool
	Purchasable  bool
	Reason       string // 不可购买的原因
	DurationDays int    // 会员方案有效天数，课程为 0（永久）
}
