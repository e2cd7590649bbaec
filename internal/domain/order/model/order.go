package model

import (
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	"learnhub/pkg/model"

	"github.com/shopspring/decimal"
)

// Status 订单状态
type Status string

const (
	StatusPending              Status = "pending"               // 待支付
	StatusAwaitingConfirmation Status = "awaiting_confirmation" // 用户已提交支付，待管理员确认
	StatusPaid                 Status = "paid"
	StatusCancelled            Status = "cancelled"
	StatusRefunded             Status = "refunded"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAwaitingConfirmation, StatusPaid, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// Terminal 终态不能再流转
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusRefunded
}

// PaymentMethod 支付方式
type PaymentMethod string

const (
	PaymentWechat PaymentMethod = "wechat"
	PaymentAlipay PaymentMethod = "alipay"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentWechat || m == PaymentAlipay
}

// Order 订单
type Order struct {
	model.LedgerModel
	OrderNo        string            `gorm:"size:50;not null;uniqueIndex" json:"orderNo"`
	UserID         string            `gorm:"type:uuid;not null;index" json:"userId"`
	TotalAmount    decimal.Decimal   `gorm:"type:numeric(10,2);not null" json:"totalAmount"`
	DiscountAmount decimal.Decimal   `gorm:"type:numeric(10,2);not null;default:0" json:"discountAmount"`
	Status         Status            `gorm:"size:32;not null;index" json:"status"`
	PaymentMethod  PaymentMethod     `gorm:"size:16" json:"paymentMethod,omitempty"`
	PaymentNo      string            `gorm:"size:100" json:"paymentNo,omitempty"` // 外部支付流水号
	SubmittedAt    *time.Time        `json:"submittedAt,omitempty"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
	ExpiredAt      *time.Time        `gorm:"index" json:"expiredAt,omitempty"`
	CancelledAt    *time.Time        `json:"cancelledAt,omitempty"`
	RefundedAt     *time.Time        `json:"refundedAt,omitempty"`
	Items          []OrderItem       `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	Transitions    []OrderTransition `gorm:"foreignKey:OrderID" json:"transitions,omitempty"`
}

func (Order) TableName() string { return "orders" }

// Expired 待支付订单是否已超过支付期限
func (o *Order) Expired(now time.Time) bool {
	return o.Status == StatusPending && o.ExpiredAt != nil && !now.Before(*o.ExpiredAt)
}

// ProductName 订单商品名称，多个商品用顿号连接
func (o *Order) ProductName() string {
	name := ""
	for i, item := range o.Items {
		if i > 0 {
			name += "、"
		}
		name += item.ProductName
	}
	return name
}

// OrderItem 订单明细，保存下单时的商品快照
type OrderItem struct {
	model.LedgerModel
	OrderID     string                   `gorm:"type:uuid;not null;index" json:"orderId"`
	ProductType catalogmodel.ProductType `gorm:"size:20;not null" json:"productType"`
	ProductID   string                   `gorm:"type:uuid;not null" json:"productId"`
	ProductName string                   `gorm:"size:200;not null" json:"productName"`
	Quantity    int                      `gorm:"not null;default:1" json:"quantity"`
	UnitPrice   decimal.Decimal          `gorm:"type:numeric(10,2);not null" json:"unitPrice"`
	TotalPrice  decimal.Decimal          `gorm:"type:numeric(10,2);not null" json:"totalPrice"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) Ref() (catalogmodel.ProductRef, error) {
	return catalogmodel.ParseProductRef(string(i.ProductType), i.ProductID)
}

// OrderTransition 订单状态流转记录，只追加
type OrderTransition struct {
	model.LedgerModel
	OrderID    string `gorm:"type:uuid;not null;index" json:"orderId"`
	FromStatus Status `gorm:"size:32;not null" json:"fromStatus"`
	ToStatus   Status `gorm:"size:32;not null" json:"toStatus"`
	ActorID    string `gorm:"size:64;not null" json:"actorId"` // 用户ID 或 system
	Note       string `gorm:"size:500" json:"note,omitempty"`
}

func (OrderTransition) TableName() string { return "order_transitions" }

// Stats 后台统计
type Stats struct {
	PaidCount     int64           `json:"paidCount"`
	Revenue       decimal.Decimal `json:"revenue"`
	AwaitingCount int64           `json:"awaitingCount"`
	CourseCount   int64           `json:"courseCount"`
	UserCount     int64           `json:"userCount"`
}
