package repository

import (
	"context"
	"time"

	"learnhub/internal/domain/order/model"
	"learnhub/pkg/database"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter 订单列表筛选
type OrderFilter struct {
	UserID string
	Status model.Status
	Offset int
	Limit  int
}

// OrderRepository 订单仓库
type OrderRepository interface {
	// Create 创建订单及明细
	Create(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	// GetByIDForUpdate 加行锁读取订单，必须在事务中调用
	GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error)
	// GetDetail 订单、明细与流转记录
	GetDetail(ctx context.Context, id string) (*model.Order, error)
	// UpdateStatus 仅当订单当前状态属于 from 时更新，返回是否更新成功
	UpdateStatus(ctx context.Context, id string, from []model.Status, updates map[string]interface{}) (bool, error)
	AddTransition(ctx context.Context, t *model.OrderTransition) error
	List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error)
	// ListExpiredPending 已过支付期限的待支付订单ID
	ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error)
	CountByStatus(ctx context.Context, status model.Status) (int64, error)
	SumPaid(ctx context.Context) (decimal.Decimal, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return database.Conn(ctx, r.db).Omit("Transitions").Create(order).Error
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := database.Conn(ctx, r.db).Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByIDForUpdate(ctx context.Context, id string) (*model.Order, error) {
	db := database.Conn(ctx, r.db)

	var order model.Order
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	if err := db.Where("order_id = ?", id).Order("created_at ASC").Find(&order.Items).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetDetail(ctx context.Context, id string) (*model.Order, error) {
	var order model.Order
	err := database.Conn(ctx, r.db).
		Preload("Items").
		Preload("Transitions", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, from []model.Status, updates map[string]interface{}) (bool, error) {
	result := database.Conn(ctx, r.db).Model(&model.Order{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *orderRepository) AddTransition(ctx context.Context, t *model.OrderTransition) error {
	return database.Conn(ctx, r.db).Create(t).Error
}

func (r *orderRepository) List(ctx context.Context, f OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Order{})
	if f.UserID != "" {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Preload("Items").
		Order("created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) ListExpiredPending(ctx context.Context, now time.Time, limit int) ([]string, error) {
	var ids []string
	err := database.Conn(ctx, r.db).Model(&model.Order{}).
		Where("status = ? AND expired_at <= ?", model.StatusPending, now).
		Order("expired_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *orderRepository) CountByStatus(ctx context.Context, status model.Status) (int64, error) {
	var total int64
	err := database.Conn(ctx, r.db).Model(&model.Order{}).Where("status = ?", status).Count(&total).Error
	return total, err
}

func (r *orderRepository) SumPaid(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := database.Conn(ctx, r.db).Model(&model.Order{}).
		Where("status = ?", model.StatusPaid).
		Select("COALESCE(SUM(total_amount), 0)").
		Row().Scan(&total)
	return total, err
}
