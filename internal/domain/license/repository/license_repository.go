package repository

import (
	"context"
	"errors"
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	"learnhub/internal/domain/license/model"
	"learnhub/pkg/database"

	"gorm.io/gorm"
)

// LicenseRepository 授权仓库
type LicenseRepository interface {
	// FindActive 返回 (user, product) 当前 is_active 的授权，没有时返回 nil, nil
	FindActive(ctx context.Context, userID string, ref catalogmodel.ProductRef) (*model.License, error)
	// HasValidMembership 是否存在任一未过期的会员授权
	HasValidMembership(ctx context.Context, userID string, at time.Time) (bool, error)
	Create(ctx context.Context, license *model.License) error
	Deactivate(ctx context.Context, id string) error
	// DeactivateActive 停用 (user, product) 的有效授权，orderID 非空时只处理该订单产生的授权
	DeactivateActive(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string) (int64, error)
	ListActiveByUser(ctx context.Context, userID string) ([]model.License, error)
}

type licenseRepository struct {
	db *gorm.DB
}

func NewLicenseRepository(db *gorm.DB) LicenseRepository {
	return &licenseRepository{db: db}
}

func (r *licenseRepository) FindActive(ctx context.Context, userID string, ref catalogmodel.ProductRef) (*model.License, error) {
	var license model.License
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND product_type = ? AND product_id = ? AND is_active = ?", userID, ref.Type(), ref.ID(), true).
		First(&license).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *licenseRepository) HasValidMembership(ctx context.Context, userID string, at time.Time) (bool, error) {
	var count int64
	err := database.Conn(ctx, r.db).Model(&model.License{}).
		Where("user_id = ? AND product_type = ? AND is_active = ?", userID, catalogmodel.ProductMembership, true).
		Where("expire_at IS NULL OR expire_at > ?", at).
		Count(&count).Error
	return count > 0, err
}

func (r *licenseRepository) Create(ctx context.Context, license *model.License) error {
	return database.Conn(ctx, r.db).Create(license).Error
}

func (r *licenseRepository) Deactivate(ctx context.Context, id string) error {
	return database.Conn(ctx, r.db).Model(&model.License{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}

func (r *licenseRepository) DeactivateActive(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string) (int64, error) {
	query := database.Conn(ctx, r.db).Model(&model.License{}).
		Where("user_id = ? AND product_type = ? AND product_id = ? AND is_active = ?", userID, ref.Type(), ref.ID(), true)
	if orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	result := query.Update("is_active", false)
	return result.RowsAffected, result.Error
}

func (r *licenseRepository) ListActiveByUser(ctx context.Context, userID string) ([]model.License, error) {
	var licenses []model.License
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at DESC").
		Find(&licenses).Error
	return licenses, err
}
