package repository

import (
	"context"

	"learnhub/internal/domain/order/model"
	"learnhub/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository 站点配置仓库
type SettingRepository interface {
	Get(ctx context.Context, key string) (*model.SiteSetting, error)
	Upsert(ctx context.Context, setting *model.SiteSetting) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Get(ctx context.Context, key string) (*model.SiteSetting, error) {
	var setting model.SiteSetting
	if err := database.Conn(ctx, r.db).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingRepository) Upsert(ctx context.Context, setting *model.SiteSetting) error {
	return database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(setting).Error
}
