package repository

import (
	"context"

	"learnhub/internal/domain/progress/model"
	"learnhub/pkg/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressRepository 学习进度仓库
type ProgressRepository interface {
	// Upsert 按 (user_id, chapter_id) 插入或更新，完成状态一旦为 true 不会被覆盖
	Upsert(ctx context.Context, p *model.UserProgress) error
	Get(ctx context.Context, userID, chapterID string) (*model.UserProgress, error)
	// ListByCourse 按最近学习时间倒序
	ListByCourse(ctx context.Context, userID, courseID string) ([]model.UserProgress, error)
}

type progressRepository struct {
	db *gorm.DB
}

func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

func (r *progressRepository) Upsert(ctx context.Context, p *model.UserProgress) error {
	return database.Conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.Set{
			{Column: clause.Column{Name: "progress"}, Value: gorm.Expr("excluded.progress")},
			{Column: clause.Column{Name: "duration"}, Value: gorm.Expr("excluded.duration")},
			{Column: clause.Column{Name: "last_watched_at"}, Value: gorm.Expr("excluded.last_watched_at")},
			{Column: clause.Column{Name: "updated_at"}, Value: gorm.Expr("excluded.updated_at")},
			{Column: clause.Column{Name: "is_completed"}, Value: gorm.Expr("user_progress.is_completed OR excluded.is_completed")},
			{Column: clause.Column{Name: "completed_at"}, Value: gorm.Expr("COALESCE(user_progress.completed_at, excluded.completed_at)")},
		},
	}).Create(p).Error
}

func (r *progressRepository) Get(ctx context.Context, userID, chapterID string) (*model.UserProgress, error) {
	var p model.UserProgress
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND chapter_id = ?", userID, chapterID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *progressRepository) ListByCourse(ctx context.Context, userID, courseID string) ([]model.UserProgress, error) {
	var list []model.UserProgress
	err := database.Conn(ctx, r.db).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Order("last_watched_at DESC").
		Find(&list).Error
	return list, err
}
