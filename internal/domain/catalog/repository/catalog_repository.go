package repository

import (
	"context"

	"learnhub/internal/domain/catalog/model"
	"learnhub/pkg/database"

	"gorm.io/gorm"
)

// CourseFilter 课程列表筛选
type CourseFilter struct {
	Status model.CourseStatus
	Type   model.CourseType
	Offset int
	Limit  int
}

// CatalogRepository 课程目录仓库
type CatalogRepository interface {
	// 课程
	ListCourses(ctx context.Context, f CourseFilter) ([]model.Course, int64, error)
	GetCourseByID(ctx context.Context, id string) (*model.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	CreateCourse(ctx context.Context, course *model.Course) error
	UpdateCourse(ctx context.Context, course *model.Course) error
	DeleteCourse(ctx context.Context, id string) error
	CountCourses(ctx context.Context, status model.CourseStatus) (int64, error)

	// 章节
	ListChapters(ctx context.Context, courseID string) ([]model.Chapter, error)
	GetChapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error)
	CreateChapter(ctx context.Context, chapter *model.Chapter) error
	UpdateChapter(ctx context.Context, chapter *model.Chapter) error
	DeleteChapter(ctx context.Context, courseID, chapterID string) error
	ReorderChapters(ctx context.Context, courseID string, chapterIDs []string) error

	// 会员方案
	ListPlans(ctx context.Context, activeOnly bool) ([]model.MembershipPlan, error)
	GetPlan(ctx context.Context, id string) (*model.MembershipPlan, error)
	CreatePlan(ctx context.Context, plan *model.MembershipPlan) error
	UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListCourses(ctx context.Context, f CourseFilter) ([]model.Course, int64, error) {
	var courses []model.Course
	var total int64

	query := database.Conn(ctx, r.db).Model(&model.Course{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Type != "" {
		query = query.Where("type = ?", f.Type)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("sort_order ASC, created_at DESC").
		Offset(f.Offset).Limit(f.Limit).
		Find(&courses).Error
	return courses, total, err
}

func (r *catalogRepository) GetCourseByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *catalogRepository) GetCourseBySlug(ctx context.Context, slug string) (*model.Course, error) {
	var course model.Course
	err := database.Conn(ctx, r.db).
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC")
		}).
		Where("slug = ?", slug).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *catalogRepository) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var count int64
	query := database.Conn(ctx, r.db).Model(&model.Course{}).Where("slug = ?", slug)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *catalogRepository) CreateCourse(ctx context.Context, course *model.Course) error {
	return database.Conn(ctx, r.db).Omit("Chapters").Create(course).Error
}

func (r *catalogRepository) UpdateCourse(ctx context.Context, course *model.Course) error {
	return database.Conn(ctx, r.db).Omit("Chapters").Save(course).Error
}

func (r *catalogRepository) DeleteCourse(ctx context.Context, id string) error {
	result := database.Conn(ctx, r.db).Where("id = ?", id).Delete(&model.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *catalogRepository) CountCourses(ctx context.Context, status model.CourseStatus) (int64, error) {
	var total int64
	query := database.Conn(ctx, r.db).Model(&model.Course{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&total).Error
	return total, err
}

func (r *catalogRepository) ListChapters(ctx context.Context, courseID string) ([]model.Chapter, error) {
	var chapters []model.Chapter
	err := database.Conn(ctx, r.db).
		Where("course_id = ?", courseID).
		Order("sort_order ASC").
		Find(&chapters).Error
	return chapters, err
}

func (r *catalogRepository) GetChapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error) {
	var chapter model.Chapter
	err := database.Conn(ctx, r.db).
		Where("id = ? AND course_id = ?", chapterID, courseID).
		First(&chapter).Error
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// CreateChapter 创建章节并更新课程的章节数，调用方负责开启事务
func (r *catalogRepository) CreateChapter(ctx context.Context, chapter *model.Chapter) error {
	db := database.Conn(ctx, r.db)
	if err := db.Create(chapter).Error; err != nil {
		return err
	}
	return db.Model(&model.Course{}).
		Where("id = ?", chapter.CourseID).
		UpdateColumn("chapter_count", gorm.Expr("chapter_count + 1")).Error
}

func (r *catalogRepository) UpdateChapter(ctx context.Context, chapter *model.Chapter) error {
	return database.Conn(ctx, r.db).Save(chapter).Error
}

// DeleteChapter 删除章节并更新课程的章节数，调用方负责开启事务
func (r *catalogRepository) DeleteChapter(ctx context.Context, courseID, chapterID string) error {
	db := database.Conn(ctx, r.db)
	result := db.Where("id = ? AND course_id = ?", chapterID, courseID).Delete(&model.Chapter{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return db.Model(&model.Course{}).
		Where("id = ? AND chapter_count > 0", courseID).
		UpdateColumn("chapter_count", gorm.Expr("chapter_count - 1")).Error
}

// ReorderChapters 按 chapterIDs 的顺序重写 sort_order，调用方负责开启事务
func (r *catalogRepository) ReorderChapters(ctx context.Context, courseID string, chapterIDs []string) error {
	db := database.Conn(ctx, r.db)
	for i, id := range chapterIDs {
		result := db.Model(&model.Chapter{}).
			Where("id = ? AND course_id = ?", id, courseID).
			UpdateColumn("sort_order", i+1)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}

func (r *catalogRepository) ListPlans(ctx context.Context, activeOnly bool) ([]model.MembershipPlan, error) {
	var plans []model.MembershipPlan
	query := database.Conn(ctx, r.db)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("sort_order ASC, price ASC").Find(&plans).Error
	return plans, err
}

func (r *catalogRepository) GetPlan(ctx context.Context, id string) (*model.MembershipPlan, error) {
	var plan model.MembershipPlan
	if err := database.Conn(ctx, r.db).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *catalogRepository) CreatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	return database.Conn(ctx, r.db).Create(plan).Error
}

func (r *catalogRepository) UpdatePlan(ctx context.Context, plan *model.MembershipPlan) error {
	return database.Conn(ctx, r.db).Save(plan).Error
}
