package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"learnhub/internal/domain/catalog/model"
	"learnhub/internal/domain/catalog/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/pkg/cache"
	"learnhub/pkg/database"
	"learnhub/pkg/logger"
	"learnhub/pkg/metrics"
	"learnhub/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	cacheTTL    = 10 * time.Minute
	cachePrefix = "catalog:"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Reader 订单与授权模块依赖的只读目录接口
type Reader interface {
	GetProduct(ctx context.Context, ref model.ProductRef) (model.Product, error)
	GetCourse(ctx context.Context, id string) (*model.Course, error)
	GetChapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error)
}

// CourseInput 课程创建/更新参数
type CourseInput struct {
	Slug             string           `json:"slug" binding:"required"`
	Title            string           `json:"title" binding:"required"`
	Description      string           `json:"description"`
	CoverImage       string           `json:"coverImage"`
	Type             model.CourseType `json:"type" binding:"required"`
	Price            decimal.Decimal  `json:"price"`
	OriginalPrice    decimal.Decimal  `json:"originalPrice"`
	Instructor       string           `json:"instructor"`
	MemberAccessible bool             `json:"memberAccessible"`
	SortOrder        int              `json:"sortOrder"`
}

// ChapterInput 章节创建/更新参数
type ChapterInput struct {
	Title     string            `json:"title" binding:"required"`
	Type      model.ChapterType `json:"type"`
	SortOrder int               `json:"sortOrder"`
	Duration  int               `json:"duration"`
	VideoURL  string            `json:"videoUrl"`
	Content   string            `json:"content"`
	IsFree    bool              `json:"isFree"`
}

// PlanInput 会员方案创建/更新参数
type PlanInput struct {
	Code          string          `json:"code" binding:"required"`
	Name          string          `json:"name" binding:"required"`
	Type          model.PlanType  `json:"type" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	DurationDays  int             `json:"durationDays" binding:"required"`
	Features      []string        `json:"features"`
	IsActive      *bool           `json:"isActive"`
	SortOrder     int             `json:"sortOrder"`
}

// CoursePage 课程分页结果，可缓存
type CoursePage struct {
	Courses []model.Course `json:"courses"`
	Total   int64          `json:"total"`
}

// CatalogService 课程目录服务
type CatalogService struct {
	repo    repository.CatalogRepository
	tx      database.Transactor
	cache   cache.CacheService
	metrics *metrics.MetricsCollector
	group   singleflight.Group
}

// NewCatalogService cache 为 nil 时直接读库
func NewCatalogService(repo repository.CatalogRepository, tx database.Transactor, c cache.CacheService, m *metrics.MetricsCollector) *CatalogService {
	return &CatalogService{repo: repo, tx: tx, cache: c, metrics: m}
}

var _ Reader = (*CatalogService)(nil)

// cachedLoad 先读缓存，未命中时用 singleflight 合并并发回源
func cachedLoad[T any](ctx context.Context, s *CatalogService, key string, load func(ctx context.Context) (T, error)) (T, error) {
	var out T
	if s.cache != nil {
		err := s.cache.Get(ctx, cachePrefix+key, &out)
		if err == nil {
			s.recordCache(true)
			return out, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Log.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
		}
		s.recordCache(false)
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		v, err := load(ctx)
		if err != nil {
			return v, err
		}
		if s.cache != nil {
			if err := s.cache.Set(ctx, cachePrefix+key, v, cacheTTL); err != nil {
				logger.Log.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
		return v, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}

func (s *CatalogService) recordCache(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCache("catalog", hit)
	}
}

// invalidate 后台写操作后清理目录缓存
func (s *CatalogService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePattern(ctx, cachePrefix+"*"); err != nil {
		logger.Log.Warn("catalog cache invalidate failed", zap.Error(err))
	}
}

func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(what + " not found")
	}
	return apperr.Storage(err, "load "+what)
}

// ---- 前台 ----

// ListPublishedCourses 已发布课程列表
func (s *CatalogService) ListPublishedCourses(ctx context.Context, page utils.Pagination, courseType model.CourseType) (*CoursePage, error) {
	offset, limit := page.GetPageOffset()
	key := fmt.Sprintf("courses:%s:%d:%d", courseType, page.Page, limit)
	return cachedLoad(ctx, s, key, func(ctx context.Context) (*CoursePage, error) {
		courses, total, err := s.repo.ListCourses(ctx, repository.CourseFilter{
			Status: model.CoursePublished,
			Type:   courseType,
			Offset: offset,
			Limit:  limit,
		})
		if err != nil {
			return nil, apperr.Storage(err, "list courses")
		}
		return &CoursePage{Courses: courses, Total: total}, nil
	})
}

// GetPublishedCourse 课程详情，未免费的章节只返回目录
func (s *CatalogService) GetPublishedCourse(ctx context.Context, slug string) (*model.Course, error) {
	return cachedLoad(ctx, s, "course:"+slug, func(ctx context.Context) (*model.Course, error) {
		course, err := s.repo.GetCourseBySlug(ctx, slug)
		if err != nil {
			return nil, notFoundOr(err, "course")
		}
		if course.Status != model.CoursePublished {
			return nil, apperr.NotFound("course not found")
		}
		for i := range course.Chapters {
			course.Chapters[i] = course.Chapters[i].Outline()
		}
		return course, nil
	})
}

// ListActivePlans 上架中的会员方案
func (s *CatalogService) ListActivePlans(ctx context.Context) ([]model.MembershipPlan, error) {
	return cachedLoad(ctx, s, "plans:active", func(ctx context.Context) ([]model.MembershipPlan, error) {
		plans, err := s.repo.ListPlans(ctx, true)
		if err != nil {
			return nil, apperr.Storage(err, "list plans")
		}
		return plans, nil
	})
}

// ---- Reader ----

// GetProduct 读取商品当前价格与可购买状态，不走缓存
func (s *CatalogService) GetProduct(ctx context.Context, ref model.ProductRef) (model.Product, error) {
	switch r := ref.(type) {
	case model.CourseRef:
		course, err := s.repo.GetCourseByID(ctx, r.CourseID)
		if err != nil {
			return model.Product{}, notFoundOr(err, "course")
		}
		p := model.Product{
			Ref:         r,
			Title:       course.Title,
			Price:       course.Price,
			IsFree:      course.IsFree() || course.Price.IsZero(),
			Purchasable: true,
		}
		if course.Status != model.CoursePublished {
			p.Purchasable = false
			p.Reason = "course is not published"
		}
		return p, nil
	case model.MembershipRef:
		plan, err := s.repo.GetPlan(ctx, r.PlanID)
		if err != nil {
			return model.Product{}, notFoundOr(err, "membership plan")
		}
		p := model.Product{
			Ref:          r,
			Title:        plan.Name,
			Price:        plan.Price,
			IsFree:       plan.Price.IsZero(),
			Purchasable:  plan.IsActive,
			DurationDays: plan.DurationDays,
		}
		if !plan.IsActive {
			p.Reason = "membership plan is not active"
		}
		return p, nil
	default:
		return model.Product{}, apperr.Validation(fmt.Sprintf("unsupported product %T", ref))
	}
}

func (s *CatalogService) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	course, err := s.repo.GetCourseByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "course")
	}
	return course, nil
}

func (s *CatalogService) GetChapter(ctx context.Context, courseID, chapterID string) (*model.Chapter, error) {
	chapter, err := s.repo.GetChapter(ctx, courseID, chapterID)
	if err != nil {
		return nil, notFoundOr(err, "chapter")
	}
	return chapter, nil
}

// CountPublishedCourses 统计用
func (s *CatalogService) CountPublishedCourses(ctx context.Context) (int64, error) {
	n, err := s.repo.CountCourses(ctx, model.CoursePublished)
	if err != nil {
		return 0, apperr.Storage(err, "count courses")
	}
	return n, nil
}

// ---- 后台：课程 ----

func validateCourse(in *CourseInput) error {
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	if !slugPattern.MatchString(in.Slug) {
		return apperr.Validation("slug may only contain lowercase letters, digits and hyphens")
	}
	if !in.Type.Valid() {
		return apperr.Validation("invalid course type")
	}
	if in.Price.IsNegative() || in.OriginalPrice.IsNegative() {
		return apperr.Validation("price must not be negative")
	}
	if in.Type == model.CourseFree && !in.Price.IsZero() {
		return apperr.Validation("free course must have zero price")
	}
	if in.Type == model.CoursePaid && in.Price.IsZero() {
		return apperr.Validation("paid course must have a price")
	}
	return nil
}

func (in CourseInput) apply(c *model.Course) {
	c.Slug = in.Slug
	c.Title = in.Title
	c.Description = in.Description
	c.CoverImage = in.CoverImage
	c.Type = in.Type
	c.Price = in.Price.Round(2)
	c.OriginalPrice = in.OriginalPrice.Round(2)
	c.Instructor = in.Instructor
	c.MemberAccessible = in.MemberAccessible
	c.SortOrder = in.SortOrder
}

// AdminListCourses 后台课程列表，可按状态筛选
func (s *CatalogService) AdminListCourses(ctx context.Context, page utils.Pagination, status model.CourseStatus) ([]model.Course, int64, error) {
	offset, limit := page.GetPageOffset()
	courses, total, err := s.repo.ListCourses(ctx, repository.CourseFilter{Status: status, Offset: offset, Limit: limit})
	if err != nil {
		return nil, 0, apperr.Storage(err, "list courses")
	}
	return courses, total, nil
}

func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	if err := validateCourse(&in); err != nil {
		return nil, err
	}
	exists, err := s.repo.SlugExists(ctx, in.Slug, "")
	if err != nil {
		return nil, apperr.Storage(err, "check slug")
	}
	if exists {
		return nil, apperr.Validation("slug already exists")
	}

	course := &model.Course{Status: model.CourseDraft}
	in.apply(course)
	if err := s.repo.CreateCourse(ctx, course); err != nil {
		return nil, apperr.Storage(err, "create course")
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id string, in CourseInput) (*model.Course, error) {
	if err := validateCourse(&in); err != nil {
		return nil, err
	}
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.SlugExists(ctx, in.Slug, id)
	if err != nil {
		return nil, apperr.Storage(err, "check slug")
	}
	if exists {
		return nil, apperr.Validation("slug already exists")
	}

	in.apply(course)
	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return nil, apperr.Storage(err, "update course")
	}
	s.invalidate(ctx)
	return course, nil
}

// SetCourseStatus 发布 / 下架 / 归档
func (s *CatalogService) SetCourseStatus(ctx context.Context, id string, status model.CourseStatus) (*model.Course, error) {
	if !status.Valid() {
		return nil, apperr.Validation("invalid course status")
	}
	course, err := s.GetCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	course.Status = status
	if err := s.repo.UpdateCourse(ctx, course); err != nil {
		return nil, apperr.Storage(err, "update course")
	}
	s.invalidate(ctx)
	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id string) error {
	if err := s.repo.DeleteCourse(ctx, id); err != nil {
		return notFoundOr(err, "course")
	}
	s.invalidate(ctx)
	return nil
}

// ---- 后台：章节 ----

func (in ChapterInput) apply(c *model.Chapter) {
	c.Title = in.Title
	c.Type = in.Type
	if c.Type == "" {
		c.Type = model.ChapterVideo
	}
	c.SortOrder = in.SortOrder
	c.Duration = in.Duration
	c.VideoURL = in.VideoURL
	c.Content = in.Content
	c.IsFree = in.IsFree
}

func (s *CatalogService) ListChapters(ctx context.Context, courseID string) ([]model.Chapter, error) {
	if _, err := s.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	chapters, err := s.repo.ListChapters(ctx, courseID)
	if err != nil {
		return nil, apperr.Storage(err, "list chapters")
	}
	return chapters, nil
}

func (s *CatalogService) CreateChapter(ctx context.Context, courseID string, in ChapterInput) (*model.Chapter, error) {
	if in.Type != "" && in.Type != model.ChapterVideo && in.Type != model.ChapterArticle {
		return nil, apperr.Validation("invalid chapter type")
	}
	chapter := &model.Chapter{CourseID: courseID}
	in.apply(chapter)

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.GetCourse(ctx, courseID); err != nil {
			return err
		}
		if err := s.repo.CreateChapter(ctx, chapter); err != nil {
			return apperr.Storage(err, "create chapter")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return chapter, nil
}

func (s *CatalogService) UpdateChapter(ctx context.Context, courseID, chapterID string, in ChapterInput) (*model.Chapter, error) {
	if in.Type != "" && in.Type != model.ChapterVideo && in.Type != model.ChapterArticle {
		return nil, apperr.Validation("invalid chapter type")
	}
	chapter, err := s.GetChapter(ctx, courseID, chapterID)
	if err != nil {
		return nil, err
	}
	in.apply(chapter)
	if err := s.repo.UpdateChapter(ctx, chapter); err != nil {
		return nil, apperr.Storage(err, "update chapter")
	}
	s.invalidate(ctx)
	return chapter, nil
}

func (s *CatalogService) DeleteChapter(ctx context.Context, courseID, chapterID string) error {
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.DeleteChapter(ctx, courseID, chapterID); err != nil {
			return notFoundOr(err, "chapter")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ReorderChapters 按给定顺序重排章节，任何一个章节不属于该课程时整体回滚
func (s *CatalogService) ReorderChapters(ctx context.Context, courseID string, chapterIDs []string) error {
	if len(chapterIDs) == 0 {
		return apperr.Validation("chapterIds is required")
	}
	seen := make(map[string]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		if seen[id] {
			return apperr.Validation("duplicate chapter id " + id)
		}
		seen[id] = true
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.ReorderChapters(ctx, courseID, chapterIDs); err != nil {
			return notFoundOr(err, "chapter")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// ---- 后台：会员方案 ----

func validatePlan(in PlanInput) error {
	if !in.Type.Valid() {
		return apperr.Validation("invalid plan type")
	}
	if in.DurationDays <= 0 {
		return apperr.Validation("durationDays must be positive")
	}
	if !in.Price.IsPositive() {
		return apperr.Validation("plan price must be positive")
	}
	return nil
}

func (in PlanInput) apply(p *model.MembershipPlan) {
	p.Code = in.Code
	p.Name = in.Name
	p.Type = in.Type
	p.Price = in.Price.Round(2)
	p.OriginalPrice = in.OriginalPrice.Round(2)
	p.DurationDays = in.DurationDays
	p.Features = in.Features
	p.SortOrder = in.SortOrder
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
}

func (s *CatalogService) AdminListPlans(ctx context.Context) ([]model.MembershipPlan, error) {
	plans, err := s.repo.ListPlans(ctx, false)
	if err != nil {
		return nil, apperr.Storage(err, "list plans")
	}
	return plans, nil
}

func (s *CatalogService) CreatePlan(ctx context.Context, in PlanInput) (*model.MembershipPlan, error) {
	if err := validatePlan(in); err != nil {
		return nil, err
	}
	plan := &model.MembershipPlan{IsActive: true}
	in.apply(plan)
	if err := s.repo.CreatePlan(ctx, plan); err != nil {
		return nil, apperr.Storage(err, "create plan")
	}
	s.invalidate(ctx)
	return plan, nil
}

func (s *CatalogService) UpdatePlan(ctx context.Context, id string, in PlanInput) (*model.MembershipPlan, error) {
	if err := validatePlan(in); err != nil {
		return nil, err
	}
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "membership plan")
	}
	in.apply(plan)
	if err := s.repo.UpdatePlan(ctx, plan); err != nil {
		return nil, apperr.Storage(err, "update plan")
	}
	s.invalidate(ctx)
	return plan, nil
}
