package service

import (
	"context"
	"time"

	catalogservice "learnhub/internal/domain/catalog/service"
	licenseservice "learnhub/internal/domain/license/service"
	"learnhub/internal/domain/progress/model"
	"learnhub/internal/domain/progress/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/pkg/logger"

	"go.uber.org/zap"
)

// SaveInput 上报的学习进度
type SaveInput struct {
	CourseID    string `json:"courseId" binding:"required,uuid"`
	ChapterID   string `json:"chapterId" binding:"required,uuid"`
	Progress    int    `json:"progress" binding:"min=0"`
	Duration    int    `json:"duration" binding:"min=0"`
	IsCompleted bool   `json:"isCompleted"`
}

// ProgressService 学习进度
type ProgressService struct {
	repo    repository.ProgressRepository
	access  licenseservice.AccessChecker
	catalog catalogservice.Reader
	now     func() time.Time
}

func NewProgressService(repo repository.ProgressRepository, access licenseservice.AccessChecker, catalog catalogservice.Reader) *ProgressService {
	return &ProgressService{
		repo:    repo,
		access:  access,
		catalog: catalog,
		now:     time.Now,
	}
}

// Save 保存进度，只有能学习该章节的用户才能上报
func (s *ProgressService) Save(ctx context.Context, userID string, in SaveInput) (*model.UserProgress, error) {
	if userID == "" {
		return nil, apperr.Forbidden("login required")
	}
	if in.Progress < 0 || in.Duration < 0 {
		return nil, apperr.Validation("progress and duration must not be negative")
	}
	if in.Duration > 0 && in.Progress > in.Duration {
		in.Progress = in.Duration
	}

	// 章节必须属于该课程
	if _, err := s.catalog.GetChapter(ctx, in.CourseID, in.ChapterID); err != nil {
		return nil, err
	}
	access, err := s.access.CheckAccess(ctx, userID, in.CourseID, in.ChapterID)
	if err != nil {
		return nil, err
	}
	if !access.HasAccess {
		return nil, apperr.Forbidden("no access to this chapter")
	}

	now := s.now()
	p := &model.UserProgress{
		UserID:        userID,
		CourseID:      in.CourseID,
		ChapterID:     in.ChapterID,
		Progress:      in.Progress,
		Duration:      in.Duration,
		IsCompleted:   in.IsCompleted,
		LastWatchedAt: now,
	}
	if in.IsCompleted {
		p.CompletedAt = &now
	}
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, apperr.Storage(err, "save progress")
	}

	saved, err := s.repo.Get(ctx, userID, in.ChapterID)
	if err != nil {
		return nil, apperr.Storage(err, "load progress")
	}
	logger.Log.Debug("progress saved",
		zap.String("userID", userID),
		zap.String("chapterID", in.ChapterID),
		zap.Int("progress", saved.Progress),
		zap.Bool("completed", saved.IsCompleted),
	)
	return saved, nil
}

// CourseProgress 用户在一门课程上的进度汇总
func (s *ProgressService) CourseProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, error) {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.ListByCourse(ctx, userID, courseID)
	if err != nil {
		return nil, apperr.Storage(err, "list progress")
	}

	summary := &model.CourseProgress{
		CourseID:     courseID,
		ChapterCount: course.ChapterCount,
		Chapters:     list,
	}
	if summary.Chapters == nil {
		summary.Chapters = []model.UserProgress{}
	}
	for _, p := range list {
		if p.IsCompleted {
			summary.CompletedCount++
		}
	}
	if len(list) > 0 {
		summary.LastChapterID = list[0].ChapterID
	}
	if course.ChapterCount > 0 {
		summary.Percent = min(100, summary.CompletedCount*100/course.ChapterCount)
	}
	return summary, nil
}
