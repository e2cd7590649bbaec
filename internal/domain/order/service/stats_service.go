package service

import (
	"context"

	"learnhub/internal/domain/order/model"
	"learnhub/internal/domain/order/repository"
	"learnhub/internal/pkg/apperr"

	"golang.org/x/sync/errgroup"
)

// CourseCounter 由 catalog 模块提供
type CourseCounter interface {
	CountPublishedCourses(ctx context.Context) (int64, error)
}

// UserCounter 由 user 模块提供
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// StatsService 后台首页统计
type StatsService struct {
	repo    repository.OrderRepository
	courses CourseCounter
	users   UserCounter
}

func NewStatsService(repo repository.OrderRepository, courses CourseCounter, users UserCounter) *StatsService {
	return &StatsService{repo: repo, courses: courses, users: users}
}

// Stats 并发查询各项统计
func (s *StatsService) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.PaidCount, err = s.repo.CountByStatus(ctx, model.StatusPaid)
		return wrapStorage(err, "count paid orders")
	})
	g.Go(func() (err error) {
		stats.AwaitingCount, err = s.repo.CountByStatus(ctx, model.StatusAwaitingConfirmation)
		return wrapStorage(err, "count awaiting orders")
	})
	g.Go(func() (err error) {
		stats.Revenue, err = s.repo.SumPaid(ctx)
		return wrapStorage(err, "sum revenue")
	})
	if s.courses != nil {
		g.Go(func() (err error) {
			stats.CourseCount, err = s.courses.CountPublishedCourses(ctx)
			return err
		})
	}
	if s.users != nil {
		g.Go(func() (err error) {
			stats.UserCount, err = s.users.CountUsers(ctx)
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func wrapStorage(err error, op string) error {
	if err == nil {
		return nil
	}
	return apperr.Storage(err, op)
}
