package service

import (
	"context"
	"fmt"
	"time"

	catalogmodel "learnhub/internal/domain/catalog/model"
	catalogservice "learnhub/internal/domain/catalog/service"
	"learnhub/internal/domain/license/model"
	"learnhub/internal/domain/license/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/pkg/database"
	"learnhub/pkg/logger"
	"learnhub/pkg/metrics"

	"go.uber.org/zap"
)

// Granter 订单模块使用的授权接口
type Granter interface {
	Grant(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string, at time.Time) (*model.License, error)
	Revoke(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string) (int64, error)
	HasValidLicense(ctx context.Context, userID string, ref catalogmodel.ProductRef, at time.Time) (bool, error)
}

// AccessChecker 学习进度等模块使用的访问检查接口
type AccessChecker interface {
	CheckAccess(ctx context.Context, userID, courseID, chapterID string) (model.Access, error)
}

// LicenseService 授权服务
type LicenseService struct {
	repo    repository.LicenseRepository
	catalog catalogservice.Reader
	tx      database.Transactor
	metrics *metrics.MetricsCollector
	now     func() time.Time
}

func NewLicenseService(repo repository.LicenseRepository, catalog catalogservice.Reader, tx database.Transactor, m *metrics.MetricsCollector) *LicenseService {
	return &LicenseService{
		repo:    repo,
		catalog: catalog,
		tx:      tx,
		metrics: m,
		now:     time.Now,
	}
}

var (
	_ Granter       = (*LicenseService)(nil)
	_ AccessChecker = (*LicenseService)(nil)
)

func (s *LicenseService) record(op string, ref catalogmodel.ProductRef) {
	if s.metrics != nil {
		s.metrics.RecordLicense(op, string(ref.Type()))
	}
}

// expireAt 会员按方案天数计算到期时间，课程永久有效
func (s *LicenseService) expireAt(ctx context.Context, ref catalogmodel.ProductRef, at time.Time) (*time.Time, error) {
	switch ref.(type) {
	case catalogmodel.CourseRef:
		return nil, nil
	case catalogmodel.MembershipRef:
		product, err := s.catalog.GetProduct(ctx, ref)
		if err != nil {
			return nil, err
		}
		if product.DurationDays <= 0 {
			return nil, apperr.Validation("membership plan has no duration")
		}
		// 按整天数计算，不受夏令时切换影响
		t := at.Add(time.Duration(product.DurationDays) * 24 * time.Hour)
		return &t, nil
	default:
		return nil, apperr.Validation(fmt.Sprintf("unsupported product %T", ref))
	}
}

// Grant 授予商品使用权，幂等
// 已有未过期的有效授权时直接返回；有效但已过期的授权先停用再新建
func (s *LicenseService) Grant(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string, at time.Time) (*model.License, error) {
	var granted *model.License
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindActive(ctx, userID, ref)
		if err != nil {
			return apperr.Storage(err, "find license")
		}
		if existing != nil {
			if existing.ValidAt(at) {
				granted = existing
				return nil
			}
			if err := s.repo.Deactivate(ctx, existing.ID); err != nil {
				return apperr.Storage(err, "deactivate expired license")
			}
		}

		expire, err := s.expireAt(ctx, ref, at)
		if err != nil {
			return err
		}
		license := &model.License{
			UserID:      userID,
			ProductType: ref.Type(),
			ProductID:   ref.ID(),
			StartAt:     at,
			ExpireAt:    expire,
			IsActive:    true,
		}
		if orderID != "" {
			license.OrderID = &orderID
		}
		if err := s.repo.Create(ctx, license); err != nil {
			return apperr.Storage(err, "create license")
		}
		granted = license
		s.record("grant", ref)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return granted, nil
}

// Revoke 停用授权，不删除记录
// orderID 非空时只停用该订单产生的授权，返回停用数量
func (s *LicenseService) Revoke(ctx context.Context, userID string, ref catalogmodel.ProductRef, orderID string) (int64, error) {
	n, err := s.repo.DeactivateActive(ctx, userID, ref, orderID)
	if err != nil {
		return 0, apperr.Storage(err, "revoke license")
	}
	if n > 0 {
		s.record("revoke", ref)
	} else {
		logger.Log.Warn("no active license to revoke",
			zap.String("userID", userID),
			zap.String("product", string(ref.Type())+":"+ref.ID()),
			zap.String("orderID", orderID),
		)
	}
	return n, nil
}

// HasValidLicense 是否持有该商品的有效授权
func (s *LicenseService) HasValidLicense(ctx context.Context, userID string, ref catalogmodel.ProductRef, at time.Time) (bool, error) {
	license, err := s.repo.FindActive(ctx, userID, ref)
	if err != nil {
		return false, apperr.Storage(err, "find license")
	}
	return license != nil && license.ValidAt(at), nil
}

// CheckAccess 判断用户能否学习课程（或课程中的某一章）
// 依次检查：免费课程/试看章节、课程授权、会员授权
func (s *LicenseService) CheckAccess(ctx context.Context, userID, courseID, chapterID string) (model.Access, error) {
	course, err := s.catalog.GetCourse(ctx, courseID)
	if err != nil {
		return model.NoAccess, err
	}
	if course.IsFree() {
		return model.Access{HasAccess: true, Via: model.ViaFree}, nil
	}
	if chapterID != "" {
		chapter, err := s.catalog.GetChapter(ctx, courseID, chapterID)
		if err != nil {
			return model.NoAccess, err
		}
		if chapter.IsFree {
			return model.Access{HasAccess: true, Via: model.ViaFree}, nil
		}
	}
	if userID == "" {
		return model.NoAccess, nil
	}

	now := s.now()
	ok, err := s.HasValidLicense(ctx, userID, catalogmodel.CourseRef{CourseID: courseID}, now)
	if err != nil {
		return model.NoAccess, err
	}
	if ok {
		return model.Access{HasAccess: true, Via: model.ViaCourse}, nil
	}

	if course.MemberCanAccess() {
		member, err := s.repo.HasValidMembership(ctx, userID, now)
		if err != nil {
			return model.NoAccess, apperr.Storage(err, "check membership")
		}
		if member {
			return model.Access{HasAccess: true, Via: model.ViaMembership}, nil
		}
	}
	return model.NoAccess, nil
}

// ChapterContent 有权限时返回完整章节内容
func (s *LicenseService) ChapterContent(ctx context.Context, userID, courseID, chapterID string) (*catalogmodel.Chapter, model.Access, error) {
	access, err := s.CheckAccess(ctx, userID, courseID, chapterID)
	if err != nil {
		return nil, access, err
	}
	if !access.HasAccess {
		return nil, access, nil
	}
	chapter, err := s.catalog.GetChapter(ctx, courseID, chapterID)
	if err != nil {
		return nil, access, err
	}
	return chapter, access, nil
}

// ListMine 当前有效的授权
func (s *LicenseService) ListMine(ctx context.Context, userID string) ([]model.License, error) {
	licenses, err := s.repo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(err, "list licenses")
	}
	now := s.now()
	valid := licenses[:0]
	for _, l := range licenses {
		if l.ValidAt(now) {
			valid = append(valid, l)
		}
	}
	return valid, nil
}
