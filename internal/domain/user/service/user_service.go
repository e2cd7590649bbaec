package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"learnhub/internal/domain/user/model"
	"learnhub/internal/domain/user/repository"
	"learnhub/internal/pkg/apperr"
	"learnhub/internal/pkg/notify"
	"learnhub/internal/pkg/otp"
	"learnhub/pkg/utils"

	"gorm.io/gorm"
)

// LoginResult 登录结果
type LoginResult struct {
	Token    string      `json:"token"`
	ExpireAt *time.Time  `json:"expireAt"`
	User     *model.User `json:"user"`
}

// ProfileInput 资料更新
type ProfileInput struct {
	Nickname  string `json:"nickname"`
	AvatarURL string `json:"avatarUrl"`
	Email     string `json:"email"`
}

// UserService 用户服务接口
type UserService interface {
	LoginOrRegister(ctx context.Context, mobile, code string) (*LoginResult, error)
	SendOTP(ctx context.Context, mobile string) error
	GetUsers(ctx context.Context, page utils.Pagination) ([]model.User, int64, error)
	GetUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, input ProfileInput) (*model.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// Service 用户服务实现，同时作为通知的接收人解析器
type Service struct {
	repo repository.UserRepository
	otp  otp.OTPService
	now  func() time.Time
}

// NewUserService 创建用户服务
func NewUserService(repo repository.UserRepository, otp otp.OTPService) *Service {
	return &Service{repo: repo, otp: otp, now: time.Now}
}

// LoginOrRegister 登录或注册
func (s *Service) LoginOrRegister(ctx context.Context, mobile, code string) (*LoginResult, error) {
	if len(mobile) < 4 {
		return nil, apperr.Validation("invalid mobile")
	}

	// 1. 验证验证码
	if !s.otp.Verify(ctx, mobile, code) {
		return nil, apperr.Validation("invalid verification code")
	}

	// 2. 查询用户是否存在
	user, err := s.repo.GetByMobile(ctx, mobile)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Storage(err, "load user")
		}
		// 3. 不存在则注册
		user = &model.User{
			Mobile:   mobile,
			Nickname: "User_" + mobile[len(mobile)-4:], // 默认昵称
			Role:     model.RoleUser,
			Status:   model.StatusNormal,
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, apperr.Storage(err, "create user")
		}
	}

	// 4. 检查用户状态
	if user.Status == model.StatusBanned {
		if user.BannedUntil == nil || s.now().Before(*user.BannedUntil) {
			return nil, apperr.Forbidden("account is banned")
		}
		user.Status = model.StatusNormal
		user.BannedUntil = nil
	}
	if user.Status == model.StatusDeleted {
		return nil, apperr.Forbidden("account has been deleted")
	}

	// 5. 生成 Token
	token, tokenExpireAt, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, err
	}

	// 6. 保存token到用户表
	user.Token = token
	user.TokenExpireAt = tokenExpireAt
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.Storage(err, "update user")
	}

	return &LoginResult{Token: token, ExpireAt: tokenExpireAt, User: user}, nil
}

func (s *Service) SendOTP(ctx context.Context, mobile string) error {
	if _, err := s.otp.Send(ctx, mobile); err != nil {
		if errors.Is(err, otp.ErrTooFrequent) {
			return apperr.Validation(err.Error())
		}
		return apperr.Storage(err, "send otp")
	}
	return nil
}

// GetUsers 获取用户列表（分页）
func (s *Service) GetUsers(ctx context.Context, page utils.Pagination) ([]model.User, int64, error) {
	offset, limit := page.GetPageOffset()
	users, total, err := s.repo.GetList(ctx, offset, limit)
	if err != nil {
		return nil, 0, apperr.Storage(err, "list users")
	}
	return users, total, nil
}

// GetUser 获取单个用户
func (s *Service) GetUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Storage(err, "load user")
	}
	return user, nil
}

// UpdateProfile 更新资料，邮箱用于接收订单通知
func (s *Service) UpdateProfile(ctx context.Context, id string, input ProfileInput) (*model.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != "" {
		addr, err := mail.ParseAddress(input.Email)
		if err != nil {
			return nil, apperr.Validation("invalid email")
		}
		user.Email = strings.ToLower(addr.Address)
	}
	if input.Nickname != "" {
		user.Nickname = input.Nickname
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, apperr.Storage(err, "update user")
	}
	return user, nil
}

func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.repo.Count(ctx)
	if err != nil {
		return 0, apperr.Storage(err, "count users")
	}
	return n, nil
}

// Recipient 实现 notify.RecipientResolver
func (s *Service) Recipient(ctx context.Context, userID string) (notify.Recipient, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return notify.Recipient{}, err
	}
	return toRecipient(user), nil
}

// Admins 实现 notify.RecipientResolver
func (s *Service) Admins(ctx context.Context) ([]notify.Recipient, error) {
	admins, err := s.repo.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]notify.Recipient, 0, len(admins))
	for i := range admins {
		out = append(out, toRecipient(&admins[i]))
	}
	return out, nil
}

func toRecipient(u *model.User) notify.Recipient {
	return notify.Recipient{UserID: u.ID, Email: u.Email, Nickname: u.Nickname}
}

var (
	_ UserService              = (*Service)(nil)
	_ notify.RecipientResolver = (*Service)(nil)
)
