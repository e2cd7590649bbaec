package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"learnhub/internal/domain/user/model"
	"learnhub/internal/pkg/apperr"
	"learnhub/internal/pkg/config"
	"learnhub/internal/pkg/otp"
	"learnhub/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByMobile(ctx context.Context, mobile string) (*model.User, error) {
	args := m.Called(ctx, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetList(ctx context.Context, offset, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, offset, limit)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListAdmins(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockOTPService is a mock of OTPService
type MockOTPService struct {
	mock.Mock
}

func (m *MockOTPService) Send(ctx context.Context, mobile string) (string, error) {
	args := m.Called(ctx, mobile)
	return args.String(0), args.Error(1)
}

func (m *MockOTPService) Verify(ctx context.Context, mobile, code string) bool {
	args := m.Called(ctx, mobile, code)
	return args.Bool(0)
}

func createTestUser(id, mobile string) *model.User {
	u := &model.User{
		Mobile:   mobile,
		Nickname: "TestUser",
		Role:     model.RoleUser,
		Status:   model.StatusNormal,
	}
	u.ID = id
	return u
}

func init() {
	config.GlobalConfig.JWT = config.JWTConfig{Secret: "0123456789abcdef0123456789abcdef", Expire: 24}
}

func TestLoginOrRegister(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockOTP := new(MockOTPService)
	service := NewUserService(mockRepo, mockOTP)

	t.Run("New user registration success", func(t *testing.T) {
		mobile := "13800138000"
		code := "123456"

		mockOTP.On("Verify", ctx, mobile, code).Return(true)
		mockRepo.On("GetByMobile", ctx, mobile).Return(nil, gorm.ErrRecordNotFound)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*model.User")).Return(nil).Once()
		mockRepo.On("Update", ctx, mock.AnythingOfType("*model.User")).Return(nil).Once()

		result, err := service.LoginOrRegister(ctx, mobile, code)

		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "User_8000", result.User.Nickname)
		assert.Equal(t, model.RoleUser, result.User.Role)
		mockOTP.AssertExpectations(t)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Existing user login success", func(t *testing.T) {
		mobile := "13800138001"
		code := "123456"
		user := createTestUser("existing-user-id", mobile)

		mockOTP.On("Verify", ctx, mobile, code).Return(true)
		mockRepo.On("GetByMobile", ctx, mobile).Return(user, nil)
		mockRepo.On("Update", ctx, user).Return(nil).Once()

		result, err := service.LoginOrRegister(ctx, mobile, code)

		require.NoError(t, err)
		claims, err := utils.ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "existing-user-id", claims.UserID)
	})

	t.Run("Invalid verification code", func(t *testing.T) {
		mobile := "13800138002"
		code := "wrongcode"

		mockOTP.On("Verify", ctx, mobile, code).Return(false)

		result, err := service.LoginOrRegister(ctx, mobile, code)

		assert.Nil(t, result)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Contains(t, err.Error(), "invalid verification code")
	})

	t.Run("Banned user", func(t *testing.T) {
		mobile := "13800138003"
		user := createTestUser("banned-user-id", mobile)
		user.Status = model.StatusBanned
		until := time.Now().Add(time.Hour)
		user.BannedUntil = &until

		mockOTP.On("Verify", ctx, mobile, "123456").Return(true)
		mockRepo.On("GetByMobile", ctx, mobile).Return(user, nil)

		_, err := service.LoginOrRegister(ctx, mobile, "123456")
		assert.True(t, apperr.Is(err, apperr.KindForbidden))
	})

	t.Run("Ban expired", func(t *testing.T) {
		mobile := "13800138004"
		user := createTestUser("unbanned-user-id", mobile)
		user.Status = model.StatusBanned
		until := time.Now().Add(-time.Hour)
		user.BannedUntil = &until

		mockOTP.On("Verify", ctx, mobile, "123456").Return(true)
		mockRepo.On("GetByMobile", ctx, mobile).Return(user, nil)
		mockRepo.On("Update", ctx, user).Return(nil).Once()

		_, err := service.LoginOrRegister(ctx, mobile, "123456")
		require.NoError(t, err)
		assert.Equal(t, model.StatusNormal, user.Status)
		assert.Nil(t, user.BannedUntil)
	})
}

func TestSendOTP(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	mockOTP := new(MockOTPService)
	service := NewUserService(mockRepo, mockOTP)

	t.Run("Send OTP success", func(t *testing.T) {
		mockOTP.On("Send", ctx, "13800138000").Return("123456", nil)
		assert.NoError(t, service.SendOTP(ctx, "13800138000"))
	})

	t.Run("Too frequent", func(t *testing.T) {
		mockOTP.On("Send", ctx, "13800138009").Return("", otp.ErrTooFrequent)
		err := service.SendOTP(ctx, "13800138009")
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, new(MockOTPService))

	t.Run("Get user success", func(t *testing.T) {
		user := createTestUser("test-user-id", "13800138000")
		mockRepo.On("GetByID", ctx, "test-user-id").Return(user, nil)

		result, err := service.GetUser(ctx, "test-user-id")
		require.NoError(t, err)
		assert.Equal(t, "test-user-id", result.ID)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo.On("GetByID", ctx, "missing").Return(nil, gorm.ErrRecordNotFound)
		_, err := service.GetUser(ctx, "missing")
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})

	t.Run("Storage error", func(t *testing.T) {
		mockRepo.On("GetByID", ctx, "broken").Return(nil, errors.New("conn refused"))
		_, err := service.GetUser(ctx, "broken")
		assert.True(t, apperr.Is(err, apperr.KindStorage))
	})
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, new(MockOTPService))

	user := createTestUser("u1", "13800138000")
	mockRepo.On("GetByID", ctx, "u1").Return(user, nil)
	mockRepo.On("Update", ctx, user).Return(nil)

	t.Run("normalises email", func(t *testing.T) {
		result, err := service.UpdateProfile(ctx, "u1", ProfileInput{Email: "Learner@Example.COM", Nickname: "学习者"})
		require.NoError(t, err)
		assert.Equal(t, "learner@example.com", result.Email)
		assert.Equal(t, "学习者", result.Nickname)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := service.UpdateProfile(ctx, "u1", ProfileInput{Email: "not-an-email"})
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestRecipientResolver(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := NewUserService(mockRepo, new(MockOTPService))

	admin := createTestUser("a1", "13900000000")
	admin.Role = model.RoleAdmin
	admin.Email = "admin@learnhub.test"
	mockRepo.On("ListAdmins", ctx).Return([]model.User{*admin}, nil)

	admins, err := service.Admins(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 1)
	assert.Equal(t, "admin@learnhub.test", admins[0].Email)
	assert.Equal(t, "a1", admins[0].UserID)
}
