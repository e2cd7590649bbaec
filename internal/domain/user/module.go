package user

import (
	"learnhub/internal/domain/user/handler"
	"learnhub/internal/domain/user/repository"
	"learnhub/internal/domain/user/service"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/otp"
	"learnhub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ServiceName 其他模块通过该名称获取用户服务
const ServiceName = "user"

// UserModule 用户模块
type UserModule struct{}

func init() {
	// 自动注册模块
	registry.Register(&UserModule{})
}

func (m *UserModule) Name() string {
	return "user"
}

func (m *UserModule) Priority() int {
	// 用户模块优先级最高，通知和统计依赖它
	return 1
}

func (m *UserModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	userRepo := repository.NewUserRepository(ctx.DB)
	otpService := otp.NewOTPService(ctx.Redis, ctx.Config.App.TestOTPCode)
	userService := service.NewUserService(userRepo, otpService)
	userHandler := handler.NewUserHandler(userService)

	ctx.Provide(ServiceName, userService)

	// 2. 路由注册
	setupRoutes(ctx.Router, userHandler, ctx.RateLimiter)

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.UserHandler, limiter *middleware.RateLimiter) {
	// 公开路由
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limiter, "auth"))
	{
		authGroup.POST("/login", h.LoginOrRegister) // 登录/注册
		authGroup.POST("/otp", h.SendOTP)           // 发送验证码
	}

	// 受保护的路由
	userGroup := r.Group("/users")
	userGroup.Use(middleware.AuthMiddleware())
	{
		userGroup.GET("/me", h.GetMe)
		userGroup.PUT("/me", h.UpdateMe)
	}

	adminGroup := r.Group("/admin/users")
	adminGroup.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		adminGroup.GET("", h.GetUsers)
	}
}
