package order

import (
	"context"

	"learnhub/internal/domain/catalog"
	catalogservice "learnhub/internal/domain/catalog/service"
	"learnhub/internal/domain/license"
	licenseservice "learnhub/internal/domain/license/service"
	"learnhub/internal/domain/order/handler"
	"learnhub/internal/domain/order/repository"
	"learnhub/internal/domain/order/service"
	"learnhub/internal/domain/user"
	userservice "learnhub/internal/domain/user/service"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ServiceName 其他模块通过该名称获取 *service.OrderService
const ServiceName = "order"

// OrderModule 订单模块
type OrderModule struct{}

func init() {
	registry.Register(&OrderModule{})
}

func (m *OrderModule) Name() string {
	return "order"
}

func (m *OrderModule) Priority() int {
	// 依赖 user、catalog、license
	return 4
}

func (m *OrderModule) Init(ctx *registry.ModuleContext) error {
	catalogSvc, err := registry.Lookup[*catalogservice.CatalogService](ctx, catalog.ServiceName)
	if err != nil {
		return err
	}
	licenseSvc, err := registry.Lookup[*licenseservice.LicenseService](ctx, license.ServiceName)
	if err != nil {
		return err
	}
	userSvc, err := registry.Lookup[*userservice.Service](ctx, user.ServiceName)
	if err != nil {
		return err
	}

	orderRepo := repository.NewOrderRepository(ctx.DB)
	orderSvc := service.NewOrderService(orderRepo, catalogSvc, licenseSvc, ctx.Transactor,
		service.WithNotifier(ctx.Notifier),
		service.WithPublisher(ctx.Publisher),
		service.WithMetrics(ctx.Metrics),
		service.WithExpireAfter(ctx.Config.Order.ExpireAfter),
	)
	statsSvc := service.NewStatsService(orderRepo, catalogSvc, userSvc)
	settingsSvc := service.NewPaymentSettingsService(repository.NewSettingRepository(ctx.DB), ctx.Cache)

	ctx.Provide(ServiceName, orderSvc)

	interval := ctx.Config.Order.SweepInterval
	ctx.RunBackground(func(c context.Context) error {
		return orderSvc.RunSweeper(c, interval)
	})

	setupRoutes(ctx.Router, handler.NewOrderHandler(orderSvc, statsSvc), handler.NewPaymentHandler(settingsSvc), ctx.RateLimiter)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.OrderHandler, ph *handler.PaymentHandler, limiter *middleware.RateLimiter) {
	r.GET("/payment/settings", ph.GetSettings)

	orders := r.Group("/orders")
	orders.Use(middleware.AuthMiddleware())
	{
		orders.POST("", middleware.RateLimitMiddleware(limiter, "orders"), h.CreateOrder)
		orders.GET("", h.ListMyOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/submit", middleware.RateLimitMiddleware(limiter, "orders"), h.SubmitPayment)
	}

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/orders", h.AdminListOrders)
		admin.GET("/orders/:id", h.GetOrder)
		admin.POST("/orders/:id/confirm", h.ConfirmPayment)
		admin.POST("/orders/:id/reject", h.RejectOrder)
		admin.GET("/stats", h.Stats)
		admin.PUT("/payment/settings", ph.UpdateSettings)
	}
}
