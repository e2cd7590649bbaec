package license

import (
	"learnhub/internal/domain/catalog"
	catalogservice "learnhub/internal/domain/catalog/service"
	"learnhub/internal/domain/license/handler"
	"learnhub/internal/domain/license/repository"
	"learnhub/internal/domain/license/service"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ServiceName 其他模块通过该名称获取 *service.LicenseService
const ServiceName = "license"

// LicenseModule 授权模块
type LicenseModule struct{}

func init() {
	registry.Register(&LicenseModule{})
}

func (m *LicenseModule) Name() string {
	return "license"
}

func (m *LicenseModule) Priority() int {
	// 依赖 catalog
	return 3
}

func (m *LicenseModule) Init(ctx *registry.ModuleContext) error {
	reader, err := registry.Lookup[*catalogservice.CatalogService](ctx, catalog.ServiceName)
	if err != nil {
		return err
	}

	repo := repository.NewLicenseRepository(ctx.DB)
	svc := service.NewLicenseService(repo, reader, ctx.Transactor, ctx.Metrics)
	h := handler.NewLicenseHandler(svc)

	ctx.Provide(ServiceName, svc)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.LicenseHandler) {
	learn := r.Group("")
	learn.Use(middleware.AuthMiddleware())
	{
		learn.GET("/courses/:course/access", h.CheckAccess)
		learn.GET("/courses/:course/chapters/:chapter", h.GetChapter)
		learn.GET("/licenses/me", h.ListMine)
	}
}
