package progress

import (
	"learnhub/internal/domain/catalog"
	catalogservice "learnhub/internal/domain/catalog/service"
	"learnhub/internal/domain/license"
	licenseservice "learnhub/internal/domain/license/service"
	"learnhub/internal/domain/progress/handler"
	"learnhub/internal/domain/progress/repository"
	"learnhub/internal/domain/progress/service"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ProgressModule 学习进度模块
type ProgressModule struct{}

func init() {
	registry.Register(&ProgressModule{})
}

func (m *ProgressModule) Name() string {
	return "progress"
}

func (m *ProgressModule) Priority() int {
	return 5
}

func (m *ProgressModule) Init(ctx *registry.ModuleContext) error {
	reader, err := registry.Lookup[*catalogservice.CatalogService](ctx, catalog.ServiceName)
	if err != nil {
		return err
	}
	access, err := registry.Lookup[*licenseservice.LicenseService](ctx, license.ServiceName)
	if err != nil {
		return err
	}

	repo := repository.NewProgressRepository(ctx.DB)
	svc := service.NewProgressService(repo, access, reader)
	h := handler.NewProgressHandler(svc)

	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.ProgressHandler) {
	g := r.Group("")
	g.Use(middleware.AuthMiddleware())
	{
		g.POST("/progress", h.SaveProgress)
		g.GET("/courses/:course/progress", h.CourseProgress)
	}
}
