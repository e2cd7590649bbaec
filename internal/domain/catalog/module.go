package catalog

import (
	"learnhub/internal/domain/catalog/handler"
	"learnhub/internal/domain/catalog/repository"
	"learnhub/internal/domain/catalog/service"
	"learnhub/internal/pkg/middleware"
	"learnhub/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// ServiceName 其他模块通过该名称获取 *service.CatalogService
const ServiceName = "catalog"

// CatalogModule 课程目录模块
type CatalogModule struct{}

func init() {
	registry.Register(&CatalogModule{})
}

func (m *CatalogModule) Name() string {
	return "catalog"
}

func (m *CatalogModule) Priority() int {
	return 2
}

func (m *CatalogModule) Init(ctx *registry.ModuleContext) error {
	repo := repository.NewCatalogRepository(ctx.DB)
	svc := service.NewCatalogService(repo, ctx.Transactor, ctx.Cache, ctx.Metrics)
	h := handler.NewCatalogHandler(svc)

	ctx.Provide(ServiceName, svc)
	setupRoutes(ctx.Router, h)
	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CatalogHandler) {
	// 公开路由
	r.GET("/courses", h.ListCourses)
	r.GET("/courses/:course", h.GetCourse)
	r.GET("/memberships", h.ListPlans)

	// 后台路由
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.GET("/courses", h.AdminListCourses)
		admin.POST("/courses", h.CreateCourse)
		admin.PUT("/courses/:course", h.UpdateCourse)
		admin.PUT("/courses/:course/status", h.SetCourseStatus)
		admin.DELETE("/courses/:course", h.DeleteCourse)

		admin.GET("/courses/:course/chapters", h.ListChapters)
		admin.POST("/courses/:course/chapters", h.CreateChapter)
		admin.PUT("/courses/:course/chapters/reorder", h.ReorderChapters)
		admin.PUT("/courses/:course/chapters/:chapter", h.UpdateChapter)
		admin.DELETE("/courses/:course/chapters/:chapter", h.DeleteChapter)

		admin.GET("/memberships", h.AdminListPlans)
		admin.POST("/memberships", h.CreatePlan)
		admin.PUT("/memberships/:plan", h.UpdatePlan)
	}
}
