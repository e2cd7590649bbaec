package handler

import (
	"context"
	"net/http"

	catalogmodel "learnhub/internal/domain/catalog/model"
	"learnhub/internal/domain/license/model"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// LicenseService 处理器依赖的授权服务
type LicenseService interface {
	CheckAccess(ctx context.Context, userID, courseID, chapterID string) (model.Access, error)
	ChapterContent(ctx context.Context, userID, courseID, chapterID string) (*catalogmodel.Chapter, model.Access, error)
	ListMine(ctx context.Context, userID string) ([]model.License, error)
}

// LicenseHandler 授权与学习内容处理器
type LicenseHandler struct {
	service LicenseService
}

func NewLicenseHandler(service LicenseService) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// CheckAccess 查询课程访问权限
// @Summary 课程访问权限
// @Tags License
// @Security Bearer
// @Produce json
// @Param course path string true "课程ID"
// @Param chapterId query string false "章节ID"
// @Success 200 {object} response.Response{data=model.Access}
// @Router /courses/{course}/access [get]
func (h *LicenseHandler) CheckAccess(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}
	chapterID, ok := response.UUIDQuery(c, "chapterId")
	if !ok {
		return
	}

	p, _ := principal.From(c)
	access, err := h.service.CheckAccess(c.Request.Context(), p.UserID, courseID, chapterID)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, access)
}

// GetChapter 学习章节（需要访问权限）
// @Summary 章节内容
// @Tags License
// @Security Bearer
// @Produce json
// @Param course path string true "课程ID"
// @Param chapter path string true "章节ID"
// @Success 200 {object} response.Response{data=catalogmodel.Chapter}
// @Failure 403 {object} response.Response
// @Router /courses/{course}/chapters/{chapter} [get]
func (h *LicenseHandler) GetChapter(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}
	chapterID, ok := response.UUIDParam(c, "chapter")
	if !ok {
		return
	}

	p, _ := principal.From(c)
	chapter, access, err := h.service.ChapterContent(c.Request.Context(), p.UserID, courseID, chapterID)
	if err != nil {
		response.FromError(c, err, response.ErrChapterNotFound)
		return
	}
	if !access.HasAccess {
		response.Error(c, http.StatusForbidden, response.ErrNoAccess, "purchase the course or a membership to continue")
		return
	}
	response.Success(c, chapter)
}

// ListMine 我的授权
// @Summary 我的授权
// @Tags License
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=[]model.License}
// @Router /licenses/me [get]
func (h *LicenseHandler) ListMine(c *gin.Context) {
	p, _ := principal.From(c)
	licenses, err := h.service.ListMine(c.Request.Context(), p.UserID)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, licenses)
}
