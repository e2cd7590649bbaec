package handler

import (
	"context"
	"net/http"

	"learnhub/internal/domain/progress/model"
	"learnhub/internal/domain/progress/service"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/response"

	"github.com/gin-gonic/gin"
)

// ProgressService 处理器依赖的进度服务
type ProgressService interface {
	Save(ctx context.Context, userID string, in service.SaveInput) (*model.UserProgress, error)
	CourseProgress(ctx context.Context, userID, courseID string) (*model.CourseProgress, error)
}

type ProgressHandler struct {
	service ProgressService
}

func NewProgressHandler(service ProgressService) *ProgressHandler {
	return &ProgressHandler{service: service}
}

// SaveProgress 上报学习进度
// @Summary 保存学习进度
// @Tags Progress
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body service.SaveInput true "进度"
// @Success 200 {object} response.Response{data=model.UserProgress}
// @Failure 403 {object} response.Response "无权学习该章节"
// @Router /progress [post]
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var input service.SaveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	saved, err := h.service.Save(c.Request.Context(), p.UserID, input)
	if err != nil {
		response.FromError(c, err, response.ErrChapterNotFound)
		return
	}
	response.Success(c, saved)
}

// CourseProgress 课程学习进度
// @Summary 课程学习进度
// @Tags Progress
// @Security Bearer
// @Produce json
// @Param course path string true "课程ID"
// @Success 200 {object} response.Response{data=model.CourseProgress}
// @Router /courses/{course}/progress [get]
func (h *ProgressHandler) CourseProgress(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	p, _ := principal.From(c)
	summary, err := h.service.CourseProgress(c.Request.Context(), p.UserID, courseID)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, summary)
}
