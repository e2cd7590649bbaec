package handler

import (
	"net/http"

	"learnhub/internal/domain/catalog/model"
	"learnhub/internal/domain/catalog/service"
	"learnhub/pkg/response"
	"learnhub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler 课程目录处理器
type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// CourseQuery 课程列表查询参数
type CourseQuery struct {
	utils.Pagination
	Type   model.CourseType   `form:"type"`
	Status model.CourseStatus `form:"status"`
}

// StatusInput 课程状态
type StatusInput struct {
	Status model.CourseStatus `json:"status" binding:"required"`
}

// ReorderInput 章节排序
type ReorderInput struct {
	ChapterIDs []string `json:"chapterIds" binding:"required,min=1,dive,uuid"`
}

// ListCourses 已发布课程
// @Summary 课程列表
// @Tags Catalog
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Param type query string false "free / paid / member_only"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /courses [get]
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	var q CourseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	q.GetPageOffset()
	page, err := h.service.ListPublishedCourses(c.Request.Context(), q.Pagination, q.Type)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, utils.NewPageResult(page.Courses, page.Total, q.Pagination))
}

// GetCourse 课程详情
// @Summary 课程详情
// @Tags Catalog
// @Produce json
// @Param course path string true "课程 slug"
// @Success 200 {object} response.Response{data=model.Course}
// @Router /courses/{course} [get]
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := h.service.GetPublishedCourse(c.Request.Context(), c.Param("course"))
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, course)
}

// ListPlans 会员方案
// @Summary 会员方案列表
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Response{data=[]model.MembershipPlan}
// @Router /memberships [get]
func (h *CatalogHandler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListActivePlans(c.Request.Context())
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, plans)
}

// AdminListCourses 后台课程列表
// @Summary 后台课程列表
// @Tags Admin
// @Security Bearer
// @Produce json
// @Param status query string false "draft / published / archived"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/courses [get]
func (h *CatalogHandler) AdminListCourses(c *gin.Context) {
	var q CourseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	q.GetPageOffset()
	courses, total, err := h.service.AdminListCourses(c.Request.Context(), q.Pagination, q.Status)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, utils.NewPageResult(courses, total, q.Pagination))
}

// CreateCourse 创建课程（草稿）
// @Summary 创建课程
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body service.CourseInput true "课程"
// @Success 200 {object} response.Response{data=model.Course}
// @Router /admin/courses [post]
func (h *CatalogHandler) CreateCourse(c *gin.Context) {
	var input service.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, course)
}

// UpdateCourse 更新课程
// @Summary 更新课程
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param course path string true "课程ID"
// @Param input body service.CourseInput true "课程"
// @Success 200 {object} response.Response{data=model.Course}
// @Router /admin/courses/{course} [put]
func (h *CatalogHandler) UpdateCourse(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	var input service.CourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), courseID, input)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, course)
}

// SetCourseStatus 发布 / 下架
// @Summary 修改课程状态
// @Tags Admin
// @Security Bearer
// @Accept json
// @Produce json
// @Param course path string true "课程ID"
// @Param input body StatusInput true "状态"
// @Success 200 {object} response.Response{data=model.Course}
// @Router /admin/courses/{course}/status [put]
func (h *CatalogHandler) SetCourseStatus(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	var input StatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	course, err := h.service.SetCourseStatus(c.Request.Context(), courseID, input.Status)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, course)
}

// DeleteCourse 删除课程
// @Summary 删除课程
// @Tags Admin
// @Security Bearer
// @Param course path string true "课程ID"
// @Success 200 {object} response.Response
// @Router /admin/courses/{course} [delete]
func (h *CatalogHandler) DeleteCourse(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	if err := h.service.DeleteCourse(c.Request.Context(), courseID); err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, nil)
}

// ListChapters 章节列表（含正文）
// @Summary 后台章节列表
// @Tags Admin
// @Security Bearer
// @Param course path string true "课程ID"
// @Success 200 {object} response.Response{data=[]model.Chapter}
// @Router /admin/courses/{course}/chapters [get]
func (h *CatalogHandler) ListChapters(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	chapters, err := h.service.ListChapters(c.Request.Context(), courseID)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, chapters)
}

// CreateChapter 新增章节
// @Summary 新增章节
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param course path string true "课程ID"
// @Param input body service.ChapterInput true "章节"
// @Success 200 {object} response.Response{data=model.Chapter}
// @Router /admin/courses/{course}/chapters [post]
func (h *CatalogHandler) CreateChapter(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	var input service.ChapterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	chapter, err := h.service.CreateChapter(c.Request.Context(), courseID, input)
	if err != nil {
		response.FromError(c, err, response.ErrCourseNotFound)
		return
	}
	response.Success(c, chapter)
}

// UpdateChapter 更新章节
// @Summary 更新章节
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param course path string true "课程ID"
// @Param chapter path string true "章节ID"
// @Param input body service.ChapterInput true "章节"
// @Success 200 {object} response.Response{data=model.Chapter}
// @Router /admin/courses/{course}/chapters/{chapter} [put]
func (h *CatalogHandler) UpdateChapter(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}
	chapterID, ok := response.UUIDParam(c, "chapter")
	if !ok {
		return
	}

	var input service.ChapterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	chapter, err := h.service.UpdateChapter(c.Request.Context(), courseID, chapterID, input)
	if err != nil {
		response.FromError(c, err, response.ErrChapterNotFound)
		return
	}
	response.Success(c, chapter)
}

// DeleteChapter 删除章节
// @Summary 删除章节
// @Tags Admin
// @Security Bearer
// @Param course path string true "课程ID"
// @Param chapter path string true "章节ID"
// @Success 200 {object} response.Response
// @Router /admin/courses/{course}/chapters/{chapter} [delete]
func (h *CatalogHandler) DeleteChapter(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}
	chapterID, ok := response.UUIDParam(c, "chapter")
	if !ok {
		return
	}

	if err := h.service.DeleteChapter(c.Request.Context(), courseID, chapterID); err != nil {
		response.FromError(c, err, response.ErrChapterNotFound)
		return
	}
	response.Success(c, nil)
}

// ReorderChapters 章节排序
// @Summary 章节排序
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param course path string true "课程ID"
// @Param input body ReorderInput true "按新顺序排列的章节ID"
// @Success 200 {object} response.Response
// @Router /admin/courses/{course}/chapters/reorder [put]
func (h *CatalogHandler) ReorderChapters(c *gin.Context) {
	courseID, ok := response.UUIDParam(c, "course")
	if !ok {
		return
	}

	var input ReorderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.ReorderChapters(c.Request.Context(), courseID, input.ChapterIDs); err != nil {
		response.FromError(c, err, response.ErrChapterNotFound)
		return
	}
	response.Success(c, nil)
}

// AdminListPlans 全部会员方案
// @Summary 后台会员方案列表
// @Tags Admin
// @Security Bearer
// @Success 200 {object} response.Response{data=[]model.MembershipPlan}
// @Router /admin/memberships [get]
func (h *CatalogHandler) AdminListPlans(c *gin.Context) {
	plans, err := h.service.AdminListPlans(c.Request.Context())
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, plans)
}

// CreatePlan 新增会员方案
// @Summary 新增会员方案
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param input body service.PlanInput true "方案"
// @Success 200 {object} response.Response{data=model.MembershipPlan}
// @Router /admin/memberships [post]
func (h *CatalogHandler) CreatePlan(c *gin.Context) {
	var input service.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, plan)
}

// UpdatePlan 更新会员方案
// @Summary 更新会员方案
// @Tags Admin
// @Security Bearer
// @Accept json
// @Param plan path string true "方案ID"
// @Param input body service.PlanInput true "方案"
// @Success 200 {object} response.Response{data=model.MembershipPlan}
// @Router /admin/memberships/{plan} [put]
func (h *CatalogHandler) UpdatePlan(c *gin.Context) {
	planID, ok := response.UUIDParam(c, "plan")
	if !ok {
		return
	}

	var input service.PlanInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(c.Request.Context(), planID, input)
	if err != nil {
		response.FromError(c, err, response.ErrMembershipNotFound)
		return
	}
	response.Success(c, plan)
}
