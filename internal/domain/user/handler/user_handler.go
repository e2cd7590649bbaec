package handler

import (
	"net/http"

	"learnhub/internal/domain/user/service"
	"learnhub/internal/pkg/principal"
	"learnhub/pkg/response"
	"learnhub/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler 用户处理器
type UserHandler struct {
	service service.UserService
}

// NewUserHandler 创建处理器
func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// SendOTPInput 发送验证码输入
type SendOTPInput struct {
	Mobile string `json:"mobile" binding:"required,min=6,max=20"`
}

// LoginInput 登录输入
type LoginInput struct {
	Mobile string `json:"mobile" binding:"required,min=6,max=20"`
	Code   string `json:"code" binding:"required"`
}

// SendOTP 发送验证码
// @Summary 发送登录验证码
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body SendOTPInput true "手机号"
// @Success 200 {object} response.Response
// @Router /auth/otp [post]
func (h *UserHandler) SendOTP(c *gin.Context) {
	var input SendOTPInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	if err := h.service.SendOTP(c.Request.Context(), input.Mobile); err != nil {
		response.FromError(c, err, 0)
		return
	}
	response.Success(c, nil)
}

// LoginOrRegister 验证码登录，不存在则自动注册
// @Summary 登录/注册
// @Tags Auth
// @Accept json
// @Produce json
// @Param input body LoginInput true "手机号与验证码"
// @Success 200 {object} response.Response{data=service.LoginResult}
// @Router /auth/login [post]
func (h *UserHandler) LoginOrRegister(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	result, err := h.service.LoginOrRegister(c.Request.Context(), input.Mobile, input.Code)
	if err != nil {
		response.FromError(c, err, response.ErrUserNotFound)
		return
	}
	response.Success(c, result)
}

// GetMe 当前用户资料
// @Summary 我的资料
// @Tags User
// @Security Bearer
// @Produce json
// @Success 200 {object} response.Response{data=model.User}
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	p, _ := principal.From(c)
	user, err := h.service.GetUser(c.Request.Context(), p.UserID)
	if err != nil {
		response.FromError(c, err, response.ErrUserNotFound)
		return
	}
	response.Success(c, user)
}

// UpdateMe 更新资料
// @Summary 更新我的资料
// @Tags User
// @Security Bearer
// @Accept json
// @Produce json
// @Param input body service.ProfileInput true "资料"
// @Success 200 {object} response.Response{data=model.User}
// @Router /users/me [put]
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var input service.ProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	p, _ := principal.From(c)
	user, err := h.service.UpdateProfile(c.Request.Context(), p.UserID, input)
	if err != nil {
		response.FromError(c, err, response.ErrUserNotFound)
		return
	}
	response.Success(c, user)
}

// GetUsers 用户列表（管理员）
// @Summary 用户列表
// @Tags Admin
// @Security Bearer
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response{data=utils.PageResult}
// @Router /admin/users [get]
func (h *UserHandler) GetUsers(c *gin.Context) {
	var page utils.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	users, total, err := h.service.GetUsers(c.Request.Context(), page)
	if err != nil {
		response.FromError(c, err, 0)
		return
	}
	page.GetPageOffset()
	response.Success(c, utils.NewPageResult(users, total, page))
}
